package fakestore

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != DefaultBaseURL {
		t.Fatalf("url = %q, want %q", u.String(), DefaultBaseURL)
	}

	u, err = parseBaseURL("example.com:1234/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "https" {
		t.Fatalf("scheme = %q, want https", u.Scheme)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	if _, err := parseBaseURL("http://"); err == nil {
		t.Fatalf("parseBaseURL(http://) returned nil error, want missing host")
	}
}

func TestClient_RoundTripsAllEndpoints(t *testing.T) {
	t.Parallel()

	var (
		gotMethods   []string
		gotBodies    []ProductInput
		gotUserAgent string
		gotRequestID string
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethods = append(gotMethods, r.Method+" "+r.URL.Path)
		gotUserAgent = r.Header.Get("User-Agent")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")

		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
			var in ProductInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				t.Errorf("decode body: %v", err)
			}
			gotBodies = append(gotBodies, in)
		}

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/products":
			_ = json.NewEncoder(w).Encode([]Product{
				{ID: 1, Title: "Backpack", Price: 109.95, Rating: Rating{Rate: 3.9, Count: 120}},
				{ID: 2, Title: "T-Shirt", Price: 22.3},
			})
		case r.Method == http.MethodPost && r.URL.Path == "/products":
			_ = json.NewEncoder(w).Encode(Product{ID: 21, Title: "Lamp"})
		case r.Method == http.MethodPut && r.URL.Path == "/products/7":
			_ = json.NewEncoder(w).Encode(Product{ID: 7, Title: "Lamp v2"})
		case r.Method == http.MethodDelete && r.URL.Path == "/products/7":
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, Options{RequestsPerSecond: 100})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	items, err := c.FetchProducts(ctx)
	if err != nil {
		t.Fatalf("FetchProducts returned error: %v", err)
	}
	if len(items) != 2 || items[0].Rating.Count != 120 {
		t.Fatalf("FetchProducts = %#v, want 2 items with rating", items)
	}

	created, err := c.CreateProduct(ctx, ProductInput{Title: "Lamp", Price: 12})
	if err != nil {
		t.Fatalf("CreateProduct returned error: %v", err)
	}
	if created.ID != 21 {
		t.Fatalf("CreateProduct id = %d, want 21", created.ID)
	}

	if _, err := c.UpdateProduct(ctx, 7, ProductInput{Title: "Lamp v2"}); err != nil {
		t.Fatalf("UpdateProduct returned error: %v", err)
	}
	if err := c.DeleteProduct(ctx, 7); err != nil {
		t.Fatalf("DeleteProduct returned error: %v", err)
	}

	want := []string{"GET /products", "POST /products", "PUT /products/7", "DELETE /products/7"}
	if strings.Join(gotMethods, ",") != strings.Join(want, ",") {
		t.Fatalf("requests = %v, want %v", gotMethods, want)
	}
	if len(gotBodies) != 2 || gotBodies[0].Title != "Lamp" || gotBodies[1].Title != "Lamp v2" {
		t.Fatalf("bodies = %#v, want Lamp then Lamp v2", gotBodies)
	}
	if !strings.HasPrefix(gotUserAgent, "shelf/") {
		t.Fatalf("User-Agent = %q, want shelf/*", gotUserAgent)
	}
	if len(gotRequestID) != 36 {
		t.Fatalf("X-Request-ID = %q, want a uuid", gotRequestID)
	}
}

func TestClient_WriteBodyOmitsIDAndRating(t *testing.T) {
	t.Parallel()

	var raw string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		raw = string(b)
		_, _ = w.Write([]byte(`{"id":99}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, Options{})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	p := Product{ID: 5, Title: "Mug", Price: 3, Rating: Rating{Rate: 4, Count: 2}}
	if _, err := c.CreateProduct(context.Background(), p.Input()); err != nil {
		t.Fatalf("CreateProduct returned error: %v", err)
	}
	if strings.Contains(raw, `"id"`) || strings.Contains(raw, `"rating"`) {
		t.Fatalf("request body = %s, want no id or rating", raw)
	}
}

func TestClient_FailuresWrapErrGateway(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{not-json"))
		case http.MethodPost:
			http.Error(w, "nope", http.StatusInternalServerError)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, Options{RequestsPerSecond: 100})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.FetchProducts(context.Background())
	if !errors.Is(err, ErrGateway) || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("FetchProducts error = %v, want gateway decode error", err)
	}

	_, err = c.CreateProduct(context.Background(), ProductInput{Title: "x"})
	if !errors.Is(err, ErrGateway) || !strings.Contains(err.Error(), "returned status 500") {
		t.Fatalf("CreateProduct error = %v, want gateway status 500 error", err)
	}

	err = c.DeleteProduct(context.Background(), 3)
	if !errors.Is(err, ErrGateway) {
		t.Fatalf("DeleteProduct error = %v, want gateway error", err)
	}
}

func TestClient_TransportErrorWrapsErrGateway(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	c, err := NewClient(url, Options{Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.FetchProducts(context.Background())
	if !errors.Is(err, ErrGateway) {
		t.Fatalf("FetchProducts error = %v, want gateway error", err)
	}
}

func TestClient_RequiresProductID(t *testing.T) {
	c, err := NewClient("127.0.0.1:1", Options{})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := c.UpdateProduct(context.Background(), 0, ProductInput{}); err == nil {
		t.Fatalf("UpdateProduct returned nil error, want error")
	}
	if err := c.DeleteProduct(context.Background(), -1); err == nil {
		t.Fatalf("DeleteProduct returned nil error, want error")
	}
}
