// Package fakestore provides an HTTP client for the product catalog REST API
// (fakestoreapi.com by default).
//
// # Overview
//
// The catalog is an external, uncontrolled collaborator. shelf treats it as
// the authority for whether a product write is accepted, but keeps its own ids:
// the server echoes an id on create that the client ignores.
//
// # API Endpoints
//
//   - GET /products: full catalog as a JSON array
//   - POST /products: create; body is ProductInput (no id, no rating)
//   - PUT /products/{id}: replace; same body as POST
//   - DELETE /products/{id}: remove; body ignored
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation and timeout control
//   - Wait on a client-side token bucket before dialing
//   - Set Accept: application/json and a shelf User-Agent
//   - Carry a fresh X-Request-ID that is also attached to log records
//
// # Error Handling
//
// Every failure wraps ErrGateway. Transport errors, any status outside 2xx, and
// decode failures are reported the same way:
//
//	if errors.Is(err, fakestore.ErrGateway) {
//		// surface a generic status message, keep prior state
//	}
//
// No retries are attempted; callers re-invoke.
package fakestore
