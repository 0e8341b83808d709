package fakestore

import "strings"

// Rating mirrors the rating block the catalog attaches to each product.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product describes a catalog entry in transport-friendly form. The same shape
// is persisted in the local store.
type Product struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	Rating      Rating  `json:"rating"`
}

// ProductInput is the body accepted by POST and PUT. It carries no id and no
// rating; the catalog owns both.
type ProductInput struct {
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
}

// Input returns the writable subset of p.
func (p Product) Input() ProductInput {
	return ProductInput{
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		Image:       p.Image,
		Category:    p.Category,
	}
}

// DisplayTitle returns the title or a placeholder when blank.
func (p Product) DisplayTitle() string {
	if t := strings.TrimSpace(p.Title); t != "" {
		return t
	}
	return "Untitled product"
}
