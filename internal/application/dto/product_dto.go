package dto

import "encoding/json"

// ProductRequest cuerpo de POST/PUT /api/products.
// Price viaja como número JSON (el backend lo guarda en una columna numeric).
type ProductRequest struct {
	Name       string      `json:"name" validate:"required,max=200"`
	Price      json.Number `json:"price" validate:"required"`
	Stock      int         `json:"stock" validate:"gte=0"`
	CategoryID string      `json:"category_id"`
}

// ClientRequest cuerpo de POST/PUT /api/clients.
type ClientRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"omitempty,max=40"`
}
