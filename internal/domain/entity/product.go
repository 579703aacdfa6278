package entity

import "github.com/shopspring/decimal"

// Product producto del catálogo. CategoryID referencia una Category (no se valida en el cliente).
type Product struct {
	ID         ID              `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
	CategoryID ID              `json:"category_id"`
}

func (p Product) RecordID() ID { return p.ID }
