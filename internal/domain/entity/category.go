package entity

// Category categoría de productos; sólo se lista (alimenta el selector del formulario de producto).
type Category struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

func (c Category) RecordID() ID { return c.ID }
