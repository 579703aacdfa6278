package entity

// Client cliente de la empresa.
type Client struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (c Client) RecordID() ID { return c.ID }
