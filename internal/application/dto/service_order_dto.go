package dto

import "time"

// ClientData datos del cliente enviados por el integrador.
type ClientData struct {
	Name     string `json:"name" validate:"required"`
	Code     int64  `json:"code"`
	Document string `json:"document"`
	Address  string `json:"address"`
	Contact  string `json:"contact"`
}

// CreateServiceOrderRequest alta de OS. Contract vacío = id UUID.
type CreateServiceOrderRequest struct {
	Contract      string     `json:"contract" validate:"omitempty,max=64,excludesall=-"`
	Client        ClientData `json:"client"`
	Description   string     `json:"description"`
	Observations  string     `json:"observations"`
	Priority      string     `json:"priority"`
	ScheduledDate *time.Time `json:"scheduled_date"`
}

type ServiceOrderResponse struct {
	ID            string     `json:"id"`
	DisplayID     string     `json:"display_id"`
	Number        int64      `json:"number"`
	Contract      string     `json:"contract,omitempty"`
	Client        ClientData `json:"client"`
	Description   string     `json:"description"`
	Priority      string     `json:"priority"`
	Status        string     `json:"status"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CreateServiceOrderResponse OS creada junto a su pendencia.
type CreateServiceOrderResponse struct {
	ServiceOrder ServiceOrderResponse `json:"service_order"`
	Pendency     PendencyResponse     `json:"pendency"`
}
