package dto

import "time"

// CreatePendencyRequest alta manual de pendencia.
type CreatePendencyRequest struct {
	Title               string     `json:"title" validate:"required,min=1,max=300"`
	Description         string     `json:"description"`
	Type                string     `json:"type" validate:"omitempty,oneof=TASK INCIDENT REQUEST OS"`
	OriginType          string     `json:"origin_type" validate:"omitempty,oneof=MANUAL OS"`
	Priority            string     `json:"priority"`
	ResponsibleID       *string    `json:"responsible_id"`
	ResponsibleSectorID *string    `json:"responsible_sector_id"`
	DueDate             *time.Time `json:"due_date"`
}

// UpdatePendencyRequest actualización parcial; los campos nil no se tocan.
type UpdatePendencyRequest struct {
	Status              *string    `json:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED CLOSED_WITHOUT_COMPLETION"`
	Priority            *string    `json:"priority"`
	ResponsibleID       *string    `json:"responsible_id"`
	ResponsibleSectorID *string    `json:"responsible_sector_id"`
	DueDate             *time.Time `json:"due_date"`
	ConclusionText      *string    `json:"conclusion_text"`
	ConclusionType      *string    `json:"conclusion_type"`
}

// ListPendenciesRequest filtros del listado.
type ListPendenciesRequest struct {
	PageRequest
	Status string `query:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED CLOSED_WITHOUT_COMPLETION"`
	Type   string `query:"type" validate:"omitempty,oneof=TASK INCIDENT REQUEST OS"`
}

type PendencyResponse struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	Type                string     `json:"type"`
	Status              string     `json:"status"`
	Priority            string     `json:"priority"`
	OriginType          string     `json:"origin_type"`
	OriginOSID          *string    `json:"origin_os_id,omitempty"`
	CreatedBy           string     `json:"created_by"`
	ResponsibleID       *string    `json:"responsible_id,omitempty"`
	ResponsibleSectorID *string    `json:"responsible_sector_id,omitempty"`
	ConclusionText      string     `json:"conclusion_text,omitempty"`
	ConclusionType      *string    `json:"conclusion_type,omitempty"`
	DueDate             *time.Time `json:"due_date,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}
