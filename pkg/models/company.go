package models

import (
	"time"
)

// Company scopes every network, suggestion, and forecast. All intelligence is
// computed per company; two companies never share candidates or graphs.
type Company struct {
	ID        int64      `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// CreateCompanyRequest is the request to create a company
type CreateCompanyRequest struct {
	Name string `json:"name" validate:"required"`
}

// UpdateCompanyRequest is the request to update a company
type UpdateCompanyRequest struct {
	Name *string `json:"name,omitempty"`
}

// CompanyListResponse is the response for listing companies
type CompanyListResponse struct {
	Items      []Company `json:"items"`
	TotalCount int       `json:"total_count"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
}
