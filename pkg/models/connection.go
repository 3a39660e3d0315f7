package models

import (
	"strings"
	"time"
)

// Connection is one imported contact row from an investor's exported network.
// Rows are noisy free text; normalization happens downstream, never at import.
type Connection struct {
	ID          int64      `json:"id" db:"id"`
	InvestorID  int64      `json:"investor_id" db:"investor_id"`
	FirstName   *string    `json:"first_name,omitempty" db:"first_name"`
	LastName    *string    `json:"last_name,omitempty" db:"last_name"`
	FullName    *string    `json:"full_name,omitempty" db:"full_name"`
	Company     *string    `json:"company,omitempty" db:"company"`
	Position    *string    `json:"position,omitempty" db:"position"`
	Location    *string    `json:"location,omitempty" db:"location"`
	LinkedinURL *string    `json:"linkedin_url,omitempty" db:"linkedin_url"`
	ConnectedOn *string    `json:"connected_on,omitempty" db:"connected_on"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// DisplayName returns the best available name for the row: full_name when
// present, otherwise "first last" joined. The result is trimmed; empty means
// the row has no usable name.
func (c *Connection) DisplayName() string {
	if c.FullName != nil {
		if name := strings.TrimSpace(*c.FullName); name != "" {
			return name
		}
	}
	first := ""
	if c.FirstName != nil {
		first = *c.FirstName
	}
	last := ""
	if c.LastName != nil {
		last = *c.LastName
	}
	return strings.TrimSpace(first + " " + last)
}

// CreateConnectionRequest is the request to record a single connection
type CreateConnectionRequest struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	FullName    *string `json:"full_name,omitempty"`
	Company     *string `json:"company,omitempty"`
	Position    *string `json:"position,omitempty"`
	Location    *string `json:"location,omitempty"`
	LinkedinURL *string `json:"linkedin_url,omitempty"`
	ConnectedOn *string `json:"connected_on,omitempty"`
}

// ConnectionListResponse is the response for listing an investor's connections
type ConnectionListResponse struct {
	Items      []Connection `json:"items"`
	TotalCount int          `json:"total_count"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
}

// ImportSummary reports the outcome of a CSV connection import
type ImportSummary struct {
	InvestorID   int64    `json:"investor_id"`
	TotalRows    int      `json:"total_rows"`
	Imported     int      `json:"imported"`
	Skipped      int      `json:"skipped"`
	ParseErrors  []string `json:"parse_errors,omitempty"`
	ColumnsFound []string `json:"columns_found,omitempty"`
}
