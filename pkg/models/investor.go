package models

import (
	"time"
)

// InvestorStatus is the pipeline stage of an investor relative to a company
type InvestorStatus string

const (
	InvestorStatusProspect   InvestorStatus = "prospect"
	InvestorStatusContacted  InvestorStatus = "contacted"
	InvestorStatusMeeting    InvestorStatus = "meeting"
	InvestorStatusInterested InvestorStatus = "interested"
	InvestorStatusCommitted  InvestorStatus = "committed"
	InvestorStatusInvested   InvestorStatus = "invested"
	InvestorStatusInactive   InvestorStatus = "inactive"
)

// ValidInvestorStatuses lists every status accepted by the API, in pipeline order
var ValidInvestorStatuses = []InvestorStatus{
	InvestorStatusProspect,
	InvestorStatusContacted,
	InvestorStatusMeeting,
	InvestorStatusInterested,
	InvestorStatusCommitted,
	InvestorStatusInvested,
	InvestorStatusInactive,
}

// IsValid reports whether the status is one of the known pipeline stages
func (s InvestorStatus) IsValid() bool {
	for _, v := range ValidInvestorStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Investor is a tracked investor attached to a company. Connection imports,
// behavior profiles, and term sheets all hang off this record.
type Investor struct {
	ID          int64      `json:"id" db:"id"`
	CompanyID   int64      `json:"company_id" db:"company_id"`
	FullName    string     `json:"full_name" db:"full_name"`
	Email       *string    `json:"email,omitempty" db:"email"`
	Phone       *string    `json:"phone,omitempty" db:"phone"`
	Location    *string    `json:"location,omitempty" db:"location"`
	Industry    *string    `json:"industry,omitempty" db:"industry"`
	Firm        *string    `json:"firm,omitempty" db:"firm"`
	Title       *string    `json:"title,omitempty" db:"title"`
	LinkedinURL *string    `json:"linkedin_url,omitempty" db:"linkedin_url"`
	Notes       *string    `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// CreateInvestorRequest is the request to create an investor
type CreateInvestorRequest struct {
	FullName    string  `json:"full_name" validate:"required"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string `json:"phone,omitempty"`
	Location    *string `json:"location,omitempty"`
	Industry    *string `json:"industry,omitempty"`
	Firm        *string `json:"firm,omitempty"`
	Title       *string `json:"title,omitempty"`
	LinkedinURL *string `json:"linkedin_url,omitempty" validate:"omitempty,url"`
	Notes       *string `json:"notes,omitempty"`
}

// UpdateInvestorRequest is the request to update an investor
type UpdateInvestorRequest struct {
	FullName    *string `json:"full_name,omitempty"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string `json:"phone,omitempty"`
	Location    *string `json:"location,omitempty"`
	Industry    *string `json:"industry,omitempty"`
	Firm        *string `json:"firm,omitempty"`
	Title       *string `json:"title,omitempty"`
	LinkedinURL *string `json:"linkedin_url,omitempty" validate:"omitempty,url"`
	Notes       *string `json:"notes,omitempty"`
}

// InvestorListResponse is the response for listing investors
type InvestorListResponse struct {
	Items      []Investor `json:"items"`
	TotalCount int        `json:"total_count"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
}

// InvestorStatusChange is one row of the pipeline status audit trail. The
// entity reference allows status tracking for investors and for candidates
// that have not been promoted to investors yet.
type InvestorStatusChange struct {
	ID        int64          `json:"id" db:"id"`
	CompanyID int64          `json:"company_id" db:"company_id"`
	Entity    EntityRef      `json:"entity"`
	Status    InvestorStatus `json:"status" db:"status"`
	Timestamp time.Time      `json:"ts" db:"ts"`
	ByUser    *string        `json:"by_user,omitempty" db:"by_user"`
}

// UpdateInvestorStatusRequest sets a new pipeline status for an investor
type UpdateInvestorStatusRequest struct {
	Status InvestorStatus `json:"status" validate:"required"`
	ByUser *string        `json:"by_user,omitempty"`
}

// InvestorTag is a freeform label attached to an investor within a company
type InvestorTag struct {
	ID         int64  `json:"id" db:"id"`
	InvestorID int64  `json:"investor_id" db:"investor_id"`
	CompanyID  int64  `json:"company_id" db:"company_id"`
	Tag        string `json:"tag" db:"tag"`
}

// AddInvestorTagRequest attaches a tag to an investor
type AddInvestorTagRequest struct {
	Tag string `json:"tag" validate:"required"`
}
