package models

import (
	"fmt"
)

// EntityKind discriminates the three addressable entity families
type EntityKind string

const (
	EntityKindInvestor  EntityKind = "investor"  // addressed by investor id
	EntityKindCandidate EntityKind = "candidate" // addressed by stable candidate key
	EntityKindOrg       EntityKind = "org"       // addressed by org key (lowercase name or company:{id})
)

// EntityRef is a tagged reference to an investor, candidate, or org.
// Investors are addressed by id; candidates and orgs by a stable string key.
// Exactly one of InvestorID/Key is set depending on Kind.
type EntityRef struct {
	Kind       EntityKind `json:"type"`
	InvestorID *int64     `json:"id,omitempty"`
	Key        *string    `json:"key,omitempty"`
}

// InvestorRef builds a reference to an investor by id
func InvestorRef(id int64) EntityRef {
	return EntityRef{Kind: EntityKindInvestor, InvestorID: &id}
}

// CandidateRef builds a reference to a candidate by its stable key
func CandidateRef(key string) EntityRef {
	return EntityRef{Kind: EntityKindCandidate, Key: &key}
}

// OrgRef builds a reference to an org by its key
func OrgRef(key string) EntityRef {
	return EntityRef{Kind: EntityKindOrg, Key: &key}
}

// CompanyOrgRef builds the org reference used when a company itself is the
// counterparty of a relationship (scenario forecasting uses this context)
func CompanyOrgRef(companyID int64) EntityRef {
	return OrgRef(fmt.Sprintf("company:%d", companyID))
}

// Validate checks that the reference carries the field its kind requires
func (r EntityRef) Validate() error {
	switch r.Kind {
	case EntityKindInvestor:
		if r.InvestorID == nil {
			return fmt.Errorf("investor reference requires an id")
		}
		return nil
	case EntityKindCandidate, EntityKindOrg:
		if r.Key == nil || *r.Key == "" {
			return fmt.Errorf("%s reference requires a key", r.Kind)
		}
		return nil
	default:
		return fmt.Errorf("unknown entity kind %q", r.Kind)
	}
}

// Matches reports whether an event row addressed by (kind, id, key) refers to
// this entity. Id-addressed kinds compare ids, key-addressed kinds compare keys.
func (r EntityRef) Matches(kind EntityKind, id *int64, key *string) bool {
	if r.Kind != kind {
		return false
	}
	switch r.Kind {
	case EntityKindInvestor:
		return r.InvestorID != nil && id != nil && *r.InvestorID == *id
	case EntityKindCandidate, EntityKindOrg:
		return r.Key != nil && key != nil && *r.Key == *key
	default:
		return false
	}
}

// String renders the reference for logs and error messages
func (r EntityRef) String() string {
	switch r.Kind {
	case EntityKindInvestor:
		if r.InvestorID != nil {
			return fmt.Sprintf("investor:%d", *r.InvestorID)
		}
		return "investor:?"
	case EntityKindCandidate, EntityKindOrg:
		if r.Key != nil {
			return fmt.Sprintf("%s:%s", r.Kind, *r.Key)
		}
		return fmt.Sprintf("%s:?", r.Kind)
	default:
		return fmt.Sprintf("unknown:%s", string(r.Kind))
	}
}
