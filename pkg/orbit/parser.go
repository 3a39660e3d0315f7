// Package orbit parses exported connection lists into connection rows. It
// accepts LinkedIn connections exports and "close enough" CSVs: headers are
// matched through normalization, ordered aliases, and a substring fallback,
// so column naming only has to be approximately right.
package orbit

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Ramsey-B/trellis/pkg/models"
)

// maxRowErrors caps how many per-row parse failures are reported back.
const maxRowErrors = 5

// Ordered header aliases per field. Exact matches are tried first, then any
// header containing an alias as a substring. Spaced variants cover headers
// matched through their raw lowercased form rather than the collapsed one.
var (
	firstNameKeys = []string{"firstname", "first name", "first", "given name", "givenname"}
	lastNameKeys  = []string{"lastname", "last name", "last", "surname", "family name", "familyname"}
	fullNameKeys  = []string{"name", "full name", "fullname", "display name", "displayname"}
	companyKeys   = []string{"company", "organization", "org", "employer", "current company", "currentcompany"}
	positionKeys  = []string{"position", "title", "job title", "jobtitle", "headline", "job", "role"}
	locationKeys  = []string{"location", "geo", "region", "city", "country"}
	connectedKeys = []string{"connected on", "connectedon", "connection date", "connectiondate", "date connected", "dateconnected", "connected"}
	urlKeys       = []string{"url", "profile url", "profileurl", "linkedin url", "linkedinurl", "linkedin", "public profile url", "publicprofileurl", "profile"}
)

// Record is one usable connection row extracted from a CSV.
type Record struct {
	FirstName   string
	LastName    string
	FullName    string
	Company     string
	Position    string
	Location    string
	LinkedinURL string
	ConnectedOn string
}

// Request converts the record into a connection create request, mapping empty
// fields to nil.
func (r Record) Request() models.CreateConnectionRequest {
	return models.CreateConnectionRequest{
		FirstName:   optional(r.FirstName),
		LastName:    optional(r.LastName),
		FullName:    optional(r.FullName),
		Company:     optional(r.Company),
		Position:    optional(r.Position),
		Location:    optional(r.Location),
		LinkedinURL: optional(r.LinkedinURL),
		ConnectedOn: optional(r.ConnectedOn),
	}
}

// Result carries the usable records plus the bookkeeping the import summary
// reports: every data row read, rows dropped (no name or unreadable), the
// first few row errors, and the normalized columns found.
type Result struct {
	Records   []Record
	TotalRows int
	Skipped   int
	Errors    []string
	Columns   []string
}

// Parser extracts connection records from CSV exports. Stateless; safe for
// concurrent use.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse reads the CSV and extracts one record per row that has a usable name.
// Rows without any name component are skipped; rows the reader cannot parse
// are skipped and their errors recorded up to a cap. A missing full name is
// synthesized from first+last, and a full name with no first/last is split
// back into parts.
func (p *Parser) Parse(r io.Reader) (Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return Result{}, errors.New("csv has no headers")
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to read csv header: %w", err)
	}

	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = normalizeHeader(h)
	}

	result := Result{Columns: columnsFound(normalized)}
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		result.TotalRows++
		if err != nil {
			result.Skipped++
			if len(result.Errors) < maxRowErrors {
				result.Errors = append(result.Errors, err.Error())
			}
			continue
		}

		row := viewRow(header, normalized, fields)

		first := row.first(firstNameKeys)
		last := row.first(lastNameKeys)
		name := row.first(fullNameKeys)
		if name == "" {
			name = strings.TrimSpace(first + " " + last)
		}
		if name == "" {
			result.Skipped++
			continue
		}
		if first == "" && last == "" {
			parts := strings.Fields(name)
			if len(parts) >= 2 {
				first = parts[0]
				last = strings.Join(parts[1:], " ")
			} else {
				first = name
			}
		}

		result.Records = append(result.Records, Record{
			FirstName:   first,
			LastName:    last,
			FullName:    name,
			Company:     row.first(companyKeys),
			Position:    row.first(positionKeys),
			Location:    row.first(locationKeys),
			LinkedinURL: row.first(urlKeys),
			ConnectedOn: row.first(connectedKeys),
		})
	}

	return result, nil
}

// normalizeHeader collapses a header to its comparable form: trimmed,
// lowercased, with BOM, spaces, underscores, and hyphens removed.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	for _, cut := range []string{"\uFEFF", " ", "_", "-"} {
		h = strings.ReplaceAll(h, cut, "")
	}
	return h
}

// columnsFound returns the normalized header names in order, deduplicated.
func columnsFound(normalized []string) []string {
	columns := make([]string, 0, len(normalized))
	seen := make(map[string]bool, len(normalized))
	for _, n := range normalized {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		columns = append(columns, n)
	}
	return columns
}

// rowView indexes one row's values by both collapsed and raw lowercased
// header keys. keys preserves insertion order so substring scans are
// deterministic.
type rowView struct {
	values map[string]string
	keys   []string
}

func viewRow(header, normalized, fields []string) rowView {
	row := rowView{values: make(map[string]string, len(header)*2)}
	put := func(key, value string) {
		if key == "" {
			return
		}
		if _, ok := row.values[key]; !ok {
			row.keys = append(row.keys, key)
		}
		row.values[key] = value
	}
	for i, orig := range header {
		value := ""
		if i < len(fields) {
			value = fields[i]
		}
		put(normalized[i], value)
		put(strings.ToLower(strings.TrimSpace(orig)), value)
	}
	return row
}

// first returns the first non-empty value for the aliases, trying exact key
// matches before headers that merely contain an alias.
func (r rowView) first(aliases []string) string {
	for _, alias := range aliases {
		if v, ok := r.values[alias]; ok {
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		}
	}
	for _, alias := range aliases {
		for _, key := range r.keys {
			if !strings.Contains(key, alias) {
				continue
			}
			if trimmed := strings.TrimSpace(r.values[key]); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
