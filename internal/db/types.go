package db

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by update and delete operations when no record matches
var ErrNotFound = errors.New("record not found")

// Collection names, as used by HTTP routes and the AI context request
const (
	CollectionProfile     = "profile"
	CollectionExperiences = "experiences"
	CollectionSkills      = "skills"
	CollectionProjects    = "projects"
	CollectionEducation   = "education"
	CollectionKeywords    = "keywords"
)

// Meta holds the storage-managed fields shared by every list record.
// Fields are omitted from JSON when zero so they never leak into stored documents.
type Meta struct {
	ID        uuid.UUID `json:"id,omitzero"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// ListFilter narrows a record listing.
// RoleType matches records tagged with that role; Featured restricts to the flag value when set;
// Limit caps the number of rows (0 means no limit).
type ListFilter struct {
	RoleType string
	Featured *bool
	Limit    int
}

// Bool returns a pointer to b, for ListFilter.Featured
func Bool(b bool) *bool {
	return &b
}

// Date is a calendar date serialized as YYYY-MM-DD
type Date struct {
	time.Time
}

// NewDate returns the Date for the given year, month and day
func NewDate(year int, month time.Month, day int) *Date {
	return &Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (*Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, err
	}
	return &Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD
func (d *Date) String() string {
	if d == nil || d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

// MarshalJSON implements json.Marshaler
func (d *Date) MarshalJSON() ([]byte, error) {
	if d == nil || d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(time.DateOnly))
}

// UnmarshalJSON implements json.Unmarshaler.
// Accepts YYYY-MM-DD and full RFC 3339 timestamps (older documents stored those).
func (d *Date) UnmarshalJSON(data []byte) error {
	str := string(data)
	if str == "null" || str == `""` {
		return nil
	}
	// Trim quotes
	if len(str) > 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}
	t, err := time.Parse(time.DateOnly, str)
	if err != nil {
		ts, tsErr := time.Parse(time.RFC3339, str)
		if tsErr != nil {
			return err
		}
		t = time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	}
	d.Time = t
	return nil
}
