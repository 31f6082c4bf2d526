// Package aicontext assembles the bounded, role-relevant slice of career data
// handed to the writing assistant.
package aicontext

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jonathan/career-admin/internal/db"
	"github.com/jonathan/career-admin/internal/types"
)

// StubName is the profile name used when the profile cannot be read
const StubName = "User"

// Request identifies what the user is editing
type Request struct {
	Collection string         `json:"collection" validate:"required"`
	ItemID     string         `json:"itemId,omitempty"`
	RoleType   types.RoleType `json:"roleType"`
	Field      string         `json:"field,omitempty"` // informational only
}

// ProfileSummary is the identity anchor included in every prompt
type ProfileSummary struct {
	Name        string   `json:"name"`
	Positioning string   `json:"positioning"`
	ValueProps  []string `json:"valueProps"`
	Mission     string   `json:"mission"`
}

// RelatedContext holds the records related to the current item.
// Every list is non-nil so it serializes as [] when empty.
type RelatedContext struct {
	RecentExperiences  []db.Experience `json:"recentExperiences"`
	RelatedProjects    []db.Project    `json:"relatedProjects"`
	RelatedExperiences []db.Experience `json:"relatedExperiences"`
	Skills             []db.Skill      `json:"skills"`
	Keywords           []string        `json:"keywords"`
}

// Context is the assembled snapshot. It is built per request and never stored.
type Context struct {
	ProfileSummary ProfileSummary `json:"profileSummary"`
	// CurrentItem is nil or one of *db.Profile, *db.Experience, *db.Skill,
	// *db.Project, *db.Education. Unknown collections decode to map[string]any.
	CurrentItem    any            `json:"currentItem"`
	RelatedContext RelatedContext `json:"relatedContext"`
	EditingContext Request        `json:"editingContext"`
}

// EmptyRelated returns a RelatedContext with every list allocated
func EmptyRelated() RelatedContext {
	return RelatedContext{
		RecentExperiences:  []db.Experience{},
		RelatedProjects:    []db.Project{},
		RelatedExperiences: []db.Experience{},
		Skills:             []db.Skill{},
		Keywords:           []string{},
	}
}

// Stub returns the degraded context used when the profile cannot be read
func Stub(editing Request) *Context {
	return &Context{
		ProfileSummary: ProfileSummary{
			Name:       StubName,
			ValueProps: []string{},
		},
		RelatedContext: EmptyRelated(),
		EditingContext: editing,
	}
}

// normalize replaces nil lists with empty ones
func (r *RelatedContext) normalize() {
	if r.RecentExperiences == nil {
		r.RecentExperiences = []db.Experience{}
	}
	if r.RelatedProjects == nil {
		r.RelatedProjects = []db.Project{}
	}
	if r.RelatedExperiences == nil {
		r.RelatedExperiences = []db.Experience{}
	}
	if r.Skills == nil {
		r.Skills = []db.Skill{}
	}
	if r.Keywords == nil {
		r.Keywords = []string{}
	}
}

// UnmarshalJSON decodes a context sent back by a client, typing currentItem
// by the editing collection.
func (c *Context) UnmarshalJSON(data []byte) error {
	type alias Context
	aux := struct {
		*alias
		CurrentItem json.RawMessage `json:"currentItem"`
	}{alias: (*alias)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	item, err := decodeItem(c.EditingContext.Collection, aux.CurrentItem)
	if err != nil {
		return fmt.Errorf("invalid currentItem: %w", err)
	}
	c.CurrentItem = item
	c.RelatedContext.normalize()
	if c.ProfileSummary.ValueProps == nil {
		c.ProfileSummary.ValueProps = []string{}
	}
	return nil
}

func decodeItem(collection string, raw json.RawMessage) (any, error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}

	var target any
	switch collection {
	case db.CollectionProfile:
		target = &db.Profile{}
	case db.CollectionExperiences:
		target = &db.Experience{}
	case db.CollectionSkills:
		target = &db.Skill{}
	case db.CollectionProjects:
		target = &db.Project{}
	case db.CollectionEducation:
		target = &db.Education{}
	default:
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return nil, err
	}
	return target, nil
}
