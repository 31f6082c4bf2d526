// Package bundle exports the career record to a single JSON document and
// imports such documents back into the store.
package bundle

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/career-admin/internal/db"
	"github.com/jonathan/career-admin/internal/schemas"
)

// Version is the bundle format version
const Version = 1

// Bundle is the full career record
type Bundle struct {
	Version     int             `json:"version"`
	ExportedAt  time.Time       `json:"exported_at,omitzero"`
	Profile     *db.Profile     `json:"profile"`
	Experiences []db.Experience `json:"experiences"`
	Skills      []db.Skill      `json:"skills"`
	Projects    []db.Project    `json:"projects"`
	Education   []db.Education  `json:"education"`
	Keywords    []db.Keyword    `json:"keywords"`
}

// Reader is the read side of the store an export needs
type Reader interface {
	GetProfile(ctx context.Context) (*db.Profile, error)
	ListExperiences(ctx context.Context, f db.ListFilter) ([]db.Experience, error)
	ListSkills(ctx context.Context, f db.ListFilter) ([]db.Skill, error)
	ListProjects(ctx context.Context, f db.ListFilter) ([]db.Project, error)
	ListEducation(ctx context.Context, f db.ListFilter) ([]db.Education, error)
	ListKeywords(ctx context.Context, f db.ListFilter) ([]db.Keyword, error)
}

// Writer is the write side of the store an import needs
type Writer interface {
	UpsertProfile(ctx context.Context, p *db.Profile) error
	CreateExperience(ctx context.Context, rec *db.Experience) error
	CreateSkill(ctx context.Context, rec *db.Skill) error
	CreateProject(ctx context.Context, rec *db.Project) error
	CreateEducation(ctx context.Context, rec *db.Education) error
	CreateKeyword(ctx context.Context, rec *db.Keyword) error
}

// Summary counts the records an import wrote, or would write in a dry run
type Summary struct {
	Profile     bool `json:"profile"`
	Experiences int  `json:"experiences"`
	Skills      int  `json:"skills"`
	Projects    int  `json:"projects"`
	Education   int  `json:"education"`
	Keywords    int  `json:"keywords"`
}

// Export reads every record into a bundle, in source order
func Export(ctx context.Context, r Reader) (*Bundle, error) {
	b := &Bundle{Version: Version, ExportedAt: time.Now().UTC()}
	var err error

	if b.Profile, err = r.GetProfile(ctx); err != nil {
		return nil, err
	}
	if b.Experiences, err = r.ListExperiences(ctx, db.ListFilter{}); err != nil {
		return nil, err
	}
	if b.Skills, err = r.ListSkills(ctx, db.ListFilter{}); err != nil {
		return nil, err
	}
	if b.Projects, err = r.ListProjects(ctx, db.ListFilter{}); err != nil {
		return nil, err
	}
	if b.Education, err = r.ListEducation(ctx, db.ListFilter{}); err != nil {
		return nil, err
	}
	if b.Keywords, err = r.ListKeywords(ctx, db.ListFilter{}); err != nil {
		return nil, err
	}
	return b, nil
}

// Parse validates raw against the bundle schema and the record validation
// rules, and decodes it. Nothing is written.
func Parse(raw []byte) (*Bundle, error) {
	if err := schemas.ValidateBundle(raw); err != nil {
		return nil, err
	}

	var b Bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("failed to decode bundle: %w", err)
	}

	validate := validator.New()
	if b.Profile != nil {
		if err := validate.Struct(b.Profile); err != nil {
			return nil, fmt.Errorf("profile: %w", err)
		}
	}
	if err := validateAll(validate, "experiences", b.Experiences); err != nil {
		return nil, err
	}
	if err := validateAll(validate, "skills", b.Skills); err != nil {
		return nil, err
	}
	if err := validateAll(validate, "projects", b.Projects); err != nil {
		return nil, err
	}
	if err := validateAll(validate, "education", b.Education); err != nil {
		return nil, err
	}
	if err := validateAll(validate, "keywords", b.Keywords); err != nil {
		return nil, err
	}
	return &b, nil
}

func validateAll[T any](validate *validator.Validate, name string, records []T) error {
	for i := range records {
		if err := validate.Struct(&records[i]); err != nil {
			return fmt.Errorf("%s[%d]: %w", name, i, err)
		}
	}
	return nil
}

// Import writes every record in b as a new record. Stored IDs in the bundle
// are ignored; the profile replaces the current one. Writes are not grouped;
// use ImportTx to make them atomic.
func Import(ctx context.Context, w Writer, b *Bundle) (*Summary, error) {
	sum := &Summary{}

	if b.Profile != nil {
		if err := w.UpsertProfile(ctx, b.Profile); err != nil {
			return sum, err
		}
		sum.Profile = true
	}

	for i := range b.Experiences {
		rec := b.Experiences[i]
		rec.Meta = db.Meta{}
		if err := w.CreateExperience(ctx, &rec); err != nil {
			return sum, err
		}
		sum.Experiences++
	}
	for i := range b.Skills {
		rec := b.Skills[i]
		rec.Meta = db.Meta{}
		if err := w.CreateSkill(ctx, &rec); err != nil {
			return sum, err
		}
		sum.Skills++
	}
	for i := range b.Projects {
		rec := b.Projects[i]
		rec.Meta = db.Meta{}
		if err := w.CreateProject(ctx, &rec); err != nil {
			return sum, err
		}
		sum.Projects++
	}
	for i := range b.Education {
		rec := b.Education[i]
		rec.Meta = db.Meta{}
		if err := w.CreateEducation(ctx, &rec); err != nil {
			return sum, err
		}
		sum.Education++
	}
	for i := range b.Keywords {
		rec := b.Keywords[i]
		rec.Meta = db.Meta{}
		if err := w.CreateKeyword(ctx, &rec); err != nil {
			return sum, err
		}
		sum.Keywords++
	}
	return sum, nil
}

// ImportTx runs Import inside a single transaction started by withTx, so a
// failed write leaves the store untouched. db.DB.WithTx fits withTx.
func ImportTx[W Writer](ctx context.Context, withTx func(context.Context, func(W) error) error, b *Bundle) (*Summary, error) {
	var sum *Summary
	err := withTx(ctx, func(w W) error {
		var err error
		sum, err = Import(ctx, w, b)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sum, nil
}

// Count reports what Import would write for b
func Count(b *Bundle) *Summary {
	return &Summary{
		Profile:     b.Profile != nil,
		Experiences: len(b.Experiences),
		Skills:      len(b.Skills),
		Projects:    len(b.Projects),
		Education:   len(b.Education),
		Keywords:    len(b.Keywords),
	}
}
