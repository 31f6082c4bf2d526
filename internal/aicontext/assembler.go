package aicontext

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/career-admin/internal/db"
	"github.com/jonathan/career-admin/internal/logging"
)

// Related-record bounds
const (
	maxSiblings            = 2 // other experiences or projects shown next to the current one
	maxFeaturedExperiences = 3 // experiences shown while editing a skill
	valuePropCount         = 3
)

// Store is the read side of the record store the assembler needs
type Store interface {
	GetProfile(ctx context.Context) (*db.Profile, error)
	GetExperience(ctx context.Context, id uuid.UUID) (*db.Experience, error)
	GetSkill(ctx context.Context, id uuid.UUID) (*db.Skill, error)
	GetProject(ctx context.Context, id uuid.UUID) (*db.Project, error)
	GetEducation(ctx context.Context, id uuid.UUID) (*db.Education, error)
	ListExperiences(ctx context.Context, f db.ListFilter) ([]db.Experience, error)
	ListSkills(ctx context.Context, f db.ListFilter) ([]db.Skill, error)
	ListProjects(ctx context.Context, f db.ListFilter) ([]db.Project, error)
	ListKeywords(ctx context.Context, f db.ListFilter) ([]db.Keyword, error)
}

// Assembler builds Contexts from a Store
type Assembler struct {
	store  Store
	logger *slog.Logger
}

// NewAssembler creates an assembler. A nil logger discards output.
func NewAssembler(store Store, logger *slog.Logger) *Assembler {
	return &Assembler{store: store, logger: logging.OrDiscard(logger)}
}

// Build assembles the context for req. It never fails: sub-fetch errors are
// logged and replaced by empty lists, and a profile failure yields Stub.
func (a *Assembler) Build(ctx context.Context, req Request) *Context {
	profile, err := a.store.GetProfile(ctx)
	if err != nil {
		a.logger.Warn("profile fetch failed, using stub context",
			"collection", req.Collection, "error", err)
		return Stub(req)
	}
	if profile == nil {
		profile = &db.Profile{}
	}

	out := &Context{
		ProfileSummary: Summarize(profile, req.RoleType.String()),
		RelatedContext: EmptyRelated(),
		EditingContext: req,
	}

	if req.Collection == db.CollectionProfile {
		out.CurrentItem = profile
	} else if req.ItemID != "" {
		out.CurrentItem = a.currentItem(ctx, req)
	}

	role := req.RoleType.String()
	switch req.Collection {
	case db.CollectionExperiences:
		out.RelatedContext.Skills = a.skills(ctx, role)
		out.RelatedContext.Keywords = a.keywords(ctx, role)
		out.RelatedContext.RecentExperiences = a.siblingExperiences(ctx, role, req.ItemID)
	case db.CollectionProjects:
		out.RelatedContext.Skills = a.skills(ctx, role)
		out.RelatedContext.Keywords = a.keywords(ctx, role)
		out.RelatedContext.RelatedProjects = a.siblingProjects(ctx, role, req.ItemID)
	case db.CollectionSkills:
		out.RelatedContext.RelatedExperiences = a.featuredExperiences(ctx, role)
	}

	return out
}

// Summarize reduces a profile to the fields every prompt carries.
// Positioning prefers the role-specific statement and falls back to the current one.
func Summarize(p *db.Profile, roleType string) ProfileSummary {
	positioning := p.Positioning.ByRole[roleType]
	if positioning == "" {
		positioning = p.Positioning.Current
	}

	props := p.ValuePropositions
	if len(props) > valuePropCount {
		props = props[:valuePropCount]
	}

	return ProfileSummary{
		Name:        p.PersonalInfo.Name,
		Positioning: positioning,
		ValueProps:  append([]string{}, props...),
		Mission:     p.ProfessionalMission,
	}
}

// currentItem fetches the record being edited. Missing records, malformed IDs
// and fetch errors all yield nil.
func (a *Assembler) currentItem(ctx context.Context, req Request) any {
	id, err := uuid.Parse(req.ItemID)
	if err != nil {
		a.logger.Warn("ignoring malformed item id", "collection", req.Collection, "item_id", req.ItemID)
		return nil
	}

	var (
		item  any
		found bool
	)
	switch req.Collection {
	case db.CollectionExperiences:
		rec, ferr := a.store.GetExperience(ctx, id)
		item, found, err = rec, rec != nil, ferr
	case db.CollectionSkills:
		rec, ferr := a.store.GetSkill(ctx, id)
		item, found, err = rec, rec != nil, ferr
	case db.CollectionProjects:
		rec, ferr := a.store.GetProject(ctx, id)
		item, found, err = rec, rec != nil, ferr
	case db.CollectionEducation:
		rec, ferr := a.store.GetEducation(ctx, id)
		item, found, err = rec, rec != nil, ferr
	default:
		return nil
	}

	if err != nil {
		a.logger.Warn("current item fetch failed", "collection", req.Collection, "item_id", req.ItemID, "error", err)
		return nil
	}
	if !found {
		return nil
	}
	return item
}

func (a *Assembler) skills(ctx context.Context, role string) []db.Skill {
	skills, err := a.store.ListSkills(ctx, db.ListFilter{RoleType: role})
	if err != nil {
		a.logger.Warn("related fetch failed", "fetch", "skills", "role_type", role, "error", err)
		return []db.Skill{}
	}
	return nonNil(skills)
}

func (a *Assembler) keywords(ctx context.Context, role string) []string {
	keywords, err := a.store.ListKeywords(ctx, db.ListFilter{RoleType: role})
	if err != nil {
		a.logger.Warn("related fetch failed", "fetch", "keywords", "role_type", role, "error", err)
		return []string{}
	}

	terms := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k.Term != "" {
			terms = append(terms, k.Term)
		}
	}
	return terms
}

// siblingExperiences returns up to maxSiblings role-matching experiences other than itemID
func (a *Assembler) siblingExperiences(ctx context.Context, role, itemID string) []db.Experience {
	exps, err := a.store.ListExperiences(ctx, db.ListFilter{RoleType: role, Limit: maxSiblings + 1})
	if err != nil {
		a.logger.Warn("related fetch failed", "fetch", "recent_experiences", "role_type", role, "error", err)
		return []db.Experience{}
	}
	return excludeAndCap(exps, itemID, maxSiblings, func(e *db.Experience) uuid.UUID { return e.ID })
}

func (a *Assembler) siblingProjects(ctx context.Context, role, itemID string) []db.Project {
	projects, err := a.store.ListProjects(ctx, db.ListFilter{RoleType: role, Limit: maxSiblings + 1})
	if err != nil {
		a.logger.Warn("related fetch failed", "fetch", "related_projects", "role_type", role, "error", err)
		return []db.Project{}
	}
	return excludeAndCap(projects, itemID, maxSiblings, func(p *db.Project) uuid.UUID { return p.ID })
}

func (a *Assembler) featuredExperiences(ctx context.Context, role string) []db.Experience {
	exps, err := a.store.ListExperiences(ctx, db.ListFilter{
		RoleType: role,
		Featured: db.Bool(true),
		Limit:    maxFeaturedExperiences,
	})
	if err != nil {
		a.logger.Warn("related fetch failed", "fetch", "related_experiences", "role_type", role, "error", err)
		return []db.Experience{}
	}
	if len(exps) > maxFeaturedExperiences {
		exps = exps[:maxFeaturedExperiences]
	}
	return nonNil(exps)
}

// excludeAndCap drops the record whose ID equals itemID and keeps at most n
func excludeAndCap[T any](records []T, itemID string, n int, idOf func(*T) uuid.UUID) []T {
	out := make([]T, 0, n)
	for i := range records {
		if len(out) == n {
			break
		}
		if itemID != "" && strings.EqualFold(idOf(&records[i]).String(), itemID) {
			continue
		}
		out = append(out, records[i])
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
