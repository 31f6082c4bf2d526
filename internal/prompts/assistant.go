package prompts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/career-admin/internal/aicontext"
	"github.com/jonathan/career-admin/internal/db"
	"github.com/jonathan/career-admin/internal/types"
)

const assistantFile = "assistant.json"

// AssistantLimits caps the lists rendered into the assistant prompt
type AssistantLimits struct {
	RelatedSkills    int
	Keywords         int
	Responsibilities int
}

// DefaultAssistantLimits returns the caps used by the chat endpoint
func DefaultAssistantLimits() AssistantLimits {
	return AssistantLimits{
		RelatedSkills:    10,
		Keywords:         15,
		Responsibilities: 3,
	}
}

type assistantInput struct {
	ctx    *aicontext.Context
	limits AssistantLimits
}

var assistantBuilder = NewBuilder(
	Section[assistantInput]{Name: "preamble", Render: renderPreamble},
	Section[assistantInput]{Name: "profile", Render: renderProfile},
	Static[assistantInput]("directives", MustGet(assistantFile, "directives")),
	Section[assistantInput]{
		Name:   "current_item",
		When:   func(in assistantInput) bool { return in.ctx.CurrentItem != nil },
		Render: renderCurrentItem,
	},
	Section[assistantInput]{Name: "related", Render: renderRelated},
	Static[assistantInput]("closing", MustGet(assistantFile, "closing")),
)

// BuildAssistantPrompt renders the system prompt for an assistant chat turn.
// It performs no I/O; a nil context renders as the stub.
func BuildAssistantPrompt(c *aicontext.Context, limits AssistantLimits) string {
	return assistantBuilder.Build(assistantInput{ctx: orStub(c), limits: limits})
}

// AssistantSections reports which sections BuildAssistantPrompt includes for c
func AssistantSections(c *aicontext.Context, limits AssistantLimits) []string {
	return assistantBuilder.Included(assistantInput{ctx: orStub(c), limits: limits})
}

func orStub(c *aicontext.Context) *aicontext.Context {
	if c == nil {
		return aicontext.Stub(aicontext.Request{})
	}
	return c
}

func renderPreamble(in assistantInput) string {
	ec := in.ctx.EditingContext

	target := "their career data"
	if ec.Collection != "" {
		target = "the " + strings.ReplaceAll(ec.Collection, "_", " ") + " section"
	}
	if ec.Field != "" {
		target = fmt.Sprintf("the %q field in %s", ec.Field, target)
	}

	return Format(MustGet(assistantFile, "preamble"), map[string]string{
		"Role":   roleLabel(ec.RoleType),
		"Target": target,
	})
}

func renderProfile(in assistantInput) string {
	p := in.ctx.ProfileSummary
	var sb strings.Builder
	line(&sb, "Name", p.Name)
	line(&sb, "Positioning", p.Positioning)
	line(&sb, "Value propositions", strings.Join(p.ValueProps, "; "))
	line(&sb, "Professional mission", p.Mission)
	if sb.Len() == 0 {
		return ""
	}
	return "PROFILE CONTEXT:\n" + sb.String()
}

func renderCurrentItem(in assistantInput) string {
	var sb strings.Builder

	switch item := in.ctx.CurrentItem.(type) {
	case *db.Experience:
		sb.WriteString("CURRENT EXPERIENCE:\n")
		line(&sb, "Title", item.Title)
		line(&sb, "Company", item.Company)
		line(&sb, "Dates", formatRange(item.StartDate, item.EndDate))
		if item.IsCurrent() {
			line(&sb, "Status", "current role (use present tense)")
		} else {
			line(&sb, "Status", "past role (use past tense)")
		}
		responsibilities := head(item.Responsibilities, in.limits.Responsibilities)
		if len(responsibilities) > 0 {
			sb.WriteString("Responsibilities:\n")
			for _, r := range responsibilities {
				sb.WriteString("- " + r + "\n")
			}
		}
		line(&sb, "Technologies", strings.Join(item.Technologies, ", "))
	case *db.Skill:
		sb.WriteString("CURRENT SKILL:\n")
		line(&sb, "Name", item.Name)
		line(&sb, "Level", item.Level)
		if item.Rating > 0 {
			line(&sb, "Rating", fmt.Sprintf("%d/5", item.Rating))
		}
		if item.YearsOfExperience > 0 {
			line(&sb, "Years of experience", fmt.Sprintf("%g", item.YearsOfExperience))
		}
	case *db.Project:
		sb.WriteString("CURRENT PROJECT:\n")
		line(&sb, "Name", item.Name)
		line(&sb, "Type", string(item.Type))
		line(&sb, "Overview", item.Overview)
		line(&sb, "Impact", item.Impact)
		line(&sb, "Technologies", strings.Join(item.Technologies, ", "))
	case *db.Education:
		sb.WriteString("CURRENT EDUCATION:\n")
		line(&sb, "Institution", item.Institution)
		line(&sb, "Degree", item.Degree)
		line(&sb, "Field", item.Field)
		if item.GraduationYear > 0 {
			line(&sb, "Graduation year", fmt.Sprintf("%d", item.GraduationYear))
		}
	case *db.Profile:
		sb.WriteString("CURRENT PROFILE:\n")
		line(&sb, "Name", item.PersonalInfo.Name)
		line(&sb, "Current positioning", item.Positioning.Current)
		if role := in.ctx.EditingContext.RoleType.String(); role != "" {
			line(&sb, "Positioning for this role", item.Positioning.ByRole[role])
		}
		line(&sb, "Professional mission", item.ProfessionalMission)
		line(&sb, "Unique selling points", strings.Join(item.UniqueSellingPoints, "; "))
	case map[string]any:
		sb.WriteString("CURRENT ITEM:\n")
		keys := make([]string, 0, len(item))
		for k := range item {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if s, ok := item[k].(string); ok {
				line(&sb, k, s)
			}
		}
	}

	return sb.String()
}

func renderRelated(in assistantInput) string {
	rc := in.ctx.RelatedContext
	var sb strings.Builder

	skills := SelectSkills(rc.Skills, in.limits.RelatedSkills)
	line(&sb, "Related skills", strings.Join(skills, ", "))
	line(&sb, "Target keywords", strings.Join(head(rc.Keywords, in.limits.Keywords), ", "))

	line(&sb, "Other experiences", strings.Join(experienceLabels(rc.RecentExperiences), "; "))
	line(&sb, "Featured experiences", strings.Join(experienceLabels(rc.RelatedExperiences), "; "))

	projects := make([]string, 0, len(rc.RelatedProjects))
	for _, p := range rc.RelatedProjects {
		projects = append(projects, p.Name)
	}
	line(&sb, "Related projects", strings.Join(projects, ", "))

	if sb.Len() == 0 {
		return ""
	}
	return "RELATED CONTEXT:\n" + sb.String()
}

// SelectSkills returns up to n skill names. When any skill is featured the
// featured ones come first; otherwise source order is kept.
func SelectSkills(skills []db.Skill, n int) []string {
	ordered := make([]db.Skill, 0, len(skills))
	for _, s := range skills {
		if s.Featured {
			ordered = append(ordered, s)
		}
	}
	if len(ordered) > 0 {
		for _, s := range skills {
			if !s.Featured {
				ordered = append(ordered, s)
			}
		}
	} else {
		ordered = skills
	}

	names := make([]string, 0, n)
	for _, s := range head(ordered, n) {
		names = append(names, s.Name)
	}
	return names
}

func experienceLabels(exps []db.Experience) []string {
	labels := make([]string, 0, len(exps))
	for _, e := range exps {
		labels = append(labels, fmt.Sprintf("%s at %s", orNA(e.Title), orNA(e.Company)))
	}
	return labels
}

// roleLabel returns the human-readable role or a neutral fallback
func roleLabel(r types.RoleType) string {
	if label := r.Label(); label != "" {
		return label
	}
	return "general"
}
