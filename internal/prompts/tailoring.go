package prompts

import (
	"fmt"
	"strings"

	"github.com/jonathan/career-admin/internal/db"
	"github.com/jonathan/career-admin/internal/types"
)

const tailoringFile = "tailoring.json"

// TailoringLimits caps how much career data is embedded in a tailoring prompt.
// Records are truncated by prefix in source order.
type TailoringLimits struct {
	Experiences int
	Skills      int
	Projects    int
}

// LimitsFor returns the truncation limits for a draft kind
func LimitsFor(kind types.DraftKind) TailoringLimits {
	if kind == types.DraftQuestionAnswer {
		return TailoringLimits{Experiences: 8, Skills: 40, Projects: 6}
	}
	return TailoringLimits{Experiences: 10, Skills: 50, Projects: 8}
}

// CareerData is the bulk snapshot a tailoring prompt is built from
type CareerData struct {
	Profile     *db.Profile
	Experiences []db.Experience
	Skills      []db.Skill
	Projects    []db.Project
	Education   []db.Education
}

// TailoringInput is everything needed to render a draft prompt.
// PriorDraft and Feedback are set only for revisions.
type TailoringInput struct {
	Kind       types.DraftKind
	Job        types.JobInfo
	Data       CareerData
	Additional string
	PriorDraft string
	Feedback   string
	Limits     TailoringLimits
}

// IsRevision reports whether the input revises an earlier draft
func (in TailoringInput) IsRevision() bool {
	return in.PriorDraft != ""
}

var tailoringBuilder = NewBuilder(
	Section[TailoringInput]{Name: "task", Render: renderTask},
	Section[TailoringInput]{Name: "job", Render: renderJob},
	Section[TailoringInput]{
		Name:   "question",
		When:   func(in TailoringInput) bool { return in.Kind == types.DraftQuestionAnswer },
		Render: func(in TailoringInput) string { return "APPLICATION QUESTION:\n" + in.Job.Question },
	},
	Section[TailoringInput]{
		Name:   "profile",
		When:   func(in TailoringInput) bool { return in.Data.Profile != nil },
		Render: renderCandidate,
	},
	Section[TailoringInput]{Name: "experiences", Render: renderExperiences},
	Section[TailoringInput]{Name: "skills", Render: renderSkills},
	Section[TailoringInput]{Name: "projects", Render: renderProjects},
	Section[TailoringInput]{Name: "education", Render: renderEducation},
	Section[TailoringInput]{
		Name:   "additional",
		When:   func(in TailoringInput) bool { return strings.TrimSpace(in.Additional) != "" },
		Render: func(in TailoringInput) string { return "ADDITIONAL CONTEXT:\n" + in.Additional },
	},
	Section[TailoringInput]{
		Name:   "revision",
		When:   TailoringInput.IsRevision,
		Render: renderRevision,
	},
	Section[TailoringInput]{
		Name:   "output",
		Render: func(in TailoringInput) string { return MustGet(tailoringFile, "output-"+string(in.Kind)) },
	},
)

// BuildTailoringPrompt renders the system prompt for a draft.
// Zero limits fall back to LimitsFor(in.Kind).
func BuildTailoringPrompt(in TailoringInput) string {
	if in.Limits == (TailoringLimits{}) {
		in.Limits = LimitsFor(in.Kind)
	}
	return tailoringBuilder.Build(in)
}

// TailoringSections reports which sections BuildTailoringPrompt includes for in
func TailoringSections(in TailoringInput) []string {
	if in.Limits == (TailoringLimits{}) {
		in.Limits = LimitsFor(in.Kind)
	}
	return tailoringBuilder.Included(in)
}

// UserInstruction returns the single user turn sent alongside a tailoring prompt
func UserInstruction(kind types.DraftKind, revise bool) string {
	key := "user-generate"
	if revise {
		key = "user-revise"
	}
	return Format(MustGet(tailoringFile, key), map[string]string{
		"Kind": kind.Label(),
	})
}

func renderTask(in TailoringInput) string {
	return Format(MustGet(tailoringFile, "task-"+string(in.Kind)), map[string]string{
		"Title":   orNA(in.Job.Title),
		"Company": orNA(in.Job.Company),
		"Role":    roleLabel(in.Job.RoleType),
	})
}

func renderJob(in TailoringInput) string {
	var sb strings.Builder
	sb.WriteString("JOB DETAILS:\n")
	fmt.Fprintf(&sb, "Company: %s\n", orNA(in.Job.Company))
	fmt.Fprintf(&sb, "Title: %s\n", orNA(in.Job.Title))
	fmt.Fprintf(&sb, "URL: %s\n", orNA(in.Job.URL))
	fmt.Fprintf(&sb, "Description:\n%s\n", orNA(in.Job.Description))
	return sb.String()
}

func renderCandidate(in TailoringInput) string {
	p := in.Data.Profile
	var sb strings.Builder
	sb.WriteString("CANDIDATE PROFILE:\n")
	fmt.Fprintf(&sb, "Name: %s\n", orNA(p.PersonalInfo.Name))
	fmt.Fprintf(&sb, "Email: %s\n", orNA(p.PersonalInfo.Email))
	fmt.Fprintf(&sb, "Location: %s\n", orNA(p.PersonalInfo.Location))

	positioning := p.Positioning.Current
	if byRole := p.Positioning.ByRole[in.Job.RoleType.String()]; byRole != "" {
		positioning = byRole
	}
	fmt.Fprintf(&sb, "Positioning: %s\n", orNA(positioning))
	fmt.Fprintf(&sb, "Value propositions: %s\n", joinOrNA(p.ValuePropositions))
	fmt.Fprintf(&sb, "Professional mission: %s\n", orNA(p.ProfessionalMission))
	return sb.String()
}

func renderExperiences(in TailoringInput) string {
	exps := head(in.Data.Experiences, in.Limits.Experiences)
	if len(exps) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("EXPERIENCE:\n")
	for i, e := range exps {
		fmt.Fprintf(&sb, "\n%d. %s at %s (%s)\n", i+1, orNA(e.Title), orNA(e.Company), formatRange(e.StartDate, e.EndDate))
		fmt.Fprintf(&sb, "   Location: %s\n", orNA(e.Location))
		for _, r := range e.Responsibilities {
			fmt.Fprintf(&sb, "   - %s\n", r)
		}
		for _, a := range e.Achievements {
			if a.Impact != "" {
				fmt.Fprintf(&sb, "   * %s (%s)\n", a.Description, a.Impact)
			} else {
				fmt.Fprintf(&sb, "   * %s\n", a.Description)
			}
		}
		fmt.Fprintf(&sb, "   Technologies: %s\n", joinOrNA(e.Technologies))
	}
	return sb.String()
}

func renderSkills(in TailoringInput) string {
	skills := head(in.Data.Skills, in.Limits.Skills)
	if len(skills) == 0 {
		return ""
	}
	names := make([]string, 0, len(skills))
	for _, s := range skills {
		names = append(names, s.Name)
	}
	return "SKILLS:\n" + strings.Join(names, ", ")
}

func renderProjects(in TailoringInput) string {
	projects := head(in.Data.Projects, in.Limits.Projects)
	if len(projects) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("PROJECTS:\n")
	for i, p := range projects {
		fmt.Fprintf(&sb, "\n%d. %s\n", i+1, p.Name)
		fmt.Fprintf(&sb, "   Overview: %s\n", orNA(p.Overview))
		fmt.Fprintf(&sb, "   Impact: %s\n", orNA(p.Impact))
		fmt.Fprintf(&sb, "   Technologies: %s\n", joinOrNA(p.Technologies))
	}
	return sb.String()
}

// renderEducation lists every education entry; the list is short and never truncated
func renderEducation(in TailoringInput) string {
	if len(in.Data.Education) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("EDUCATION:\n")
	for _, e := range in.Data.Education {
		degree := strings.TrimSpace(strings.Join([]string{e.Degree, e.Field}, " "))
		year := "N/A"
		if e.GraduationYear > 0 {
			year = fmt.Sprint(e.GraduationYear)
		}
		fmt.Fprintf(&sb, "- %s, %s (%s)\n", orNA(degree), e.Institution, year)
		if len(e.RelevantCoursework) > 0 {
			fmt.Fprintf(&sb, "  Coursework: %s\n", strings.Join(e.RelevantCoursework, ", "))
		}
	}
	return sb.String()
}

func renderRevision(in TailoringInput) string {
	return "PREVIOUS DRAFT:\n" + in.PriorDraft + "\n\nFEEDBACK:\n" + orNA(in.Feedback)
}
