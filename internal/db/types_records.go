package db

import "time"

// PersonalInfo is the contact block of the profile
type PersonalInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	LinkedIn string `json:"linkedin,omitempty" validate:"omitempty,url"`
	GitHub   string `json:"github,omitempty" validate:"omitempty,url"`
	Website  string `json:"website,omitempty" validate:"omitempty,url"`
}

// Positioning holds the general positioning statement and per-role overrides
type Positioning struct {
	Current string            `json:"current"`
	ByRole  map[string]string `json:"by_role,omitempty"`
}

// Profile is the singleton personal profile document
type Profile struct {
	PersonalInfo        PersonalInfo `json:"personal_info" validate:"required"`
	Positioning         Positioning  `json:"positioning"`
	ValuePropositions   []string     `json:"value_propositions"`
	ProfessionalMission string       `json:"professional_mission"`
	UniqueSellingPoints []string     `json:"unique_selling_points"`
	UpdatedAt           time.Time    `json:"updated_at,omitzero"`
}

// Achievement is a quantified result attached to an experience
type Achievement struct {
	Description string   `json:"description" validate:"required"`
	Impact      string   `json:"impact,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

// Experience is an employment history entry
type Experience struct {
	Meta
	Company          string        `json:"company" validate:"required"`
	Title            string        `json:"title" validate:"required"`
	Location         string        `json:"location,omitempty"`
	StartDate        *Date         `json:"start_date,omitempty"`
	EndDate          *Date         `json:"end_date,omitempty"` // nil means current
	RoleTypes        []string      `json:"role_types"`
	Responsibilities []string      `json:"responsibilities"`
	Achievements     []Achievement `json:"achievements,omitempty" validate:"dive"`
	Technologies     []string      `json:"technologies"`
	Featured         bool          `json:"featured"`
	DisplayOrder     int           `json:"display_order"`
}

// IsCurrent reports whether the experience has no end date
func (e *Experience) IsCurrent() bool {
	return e.EndDate == nil || e.EndDate.IsZero()
}

// Skill is a single skill entry in the current (version 2) flat shape
type Skill struct {
	Meta
	Name              string   `json:"name" validate:"required"`
	RelevantRoles     []string `json:"relevant_roles"`
	Level             string   `json:"level,omitempty"`
	Rating            int      `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	YearsOfExperience float64  `json:"years_of_experience,omitempty" validate:"gte=0"`
	Tags              []string `json:"tags,omitempty"`
	Keywords          []string `json:"keywords,omitempty"`
	Featured          bool     `json:"featured"`
	DisplayOrder      int      `json:"display_order"`
}

// ProjectType classifies a project
type ProjectType string

// Project types
const (
	ProjectTechnicalWriting    ProjectType = "technical_writing"
	ProjectSoftwareEngineering ProjectType = "software_engineering"
	ProjectLeadership          ProjectType = "leadership"
	ProjectHybrid              ProjectType = "hybrid"
)

// ProjectLink is an external link shown with a project
type ProjectLink struct {
	URL  string `json:"url" validate:"required,url"`
	Text string `json:"text"`
	Type string `json:"type,omitempty"` // e.g. github, demo, article
}

// Project is a portfolio project
type Project struct {
	Meta
	Name         string        `json:"name" validate:"required"`
	Type         ProjectType   `json:"type" validate:"required,oneof=technical_writing software_engineering leadership hybrid"`
	Overview     string        `json:"overview,omitempty"`
	Challenge    string        `json:"challenge,omitempty"`
	Approach     string        `json:"approach,omitempty"`
	Outcome      string        `json:"outcome,omitempty"`
	Impact       string        `json:"impact,omitempty"`
	Technologies []string      `json:"technologies"`
	Keywords     []string      `json:"keywords,omitempty"`
	Links        []ProjectLink `json:"links,omitempty" validate:"dive"`
	RoleTypes    []string      `json:"role_types"`
	Featured     bool          `json:"featured"`
	DisplayOrder int           `json:"display_order"`
}

// Education is a degree or certificate entry
type Education struct {
	Meta
	Institution        string   `json:"institution" validate:"required"`
	Degree             string   `json:"degree,omitempty"`
	Field              string   `json:"field,omitempty"`
	GraduationYear     int      `json:"graduation_year,omitempty" validate:"omitempty,min=1900,max=2100"`
	RelevantCoursework []string `json:"relevant_coursework,omitempty"`
	DisplayOrder       int      `json:"display_order"`
}

// Keyword is an ATS search term associated with role types
type Keyword struct {
	Meta
	Term         string   `json:"term" validate:"required"`
	Category     string   `json:"category,omitempty"`
	RoleTypes    []string `json:"role_types"`
	DisplayOrder int      `json:"display_order"`
}

func (e *Experience) meta() *Meta        { return &e.Meta }
func (e *Experience) flags() (bool, int) { return e.Featured, e.DisplayOrder }

func (s *Skill) meta() *Meta        { return &s.Meta }
func (s *Skill) flags() (bool, int) { return s.Featured, s.DisplayOrder }

func (p *Project) meta() *Meta        { return &p.Meta }
func (p *Project) flags() (bool, int) { return p.Featured, p.DisplayOrder }

func (e *Education) meta() *Meta        { return &e.Meta }
func (e *Education) flags() (bool, int) { return false, e.DisplayOrder }

func (k *Keyword) meta() *Meta        { return &k.Meta }
func (k *Keyword) flags() (bool, int) { return false, k.DisplayOrder }
