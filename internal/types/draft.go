package types

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DraftKind is the document a job-tailoring call produces
type DraftKind string

// Draft kinds
const (
	DraftResume         DraftKind = "resume"
	DraftCoverLetter    DraftKind = "cover_letter"
	DraftQuestionAnswer DraftKind = "question_answer"
)

// ParseDraftKind validates a kind taken from a URL path or flag
func ParseDraftKind(s string) (DraftKind, error) {
	switch k := DraftKind(s); k {
	case DraftResume, DraftCoverLetter, DraftQuestionAnswer:
		return k, nil
	default:
		return "", fmt.Errorf("unknown draft kind %q", s)
	}
}

// Label returns the kind in plain words, e.g. "cover letter"
func (k DraftKind) Label() string {
	if k == DraftQuestionAnswer {
		return "answer"
	}
	return strings.ReplaceAll(string(k), "_", " ")
}

// JobInfo describes the job a draft is tailored to
type JobInfo struct {
	Company     string   `json:"company"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url,omitempty" validate:"omitempty,url"`
	Question    string   `json:"question,omitempty"` // application question, question_answer only
	RoleType    RoleType `json:"roleType,omitempty"`
}

// DraftRequest is the body of a generate-draft call
type DraftRequest struct {
	JobInfo           JobInfo `json:"jobInfo"`
	AdditionalContext string  `json:"additionalContext,omitempty"`
}

// ReviseRequest is the body of a revise-draft call
type ReviseRequest struct {
	JobInfo    JobInfo `json:"jobInfo"`
	PriorDraft string  `json:"priorDraft" validate:"required"`
	Feedback   string  `json:"feedback" validate:"required"`
}

// ValidateFor checks the job info fields the kind needs
func (j *JobInfo) ValidateFor(kind DraftKind) error {
	validate := validator.New()
	if err := validate.Struct(j); err != nil {
		return err
	}
	if j.Company == "" && j.Title == "" && j.Description == "" && j.URL == "" {
		return fmt.Errorf("jobInfo needs at least a company, title, description or url")
	}
	if kind == DraftQuestionAnswer && j.Question == "" {
		return fmt.Errorf("jobInfo.question is required for question_answer drafts")
	}
	return nil
}

// Validate validates the DraftRequest using the validator.
func (r *DraftRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the ReviseRequest using the validator.
func (r *ReviseRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
