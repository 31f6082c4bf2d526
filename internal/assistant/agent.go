package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/career-admin/internal/db"
	"github.com/jonathan/career-admin/internal/llm"
	"github.com/jonathan/career-admin/internal/logging"
	"github.com/jonathan/career-admin/internal/prompts"
	"github.com/jonathan/career-admin/internal/types"
)

// ErrCareerDataUnavailable is returned when the bulk fetch behind a draft fails
var ErrCareerDataUnavailable = errors.New("career data unavailable")

// CareerStore is the read side of the record store a draft needs
type CareerStore interface {
	GetProfile(ctx context.Context) (*db.Profile, error)
	ListExperiences(ctx context.Context, f db.ListFilter) ([]db.Experience, error)
	ListSkills(ctx context.Context, f db.ListFilter) ([]db.Skill, error)
	ListProjects(ctx context.Context, f db.ListFilter) ([]db.Project, error)
	ListEducation(ctx context.Context, f db.ListFilter) ([]db.Education, error)
}

// PostingFetcher turns a job posting URL into plain text
type PostingFetcher interface {
	FetchPosting(ctx context.Context, url string) (string, error)
}

// Draft is a generated or revised document
type Draft struct {
	Kind    types.DraftKind `json:"kind"`
	Content string          `json:"content"`
	Usage   *llm.Usage      `json:"usage,omitempty"`
	// JobDescriptionFetched is set when the description came from the posting URL
	JobDescriptionFetched bool `json:"jobDescriptionFetched,omitempty"`
}

// DefaultFetchTimeout bounds the job posting fetch that may precede a draft
const DefaultFetchTimeout = 30 * time.Second

// JobAgentConfig configures a JobAgent. Timeout bounds the completion call
// alone; FetchTimeout bounds the posting fetch.
type JobAgentConfig struct {
	Fetcher      PostingFetcher // optional
	Timeout      time.Duration
	FetchTimeout time.Duration
	Logger       *slog.Logger
}

// JobAgent writes resumes, cover letters and application answers tailored to a job
type JobAgent struct {
	store        CareerStore
	client       llm.Client
	fetcher      PostingFetcher
	timeout      time.Duration
	fetchTimeout time.Duration
	logger       *slog.Logger
}

// NewJobAgent creates a job agent
func NewJobAgent(store CareerStore, client llm.Client, cfg JobAgentConfig) *JobAgent {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	return &JobAgent{
		store:        store,
		client:       client,
		fetcher:      cfg.Fetcher,
		timeout:      cfg.Timeout,
		fetchTimeout: cfg.FetchTimeout,
		logger:       logging.OrDiscard(cfg.Logger),
	}
}

// GenerateDraft writes a new document of the given kind
func (a *JobAgent) GenerateDraft(ctx context.Context, kind types.DraftKind, req types.DraftRequest) (*Draft, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", llm.ErrInvalidRequest, err)
	}
	if err := req.JobInfo.ValidateFor(kind); err != nil {
		return nil, fmt.Errorf("%w: %v", llm.ErrInvalidRequest, err)
	}

	return a.run(ctx, prompts.TailoringInput{
		Kind:       kind,
		Job:        req.JobInfo,
		Additional: req.AdditionalContext,
	})
}

// ReviseDraft rewrites priorDraft according to feedback. It repeats the full
// fetch and prompt cycle; no state is kept between calls.
func (a *JobAgent) ReviseDraft(ctx context.Context, kind types.DraftKind, req types.ReviseRequest) (*Draft, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", llm.ErrInvalidRequest, err)
	}
	if err := req.JobInfo.ValidateFor(kind); err != nil {
		return nil, fmt.Errorf("%w: %v", llm.ErrInvalidRequest, err)
	}

	return a.run(ctx, prompts.TailoringInput{
		Kind:       kind,
		Job:        req.JobInfo,
		PriorDraft: req.PriorDraft,
		Feedback:   req.Feedback,
	})
}

func (a *JobAgent) run(ctx context.Context, in prompts.TailoringInput) (*Draft, error) {
	data, err := a.fetchCareerData(ctx)
	if err != nil {
		a.logger.Error("career data fetch failed", "kind", in.Kind, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrCareerDataUnavailable, err)
	}
	in.Data = *data

	fetched := a.fillDescription(ctx, &in.Job)

	revise := in.PriorDraft != ""
	req := &llm.Request{
		System: prompts.BuildTailoringPrompt(in),
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: prompts.UserInstruction(in.Kind, revise)},
		},
		Options: llm.Options{MaxTokens: llm.MaxTokensCeiling},
		Tier:    llm.TierAdvanced,
	}

	completeCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	resp, err := a.client.Complete(completeCtx, req)
	if err != nil {
		a.logger.Error("draft completion failed",
			"kind", in.Kind, "revise", revise, "error_kind", llm.KindOf(err), "error", err)
		return nil, err
	}

	a.logger.Info("draft generated",
		"kind", in.Kind,
		"revise", revise,
		"experiences", len(in.Data.Experiences),
		"duration", time.Since(start))

	return &Draft{
		Kind:                  in.Kind,
		Content:               llm.StripCodeFences(resp.Message.Content),
		Usage:                 resp.Usage,
		JobDescriptionFetched: fetched,
	}, nil
}

// fetchCareerData loads the profile and every experience, skill and project
// concurrently. Any failure fails the whole fetch.
func (a *JobAgent) fetchCareerData(ctx context.Context) (*prompts.CareerData, error) {
	var data prompts.CareerData
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := a.store.GetProfile(gctx)
		if err != nil {
			return fmt.Errorf("profile: %w", err)
		}
		data.Profile = p
		return nil
	})
	g.Go(func() error {
		exps, err := a.store.ListExperiences(gctx, db.ListFilter{})
		if err != nil {
			return fmt.Errorf("experiences: %w", err)
		}
		data.Experiences = exps
		return nil
	})
	g.Go(func() error {
		skills, err := a.store.ListSkills(gctx, db.ListFilter{})
		if err != nil {
			return fmt.Errorf("skills: %w", err)
		}
		data.Skills = skills
		return nil
	})
	g.Go(func() error {
		projects, err := a.store.ListProjects(gctx, db.ListFilter{})
		if err != nil {
			return fmt.Errorf("projects: %w", err)
		}
		data.Projects = projects
		return nil
	})
	g.Go(func() error {
		education, err := a.store.ListEducation(gctx, db.ListFilter{})
		if err != nil {
			return fmt.Errorf("education: %w", err)
		}
		data.Education = education
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &data, nil
}

// fillDescription fetches the posting text when only a URL was given.
// A failed fetch is logged and the draft proceeds without a description.
func (a *JobAgent) fillDescription(ctx context.Context, job *types.JobInfo) bool {
	if a.fetcher == nil || job.URL == "" || strings.TrimSpace(job.Description) != "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()

	text, err := a.fetcher.FetchPosting(ctx, job.URL)
	if err != nil {
		a.logger.Warn("job posting fetch failed", "url", job.URL, "error", err)
		return false
	}
	job.Description = text
	return true
}
