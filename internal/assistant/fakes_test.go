package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/career-admin/internal/db"
	"github.com/jonathan/career-admin/internal/llm"
)

// fakeClient records requests and replies with a canned response or error
type fakeClient struct {
	mu       sync.Mutex
	requests []*llm.Request
	deadline bool
	budget   time.Duration // time left before the deadline when called

	reply string
	usage *llm.Usage
	err   error
}

func (c *fakeClient) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	var dl time.Time
	dl, c.deadline = ctx.Deadline()
	if c.deadline {
		c.budget = time.Until(dl)
	}
	if c.err != nil {
		return nil, c.err
	}
	return &llm.Response{
		Message: llm.Message{Role: llm.RoleAssistant, Content: c.reply},
		Usage:   c.usage,
	}, nil
}

func (c *fakeClient) Stream(ctx context.Context, req *llm.Request, onDelta func(string) error) (*llm.Response, error) {
	resp, err := c.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	for _, word := range strings.SplitAfter(resp.Message.Content, " ") {
		if err := onDelta(word); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func (c *fakeClient) GetModel(llm.ModelTier) string { return "fake-model" }
func (c *fakeClient) Close() error                  { return nil }

func (c *fakeClient) last() *llm.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.requests) == 0 {
		return nil
	}
	return c.requests[len(c.requests)-1]
}

var errStoreDown = errors.New("store unavailable")

type fakeStore struct {
	profile     *db.Profile
	experiences []db.Experience
	skills      []db.Skill
	projects    []db.Project
	education   []db.Education
	fail        string
}

func (s *fakeStore) GetProfile(context.Context) (*db.Profile, error) {
	if s.fail == "profile" {
		return nil, errStoreDown
	}
	return s.profile, nil
}

func (s *fakeStore) ListExperiences(context.Context, db.ListFilter) ([]db.Experience, error) {
	if s.fail == "experiences" {
		return nil, errStoreDown
	}
	return s.experiences, nil
}

func (s *fakeStore) ListSkills(context.Context, db.ListFilter) ([]db.Skill, error) {
	if s.fail == "skills" {
		return nil, errStoreDown
	}
	return s.skills, nil
}

func (s *fakeStore) ListProjects(context.Context, db.ListFilter) ([]db.Project, error) {
	if s.fail == "projects" {
		return nil, errStoreDown
	}
	return s.projects, nil
}

func (s *fakeStore) ListEducation(context.Context, db.ListFilter) ([]db.Education, error) {
	if s.fail == "education" {
		return nil, errStoreDown
	}
	return s.education, nil
}

type fakeFetcher struct {
	text  string
	err   error
	block bool // wait for the context to end
	calls int
}

func (f *fakeFetcher) FetchPosting(ctx context.Context, _ string) (string, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.text, f.err
}
