package aicontext

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/career-admin/internal/db"
)

var errStoreDown = errors.New("store unavailable")

// fakeStore is an in-memory Store with per-method failure injection
type fakeStore struct {
	mu sync.Mutex

	profile     *db.Profile
	experiences []db.Experience
	skills      []db.Skill
	projects    []db.Project
	education   []db.Education
	keywords    []db.Keyword

	fail    map[string]bool
	filters map[string][]db.ListFilter
}

func newFakeStore() *fakeStore {
	return &fakeStore{fail: map[string]bool{}, filters: map[string][]db.ListFilter{}}
}

func (s *fakeStore) record(name string, f db.ListFilter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters[name] = append(s.filters[name], f)
	if s.fail[name] {
		return errStoreDown
	}
	return nil
}

func (s *fakeStore) failing(name string) error {
	if s.fail[name] {
		return errStoreDown
	}
	return nil
}

func (s *fakeStore) GetProfile(context.Context) (*db.Profile, error) {
	if err := s.failing("profile"); err != nil {
		return nil, err
	}
	return s.profile, nil
}

func (s *fakeStore) GetExperience(_ context.Context, id uuid.UUID) (*db.Experience, error) {
	if err := s.failing("get_experience"); err != nil {
		return nil, err
	}
	for i := range s.experiences {
		if s.experiences[i].ID == id {
			e := s.experiences[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) GetSkill(_ context.Context, id uuid.UUID) (*db.Skill, error) {
	for i := range s.skills {
		if s.skills[i].ID == id {
			sk := s.skills[i]
			return &sk, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) GetProject(_ context.Context, id uuid.UUID) (*db.Project, error) {
	for i := range s.projects {
		if s.projects[i].ID == id {
			p := s.projects[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) GetEducation(_ context.Context, id uuid.UUID) (*db.Education, error) {
	for i := range s.education {
		if s.education[i].ID == id {
			e := s.education[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) ListExperiences(_ context.Context, f db.ListFilter) ([]db.Experience, error) {
	if err := s.record("experiences", f); err != nil {
		return nil, err
	}
	return filterList(s.experiences, f, func(e db.Experience) ([]string, bool) { return e.RoleTypes, e.Featured }), nil
}

func (s *fakeStore) ListSkills(_ context.Context, f db.ListFilter) ([]db.Skill, error) {
	if err := s.record("skills", f); err != nil {
		return nil, err
	}
	return filterList(s.skills, f, func(sk db.Skill) ([]string, bool) { return sk.RelevantRoles, sk.Featured }), nil
}

func (s *fakeStore) ListProjects(_ context.Context, f db.ListFilter) ([]db.Project, error) {
	if err := s.record("projects", f); err != nil {
		return nil, err
	}
	return filterList(s.projects, f, func(p db.Project) ([]string, bool) { return p.RoleTypes, p.Featured }), nil
}

func (s *fakeStore) ListKeywords(_ context.Context, f db.ListFilter) ([]db.Keyword, error) {
	if err := s.record("keywords", f); err != nil {
		return nil, err
	}
	return filterList(s.keywords, f, func(k db.Keyword) ([]string, bool) { return k.RoleTypes, false }), nil
}

func filterList[T any](all []T, f db.ListFilter, attrs func(T) ([]string, bool)) []T {
	out := []T{}
	for _, rec := range all {
		roles, featured := attrs(rec)
		if f.RoleType != "" && !contains(roles, f.RoleType) {
			continue
		}
		if f.Featured != nil && featured != *f.Featured {
			continue
		}
		out = append(out, rec)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
