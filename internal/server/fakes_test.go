package server

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jonathan/career-admin/internal/aicontext"
	"github.com/jonathan/career-admin/internal/assistant"
	"github.com/jonathan/career-admin/internal/config"
	"github.com/jonathan/career-admin/internal/db"
	"github.com/jonathan/career-admin/internal/llm"
	"github.com/jonathan/career-admin/internal/logging"
	"github.com/jonathan/career-admin/internal/server/ratelimit"
)

const (
	testUsername = "admin"
	testPassword = "correct horse battery staple"
)

// memTable is an in-memory document table kept in insertion order
type memTable[T any] struct {
	meta  func(*T) *db.Meta
	order []uuid.UUID
	rows  map[uuid.UUID]T
}

func newMemTable[T any](meta func(*T) *db.Meta) *memTable[T] {
	return &memTable[T]{meta: meta, rows: map[uuid.UUID]T{}}
}

func (t *memTable[T]) get(id uuid.UUID) (*T, error) {
	rec, ok := t.rows[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (t *memTable[T]) list(f db.ListFilter) ([]T, error) {
	out := []T{}
	for _, id := range t.order {
		if rec, ok := t.rows[id]; ok {
			out = append(out, rec)
		}
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (t *memTable[T]) create(rec *T) error {
	m := t.meta(rec)
	m.ID = uuid.New()
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	t.rows[m.ID] = *rec
	t.order = append(t.order, m.ID)
	return nil
}

func (t *memTable[T]) update(rec *T) error {
	m := t.meta(rec)
	prev, ok := t.rows[m.ID]
	if !ok {
		return db.ErrNotFound
	}
	m.CreatedAt = t.meta(&prev).CreatedAt
	m.UpdatedAt = time.Now()
	t.rows[m.ID] = *rec
	return nil
}

func (t *memTable[T]) delete(id uuid.UUID) error {
	if _, ok := t.rows[id]; !ok {
		return db.ErrNotFound
	}
	delete(t.rows, id)
	return nil
}

// fakeStore implements Store in memory
type fakeStore struct {
	mu          sync.Mutex
	profile     *db.Profile
	experiences *memTable[db.Experience]
	skills      *memTable[db.Skill]
	projects    *memTable[db.Project]
	education   *memTable[db.Education]
	keywords    *memTable[db.Keyword]

	lastFilter db.ListFilter
	failLists  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		experiences: newMemTable(func(r *db.Experience) *db.Meta { return &r.Meta }),
		skills:      newMemTable(func(r *db.Skill) *db.Meta { return &r.Meta }),
		projects:    newMemTable(func(r *db.Project) *db.Meta { return &r.Meta }),
		education:   newMemTable(func(r *db.Education) *db.Meta { return &r.Meta }),
		keywords:    newMemTable(func(r *db.Keyword) *db.Meta { return &r.Meta }),
	}
}

func (s *fakeStore) GetProfile(context.Context) (*db.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil, nil
	}
	p := *s.profile
	return &p, nil
}

func (s *fakeStore) UpsertProfile(_ context.Context, p *db.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.UpdatedAt = time.Now()
	clone := *p
	s.profile = &clone
	return nil
}

func (s *fakeStore) filter(f db.ListFilter) error {
	s.lastFilter = f
	return s.failLists
}

func (s *fakeStore) GetExperience(_ context.Context, id uuid.UUID) (*db.Experience, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.experiences.get(id)
}

func (s *fakeStore) ListExperiences(_ context.Context, f db.ListFilter) ([]db.Experience, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.filter(f); err != nil {
		return nil, err
	}
	return s.experiences.list(f)
}

func (s *fakeStore) CreateExperience(_ context.Context, rec *db.Experience) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.experiences.create(rec)
}

func (s *fakeStore) UpdateExperience(_ context.Context, rec *db.Experience) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.experiences.update(rec)
}

func (s *fakeStore) DeleteExperience(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.experiences.delete(id)
}

func (s *fakeStore) GetSkill(_ context.Context, id uuid.UUID) (*db.Skill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skills.get(id)
}

func (s *fakeStore) ListSkills(_ context.Context, f db.ListFilter) ([]db.Skill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.filter(f); err != nil {
		return nil, err
	}
	return s.skills.list(f)
}

func (s *fakeStore) CreateSkill(_ context.Context, rec *db.Skill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skills.create(rec)
}

func (s *fakeStore) UpdateSkill(_ context.Context, rec *db.Skill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skills.update(rec)
}

func (s *fakeStore) DeleteSkill(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skills.delete(id)
}

func (s *fakeStore) GetProject(_ context.Context, id uuid.UUID) (*db.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projects.get(id)
}

func (s *fakeStore) ListProjects(_ context.Context, f db.ListFilter) ([]db.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.filter(f); err != nil {
		return nil, err
	}
	return s.projects.list(f)
}

func (s *fakeStore) CreateProject(_ context.Context, rec *db.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projects.create(rec)
}

func (s *fakeStore) UpdateProject(_ context.Context, rec *db.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projects.update(rec)
}

func (s *fakeStore) DeleteProject(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projects.delete(id)
}

func (s *fakeStore) GetEducation(_ context.Context, id uuid.UUID) (*db.Education, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.education.get(id)
}

func (s *fakeStore) ListEducation(_ context.Context, f db.ListFilter) ([]db.Education, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.filter(f); err != nil {
		return nil, err
	}
	return s.education.list(f)
}

func (s *fakeStore) CreateEducation(_ context.Context, rec *db.Education) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.education.create(rec)
}

func (s *fakeStore) UpdateEducation(_ context.Context, rec *db.Education) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.education.update(rec)
}

func (s *fakeStore) DeleteEducation(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.education.delete(id)
}

func (s *fakeStore) GetKeyword(_ context.Context, id uuid.UUID) (*db.Keyword, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keywords.get(id)
}

func (s *fakeStore) ListKeywords(_ context.Context, f db.ListFilter) ([]db.Keyword, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.filter(f); err != nil {
		return nil, err
	}
	return s.keywords.list(f)
}

func (s *fakeStore) CreateKeyword(_ context.Context, rec *db.Keyword) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keywords.create(rec)
}

func (s *fakeStore) UpdateKeyword(_ context.Context, rec *db.Keyword) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keywords.update(rec)
}

func (s *fakeStore) DeleteKeyword(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keywords.delete(id)
}

// fakeClient is a scripted completion client
type fakeClient struct {
	mu      sync.Mutex
	reply   string
	err     error
	calls   int
	lastReq *llm.Request
}

func (c *fakeClient) record(req *llm.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.lastReq = req
}

func (c *fakeClient) Complete(_ context.Context, req *llm.Request) (*llm.Response, error) {
	c.record(req)
	if c.err != nil {
		return nil, c.err
	}
	return &llm.Response{
		Message: llm.Message{Role: llm.RoleAssistant, Content: c.reply},
		Usage:   &llm.Usage{InputTokens: 10, OutputTokens: 5},
	}, nil
}

func (c *fakeClient) Stream(_ context.Context, req *llm.Request, onDelta func(string) error) (*llm.Response, error) {
	c.record(req)
	if c.err != nil {
		return nil, c.err
	}
	for _, word := range strings.SplitAfter(c.reply, " ") {
		if err := onDelta(word); err != nil {
			return nil, err
		}
	}
	return &llm.Response{Message: llm.Message{Role: llm.RoleAssistant, Content: c.reply}}, nil
}

func (c *fakeClient) GetModel(llm.ModelTier) string { return "fake-model" }
func (c *fakeClient) Close() error                  { return nil }

// testServer bundles a Server with its fakes
type testServer struct {
	*Server
	store  *fakeStore
	client *fakeClient
	token  string
}

type testOption func(*Deps)

func withLimiter(cfg *ratelimit.Config) testOption {
	return func(d *Deps) { d.Limiter = ratelimit.NewLimiter(cfg) }
}

func withLogger(buf *bytes.Buffer) testOption {
	return func(d *Deps) { d.Logger = logging.New(buf, logging.FormatJSON, "debug") }
}

func withOrigins(origins ...string) testOption {
	return func(d *Deps) { d.AllowedOrigins = origins }
}

func testAuthConfig(t *testing.T) *config.AuthConfig {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	return &config.AuthConfig{
		JWTSecret:         "test-secret-key-for-jwt-signing-minimum-32-bytes",
		ExpirationHours:   24,
		AdminUsername:     testUsername,
		AdminPasswordHash: string(hash),
		BcryptCost:        bcrypt.MinCost,
	}
}

func newTestServer(t *testing.T, opts ...testOption) *testServer {
	t.Helper()
	store := newFakeStore()
	client := &fakeClient{reply: "Here is a stronger bullet."}
	auth := testAuthConfig(t)

	deps := Deps{
		Store:     store,
		Assembler: aicontext.NewAssembler(store, nil),
		Assistant: assistant.NewService(client, assistant.ServiceConfig{}),
		Agent:     assistant.NewJobAgent(store, client, assistant.JobAgentConfig{}),
		Auth:      auth,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	s, err := New(deps)
	require.NoError(t, err)
	if deps.Limiter != nil {
		t.Cleanup(deps.Limiter.Stop)
	}

	token, _, err := NewJWTService(auth).GenerateToken(testUsername)
	require.NoError(t, err)

	return &testServer{Server: s, store: store, client: client, token: token}
}

// do sends an authenticated request through the full handler chain
func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	return ts.doAs(ts.token, method, path, body)
}

func (ts *testServer) doAs(token, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)
	return w
}

var errStoreDown = errors.New("connection refused")
