package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fadilmartias/skillwise/internal/dto"
	"github.com/fadilmartias/skillwise/internal/export"
	"github.com/fadilmartias/skillwise/internal/model"
	"github.com/fadilmartias/skillwise/internal/repository"
	"github.com/fadilmartias/skillwise/internal/roadmap"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSessions struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.RoadmapSession
}

func newMemSessions() *memSessions {
	return &memSessions{rows: map[uuid.UUID]model.RoadmapSession{}}
}

func (m *memSessions) Create(_ context.Context, s *model.RoadmapSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[s.ID] = clone(*s)
	return nil
}

func (m *memSessions) Update(ctx context.Context, s *model.RoadmapSession) error {
	return m.Create(ctx, s)
}

func (m *memSessions) FindByID(_ context.Context, id uuid.UUID) (*model.RoadmapSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	c := clone(s)
	return &c, nil
}

func (m *memSessions) List(_ context.Context, page, pageSize int) ([]model.RoadmapSession, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.RoadmapSession
	for _, s := range m.rows {
		out = append(out, clone(s))
	}
	return out, int64(len(out)), nil
}

func clone(s model.RoadmapSession) model.RoadmapSession {
	p := make(map[string]bool, len(s.Progress))
	for k, v := range s.Progress {
		p[k] = v
	}
	s.Progress = p
	if s.EditingLine != nil {
		c := *s.EditingLine
		s.EditingLine = &c
	}
	return s
}

type memSections struct {
	rows     []model.RoadmapSection
	searches int
}

func (m *memSections) Replace(_ context.Context, _ uuid.UUID, rows []model.RoadmapSection) error {
	m.rows = rows
	return nil
}

func (m *memSections) Search(_ context.Context, _ uuid.UUID, _ pgvector.Vector, topK int) ([]model.RoadmapSection, error) {
	m.searches++
	if topK > len(m.rows) {
		topK = len(m.rows)
	}
	return m.rows[len(m.rows)-topK:], nil
}

type memFeedback struct {
	rows []model.Feedback
}

func (m *memFeedback) Create(_ context.Context, f *model.Feedback) error {
	m.rows = append(m.rows, *f)
	return nil
}

type fakeExtractor struct {
	text  string
	err   error
	calls int
}

func (e *fakeExtractor) Extract(context.Context, string) (string, error) {
	e.calls++
	return e.text, e.err
}

type fakeRequester struct {
	mu      sync.Mutex
	out     []string
	err     error
	prompts []string
}

func (r *fakeRequester) Generate(_ context.Context, p string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = append(r.prompts, p)
	if r.err != nil {
		return "", r.err
	}
	out := r.out[0]
	if len(r.out) > 1 {
		r.out = r.out[1:]
	}
	return out, nil
}

type fakeEmbedder struct {
	calls  int
	failOn string
}

func (e *fakeEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	e.calls++
	if e.failOn != "" && strings.Contains(text, e.failOn) {
		return nil, errors.New("embedding quota exceeded")
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

const generated = "Here is your plan.\n**Month 1**\n* Learn SQL - Beginner-Friendly, Coursera\n* Practice joins [YouTube, Beginner-Friendly]\n**Month 2**\n* Build a dashboard - Advanced, Udemy"

const resume = "Data analyst with three years of Excel reporting and some Python scripting."

type fixture struct {
	uc        *RoadmapUsecase
	sessions  *memSessions
	sections  *memSections
	feedback  *memFeedback
	extractor *fakeExtractor
	requester *fakeRequester
	embedder  *fakeEmbedder
}

func newFixture() *fixture {
	f := &fixture{
		sessions:  newMemSessions(),
		sections:  &memSections{},
		feedback:  &memFeedback{},
		extractor: &fakeExtractor{text: resume},
		requester: &fakeRequester{out: []string{generated}},
		embedder:  &fakeEmbedder{},
	}
	f.uc = NewRoadmapUsecase(f.sessions, f.sections, f.feedback, f.extractor, f.requester, f.embedder)
	f.uc.now = func() time.Time { return time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC) }
	return f
}

func (f *fixture) ready(t *testing.T) uuid.UUID {
	t.Helper()
	s, err := f.uc.CreateSession(context.Background(), "resume.pdf", dto.CreateSessionRequest{Role: "Data Analyst", Goal: "Lead analytics"})
	require.NoError(t, err)
	_, err = f.uc.GenerateRoadmap(context.Background(), s.ID)
	require.NoError(t, err)
	return s.ID
}

func TestCreateSession(t *testing.T) {
	f := newFixture()

	s, err := f.uc.CreateSession(context.Background(), "resume.pdf", dto.CreateSessionRequest{Role: dto.OtherRole, CustomRole: " Game Developer ", Goal: "Ship a game"})

	require.NoError(t, err)
	assert.Equal(t, "Game Developer", s.Role)
	assert.Equal(t, model.StatusUploaded, s.Status)
	stored, err := f.sessions.FindByID(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, resume, stored.ResumeText)
}

func TestCreateSession_Errors(t *testing.T) {
	t.Run("missing custom role", func(t *testing.T) {
		f := newFixture()
		_, err := f.uc.CreateSession(context.Background(), "resume.pdf", dto.CreateSessionRequest{Role: dto.OtherRole})
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Zero(t, f.extractor.calls)
	})

	t.Run("unknown role", func(t *testing.T) {
		f := newFixture()
		_, err := f.uc.CreateSession(context.Background(), "resume.pdf", dto.CreateSessionRequest{Role: "Select a tech role"})
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Zero(t, f.extractor.calls)
		assert.Empty(t, f.sessions.rows)
	})

	t.Run("short resume", func(t *testing.T) {
		f := newFixture()
		f.extractor.text = "John Smith"
		_, err := f.uc.CreateSession(context.Background(), "resume.pdf", dto.CreateSessionRequest{Role: "Data Analyst"})
		assert.ErrorIs(t, err, ErrResumeTooShort)
	})

	t.Run("extraction failure", func(t *testing.T) {
		f := newFixture()
		cause := errors.New("no text could be extracted")
		f.extractor.err = cause
		_, err := f.uc.CreateSession(context.Background(), "resume.pdf", dto.CreateSessionRequest{Role: "Data Analyst"})
		assert.ErrorIs(t, err, cause)
	})
}

func TestGenerateRoadmap(t *testing.T) {
	f := newFixture()
	id := f.ready(t)

	s, err := f.sessions.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, generated, s.Roadmap)
	assert.Equal(t, model.StatusReady, s.Status)
	assert.Empty(t, s.Progress)

	require.Len(t, f.requester.prompts, 1)
	assert.Contains(t, f.requester.prompts[0], "becoming a Data Analyst")
	assert.Contains(t, f.requester.prompts[0], resume)

	assert.Len(t, f.sections.rows, 3)
	assert.Equal(t, 3, f.embedder.calls)
	assert.Equal(t, "Month 1", f.sections.rows[1].Title)
}

func TestGenerateRoadmap_FailureMarksSession(t *testing.T) {
	f := newFixture()
	s, err := f.uc.CreateSession(context.Background(), "resume.pdf", dto.CreateSessionRequest{Role: "Data Analyst"})
	require.NoError(t, err)
	f.requester.err = errors.New("roadmap generation failed after 3 attempt(s)")

	_, err = f.uc.GenerateRoadmap(context.Background(), s.ID)

	require.Error(t, err)
	stored, _ := f.sessions.FindByID(context.Background(), s.ID)
	assert.Equal(t, model.StatusFailed, stored.Status)
	assert.Empty(t, stored.Roadmap)
}

func TestView_PersistsLazilyCreatedProgress(t *testing.T) {
	f := newFixture()
	id := f.ready(t)

	v, err := f.uc.View(context.Background(), id, []string{"Beginner-Friendly"})

	require.NoError(t, err)
	assert.Equal(t, 3, v.Total)
	assert.Equal(t, 0, v.Completed)
	require.Len(t, v.Sections, 1)
	assert.Equal(t, "Month 1", v.Sections[0].Title)
	assert.Equal(t, []string{"Advanced", "Beginner-Friendly", "Coursera", "Udemy", "YouTube"}, v.Tags)
	assert.False(t, v.TagFallback)
	assert.Equal(t, []string{"Excel", "Python"}, v.SkillGap.Matching)
	assert.Equal(t, []string{"SQL", "Tableau"}, v.SkillGap.Missing)

	stored, _ := f.sessions.FindByID(context.Background(), id)
	assert.Equal(t, map[string]bool{
		"Month 1* Learn SQL - Beginner-Friendly, Coursera":       false,
		"Month 1* Practice joins [YouTube, Beginner-Friendly]": false,
	}, stored.Progress)
}

func TestView_WithoutRoadmap(t *testing.T) {
	f := newFixture()
	s, err := f.uc.CreateSession(context.Background(), "resume.pdf", dto.CreateSessionRequest{Role: "Data Analyst"})
	require.NoError(t, err)

	_, err = f.uc.View(context.Background(), s.ID, nil)
	assert.ErrorIs(t, err, ErrNoRoadmap)

	_, err = f.uc.View(context.Background(), uuid.New(), nil)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestToggleProgress(t *testing.T) {
	f := newFixture()
	id := f.ready(t)

	got, err := f.uc.ToggleProgress(context.Background(), id, dto.ProgressRequest{
		Section: "Month 1",
		Item:    "* Learn SQL - Beginner-Friendly, Coursera",
		Done:    true,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, got.Completed)
	assert.Equal(t, 3, got.Total)
	stored, _ := f.sessions.FindByID(context.Background(), id)
	assert.True(t, stored.Progress["Month 1* Learn SQL - Beginner-Friendly, Coursera"])

	_, err = f.uc.ToggleProgress(context.Background(), id, dto.ProgressRequest{Section: "Month 3", Item: "* Learn SQL", Done: true})
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestEditFlow_SaveCarriesProgress(t *testing.T) {
	f := newFixture()
	id := f.ready(t)
	_, err := f.uc.ToggleProgress(context.Background(), id, dto.ProgressRequest{Section: "Month 1", Item: "* Learn SQL - Beginner-Friendly, Coursera", Done: true})
	require.NoError(t, err)

	_, err = f.uc.SaveEdit(context.Background(), id, 1, "SQL Basics")
	assert.ErrorIs(t, err, roadmap.ErrNotEditing)

	_, err = f.uc.BeginEdit(context.Background(), id, 2)
	assert.ErrorIs(t, err, roadmap.ErrNotAHeading)

	s, err := f.uc.BeginEdit(context.Background(), id, 1)
	require.NoError(t, err)
	require.NotNil(t, s.EditingLine)
	assert.Equal(t, 1, *s.EditingLine)

	_, err = f.uc.SaveEdit(context.Background(), id, 4, "Other")
	assert.ErrorIs(t, err, ErrEditConflict)

	s, err = f.uc.SaveEdit(context.Background(), id, 1, "SQL Basics")
	require.NoError(t, err)
	assert.Nil(t, s.EditingLine)
	assert.Equal(t, "**SQL Basics**", strings.Split(s.Roadmap, "\n")[1])
	assert.Equal(t, map[string]bool{"SQL Basics* Learn SQL - Beginner-Friendly, Coursera": true}, s.Progress)
}

func TestRegenerateSection(t *testing.T) {
	f := newFixture()
	id := f.ready(t)
	_, err := f.uc.BeginEdit(context.Background(), id, 4)
	require.NoError(t, err)

	f.requester.err = errors.New("upstream unavailable")
	_, err = f.uc.RegenerateSection(context.Background(), id, 4)
	require.Error(t, err)
	stored, _ := f.sessions.FindByID(context.Background(), id)
	require.NotNil(t, stored.EditingLine)
	assert.Equal(t, 4, *stored.EditingLine)
	assert.Equal(t, generated, stored.Roadmap)

	f.requester.err = nil
	f.requester.out = []string{"Dashboard Projects"}
	s, err := f.uc.RegenerateSection(context.Background(), id, 4)
	require.NoError(t, err)
	assert.Nil(t, s.EditingLine)
	assert.Equal(t, "**Dashboard Projects**", strings.Split(s.Roadmap, "\n")[4])
	assert.Contains(t, f.requester.prompts[len(f.requester.prompts)-1], "Heading: Month 2")
}

func TestCancelEdit(t *testing.T) {
	f := newFixture()
	id := f.ready(t)
	_, err := f.uc.BeginEdit(context.Background(), id, 1)
	require.NoError(t, err)

	s, err := f.uc.CancelEdit(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, s.EditingLine)
	assert.Equal(t, generated, s.Roadmap)
}

func TestAsk(t *testing.T) {
	f := newFixture()
	id := f.ready(t)
	f.requester.out = []string{"Start with SQL."}

	a, err := f.uc.Ask(context.Background(), id, "Where do I start?")

	require.NoError(t, err)
	assert.Equal(t, "Start with SQL.", a.Answer)
	assert.Len(t, a.Sources, 3)
	assert.Equal(t, 1, f.sections.searches)
	last := f.requester.prompts[len(f.requester.prompts)-1]
	assert.Contains(t, last, "Question: Where do I start?")
	assert.Contains(t, last, "* Build a dashboard - Advanced, Udemy")
}

func TestAsk_FailedReindexDropsStaleSections(t *testing.T) {
	f := newFixture()
	id := f.ready(t)
	require.Len(t, f.sections.rows, 3)

	rust := "**Phase A**\n* Learn Rust - Beginner-Friendly, YouTube\n**Phase B**\n* Build a CLI - Advanced, Udemy"
	f.requester.out = []string{rust}
	f.embedder.failOn = "Phase B"
	_, err := f.uc.GenerateRoadmap(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, f.sections.rows)

	f.requester.out = []string{"Start with Rust."}
	a, err := f.uc.Ask(context.Background(), id, "Where do I start?")

	require.NoError(t, err)
	assert.Empty(t, a.Sources)
	last := f.requester.prompts[len(f.requester.prompts)-1]
	assert.Contains(t, last, "* Learn Rust - Beginner-Friendly, YouTube")
	assert.NotContains(t, last, "Learn SQL")
}

func TestAsk_WithoutEmbedderUsesWholeRoadmap(t *testing.T) {
	f := newFixture()
	f.uc = NewRoadmapUsecase(f.sessions, nil, f.feedback, f.extractor, f.requester, nil)
	id := f.ready(t)
	f.requester.out = []string{"Start with SQL."}

	a, err := f.uc.Ask(context.Background(), id, "Where do I start?")

	require.NoError(t, err)
	assert.Empty(t, a.Sources)
	assert.Contains(t, f.requester.prompts[len(f.requester.prompts)-1], "Roadmap: "+generated)

	_, err = f.uc.Ask(context.Background(), id, "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFeedback(t *testing.T) {
	f := newFixture()
	id := f.ready(t)
	rating := 4

	fb, err := f.uc.Feedback(context.Background(), id, dto.FeedbackRequest{Kind: model.FeedbackSurvey, Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, 4, *fb.Rating)

	fb, err = f.uc.Feedback(context.Background(), id, dto.FeedbackRequest{Kind: model.FeedbackHelpful, Rating: &rating})
	require.NoError(t, err)
	assert.Nil(t, fb.Rating)
	assert.Equal(t, generated, fb.Roadmap)
	assert.Len(t, f.feedback.rows, 2)

	_, err = f.uc.Feedback(context.Background(), id, dto.FeedbackRequest{Kind: model.FeedbackSurvey})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExport(t *testing.T) {
	f := newFixture()
	id := f.ready(t)

	data, err := f.uc.Export(context.Background(), id, export.FormatJSON)
	require.NoError(t, err)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(data, &rec))
	assert.Equal(t, "Data Analyst", rec["role"])
	assert.Equal(t, "Lead analytics", rec["goal"])

	data, err = f.uc.Export(context.Background(), id, export.FormatText)
	require.NoError(t, err)
	assert.Equal(t, generated, string(data))

	_, err = f.uc.Export(context.Background(), id, export.Format("docx"))
	assert.ErrorIs(t, err, export.ErrUnknownFormat)
}

func TestToggleProgress_ConcurrentTogglesAreSerialised(t *testing.T) {
	f := newFixture()
	id := f.ready(t)
	items := []dto.ProgressRequest{
		{Section: "Month 1", Item: "* Learn SQL - Beginner-Friendly, Coursera", Done: true},
		{Section: "Month 1", Item: "* Practice joins [YouTube, Beginner-Friendly]", Done: true},
		{Section: "Month 2", Item: "* Build a dashboard - Advanced, Udemy", Done: true},
	}

	var wg sync.WaitGroup
	for _, req := range items {
		wg.Add(1)
		go func(req dto.ProgressRequest) {
			defer wg.Done()
			_, err := f.uc.ToggleProgress(context.Background(), id, req)
			assert.NoError(t, err)
		}(req)
	}
	wg.Wait()

	stored, _ := f.sessions.FindByID(context.Background(), id)
	assert.Len(t, stored.Progress, 3)
	for _, done := range stored.Progress {
		assert.True(t, done)
	}
	assert.Zero(t, f.uc.locks.len())
}

func TestSessionLocks_ReleasedEntriesAreRemoved(t *testing.T) {
	l := newSessionLocks()
	a, b := uuid.New(), uuid.New()

	releaseA := l.lock(a)
	releaseB := l.lock(b)
	assert.Equal(t, 2, l.len())

	waiting := make(chan struct{})
	acquired := make(chan func())
	go func() {
		close(waiting)
		acquired <- l.lock(a)
	}()
	<-waiting

	releaseB()
	releaseA()
	release := <-acquired
	assert.Equal(t, 1, l.len())

	release()
	assert.Zero(t, l.len())
}
