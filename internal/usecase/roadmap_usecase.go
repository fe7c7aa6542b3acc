package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fadilmartias/skillwise/internal/dto"
	"github.com/fadilmartias/skillwise/internal/export"
	"github.com/fadilmartias/skillwise/internal/logger"
	"github.com/fadilmartias/skillwise/internal/model"
	"github.com/fadilmartias/skillwise/internal/prompt"
	"github.com/fadilmartias/skillwise/internal/roadmap"
	"github.com/fadilmartias/skillwise/internal/service"
	"github.com/fadilmartias/skillwise/internal/skill"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// minResumeChars is the least extracted text treated as a meaningful résumé.
const minResumeChars = 20

const questionContextSections = 3

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrResumeTooShort = errors.New("failed to extract meaningful content from resume")
	ErrNoRoadmap      = errors.New("roadmap has not been generated yet")
	ErrUnknownItem    = errors.New("progress item not found in roadmap")
	ErrEditConflict   = errors.New("another section is being edited")
)

type SessionStore interface {
	Create(ctx context.Context, s *model.RoadmapSession) error
	Update(ctx context.Context, s *model.RoadmapSession) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RoadmapSession, error)
	List(ctx context.Context, page, pageSize int) ([]model.RoadmapSession, int64, error)
}

type SectionIndex interface {
	Replace(ctx context.Context, sessionID uuid.UUID, sections []model.RoadmapSection) error
	Search(ctx context.Context, sessionID uuid.UUID, embedding pgvector.Vector, topK int) ([]model.RoadmapSection, error)
}

type FeedbackStore interface {
	Create(ctx context.Context, f *model.Feedback) error
}

type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// RoadmapUsecase runs every user action against a session. Actions on the
// same session are serialised.
type RoadmapUsecase struct {
	sessions  SessionStore
	sections  SectionIndex
	feedback  FeedbackStore
	extractor TextExtractor
	requester roadmap.Requester
	embedder  service.Embedder
	locks     *sessionLocks
	now       func() time.Time
}

// NewRoadmapUsecase wires the use case. sections and embedder may be nil, in
// which case questions are answered against the whole roadmap.
func NewRoadmapUsecase(
	sessions SessionStore,
	sections SectionIndex,
	feedback FeedbackStore,
	extractor TextExtractor,
	requester roadmap.Requester,
	embedder service.Embedder,
) *RoadmapUsecase {
	return &RoadmapUsecase{
		sessions:  sessions,
		sections:  sections,
		feedback:  feedback,
		extractor: extractor,
		requester: requester,
		embedder:  embedder,
		locks:     newSessionLocks(),
		now:       time.Now,
	}
}

// Roles lists the selectable roles, ending with the custom role option.
func (uc *RoadmapUsecase) Roles() []string {
	roles := make([]string, 0, len(skill.Roles)+1)
	roles = append(roles, skill.Roles...)
	return append(roles, dto.OtherRole)
}

// CreateSession extracts the résumé at path and opens a session for it.
// The file at path is consumed by the extractor.
func (uc *RoadmapUsecase) CreateSession(ctx context.Context, path string, req dto.CreateSessionRequest) (*model.RoadmapSession, error) {
	if !dto.IsKnownRole(req.Role) {
		return nil, fmt.Errorf("%w: please select a tech role", ErrInvalidInput)
	}
	role := req.EffectiveRole()
	if role == "" {
		return nil, fmt.Errorf("%w: please specify a role", ErrInvalidInput)
	}

	text, err := uc.extractor.Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	if prompt.Length(strings.TrimSpace(text)) <= minResumeChars {
		return nil, ErrResumeTooShort
	}

	s := &model.RoadmapSession{
		ID:         uuid.New(),
		ResumeText: text,
		Goal:       strings.TrimSpace(req.Goal),
		Role:       role,
		Progress:   map[string]bool{},
		Status:     model.StatusUploaded,
	}
	if err := uc.sessions.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	logger.WithContext(ctx).Info("session created", "session_id", s.ID, "role", role, "resume_chars", prompt.Length(text))
	return s, nil
}

func (uc *RoadmapUsecase) GetSession(ctx context.Context, id uuid.UUID) (*model.RoadmapSession, error) {
	return uc.sessions.FindByID(ctx, id)
}

func (uc *RoadmapUsecase) ListSessions(ctx context.Context, q dto.PageQuery) ([]model.RoadmapSession, int64, error) {
	q.Normalize()
	return uc.sessions.List(ctx, q.Page, q.PageSize)
}

// GenerateRoadmap asks the model for a roadmap and resets progress and the
// editing cursor.
func (uc *RoadmapUsecase) GenerateRoadmap(ctx context.Context, id uuid.UUID) (*model.RoadmapSession, error) {
	defer uc.locks.lock(id)()
	ctx = logger.WithSession(ctx, id.String())
	log := logger.WithContext(ctx)

	s, err := uc.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.Status = model.StatusGenerating
	if err := uc.sessions.Update(ctx, s); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	start := uc.now()
	text, err := uc.requester.Generate(ctx, prompt.Roadmap(s.Role, s.Goal, s.ResumeText))
	if err != nil {
		s.Status = model.StatusFailed
		if uerr := uc.sessions.Update(ctx, s); uerr != nil {
			log.Error("failed to mark session failed", "error", uerr)
		}
		return nil, err
	}

	s.Roadmap = text
	s.Progress = map[string]bool{}
	s.EditingLine = nil
	s.Status = model.StatusReady
	s.GenerationSeconds = uc.now().Sub(start).Seconds()
	if err := uc.sessions.Update(ctx, s); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	log.Info("roadmap stored", "generation_seconds", s.GenerationSeconds)

	uc.indexSections(ctx, s)
	return s, nil
}

// View renders the roadmap filtered by selected tags. Progress entries created
// while rendering are persisted.
func (uc *RoadmapUsecase) View(ctx context.Context, id uuid.UUID, selected []string) (*dto.RoadmapDTO, error) {
	defer uc.locks.lock(id)()

	s, err := uc.loadWithRoadmap(ctx, id)
	if err != nil {
		return nil, err
	}

	p := roadmap.DecodeProgress(s.Progress, roadmap.Group(roadmap.Classify(s.Roadmap)))
	v := roadmap.Render(s.Roadmap, selected, p)
	if v.Created > 0 {
		s.Progress = p.Encode()
		if err := uc.sessions.Update(ctx, s); err != nil {
			return nil, fmt.Errorf("save progress: %w", err)
		}
	}

	return &dto.RoadmapDTO{
		Session:     dto.NewSessionDTO(s),
		Sections:    v.Sections,
		Tags:        v.Tags.Tags,
		TagFallback: v.Tags.Fallback,
		Selected:    v.Selected,
		Completed:   v.Completed,
		Total:       v.Total,
		SkillGap:    skill.Analyze(s.Role, s.ResumeText),
	}, nil
}

// ToggleProgress checks or unchecks one roadmap item and saves the record.
func (uc *RoadmapUsecase) ToggleProgress(ctx context.Context, id uuid.UUID, req dto.ProgressRequest) (*dto.ProgressDTO, error) {
	defer uc.locks.lock(id)()

	s, err := uc.loadWithRoadmap(ctx, id)
	if err != nil {
		return nil, err
	}

	sections := roadmap.Group(roadmap.Classify(s.Roadmap))
	key := roadmap.ProgressKey{Section: req.Section, Item: req.Item}
	if !roadmap.HasItem(sections, key) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownItem, key.Composite())
	}

	p := roadmap.DecodeProgress(s.Progress, sections)
	p.Toggle(key, req.Done)
	s.Progress = p.Encode()
	if err := uc.sessions.Update(ctx, s); err != nil {
		return nil, fmt.Errorf("save progress: %w", err)
	}

	total := 0
	for _, sec := range sections {
		total += len(sec.Bullets())
	}
	return &dto.ProgressDTO{Completed: p.Completed(), Total: total, Progress: s.Progress}, nil
}

// BeginEdit starts editing the section headed at line.
func (uc *RoadmapUsecase) BeginEdit(ctx context.Context, id uuid.UUID, line int) (*model.RoadmapSession, error) {
	defer uc.locks.lock(id)()

	s, err := uc.loadWithRoadmap(ctx, id)
	if err != nil {
		return nil, err
	}

	ed := roadmap.NewEditor(s.Roadmap, s.EditingLine)
	if err := ed.Begin(line); err != nil {
		return nil, err
	}
	s.EditingLine = ed.Cursor()
	if err := uc.sessions.Update(ctx, s); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	return s, nil
}

// SaveEdit replaces the edited heading with title.
func (uc *RoadmapUsecase) SaveEdit(ctx context.Context, id uuid.UUID, line int, title string) (*model.RoadmapSession, error) {
	return uc.rewrite(ctx, id, line, func(_ context.Context, ed *roadmap.Editor, _ *model.RoadmapSession) error {
		return ed.Save(title)
	})
}

// RegenerateSection asks the model for a new heading of the edited section.
// On failure the session keeps editing the same line.
func (uc *RoadmapUsecase) RegenerateSection(ctx context.Context, id uuid.UUID, line int) (*model.RoadmapSession, error) {
	return uc.rewrite(ctx, id, line, func(ctx context.Context, ed *roadmap.Editor, s *model.RoadmapSession) error {
		return ed.Regenerate(ctx, uc.requester, s.Role)
	})
}

// CancelEdit leaves editing mode without changing the roadmap.
func (uc *RoadmapUsecase) CancelEdit(ctx context.Context, id uuid.UUID) (*model.RoadmapSession, error) {
	defer uc.locks.lock(id)()

	s, err := uc.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.EditingLine == nil {
		return s, nil
	}
	s.EditingLine = nil
	if err := uc.sessions.Update(ctx, s); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	return s, nil
}

func (uc *RoadmapUsecase) rewrite(
	ctx context.Context,
	id uuid.UUID,
	line int,
	apply func(context.Context, *roadmap.Editor, *model.RoadmapSession) error,
) (*model.RoadmapSession, error) {
	defer uc.locks.lock(id)()
	ctx = logger.WithSession(ctx, id.String())

	s, err := uc.loadWithRoadmap(ctx, id)
	if err != nil {
		return nil, err
	}

	ed := roadmap.NewEditor(s.Roadmap, s.EditingLine)
	cursor, editing := ed.Editing()
	if !editing {
		return nil, roadmap.ErrNotEditing
	}
	if cursor != line {
		return nil, fmt.Errorf("%w: line %d", ErrEditConflict, cursor)
	}

	before, _ := roadmap.FindSection(roadmap.Group(roadmap.Classify(s.Roadmap)), cursor)
	if err := apply(ctx, ed, s); err != nil {
		return nil, err
	}
	after, _ := roadmap.FindSection(roadmap.Group(roadmap.Classify(ed.Text())), cursor)

	p := roadmap.DecodeProgress(s.Progress, roadmap.Group(roadmap.Classify(s.Roadmap)))
	p.RenameSection(before, after.Title)

	s.Roadmap = ed.Text()
	s.EditingLine = ed.Cursor()
	s.Progress = p.Encode()
	if err := uc.sessions.Update(ctx, s); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	logger.WithContext(ctx).Info("section heading rewritten", "line", line, "title", after.Title)

	uc.indexSections(ctx, s)
	return s, nil
}

// Ask answers a question about the roadmap. The nearest indexed sections are
// used as context when available, otherwise the whole roadmap.
func (uc *RoadmapUsecase) Ask(ctx context.Context, id uuid.UUID, question string) (*dto.AnswerDTO, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question cannot be empty", ErrInvalidInput)
	}

	s, err := uc.loadWithRoadmap(ctx, id)
	if err != nil {
		return nil, err
	}

	body, sources := uc.questionContext(ctx, s, question)
	answer, err := uc.requester.Generate(ctx, prompt.Question(body, question))
	if err != nil {
		return nil, err
	}
	return &dto.AnswerDTO{Question: question, Answer: answer, Sources: sources}, nil
}

func (uc *RoadmapUsecase) questionContext(ctx context.Context, s *model.RoadmapSession, question string) (string, []string) {
	if uc.embedder == nil || uc.sections == nil {
		return s.Roadmap, []string{}
	}
	log := logger.WithContext(ctx)

	emb, err := uc.embedder.GenerateEmbedding(ctx, question)
	if err != nil {
		log.Warn("question embedding failed, using whole roadmap", "error", err)
		return s.Roadmap, []string{}
	}
	found, err := uc.sections.Search(ctx, s.ID, pgvector.NewVector(emb), questionContextSections)
	if err != nil || len(found) == 0 {
		log.Warn("section search returned nothing, using whole roadmap", "error", err)
		return s.Roadmap, []string{}
	}

	parts := make([]string, 0, len(found))
	sources := make([]string, 0, len(found))
	for _, sec := range found {
		parts = append(parts, sec.Content)
		sources = append(sources, sec.Title)
	}
	return strings.Join(parts, "\n\n"), sources
}

// Feedback records a rating of the current roadmap.
func (uc *RoadmapUsecase) Feedback(ctx context.Context, id uuid.UUID, req dto.FeedbackRequest) (*model.Feedback, error) {
	if req.Kind == model.FeedbackSurvey && req.Rating == nil {
		return nil, fmt.Errorf("%w: survey feedback needs a rating from 1 to 5", ErrInvalidInput)
	}
	s, err := uc.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Kind != model.FeedbackSurvey {
		req.Rating = nil
	}

	f := &model.Feedback{
		ID:        uuid.New(),
		SessionID: s.ID,
		Kind:      req.Kind,
		Rating:    req.Rating,
		Roadmap:   s.Roadmap,
		CreatedAt: uc.now(),
	}
	if err := uc.feedback.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("save feedback: %w", err)
	}
	return f, nil
}

// Export renders the session's roadmap in format.
func (uc *RoadmapUsecase) Export(ctx context.Context, id uuid.UUID, format export.Format) ([]byte, error) {
	s, err := uc.loadWithRoadmap(ctx, id)
	if err != nil {
		return nil, err
	}

	switch format {
	case export.FormatText:
		return export.Text(s.Roadmap), nil
	case export.FormatJSON:
		return export.JSON(export.Record{
			Resume:    s.ResumeText,
			Goal:      s.Goal,
			Role:      s.Role,
			Roadmap:   s.Roadmap,
			Timestamp: uc.now(),
		})
	case export.FormatPDF:
		return export.PDF(s.Roadmap, uc.now())
	case export.FormatXLSX:
		p := roadmap.DecodeProgress(s.Progress, roadmap.Group(roadmap.Classify(s.Roadmap)))
		return export.ProgressXLSX(s.Roadmap, p)
	}
	return nil, fmt.Errorf("%w: %q", export.ErrUnknownFormat, format)
}

func (uc *RoadmapUsecase) loadWithRoadmap(ctx context.Context, id uuid.UUID) (*model.RoadmapSession, error) {
	s, err := uc.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(s.Roadmap) == "" {
		return nil, ErrNoRoadmap
	}
	return s, nil
}

// indexSections embeds every section of the roadmap for question answering.
// Any failed embedding leaves the index empty so questions fall back to the
// whole roadmap instead of stale sections.
func (uc *RoadmapUsecase) indexSections(ctx context.Context, s *model.RoadmapSession) {
	if uc.embedder == nil || uc.sections == nil {
		return
	}
	log := logger.WithContext(ctx)

	var rows []model.RoadmapSection
	for _, sec := range roadmap.Group(roadmap.Classify(s.Roadmap)) {
		raw := make([]string, 0, len(sec.Lines)+1)
		if sec.Title != "" {
			raw = append(raw, sec.Title)
		}
		for _, l := range sec.Lines {
			raw = append(raw, l.Raw)
		}
		content := strings.Join(raw, "\n")

		emb, err := uc.embedder.GenerateEmbedding(ctx, content)
		if err != nil {
			log.Warn("section embedding failed, clearing index", "section", sec.Title, "error", err)
			if err := uc.sections.Replace(ctx, s.ID, nil); err != nil {
				log.Warn("failed to clear section index", "error", err)
			}
			return
		}
		rows = append(rows, model.RoadmapSection{
			Title:        sec.Title,
			HeadingIndex: sec.HeadingIndex,
			Content:      content,
			Embedding:    pgvector.NewVector(emb),
			CreatedAt:    uc.now(),
		})
	}

	if err := uc.sections.Replace(ctx, s.ID, rows); err != nil {
		log.Warn("failed to store section index", "error", err)
		return
	}
	log.Debug("sections indexed", "count", len(rows))
}

type sessionLock struct {
	sync.Mutex
	refs int
}

// sessionLocks hands out one mutex per session. An entry lives only while
// some caller holds or waits on it.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sessionLock
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[uuid.UUID]*sessionLock)}
}

// lock acquires the mutex of id and returns its release.
func (l *sessionLocks) lock(id uuid.UUID) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sessionLock{}
		l.locks[id] = m
	}
	m.refs++
	l.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()

		l.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *sessionLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
