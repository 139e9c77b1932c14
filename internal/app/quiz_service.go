package app

import (
	"context"
	"fmt"

	"dutch-verb-trainer/internal/domain"
)

const (
	// DefaultQuestions is used when a start request does not name a count.
	DefaultQuestions = 10
	// DefaultMaxQuestions caps the number of verbs in one session.
	DefaultMaxQuestions = 50
)

// Catalogue is the read-only verb lookup table.
// GetVerb returns domain.ErrVerbNotFound for unknown infinitives.
type Catalogue interface {
	GetVerb(ctx context.Context, infinitive string) (domain.Verb, error)
	Infinitives(ctx context.Context) ([]string, error)
}

// VerbLoader fetches verbs from a backing store (static file, Postgres).
type VerbLoader interface {
	LoadVerb(ctx context.Context, infinitive string) (domain.Verb, error)
	ListInfinitives(ctx context.Context) ([]string, error)
}

// VerbPicker chooses the ordered verbs of a new session.
type VerbPicker interface {
	Pick(pool []string, n int) []string
}

// QuizService wires the session store, catalogue and picker into the
// start/continue/reset flows. Each Drill it returns owns its session.
type QuizService struct {
	store        *SessionStore
	catalogue    Catalogue
	picker       VerbPicker
	maxQuestions int
}

func NewQuizService(store *SessionStore, catalogue Catalogue, picker VerbPicker) *QuizService {
	return &QuizService{
		store:        store,
		catalogue:    catalogue,
		picker:       picker,
		maxQuestions: DefaultMaxQuestions,
	}
}

// WithMaxQuestions overrides the per-session verb cap.
func (s *QuizService) WithMaxQuestions(n int) *QuizService {
	if n > 0 {
		s.maxQuestions = n
	}
	return s
}

// Start begins a new run, replacing any stored session. The count is clamped
// to [1, maxQuestions] and to the catalogue size.
func (s *QuizService) Start(ctx context.Context, count int, sel domain.Selection) (*Drill, error) {
	sel, err := domain.NewSelection(sel.Tenses, sel.Persons)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		count = DefaultQuestions
	}
	if count > s.maxQuestions {
		count = s.maxQuestions
	}

	pool, err := s.catalogue.Infinitives(ctx)
	if err != nil {
		return nil, fmt.Errorf("list verbs: %w", err)
	}
	if len(pool) == 0 {
		return nil, domain.ErrNoVerbs
	}
	if count > len(pool) {
		count = len(pool)
	}

	picked := s.picker.Pick(pool, count)
	session, err := s.store.Create(ctx, picked, len(picked), sel)
	if err != nil {
		return nil, err
	}
	return newDrill(session, s.store, s.catalogue), nil
}

// Resume continues the stored session. Absent or undecodable snapshots
// yield domain.ErrNoSession so callers fall back to Start.
func (s *QuizService) Resume(ctx context.Context) (*Drill, error) {
	session, ok, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNoSession
	}
	return newDrill(session, s.store, s.catalogue), nil
}

// HasSession reports whether a resumable session is stored.
func (s *QuizService) HasSession(ctx context.Context) (bool, error) {
	_, ok, err := s.store.Load(ctx)
	return ok, err
}

// Reset erases the stored session.
func (s *QuizService) Reset(ctx context.Context) error {
	return s.store.Clear(ctx)
}
