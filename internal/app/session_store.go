package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"dutch-verb-trainer/internal/domain"
	"github.com/google/uuid"
)

// DefaultSessionKey is the well-known slot the session is stored under.
const DefaultSessionKey = "conjugator_session"

// KeyValueStore abstracts the persistence medium (memory, Redis, SQLite).
// Get returns domain.ErrKeyNotFound for absent keys.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// DecodeErrorSink receives stored snapshots that could not be decoded.
type DecodeErrorSink func(key string, err error)

// LogDecodeError is the default sink.
func LogDecodeError(key string, err error) {
	log.Printf("session snapshot %q discarded: %v", key, err)
}

// SessionStore reads and writes the single session slot. It is the only
// component that touches the key-value store.
type SessionStore struct {
	kv            KeyValueStore
	key           string
	now           func() time.Time
	newID         func() string
	onDecodeError DecodeErrorSink
}

func NewSessionStore(kv KeyValueStore, key string) *SessionStore {
	return NewSessionStoreWithClock(kv, key, time.Now)
}

// NewSessionStoreWithClock allows deterministic timestamps in tests.
func NewSessionStoreWithClock(kv KeyValueStore, key string, now func() time.Time) *SessionStore {
	if key == "" {
		key = DefaultSessionKey
	}
	return &SessionStore{
		kv:            kv,
		key:           key,
		now:           now,
		newID:         func() string { return uuid.New().String() },
		onDecodeError: LogDecodeError,
	}
}

// WithDecodeErrorSink replaces the sink that observes discarded snapshots.
func (s *SessionStore) WithDecodeErrorSink(sink DecodeErrorSink) *SessionStore {
	if sink != nil {
		s.onDecodeError = sink
	}
	return s
}

// Key returns the storage key of the session slot.
func (s *SessionStore) Key() string {
	return s.key
}

// Create builds a fresh session, persists it and returns it. An empty
// tense or person selection is rejected before anything is written.
func (s *SessionStore) Create(ctx context.Context, infinitives []string, totalQuestions int, sel domain.Selection) (*domain.Session, error) {
	session, err := domain.NewSession(s.newID(), s.now().UTC(), infinitives, totalQuestions, sel)
	if err != nil {
		return nil, err
	}
	if err := s.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Load returns the stored session. A snapshot that fails to decode is
// reported to the sink and treated as absent; only storage errors are returned.
func (s *SessionStore) Load(ctx context.Context) (*domain.Session, bool, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load session: %w", err)
	}
	session, err := decodeSession(raw)
	if err != nil {
		s.onDecodeError(s.key, err)
		return nil, false, nil
	}
	return session, true, nil
}

// Save overwrites the stored snapshot.
func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	raw, err := encodeSession(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear erases the stored session, if any.
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.kv.Remove(ctx, s.key); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
