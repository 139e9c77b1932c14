package app

import (
	"encoding/json"
	"errors"
	"fmt"

	"dutch-verb-trainer/internal/domain"
)

// SchemaVersion is written with every snapshot.
const SchemaVersion = 1

// ErrUnsupportedSchema is reported for snapshots written by an unknown version.
var ErrUnsupportedSchema = errors.New("unsupported session schema version")

type snapshotV1 struct {
	SchemaVersion int             `json:"schemaVersion"`
	Session       *domain.Session `json:"session"`
}

func encodeSession(session *domain.Session) (string, error) {
	data, err := json.Marshal(snapshotV1{SchemaVersion: SchemaVersion, Session: session})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeSession dispatches on schemaVersion. Records without the field are
// the unversioned layout, which stored no selection and drilled every cell.
func decodeSession(raw string) (*domain.Session, error) {
	var probe struct {
		SchemaVersion *int `json:"schemaVersion"`
	}
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}

	var (
		session *domain.Session
		err     error
	)
	switch {
	case probe.SchemaVersion == nil:
		session, err = decodeV0(raw)
	case *probe.SchemaVersion == 1:
		session, err = decodeV1(raw)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSchema, *probe.SchemaVersion)
	}
	if err != nil {
		return nil, err
	}
	if err := session.Validate(); err != nil {
		return nil, err
	}
	return session, nil
}

func decodeV0(raw string) (*domain.Session, error) {
	var session domain.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("parse v0 session: %w", err)
	}
	if len(session.SelectedTenses) == 0 {
		session.SelectedTenses = append([]domain.Tense(nil), domain.Tenses...)
	}
	if len(session.SelectedPersons) == 0 {
		session.SelectedPersons = append([]domain.Person(nil), domain.Persons...)
	}
	return &session, nil
}

func decodeV1(raw string) (*domain.Session, error) {
	var snap snapshotV1
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("parse v1 session: %w", err)
	}
	if snap.Session == nil {
		return nil, fmt.Errorf("%w: missing session body", domain.ErrCorruptSession)
	}
	return snap.Session, nil
}
