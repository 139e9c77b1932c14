package domain

import "errors"

var (
	// ErrEmptyTenses is returned when a session is started without any tense selected.
	ErrEmptyTenses = errors.New("select at least one tense")
	// ErrEmptyPersons is returned when a session is started without any person selected.
	ErrEmptyPersons = errors.New("select at least one person")
	// ErrUnknownTense indicates a tense outside present, past and perfect.
	ErrUnknownTense = errors.New("unknown tense")
	// ErrUnknownPerson indicates a person outside ik, jij, hijzij and wij.
	ErrUnknownPerson = errors.New("unknown person")
	// ErrNoVerbs is returned when a session would contain no verbs.
	ErrNoVerbs = errors.New("session needs at least one verb")
	// ErrDuplicateVerb is returned when an infinitive appears twice in one session.
	ErrDuplicateVerb = errors.New("duplicate verb in session")
	// ErrQuestionCountMismatch indicates totalQuestions disagrees with the verb list.
	ErrQuestionCountMismatch = errors.New("question count does not match verb list")

	// ErrContractViolation marks caller misuse: the session and catalogue are out of sync.
	ErrContractViolation = errors.New("contract violation")
	// ErrIndexOutOfRange indicates the session pointer is outside the verb list.
	ErrIndexOutOfRange = errors.New("verb index out of range")
	// ErrVerbNotFound indicates an infinitive is missing from the catalogue.
	ErrVerbNotFound = errors.New("verb not found")

	// ErrAnswerLocked is returned when editing a verb that has already been checked.
	ErrAnswerLocked = errors.New("answers are locked after check")
	// ErrCellNotSelected is returned when editing a tense/person outside the selection.
	ErrCellNotSelected = errors.New("cell is not part of the selection")
	// ErrNotChecked is returned when revealing or advancing before a check.
	ErrNotChecked = errors.New("verb has not been checked")
	// ErrSessionFinished is returned for actions after the last verb was advanced past.
	ErrSessionFinished = errors.New("session is finished")
	// ErrSessionNotFinished is returned when scoring a session that is still running.
	ErrSessionNotFinished = errors.New("session is not finished")
	// ErrNoSession indicates no resumable session is stored.
	ErrNoSession = errors.New("no stored session")
	// ErrCorruptSession indicates a decoded session breaks its invariants.
	ErrCorruptSession = errors.New("corrupt session")
	// ErrKeyNotFound is returned by key-value stores for absent keys.
	ErrKeyNotFound = errors.New("key not found")
)
