package domain

import (
	"fmt"
	"slices"
	"time"
)

// Tense is a conjugation category drilled per verb.
type Tense string

const (
	Present Tense = "present"
	Past    Tense = "past"
	Perfect Tense = "perfect"
)

// Tenses lists every tense in grid order.
var Tenses = []Tense{Present, Past, Perfect}

// Label returns the display label with the Dutch grammar hint.
func (t Tense) Label() string {
	switch t {
	case Present:
		return "Present (TT)"
	case Past:
		return "Past (OVT)"
	case Perfect:
		return "Perfect (VTT)"
	}
	return string(t)
}

func (t Tense) valid() bool {
	return t == Present || t == Past || t == Perfect
}

// Person is a grammatical subject category.
type Person string

const (
	Ik     Person = "ik"
	Jij    Person = "jij"
	HijZij Person = "hijzij"
	Wij    Person = "wij"
)

// Persons lists every person in grid order.
var Persons = []Person{Ik, Jij, HijZij, Wij}

// Label returns the pronoun label shown next to an input field.
func (p Person) Label() string {
	switch p {
	case Ik:
		return "ik"
	case Jij:
		return "je/jij"
	case HijZij:
		return "hij/zij"
	case Wij:
		return "we/wij"
	}
	return string(p)
}

func (p Person) valid() bool {
	return p == Ik || p == Jij || p == HijZij || p == Wij
}

// ParseTense maps a raw value onto a known tense.
func ParseTense(raw string) (Tense, error) {
	t := Tense(raw)
	if !t.valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTense, raw)
	}
	return t, nil
}

// ParsePerson maps a raw value onto a known person.
func ParsePerson(raw string) (Person, error) {
	p := Person(raw)
	if !p.valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPerson, raw)
	}
	return p, nil
}

// VerbForms holds one string per person. Catalogue entries store accepted
// forms ("liep|lopen"); session answers store the learner's raw input.
type VerbForms struct {
	Ik     string `json:"ik" yaml:"ik"`
	Jij    string `json:"jij" yaml:"jij"`
	HijZij string `json:"hijzij" yaml:"hijzij"`
	Wij    string `json:"wij" yaml:"wij"`
}

// Get returns the value stored for a person.
func (f VerbForms) Get(p Person) string {
	switch p {
	case Ik:
		return f.Ik
	case Jij:
		return f.Jij
	case HijZij:
		return f.HijZij
	case Wij:
		return f.Wij
	}
	return ""
}

// Set stores a value for a person. Unknown persons are ignored.
func (f *VerbForms) Set(p Person, value string) {
	switch p {
	case Ik:
		f.Ik = value
	case Jij:
		f.Jij = value
	case HijZij:
		f.HijZij = value
	case Wij:
		f.Wij = value
	}
}

// TenseForms holds a VerbForms record per tense.
type TenseForms struct {
	Present VerbForms `json:"present" yaml:"present"`
	Past    VerbForms `json:"past" yaml:"past"`
	Perfect VerbForms `json:"perfect" yaml:"perfect"`
}

// Get returns the forms of a tense.
func (f TenseForms) Get(t Tense) VerbForms {
	switch t {
	case Present:
		return f.Present
	case Past:
		return f.Past
	case Perfect:
		return f.Perfect
	}
	return VerbForms{}
}

// Cell returns the value for a single (tense, person) cell.
func (f TenseForms) Cell(t Tense, p Person) string {
	return f.Get(t).Get(p)
}

// SetCell stores a value for a single (tense, person) cell.
func (f *TenseForms) SetCell(t Tense, p Person, value string) {
	switch t {
	case Present:
		f.Present.Set(p, value)
	case Past:
		f.Past.Set(p, value)
	case Perfect:
		f.Perfect.Set(p, value)
	}
}

// Verb is a read-only catalogue entry.
type Verb struct {
	Infinitive string     `json:"infinitive" yaml:"infinitive"`
	Forms      TenseForms `json:"forms" yaml:"forms"`
}

// Selection is the validated, non-empty set of tenses and persons a learner drills.
// Values are deduplicated and kept in grid order.
type Selection struct {
	Tenses  []Tense
	Persons []Person
}

// NewSelection validates the chosen tenses and persons. An empty list is a
// configuration error; it never means "everything".
func NewSelection(tenses []Tense, persons []Person) (Selection, error) {
	if len(tenses) == 0 {
		return Selection{}, ErrEmptyTenses
	}
	if len(persons) == 0 {
		return Selection{}, ErrEmptyPersons
	}
	chosenTenses := make(map[Tense]bool, len(tenses))
	for _, t := range tenses {
		if !t.valid() {
			return Selection{}, fmt.Errorf("%w: %q", ErrUnknownTense, t)
		}
		chosenTenses[t] = true
	}
	chosenPersons := make(map[Person]bool, len(persons))
	for _, p := range persons {
		if !p.valid() {
			return Selection{}, fmt.Errorf("%w: %q", ErrUnknownPerson, p)
		}
		chosenPersons[p] = true
	}

	sel := Selection{}
	for _, t := range Tenses {
		if chosenTenses[t] {
			sel.Tenses = append(sel.Tenses, t)
		}
	}
	for _, p := range Persons {
		if chosenPersons[p] {
			sel.Persons = append(sel.Persons, p)
		}
	}
	return sel, nil
}

// FullSelection drills every tense and person.
func FullSelection() Selection {
	sel, _ := NewSelection(Tenses, Persons)
	return sel
}

// Fields is the number of cells drilled per verb.
func (s Selection) Fields() int {
	return len(s.Tenses) * len(s.Persons)
}

// Includes reports whether a cell is part of the drill.
func (s Selection) Includes(t Tense, p Person) bool {
	return containsTense(s.Tenses, t) && containsPerson(s.Persons, p)
}

// Cell addresses one input field of the grid.
type Cell struct {
	Tense  Tense  `json:"tense"`
	Person Person `json:"person"`
}

// Cells enumerates the selected cells tense-major, person-minor. The last
// element is the cell whose commit triggers a check.
func (s Selection) Cells() []Cell {
	cells := make([]Cell, 0, s.Fields())
	for _, t := range s.Tenses {
		for _, p := range s.Persons {
			cells = append(cells, Cell{Tense: t, Person: p})
		}
	}
	return cells
}

// Session is the mutable quiz state persisted between actions.
type Session struct {
	ID              string                `json:"id"`
	CreatedAt       time.Time             `json:"createdAt"`
	TotalQuestions  int                   `json:"totalQuestions"`
	VerbInfinitives []string              `json:"verbInfinitives"`
	CurrentIndex    int                   `json:"currentIndex"`
	SelectedTenses  []Tense               `json:"selectedTenses"`
	SelectedPersons []Person              `json:"selectedPersons"`
	Answers         map[string]TenseForms `json:"answers"`
	Checked         map[string]bool       `json:"checked"`
	Mistakes        int                   `json:"mistakes"`
	PerVerbMistakes map[string]int        `json:"perVerbMistakes"`
}

// NewSession builds a session with empty answers for every verb.
func NewSession(id string, createdAt time.Time, infinitives []string, totalQuestions int, sel Selection) (*Session, error) {
	if len(infinitives) == 0 {
		return nil, ErrNoVerbs
	}
	if totalQuestions != len(infinitives) {
		return nil, fmt.Errorf("%w: %d verbs, %d questions", ErrQuestionCountMismatch, len(infinitives), totalQuestions)
	}
	sel, err := NewSelection(sel.Tenses, sel.Persons)
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:              id,
		CreatedAt:       createdAt,
		TotalQuestions:  totalQuestions,
		VerbInfinitives: append([]string(nil), infinitives...),
		SelectedTenses:  sel.Tenses,
		SelectedPersons: sel.Persons,
		Answers:         make(map[string]TenseForms, len(infinitives)),
		Checked:         make(map[string]bool, len(infinitives)),
		PerVerbMistakes: make(map[string]int, len(infinitives)),
	}
	for _, inf := range infinitives {
		if _, dup := s.Answers[inf]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateVerb, inf)
		}
		s.Answers[inf] = TenseForms{}
		s.Checked[inf] = false
		s.PerVerbMistakes[inf] = 0
	}
	return s, nil
}

// Selection returns the tenses and persons chosen for this session.
func (s *Session) Selection() Selection {
	return Selection{Tenses: s.SelectedTenses, Persons: s.SelectedPersons}
}

// CurrentInfinitive returns the verb under the pointer.
func (s *Session) CurrentInfinitive() (string, error) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= s.TotalQuestions || s.CurrentIndex >= len(s.VerbInfinitives) {
		return "", fmt.Errorf("%w: %w: index %d of %d", ErrContractViolation, ErrIndexOutOfRange, s.CurrentIndex, s.TotalQuestions)
	}
	return s.VerbInfinitives[s.CurrentIndex], nil
}

// Clone returns a deep copy that shares no maps or slices with s.
func (s *Session) Clone() *Session {
	c := *s
	c.VerbInfinitives = append([]string(nil), s.VerbInfinitives...)
	c.SelectedTenses = append([]Tense(nil), s.SelectedTenses...)
	c.SelectedPersons = append([]Person(nil), s.SelectedPersons...)
	c.Answers = make(map[string]TenseForms, len(s.Answers))
	for k, v := range s.Answers {
		c.Answers[k] = v
	}
	c.Checked = make(map[string]bool, len(s.Checked))
	for k, v := range s.Checked {
		c.Checked[k] = v
	}
	c.PerVerbMistakes = make(map[string]int, len(s.PerVerbMistakes))
	for k, v := range s.PerVerbMistakes {
		c.PerVerbMistakes[k] = v
	}
	return &c
}

// Validate checks the structural invariants of a session, typically after decoding.
func (s *Session) Validate() error {
	if s.TotalQuestions <= 0 || s.TotalQuestions != len(s.VerbInfinitives) {
		return fmt.Errorf("%w: %d verbs, %d questions", ErrQuestionCountMismatch, len(s.VerbInfinitives), s.TotalQuestions)
	}
	if s.CurrentIndex < 0 || s.CurrentIndex >= s.TotalQuestions {
		return fmt.Errorf("%w: index %d of %d", ErrIndexOutOfRange, s.CurrentIndex, s.TotalQuestions)
	}
	sel, err := NewSelection(s.SelectedTenses, s.SelectedPersons)
	if err != nil {
		return err
	}
	if !slices.Equal(sel.Tenses, s.SelectedTenses) || !slices.Equal(sel.Persons, s.SelectedPersons) {
		return fmt.Errorf("%w: selection has duplicates or is out of grid order", ErrCorruptSession)
	}
	fields := sel.Fields()
	sum := 0
	seen := make(map[string]bool, len(s.VerbInfinitives))
	for _, inf := range s.VerbInfinitives {
		if seen[inf] {
			return fmt.Errorf("%w: %q", ErrDuplicateVerb, inf)
		}
		seen[inf] = true
		if _, ok := s.Answers[inf]; !ok {
			return fmt.Errorf("%w: no answers for %q", ErrCorruptSession, inf)
		}
		if _, ok := s.Checked[inf]; !ok {
			return fmt.Errorf("%w: no checked flag for %q", ErrCorruptSession, inf)
		}
		n, ok := s.PerVerbMistakes[inf]
		if !ok || n < 0 || n > fields {
			return fmt.Errorf("%w: bad mistake count for %q", ErrCorruptSession, inf)
		}
		if n > 0 && !s.Checked[inf] {
			return fmt.Errorf("%w: mistakes recorded for unchecked %q", ErrCorruptSession, inf)
		}
		sum += n
	}
	if sum != s.Mistakes {
		return fmt.Errorf("%w: mistakes %d != per-verb sum %d", ErrCorruptSession, s.Mistakes, sum)
	}
	return nil
}

// VerbMistakes is one row of the per-verb breakdown.
type VerbMistakes struct {
	Infinitive string `json:"infinitive"`
	Mistakes   int    `json:"mistakes"`
}

// Result is the end-of-session accuracy report.
type Result struct {
	TotalQuestions int            `json:"totalQuestions"`
	TotalFields    int            `json:"totalFields"`
	Mistakes       int            `json:"mistakes"`
	Accuracy       float64        `json:"accuracy"`
	PerVerb        []VerbMistakes `json:"perVerb"`
	Perfect        bool           `json:"perfect"`
}

func containsTense(list []Tense, t Tense) bool {
	for _, v := range list {
		if v == t {
			return true
		}
	}
	return false
}

func containsPerson(list []Person, p Person) bool {
	for _, v := range list {
		if v == p {
			return true
		}
	}
	return false
}
