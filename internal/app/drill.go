package app

import (
	"context"
	"errors"
	"fmt"

	"dutch-verb-trainer/internal/domain"
)

// State is the position of a drill in its per-verb state machine.
type State int

const (
	// Answering accepts edits for the current verb.
	Answering State = iota
	// Checked freezes the current verb and allows reveal and advance.
	Checked
	// Finished is terminal; the session is handed off for scoring.
	Finished
)

func (s State) String() string {
	switch s {
	case Answering:
		return "answering"
	case Checked:
		return "checked"
	case Finished:
		return "finished"
	}
	return "unknown"
}

// CellResult is the graded outcome of one input field.
type CellResult struct {
	Tense    domain.Tense  `json:"tense"`
	Person   domain.Person `json:"person"`
	Answer   string        `json:"answer"`
	Correct  bool          `json:"correct"`
	Expected string        `json:"expected,omitempty"` // first accepted alternative, set when wrong
}

// CheckResult summarizes a checked verb.
type CheckResult struct {
	Infinitive string       `json:"infinitive"`
	Mistakes   int          `json:"mistakes"`
	Cells      []CellResult `json:"cells"`
}

// Progress is the header view of a running drill.
type Progress struct {
	Question int     `json:"question"`
	Total    int     `json:"total"`
	Mistakes int     `json:"mistakes"`
	Percent  float64 `json:"percent"`
}

// Drill owns one session and drives it through answer, check, advance and
// finish. Every mutation is applied to a copy, persisted, then swapped in, so
// a failed save leaves the drill unchanged. A Drill is not safe for concurrent use.
type Drill struct {
	session   *domain.Session
	store     *SessionStore
	catalogue Catalogue
	finished  bool
}

func newDrill(session *domain.Session, store *SessionStore, catalogue Catalogue) *Drill {
	return &Drill{session: session, store: store, catalogue: catalogue}
}

// Session returns a deep copy of the current state.
func (d *Drill) Session() *domain.Session {
	return d.session.Clone()
}

// State reports the state of the current verb.
func (d *Drill) State() State {
	if d.finished {
		return Finished
	}
	inf, err := d.session.CurrentInfinitive()
	if err == nil && d.session.Checked[inf] {
		return Checked
	}
	return Answering
}

// Progress reports the 1-based question number, running mistakes and completion.
func (d *Drill) Progress() Progress {
	total := d.session.TotalQuestions
	p := Progress{
		Question: d.session.CurrentIndex + 1,
		Total:    total,
		Mistakes: d.session.Mistakes,
	}
	if total > 0 {
		p.Percent = float64(d.session.CurrentIndex+1) / float64(total) * 100
	}
	return p
}

// CurrentVerb returns the catalogue entry under the pointer.
func (d *Drill) CurrentVerb(ctx context.Context) (domain.Verb, error) {
	inf, err := d.session.CurrentInfinitive()
	if err != nil {
		return domain.Verb{}, err
	}
	return d.lookup(ctx, inf)
}

// Answers returns the learner's input for the current verb.
func (d *Drill) Answers() (domain.TenseForms, error) {
	inf, err := d.session.CurrentInfinitive()
	if err != nil {
		return domain.TenseForms{}, err
	}
	return d.session.Answers[inf], nil
}

// SetAnswer records one edit of the current verb and persists it.
func (d *Drill) SetAnswer(ctx context.Context, tense domain.Tense, person domain.Person, value string) error {
	if d.finished {
		return domain.ErrSessionFinished
	}
	inf, err := d.session.CurrentInfinitive()
	if err != nil {
		return err
	}
	if !d.session.Selection().Includes(tense, person) {
		return fmt.Errorf("%w: %s/%s", domain.ErrCellNotSelected, tense, person)
	}
	if d.session.Checked[inf] {
		return domain.ErrAnswerLocked
	}

	next := d.session.Clone()
	forms := next.Answers[inf]
	forms.SetCell(tense, person, value)
	next.Answers[inf] = forms
	return d.commit(ctx, next)
}

// Check grades every selected cell of the current verb. It counts at most
// once per verb: calling it again returns the stored outcome unchanged.
func (d *Drill) Check(ctx context.Context) (CheckResult, error) {
	if d.finished {
		return CheckResult{}, domain.ErrSessionFinished
	}
	inf, err := d.session.CurrentInfinitive()
	if err != nil {
		return CheckResult{}, err
	}
	verb, err := d.lookup(ctx, inf)
	if err != nil {
		return CheckResult{}, err
	}

	result := grade(verb, d.session.Answers[inf], d.session.Selection())
	if d.session.Checked[inf] {
		return result, nil
	}

	next := d.session.Clone()
	next.Checked[inf] = true
	next.PerVerbMistakes[inf] = result.Mistakes
	next.Mistakes += result.Mistakes
	if err := d.commit(ctx, next); err != nil {
		return CheckResult{}, err
	}
	return result, nil
}

// Submit is the keyboard commit on a cell: committing the last selected cell
// checks the verb, any other cell does nothing. The bool reports whether a
// check ran.
func (d *Drill) Submit(ctx context.Context, tense domain.Tense, person domain.Person) (CheckResult, bool, error) {
	cells := d.session.Selection().Cells()
	if len(cells) == 0 {
		return CheckResult{}, false, nil
	}
	last := cells[len(cells)-1]
	if last.Tense != tense || last.Person != person {
		return CheckResult{}, false, nil
	}
	result, err := d.Check(ctx)
	if err != nil {
		return CheckResult{}, false, err
	}
	return result, true, nil
}

// Reveal returns the graded cells of the checked current verb, including the
// first accepted alternative for every wrong cell.
func (d *Drill) Reveal(ctx context.Context) (CheckResult, error) {
	if d.finished {
		return CheckResult{}, domain.ErrSessionFinished
	}
	inf, err := d.session.CurrentInfinitive()
	if err != nil {
		return CheckResult{}, err
	}
	if !d.session.Checked[inf] {
		return CheckResult{}, domain.ErrNotChecked
	}
	verb, err := d.lookup(ctx, inf)
	if err != nil {
		return CheckResult{}, err
	}
	return grade(verb, d.session.Answers[inf], d.session.Selection()), nil
}

// Advance moves to the next verb once the current one is checked. On the
// last verb it finishes the drill without touching the session. Advancing an
// unchecked verb is a no-op.
func (d *Drill) Advance(ctx context.Context) (State, error) {
	if d.finished {
		return Finished, domain.ErrSessionFinished
	}
	inf, err := d.session.CurrentInfinitive()
	if err != nil {
		return Answering, err
	}
	if !d.session.Checked[inf] {
		return Answering, nil
	}

	if d.session.CurrentIndex < d.session.TotalQuestions-1 {
		next := d.session.Clone()
		next.CurrentIndex++
		if err := d.commit(ctx, next); err != nil {
			return Checked, err
		}
		return d.State(), nil
	}
	d.finished = true
	return Finished, nil
}

// Result scores the finished session.
func (d *Drill) Result() (domain.Result, error) {
	if !d.finished {
		return domain.Result{}, domain.ErrSessionNotFinished
	}
	return domain.Score(d.session)
}

// Restart erases the stored session after the results have been shown.
func (d *Drill) Restart(ctx context.Context) error {
	return d.store.Clear(ctx)
}

func (d *Drill) commit(ctx context.Context, next *domain.Session) error {
	if err := d.store.Save(ctx, next); err != nil {
		return err
	}
	d.session = next
	return nil
}

func (d *Drill) lookup(ctx context.Context, infinitive string) (domain.Verb, error) {
	verb, err := d.catalogue.GetVerb(ctx, infinitive)
	if errors.Is(err, domain.ErrVerbNotFound) {
		return domain.Verb{}, fmt.Errorf("%w: %w: %q", domain.ErrContractViolation, err, infinitive)
	}
	if err != nil {
		return domain.Verb{}, fmt.Errorf("get verb %q: %w", infinitive, err)
	}
	return verb, nil
}

func grade(verb domain.Verb, answers domain.TenseForms, sel domain.Selection) CheckResult {
	result := CheckResult{Infinitive: verb.Infinitive}
	for _, cell := range sel.Cells() {
		accepted := verb.Forms.Cell(cell.Tense, cell.Person)
		answer := answers.Cell(cell.Tense, cell.Person)
		cr := CellResult{
			Tense:   cell.Tense,
			Person:  cell.Person,
			Answer:  answer,
			Correct: domain.ValidateAnswer(answer, accepted),
		}
		if !cr.Correct {
			cr.Expected = domain.FirstAlternative(accepted)
			result.Mistakes++
		}
		result.Cells = append(result.Cells, cr)
	}
	return result
}
