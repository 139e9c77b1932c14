// Package terminal renders a drill as a line-oriented prompt loop.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"dutch-verb-trainer/internal/app"
	"dutch-verb-trainer/internal/domain"
)

// Options controls how a terminal drill starts.
type Options struct {
	Questions int
	Selection domain.Selection
	// Resume continues a stored session when one exists.
	Resume bool
}

// Run drives a drill until it finishes or the input ends. Progress is saved
// after every answer, so an interrupted run can be resumed later.
func Run(ctx context.Context, service *app.QuizService, in io.Reader, out io.Writer, opts Options) error {
	drill, err := open(ctx, service, out, opts)
	if err != nil {
		return err
	}
	reader := bufio.NewReader(in)

	for {
		switch drill.State() {
		case app.Answering:
			done, err := answerVerb(ctx, drill, reader, out)
			if err != nil || done {
				return err
			}
		case app.Checked:
			result, err := drill.Reveal(ctx)
			if err != nil {
				return err
			}
			printReveal(out, result)
			fmt.Fprint(out, "Press Enter to continue ")
			if _, ok := readLine(reader); !ok {
				return nil
			}
			if _, err := drill.Advance(ctx); err != nil {
				return err
			}
		case app.Finished:
			result, err := drill.Result()
			if err != nil {
				return err
			}
			printResult(out, result)
			return drill.Restart(ctx)
		}
	}
}

func open(ctx context.Context, service *app.QuizService, out io.Writer, opts Options) (*app.Drill, error) {
	if opts.Resume {
		drill, err := service.Resume(ctx)
		if err == nil {
			fmt.Fprintln(out, "Continuing your previous session.")
			return drill, nil
		}
		if !errors.Is(err, domain.ErrNoSession) {
			// Storage trouble degrades to a fresh run.
			fmt.Fprintf(out, "Could not load previous session: %v\n", err)
		}
	}
	return service.Start(ctx, opts.Questions, opts.Selection)
}

// answerVerb prompts every selected cell of the current verb. An empty line
// keeps the stored answer. Committing the last cell checks the verb. The
// bool reports that input ended.
func answerVerb(ctx context.Context, drill *app.Drill, reader *bufio.Reader, out io.Writer) (bool, error) {
	verb, err := drill.CurrentVerb(ctx)
	if err != nil {
		return false, err
	}
	answers, err := drill.Answers()
	if err != nil {
		return false, err
	}
	progress := drill.Progress()
	fmt.Fprintf(out, "\nQuestion %d / %d    Mistakes: %d\n", progress.Question, progress.Total, progress.Mistakes)
	fmt.Fprintf(out, "== %s ==\n", verb.Infinitive)

	cells := drill.Session().Selection().Cells()
	for _, cell := range cells {
		current := answers.Cell(cell.Tense, cell.Person)
		if current != "" {
			fmt.Fprintf(out, "%s, %s [%s]: ", cell.Tense.Label(), cell.Person.Label(), current)
		} else {
			fmt.Fprintf(out, "%s, %s: ", cell.Tense.Label(), cell.Person.Label())
		}
		line, ok := readLine(reader)
		if !ok {
			return true, nil
		}
		if line != "" {
			if err := drill.SetAnswer(ctx, cell.Tense, cell.Person, line); err != nil {
				return false, err
			}
		}
		if _, _, err := drill.Submit(ctx, cell.Tense, cell.Person); err != nil {
			return false, err
		}
	}
	return false, nil
}

func readLine(reader *bufio.Reader) (string, bool) {
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimRight(line, "\r\n"), true
}

func printReveal(out io.Writer, result app.CheckResult) {
	if result.Mistakes == 0 {
		fmt.Fprintln(out, "All correct!")
		return
	}
	fmt.Fprintf(out, "%d mistake(s):\n", result.Mistakes)
	for _, cell := range result.Cells {
		if cell.Correct {
			continue
		}
		fmt.Fprintf(out, "  %s, %s: %q -> %s\n", cell.Tense.Label(), cell.Person.Label(), cell.Answer, cell.Expected)
	}
}

func printResult(out io.Writer, result domain.Result) {
	fmt.Fprintln(out, "\nResults")
	fmt.Fprintf(out, "Accuracy: %.1f%%\n", result.Accuracy)
	fmt.Fprintf(out, "Total mistakes: %d\n", result.Mistakes)
	fmt.Fprintf(out, "Verbs completed: %d\n", result.TotalQuestions)
	if result.Perfect {
		fmt.Fprintln(out, "Perfect! No mistakes.")
		return
	}
	fmt.Fprintln(out, "Mistakes by verb:")
	for _, v := range result.PerVerb {
		fmt.Fprintf(out, "  %s: %d\n", v.Infinitive, v.Mistakes)
	}
}
