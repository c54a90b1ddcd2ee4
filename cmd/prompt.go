package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/fvp/internal/app"
	"github.com/twiced-technology-gmbh/fvp/internal/clierr"
	"github.com/twiced-technology-gmbh/fvp/internal/fvp"
	"github.com/twiced-technology-gmbh/fvp/internal/lifecycle"
	"github.com/twiced-technology-gmbh/fvp/internal/task"
)

// interactive reports whether stdin is a terminal we can prompt on.
func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// prompter asks questions on out and reads line answers from in. A single
// goroutine owns in, so an ask abandoned by ctx never races a later one.
type prompter struct {
	in  *bufio.Reader
	out io.Writer

	once  sync.Once
	lines chan answer
}

type answer struct {
	line string
	err  error
}

// start launches the reader goroutine on first use. The channel is closed
// after the first read error.
func (p *prompter) start() {
	p.once.Do(func() {
		p.lines = make(chan answer)
		go func() {
			defer close(p.lines)
			for {
				line, err := p.in.ReadString('\n')
				p.lines <- answer{strings.TrimSpace(line), err}
				if err != nil {
					return
				}
			}
		}()
	})
}

func newPrompter() *prompter {
	return &prompter{in: bufio.NewReader(os.Stdin), out: os.Stderr}
}

// ask prints question and waits for one line. A closed input or a canceled
// ctx returns context.Canceled so callers treat it as the user backing out.
func (p *prompter) ask(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.start()
	fmt.Fprint(p.out, question)

	select {
	case <-ctx.Done():
		fmt.Fprintln(p.out)
		return "", ctx.Err()
	case a, ok := <-p.lines:
		if !ok {
			fmt.Fprintln(p.out)
			return "", context.Canceled
		}
		if a.err != nil {
			if errors.Is(a.err, io.EOF) && a.line != "" {
				return a.line, nil
			}
			fmt.Fprintln(p.out)
			return "", context.Canceled
		}
		return a.line, nil
	}
}

func (p *prompter) reflector() lifecycle.Reflector {
	return lifecycle.ReflectorFunc(func(ctx context.Context, t *task.Task) (lifecycle.Reflection, error) {
		fmt.Fprintf(p.out, "Completing %q\n", t.Text)
		text, err := p.ask(ctx, "Reflection (optional): ")
		if err != nil {
			return lifecycle.Reflection{}, err
		}
		for {
			answer, err := p.ask(ctx, "[c]omplete, [s]helve a copy, or [x] cancel? [c] ")
			if err != nil {
				return lifecycle.Reflection{}, err
			}
			outcome, err := lifecycle.ParseOutcome(strings.ToLower(answer))
			if err == nil {
				return lifecycle.Reflection{Outcome: outcome, Text: text}, nil
			}
			fmt.Fprintln(p.out, err)
		}
	})
}

// comparator asks each comparison on the terminal. name renders a task.
func (p *prompter) comparator(name func(*task.Task) string) fvp.Comparator {
	return fvp.ComparatorFunc(func(ctx context.Context, c fvp.Comparison) (fvp.Choice, error) {
		fmt.Fprintf(p.out, "\nDo you want to do\n  %s\nmore than\n  %s\n", name(c.Candidate), name(c.Benchmark))
		for {
			answer, err := p.ask(ctx, "[y]es, [n]o, [d]efer it, [D]efer the benchmark, [q]uit: ")
			if err != nil {
				return fvp.Abort, err
			}
			choice, err := parseChoice(answer)
			if err == nil {
				return choice, nil
			}
			fmt.Fprintln(p.out, err)
		}
	})
}

func (p *prompter) confirmer() app.Confirmer {
	return app.ConfirmerFunc(func(ctx context.Context, prompt string) (bool, error) {
		answer, err := p.ask(ctx, prompt+" [y/N] ")
		if err != nil {
			return false, err
		}
		answer = strings.ToLower(answer)
		return answer == "y" || answer == "yes", nil
	})
}

// parseChoice maps a comparison answer to a Choice. Answers are case
// sensitive only for d (defer the candidate) and D (defer the benchmark).
func parseChoice(s string) (fvp.Choice, error) {
	switch s {
	case "d":
		return fvp.DeferCandidate, nil
	case "D":
		return fvp.DeferBenchmark, nil
	}
	switch strings.ToLower(s) {
	case "y", "yes", "c", "candidate", "2":
		return fvp.ChooseCandidate, nil
	case "n", "no", "b", "benchmark", "1":
		return fvp.ChooseBenchmark, nil
	case "defer", "defer-candidate":
		return fvp.DeferCandidate, nil
	case "defer-benchmark":
		return fvp.DeferBenchmark, nil
	case "q", "quit", "abort":
		return fvp.Abort, nil
	}
	return fvp.Abort, clierr.Newf(clierr.InvalidInput, "invalid answer %q", s).
		WithDetails(map[string]any{"input": s, "allowed": []string{"y", "n", "d", "D", "q"}})
}

// scriptedComparator answers comparisons from a fixed list and aborts the
// walk once the list is used up.
func scriptedComparator(answers []string) (fvp.Comparator, error) {
	choices := make([]fvp.Choice, 0, len(answers))
	for _, a := range answers {
		c, err := parseChoice(strings.TrimSpace(a))
		if err != nil {
			return nil, err
		}
		choices = append(choices, c)
	}
	return fvp.ComparatorFunc(func(context.Context, fvp.Comparison) (fvp.Choice, error) {
		if len(choices) == 0 {
			return fvp.Abort, nil
		}
		c := choices[0]
		choices = choices[1:]
		return c, nil
	}), nil
}
