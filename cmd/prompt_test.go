package cmd

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/fvp/internal/clierr"
	"github.com/twiced-technology-gmbh/fvp/internal/fvp"
	"github.com/twiced-technology-gmbh/fvp/internal/lifecycle"
	"github.com/twiced-technology-gmbh/fvp/internal/task"
)

func TestParseChoice(t *testing.T) {
	tests := []struct {
		in   string
		want fvp.Choice
	}{
		{"y", fvp.ChooseCandidate},
		{"YES", fvp.ChooseCandidate},
		{"n", fvp.ChooseBenchmark},
		{"1", fvp.ChooseBenchmark},
		{"d", fvp.DeferCandidate},
		{"D", fvp.DeferBenchmark},
		{"defer-benchmark", fvp.DeferBenchmark},
		{"q", fvp.Abort},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseChoice(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := parseChoice("maybe")
	assert.Equal(t, clierr.InvalidInput, clierr.CodeOf(err))
}

func TestScriptedComparator(t *testing.T) {
	cmp, err := scriptedComparator([]string{"y", " n "})
	require.NoError(t, err)

	ctx := context.Background()
	for _, want := range []fvp.Choice{fvp.ChooseCandidate, fvp.ChooseBenchmark, fvp.Abort} {
		got, err := cmp.Compare(ctx, fvp.Comparison{})
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err = scriptedComparator([]string{"y", "?"})
	assert.Error(t, err)
}

func TestSplitRefs(t *testing.T) {
	assert.Equal(t, []string{"#1", "01J", "#3"}, splitRefs("#1, 01J,,#3,#1"))
	assert.Empty(t, splitRefs(" , "))
}

func TestNormalizeFlag(t *testing.T) {
	assert.Equal(t, "no-color", string(normalizeFlag(nil, "no_color")))
	assert.Equal(t, "json", string(normalizeFlag(nil, "json")))
}

func newTestPrompter(input string) (*prompter, *bytes.Buffer) {
	var out bytes.Buffer
	return &prompter{in: bufio.NewReader(strings.NewReader(input)), out: &out}, &out
}

func TestPrompterReflector(t *testing.T) {
	p, out := newTestPrompter("went fine\nwhat\ns\n")
	r, err := p.reflector().Reflect(context.Background(), task.New("a", "write report"))
	require.NoError(t, err)

	assert.Equal(t, lifecycle.OutcomeShelve, r.Outcome)
	assert.Equal(t, "went fine", r.Text)
	assert.Contains(t, out.String(), `Completing "write report"`)
	assert.Contains(t, out.String(), "invalid reflection outcome")
}

func TestPrompterClosedInputCancels(t *testing.T) {
	p, _ := newTestPrompter("")
	_, err := p.reflector().Reflect(context.Background(), task.New("a", "a"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrompterComparator(t *testing.T) {
	p, out := newTestPrompter("D\n")
	name := func(t *task.Task) string { return t.Text }
	c := fvp.Comparison{Benchmark: task.New("a", "bench"), Candidate: task.New("b", "cand")}

	got, err := p.comparator(name).Compare(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, fvp.DeferBenchmark, got)
	assert.Contains(t, out.String(), "Do you want to do\n  cand\nmore than\n  bench")
}

func TestPrompterAskAfterCancel(t *testing.T) {
	p, _ := newTestPrompter("first\nsecond\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.ask(ctx, "? ")
	require.ErrorIs(t, err, context.Canceled)

	got, err := p.ask(context.Background(), "? ")
	require.NoError(t, err)
	assert.Equal(t, "first", got, "the abandoned ask consumed nothing")

	got, err = p.ask(context.Background(), "? ")
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	_, err = p.ask(context.Background(), "? ")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrompterConfirmer(t *testing.T) {
	p, _ := newTestPrompter("yes\n")
	ok, err := p.confirmer().Confirm(context.Background(), "Delete?")
	require.NoError(t, err)
	assert.True(t, ok)

	p, _ = newTestPrompter("\n")
	ok, err = p.confirmer().Confirm(context.Background(), "Delete?")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Started", capitalize("started"))
	assert.Empty(t, capitalize(""))
}
