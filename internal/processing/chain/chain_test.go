package chain

import (
	"context"
	"errors"
	"testing"

	"mri-enhancer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// addStep adds a constant to every pixel and records its name.
type addStep struct {
	name  string
	value float64
	seen  *[]string
	fail  bool
}

func (s addStep) Name() string { return s.name }

func (s addStep) Apply(ctx context.Context, input *safe.Mat) (*safe.Mat, error) {
	*s.seen = append(*s.seen, s.name)
	if s.fail {
		return nil, errors.New("boom")
	}
	out := gocv.NewMat()
	src := input.GetMat()
	gocv.AddWeighted(src, 1, src, 0, s.value, &out)
	return safe.Wrap(out, nil, s.name)
}

func newInput(t *testing.T) *safe.Mat {
	t.Helper()
	m, err := safe.Wrap(gocv.NewMatWithSizeFromScalar(gocv.NewScalar(1, 0, 0, 0), 2, 2, gocv.MatTypeCV8UC1), nil, "input")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(m.Close)
	return m
}

func TestExecuteRunsStepsInOrder(t *testing.T) {
	var seen []string
	c := NewProcessingChain(
		addStep{name: "first", value: 2, seen: &seen},
		addStep{name: "second", value: 3, seen: &seen},
	)

	input := newInput(t)
	out, err := c.Execute(context.Background(), input)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()

	if len(seen) != 2 || seen[0] != "first" || seen[1] != "second" {
		t.Errorf("order = %v", seen)
	}
	if v, _ := out.GetUCharAt(0, 0); v != 6 {
		t.Errorf("result = %d, want 6", v)
	}
	if v, _ := input.GetUCharAt(0, 0); v != 1 || !input.IsValid() {
		t.Error("input must not be modified or closed")
	}
	if names := c.GetStepNames(); len(names) != 2 || names[0] != "first" || names[1] != "second" {
		t.Errorf("names = %v", names)
	}
}

func TestExecuteStopsOnError(t *testing.T) {
	var seen []string
	c := NewProcessingChain(
		addStep{name: "ok", value: 1, seen: &seen},
		addStep{name: "bad", seen: &seen, fail: true},
		addStep{name: "never", seen: &seen},
	)

	if _, err := c.Execute(context.Background(), newInput(t)); err == nil {
		t.Fatal("expected error")
	}
	if len(seen) != 2 {
		t.Errorf("steps run = %v", seen)
	}
}

func TestExecuteHonoursCancellation(t *testing.T) {
	var seen []string
	c := NewProcessingChain(addStep{name: "never", seen: &seen})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Execute(ctx, newInput(t)); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(seen) != 0 {
		t.Errorf("steps run = %v", seen)
	}
}

func TestExecuteEmptyChainClones(t *testing.T) {
	input := newInput(t)
	out, err := NewProcessingChain().Execute(context.Background(), input)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()
	if out == input {
		t.Error("empty chain must return a copy")
	}
}
