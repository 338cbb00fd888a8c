package filters

import (
	"context"
	"math/rand"
	"testing"

	"mri-enhancer/internal/logger"
	"mri-enhancer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// noisyGray returns a gradient with deterministic noise.
func noisyGray(t *testing.T, rows, cols int) *safe.Mat {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	m := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC1)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := x*255/cols + rng.Intn(41) - 20
			m.SetUCharAt(y, x, uint8(max(0, min(255, v))))
		}
	}
	sm, err := safe.Wrap(m, nil, "test")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(sm.Close)
	return sm
}

func constant(t *testing.T, value float64, matType gocv.MatType) *safe.Mat {
	t.Helper()
	sm, err := safe.Wrap(gocv.NewMatWithSizeFromScalar(gocv.NewScalar(value, value, value, value), 16, 16, matType), nil, "test")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(sm.Close)
	return sm
}

func apply(t *testing.T, step interface {
	Apply(context.Context, *safe.Mat) (*safe.Mat, error)
}, input *safe.Mat) *safe.Mat {
	t.Helper()
	out, err := step.Apply(context.Background(), input)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(out.Close)
	return out
}

func TestGrayscaleConverter(t *testing.T) {
	g := NewGrayscaleConverter(logger.Nop())

	tests := []struct {
		name    string
		matType gocv.MatType
	}{
		{"bgr", gocv.MatTypeCV8UC3},
		{"bgra", gocv.MatTypeCV8UC4},
		{"gray", gocv.MatTypeCV8UC1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := apply(t, g, constant(t, 100, tt.matType))
			if out.Type() != gocv.MatTypeCV8UC1 {
				t.Errorf("type = %d, want 8UC1", int(out.Type()))
			}
			if out.Rows() != 16 || out.Cols() != 16 {
				t.Errorf("size = %dx%d", out.Cols(), out.Rows())
			}
			if v, _ := out.GetUCharAt(3, 3); v != 100 {
				t.Errorf("value = %d, want 100", v)
			}
		})
	}
}

func TestGrayscaleConverterRejectsTwoChannels(t *testing.T) {
	g := NewGrayscaleConverter(logger.Nop())
	if _, err := g.Apply(context.Background(), constant(t, 1, gocv.MatTypeCV8UC2)); err == nil {
		t.Fatal("expected error for 2-channel input")
	}
}

func TestBilateralFilter(t *testing.T) {
	b := NewBilateralFilter(0.1, 5, logger.Nop())
	if d := b.Diameter(); d != 31 {
		t.Errorf("diameter = %d, want 31", d)
	}

	input := noisyGray(t, 32, 32)
	out := apply(t, b, input)
	if out.Type() != gocv.MatTypeCV8UC1 || out.Rows() != 32 || out.Cols() != 32 {
		t.Errorf("output %dx%d type %d", out.Cols(), out.Rows(), int(out.Type()))
	}

	if _, err := b.Apply(context.Background(), constant(t, 1, gocv.MatTypeCV8UC3)); err == nil {
		t.Error("expected error for colour input")
	}
}

func TestNonLocalMeansFilter(t *testing.T) {
	n := NewNonLocalMeansFilter(5, 3, 0.1, logger.Nop())
	if w := n.SearchWindow(); w != 7 {
		t.Errorf("search window = %d, want 7", w)
	}

	input := noisyGray(t, 32, 32)
	if h := n.Strength(input); h <= 0 {
		t.Errorf("strength = %v, want > 0", h)
	}
	out := apply(t, n, input)
	if out.Type() != gocv.MatTypeCV8UC1 || out.Rows() != 32 || out.Cols() != 32 {
		t.Errorf("output %dx%d type %d", out.Cols(), out.Rows(), int(out.Type()))
	}
}

func TestNonLocalMeansFilterPassesFlatImageThrough(t *testing.T) {
	n := NewNonLocalMeansFilter(5, 3, 0.1, logger.Nop())
	input := constant(t, 80, gocv.MatTypeCV8UC1)

	if h := n.Strength(input); h != 0 {
		t.Errorf("strength = %v, want 0", h)
	}
	out := apply(t, n, input)
	if out == input {
		t.Fatal("flat image must still be copied")
	}
	if v, _ := out.GetUCharAt(5, 5); v != 80 {
		t.Errorf("value = %d, want 80", v)
	}
}

func TestCLAHEFilter(t *testing.T) {
	c := NewCLAHEFilter(2.0, 8, logger.Nop())
	out := apply(t, c, noisyGray(t, 32, 32))
	if out.Type() != gocv.MatTypeCV8UC1 || out.Rows() != 32 {
		t.Errorf("output %dx%d type %d", out.Cols(), out.Rows(), int(out.Type()))
	}
}

func TestNormalizer(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		in   float64
		want float32
	}{
		{0, 0},
		{255, 1},
	}

	for _, tt := range tests {
		out := apply(t, n, constant(t, tt.in, gocv.MatTypeCV8UC1))
		if out.Type() != gocv.MatTypeCV32FC1 {
			t.Fatalf("type = %d, want 32FC1", int(out.Type()))
		}
		if v, _ := out.GetFloatAt(0, 0); v != tt.want {
			t.Errorf("normalize(%v) = %v, want %v", tt.in, v, tt.want)
		}
	}
}
