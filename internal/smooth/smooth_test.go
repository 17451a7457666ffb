package smooth

import (
	"math"
	"testing"
)

// path graph 0-1-2-3-4
func pathNeighbors(n int) [][]int {
	nb := make([][]int, n)
	for i := 0; i < n; i++ {
		if i > 0 {
			nb[i] = append(nb[i], i-1)
		}
		if i < n-1 {
			nb[i] = append(nb[i], i+1)
		}
	}
	return nb
}

func TestRun_ZeroIterationsUnchanged(t *testing.T) {
	values := []float64{0.1, 0.9, 0.3, 0.7}
	orig := append([]float64(nil), values...)
	res := Run(values, pathNeighbors(4), nil, 0, Options{})
	for i := range orig {
		if res.Values[i] != orig[i] {
			t.Errorf("vertex %d changed: %v -> %v", i, orig[i], res.Values[i])
		}
	}
	if res.Iterations != 0 {
		t.Errorf("iterations = %d, want 0", res.Iterations)
	}
}

func TestRun_AnchorsBitExact(t *testing.T) {
	values := []float64{0, 1, 1, 1, math.SmallestNonzeroFloat64}
	anchors := []bool{true, false, false, false, true}
	res := Run(values, pathNeighbors(5), anchors, 50, Options{Threshold: 1e-12})
	if res.Values[0] != 0 || res.Values[4] != math.SmallestNonzeroFloat64 {
		t.Errorf("anchored values changed: %v", res.Values)
	}
	for i := 1; i < 4; i++ {
		if res.Values[i] >= 1 || res.Values[i] <= 0 {
			t.Errorf("vertex %d not smoothed: %v", i, res.Values[i])
		}
	}
}

func TestStep_PureJacobi(t *testing.T) {
	values := []float64{0, 0, 3}
	s := New(values, pathNeighbors(3), nil, 1, 0)
	// budget 1 forces three partial steps within the same iteration
	for !s.Done() {
		s.Step(1)
	}
	got := s.Values()
	want := []float64{0, 1, 1.5}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("vertex %d: %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRun_Converges(t *testing.T) {
	values := []float64{0.5, 0.5, 0.5}
	res := Run(values, pathNeighbors(3), nil, 100, Options{})
	if !res.Converged || res.Iterations != 1 {
		t.Errorf("flat field: converged=%v after %d iterations, want true after 1", res.Converged, res.Iterations)
	}
}

func TestRun_Cancel(t *testing.T) {
	values := make([]float64, 100)
	values[50] = 1
	calls := 0
	res := Run(values, pathNeighbors(100), nil, 1000, Options{
		Threshold:  1e-15,
		CheckEvery: 10,
		Cancel: func() bool {
			calls++
			return calls > 25
		},
	})
	if !res.Cancelled {
		t.Fatal("expected cancelled run")
	}
	// 25 admitted steps of 10 vertices over a 100-vertex field
	if res.Iterations != 2 {
		t.Errorf("iterations = %d, want 2", res.Iterations)
	}
	if len(res.Values) != 100 {
		t.Errorf("len = %d", len(res.Values))
	}
}

func TestStep_IgnoresBadNeighbors(t *testing.T) {
	s := New([]float64{1, 0}, [][]int{{1, 7, -1}, {0}}, nil, 1, 0)
	s.Step(0)
	got := s.Values()
	if got[0] != 0.5 || got[1] != 0.5 {
		t.Errorf("got %v, want [0.5 0.5]", got)
	}
}
