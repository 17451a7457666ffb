// Package smooth diffuses a per-vertex field over the vertex adjacency
// graph with Jacobi iterations, keeping anchored vertices fixed.
package smooth

import "math"

// Defaults for Run and New.
const (
	DefaultThreshold  = 1e-4
	DefaultCheckEvery = 4096
)

// Smoother is a resumable Jacobi smoother. Each iteration reads one buffer
// and writes the other, so no vertex sees a value updated in the same
// iteration.
type Smoother struct {
	cur, next  []float64
	neighbors  [][]int
	anchors    []bool
	iterations int
	threshold  float64

	iter      int
	cursor    int
	maxDelta  float64
	converged bool
}

// New prepares a smoother over values. values becomes one of the two
// buffers, so read the result through Values.
func New(values []float64, neighbors [][]int, anchors []bool, iterations int, threshold float64) *Smoother {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if iterations < 0 {
		iterations = 0
	}
	return &Smoother{
		cur:        values,
		next:       make([]float64, len(values)),
		neighbors:  neighbors,
		anchors:    anchors,
		iterations: iterations,
		threshold:  threshold,
	}
}

// Done reports whether all iterations ran or the field converged.
func (s *Smoother) Done() bool {
	return s.converged || s.iter >= s.iterations || len(s.cur) == 0
}

// Converged reports whether the run stopped early on the threshold.
func (s *Smoother) Converged() bool { return s.converged }

// Iteration returns the number of completed iterations.
func (s *Smoother) Iteration() int { return s.iter }

// Values returns the buffer of the last completed iteration.
func (s *Smoother) Values() []float64 { return s.cur }

// Progress returns the fraction of the iteration budget already spent.
func (s *Smoother) Progress() float64 {
	if s.Done() {
		return 1
	}
	n := len(s.cur)
	return (float64(s.iter) + float64(s.cursor)/float64(n)) / float64(s.iterations)
}

func (s *Smoother) anchored(i int) bool {
	return i < len(s.anchors) && s.anchors[i]
}

func (s *Smoother) relax(i int) float64 {
	if s.anchored(i) {
		return s.cur[i]
	}
	sum := s.cur[i]
	count := 1
	if i < len(s.neighbors) {
		for _, nb := range s.neighbors[i] {
			if nb < 0 || nb >= len(s.cur) {
				continue
			}
			sum += s.cur[nb]
			count++
		}
	}
	return sum / float64(count)
}

// Step relaxes up to budget vertices of the current iteration and returns
// how many it processed. At the end of an iteration the buffers swap and
// convergence is checked.
func (s *Smoother) Step(budget int) int {
	if s.Done() {
		return 0
	}
	n := len(s.cur)
	end := s.cursor + budget
	if budget <= 0 || end > n {
		end = n
	}
	for i := s.cursor; i < end; i++ {
		v := s.relax(i)
		if d := math.Abs(v - s.cur[i]); d > s.maxDelta {
			s.maxDelta = d
		}
		s.next[i] = v
	}
	done := end - s.cursor
	s.cursor = end

	if s.cursor == n {
		s.cur, s.next = s.next, s.cur
		s.iter++
		s.cursor = 0
		if s.maxDelta < s.threshold {
			s.converged = true
		}
		s.maxDelta = 0
	}
	return done
}

// Options tune Run.
type Options struct {
	Threshold  float64
	CheckEvery int         // vertices between cancel checks
	Cancel     func() bool // optional
}

// Result is the outcome of Run.
type Result struct {
	Values     []float64
	Iterations int
	Converged  bool
	Cancelled  bool
}

// Run smooths values to completion, polling opts.Cancel every
// opts.CheckEvery vertices. A cancelled run returns the buffer of the last
// completed iteration.
func Run(values []float64, neighbors [][]int, anchors []bool, iterations int, opts Options) Result {
	every := opts.CheckEvery
	if every <= 0 {
		every = DefaultCheckEvery
	}
	s := New(values, neighbors, anchors, iterations, opts.Threshold)
	for !s.Done() {
		if opts.Cancel != nil && opts.Cancel() {
			return Result{Values: s.Values(), Iterations: s.iter, Cancelled: true}
		}
		s.Step(every)
	}
	return Result{Values: s.Values(), Iterations: s.iter, Converged: s.converged}
}
