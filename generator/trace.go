package generator

import "time"

// Step is one visited state of a run.
type Step struct {
	State   State         `json:"state"`
	Elapsed time.Duration `json:"elapsed_ns"`
	Skipped bool          `json:"skipped,omitempty"`
	Err     string        `json:"error,omitempty"`
}

// Trace is the ordered list of states a run went through.
type Trace []Step

func (t *Trace) record(state State, elapsed time.Duration, skipped bool, err error) {
	s := Step{State: state, Elapsed: elapsed, Skipped: skipped}
	if err != nil {
		s.Err = err.Error()
	}
	*t = append(*t, s)
}

// States returns the visited states in order.
func (t Trace) States() []State {
	out := make([]State, len(t))
	for i, s := range t {
		out[i] = s.State
	}
	return out
}
