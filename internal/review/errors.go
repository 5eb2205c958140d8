package review

import "fmt"

// Cursor identifies the turn slot the orchestrator was driving when a run
// failed. Re-running with the partial transcript resumes at this slot
// without duplicating already-appended turns.
type Cursor struct {
	Round   int
	Speaker string
}

// RunError wraps any unrecoverable failure during a run. The transcript
// accumulated up to the failure point is still returned alongside it; the
// core never retries on its own.
type RunError struct {
	Cursor Cursor
	Err    error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("review: run failed at round %d (%s): %v", e.Cursor.Round, e.Cursor.Speaker, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// SynthesisError reports a finalized transcript that could not be collapsed
// into a valid verdict. The synthesizer never guesses a recommendation.
type SynthesisError struct {
	Reason string
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("review: synthesis failed: %s", e.Reason)
}
