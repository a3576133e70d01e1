package provision

import "fmt"

// FetchError reports a failed content fetch. Add-on fetches retry up to
// the attempt bound before producing one; the base application fetch does
// not retry, a failure there points at the environment rather than the
// content source.
type FetchError struct {
	Instance string
	ModID    int
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	if e.ModID != 0 {
		return fmt.Sprintf("instance %q: fetching mod %d failed after %d attempts: %v",
			e.Instance, e.ModID, e.Attempts, e.Err)
	}
	return fmt.Sprintf("instance %q: fetching server application failed: %v", e.Instance, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// PatchError is fatal and never retried: it indicates a toolchain or
// environment mismatch that retrying cannot fix.
type PatchError struct {
	Instance string
	Err      error
}

func (e *PatchError) Error() string {
	return fmt.Sprintf("instance %q: patching binaries: %v", e.Instance, e.Err)
}

func (e *PatchError) Unwrap() error { return e.Err }

// StepError wraps any other failure with the instance and step it occurred
// in, so errors always name both.
type StepError struct {
	Instance string
	Step     State
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("instance %q: step %s: %v", e.Instance, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
