package rollup

import (
	"errors"
	"fmt"
)

// Stage names the phase of a run that failed.
type Stage string

const (
	StageJoin      Stage = "join"
	StageAggregate Stage = "aggregate"
	StagePublish   Stage = "publish"
)

var (
	// ErrInputUnavailable means the source could not be read or held no facts
	// for the scanned range. Retrying later is safe.
	ErrInputUnavailable = errors.New("rollup input unavailable")

	// ErrComputation means a bucket could not be represented in the summary
	// table. Retrying without a data or schema fix fails again.
	ErrComputation = errors.New("rollup computation failed")
)

// StageError reports which stage of which run failed. Nothing is published
// when a run returns a StageError, except for storage.ErrPartialPublish.
type StageError struct {
	Stage  Stage
	Schema string
	RunID  string
	Err    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("rollup %s failed at %s stage (run %s): %v", e.Schema, e.Stage, e.RunID, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf returns the failing stage recorded in err, if any.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
