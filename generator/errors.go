package generator

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyResponse = errors.New("model returned empty response")
	ErrUnknownTier   = errors.New("unknown model tier")
)

// StageError aborts a run and names the stage that failed.
type StageError struct {
	Stage State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", strings.ToLower(string(e.Stage)), e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
