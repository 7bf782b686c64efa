package pipeline

import "fmt"

// StageError wraps a failure raised by a stage tool. Its message is what callers
// see as the job's error_message, so it stays short and names the stage.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
