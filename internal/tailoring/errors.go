package tailoring

import "fmt"

// StageError describes why a tailoring stage fell back to the source content.
// It is logged and recorded as the stage outcome reason, never returned.
type StageError struct {
	Stage   string
	Message string
	Cause   error
}

func (e *StageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s stage: %s: %v", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s stage: %s", e.Stage, e.Message)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}

// reason is the short form stored in StageOutcome.
func (e *StageError) reason() string {
	return e.Message
}
