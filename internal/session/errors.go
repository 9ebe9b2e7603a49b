package session

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// Failure stages.
const (
	StageRender  = "render"
	StagePresent = "present"
	StageClick   = "click"
	StageClose   = "close"
	StageInput   = "input"
)

// panelFailure is a contained failure of a panel callback or input handler.
type panelFailure struct {
	stage string
	panel string
	cause error
	stack []byte
}

func (e *panelFailure) Error() string {
	if e.panel == "" {
		return fmt.Sprintf("%s failed: %v", e.stage, e.cause)
	}
	return fmt.Sprintf("%s %s failed: %v", e.panel, e.stage, e.cause)
}

func (e *panelFailure) Unwrap() error { return e.cause }

// IsPanelFailure reports whether err is a contained panel or input failure,
// and returns its stage.
func IsPanelFailure(err error) (string, bool) {
	var pf *panelFailure
	if errors.As(err, &pf) {
		return pf.stage, true
	}
	return "", false
}

// safeCall runs fn and converts a returned error or a panic into a
// panelFailure.
func safeCall(stage, panel string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panelFailure{stage: stage, panel: panel, cause: fmt.Errorf("panic: %v", r), stack: debug.Stack()}
		}
	}()
	if cerr := fn(); cerr != nil {
		return &panelFailure{stage: stage, panel: panel, cause: cerr}
	}
	return nil
}
