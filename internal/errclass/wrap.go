package errclass

import "errors"

// ClassifiedError carries a Parsed record through an error chain so outer
// layers render the classified form instead of the raw provider text.
type ClassifiedError struct {
	Parsed Parsed
	Err    error
}

func (e *ClassifiedError) Error() string {
	if e.Parsed.Message != "" {
		return e.Parsed.Title + ": " + e.Parsed.Message
	}
	return e.Parsed.Title
}

func (e *ClassifiedError) Unwrap() error { return e.Err }

// Wrap classifies err and returns it wrapped. Returns nil for nil.
// Already-classified errors pass through unchanged.
func Wrap(err error, cctx *Context) error {
	if err == nil {
		return nil
	}
	var existing *ClassifiedError
	if errors.As(err, &existing) {
		return err
	}
	return &ClassifiedError{Parsed: Classify(err, cctx), Err: err}
}

// From extracts the Parsed record from an error chain, classifying on the
// fly when the error was never wrapped. ok is false only for nil.
func From(err error) (Parsed, bool) {
	if err == nil {
		return Parsed{}, false
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Parsed, true
	}
	return Classify(err, nil), true
}
