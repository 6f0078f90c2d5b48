package rag

import (
	"errors"
	"fmt"
)

// ErrEmptyQuestion is wrapped in a RetrievalError when Answer is called without a question.
var ErrEmptyQuestion = errors.New("question is empty")

// errEmptyScope is wrapped in a RetrievalError; an empty scope cannot be searched.
var errEmptyScope = errors.New("scope is empty")

// RetrievalError reports that evidence could not be retrieved. It is fatal for the request.
type RetrievalError struct {
	// Op is the failing step: "question", "scope", "embed" or "search".
	Op  string
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed (%s): %v", e.Op, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// SynthesisError reports that the generation call failed, timed out or was cancelled.
// No answer was produced, so callers must not charge for the request.
type SynthesisError struct {
	Model   string
	Timeout bool
	Err     error
}

func (e *SynthesisError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("synthesis with model %q timed out: %v", e.Model, e.Err)
	}
	return fmt.Sprintf("synthesis with model %q failed: %v", e.Model, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}
