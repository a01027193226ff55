package dataset

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes why a dataset keyword was rejected at load time.
type ErrorKind string

const (
	// KindGrammar is a malformed option string: unknown key, duplicate
	// exclusive option, disallowed combination, oversized value, or
	// whitespace in the dataset name.
	KindGrammar ErrorKind = "grammar"

	// KindPathSecurity is a disallowed absolute save path or a directory
	// traversal.
	KindPathSecurity ErrorKind = "path-security"

	// KindBinding is a registry failure: I/O error, memcap exceeded on
	// initial load, or a type mismatch against an existing set.
	KindBinding ErrorKind = "binding"
)

// Error is a dataset keyword setup failure. The signature carrying the
// keyword is rejected; other signatures keep loading.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dataset: %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("dataset: %s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a dataset Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == kind
}

func grammarErrorf(format string, args ...any) *Error {
	return &Error{Kind: KindGrammar, Message: fmt.Sprintf(format, args...)}
}

func pathErrorf(format string, args ...any) *Error {
	return &Error{Kind: KindPathSecurity, Message: fmt.Sprintf(format, args...)}
}

func bindingErrorf(err error, format string, args ...any) *Error {
	return &Error{Kind: KindBinding, Message: fmt.Sprintf(format, args...), Err: err}
}
