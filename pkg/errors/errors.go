package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrNotInCache        = errors.New("not found in cache")
	ErrMalformedEnvelope = errors.New("malformed response envelope")
	ErrEmptyData         = errors.New("response envelope has no data")
	ErrInvalidFileFormat = errors.New("invalid file format")
	ErrSchemaValidation  = errors.New("schema validation failed")
)

type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s",
		e.Field, e.Value, e.Message)
}

// ValidationErrors groups every field failure of one request.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "; ")
}

// RemoteError is returned for any collaborator call that did not yield a usable envelope:
// transport failure, non-2xx status or undecodable body.
type RemoteError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e RemoteError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("remote error: %s - HTTP %d: %s", e.Op, e.StatusCode, msg)
	}
	return fmt.Sprintf("remote error: %s - %s", e.Op, msg)
}

func (e RemoteError) Unwrap() error {
	return e.Err
}

func NewRemoteError(op string, statusCode int, message string, err error) error {
	return RemoteError{
		Op:         op,
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

func IsRemote(err error) bool {
	var re RemoteError
	return errors.As(err, &re)
}

// RemoteStatus returns the HTTP status carried by a RemoteError, or 0.
func RemoteStatus(err error) int {
	var re RemoteError
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}

func IsValidation(err error) bool {
	var ve ValidationError
	var ves ValidationErrors
	return errors.As(err, &ve) || errors.As(err, &ves) || errors.Is(err, ErrSchemaValidation)
}
