package partner

import (
	"errors"
	"fmt"
)

// ErrorKind classifies partner failures. Network errors (including timeouts),
// non-2xx statuses, and undecodable payloads are deliberately distinct so the
// aggregator and orchestrator can report them without string matching.
type ErrorKind int

const (
	ConnectionFailed ErrorKind = iota + 1
	HTTPError
	InvalidResponse
	Unsupported
)

func (k ErrorKind) String() string {
	switch k {
	case ConnectionFailed:
		return "connection_failed"
	case HTTPError:
		return "http_error"
	case InvalidResponse:
		return "invalid_response"
	case Unsupported:
		return "unsupported"
	}
	return "unknown"
}

// Error is the typed failure every adapter operation returns.
type Error struct {
	Kind       ErrorKind
	Partner    ServiceType
	Op         string
	StatusCode int    // set for HTTPError
	RawBody    []byte // set for InvalidResponse, kept for diagnostics
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case HTTPError:
		return fmt.Sprintf("%s %s: http %d", e.Partner, e.Op, e.StatusCode)
	case InvalidResponse:
		if e.Err != nil {
			return fmt.Sprintf("%s %s: invalid response: %v", e.Partner, e.Op, e.Err)
		}
		return fmt.Sprintf("%s %s: invalid response", e.Partner, e.Op)
	case Unsupported:
		return fmt.Sprintf("%s %s: not supported by partner", e.Partner, e.Op)
	default:
		return fmt.Sprintf("%s %s: connection failed: %v", e.Partner, e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func NewConnectionFailed(p ServiceType, op string, err error) *Error {
	return &Error{Kind: ConnectionFailed, Partner: p, Op: op, Err: err}
}

func NewHTTPError(p ServiceType, op string, status int, body []byte) *Error {
	return &Error{Kind: HTTPError, Partner: p, Op: op, StatusCode: status, RawBody: body}
}

func NewInvalidResponse(p ServiceType, op string, body []byte, err error) *Error {
	return &Error{Kind: InvalidResponse, Partner: p, Op: op, RawBody: body, Err: err}
}

func NewUnsupported(p ServiceType, op string) *Error {
	return &Error{Kind: Unsupported, Partner: p, Op: op}
}

// KindOf returns the partner error kind, or 0 if err is not a partner error.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}

func IsUnsupported(err error) bool { return KindOf(err) == Unsupported }
