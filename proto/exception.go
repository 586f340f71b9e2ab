package proto

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
)

// Exception is a server-reported error, possibly wrapping a chain of nested
// causes. It implements error so it can flow through normal Go error
// handling while still exposing the original ClickHouse error code.
type Exception struct {
	Code       int32
	Name       string
	Message    string
	StackTrace string
	Nested     *Exception
}

// Error implements error.
func (e *Exception) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (code %d): %s", e.Name, e.Code, e.Message)
	for n := e.Nested; n != nil; n = n.Nested {
		fmt.Fprintf(&b, "\n\tcaused by: %s (code %d): %s", n.Name, n.Code, n.Message)
	}
	return b.String()
}

// DecodeException reads a (possibly chained) Exception message.
func DecodeException(r *Reader) (*Exception, error) {
	var head, cur *Exception
	for {
		var e Exception
		code, err := r.Int32()
		if err != nil {
			return nil, errors.Wrap(err, "code")
		}
		name, err := r.Str()
		if err != nil {
			return nil, errors.Wrap(err, "name")
		}
		msg, err := r.Str()
		if err != nil {
			return nil, errors.Wrap(err, "message")
		}
		stack, err := r.Str()
		if err != nil {
			return nil, errors.Wrap(err, "stack_trace")
		}
		hasNested, err := r.Bool()
		if err != nil {
			return nil, errors.Wrap(err, "has_nested")
		}
		e.Code = code
		e.Name = name
		e.Message = msg
		e.StackTrace = stack

		if head == nil {
			head = &e
			cur = head
		} else {
			cur.Nested = &e
			cur = cur.Nested
		}
		if !hasNested {
			break
		}
	}
	return head, nil
}
