package ch

import (
	"github.com/go-faster/errors"

	"github.com/netgraph-io/chwire/proto"
)

// Exception is a server-reported error.
type Exception = proto.Exception

// IsException reports whether err is or wraps a server Exception.
func IsException(err error) bool {
	var e *Exception
	return errors.As(err, &e)
}
