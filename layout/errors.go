package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrTopology is wrapped by every refused network mutation.
	ErrTopology = errors.New("topology error")
	// ErrRouting is wrapped when a train cannot be placed on or routed through the network.
	ErrRouting = errors.New("routing error")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

func TopologyErrorf(format string, a ...any) error {
	return &kindError{kind: ErrTopology, msg: fmt.Sprintf(format, a...)}
}

func RoutingErrorf(format string, a ...any) error {
	return &kindError{kind: ErrRouting, msg: fmt.Sprintf(format, a...)}
}
