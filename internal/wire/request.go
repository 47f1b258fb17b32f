// Package wire holds the values exchanged with the transport boundary: the
// request a capability builder produces and the payload the transport
// decodes from the upstream response.
package wire

import (
	"net/http"
	"time"
)

// Capability names one upstream operation.
type Capability string

const (
	Reader    Capability = "reader"
	Search    Capability = "search"
	Grounding Capability = "grounding"
)

// Label is the human-readable operation name used in error messages.
func (c Capability) Label() string {
	switch c {
	case Reader:
		return "Reader (read_url)"
	case Search:
		return "Search"
	case Grounding:
		return "Grounding (ground_statement)"
	}
	return string(c)
}

// ResponseKind tells the transport how to interpret the body.
type ResponseKind int

const (
	KindJSON ResponseKind = iota
	KindBinary
)

func (k ResponseKind) String() string {
	switch k {
	case KindBinary:
		return "binary"
	default:
		return "json"
	}
}

// CapabilityRequest is built once per item and consumed once by the transport.
type CapabilityRequest struct {
	Capability   Capability
	Method       string
	URL          string
	Headers      map[string]string
	Body         map[string]any // nil for GET
	ResponseKind ResponseKind
	Timeout      time.Duration
}

// IsPost reports whether the request carries a JSON body.
func (r *CapabilityRequest) IsPost() bool {
	return r.Method == http.MethodPost
}

// NoCache reports whether the caller asked upstream to bypass its cache;
// the local response cache honours the same flag.
func (r *CapabilityRequest) NoCache() bool {
	return r.Headers["X-No-Cache"] == "true"
}
