// Package transport contains the protocol adapters that carry a rendered
// command payload to a physical receiver. Adapters classify failures but do
// not retry: device commands such as a power toggle are not safely
// repeatable, so retry policy belongs to the caller.
package transport

import (
	"context"
	"fmt"
)

// Kind classifies a transport failure.
type Kind string

const (
	KindConnectFailed     Kind = "connect_failed"
	KindTimeout           Kind = "timeout"
	KindConnectionRefused Kind = "connection_refused"
	KindHTTPError         Kind = "http_error"
)

// Error describes a failed send. Status is set for KindHTTPError.
type Error struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Kind == KindHTTPError {
		return fmt.Sprintf("%s: device returned status %d", e.Kind, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Request carries one rendered payload to a device.
type Request struct {
	Host     string
	Port     int
	Method   string // HTTP only: GET, POST or PUT
	Endpoint string // HTTP only: path on the device, e.g. /MainZone/index.put.asp
	Payload  string
	// ContentType declares the body type for HTTP methods with a body.
	ContentType string
	// ExpectsResponse controls whether the raw-socket adapter waits for a
	// reply line. Fire-and-forget commands complete on a clean write.
	ExpectsResponse bool
}

// Response is the normalized device reply.
type Response struct {
	Status int    // HTTP status, 0 for raw-socket sends
	Body   string // reply body or reply line, may be empty
}

// Adapter sends one rendered payload to a device and normalizes the reply.
type Adapter interface {
	Send(ctx context.Context, req Request) (*Response, error)
}
