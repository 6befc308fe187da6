// Package command implements the command templating and execution engine:
// stored command definitions are validated against caller-supplied parameter
// values, rendered into protocol payloads and dispatched over the receiver's
// declared transport.
package command

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"avrctl/pkg/models"
	"avrctl/pkg/transport"
)

// Store resolves a receiver model and action name to a stored command. The
// returned command must have its Receiver and Parameters populated.
type Store interface {
	GetCommand(ctx context.Context, model, actionName string) (*models.Command, error)
}

// Request identifies one command execution: which stored command to run,
// which physical device to run it against, and the raw parameter values.
type Request struct {
	Model      string
	Action     string
	Host       string
	Port       int // 0 means the receiver's default port
	Parameters map[string]any
}

// Outcome is the transient result of a successful execution.
type Outcome struct {
	Response string
	Status   int
	Elapsed  time.Duration
}

// Executor orchestrates one execution: resolve, validate, render, dispatch.
// It holds no per-call state and is safe for concurrent use; serialization of
// single-connection receivers lives in the socket adapter.
type Executor struct {
	store         Store
	httpAdapter   transport.Adapter
	socketAdapter transport.Adapter
	excerptBytes  int
}

// NewExecutor wires an executor to its schema store and transport adapters.
func NewExecutor(store Store, httpAdapter, socketAdapter transport.Adapter, excerptBytes int) *Executor {
	if excerptBytes <= 0 {
		excerptBytes = 512
	}
	return &Executor{
		store:         store,
		httpAdapter:   httpAdapter,
		socketAdapter: socketAdapter,
		excerptBytes:  excerptBytes,
	}
}

// Execute runs one command against a device. All failures are returned as a
// *Error carrying the failure kind; validation failures identify the
// offending parameter so a caller can correct a single field. Exactly one
// network call is made, and none at all when resolution, validation or
// rendering fails.
func (executor *Executor) Execute(ctx context.Context, req Request) (*Outcome, error) {
	start := time.Now()

	cmd, err := executor.store.GetCommand(ctx, req.Model, req.Action)
	if err != nil {
		return nil, err
	}

	values, err := Validate(cmd.Parameters, req.Parameters)
	if err != nil {
		return nil, err
	}

	payload, err := Render(cmd.CommandTemplate, values, encodingFor(cmd))
	if err != nil {
		return nil, err
	}

	var adapter transport.Adapter
	switch cmd.Receiver.Protocol {
	case models.ProtocolHTTP:
		adapter = executor.httpAdapter
	case models.ProtocolTelnet:
		adapter = executor.socketAdapter
	default:
		return nil, newError(KindUnsupportedProtocol, "protocol %q cannot be dispatched", cmd.Receiver.Protocol)
	}

	port := req.Port
	if port == 0 {
		port = cmd.Receiver.DefaultPort
	}

	slog.Info("Executing command",
		"component", "Executor",
		"model", req.Model,
		"action", req.Action,
		"host", req.Host,
		"port", port,
	)

	resp, err := adapter.Send(ctx, transport.Request{
		Host:            req.Host,
		Port:            port,
		Method:          cmd.HTTPMethod,
		Endpoint:        cmd.Endpoint,
		Payload:         payload,
		ContentType:     cmd.ContentType,
		ExpectsResponse: cmd.ExpectsResponse,
	})
	if err != nil {
		return nil, translateTransportError(err)
	}

	return &Outcome{
		Response: executor.excerpt(resp.Body),
		Status:   resp.Status,
		Elapsed:  time.Since(start),
	}, nil
}

// encodingFor picks the escape context for substituted values from the
// command's protocol and body declaration.
func encodingFor(cmd *models.Command) Encoding {
	if cmd.Receiver.Protocol == models.ProtocolTelnet {
		return EncodeRaw
	}
	if cmd.HTTPMethod != "GET" && cmd.HTTPMethod != "" &&
		strings.Contains(strings.ToLower(cmd.ContentType), "xml") {
		return EncodeXML
	}
	return EncodeQuery
}

// translateTransportError maps adapter failures onto the executor's uniform
// error shape without losing the transport-specific kind.
func translateTransportError(err error) *Error {
	trErr, ok := err.(*transport.Error)
	if !ok {
		return newError(KindConnectFailed, "%s", err.Error())
	}
	mapped := &Error{Status: trErr.Status, Message: trErr.Message}
	switch trErr.Kind {
	case transport.KindTimeout:
		mapped.Kind = KindTimeout
	case transport.KindConnectionRefused:
		mapped.Kind = KindConnectionRefused
	case transport.KindHTTPError:
		mapped.Kind = KindHTTPError
		mapped.Message = trErr.Error()
	default:
		mapped.Kind = KindConnectFailed
	}
	return mapped
}

func (executor *Executor) excerpt(body string) string {
	if len(body) > executor.excerptBytes {
		return body[:executor.excerptBytes]
	}
	return body
}
