package command

import "fmt"

// Kind classifies an execution failure. Schema, validation and rendering kinds
// are produced before any network traffic; transport kinds describe the single
// network attempt against the device.
type Kind string

const (
	// Schema errors
	KindNotFound Kind = "not_found"

	// Validation errors
	KindMissingParameter Kind = "missing_parameter"
	KindTypeMismatch     Kind = "type_mismatch"
	KindInvalidEnumValue Kind = "invalid_enum_value"
	KindRange            Kind = "range"
	KindUnknownParameter Kind = "unknown_parameter"

	// Rendering errors
	KindTemplateMismatch Kind = "template_mismatch"
	KindInvalidValue     Kind = "invalid_value"

	// Transport errors
	KindConnectFailed     Kind = "connect_failed"
	KindTimeout           Kind = "timeout"
	KindConnectionRefused Kind = "connection_refused"
	KindHTTPError         Kind = "http_error"

	// Dispatch errors
	KindUnsupportedProtocol Kind = "unsupported_protocol"
)

// Error is the uniform failure shape returned by the executor and its
// sub-components. Param names the offending parameter for validation kinds;
// Status carries the device's HTTP status for KindHTTPError.
type Error struct {
	Kind    Kind
	Param   string
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: parameter %q: %s", e.Kind, e.Param, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// ClientError reports whether the failure is correctable by the caller
// (bad input or unknown names) as opposed to a server-side configuration
// problem or a device/environment failure.
func (e *Error) ClientError() bool {
	switch e.Kind {
	case KindNotFound, KindMissingParameter, KindTypeMismatch,
		KindInvalidEnumValue, KindRange, KindUnknownParameter, KindInvalidValue:
		return true
	}
	return false
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func newParamError(kind Kind, param, format string, args ...any) *Error {
	return &Error{Kind: kind, Param: param, Message: fmt.Sprintf(format, args...)}
}
