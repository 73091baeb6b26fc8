package tools

import "fmt"

// Error codes surfaced in the tool-call envelope.
const (
	CodeUnknownTool     = "unknown_tool"
	CodeInvalidArgument = "invalid_argument"
	CodeNotReady        = "not_ready"
	CodeNotFound        = "not_found"
	CodeUpstream        = "upstream_error"
)

// Error is a structured tool failure. Handlers return it for every expected
// failure mode; anything else surfaces as an internal error in the envelope.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Errorf builds a tool Error with a formatted message.
func Errorf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}
