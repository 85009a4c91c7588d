package gateway

// ErrorKind classifies where in the gateway handshake a failure happened.
type ErrorKind string

const (
	KindConfiguration ErrorKind = "configuration"
	KindTokenization  ErrorKind = "tokenization"
	KindAuthorization ErrorKind = "authorization"
	KindCommunication ErrorKind = "communication"
)

// Error is the structured result of a rejected or failed gateway call. The
// message is the gateway-supplied one when available, otherwise a per-step
// fallback.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf returns the kind of a gateway error, or an empty kind for anything
// else.
func KindOf(err error) ErrorKind {
	if ge, ok := err.(*Error); ok {
		return ge.Kind
	}
	return ""
}
