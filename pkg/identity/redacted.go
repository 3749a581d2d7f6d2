package identity

// RedactedToken wraps a sensitive string to prevent accidental logging.
//
// The type implements fmt.Stringer and the marshal interfaces to return
// "[REDACTED]" instead of the wrapped value, so secrets cannot leak
// through log messages, error strings, or serialized output.
type RedactedToken struct {
	value string
}

// NewRedactedToken creates a new RedactedToken wrapping the given value.
func NewRedactedToken(value string) RedactedToken {
	return RedactedToken{value: value}
}

// Value returns the actual secret. Use this only when the value needs to
// be placed in an HTTP header or request body. Never log the result.
func (t RedactedToken) Value() string {
	return t.value
}

// String implements fmt.Stringer.
func (t RedactedToken) String() string {
	return "[REDACTED]"
}

// GoString implements fmt.GoStringer for %#v formatting.
func (t RedactedToken) GoString() string {
	return "identity.RedactedToken{[REDACTED]}"
}

// IsEmpty returns true if the wrapped value is empty.
func (t RedactedToken) IsEmpty() bool {
	return t.value == ""
}

// MarshalText implements encoding.TextMarshaler.
func (t RedactedToken) MarshalText() ([]byte, error) {
	return []byte("[REDACTED]"), nil
}

// MarshalJSON implements json.Marshaler.
func (t RedactedToken) MarshalJSON() ([]byte, error) {
	return []byte(`"[REDACTED]"`), nil
}
