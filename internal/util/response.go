package util

type Envelope map[string]any

// Error kinds used in every non-2xx response body.
const (
	KindValidation   = "validation"
	KindNotFound     = "not_found"
	KindUnauthorized = "unauthorized"
	KindForbidden    = "forbidden"
	KindUpstream     = "upstream"
	KindInternal     = "internal"
)

func Error(kind, message string) Envelope {
	return Envelope{"error": Envelope{"kind": kind, "message": message}}
}
