package http

const (
	HeaderAuthorization    = "Authorization"
	HeaderContentType      = "Content-Type"
	HeaderRequestID        = "X-Request-Id"
	HeaderValueJson        = "application/json"
	StatusSuccess          = "success"
	StatusFailed           = "failed"
	MessageInternalFailure = "Internal Server Error"
)
