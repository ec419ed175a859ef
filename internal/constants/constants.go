package constants

type contextKey string

const (
	RequestIDKey            contextKey = "request_id"
	AuthorizationPayloadKey contextKey = "authorization_payload"
)

const (
	AuthorizationHeaderKey  = "authorization"
	AuthorizationTypeBearer = "bearer"
)
