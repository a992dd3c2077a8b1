package values

// Response statuses. util.StatusCode maps each one to an HTTP status code.
const (
	Success        = "success"
	Created        = "created"
	Accepted       = "accepted"
	Error          = "error"
	SystemErr      = "system_error"
	ConfigErr      = "configuration_error"
	Upstream       = "upstream_error"
	Unavailable    = "service_unavailable"
	BadRequestBody = "bad_request"
	Unprocessable  = "unprocessable"
	NotAllowed     = "not_allowed"
	Conflict       = "conflict"
	NotFound       = "not_found"
	NotAuthorised  = "not_authorised"
	TokenExpired   = "token_expired"
)

// Request headers read by the tracing middleware.
const (
	HeaderRequestSource = "X-Request-Source"
	HeaderRequestID     = "X-Request-ID"
)

// DefaultRequestSource is used when a caller does not identify itself.
const DefaultRequestSource = "web"

type contextKey string

const ContextTracingKey = contextKey("tracing")
