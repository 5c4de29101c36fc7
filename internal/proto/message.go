package proto

// Every request carries an action field; every response carries a status
// field. Requests and responses share one flat shape and there is no
// message-id correlation: a connection handles exactly one outstanding
// request at a time.

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Envelope is the first-pass view of a request, read before the
// action-specific payload is decoded.
type Envelope struct {
	Action string `json:"action"`
}

// ErrorResponse is the uniform failure shape for every action.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func NewError(msg string) ErrorResponse {
	return ErrorResponse{Status: StatusError, Message: msg}
}
