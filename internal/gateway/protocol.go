package gateway

const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
)

// Request is the client -> server control message.
type Request struct {
	Action  string   `json:"action"`
	Symbols []string `json:"symbols"`
}

// ErrorReply is sent back on the same connection for malformed messages.
// The connection stays open.
type ErrorReply struct {
	Error string `json:"error"`
}

const invalidFormat = "Invalid message format"
