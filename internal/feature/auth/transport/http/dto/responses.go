package dto

// ErrorResp is the generic error envelope returned by the API.
type ErrorResp struct {
	Error string `json:"error"`
}

// MessageResp is a simple acknowledgement body.
type MessageResp struct {
	Message string `json:"message"`
}

// AuthResp is returned by register and login.
// The session token itself travels in the cookie, not in the body.
type AuthResp struct {
	User UserResp `json:"user"`
}
