package api

// LoginResponse is the envelope for both login and registration; a session
// token is present only on success.
type LoginResponse struct {
	Success  bool   `json:"success"`
	Token    string `json:"token,omitempty"`
	Error    string `json:"error,omitempty"`
	Username string `json:"username,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
