package user

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token attached to every
// subsequent request.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
