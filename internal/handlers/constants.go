package handlers

const (
	// AccessTokenHeader carries the diary capability token on panel requests
	AccessTokenHeader = "X-Access-Token"

	ErrMissingToken        = "Token ausente"
	ErrInvalidToken        = "Token inválido"
	ErrInvalidJSON         = "Dados inválidos"
	ErrUnauthorized        = "Unauthorized"
	ErrInvalidCSRF         = "Invalid CSRF token"
	ErrTooManyRequests     = "Too many requests"
	ErrStartingUp          = "Server is starting up"
	ErrInternalServerError = "Internal server error"

	maxBodyBytes = 1 << 20
)
