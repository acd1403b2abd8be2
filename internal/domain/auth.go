package domain

// TokenGrant is what the upstream auth collaborator returns on login.
// The access token is opaque to this application; it is stored in the
// auth-token cookie and replayed as a bearer header on upstream calls.
type TokenGrant struct {
	AccessToken string `json:"access_token"`
	Status      int    `json:"status"`
	ID          string `json:"id"`
}

// Identity is the authenticated user as resolved through the upstream
// "me" endpoint. Name is derived from the email, never stored.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse mirrors the stubbed registration contract: the minted
// token is returned in the body and no session cookie is set.
type RegisterResponse struct {
	Success bool      `json:"success"`
	User    *Identity `json:"user,omitempty"`
	Token   string    `json:"token,omitempty"`
	Message string    `json:"message,omitempty"`
}
