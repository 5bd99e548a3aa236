package dto

// LoginRequest credenciales del cajero.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ClerkResponse datos públicos del cajero autenticado.
type ClerkResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// LoginResponse token JWT y cajero.
type LoginResponse struct {
	Token     string        `json:"token"`
	ExpiresIn int           `json:"expires_in"` // segundos
	Clerk     ClerkResponse `json:"clerk"`
}
