package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/pos-fel/internal/application/dto"
	"github.com/jhoicas/pos-fel/internal/domain"
	"github.com/jhoicas/pos-fel/pkg/jwt"
)

// RoleCajero único rol emitido por el login de caja.
const RoleCajero = "cajero"

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// ClerkConfig credenciales configuradas del cajero (hash bcrypt).
type ClerkConfig struct {
	Username     string
	PasswordHash string
	Store        string // dominio de la tienda; viaja como company_id en el token
}

// AuthUseCase login del cajero del punto de venta.
type AuthUseCase struct {
	clerk  ClerkConfig
	jwtCfg JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(clerk ClerkConfig, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{clerk: clerk, jwtCfg: jwtCfg}
}

// Login verifica usuario/password contra el hash configurado y genera el JWT.
func (uc *AuthUseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	if uc.clerk.PasswordHash == "" {
		return nil, domain.ErrUnauthorized // login deshabilitado
	}
	user := strings.TrimSpace(in.Username)
	if subtle.ConstantTimeCompare([]byte(user), []byte(uc.clerk.Username)) != 1 {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(uc.clerk.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user, uc.clerk.Store, RoleCajero, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:     token,
		ExpiresIn: uc.jwtCfg.ExpMinutes * 60,
		Clerk:     dto.ClerkResponse{Username: user, Role: RoleCajero},
	}, nil
}
