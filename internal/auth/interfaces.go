package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/hugh/miwanzo/internal/database/models"
)

// Authenticator defines the interface for user authentication operations.
type Authenticator interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResponse, error)
	Login(ctx context.Context, input LoginInput) (*AuthResponse, error)
	Logout(ctx context.Context, sessionID string) error
	ResolveCaller(ctx context.Context, token string) (*Caller, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	LoginWithGoogle(ctx context.Context, profile *GoogleProfile) (*AuthResponse, error)
}

// TokenService defines the interface for JWT token operations.
type TokenService interface {
	GenerateToken(userID uuid.UUID, email, sessionToken string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// GoogleProvider is the slice of the Google OAuth flow the handlers need.
type GoogleProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*GoogleProfile, error)
}

// Compile-time interface satisfaction checks
var (
	_ Authenticator  = (*Service)(nil)
	_ TokenService   = (*JWTService)(nil)
	_ GoogleProvider = (*GoogleOAuth)(nil)
)
