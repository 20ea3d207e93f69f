package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/miwanzo/internal/database/models"
	"github.com/hugh/miwanzo/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionRevoked     = errors.New("session is no longer valid")
	ErrGoogleProfile      = errors.New("google profile is missing an email")
	ErrGoogleUnverified   = errors.New("google email address is not verified")
)

type Service struct {
	db       *gorm.DB
	users    *repository.UserRepository
	sessions *repository.SessionRepository
	jwt      *JWTService
	logger   *slog.Logger
}

func NewService(db *gorm.DB, jwt *JWTService, logger *slog.Logger) *Service {
	return &Service{
		db:       db,
		users:    repository.NewUserRepository(db),
		sessions: repository.NewSessionRepository(db),
		jwt:      jwt,
		logger:   logger,
	}
}

type RegisterInput struct {
	Email    string
	Username string
	Password string
	FullName string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Caller is the authenticated principal behind a request.
type Caller struct {
	UserID    uuid.UUID
	Email     string
	SessionID string
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	email := normalizeEmail(input.Email)

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}
	if exists, err = s.users.UsernameExists(ctx, input.Username); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrUsernameTaken
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := models.User{
		Email:        email,
		Username:     input.Username,
		PasswordHash: &hash,
		FullName:     strings.TrimSpace(input.FullName),
	}

	var token string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).Create(ctx, &user); err != nil {
			return err
		}
		var err error
		token, err = s.issueSession(ctx, tx, &user)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, s.duplicateUserError(ctx, email, input.Username)
		}
		return nil, err
	}

	s.logger.Info("registered user", "user_id", user.ID)
	return &AuthResponse{Token: token, User: &user}, nil
}

// duplicateUserError works out which unique column a concurrent
// registration took. Email wins when both collided.
func (s *Service) duplicateUserError(ctx context.Context, email, username string) error {
	if exists, err := s.users.EmailExists(ctx, email); err == nil && exists {
		return ErrUserExists
	}
	if exists, err := s.users.UsernameExists(ctx, username); err == nil && exists {
		return ErrUsernameTaken
	}
	return ErrUserExists
}

func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// Accounts created through Google have no password to check.
	if !user.HasPassword() || !CheckPassword(input.Password, *user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueSession(ctx, s.db, user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: user}, nil
}

// Logout revokes the session. Revoking an unknown session succeeds.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.DeleteByToken(ctx, sessionID)
}

// ResolveCaller maps a bearer token to its user. The token must verify and
// its session row must still exist and be unexpired. Rejections are one of
// ErrInvalidToken, ErrExpiredToken or ErrSessionRevoked; anything else is a
// storage failure.
func (s *Service) ResolveCaller(ctx context.Context, token string) (*Caller, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.FindByToken(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionRevoked
		}
		return nil, fmt.Errorf("looking up session: %w", err)
	}
	if session.UserID != claims.UserID {
		return nil, ErrInvalidToken
	}
	if session.Expired(time.Now()) {
		return nil, ErrExpiredToken
	}

	return &Caller{UserID: claims.UserID, Email: claims.Email, SessionID: claims.ID}, nil
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// LoginWithGoogle signs in the account matching the Google profile. It
// matches on google_id first, then links an existing account with the same
// email, and otherwise creates a password-less account. Linking and creating
// both require Google to have verified the email.
func (s *Service) LoginWithGoogle(ctx context.Context, profile *GoogleProfile) (*AuthResponse, error) {
	if profile.Email == "" || profile.ID == "" {
		return nil, ErrGoogleProfile
	}

	user, err := s.users.FindByGoogleID(ctx, profile.ID)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		user, err = s.linkOrCreateGoogleUser(ctx, profile)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	token, err := s.issueSession(ctx, s.db, user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Token: token, User: user}, nil
}

func (s *Service) linkOrCreateGoogleUser(ctx context.Context, profile *GoogleProfile) (*models.User, error) {
	if !profile.VerifiedEmail {
		return nil, ErrGoogleUnverified
	}
	email := normalizeEmail(profile.Email)

	user, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		if err := s.users.LinkGoogle(ctx, user, profile.ID, profile.Picture); err != nil {
			return nil, err
		}
		s.logger.Info("linked google account", "user_id", user.ID)
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	username, err := s.uniqueUsername(ctx, email)
	if err != nil {
		return nil, err
	}

	googleID := profile.ID
	user = &models.User{
		Email:     email,
		Username:  username,
		GoogleID:  &googleID,
		FullName:  profile.Name,
		AvatarURL: profile.Picture,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("registered user via google", "user_id", user.ID)
	return user, nil
}

// uniqueUsername derives a username from the email local part, appending
// 1, 2, ... until it is free.
func (s *Service) uniqueUsername(ctx context.Context, email string) (string, error) {
	base := usernameBase(email)
	candidate := base
	for i := 1; ; i++ {
		taken, err := s.users.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		suffix := strconv.Itoa(i)
		candidate = truncate(base, 30-len(suffix)) + suffix
	}
}

func (s *Service) issueSession(ctx context.Context, db *gorm.DB, user *models.User) (string, error) {
	session := &models.Session{
		UserID:       user.ID,
		SessionToken: uuid.NewString(),
		ExpiresAt:    time.Now().Add(s.jwt.Expiry()),
	}
	if err := s.sessions.WithTx(db).Create(ctx, session); err != nil {
		return "", err
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email, session.SessionToken)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func usernameBase(email string) string {
	local, _, _ := strings.Cut(email, "@")

	var b strings.Builder
	for _, r := range local {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
			b.WriteRune(r)
		}
	}

	name := truncate(b.String(), 30)
	for len(name) < 3 {
		name += "_"
	}
	return name
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
