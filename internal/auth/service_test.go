package auth_test

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/hugh/miwanzo/internal/auth"
	"github.com/hugh/miwanzo/internal/database"
	"github.com/hugh/miwanzo/internal/database/models"
	"github.com/hugh/miwanzo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupAuthService(t *testing.T) (*gorm.DB, *auth.Service) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := auth.NewService(db, testutil.CreateTestJWTService(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	return db, svc
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, auth.CheckPassword("correct horse", hash))
	assert.False(t, auth.CheckPassword("wrong horse", hash))
}

func TestService_RegisterAndLogin(t *testing.T) {
	_, svc := setupAuthService(t)
	ctx := testutil.TestContext(t)

	resp, err := svc.Register(ctx, auth.RegisterInput{
		Email:    "Amani@Example.com",
		Username: "amani",
		Password: "supersecret",
		FullName: "Amani K",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "amani@example.com", resp.User.Email)

	caller, err := svc.ResolveCaller(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, caller.UserID)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, auth.RegisterInput{Email: "amani@example.com", Username: "other", Password: "supersecret"})
		assert.ErrorIs(t, err, auth.ErrUserExists)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := svc.Register(ctx, auth.RegisterInput{Email: "new@example.com", Username: "amani", Password: "supersecret"})
		assert.ErrorIs(t, err, auth.ErrUsernameTaken)
	})

	t.Run("login", func(t *testing.T) {
		login, err := svc.Login(ctx, auth.LoginInput{Email: "amani@example.com", Password: "supersecret"})
		require.NoError(t, err)
		assert.Equal(t, resp.User.ID, login.User.ID)
		assert.NotEqual(t, resp.Token, login.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginInput{Email: "amani@example.com", Password: "nope-nope"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginInput{Email: "ghost@example.com", Password: "supersecret"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestService_LogoutRevokesSession(t *testing.T) {
	_, svc := setupAuthService(t)
	ctx := testutil.TestContext(t)

	resp, err := svc.Register(ctx, auth.RegisterInput{Email: "a@example.com", Username: "aaa", Password: "supersecret"})
	require.NoError(t, err)

	caller, err := svc.ResolveCaller(ctx, resp.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, caller.SessionID))
	require.NoError(t, svc.Logout(ctx, caller.SessionID), "logout is idempotent")

	_, err = svc.ResolveCaller(ctx, resp.Token)
	assert.ErrorIs(t, err, auth.ErrSessionRevoked)
}

func TestService_ResolveCallerExpiredSession(t *testing.T) {
	db, svc := setupAuthService(t)
	ctx := testutil.TestContext(t)

	resp, err := svc.Register(ctx, auth.RegisterInput{Email: "b@example.com", Username: "bbb", Password: "supersecret"})
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Session{}).Where("user_id = ?", resp.User.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	_, err = svc.ResolveCaller(ctx, resp.Token)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)

	_, err = svc.ResolveCaller(ctx, "garbage")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestService_ResolveCallerStoreFailure(t *testing.T) {
	db, svc := setupAuthService(t)
	ctx := testutil.TestContext(t)

	resp, err := svc.Register(ctx, auth.RegisterInput{Email: "c@example.com", Username: "ccc", Password: "supersecret"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = svc.ResolveCaller(ctx, resp.Token)
	require.Error(t, err)
	assert.NotErrorIs(t, err, auth.ErrSessionRevoked)
	assert.NotErrorIs(t, err, auth.ErrInvalidToken)
	assert.NotErrorIs(t, err, auth.ErrExpiredToken)
}

// openFileDB backs the service with a file database and two connections so
// a competing insert can commit while a registration transaction is open.
func openFileDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "miwanzo.db") + "?_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(2)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func TestService_RegisterRaceReportsCollidingColumn(t *testing.T) {
	tests := []struct {
		name      string
		rivalMail string
		rivalName string
		wantErr   error
	}{
		{"username taken", "rival@example.com", "kamau", auth.ErrUsernameTaken},
		{"email taken", "kamau@example.com", "rival", auth.ErrUserExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openFileDB(t)
			svc := auth.NewService(db, testutil.CreateTestJWTService(), slog.New(slog.NewTextHandler(io.Discard, nil)))
			ctx := testutil.TestContext(t)

			// The rival registration lands after the pre-insert checks
			// but before this insert.
			fired := false
			err := db.Callback().Create().Before("gorm:create").Register("test:rival_user", func(tx *gorm.DB) {
				if fired || tx.Statement.Table != "users" {
					return
				}
				fired = true
				rival := &models.User{Email: tt.rivalMail, Username: tt.rivalName}
				if err := db.WithContext(ctx).Create(rival).Error; err != nil {
					tx.AddError(err)
				}
			})
			require.NoError(t, err)

			_, err = svc.Register(ctx, auth.RegisterInput{Email: "kamau@example.com", Username: "kamau", Password: "supersecret"})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, fired)
		})
	}
}

func TestService_LoginWithGoogle(t *testing.T) {
	db, svc := setupAuthService(t)
	ctx := testutil.TestContext(t)

	t.Run("creates account with derived username", func(t *testing.T) {
		existing := testutil.CreateTestUser(t, db)
		require.NoError(t, db.Model(existing).Update("username", "wanjiru").Error)

		resp, err := svc.LoginWithGoogle(ctx, &auth.GoogleProfile{
			ID:            "g-1",
			Email:         "wanjiru@gmail.com",
			VerifiedEmail: true,
			Name:          "Wanjiru",
			Picture:       "https://example.com/a.png",
		})
		require.NoError(t, err)
		assert.Equal(t, "wanjiru1", resp.User.Username)
		assert.False(t, resp.User.HasPassword())
		assert.Equal(t, "https://example.com/a.png", resp.User.AvatarURL)

		// Second sign-in finds the same account by google id.
		again, err := svc.LoginWithGoogle(ctx, &auth.GoogleProfile{ID: "g-1", Email: "wanjiru@gmail.com"})
		require.NoError(t, err)
		assert.Equal(t, resp.User.ID, again.User.ID)

		_, err = svc.Login(ctx, auth.LoginInput{Email: "wanjiru@gmail.com", Password: "anything"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("links existing account by email", func(t *testing.T) {
		user := testutil.CreateTestUser(t, db)

		resp, err := svc.LoginWithGoogle(ctx, &auth.GoogleProfile{
			ID:            "g-2",
			Email:         user.Email,
			VerifiedEmail: true,
			Picture:       "https://example.com/b.png",
		})
		require.NoError(t, err)
		assert.Equal(t, user.ID, resp.User.ID)

		var linked models.User
		require.NoError(t, db.First(&linked, "id = ?", user.ID).Error)
		require.NotNil(t, linked.GoogleID)
		assert.Equal(t, "g-2", *linked.GoogleID)
		assert.True(t, linked.HasPassword())
	})

	t.Run("rejects profile without email", func(t *testing.T) {
		_, err := svc.LoginWithGoogle(ctx, &auth.GoogleProfile{ID: "g-3"})
		assert.ErrorIs(t, err, auth.ErrGoogleProfile)
	})

	t.Run("refuses to link an unverified email", func(t *testing.T) {
		user := testutil.CreateTestUser(t, db)

		_, err := svc.LoginWithGoogle(ctx, &auth.GoogleProfile{ID: "g-4", Email: user.Email})
		assert.ErrorIs(t, err, auth.ErrGoogleUnverified)

		var unchanged models.User
		require.NoError(t, db.First(&unchanged, "id = ?", user.ID).Error)
		assert.Nil(t, unchanged.GoogleID)

		var sessions int64
		require.NoError(t, db.Model(&models.Session{}).Where("user_id = ?", user.ID).Count(&sessions).Error)
		assert.Zero(t, sessions)
	})

	t.Run("refuses to create from an unverified email", func(t *testing.T) {
		_, err := svc.LoginWithGoogle(ctx, &auth.GoogleProfile{ID: "g-5", Email: "nobody@gmail.com"})
		assert.ErrorIs(t, err, auth.ErrGoogleUnverified)

		var users int64
		require.NoError(t, db.Model(&models.User{}).Where("email = ?", "nobody@gmail.com").Count(&users).Error)
		assert.Zero(t, users)
	})
}
