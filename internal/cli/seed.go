package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hugh/miwanzo/internal/auth"
	"github.com/hugh/miwanzo/internal/database"
	"github.com/hugh/miwanzo/internal/database/models"
	"github.com/hugh/miwanzo/internal/planner"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

type SeedOptions struct {
	Email    string
	Username string
	Password string
}

type SeedResult struct {
	User     *models.User
	WorkArea *models.WorkArea
	Section  *models.Section
	Task     *models.Task
}

func newSeedCommand() *cobra.Command {
	opts := SeedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a demo user with a starter work area",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env) error {
			if err := database.AutoMigrate(e.db); err != nil {
				return err
			}

			jwtService := auth.NewJWTService(e.cfg.JWT.Secret, e.cfg.JWT.Expiry())
			res, err := Seed(cmd.Context(), e.db, jwtService, e.logger, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "User:      %s (%s)\n", res.User.Email, res.User.ID)
			fmt.Fprintf(out, "Work area: %s (%s)\n", res.WorkArea.Name, res.WorkArea.ID)
			fmt.Fprintf(out, "Section:   %s (%s)\n", res.Section.Name, res.Section.ID)
			fmt.Fprintf(out, "Task:      %s (%s)\n", res.Task.Title, res.Task.ID)
			return nil
		}),
	}

	cmd.Flags().StringVar(&opts.Email, "email", "demo@miwanzo.local", "demo user email")
	cmd.Flags().StringVar(&opts.Username, "username", "demo", "demo user username")
	cmd.Flags().StringVar(&opts.Password, "password", "miwanzo-demo", "demo user password")
	return cmd
}

// Seed registers the demo user and gives it a Home work area holding a
// Todo section with one task. Everything is written in one transaction, and
// it fails if the user already exists.
func Seed(ctx context.Context, db *gorm.DB, jwtService *auth.JWTService, logger *slog.Logger, opts SeedOptions) (*SeedResult, error) {
	var res *SeedResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = seed(ctx, tx, jwtService, logger, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func seed(ctx context.Context, tx *gorm.DB, jwtService *auth.JWTService, logger *slog.Logger, opts SeedOptions) (*SeedResult, error) {
	authService := auth.NewService(tx, jwtService, logger)

	resp, err := authService.Register(ctx, auth.RegisterInput{
		Email:    opts.Email,
		Username: opts.Username,
		Password: opts.Password,
		FullName: "Demo User",
	})
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) || errors.Is(err, auth.ErrUsernameTaken) {
			return nil, fmt.Errorf("demo user %s: %w", opts.Email, err)
		}
		return nil, fmt.Errorf("registering demo user: %w", err)
	}
	owner := resp.User.ID

	services := planner.NewServices(tx, logger)

	color := "#4f46e5"
	wa, err := services.WorkAreas.Create(ctx, owner, planner.WorkAreaInput{Name: "Home", Color: &color})
	if err != nil {
		return nil, err
	}
	section, err := services.Sections.Create(ctx, owner, planner.SectionInput{Name: "Todo", WorkAreaID: wa.ID})
	if err != nil {
		return nil, err
	}
	task, err := services.Tasks.Create(ctx, owner, planner.TaskInput{Title: "Buy milk", SectionID: section.ID})
	if err != nil {
		return nil, err
	}

	return &SeedResult{User: resp.User, WorkArea: wa, Section: section, Task: task}, nil
}
