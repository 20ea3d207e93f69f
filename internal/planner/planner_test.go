package planner_test

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/miwanzo/internal/database/models"
	"github.com/hugh/miwanzo/internal/planner"
	"github.com/hugh/miwanzo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupServices(t *testing.T) (*gorm.DB, *planner.Services) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return db, planner.NewServices(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func strPtr(s string) *string { return &s }

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestWorkAreaService_Create(t *testing.T) {
	db, svc := setupServices(t)
	ctx := testutil.TestContext(t)
	user := testutil.CreateTestUser(t, db)

	tests := []struct {
		name    string
		input   planner.WorkAreaInput
		wantErr error
	}{
		{"valid", planner.WorkAreaInput{Name: "Home"}, nil},
		{"valid with color", planner.WorkAreaInput{Name: "Work", Color: strPtr("#1a2B3c")}, nil},
		{"short color", planner.WorkAreaInput{Name: "Gym", Color: strPtr("#abc")}, nil},
		{"blank name", planner.WorkAreaInput{Name: "   "}, planner.ErrValidation},
		{"bad color", planner.WorkAreaInput{Name: "Home", Color: strPtr("red")}, planner.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wa, err := svc.WorkAreas.Create(ctx, user.ID, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, user.ID, wa.UserID)
			assert.Equal(t, 0, wa.OrderIndex)
			assert.False(t, wa.IsDefault)
			assert.NotEqual(t, uuid.Nil, wa.ID)
		})
	}
}

func TestWorkAreaService_ListByOwner(t *testing.T) {
	db, svc := setupServices(t)
	ctx := testutil.TestContext(t)
	alice := testutil.CreateTestUser(t, db)
	bob := testutil.CreateTestUser(t, db)

	first, err := svc.WorkAreas.Create(ctx, alice.ID, planner.WorkAreaInput{Name: "First"})
	require.NoError(t, err)
	second, err := svc.WorkAreas.Create(ctx, alice.ID, planner.WorkAreaInput{Name: "Second"})
	require.NoError(t, err)
	_, err = svc.WorkAreas.Create(ctx, bob.ID, planner.WorkAreaInput{Name: "Bob's"})
	require.NoError(t, err)

	list, err := svc.WorkAreas.ListByOwner(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
	for _, wa := range list {
		assert.Equal(t, alice.ID, wa.UserID)
	}

	empty, err := svc.WorkAreas.ListByOwner(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestWorkAreaService_GetAuthorization(t *testing.T) {
	db, svc := setupServices(t)
	ctx := testutil.TestContext(t)
	owner := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	wa := testutil.CreateTestWorkArea(t, db, owner.ID, "Home")

	got, err := svc.WorkAreas.Get(ctx, wa.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Home", got.Name)

	_, err = svc.WorkAreas.Get(ctx, wa.ID, other.ID)
	assert.ErrorIs(t, err, planner.ErrForbidden)
	assert.NotErrorIs(t, err, planner.ErrNotFound)

	_, err = svc.WorkAreas.Get(ctx, uuid.New(), owner.ID)
	assert.ErrorIs(t, err, planner.ErrNotFound)
}

func TestWorkAreaService_Update(t *testing.T) {
	db, svc := setupServices(t)
	ctx := testutil.TestContext(t)
	owner := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	wa := testutil.CreateTestWorkArea(t, db, owner.ID, "Home")

	updated, err := svc.WorkAreas.Update(ctx, wa.ID, owner.ID, planner.WorkAreaInput{Name: "  House ", Color: strPtr("#fff")})
	require.NoError(t, err)
	assert.Equal(t, "House", updated.Name)
	require.NotNil(t, updated.Color)
	assert.Equal(t, "#fff", *updated.Color)

	// Omitted color leaves it alone.
	updated, err = svc.WorkAreas.Update(ctx, wa.ID, owner.ID, planner.WorkAreaInput{Name: "Flat"})
	require.NoError(t, err)
	require.NotNil(t, updated.Color)
	assert.Equal(t, "#fff", *updated.Color)

	_, err = svc.WorkAreas.Update(ctx, wa.ID, owner.ID, planner.WorkAreaInput{Name: ""})
	assert.ErrorIs(t, err, planner.ErrValidation)

	_, err = svc.WorkAreas.Update(ctx, wa.ID, other.ID, planner.WorkAreaInput{Name: "Mine now"})
	assert.ErrorIs(t, err, planner.ErrForbidden)
}

func TestWorkAreaService_DeleteCascades(t *testing.T) {
	db, svc := setupServices(t)
	ctx := testutil.TestContext(t)
	owner := testutil.CreateTestUser(t, db)

	wa := testutil.CreateTestWorkArea(t, db, owner.ID, "Home")
	s1 := testutil.CreateTestSection(t, db, wa, "Todo")
	s2 := testutil.CreateTestSection(t, db, wa, "Done")
	testutil.CreateTestTask(t, db, s1, "Buy milk")
	testutil.CreateTestTask(t, db, s1, "Call mum")
	testutil.CreateTestTask(t, db, s2, "Water plants")

	keep := testutil.CreateTestWorkArea(t, db, owner.ID, "Work")
	keepSection := testutil.CreateTestSection(t, db, keep, "Inbox")
	testutil.CreateTestTask(t, db, keepSection, "Report")

	require.NoError(t, svc.WorkAreas.Delete(ctx, wa.ID, owner.ID))

	_, err := svc.WorkAreas.Get(ctx, wa.ID, owner.ID)
	assert.ErrorIs(t, err, planner.ErrNotFound)
	_, err = svc.Sections.Get(ctx, s1.ID, owner.ID)
	assert.ErrorIs(t, err, planner.ErrNotFound)

	assert.Equal(t, int64(1), count(t, db, &models.Section{}))
	assert.Equal(t, int64(1), count(t, db, &models.Task{}))

	// Deleting again is NotFound, never a silent success.
	err = svc.WorkAreas.Delete(ctx, wa.ID, owner.ID)
	assert.ErrorIs(t, err, planner.ErrNotFound)
}

func TestWorkAreaService_DeleteForeign(t *testing.T) {
	db, svc := setupServices(t)
	ctx := testutil.TestContext(t)
	owner := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	wa := testutil.CreateTestWorkArea(t, db, owner.ID, "Home")

	err := svc.WorkAreas.Delete(ctx, wa.ID, other.ID)
	assert.ErrorIs(t, err, planner.ErrForbidden)
	assert.Equal(t, int64(1), count(t, db, &models.WorkArea{}))
}

func TestWorkAreaService_DeleteRollsBack(t *testing.T) {
	db, svc := setupServices(t)
	ctx := testutil.TestContext(t)
	owner := testutil.CreateTestUser(t, db)

	wa := testutil.CreateTestWorkArea(t, db, owner.ID, "Home")
	section := testutil.CreateTestSection(t, db, wa, "Todo")
	testutil.CreateTestTask(t, db, section, "Buy milk")

	err := db.Callback().Delete().Before("gorm:delete").Register("test:fail_sections", func(tx *gorm.DB) {
		if tx.Statement.Table == "sections" {
			tx.AddError(errors.New("injected failure"))
		}
	})
	require.NoError(t, err)

	err = svc.WorkAreas.Delete(ctx, wa.ID, owner.ID)
	assert.ErrorIs(t, err, planner.ErrPersistence)

	assert.Equal(t, int64(1), count(t, db, &models.WorkArea{}))
	assert.Equal(t, int64(1), count(t, db, &models.Section{}))
	assert.Equal(t, int64(1), count(t, db, &models.Task{}), "task delete must roll back")
}

func TestWorkAreaService_Reorder(t *testing.T) {
	db, svc := setupServices(t)
	ctx := testutil.TestContext(t)
	owner := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	a := testutil.CreateTestWorkArea(t, db, owner.ID, "A")
	b := testutil.CreateTestWorkArea(t, db, owner.ID, "B")
	c := testutil.CreateTestWorkArea(t, db, owner.ID, "C")
	foreign := testutil.CreateTestWorkArea(t, db, other.ID, "X")

	require.NoError(t, svc.WorkAreas.Reorder(ctx, owner.ID, []uuid.UUID{c.ID, a.ID, b.ID}))

	list, err := svc.WorkAreas.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []uuid.UUID{c.ID, a.ID, b.ID}, []uuid.UUID{list[0].ID, list[1].ID, list[2].ID})

	err = svc.WorkAreas.Reorder(ctx, owner.ID, []uuid.UUID{a.ID, foreign.ID})
	assert.ErrorIs(t, err, planner.ErrForbidden)

	err = svc.WorkAreas.Reorder(ctx, owner.ID, []uuid.UUID{a.ID, a.ID})
	assert.ErrorIs(t, err, planner.ErrValidation)

	err = svc.WorkAreas.Reorder(ctx, owner.ID, nil)
	assert.ErrorIs(t, err, planner.ErrValidation)

	// A rejected reorder writes nothing.
	list, err = svc.WorkAreas.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, list[0].ID)
}

func TestSectionService_Create(t *testing.T) {
	db, svc := setupServices(t)
	ctx := testutil.TestContext(t)
	owner := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	wa := testutil.CreateTestWorkArea(t, db, owner.ID, "Home")

	t.Run("owner copy comes from work area", func(t *testing.T) {
		section, err := svc.Sections.Create(ctx, owner.ID, planner.SectionInput{Name: "Todo", WorkAreaID: wa.ID})
		require.NoError(t, err)
		assert.Equal(t, wa.UserID, section.UserID)
		assert.Equal(t, wa.ID, section.WorkAreaID)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := svc.Sections.Create(ctx, owner.ID, planner.SectionInput{WorkAreaID: wa.ID})
		assert.ErrorIs(t, err, planner.ErrValidation)
	})

	t.Run("missing work area id", func(t *testing.T) {
		_, err := svc.Sections.Create(ctx, owner.ID, planner.SectionInput{Name: "Todo"})
		assert.ErrorIs(t, err, planner.ErrValidation)
	})

	t.Run("unknown work area", func(t *testing.T) {
		_, err := svc.Sections.Create(ctx, owner.ID, planner.SectionInput{Name: "Todo", WorkAreaID: uuid.New()})
		assert.ErrorIs(t, err, planner.ErrNotFound)
	})

	t.Run("foreign work area", func(t *testing.T) {
		_, err := svc.Sections.Create(ctx, other.ID, planner.SectionInput{Name: "Todo", WorkAreaID: wa.ID})
		assert.ErrorIs(t, err, planner.ErrForbidden)
	})
}

func TestSectionService_ListAndDelete(t *testing.T) {
	db, svc := setupServices(t)
	ctx := testutil.TestContext(t)
	owner := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	wa := testutil.CreateTestWorkArea(t, db, owner.ID, "Home")

	todo := testutil.CreateTestSection(t, db, wa, "Todo")
	done := testutil.CreateTestSection(t, db, wa, "Done")
	testutil.CreateTestTask(t, db, todo, "Buy milk")
	testutil.CreateTestTask(t, db, done, "Sweep")

	list, err := svc.Sections.ListByWorkArea(ctx, wa.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, todo.ID, list[0].ID)
	assert.Equal(t, done.ID, list[1].ID)

	_, err = svc.Sections.ListByWorkArea(ctx, wa.ID, other.ID)
	assert.ErrorIs(t, err, planner.ErrForbidden)

	_, err = svc.Sections.ListByWorkArea(ctx, uuid.New(), owner.ID)
	assert.ErrorIs(t, err, planner.ErrNotFound)

	assert.ErrorIs(t, svc.Sections.Delete(ctx, todo.ID, other.ID), planner.ErrForbidden)
	require.NoError(t, svc.Sections.Delete(ctx, todo.ID, owner.ID))
	assert.ErrorIs(t, svc.Sections.Delete(ctx, todo.ID, owner.ID), planner.ErrNotFound)

	assert.Equal(t, int64(1), count(t, db, &models.Task{}))

	updated, err := svc.Sections.Update(ctx, done.ID, owner.ID, " Finished ")
	require.NoError(t, err)
	assert.Equal(t, "Finished", updated.Name)
}

func TestSectionService_Reorder(t *testing.T) {
	db, svc := setupServices(t)
	ctx := testutil.TestContext(t)
	owner := testutil.CreateTestUser(t, db)
	home := testutil.CreateTestWorkArea(t, db, owner.ID, "Home")
	work := testutil.CreateTestWorkArea(t, db, owner.ID, "Work")

	a := testutil.CreateTestSection(t, db, home, "A")
	b := testutil.CreateTestSection(t, db, home, "B")
	elsewhere := testutil.CreateTestSection(t, db, work, "C")

	require.NoError(t, svc.Sections.Reorder(ctx, owner.ID, home.ID, []uuid.UUID{b.ID, a.ID}))

	list, err := svc.Sections.ListByWorkArea(ctx, home.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, 0, list[0].OrderIndex)
	assert.Equal(t, 1, list[1].OrderIndex)

	err = svc.Sections.Reorder(ctx, owner.ID, home.ID, []uuid.UUID{a.ID, elsewhere.ID})
	assert.ErrorIs(t, err, planner.ErrValidation)
}

func TestGuard_OwnerMismatchLogsAndParentWins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	var logs bytes.Buffer
	svc := planner.NewServices(db, slog.New(slog.NewTextHandler(&logs, nil)))
	ctx := testutil.TestContext(t)

	owner := testutil.CreateTestUser(t, db)
	intruder := testutil.CreateTestUser(t, db)
	wa := testutil.CreateTestWorkArea(t, db, owner.ID, "Home")

	// Corrupt the denormalized copy to point at someone else.
	section := &models.Section{Name: "Todo", WorkAreaID: wa.ID, UserID: intruder.ID}
	require.NoError(t, db.Create(section).Error)

	_, _, err := svc.Guard.Section(ctx, section.ID, intruder.ID)
	assert.ErrorIs(t, err, planner.ErrForbidden)

	got, _, err := svc.Guard.Section(ctx, section.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, section.ID, got.ID)
	assert.Contains(t, logs.String(), "section owner does not match work area owner")
}

func TestTaskService_Create(t *testing.T) {
	db, svc := setupServices(t)
	ctx := testutil.TestContext(t)
	owner := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	wa := testutil.CreateTestWorkArea(t, db, owner.ID, "Home")
	section := testutil.CreateTestSection(t, db, wa, "Todo")

	t.Run("defaults", func(t *testing.T) {
		task, err := svc.Tasks.Create(ctx, owner.ID, planner.TaskInput{Title: "Buy milk", SectionID: section.ID})
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusPending, task.Status)
		assert.Equal(t, models.TaskPriorityMedium, task.Priority)
		assert.Nil(t, task.CompletedAt)
		assert.Equal(t, wa.UserID, task.UserID)
	})

	t.Run("completed on create stamps completed_at", func(t *testing.T) {
		task, err := svc.Tasks.Create(ctx, owner.ID, planner.TaskInput{
			Title:     "Already done",
			SectionID: section.ID,
			Status:    models.TaskStatusCompleted,
			Priority:  models.TaskPriorityHigh,
		})
		require.NoError(t, err)
		assert.NotNil(t, task.CompletedAt)
	})

	tests := []struct {
		name    string
		caller  uuid.UUID
		input   planner.TaskInput
		wantErr error
	}{
		{"missing title", owner.ID, planner.TaskInput{SectionID: section.ID}, planner.ErrValidation},
		{"missing section", owner.ID, planner.TaskInput{Title: "x"}, planner.ErrValidation},
		{"bad status", owner.ID, planner.TaskInput{Title: "x", SectionID: section.ID, Status: "DONE"}, planner.ErrValidation},
		{"bad priority", owner.ID, planner.TaskInput{Title: "x", SectionID: section.ID, Priority: "URGENT"}, planner.ErrValidation},
		{"unknown section", owner.ID, planner.TaskInput{Title: "x", SectionID: uuid.New()}, planner.ErrNotFound},
		{"foreign section", other.ID, planner.TaskInput{Title: "x", SectionID: section.ID}, planner.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Tasks.Create(ctx, tt.caller, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTaskService_StatusRoundTrip(t *testing.T) {
	db, svc := setupServices(t)
	ctx := testutil.TestContext(t)
	owner := testutil.CreateTestUser(t, db)
	wa := testutil.CreateTestWorkArea(t, db, owner.ID, "Home")
	section := testutil.CreateTestSection(t, db, wa, "Todo")
	task := testutil.CreateTestTask(t, db, section, "Buy milk")

	completed := models.TaskStatusCompleted
	pending := models.TaskStatusPending

	got, err := svc.Tasks.Update(ctx, task.ID, owner.ID, planner.TaskPatch{Status: &completed})
	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)
	firstCompletion := *got.CompletedAt

	// Completing again keeps the original completion time.
	got, err = svc.Tasks.Update(ctx, task.ID, owner.ID, planner.TaskPatch{Status: &completed})
	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, firstCompletion.Equal(*got.CompletedAt))

	got, err = svc.Tasks.Update(ctx, task.ID, owner.ID, planner.TaskPatch{Status: &pending})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusPending, got.Status)
	assert.Nil(t, got.CompletedAt)
}

func TestTaskService_UpdateFields(t *testing.T) {
	db, svc := setupServices(t)
	ctx := testutil.TestContext(t)
	owner := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	wa := testutil.CreateTestWorkArea(t, db, owner.ID, "Home")
	section := testutil.CreateTestSection(t, db, wa, "Todo")
	task := testutil.CreateTestTask(t, db, section, "Buy milk")

	t.Run("legacy completed flag", func(t *testing.T) {
		yes := true
		got, err := svc.Tasks.Update(ctx, task.ID, owner.ID, planner.TaskPatch{Completed: &yes})
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusCompleted, got.Status)
		assert.NotNil(t, got.CompletedAt)
	})

	t.Run("status wins over completed", func(t *testing.T) {
		yes := true
		pending := models.TaskStatusPending
		got, err := svc.Tasks.Update(ctx, task.ID, owner.ID, planner.TaskPatch{Status: &pending, Completed: &yes})
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusPending, got.Status)
		assert.Nil(t, got.CompletedAt)
	})

	t.Run("set and clear nullable fields", func(t *testing.T) {
		due := time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC)
		high := models.TaskPriorityHigh
		got, err := svc.Tasks.Update(ctx, task.ID, owner.ID, planner.TaskPatch{
			Title:       strPtr("Buy oat milk"),
			Description: planner.Optional[string]{Set: true, Value: strPtr("2 litres")},
			Priority:    &high,
			DueDate:     planner.Optional[time.Time]{Set: true, Value: &due},
		})
		require.NoError(t, err)
		assert.Equal(t, "Buy oat milk", got.Title)
		require.NotNil(t, got.Description)
		assert.Equal(t, "2 litres", *got.Description)
		assert.Equal(t, models.TaskPriorityHigh, got.Priority)
		require.NotNil(t, got.DueDate)
		assert.True(t, due.Equal(*got.DueDate))

		got, err = svc.Tasks.Update(ctx, task.ID, owner.ID, planner.TaskPatch{
			Description: planner.Optional[string]{Set: true},
			DueDate:     planner.Optional[time.Time]{Set: true},
		})
		require.NoError(t, err)
		assert.Nil(t, got.Description)
		assert.Nil(t, got.DueDate)
		assert.Equal(t, "Buy oat milk", got.Title)
	})

	t.Run("invalid values", func(t *testing.T) {
		bad := models.TaskStatus("DONE")
		_, err := svc.Tasks.Update(ctx, task.ID, owner.ID, planner.TaskPatch{Status: &bad})
		assert.ErrorIs(t, err, planner.ErrValidation)

		_, err = svc.Tasks.Update(ctx, task.ID, owner.ID, planner.TaskPatch{Title: strPtr(" ")})
		assert.ErrorIs(t, err, planner.ErrValidation)
	})

	t.Run("foreign caller", func(t *testing.T) {
		_, err := svc.Tasks.Update(ctx, task.ID, other.ID, planner.TaskPatch{Title: strPtr("mine")})
		assert.ErrorIs(t, err, planner.ErrForbidden)
	})
}

func TestTaskService_ListDeleteReorder(t *testing.T) {
	db, svc := setupServices(t)
	ctx := testutil.TestContext(t)
	owner := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	wa := testutil.CreateTestWorkArea(t, db, owner.ID, "Home")
	section := testutil.CreateTestSection(t, db, wa, "Todo")
	otherSection := testutil.CreateTestSection(t, db, wa, "Later")

	first := testutil.CreateTestTask(t, db, section, "First")
	second := testutil.CreateTestTask(t, db, section, "Second")
	stray := testutil.CreateTestTask(t, db, otherSection, "Stray")

	list, err := svc.Tasks.ListBySection(ctx, section.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	_, err = svc.Tasks.ListBySection(ctx, section.ID, other.ID)
	assert.ErrorIs(t, err, planner.ErrForbidden)

	require.NoError(t, svc.Tasks.Reorder(ctx, owner.ID, section.ID, []uuid.UUID{second.ID, first.ID}))
	list, err = svc.Tasks.ListBySection(ctx, section.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, list[0].ID)

	err = svc.Tasks.Reorder(ctx, owner.ID, section.ID, []uuid.UUID{first.ID, stray.ID})
	assert.ErrorIs(t, err, planner.ErrValidation)

	assert.ErrorIs(t, svc.Tasks.Delete(ctx, first.ID, other.ID), planner.ErrForbidden)
	require.NoError(t, svc.Tasks.Delete(ctx, first.ID, owner.ID))
	assert.ErrorIs(t, svc.Tasks.Delete(ctx, first.ID, owner.ID), planner.ErrNotFound)

	_, err = svc.Tasks.Get(ctx, first.ID, owner.ID)
	assert.ErrorIs(t, err, planner.ErrNotFound)
}

func TestTaskService_ReorderRollsBack(t *testing.T) {
	db, svc := setupServices(t)
	ctx := testutil.TestContext(t)
	owner := testutil.CreateTestUser(t, db)
	section := testutil.CreateTestSection(t, db, testutil.CreateTestWorkArea(t, db, owner.ID, "Home"), "Todo")

	a := testutil.CreateTestTask(t, db, section, "A")
	b := testutil.CreateTestTask(t, db, section, "B")
	c := testutil.CreateTestTask(t, db, section, "C")
	require.NoError(t, svc.Tasks.Reorder(ctx, owner.ID, section.ID, []uuid.UUID{a.ID, b.ID, c.ID}))

	updates := 0
	err := db.Callback().Update().Before("gorm:update").Register("test:fail_second_task_update", func(tx *gorm.DB) {
		if tx.Statement.Table != "tasks" {
			return
		}
		updates++
		if updates == 2 {
			tx.AddError(errors.New("injected failure"))
		}
	})
	require.NoError(t, err)

	err = svc.Tasks.Reorder(ctx, owner.ID, section.ID, []uuid.UUID{c.ID, b.ID, a.ID})
	assert.ErrorIs(t, err, planner.ErrPersistence)
	assert.Equal(t, 2, updates)

	want := map[uuid.UUID]int{a.ID: 0, b.ID: 1, c.ID: 2}
	for id, index := range want {
		var task models.Task
		require.NoError(t, db.First(&task, "id = ?", id).Error)
		assert.Equal(t, index, task.OrderIndex, "task %s keeps its position", task.Title)
	}
}

func TestSectionService_DeleteRollsBack(t *testing.T) {
	db, svc := setupServices(t)
	ctx := testutil.TestContext(t)
	owner := testutil.CreateTestUser(t, db)
	section := testutil.CreateTestSection(t, db, testutil.CreateTestWorkArea(t, db, owner.ID, "Home"), "Todo")
	testutil.CreateTestTask(t, db, section, "Buy milk")
	testutil.CreateTestTask(t, db, section, "Walk dog")

	err := db.Callback().Delete().Before("gorm:delete").Register("test:fail_sections", func(tx *gorm.DB) {
		if tx.Statement.Table == "sections" {
			tx.AddError(errors.New("injected failure"))
		}
	})
	require.NoError(t, err)

	err = svc.Sections.Delete(ctx, section.ID, owner.ID)
	assert.ErrorIs(t, err, planner.ErrPersistence)

	assert.Equal(t, int64(1), count(t, db, &models.Section{}))
	assert.Equal(t, int64(2), count(t, db, &models.Task{}), "task delete must roll back")
}

func TestError_Message(t *testing.T) {
	_, svc := setupServices(t)
	ctx := testutil.TestContext(t)

	_, err := svc.WorkAreas.Get(ctx, uuid.New(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, "work area not found", planner.Message(err))
	assert.Equal(t, "", planner.Message(errors.New("plain")))
}
