package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hugh/miwanzo/internal/database/models"
	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) WithTx(tx *gorm.DB) *TaskRepository {
	return &TaskRepository{db: tx}
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", translate(err))
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, fmt.Errorf("find task: %w", translate(err))
	}
	return &task, nil
}

func (r *TaskRepository) ListBySection(ctx context.Context, sectionID uuid.UUID) ([]models.Task, error) {
	tasks := []models.Task{}
	if err := r.db.WithContext(ctx).Where("section_id = ?", sectionID).Order(listOrder).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Update writes every mutable column, including NULLs for cleared fields.
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	result := r.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", task.ID).Updates(map[string]interface{}{
		"title":        task.Title,
		"description":  task.Description,
		"status":       task.Status,
		"priority":     task.Priority,
		"due_date":     task.DueDate,
		"completed_at": task.CompletedAt,
	})
	if result.Error != nil {
		return fmt.Errorf("update task: %w", translate(result.Error))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update task: %w", ErrNotFound)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Task{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete task: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *TaskRepository) DeleteBySection(ctx context.Context, sectionID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("section_id = ?", sectionID).Delete(&models.Task{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete tasks of section: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteByWorkArea removes the tasks of every section under the work area.
func (r *TaskRepository) DeleteByWorkArea(ctx context.Context, workAreaID uuid.UUID) (int64, error) {
	sectionIDs := r.db.Model(&models.Section{}).Select("id").Where("work_area_id = ?", workAreaID)
	result := r.db.WithContext(ctx).Where("section_id IN (?)", sectionIDs).Delete(&models.Task{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete tasks of work area: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *TaskRepository) SetOrderIndex(ctx context.Context, id uuid.UUID, index int) error {
	return setOrderIndex(ctx, r.db, &models.Task{}, id, index)
}
