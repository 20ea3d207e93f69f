package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hugh/miwanzo/internal/database/models"
	"gorm.io/gorm"
)

type WorkAreaRepository struct {
	db *gorm.DB
}

func NewWorkAreaRepository(db *gorm.DB) *WorkAreaRepository {
	return &WorkAreaRepository{db: db}
}

func (r *WorkAreaRepository) WithTx(tx *gorm.DB) *WorkAreaRepository {
	return &WorkAreaRepository{db: tx}
}

func (r *WorkAreaRepository) Create(ctx context.Context, wa *models.WorkArea) error {
	if err := r.db.WithContext(ctx).Create(wa).Error; err != nil {
		return fmt.Errorf("create work area: %w", translate(err))
	}
	return nil
}

func (r *WorkAreaRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.WorkArea, error) {
	var wa models.WorkArea
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&wa).Error; err != nil {
		return nil, fmt.Errorf("find work area: %w", translate(err))
	}
	return &wa, nil
}

func (r *WorkAreaRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.WorkArea, error) {
	workAreas := []models.WorkArea{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order(listOrder).Find(&workAreas).Error; err != nil {
		return nil, fmt.Errorf("list work areas: %w", err)
	}
	return workAreas, nil
}

// Update writes the mutable columns of wa. Owner and parent never change.
func (r *WorkAreaRepository) Update(ctx context.Context, wa *models.WorkArea) error {
	result := r.db.WithContext(ctx).Model(&models.WorkArea{}).Where("id = ?", wa.ID).Updates(map[string]interface{}{
		"name":  wa.Name,
		"color": wa.Color,
	})
	if result.Error != nil {
		return fmt.Errorf("update work area: %w", translate(result.Error))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update work area: %w", ErrNotFound)
	}
	return nil
}

func (r *WorkAreaRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.WorkArea{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete work area: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *WorkAreaRepository) SetOrderIndex(ctx context.Context, id uuid.UUID, index int) error {
	return setOrderIndex(ctx, r.db, &models.WorkArea{}, id, index)
}

func setOrderIndex(ctx context.Context, db *gorm.DB, model interface{}, id uuid.UUID, index int) error {
	result := db.WithContext(ctx).Model(model).Where("id = ?", id).Update("order_index", index)
	if result.Error != nil {
		return fmt.Errorf("set order index: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("set order index: %w", ErrNotFound)
	}
	return nil
}
