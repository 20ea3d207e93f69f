package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hugh/miwanzo/internal/database/models"
	"gorm.io/gorm"
)

type SectionRepository struct {
	db *gorm.DB
}

func NewSectionRepository(db *gorm.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

func (r *SectionRepository) WithTx(tx *gorm.DB) *SectionRepository {
	return &SectionRepository{db: tx}
}

func (r *SectionRepository) Create(ctx context.Context, section *models.Section) error {
	if err := r.db.WithContext(ctx).Create(section).Error; err != nil {
		return fmt.Errorf("create section: %w", translate(err))
	}
	return nil
}

func (r *SectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Section, error) {
	var section models.Section
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&section).Error; err != nil {
		return nil, fmt.Errorf("find section: %w", translate(err))
	}
	return &section, nil
}

func (r *SectionRepository) ListByWorkArea(ctx context.Context, workAreaID uuid.UUID) ([]models.Section, error) {
	sections := []models.Section{}
	if err := r.db.WithContext(ctx).Where("work_area_id = ?", workAreaID).Order(listOrder).Find(&sections).Error; err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

func (r *SectionRepository) Update(ctx context.Context, section *models.Section) error {
	result := r.db.WithContext(ctx).Model(&models.Section{}).Where("id = ?", section.ID).Updates(map[string]interface{}{
		"name": section.Name,
	})
	if result.Error != nil {
		return fmt.Errorf("update section: %w", translate(result.Error))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update section: %w", ErrNotFound)
	}
	return nil
}

func (r *SectionRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Section{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete section: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *SectionRepository) DeleteByWorkArea(ctx context.Context, workAreaID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("work_area_id = ?", workAreaID).Delete(&models.Section{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete sections of work area: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *SectionRepository) SetOrderIndex(ctx context.Context, id uuid.UUID, index int) error {
	return setOrderIndex(ctx, r.db, &models.Section{}, id, index)
}
