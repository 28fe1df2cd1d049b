package repository

import (
	"context"

	"carwash/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository interface {
	Get(ctx context.Context, key string) (*model.Setting, error)
	Upsert(ctx context.Context, s *model.Setting) error
}

type settingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) Get(ctx context.Context, key string) (*model.Setting, error) {
	var s model.Setting
	if err := GetDB(ctx, r.db).First(&s, "key = ?", key).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *settingRepository) Upsert(ctx context.Context, s *model.Setting) error {
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
	}).Create(s).Error
}
