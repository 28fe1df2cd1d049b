package repository

import (
	"context"

	"carwash/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TrainingRepository interface {
	Create(ctx context.Context, t *model.Training) error
	Update(ctx context.Context, t *model.Training) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Training, error)
	List(ctx context.Context, page, limit int) ([]model.Training, int64, error)
	ReplaceParticipants(ctx context.Context, t *model.Training, employees []model.Employee) error
}

type trainingRepository struct {
	db *gorm.DB
}

func NewTrainingRepository(db *gorm.DB) TrainingRepository {
	return &trainingRepository{db: db}
}

func (r *trainingRepository) Create(ctx context.Context, t *model.Training) error {
	return GetDB(ctx, r.db).Omit("Participants.*").Create(t).Error
}

func (r *trainingRepository) Update(ctx context.Context, t *model.Training) error {
	return GetDB(ctx, r.db).Omit("Participants").Save(t).Error
}

func (r *trainingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	t := model.Training{ID: id}
	if err := db.Model(&t).Association("Participants").Clear(); err != nil {
		return err
	}
	return db.Delete(&t).Error
}

func (r *trainingRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Training, error) {
	var t model.Training
	if err := GetDB(ctx, r.db).Preload("Participants").First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *trainingRepository) List(ctx context.Context, page, limit int) ([]model.Training, int64, error) {
	var rows []model.Training
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Training{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Participants").Order("start_date desc").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *trainingRepository) ReplaceParticipants(ctx context.Context, t *model.Training, employees []model.Employee) error {
	return GetDB(ctx, r.db).Model(t).Association("Participants").Replace(employees)
}
