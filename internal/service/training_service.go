package service

import (
	"context"
	"fmt"

	"carwash/internal/model"
	"carwash/internal/repository"
)

type TrainingRequest struct {
	Title          string   `json:"title" binding:"required"`
	Description    string   `json:"description"`
	Trainer        string   `json:"trainer"`
	StartDate      string   `json:"start_date" binding:"required"`
	EndDate        string   `json:"end_date" binding:"required"`
	Status         string   `json:"status" binding:"omitempty,oneof=scheduled completed cancelled"`
	ParticipantIDs []string `json:"participant_ids"`
}

type TrainingService interface {
	ListTrainings(ctx context.Context, page, limit int) ([]model.Training, int64, error)
	GetTraining(ctx context.Context, id string) (*model.Training, error)
	CreateTraining(ctx context.Context, req TrainingRequest) (*model.Training, error)
	UpdateTraining(ctx context.Context, id string, req TrainingRequest) (*model.Training, error)
	DeleteTraining(ctx context.Context, id string) error
}

type trainingService struct {
	repo         repository.TrainingRepository
	employeeRepo repository.EmployeeRepository
	txManager    repository.TransactionManager
}

func NewTrainingService(repo repository.TrainingRepository, employeeRepo repository.EmployeeRepository, txManager repository.TransactionManager) TrainingService {
	return &trainingService{repo: repo, employeeRepo: employeeRepo, txManager: txManager}
}

func (s *trainingService) ListTrainings(ctx context.Context, page, limit int) ([]model.Training, int64, error) {
	return s.repo.List(ctx, page, limit)
}

func (s *trainingService) GetTraining(ctx context.Context, id string) (*model.Training, error) {
	trainingID, err := parseID(id, "training")
	if err != nil {
		return nil, err
	}
	t, err := s.repo.FindByID(ctx, trainingID)
	if err != nil {
		return nil, lookupErr(err, "training")
	}
	return t, nil
}

func (s *trainingService) CreateTraining(ctx context.Context, req TrainingRequest) (*model.Training, error) {
	t := &model.Training{Status: "scheduled"}
	return t, s.save(ctx, t, req, true)
}

func (s *trainingService) UpdateTraining(ctx context.Context, id string, req TrainingRequest) (*model.Training, error) {
	t, err := s.GetTraining(ctx, id)
	if err != nil {
		return nil, err
	}
	return t, s.save(ctx, t, req, false)
}

func (s *trainingService) save(ctx context.Context, t *model.Training, req TrainingRequest, create bool) error {
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return err
	}
	ids, err := parseIDs(req.ParticipantIDs, "employee")
	if err != nil {
		return err
	}

	t.Title = req.Title
	t.Description = req.Description
	t.Trainer = req.Trainer
	t.StartDate = start
	t.EndDate = end
	if req.Status != "" {
		t.Status = req.Status
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		participants := make([]model.Employee, 0, len(ids))
		for _, id := range ids {
			e, err := s.employeeRepo.FindByID(txCtx, id)
			if err != nil {
				if isNotFound(err) {
					return fmt.Errorf("%w: %s", ErrEmployeeNotFound, id)
				}
				return err
			}
			participants = append(participants, *e)
		}

		if create {
			err = s.repo.Create(txCtx, t)
		} else {
			err = s.repo.Update(txCtx, t)
		}
		if err != nil {
			return fmt.Errorf("failed to save training: %w", err)
		}
		if err := s.repo.ReplaceParticipants(txCtx, t, participants); err != nil {
			return fmt.Errorf("failed to save participants: %w", err)
		}
		t.Participants = participants
		return nil
	})
}

func (s *trainingService) DeleteTraining(ctx context.Context, id string) error {
	t, err := s.GetTraining(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, t.ID)
}
