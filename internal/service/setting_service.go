package service

import (
	"context"
	"encoding/json"
	"fmt"

	"carwash/internal/model"
	"carwash/internal/repository"

	"gorm.io/datatypes"
)

// NotificationSettings is the admin-edited notification document. Delivery is not done here.
type NotificationSettings struct {
	LowStockAlert   bool     `json:"low_stock_alert"`
	DailySummary    bool     `json:"daily_summary"`
	PayrollReminder bool     `json:"payroll_reminder"`
	RecipientEmails []string `json:"recipient_emails"`
	RecipientPhones []string `json:"recipient_phones"`
}

func defaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		LowStockAlert:   true,
		RecipientEmails: []string{},
		RecipientPhones: []string{},
	}
}

type SettingService interface {
	GetNotificationSettings(ctx context.Context) (*NotificationSettings, error)
	UpdateNotificationSettings(ctx context.Context, req NotificationSettings) (*NotificationSettings, error)
}

type settingService struct {
	repo      repository.SettingRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewSettingService(repo repository.SettingRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager) SettingService {
	return &settingService{repo: repo, auditRepo: auditRepo, txManager: txManager}
}

// GetNotificationSettings returns defaults until the document is first saved.
func (s *settingService) GetNotificationSettings(ctx context.Context) (*NotificationSettings, error) {
	row, err := s.repo.Get(ctx, model.SettingNotifications)
	if err != nil {
		if isNotFound(err) {
			d := defaultNotificationSettings()
			return &d, nil
		}
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	settings := defaultNotificationSettings()
	if err := json.Unmarshal(row.Value, &settings); err != nil {
		return nil, fmt.Errorf("stored notification settings are corrupt: %w", err)
	}
	return &settings, nil
}

func (s *settingService) UpdateNotificationSettings(ctx context.Context, req NotificationSettings) (*NotificationSettings, error) {
	if req.RecipientEmails == nil {
		req.RecipientEmails = []string{}
	}
	if req.RecipientPhones == nil {
		req.RecipientPhones = []string{}
	}
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		row := &model.Setting{
			Key:       model.SettingNotifications,
			Value:     datatypes.JSON(raw),
			UpdatedBy: actorID(txCtx),
		}
		if err := s.repo.Upsert(txCtx, row); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		return recordAudit(txCtx, s.auditRepo, model.AuditUpdateSetting, model.SettingNotifications, "", req)
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}
