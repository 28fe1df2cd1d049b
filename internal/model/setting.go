package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const SettingNotifications = "notifications"

// Setting is a keyed JSON document edited by administrators.
type Setting struct {
	Key       string         `gorm:"type:varchar(100);primaryKey" json:"key"`
	Value     datatypes.JSON `gorm:"type:jsonb;not null" json:"value"`
	UpdatedBy *uuid.UUID     `gorm:"type:uuid" json:"updated_by"`
	UpdatedAt time.Time      `json:"updated_at"`
}
