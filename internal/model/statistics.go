package model

import "github.com/shopspring/decimal"

// PeriodAmount is one bucket of a DATE_TRUNC aggregation.
type PeriodAmount struct {
	Period string          `gorm:"column:period" json:"period"`
	Amount decimal.Decimal `gorm:"column:amount" json:"amount"`
}

// ServiceRanking ranks catalog services by revenue in a window.
type ServiceRanking struct {
	ServiceID   string          `gorm:"column:service_id" json:"service_id"`
	ServiceName string          `gorm:"column:service_name" json:"service_name"`
	TimesSold   int             `gorm:"column:times_sold" json:"times_sold"`
	Revenue     decimal.Decimal `gorm:"column:revenue" json:"revenue"`
}
