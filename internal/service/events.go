package service

// EventPublisher pushes realtime notifications to connected dashboards.
type EventPublisher interface {
	Publish(event string, data interface{})
}

const (
	EventTransactionCreated  = "transaction.created"
	EventTransactionRefunded = "transaction.refunded"
	EventPayrollCreated      = "payroll.created"
	EventStockChanged        = "inventory.stock_changed"
	EventLowStock            = "inventory.low_stock"
)

type noopPublisher struct{}

func (noopPublisher) Publish(string, interface{}) {}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}
