package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusRejected  = "rejected"
)

const (
	// DefaultFlowStateTTL время жизни состояния диалога в Redis
	DefaultFlowStateTTL = 24 * 60 * 60 // 24 часа в секундах

	// DefaultPaginationSize размер страницы списка комнат
	DefaultPaginationSize = 6

	// DefaultBookingsPaginationSize размер страницы списка броней
	DefaultBookingsPaginationSize = 5

	// RateLimitMessages количество сообщений в окне
	RateLimitMessages = 20

	// RateLimitWindow окно ограничения частоты сообщений (секунды)
	RateLimitWindow = 60

	// DefaultQuoteDebounceMs задержка перед запросом расчёта стоимости
	DefaultQuoteDebounceMs = 600

	// NotifyQueueSize размер очереди воркера уведомлений
	NotifyQueueSize = 256
)

// BookingStatuses lists every lifecycle status in display order.
var BookingStatuses = []string{StatusPending, StatusConfirmed, StatusCancelled, StatusRejected}
