package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ShutdownScanner/internal/domain"
)

// ShutdownSource aggregates maintenance announcements for raw user addresses.
type ShutdownSource interface {
	ForAddress(ctx context.Context, city domain.City, rawAddress string, service domain.Service) []domain.ShutDownInfo
	ForAddresses(ctx context.Context, city domain.City, addresses []string) []domain.ShutDownByServiceInfo
}

// SubscriptionRepository persists chats and the addresses they watch.
type SubscriptionRepository interface {
	UpsertUser(ctx context.Context, chatID int64, username string) error
	AddAddress(ctx context.Context, chatID int64, city domain.City, rawAddress string) (domain.UserAddress, error)
	Addresses(ctx context.Context, chatID int64) ([]domain.UserAddress, error)
	AllAddresses(ctx context.Context) ([]domain.UserAddress, error)
	RemoveAddress(ctx context.Context, chatID int64, id uuid.UUID) error
}

// NotificationLog deduplicates already-delivered shutdown records.
type NotificationLog interface {
	AlreadyNotified(ctx context.Context, chatID int64, keys []string) (map[string]bool, error)
	MarkNotified(ctx context.Context, chatID int64, key string) error
}

// Notifier delivers a rendered shutdown report to one chat.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// Scheduler controls when the notification pipeline executes.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
