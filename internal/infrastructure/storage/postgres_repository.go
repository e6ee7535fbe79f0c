package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"ShutdownScanner/internal/domain"
	"ShutdownScanner/internal/ports"
)

// PostgresRepository persists users, their watched addresses and the
// notification dedup log.
type PostgresRepository struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

var _ ports.SubscriptionRepository = (*PostgresRepository)(nil)
var _ ports.NotificationLog = (*PostgresRepository)(nil)

// NewPostgresRepository wires a pgx connection pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// UpsertUser creates or refreshes the chat record.
func (r *PostgresRepository) UpsertUser(ctx context.Context, chatID int64, username string) error {
	query, args, err := r.sb.Insert("users").
		Columns("chat_id", "username", "created_at").
		Values(chatID, username, time.Now().UTC()).
		Suffix("ON CONFLICT (chat_id) DO UPDATE SET username = EXCLUDED.username").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert user: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// AddAddress stores one watched address for a chat.
func (r *PostgresRepository) AddAddress(ctx context.Context, chatID int64, city domain.City, rawAddress string) (domain.UserAddress, error) {
	stored := domain.UserAddress{
		ID:     uuid.New(),
		ChatID: chatID,
		City:   city,
		Raw:    rawAddress,
	}

	query, args, err := r.sb.Insert("user_addresses").
		Columns("id", "chat_id", "city", "address", "created_at").
		Values(stored.ID, chatID, string(city), rawAddress, time.Now().UTC()).
		ToSql()
	if err != nil {
		return domain.UserAddress{}, fmt.Errorf("build insert address: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return domain.UserAddress{}, fmt.Errorf("insert address: %w", err)
	}
	return stored, nil
}

// Addresses lists the watched addresses of one chat.
func (r *PostgresRepository) Addresses(ctx context.Context, chatID int64) ([]domain.UserAddress, error) {
	return r.selectAddresses(ctx, sq.Eq{"chat_id": chatID})
}

// AllAddresses lists every watched address across all chats.
func (r *PostgresRepository) AllAddresses(ctx context.Context) ([]domain.UserAddress, error) {
	return r.selectAddresses(ctx, nil)
}

func (r *PostgresRepository) selectAddresses(ctx context.Context, where any) ([]domain.UserAddress, error) {
	builder := r.sb.Select("id", "chat_id", "city", "address").
		From("user_addresses").
		OrderBy("created_at")
	if where != nil {
		builder = builder.Where(where)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select addresses: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query addresses: %w", err)
	}
	defer rows.Close()

	var addresses []domain.UserAddress
	for rows.Next() {
		var (
			stored domain.UserAddress
			city   string
		)
		if err := rows.Scan(&stored.ID, &stored.ChatID, &city, &stored.Raw); err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		stored.City = domain.City(city)
		addresses = append(addresses, stored)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return addresses, nil
}

// RemoveAddress deletes one watched address owned by the chat.
func (r *PostgresRepository) RemoveAddress(ctx context.Context, chatID int64, id uuid.UUID) error {
	query, args, err := r.sb.Delete("user_addresses").
		Where(sq.Eq{"id": id, "chat_id": chatID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete address: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	return nil
}

// AlreadyNotified returns a map with the keys that are already logged for the
// chat.
func (r *PostgresRepository) AlreadyNotified(ctx context.Context, chatID int64, keys []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(keys) == 0 {
		return result, nil
	}

	query, args, err := r.sb.Select("notification_key").
		From("user_notifications").
		Where(sq.Eq{"chat_id": chatID, "notification_key": keys}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select notified: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notified: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		result[key] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return result, nil
}

// MarkNotified logs a delivered shutdown record for deduplication.
func (r *PostgresRepository) MarkNotified(ctx context.Context, chatID int64, key string) error {
	query, args, err := r.sb.Insert("user_notifications").
		Columns("chat_id", "notification_key", "notified_at").
		Values(chatID, key, time.Now().UTC()).
		Suffix("ON CONFLICT (chat_id, notification_key) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert notified: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert notified: %w", err)
	}
	return nil
}
