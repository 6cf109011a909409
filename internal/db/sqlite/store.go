// Package sqlite хранилище сервиса обменов на встроенной SQLite.
// Используется для локального запуска и в тестах вместо Postgres.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/rajivgeraev/flippy-swaps/internal/db/sqlite/migrations"
	"github.com/rajivgeraev/flippy-swaps/internal/models"
	"github.com/rajivgeraev/flippy-swaps/internal/storage"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	q querier
}

// Store хранилище на SQLite
type Store struct {
	queries
	sqlDB *sql.DB
}

var _ storage.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open открывает файл базы и применяет встроенные миграции
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Одно соединение сериализует транзакции
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{queries: queries{q: sqlDB}, sqlDB: sqlDB}, nil
}

func applyMigrations(sqlDB *sql.DB) error {
	list, err := storage.LoadMigrations(migrations.FS)
	if err != nil {
		return err
	}
	_, err = sqlDB.Exec(`CREATE TABLE IF NOT EXISTS ` + storage.MigrationTable + ` (
		name TEXT PRIMARY KEY,
		applied_at INTEGER NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, m := range list {
		tx, err := sqlDB.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", m.Name, err)
		}
		res, err := tx.Exec(
			`INSERT OR IGNORE INTO `+storage.MigrationTable+` (name, applied_at) VALUES (?, ?)`,
			m.Name, toMillis(time.Now()),
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", m.Name, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			_ = tx.Rollback()
			continue
		}
		if _, err := tx.Exec(m.Up); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", m.Name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", m.Name, err)
		}
	}
	return nil
}

// Close закрывает базу
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// InTx выполняет fn в транзакции
func (s *Store) InTx(ctx context.Context, fn func(q storage.Queries) error) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&queries{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// Пользователи

const userColumns = `id, telegram_id, email, first_name, last_name, profile_image, impact_points, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var user models.User
	var createdAt, updatedAt int64
	err := row.Scan(
		&user.ID, &user.TelegramID, &user.Email, &user.FirstName, &user.LastName,
		&user.ProfileImage, &user.ImpactPoints, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	user.CreatedAt = fromMillis(createdAt)
	user.UpdatedAt = fromMillis(updatedAt)
	return &user, nil
}

func (s *queries) GetUser(ctx context.Context, id string) (*models.User, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return user, nil
}

func (s *queries) EnsureUser(ctx context.Context, identity models.Identity) (*models.User, error) {
	now := toMillis(time.Now())
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO users (id, email, first_name, last_name, profile_image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`, identity.ID, identity.Email, identity.FirstName, identity.LastName, identity.Picture, now, now)
	if err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	return s.GetUser(ctx, identity.ID)
}

func (s *queries) UpsertTelegramUser(ctx context.Context, tgUser storage.TelegramUser) (*models.User, error) {
	now := toMillis(time.Now())
	row := s.q.QueryRowContext(ctx, `
		INSERT INTO users (id, telegram_id, first_name, last_name, profile_image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (telegram_id) DO UPDATE
		SET first_name = excluded.first_name,
			last_name = excluded.last_name,
			profile_image = excluded.profile_image,
			updated_at = excluded.updated_at
		RETURNING `+userColumns,
		uuid.NewString(), tgUser.TelegramID, tgUser.FirstName, tgUser.LastName, tgUser.PhotoURL, now, now)
	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("upsert telegram user: %w", err)
	}
	return user, nil
}

func (s *queries) AddImpactPoints(ctx context.Context, userID string, delta int) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE users SET impact_points = impact_points + ?, updated_at = ? WHERE id = ?
	`, delta, toMillis(time.Now()), userID)
	if err != nil {
		return fmt.Errorf("add impact points: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("user %s: %w", userID, storage.ErrNotFound)
	}
	return nil
}

func (s *queries) CountUsers(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM users`)
}

func (s *queries) count(ctx context.Context, query string, args ...any) (int, error) {
	var total int
	if err := s.q.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return total, nil
}

// Вещи

const itemColumns = `id, user_id, title, description, condition, category, tags, images, is_available, latitude, longitude, created_at`

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeList(raw string) ([]string, error) {
	values := []string{}
	if raw == "" {
		return values, nil
	}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, err
	}
	return values, nil
}

func scanItem(row interface{ Scan(...any) error }) (*models.Item, error) {
	var item models.Item
	var condition, tags, images string
	var createdAt int64
	err := row.Scan(
		&item.ID, &item.UserID, &item.Title, &item.Description, &condition,
		&item.Category, &tags, &images, &item.IsAvailable,
		&item.Latitude, &item.Longitude, &createdAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	item.Condition = models.ItemCondition(condition)
	item.CreatedAt = fromMillis(createdAt)
	if item.Tags, err = decodeList(tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if item.Images, err = decodeList(images); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	return &item, nil
}

func (s *queries) CreateItem(ctx context.Context, item *models.Item) error {
	tags, err := encodeList(item.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	images, err := encodeList(item.Images)
	if err != nil {
		return fmt.Errorf("encode images: %w", err)
	}
	_, err = s.q.ExecContext(ctx, `
		INSERT INTO items (
			id, user_id, title, description, condition, category,
			tags, images, is_available, latitude, longitude, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		item.ID, item.UserID, item.Title, item.Description, string(item.Condition), item.Category,
		tags, images, item.IsAvailable, item.Latitude, item.Longitude, toMillis(item.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

func (s *queries) GetItem(ctx context.Context, id string) (*models.Item, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err != nil {
		return nil, fmt.Errorf("get item %s: %w", id, err)
	}
	return item, nil
}

func (s *queries) ListItems(ctx context.Context, filter models.ItemFilter) ([]models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE 1=1`
	var args []any

	if filter.AvailableOnly {
		query += ` AND is_available = 1`
	}
	if filter.OwnerID != "" {
		query += ` AND user_id = ?`
		args = append(args, filter.OwnerID)
	}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		query += ` AND (title LIKE ? OR description LIKE ?
			OR EXISTS (SELECT 1 FROM json_each(items.tags) WHERE json_each.value = ?))`
		tag := filter.TagQuery
		if tag == "" {
			tag = q
		}
		pattern := "%" + q + "%"
		args = append(args, pattern, pattern, tag)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = storage.DefaultItemLimit
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

func (s *queries) MarkItemUnavailable(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `UPDATE items SET is_available = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark item unavailable: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("item %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func (s *queries) CountItems(ctx context.Context, ownerID string) (int, error) {
	if ownerID == "" {
		return s.count(ctx, `SELECT COUNT(*) FROM items`)
	}
	return s.count(ctx, `SELECT COUNT(*) FROM items WHERE user_id = ?`, ownerID)
}

// Запросы на обмен

const swapColumns = `id, requester_id, receiver_id, item_id, offered_item_id, status, created_at, updated_at`

func scanSwap(row interface{ Scan(...any) error }) (*models.SwapRequest, error) {
	var swap models.SwapRequest
	var status string
	var createdAt, updatedAt int64
	err := row.Scan(
		&swap.ID, &swap.RequesterID, &swap.ReceiverID, &swap.ItemID,
		&swap.OfferedItemID, &status, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	swap.Status = models.SwapStatus(status)
	swap.CreatedAt = fromMillis(createdAt)
	swap.UpdatedAt = fromMillis(updatedAt)
	return &swap, nil
}

func (s *queries) CreateSwapRequest(ctx context.Context, swap *models.SwapRequest) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO swap_requests (
			id, requester_id, receiver_id, item_id, offered_item_id, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		swap.ID, swap.RequesterID, swap.ReceiverID, swap.ItemID, swap.OfferedItemID,
		string(swap.Status), toMillis(swap.CreatedAt), toMillis(swap.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create swap request: %w", err)
	}
	return nil
}

func (s *queries) GetSwapRequest(ctx context.Context, id string) (*models.SwapRequest, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+swapColumns+` FROM swap_requests WHERE id = ?`, id)
	swap, err := scanSwap(row)
	if err != nil {
		return nil, fmt.Errorf("get swap request %s: %w", id, err)
	}
	return swap, nil
}

func (s *queries) ListSwapRequestsByRequester(ctx context.Context, userID string) ([]models.SwapRequest, error) {
	return s.listSwaps(ctx, `requester_id`, userID)
}

func (s *queries) ListSwapRequestsByReceiver(ctx context.Context, userID string) ([]models.SwapRequest, error) {
	return s.listSwaps(ctx, `receiver_id`, userID)
}

func (s *queries) listSwaps(ctx context.Context, column, userID string) ([]models.SwapRequest, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+swapColumns+` FROM swap_requests
		WHERE `+column+` = ?
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list swap requests: %w", err)
	}
	defer rows.Close()

	swaps := []models.SwapRequest{}
	for rows.Next() {
		swap, err := scanSwap(rows)
		if err != nil {
			return nil, fmt.Errorf("scan swap request: %w", err)
		}
		swaps = append(swaps, *swap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate swap requests: %w", err)
	}
	return swaps, nil
}

func (s *queries) UpdateSwapStatus(ctx context.Context, id string, from, to models.SwapStatus, at time.Time) (bool, error) {
	res, err := s.q.ExecContext(ctx, `
		UPDATE swap_requests SET status = ?, updated_at = ? WHERE id = ? AND status = ?
	`, string(to), toMillis(at), id, string(from))
	if err != nil {
		return false, fmt.Errorf("update swap status: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *queries) CountCompletedSwaps(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return s.count(ctx, `SELECT COUNT(*) FROM swap_requests WHERE status = 'completed'`)
	}
	return s.count(ctx, `
		SELECT
			(SELECT COUNT(*) FROM swap_requests WHERE status = 'completed' AND requester_id = ?) +
			(SELECT COUNT(*) FROM swap_requests WHERE status = 'completed' AND receiver_id = ?)
	`, userID, userID)
}

// Сообщения

const messageColumns = `id, swap_request_id, sender_id, content, created_at`

func scanMessage(row interface{ Scan(...any) error }) (*models.Message, error) {
	var msg models.Message
	var createdAt int64
	if err := row.Scan(&msg.ID, &msg.SwapRequestID, &msg.SenderID, &msg.Content, &createdAt); err != nil {
		return nil, notFound(err)
	}
	msg.CreatedAt = fromMillis(createdAt)
	return &msg, nil
}

func (s *queries) CreateMessage(ctx context.Context, msg *models.Message) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO messages (id, swap_request_id, sender_id, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, msg.ID, msg.SwapRequestID, msg.SenderID, msg.Content, toMillis(msg.CreatedAt))
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

func (s *queries) ListMessages(ctx context.Context, swapRequestID string) ([]models.Message, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE swap_request_id = ?
		ORDER BY created_at ASC, id ASC
	`, swapRequestID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

func (s *queries) FirstMessage(ctx context.Context, swapRequestID string) (*models.Message, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE swap_request_id = ?
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`, swapRequestID)
	msg, err := scanMessage(row)
	if err != nil {
		return nil, fmt.Errorf("first message: %w", err)
	}
	return msg, nil
}
