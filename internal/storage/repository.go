package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"pocketpal/internal/core"
)

// Ensure SQLiteRepository implements Store.
var _ Store = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath
// and brings the schema up to date.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- users ---

func (r *SQLiteRepository) CreateUser(ctx context.Context, u *core.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, contact, password_hash, pocket_money_cents, savings_goal_percent, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Contact, u.PasswordHash, u.PocketMoney.Cents, u.SavingsGoalPercent, u.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (*core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, name, contact, password_hash, pocket_money_cents, savings_goal_percent, created_at
		 FROM users WHERE id = ?`, id))
}

func (r *SQLiteRepository) GetUserByContact(ctx context.Context, contact string) (*core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, name, contact, password_hash, pocket_money_cents, savings_goal_percent, created_at
		 FROM users WHERE contact = ?`, contact))
}

func (r *SQLiteRepository) scanUser(row *sql.Row) (*core.User, error) {
	var u core.User
	var createdAt int64
	err := row.Scan(&u.ID, &u.Name, &u.Contact, &u.PasswordHash,
		&u.PocketMoney.Cents, &u.SavingsGoalPercent, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &u, nil
}

func (r *SQLiteRepository) UpdateUserSettings(ctx context.Context, id string, pocketMoney core.Money, savingsPercent int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET pocket_money_cents = ?, savings_goal_percent = ? WHERE id = ?`,
		pocketMoney.Cents, savingsPercent, id,
	)
	if err != nil {
		return fmt.Errorf("update user settings: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrUserNotFound
	}
	return nil
}

// --- sessions ---

func (r *SQLiteRepository) CreateSession(ctx context.Context, s *core.Session) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, created_at) VALUES (?, ?, ?)`,
		s.Token, s.UserID, s.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetSession(ctx context.Context, token string) (*core.Session, error) {
	var s core.Session
	var createdAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT token, user_id, created_at FROM sessions WHERE token = ?`, token,
	).Scan(&s.Token, &s.UserID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}
	s.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &s, nil
}

func (r *SQLiteRepository) DeleteSession(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// --- categories ---

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, icon, is_custom FROM categories ORDER BY is_custom, rowid`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.IsCustom); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c *core.Category) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, icon, is_custom) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, c.Icon, c.IsCustom,
	)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// --- personal expenses ---

func (r *SQLiteRepository) InsertExpense(ctx context.Context, e *core.Expense) error {
	if err := insertExpenseTx(ctx, r.db, e); err != nil {
		return err
	}
	return nil
}

// execer covers both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertExpenseTx(ctx context.Context, db execer, e *core.Expense) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, amount_cents, category, description, date, is_shared, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Amount.Cents, e.Category, e.Description, e.Date.String(), e.IsShared, e.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

const expenseColumns = `id, user_id, amount_cents, category, description, date, is_shared, created_at`

func (r *SQLiteRepository) GetExpense(ctx context.Context, id string) (*core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrExpenseNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID string) ([]core.Expense, error) {
	return r.queryExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE user_id = ? ORDER BY seq DESC`, userID)
}

func (r *SQLiteRepository) ListExpensesByMonth(ctx context.Context, userID string, year, month int) ([]core.Expense, error) {
	prefix := fmt.Sprintf("%04d-%02d-", year, month)
	return r.queryExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE user_id = ? AND date LIKE ? ORDER BY seq DESC`,
		userID, prefix+"%")
}

func (r *SQLiteRepository) queryExpenses(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

func scanExpense(scan func(...any) error) (*core.Expense, error) {
	var e core.Expense
	var date string
	var createdAt int64
	err := scan(&e.ID, &e.UserID, &e.Amount.Cents, &e.Category, &e.Description, &date, &e.IsShared, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan expense: %w", err)
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("stored date %q: %w", date, err)
	}
	e.Date = d
	e.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &e, nil
}

// --- rooms ---

func (r *SQLiteRepository) CreateRoom(ctx context.Context, room *core.Room) error {
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO rooms (id, name, invite_code, created_at) VALUES (?, ?, ?, ?)`,
		room.ID, room.Name, room.InviteCode, room.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert room: %w", err)
	}

	for _, m := range room.Members {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO room_members (room_id, user_id, name, spent_cents) VALUES (?, ?, ?, ?)`,
			room.ID, m.UserID, m.Name, m.Spent.Cents,
		)
		if err != nil {
			return fmt.Errorf("insert room member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetRoom(ctx context.Context, id string) (*core.Room, error) {
	return r.getRoomBy(ctx, `SELECT id, name, invite_code, created_at FROM rooms WHERE id = ?`, id)
}

func (r *SQLiteRepository) GetRoomByInviteCode(ctx context.Context, code string) (*core.Room, error) {
	return r.getRoomBy(ctx, `SELECT id, name, invite_code, created_at FROM rooms WHERE invite_code = ?`, code)
}

func (r *SQLiteRepository) getRoomBy(ctx context.Context, query, arg string) (*core.Room, error) {
	var room core.Room
	var createdAt int64
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&room.ID, &room.Name, &room.InviteCode, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan room: %w", err)
	}
	room.CreatedAt = time.Unix(createdAt, 0).UTC()

	if err := r.loadRoomMembers(ctx, &room); err != nil {
		return nil, err
	}
	if err := r.loadRoomExpenses(ctx, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *SQLiteRepository) loadRoomMembers(ctx context.Context, room *core.Room) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, name, spent_cents FROM room_members WHERE room_id = ? ORDER BY rowid`,
		room.ID)
	if err != nil {
		return fmt.Errorf("query room members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m core.RoomMember
		if err := rows.Scan(&m.UserID, &m.Name, &m.Spent.Cents); err != nil {
			return fmt.Errorf("scan room member: %w", err)
		}
		room.Members = append(room.Members, m)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate room members: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) loadRoomExpenses(ctx context.Context, room *core.Room) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, amount_cents, category, description, date, created_at
		 FROM room_expenses WHERE room_id = ? ORDER BY seq DESC`,
		room.ID)
	if err != nil {
		return fmt.Errorf("query room expenses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e core.Expense
		var date string
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount.Cents, &e.Category, &e.Description, &date, &createdAt); err != nil {
			return fmt.Errorf("scan room expense: %w", err)
		}
		d, err := core.ParseDate(date)
		if err != nil {
			return fmt.Errorf("stored date %q: %w", date, err)
		}
		e.Date = d
		e.IsShared = true
		e.CreatedAt = time.Unix(createdAt, 0).UTC()
		room.SharedExpenses = append(room.SharedExpenses, e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate room expenses: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) InviteCodeExists(ctx context.Context, code string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM rooms WHERE invite_code = ?`, code).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check invite code: %w", err)
	}
	return true, nil
}

func (r *SQLiteRepository) AddRoomMember(ctx context.Context, roomID string, m core.RoomMember) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO room_members (room_id, user_id, name, spent_cents) VALUES (?, ?, ?, ?)`,
		roomID, m.UserID, m.Name, m.Spent.Cents,
	)
	if err != nil {
		return fmt.Errorf("insert room member: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListRoomsForUser(ctx context.Context, userID string) ([]core.Room, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id FROM rooms r
		 JOIN room_members m ON m.room_id = r.id
		 WHERE m.user_id = ? ORDER BY r.created_at, r.id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("query rooms for user: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan room id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate room ids: %w", err)
	}

	out := make([]core.Room, 0, len(ids))
	for _, id := range ids {
		room, err := r.GetRoom(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *room)
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateMemberSpent(ctx context.Context, roomID, userID string, spent core.Money) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE room_members SET spent_cents = ? WHERE room_id = ? AND user_id = ?`,
		spent.Cents, roomID, userID,
	)
	if err != nil {
		return fmt.Errorf("update member spent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrMemberNotFound
	}
	return nil
}

// RecordRoomExpense applies the shared-expense write set atomically:
// one transaction covers the member total, the room log entry and the
// optional personal mirror, so a failure leaves no partial state.
func (r *SQLiteRepository) RecordRoomExpense(ctx context.Context, roomID string, e *core.Expense, mirror *core.Expense) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM rooms WHERE id = ?`, roomID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrRoomNotFound
	}
	if err != nil {
		return fmt.Errorf("check room: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE room_members SET spent_cents = spent_cents + ? WHERE room_id = ? AND user_id = ?`,
		e.Amount.Cents, roomID, e.UserID,
	)
	if err != nil {
		return fmt.Errorf("increment member spent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrMemberNotFound
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO room_expenses (id, room_id, user_id, amount_cents, category, description, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, roomID, e.UserID, e.Amount.Cents, e.Category, e.Description, e.Date.String(), e.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert room expense: %w", err)
	}

	if mirror != nil {
		if err := insertExpenseTx(ctx, tx, mirror); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
