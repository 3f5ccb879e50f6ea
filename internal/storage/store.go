// Package storage provides durable persistence for users, expenses,
// rooms and sessions, keyed per entity rather than per collection.
package storage

import (
	"context"

	"pocketpal/internal/core"
)

// Store is the persistence contract the services are written against.
// The SQLite repository is the production implementation; tests use
// in-memory fakes.
type Store interface {
	// Users
	CreateUser(ctx context.Context, u *core.User) error
	GetUser(ctx context.Context, id string) (*core.User, error)
	GetUserByContact(ctx context.Context, contact string) (*core.User, error)
	UpdateUserSettings(ctx context.Context, id string, pocketMoney core.Money, savingsPercent int) error

	// Sessions
	CreateSession(ctx context.Context, s *core.Session) error
	GetSession(ctx context.Context, token string) (*core.Session, error)
	DeleteSession(ctx context.Context, token string) error

	// Categories
	ListCategories(ctx context.Context) ([]core.Category, error)
	CreateCategory(ctx context.Context, c *core.Category) error

	// Personal expenses, newest first
	InsertExpense(ctx context.Context, e *core.Expense) error
	GetExpense(ctx context.Context, id string) (*core.Expense, error)
	ListExpenses(ctx context.Context, userID string) ([]core.Expense, error)
	ListExpensesByMonth(ctx context.Context, userID string, year, month int) ([]core.Expense, error)

	// Rooms
	CreateRoom(ctx context.Context, r *core.Room) error
	GetRoom(ctx context.Context, id string) (*core.Room, error)
	GetRoomByInviteCode(ctx context.Context, code string) (*core.Room, error)
	InviteCodeExists(ctx context.Context, code string) (bool, error)
	AddRoomMember(ctx context.Context, roomID string, m core.RoomMember) error
	ListRoomsForUser(ctx context.Context, userID string) ([]core.Room, error)
	UpdateMemberSpent(ctx context.Context, roomID, userID string, spent core.Money) error

	// RecordRoomExpense applies a shared expense in one transaction:
	// the payer's running total is incremented, the expense is
	// prepended to the room log, and the optional personal mirror is
	// inserted. Returns core.ErrRoomNotFound or core.ErrMemberNotFound
	// without mutating anything.
	RecordRoomExpense(ctx context.Context, roomID string, e *core.Expense, mirror *core.Expense) error

	Close() error
}
