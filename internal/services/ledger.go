package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pocketpal/internal/core"
	"pocketpal/internal/log"
	"pocketpal/internal/storage"
)

// inviteCodeAttempts bounds the retry loop when a freshly generated
// invite code collides with an existing room.
const inviteCodeAttempts = 5

// EventPublisher emits expense-recorded events for the backup
// pipeline. A nil publisher disables the pipeline.
type EventPublisher interface {
	PublishExpenseRecorded(ctx context.Context, expenseID, userID string) error
}

// JoinStatus is the outcome of a join-by-invite-code attempt.
type JoinStatus int

const (
	JoinStatusJoined JoinStatus = iota
	JoinStatusAlreadyMember
	JoinStatusRoomNotFound
)

func (s JoinStatus) String() string {
	switch s {
	case JoinStatusJoined:
		return "joined"
	case JoinStatusAlreadyMember:
		return "already_member"
	case JoinStatusRoomNotFound:
		return "room_not_found"
	default:
		return "unknown"
	}
}

// LedgerService owns expenses, categories and shared rooms. Writes go
// to storage first; backup events are published best-effort afterwards
// and never fail the operation.
type LedgerService struct {
	store  storage.Store
	events EventPublisher
	logger *log.Logger
}

func NewLedgerService(store storage.Store, events EventPublisher, logger *log.Logger) *LedgerService {
	return &LedgerService{
		store:  store,
		events: events,
		logger: logger.WithComponent(log.ComponentLedger),
	}
}

// AddPersonalExpense validates and persists an expense on the user's
// personal ledger, then publishes a backup event. The expense id is
// assigned here; callers must not set one.
func (s *LedgerService) AddPersonalExpense(ctx context.Context, e core.Expense) (*core.Expense, error) {
	e.ID = uuid.NewString()
	e.IsShared = false
	e.CreatedAt = time.Now().UTC()

	if err := e.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.InsertExpense(ctx, &e); err != nil {
		return nil, fmt.Errorf("insert expense: %w", err)
	}

	s.publishRecorded(ctx, e.ID, e.UserID)
	s.logger.InfoContext(ctx, "Personal expense recorded",
		log.FieldExpenseID, e.ID,
		log.FieldUserID, e.UserID,
		log.FieldAmountCents, e.Amount.Cents)
	return &e, nil
}

// ListExpenses returns the user's personal ledger, newest first.
func (s *LedgerService) ListExpenses(ctx context.Context, userID string) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx, userID)
}

// ListCategories returns the seeded categories plus any custom ones.
func (s *LedgerService) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

// CreateCategory adds a custom category.
func (s *LedgerService) CreateCategory(ctx context.Context, name, icon string) (*core.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("empty category name")
	}
	c := &core.Category{
		ID:       uuid.NewString(),
		Name:     name,
		Icon:     icon,
		IsCustom: true,
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// CreateRoom opens a shared room with the creator as its first member.
// The invite code is generated here and retried on collision.
func (s *LedgerService) CreateRoom(ctx context.Context, name string, creator core.User) (*core.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("empty room name")
	}

	code, err := s.freshInviteCode(ctx)
	if err != nil {
		return nil, err
	}

	r := &core.Room{
		ID:         uuid.NewString(),
		Name:       name,
		InviteCode: code,
		Members: []core.RoomMember{
			{UserID: creator.ID, Name: creator.Name},
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateRoom(ctx, r); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}

	s.logger.InfoContext(ctx, "Room created",
		log.FieldRoomID, r.ID,
		log.FieldUserID, creator.ID,
		log.FieldInviteCode, r.InviteCode)
	return r, nil
}

func (s *LedgerService) freshInviteCode(ctx context.Context) (string, error) {
	for i := 0; i < inviteCodeAttempts; i++ {
		code, err := core.NewInviteCode()
		if err != nil {
			return "", fmt.Errorf("generate invite code: %w", err)
		}
		taken, err := s.store.InviteCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check invite code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique invite code")
}

// JoinRoom adds the user to the room behind the invite code. The
// member entry snapshots the user's display name at join time. The
// error return carries storage failures only; an unknown code or an
// existing membership come back as a status, not an error.
func (s *LedgerService) JoinRoom(ctx context.Context, inviteCode string, u core.User) (*core.Room, JoinStatus, error) {
	code := core.NormalizeInviteCode(inviteCode)

	r, err := s.store.GetRoomByInviteCode(ctx, code)
	if errors.Is(err, core.ErrRoomNotFound) {
		return nil, JoinStatusRoomNotFound, nil
	}
	if err != nil {
		return nil, JoinStatusRoomNotFound, fmt.Errorf("lookup invite code: %w", err)
	}

	if r.HasMember(u.ID) {
		return r, JoinStatusAlreadyMember, nil
	}

	m := core.RoomMember{UserID: u.ID, Name: u.Name}
	if err := s.store.AddRoomMember(ctx, r.ID, m); err != nil {
		return nil, JoinStatusRoomNotFound, fmt.Errorf("add member: %w", err)
	}
	r.Members = append(r.Members, m)

	s.logger.InfoContext(ctx, "User joined room",
		log.FieldRoomID, r.ID,
		log.FieldUserID, u.ID)
	return r, JoinStatusJoined, nil
}

// AddRoomExpense records a shared expense in one transaction: the
// payer's running total grows, the expense lands on the room log, and
// when the acting user paid themselves, a mirror is written to their
// personal ledger. Returns core.ErrRoomNotFound or
// core.ErrMemberNotFound without any partial write.
func (s *LedgerService) AddRoomExpense(ctx context.Context, roomID, actingUserID string, e core.Expense) (*core.Expense, *core.Expense, error) {
	e.ID = uuid.NewString()
	e.IsShared = true
	e.CreatedAt = time.Now().UTC()

	if err := e.Validate(); err != nil {
		return nil, nil, err
	}

	var mirror *core.Expense
	if e.UserID == actingUserID {
		m := e.Mirror()
		mirror = &m
	}

	if err := s.store.RecordRoomExpense(ctx, roomID, &e, mirror); err != nil {
		return nil, nil, err
	}

	if mirror != nil {
		s.publishRecorded(ctx, mirror.ID, mirror.UserID)
	}
	s.logger.InfoContext(ctx, "Room expense recorded",
		log.FieldRoomID, roomID,
		log.FieldExpenseID, e.ID,
		log.FieldUserID, e.UserID,
		log.FieldAmountCents, e.Amount.Cents,
		"mirrored", mirror != nil)
	return &e, mirror, nil
}

// GetRoom loads a room and reconciles its member totals against the
// shared expense log before returning it.
func (s *LedgerService) GetRoom(ctx context.Context, roomID string) (*core.Room, error) {
	r, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ReconcileRoom(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ListRooms returns every room the user belongs to, each reconciled.
func (s *LedgerService) ListRooms(ctx context.Context, userID string) ([]core.Room, error) {
	rooms, err := s.store.ListRoomsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range rooms {
		if _, err := s.ReconcileRoom(ctx, &rooms[i]); err != nil {
			return nil, err
		}
	}
	return rooms, nil
}

// ReconcileRoom recomputes each member's total from the room's shared
// expense log and repairs any drifted stored totals. The room is
// updated in place; the return reports whether a repair was needed.
// Drift can only appear through out-of-band writes, so a repair is
// worth a warning.
func (s *LedgerService) ReconcileRoom(ctx context.Context, r *core.Room) (bool, error) {
	actual := core.SumMemberSpend(r.SharedExpenses)

	repaired := false
	for i, m := range r.Members {
		want := actual[m.UserID]
		if m.Spent.Cents == want {
			continue
		}
		if err := s.store.UpdateMemberSpent(ctx, r.ID, m.UserID, core.Money{Cents: want}); err != nil {
			return repaired, fmt.Errorf("repair member total: %w", err)
		}
		s.logger.WarnContext(ctx, "Repaired drifted member total",
			log.FieldRoomID, r.ID,
			log.FieldUserID, m.UserID,
			"stored_cents", m.Spent.Cents,
			"actual_cents", want)
		r.Members[i].Spent = core.Money{Cents: want}
		repaired = true
	}
	return repaired, nil
}

func (s *LedgerService) publishRecorded(ctx context.Context, expenseID, userID string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishExpenseRecorded(ctx, expenseID, userID); err != nil {
		// Storage already committed; the backup worker catches up later.
		s.logger.ErrorContext(ctx, "Failed to publish backup event",
			log.FieldExpenseID, expenseID,
			log.FieldError, err)
	}
}
