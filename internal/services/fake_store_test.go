package services

import (
	"context"
	"sync"

	"pocketpal/internal/core"
	"pocketpal/internal/storage"
)

// fakeStore is an in-memory Store for service tests. It mimics the
// SQLite repository's semantics: keyed rows, sentinel not-found
// errors, newest-first expense ordering, atomic RecordRoomExpense.
type fakeStore struct {
	mu         sync.Mutex
	users      map[string]*core.User
	sessions   map[string]*core.Session
	categories []core.Category
	expenses   []core.Expense // newest first
	rooms      map[string]*core.Room

	// errOn injects an error for the named store method.
	errOn map[string]error
}

var _ storage.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[string]*core.User),
		sessions: make(map[string]*core.Session),
		rooms:    make(map[string]*core.Room),
		errOn:    make(map[string]error),
		categories: []core.Category{
			{ID: "essential", Name: "🏠 Essenziali"},
			{ID: "food", Name: "🍕 Cibo"},
		},
	}
}

func (f *fakeStore) fail(op string) error { return f.errOn[op] }

func (f *fakeStore) CreateUser(_ context.Context, u *core.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("CreateUser"); err != nil {
		return err
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeStore) GetUser(_ context.Context, id string) (*core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) GetUserByContact(_ context.Context, contact string) (*core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Contact == contact {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrUserNotFound
}

func (f *fakeStore) UpdateUserSettings(_ context.Context, id string, pocketMoney core.Money, savingsPercent int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return core.ErrUserNotFound
	}
	u.PocketMoney = pocketMoney
	u.SavingsGoalPercent = savingsPercent
	return nil
}

func (f *fakeStore) CreateSession(_ context.Context, s *core.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.sessions[s.Token] = &cp
	return nil
}

func (f *fakeStore) GetSession(_ context.Context, token string) (*core.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[token]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStore) DeleteSession(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, token)
	return nil
}

func (f *fakeStore) ListCategories(_ context.Context) ([]core.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.Category(nil), f.categories...), nil
}

func (f *fakeStore) CreateCategory(_ context.Context, c *core.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categories = append(f.categories, *c)
	return nil
}

func (f *fakeStore) InsertExpense(_ context.Context, e *core.Expense) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("InsertExpense"); err != nil {
		return err
	}
	f.expenses = append([]core.Expense{*e}, f.expenses...)
	return nil
}

func (f *fakeStore) GetExpense(_ context.Context, id string) (*core.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.expenses {
		if e.ID == id {
			cp := e
			return &cp, nil
		}
	}
	return nil, core.ErrExpenseNotFound
}

func (f *fakeStore) ListExpenses(_ context.Context, userID string) ([]core.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Expense
	for _, e := range f.expenses {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) ListExpensesByMonth(_ context.Context, userID string, year, month int) ([]core.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Expense
	for _, e := range f.expenses {
		if e.UserID == userID && e.Date.Year() == year && e.Date.Month() == month {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateRoom(_ context.Context, r *core.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *r
	cp.Members = append([]core.RoomMember(nil), r.Members...)
	f.rooms[r.ID] = &cp
	return nil
}

func (f *fakeStore) GetRoom(_ context.Context, id string) (*core.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rooms[id]
	if !ok {
		return nil, core.ErrRoomNotFound
	}
	return copyRoom(r), nil
}

func (f *fakeStore) GetRoomByInviteCode(_ context.Context, code string) (*core.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rooms {
		if r.InviteCode == code {
			return copyRoom(r), nil
		}
	}
	return nil, core.ErrRoomNotFound
}

func (f *fakeStore) InviteCodeExists(_ context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rooms {
		if r.InviteCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) AddRoomMember(_ context.Context, roomID string, m core.RoomMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rooms[roomID]
	if !ok {
		return core.ErrRoomNotFound
	}
	r.Members = append(r.Members, m)
	return nil
}

func (f *fakeStore) ListRoomsForUser(_ context.Context, userID string) ([]core.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Room
	for _, r := range f.rooms {
		if r.HasMember(userID) {
			out = append(out, *copyRoom(r))
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateMemberSpent(_ context.Context, roomID, userID string, spent core.Money) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("UpdateMemberSpent"); err != nil {
		return err
	}
	r, ok := f.rooms[roomID]
	if !ok {
		return core.ErrRoomNotFound
	}
	for i := range r.Members {
		if r.Members[i].UserID == userID {
			r.Members[i].Spent = spent
			return nil
		}
	}
	return core.ErrMemberNotFound
}

func (f *fakeStore) RecordRoomExpense(_ context.Context, roomID string, e *core.Expense, mirror *core.Expense) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rooms[roomID]
	if !ok {
		return core.ErrRoomNotFound
	}
	idx := -1
	for i := range r.Members {
		if r.Members[i].UserID == e.UserID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.ErrMemberNotFound
	}
	r.Members[idx].Spent.Cents += e.Amount.Cents
	r.SharedExpenses = append([]core.Expense{*e}, r.SharedExpenses...)
	if mirror != nil {
		f.expenses = append([]core.Expense{*mirror}, f.expenses...)
	}
	return nil
}

func (f *fakeStore) Close() error { return nil }

func copyRoom(r *core.Room) *core.Room {
	cp := *r
	cp.Members = append([]core.RoomMember(nil), r.Members...)
	cp.SharedExpenses = append([]core.Expense(nil), r.SharedExpenses...)
	return &cp
}

// fakePublisher records published backup events.
type fakePublisher struct {
	mu       sync.Mutex
	recorded []string // expense ids
	err      error
}

func (p *fakePublisher) PublishExpenseRecorded(_ context.Context, expenseID, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.recorded = append(p.recorded, expenseID)
	return nil
}

func (p *fakePublisher) ids() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.recorded...)
}
