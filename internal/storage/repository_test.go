package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"pocketpal/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	repo, err := NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteRepository failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testUser(id, contact string) *core.User {
	return &core.User{
		ID:      id,
		Name:    "User " + id,
		Contact: contact,
	}
}

func TestUsersRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := testUser("u1", "u1@example.com")
	u.PocketMoney = core.Money{Cents: 50000}
	u.SavingsGoalPercent = 20
	if err := repo.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	got, err := repo.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.Contact != "u1@example.com" || got.PocketMoney.Cents != 50000 || got.SavingsGoalPercent != 20 {
		t.Errorf("GetUser = %+v", got)
	}

	byContact, err := repo.GetUserByContact(ctx, "u1@example.com")
	if err != nil || byContact.ID != "u1" {
		t.Errorf("GetUserByContact = %+v, %v", byContact, err)
	}

	if _, err := repo.GetUser(ctx, "nope"); !errors.Is(err, core.ErrUserNotFound) {
		t.Errorf("GetUser(nope) error = %v, want ErrUserNotFound", err)
	}

	if err := repo.UpdateUserSettings(ctx, "u1", core.Money{Cents: 60000}, 30); err != nil {
		t.Fatalf("UpdateUserSettings failed: %v", err)
	}
	got, _ = repo.GetUser(ctx, "u1")
	if got.PocketMoney.Cents != 60000 || got.SavingsGoalPercent != 30 {
		t.Errorf("settings not updated: %+v", got)
	}

	if err := repo.UpdateUserSettings(ctx, "nope", core.Money{Cents: 1}, 0); !errors.Is(err, core.ErrUserNotFound) {
		t.Errorf("UpdateUserSettings(nope) error = %v, want ErrUserNotFound", err)
	}
}

func TestSessions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.CreateUser(ctx, testUser("u1", "c1")); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	s := &core.Session{Token: "tok1", UserID: "u1"}
	if err := repo.CreateSession(ctx, s); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	got, err := repo.GetSession(ctx, "tok1")
	if err != nil || got.UserID != "u1" {
		t.Fatalf("GetSession = %+v, %v", got, err)
	}

	if err := repo.DeleteSession(ctx, "tok1"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := repo.GetSession(ctx, "tok1"); !errors.Is(err, core.ErrSessionNotFound) {
		t.Errorf("GetSession after delete error = %v, want ErrSessionNotFound", err)
	}
}

func TestCategoriesSeededAndCustom(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	cats, err := repo.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}
	if len(cats) != 8 {
		t.Fatalf("seeded categories = %d, want 8", len(cats))
	}
	if cats[0].ID != "essential" || cats[0].IsCustom {
		t.Errorf("first seeded category = %+v", cats[0])
	}

	custom := &core.Category{ID: "pets", Name: "🐶 Pets", Icon: "paw", IsCustom: true}
	if err := repo.CreateCategory(ctx, custom); err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	cats, _ = repo.ListCategories(ctx)
	if len(cats) != 9 || !cats[8].IsCustom || cats[8].ID != "pets" {
		t.Errorf("custom category not appended: %+v", cats)
	}
}

func TestExpensesNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i, id := range []string{"e1", "e2", "e3"} {
		e := &core.Expense{
			ID:          id,
			UserID:      "u1",
			Amount:      core.Money{Cents: int64(100 * (i + 1))},
			Category:    "food",
			Description: "expense " + id,
			Date:        core.NewDate(2024, 3, i+1),
		}
		if err := repo.InsertExpense(ctx, e); err != nil {
			t.Fatalf("InsertExpense(%s) failed: %v", id, err)
		}
	}

	list, err := repo.ListExpenses(ctx, "u1")
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("ListExpenses returned %d entries, want 3", len(list))
	}
	if list[0].ID != "e3" || list[1].ID != "e2" || list[2].ID != "e1" {
		t.Errorf("expenses not newest first: %s %s %s", list[0].ID, list[1].ID, list[2].ID)
	}

	got, err := repo.GetExpense(ctx, "e2")
	if err != nil || got.Amount.Cents != 200 || got.Date.String() != "2024-03-02" {
		t.Errorf("GetExpense(e2) = %+v, %v", got, err)
	}

	if _, err := repo.GetExpense(ctx, "missing"); !errors.Is(err, core.ErrExpenseNotFound) {
		t.Errorf("GetExpense(missing) error = %v, want ErrExpenseNotFound", err)
	}
}

func TestListExpensesByMonth(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	dates := []core.Date{
		core.NewDate(2024, 2, 29),
		core.NewDate(2024, 3, 1),
		core.NewDate(2024, 3, 31),
		core.NewDate(2024, 4, 1),
	}
	for i, d := range dates {
		e := &core.Expense{
			ID:          string(rune('a' + i)),
			UserID:      "u1",
			Amount:      core.Money{Cents: 100},
			Category:    "food",
			Description: "x",
			Date:        d,
		}
		if err := repo.InsertExpense(ctx, e); err != nil {
			t.Fatalf("InsertExpense failed: %v", err)
		}
	}

	march, err := repo.ListExpensesByMonth(ctx, "u1", 2024, 3)
	if err != nil {
		t.Fatalf("ListExpensesByMonth failed: %v", err)
	}
	if len(march) != 2 {
		t.Errorf("march expenses = %d, want 2", len(march))
	}
}

func TestRoomLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	room := &core.Room{
		ID:         "r1",
		Name:       "Trip",
		InviteCode: "ABC123",
		Members:    []core.RoomMember{{UserID: "u1", Name: "Alice"}},
	}
	if err := repo.CreateRoom(ctx, room); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	exists, err := repo.InviteCodeExists(ctx, "ABC123")
	if err != nil || !exists {
		t.Errorf("InviteCodeExists(ABC123) = %v, %v", exists, err)
	}
	exists, err = repo.InviteCodeExists(ctx, "ZZZZZZ")
	if err != nil || exists {
		t.Errorf("InviteCodeExists(ZZZZZZ) = %v, %v", exists, err)
	}

	got, err := repo.GetRoomByInviteCode(ctx, "ABC123")
	if err != nil {
		t.Fatalf("GetRoomByInviteCode failed: %v", err)
	}
	if got.ID != "r1" || len(got.Members) != 1 || got.Members[0].Name != "Alice" {
		t.Errorf("GetRoomByInviteCode = %+v", got)
	}

	if err := repo.AddRoomMember(ctx, "r1", core.RoomMember{UserID: "u2", Name: "Bob"}); err != nil {
		t.Fatalf("AddRoomMember failed: %v", err)
	}
	got, _ = repo.GetRoom(ctx, "r1")
	if len(got.Members) != 2 || got.Members[1].UserID != "u2" || got.Members[1].Spent.Cents != 0 {
		t.Errorf("members after join = %+v", got.Members)
	}

	rooms, err := repo.ListRoomsForUser(ctx, "u2")
	if err != nil || len(rooms) != 1 || rooms[0].ID != "r1" {
		t.Errorf("ListRoomsForUser(u2) = %+v, %v", rooms, err)
	}
	rooms, err = repo.ListRoomsForUser(ctx, "u3")
	if err != nil || len(rooms) != 0 {
		t.Errorf("ListRoomsForUser(u3) = %+v, %v", rooms, err)
	}

	if _, err := repo.GetRoom(ctx, "nope"); !errors.Is(err, core.ErrRoomNotFound) {
		t.Errorf("GetRoom(nope) error = %v, want ErrRoomNotFound", err)
	}
}

func TestRecordRoomExpense(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	room := &core.Room{
		ID:         "r1",
		Name:       "Trip",
		InviteCode: "ABC123",
		Members: []core.RoomMember{
			{UserID: "u1", Name: "Alice"},
			{UserID: "u2", Name: "Bob"},
		},
	}
	if err := repo.CreateRoom(ctx, room); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	e := &core.Expense{
		ID:          "re1",
		UserID:      "u1",
		Amount:      core.Money{Cents: 5000},
		Category:    "food",
		Description: "Group dinner",
		Date:        core.NewDate(2024, 3, 9),
	}
	mirror := e.Mirror()

	if err := repo.RecordRoomExpense(ctx, "r1", e, &mirror); err != nil {
		t.Fatalf("RecordRoomExpense failed: %v", err)
	}

	got, _ := repo.GetRoom(ctx, "r1")
	if got.Members[0].Spent.Cents != 5000 {
		t.Errorf("payer spent = %d, want 5000", got.Members[0].Spent.Cents)
	}
	if got.Members[1].Spent.Cents != 0 {
		t.Errorf("other member spent = %d, want 0", got.Members[1].Spent.Cents)
	}
	if len(got.SharedExpenses) != 1 || got.SharedExpenses[0].ID != "re1" {
		t.Errorf("shared expenses = %+v", got.SharedExpenses)
	}

	personal, _ := repo.ListExpenses(ctx, "u1")
	if len(personal) != 1 || personal[0].ID != "shared_sync_re1" || !personal[0].IsShared {
		t.Errorf("mirror expense = %+v", personal)
	}
}

func TestRecordRoomExpenseErrors(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	room := &core.Room{
		ID:         "r1",
		Name:       "Trip",
		InviteCode: "ABC123",
		Members:    []core.RoomMember{{UserID: "u1", Name: "Alice"}},
	}
	if err := repo.CreateRoom(ctx, room); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	e := &core.Expense{
		ID:          "re1",
		UserID:      "u1",
		Amount:      core.Money{Cents: 1000},
		Category:    "food",
		Description: "x",
		Date:        core.NewDate(2024, 3, 9),
	}

	if err := repo.RecordRoomExpense(ctx, "missing", e, nil); !errors.Is(err, core.ErrRoomNotFound) {
		t.Errorf("unknown room error = %v, want ErrRoomNotFound", err)
	}

	stranger := *e
	stranger.ID = "re2"
	stranger.UserID = "u9"
	if err := repo.RecordRoomExpense(ctx, "r1", &stranger, nil); !errors.Is(err, core.ErrMemberNotFound) {
		t.Errorf("non-member payer error = %v, want ErrMemberNotFound", err)
	}

	// Failed writes must not leave partial state behind.
	got, _ := repo.GetRoom(ctx, "r1")
	if len(got.SharedExpenses) != 0 || got.Members[0].Spent.Cents != 0 {
		t.Errorf("room mutated by failed writes: %+v", got)
	}
}

func TestUpdateMemberSpent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	room := &core.Room{
		ID:         "r1",
		Name:       "Trip",
		InviteCode: "ABC123",
		Members:    []core.RoomMember{{UserID: "u1", Name: "Alice"}},
	}
	if err := repo.CreateRoom(ctx, room); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	if err := repo.UpdateMemberSpent(ctx, "r1", "u1", core.Money{Cents: 4200}); err != nil {
		t.Fatalf("UpdateMemberSpent failed: %v", err)
	}
	got, _ := repo.GetRoom(ctx, "r1")
	if got.Members[0].Spent.Cents != 4200 {
		t.Errorf("spent = %d, want 4200", got.Members[0].Spent.Cents)
	}

	if err := repo.UpdateMemberSpent(ctx, "r1", "u9", core.Money{Cents: 1}); !errors.Is(err, core.ErrMemberNotFound) {
		t.Errorf("unknown member error = %v, want ErrMemberNotFound", err)
	}
}
