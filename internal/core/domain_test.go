package core

import (
	"errors"
	"testing"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		year    int
		month   int
		day     int
	}{
		{name: "valid date", input: "2024-03-09", year: 2024, month: 3, day: 9},
		{name: "leading whitespace", input: " 2024-12-31", year: 2024, month: 12, day: 31},
		{name: "empty", input: "", wantErr: true},
		{name: "wrong layout", input: "09/03/2024", wantErr: true},
		{name: "month out of range", input: "2024-13-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDate(%q) expected error, got %v", tt.input, d)
				}
				if !errors.Is(err, ErrInvalidDate) {
					t.Errorf("ParseDate(%q) error = %v, want ErrInvalidDate", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) unexpected error: %v", tt.input, err)
			}
			if d.Year() != tt.year || d.Month() != tt.month || d.Day() != tt.day {
				t.Errorf("ParseDate(%q) = %d-%d-%d, want %d-%d-%d",
					tt.input, d.Year(), d.Month(), d.Day(), tt.year, tt.month, tt.day)
			}
		})
	}
}

func TestDateString(t *testing.T) {
	d := NewDate(2024, 3, 9)
	if got := d.String(); got != "2024-03-09" {
		t.Errorf("String() = %q, want 2024-03-09", got)
	}
}

func TestExpenseValidate(t *testing.T) {
	valid := Expense{
		ID:          "e1",
		Amount:      Money{Cents: 1250},
		Category:    "food",
		Description: "lunch",
		Date:        NewDate(2024, 3, 9),
		UserID:      "u1",
	}

	tests := []struct {
		name    string
		mutate  func(*Expense)
		wantErr error
	}{
		{name: "valid", mutate: func(e *Expense) {}},
		{name: "zero amount", mutate: func(e *Expense) { e.Amount.Cents = 0 }, wantErr: ErrInvalidAmount},
		{name: "negative amount", mutate: func(e *Expense) { e.Amount.Cents = -100 }, wantErr: ErrInvalidAmount},
		{name: "blank description", mutate: func(e *Expense) { e.Description = "   " }, wantErr: ErrEmptyDescription},
		{name: "zero date", mutate: func(e *Expense) { e.Date = Date{} }, wantErr: ErrInvalidDate},
		{name: "missing user", mutate: func(e *Expense) { e.UserID = "" }, wantErr: ErrEmptyUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			err := e.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("orphaned category is accepted", func(t *testing.T) {
		e := valid
		e.Category = "no-such-category"
		if err := e.Validate(); err != nil {
			t.Errorf("Validate() should not check category existence, got %v", err)
		}
	})
}

func TestExpenseMirror(t *testing.T) {
	e := Expense{
		ID:          "abc123",
		Amount:      Money{Cents: 5000},
		Category:    "food",
		Description: "Group dinner",
		Date:        NewDate(2024, 3, 9),
		UserID:      "u1",
	}

	m := e.Mirror()

	if m.ID != "shared_sync_abc123" {
		t.Errorf("Mirror id = %q, want shared_sync_abc123", m.ID)
	}
	if m.Description != "🤝 Group dinner" {
		t.Errorf("Mirror description = %q, want handshake prefix", m.Description)
	}
	if !m.IsShared {
		t.Error("Mirror should set IsShared")
	}
	if m.Amount != e.Amount || m.UserID != e.UserID || m.Category != e.Category {
		t.Error("Mirror should copy amount, user and category unchanged")
	}
	if !m.IsMirror() {
		t.Error("IsMirror() should be true for a mirror expense")
	}
	if e.IsMirror() {
		t.Error("IsMirror() should be false for the original expense")
	}
	// The original must not be touched.
	if e.IsShared || e.ID != "abc123" || e.Description != "Group dinner" {
		t.Error("Mirror must not modify the original expense")
	}
}

func TestRoomMember(t *testing.T) {
	r := Room{
		Members: []RoomMember{
			{UserID: "u1", Name: "Alice", Spent: Money{Cents: 5000}},
			{UserID: "u2", Name: "Bob"},
		},
	}

	m, ok := r.Member("u1")
	if !ok || m.Name != "Alice" || m.Spent.Cents != 5000 {
		t.Errorf("Member(u1) = %+v, %v", m, ok)
	}
	if _, ok := r.Member("u3"); ok {
		t.Error("Member(u3) should not be found")
	}
	if !r.HasMember("u2") || r.HasMember("u3") {
		t.Error("HasMember gave wrong answers")
	}
}

func TestUserValidate(t *testing.T) {
	u := User{Name: "Alice", Contact: "alice@example.com", SavingsGoalPercent: 20}
	if err := u.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	u.SavingsGoalPercent = 101
	if err := u.Validate(); !errors.Is(err, ErrInvalidPercent) {
		t.Errorf("Validate() error = %v, want ErrInvalidPercent", err)
	}
}
