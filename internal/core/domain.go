package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MirrorIDPrefix marks a personal expense created as the mirror of a
// shared room expense paid by the same user.
const MirrorIDPrefix = "shared_sync_"

// MirrorDescriptionPrefix is prepended to a mirror expense's description.
const MirrorDescriptionPrefix = "🤝 "

type (
	Money struct {
		Cents int64
	}

	// Date is a calendar day without a time component, stored and
	// exchanged as an ISO-8601 string (YYYY-MM-DD).
	Date struct {
		time.Time
	}

	Expense struct {
		ID          string
		Amount      Money
		Category    string // category id; deliberately unvalidated, orphans permitted
		Description string
		Date        Date
		UserID      string
		IsShared    bool
		CreatedAt   time.Time
	}

	User struct {
		ID                 string
		Name               string
		Contact            string // email or phone
		PasswordHash       string // empty = passwordless account
		PocketMoney        Money
		SavingsGoalPercent int
		CreatedAt          time.Time
	}

	Category struct {
		ID       string
		Name     string
		Icon     string
		IsCustom bool
	}

	// RoomMember snapshots the user's display name at join time.
	// The snapshot is never re-synced when the user renames.
	RoomMember struct {
		UserID string
		Name   string
		Spent  Money
	}

	Room struct {
		ID             string
		Name           string
		InviteCode     string
		Members        []RoomMember
		SharedExpenses []Expense // newest first
		CreatedAt      time.Time
	}

	Session struct {
		Token     string
		UserID    string
		CreatedAt time.Time
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrEmptyUser          = errors.New("empty user id")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidPercent     = errors.New("savings percent must be between 0 and 100")
	ErrRoomNotFound       = errors.New("room not found")
	ErrMemberNotFound     = errors.New("payer is not a member of the room")
	ErrUserNotFound       = errors.New("user not found")
	ErrExpenseNotFound    = errors.New("expense not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrContactTaken       = errors.New("contact already registered")
	ErrInvalidCredentials = errors.New("invalid contact or password")
)

const isoDateLayout = "2006-01-02"

// NewDate builds a Date from year, month and day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar day in UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses an ISO-8601 calendar day (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(isoDateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// String renders the date back as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(isoDateLayout)
}

// Year returns the calendar year.
func (d Date) Year() int { return d.Time.Year() }

// Month returns the calendar month (1-12).
func (d Date) Month() int { return int(d.Time.Month()) }

// Day returns the day of the month.
func (d Date) Day() int { return d.Time.Day() }

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks the fields a fully-formed expense must carry.
// Category is intentionally not checked against the category list.
func (e Expense) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.UserID) == "" {
		return ErrEmptyUser
	}
	return nil
}

// Mirror derives the personal record for a shared room expense paid by
// the room member themselves. The mirror is a separate expense, not a
// reference: it carries a synthetic id and the handshake marker.
func (e Expense) Mirror() Expense {
	m := e
	m.ID = MirrorIDPrefix + e.ID
	m.Description = MirrorDescriptionPrefix + e.Description
	m.IsShared = true
	return m
}

// IsMirror reports whether the expense is the personal mirror of a
// shared room expense.
func (e Expense) IsMirror() bool {
	return strings.HasPrefix(e.ID, MirrorIDPrefix)
}

// Member returns the member with the given user id, or false.
func (r Room) Member(userID string) (RoomMember, bool) {
	for _, m := range r.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return RoomMember{}, false
}

// HasMember reports whether the user already joined the room.
func (r Room) HasMember(userID string) bool {
	_, ok := r.Member(userID)
	return ok
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return errors.New("empty user name")
	}
	if strings.TrimSpace(u.Contact) == "" {
		return errors.New("empty contact")
	}
	if u.SavingsGoalPercent < 0 || u.SavingsGoalPercent > 100 {
		return ErrInvalidPercent
	}
	return nil
}
