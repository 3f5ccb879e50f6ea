package http

import (
	"time"

	"pocketpal/internal/core"
)

// Wire representations. Amounts travel both as decimal strings for
// display and integer cents for arithmetic on the client.

type userDTO struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Contact            string `json:"contact"`
	PocketMoney        string `json:"pocket_money"`
	PocketMoneyCents   int64  `json:"pocket_money_cents"`
	SavingsGoalPercent int    `json:"savings_goal_percent"`
}

type expenseDTO struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"`
	UserID      string `json:"user_id"`
	IsShared    bool   `json:"is_shared"`
}

type categoryDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Icon     string `json:"icon,omitempty"`
	IsCustom bool   `json:"is_custom"`
}

type memberDTO struct {
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Spent      string `json:"spent"`
	SpentCents int64  `json:"spent_cents"`
}

type roomDTO struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	InviteCode     string       `json:"invite_code"`
	Members        []memberDTO  `json:"members"`
	SharedExpenses []expenseDTO `json:"shared_expenses"`
	CreatedAt      string       `json:"created_at"`
}

func toUserDTO(u *core.User) userDTO {
	return userDTO{
		ID:                 u.ID,
		Name:               u.Name,
		Contact:            u.Contact,
		PocketMoney:        u.PocketMoney.String(),
		PocketMoneyCents:   u.PocketMoney.Cents,
		SavingsGoalPercent: u.SavingsGoalPercent,
	}
}

func toExpenseDTO(e core.Expense) expenseDTO {
	return expenseDTO{
		ID:          e.ID,
		Amount:      e.Amount.String(),
		AmountCents: e.Amount.Cents,
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date.String(),
		UserID:      e.UserID,
		IsShared:    e.IsShared,
	}
}

func toExpenseDTOs(expenses []core.Expense) []expenseDTO {
	out := make([]expenseDTO, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseDTO(e))
	}
	return out
}

func toCategoryDTO(c core.Category) categoryDTO {
	return categoryDTO{ID: c.ID, Name: c.Name, Icon: c.Icon, IsCustom: c.IsCustom}
}

func toRoomDTO(r *core.Room) roomDTO {
	members := make([]memberDTO, 0, len(r.Members))
	for _, m := range r.Members {
		members = append(members, memberDTO{
			UserID:     m.UserID,
			Name:       m.Name,
			Spent:      m.Spent.String(),
			SpentCents: m.Spent.Cents,
		})
	}
	return roomDTO{
		ID:             r.ID,
		Name:           r.Name,
		InviteCode:     r.InviteCode,
		Members:        members,
		SharedExpenses: toExpenseDTOs(r.SharedExpenses),
		CreatedAt:      r.CreatedAt.UTC().Format(time.RFC3339),
	}
}
