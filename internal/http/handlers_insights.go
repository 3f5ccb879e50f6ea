package http

import (
	"net/http"
	"strconv"
	"time"
)

type budgetResponse struct {
	Year               int    `json:"year"`
	Month              int    `json:"month"`
	PocketMoney        string `json:"pocket_money"`
	PocketMoneyCents   int64  `json:"pocket_money_cents"`
	Spent              string `json:"spent"`
	SpentCents         int64  `json:"spent_cents"`
	SavingsTarget      string `json:"savings_target"`
	SavingsTargetCents int64  `json:"savings_target_cents"`
	Remaining          string `json:"remaining"`
	RemainingCents     int64  `json:"remaining_cents"`
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())

	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = y
	}
	if v := r.URL.Query().Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			writeError(w, http.StatusBadRequest, "invalid month")
			return
		}
		month = m
	}

	b, err := s.insights.Budget(r.Context(), requestUser(r).ID, year, month)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, budgetResponse{
		Year:               b.Year,
		Month:              b.Month,
		PocketMoney:        b.PocketMoney.String(),
		PocketMoneyCents:   b.PocketMoney.Cents,
		Spent:              b.Spent.String(),
		SpentCents:         b.Spent.Cents,
		SavingsTarget:      b.SavingsTarget.String(),
		SavingsTargetCents: b.SavingsTarget.Cents,
		Remaining:          b.Remaining.String(),
		RemainingCents:     b.Remaining.Cents,
	})
}

type categoryAmountDTO struct {
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
}

func (s *Server) handleSpendByCategory(w http.ResponseWriter, r *http.Request) {
	rows, err := s.insights.SpendByCategory(r.Context(), requestUser(r).ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	out := make([]categoryAmountDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, categoryAmountDTO{
			Category:    row.Category,
			Amount:      row.Amount.String(),
			AmountCents: row.Amount.Cents,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type monthAmountDTO struct {
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
}

func (s *Server) handleSpendByMonth(w http.ResponseWriter, r *http.Request) {
	rows, err := s.insights.SpendByMonth(r.Context(), requestUser(r).ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	out := make([]monthAmountDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, monthAmountDTO{
			Year:        row.Year,
			Month:       row.Month,
			Amount:      row.Amount.String(),
			AmountCents: row.Amount.Cents,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
