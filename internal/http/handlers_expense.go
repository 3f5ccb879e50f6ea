package http

import (
	"net/http"

	"pocketpal/internal/core"
)

type expenseRequest struct {
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// parseExpense builds a draft expense from the request body. The
// service assigns the id.
func parseExpense(req expenseRequest, userID string) (core.Expense, error) {
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Expense{}, err
	}

	date := core.Today()
	if req.Date != "" {
		date, err = core.ParseDate(req.Date)
		if err != nil {
			return core.Expense{}, err
		}
	}

	return core.Expense{
		Amount:      core.Money{Cents: cents},
		Category:    req.Category,
		Description: req.Description,
		Date:        date,
		UserID:      userID,
	}, nil
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	u := requestUser(r)
	draft, err := parseExpense(req, u.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	e, err := s.ledger.AddPersonalExpense(r.Context(), draft)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.insights.InvalidateUser(u.ID)

	writeJSON(w, http.StatusCreated, toExpenseDTO(*e))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.ledger.ListExpenses(r.Context(), requestUser(r).ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseDTOs(expenses))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.ledger.ListCategories(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	out := make([]categoryDTO, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryDTO(c))
	}
	writeJSON(w, http.StatusOK, out)
}

type categoryRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	c, err := s.ledger.CreateCategory(r.Context(), req.Name, req.Icon)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryDTO(*c))
}
