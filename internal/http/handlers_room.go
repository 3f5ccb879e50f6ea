package http

import (
	"net/http"

	"pocketpal/internal/services"
)

type createRoomRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	room, err := s.ledger.CreateRoom(r.Context(), req.Name, *requestUser(r))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, toRoomDTO(room))
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.ledger.ListRooms(r.Context(), requestUser(r).ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	out := make([]roomDTO, 0, len(rooms))
	for i := range rooms {
		out = append(out, toRoomDTO(&rooms[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := s.ledger.GetRoom(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !room.HasMember(requestUser(r).ID) {
		writeError(w, http.StatusForbidden, "not a member of this room")
		return
	}
	writeJSON(w, http.StatusOK, toRoomDTO(room))
}

type joinRoomRequest struct {
	InviteCode string `json:"invite_code"`
}

type joinRoomResponse struct {
	Status string   `json:"status"`
	Room   *roomDTO `json:"room,omitempty"`
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	var req joinRoomRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	room, status, err := s.ledger.JoinRoom(r.Context(), req.InviteCode, *requestUser(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	resp := joinRoomResponse{Status: status.String()}
	if room != nil {
		dto := toRoomDTO(room)
		resp.Room = &dto
	}

	code := http.StatusOK
	if status == services.JoinStatusRoomNotFound {
		code = http.StatusNotFound
	}
	writeJSON(w, code, resp)
}

type roomExpenseRequest struct {
	expenseRequest
	PayerID string `json:"payer_id"`
}

type roomExpenseResponse struct {
	Expense expenseDTO  `json:"expense"`
	Mirror  *expenseDTO `json:"mirror,omitempty"`
}

func (s *Server) handleAddRoomExpense(w http.ResponseWriter, r *http.Request) {
	var req roomExpenseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	u := requestUser(r)
	payer := req.PayerID
	if payer == "" {
		payer = u.ID
	}

	draft, err := parseExpense(req.expenseRequest, payer)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	e, mirror, err := s.ledger.AddRoomExpense(r.Context(), r.PathValue("id"), u.ID, draft)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	resp := roomExpenseResponse{Expense: toExpenseDTO(*e)}
	if mirror != nil {
		dto := toExpenseDTO(*mirror)
		resp.Mirror = &dto
		s.insights.InvalidateUser(u.ID)
	}
	writeJSON(w, http.StatusCreated, resp)
}
