package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"stash/internal/core"
	"stash/internal/services"
)

// statusFor maps domain errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrShareExists):
		return http.StatusConflict
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrEmptyWallet),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrInvalidPriority),
		errors.Is(err, core.ErrInvalidLimit),
		errors.Is(err, core.ErrInvalidStatus):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "url", r.URL.Path, "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

type createTransactionRequest struct {
	WalletID string `json:"wallet_id"`
	UserID   string `json:"user_id"`
	Type     string `json:"type"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Date     string `json:"date,omitempty"` // YYYY-MM-DD
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	t := core.Transaction{
		WalletID: req.WalletID,
		UserID:   req.UserID,
		Type:     core.TransactionType(req.Type),
		Category: req.Category,
		Amount:   amount,
	}
	if req.Date != "" {
		d, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
			return
		}
		t.Date = d
	}

	if err := s.wallets.AddTransaction(r.Context(), &t); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": t.ID})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	walletID := r.URL.Query().Get("wallet_id")
	if walletID == "" {
		writeError(w, http.StatusBadRequest, "wallet_id is required")
		return
	}
	if err := s.wallets.DeleteTransaction(r.Context(), walletID, r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	walletID := r.PathValue("id")
	ov, ok := s.wallets.Overview(walletID)
	if !ok {
		fresh, err := s.wallets.RecomputeOverview(r.Context(), walletID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		ov = fresh
	}
	writeJSON(w, http.StatusOK, ov)
}

type createGoalRequest struct {
	WalletID     string `json:"wallet_id"`
	Name         string `json:"name"`
	TargetAmount string `json:"target_amount"`
	Priority     int    `json:"priority"`
	Deadline     string `json:"deadline,omitempty"` // YYYY-MM-DD
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target, err := core.ParseAmount(req.TargetAmount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid target amount")
		return
	}

	g := core.Goal{
		WalletID:     req.WalletID,
		Name:         req.Name,
		TargetAmount: target,
		Priority:     core.GoalPriority(req.Priority),
	}
	if req.Deadline != "" {
		d, err := time.Parse("2006-01-02", req.Deadline)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid deadline, expected YYYY-MM-DD")
			return
		}
		g.Deadline = d
	}

	if err := s.wallets.CreateGoal(r.Context(), &g); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": g.ID})
}

type completeGoalRequest struct {
	UserID      string `json:"user_id"`
	SpawnIncome bool   `json:"spawn_income"`
}

func (s *Server) handleCompleteGoal(w http.ResponseWriter, r *http.Request) {
	var req completeGoalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.wallets.CompleteGoal(r.Context(), r.PathValue("id"), req.UserID, req.SpawnIncome); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createBudgetRequest struct {
	WalletID string `json:"wallet_id"`
	Category string `json:"category"`
	Limit    string `json:"limit"`
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req createBudgetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	limit, err := core.ParseAmount(req.Limit)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid limit")
		return
	}

	b := core.Budget{WalletID: req.WalletID, Category: req.Category, Limit: limit}
	if err := s.wallets.CreateBudget(r.Context(), &b); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": b.ID})
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	walletID := r.URL.Query().Get("wallet_id")
	if walletID == "" {
		writeError(w, http.StatusBadRequest, "wallet_id is required")
		return
	}
	got, err := s.dispatcher.List(r.Context(), walletID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": got})
}

func (s *Server) handleMarkAlertRead(w http.ResponseWriter, r *http.Request) {
	if err := s.dispatcher.MarkRead(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type markAllReadRequest struct {
	WalletID string `json:"wallet_id"`
}

func (s *Server) handleMarkAllAlertsRead(w http.ResponseWriter, r *http.Request) {
	var req markAllReadRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.WalletID == "" {
		writeError(w, http.StatusBadRequest, "wallet_id is required")
		return
	}
	if err := s.dispatcher.MarkAllRead(r.Context(), req.WalletID); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createShareRequest struct {
	WalletID     string `json:"wallet_id"`
	OwnerUserID  string `json:"owner_user_id"`
	GranteeEmail string `json:"grantee_email"`
}

func (s *Server) handleCreateShare(w http.ResponseWriter, r *http.Request) {
	var req createShareRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	share, err := s.shares.CreateShare(r.Context(), req.WalletID, req.OwnerUserID, req.GranteeEmail)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"id":     share.ID,
		"status": string(share.Status),
	})
}

func (s *Server) handleAcceptShare(w http.ResponseWriter, r *http.Request) {
	if err := s.shares.AcceptShare(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRejectShare(w http.ResponseWriter, r *http.Request) {
	if err := s.shares.RejectShare(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSharedWallets(w http.ResponseWriter, r *http.Request) {
	grantee := r.URL.Query().Get("grantee_email")
	if grantee == "" {
		writeError(w, http.StatusBadRequest, "grantee_email is required")
		return
	}
	wallets, err := s.shares.SharedWallets(r.Context(), grantee)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"wallets": wallets})
}
