package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	SharePending  ShareStatus = "pending"
	ShareAccepted ShareStatus = "accepted"
	ShareRejected ShareStatus = "rejected"
)

const (
	PriorityHigh   GoalPriority = 1
	PriorityMedium GoalPriority = 2
	PriorityLow    GoalPriority = 3
)

type (
	TransactionType string

	ShareStatus string

	// GoalPriority orders goals for waterfall funding. Lower value is more urgent.
	GoalPriority int

	Transaction struct {
		ID       string
		WalletID string
		UserID   string
		Type     TransactionType
		Category string
		Amount   decimal.Decimal
		Date     time.Time
	}

	Wallet struct {
		ID          string
		Name        string
		OwnerUserID string
		CreatedAt   time.Time
	}

	// WalletShare grants a grantee read/write access to a wallet once accepted.
	// At most one share with status != rejected exists per (WalletID, GranteeEmail).
	WalletShare struct {
		ID           string
		WalletID     string
		OwnerUserID  string
		GranteeEmail string
		Status       ShareStatus
		CreatedAt    time.Time
	}

	Goal struct {
		ID           string
		WalletID     string
		Name         string
		TargetAmount decimal.Decimal
		Priority     GoalPriority
		Deadline     time.Time
		Completed    bool
		CompletedAt  *time.Time
	}

	Budget struct {
		ID       string
		WalletID string
		Category string
		Limit    decimal.Decimal
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrEmptyCategory   = errors.New("empty category")
	ErrEmptyWallet     = errors.New("empty wallet id")
	ErrEmptyName       = errors.New("empty name")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidLimit    = errors.New("invalid budget limit")
	ErrInvalidStatus   = errors.New("invalid share status")
	ErrNotFound        = errors.New("not found")
)

func (t Transaction) Validate() error {
	if t.WalletID == "" {
		return ErrEmptyWallet
	}
	switch t.Type {
	case Income, Expense:
	default:
		return ErrInvalidType
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.Amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if t.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

func (g Goal) Validate() error {
	if g.WalletID == "" {
		return ErrEmptyWallet
	}
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.TargetAmount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	switch g.Priority {
	case PriorityHigh, PriorityMedium, PriorityLow:
	default:
		return ErrInvalidPriority
	}
	return nil
}

func (b Budget) Validate() error {
	if b.WalletID == "" {
		return ErrEmptyWallet
	}
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if b.Limit.Sign() <= 0 {
		return ErrInvalidLimit
	}
	return nil
}

func (s WalletShare) Validate() error {
	if s.WalletID == "" {
		return ErrEmptyWallet
	}
	if strings.TrimSpace(s.GranteeEmail) == "" {
		return errors.New("empty grantee email")
	}
	switch s.Status {
	case SharePending, ShareAccepted, ShareRejected:
	default:
		return ErrInvalidStatus
	}
	return nil
}
