// Package sqlite backs the document store with a local SQLite database.
// Amounts are stored as decimal strings and timestamps as RFC 3339 text, so
// nothing is lost to float rounding on the way through the driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"stash/internal/core"
	"stash/internal/store"
)

type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// New opens (creating if needed) the database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func encodeTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func decodeTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func decodeAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d, nil
}

// Transactions

func (s *Store) InsertTransaction(ctx context.Context, t *core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, wallet_id, user_id, type, category, amount, date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.WalletID, t.UserID, string(t.Type), t.Category, t.Amount.String(), encodeTime(t.Date))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *Store) ListTransactions(ctx context.Context, f store.TransactionFilter) ([]core.Transaction, error) {
	q := `SELECT id, wallet_id, user_id, type, category, amount, date
		FROM transactions WHERE wallet_id = ?`
	args := []any{f.WalletID}
	if f.UserID != "" {
		q += " AND user_id = ?"
		args = append(args, f.UserID)
	}
	if f.Type != "" {
		q += " AND type = ?"
		args = append(args, string(f.Type))
	}
	if f.Category != "" {
		q += " AND category = ?"
		args = append(args, f.Category)
	}
	if !f.From.IsZero() {
		q += " AND date >= ?"
		args = append(args, encodeTime(f.From))
	}
	if !f.To.IsZero() {
		q += " AND date < ?"
		args = append(args, encodeTime(f.To))
	}
	q += " ORDER BY date, id"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var amount, date string
		if err := rows.Scan(&t.ID, &t.WalletID, &t.UserID, &t.Type, &t.Category, &amount, &date); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if t.Amount, err = decodeAmount(amount); err != nil {
			return nil, err
		}
		if t.Date, err = decodeTime(date); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

// Goals

func (s *Store) InsertGoal(ctx context.Context, g *core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO goals (id, wallet_id, name, target_amount, priority, deadline, completed, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.WalletID, g.Name, g.TargetAmount.String(), int(g.Priority),
		nullableTime(g.Deadline), g.Completed, nullableTimePtr(g.CompletedAt))
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

func (s *Store) GetGoal(ctx context.Context, id string) (*core.Goal, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, wallet_id, name, target_amount, priority, deadline, completed, completed_at
		FROM goals WHERE id = ?`, id)
	g, err := scanGoal(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

func (s *Store) ListGoals(ctx context.Context, walletID string, includeCompleted bool) ([]core.Goal, error) {
	q := `SELECT id, wallet_id, name, target_amount, priority, deadline, completed, completed_at
		FROM goals WHERE wallet_id = ?`
	if !includeCompleted {
		q += " AND completed = 0"
	}
	q += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, q, walletID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

func (s *Store) UpdateGoal(ctx context.Context, g *core.Goal) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE goals SET name = ?, target_amount = ?, priority = ?, deadline = ?, completed = ?, completed_at = ?
		WHERE id = ?`,
		g.Name, g.TargetAmount.String(), int(g.Priority),
		nullableTime(g.Deadline), g.Completed, nullableTimePtr(g.CompletedAt), g.ID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return requireRow(res)
}

func scanGoal(scan func(...any) error) (*core.Goal, error) {
	var g core.Goal
	var target string
	var deadline, completedAt sql.NullString
	if err := scan(&g.ID, &g.WalletID, &g.Name, &target, &g.Priority, &deadline, &g.Completed, &completedAt); err != nil {
		return nil, err
	}
	var err error
	if g.TargetAmount, err = decodeAmount(target); err != nil {
		return nil, err
	}
	if deadline.Valid {
		if g.Deadline, err = decodeTime(deadline.String); err != nil {
			return nil, err
		}
	}
	if completedAt.Valid {
		t, err := decodeTime(completedAt.String)
		if err != nil {
			return nil, err
		}
		g.CompletedAt = &t
	}
	return &g, nil
}

// Budgets

func (s *Store) InsertBudget(ctx context.Context, b *core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO budgets (id, wallet_id, category, limit_amount) VALUES (?, ?, ?, ?)`,
		b.ID, b.WalletID, b.Category, b.Limit.String())
	if err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}
	return nil
}

func (s *Store) ListBudgets(ctx context.Context, walletID string) ([]core.Budget, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, wallet_id, category, limit_amount FROM budgets
		WHERE wallet_id = ? ORDER BY id`, walletID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		var limit string
		if err := rows.Scan(&b.ID, &b.WalletID, &b.Category, &limit); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		if b.Limit, err = decodeAmount(limit); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Alerts

func (s *Store) InsertAlert(ctx context.Context, a *core.Alert) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	data, err := json.Marshal(a.Data)
	if err != nil {
		return fmt.Errorf("encode alert data: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO alerts (id, wallet_id, user_id, type, title, message, icon, data, fingerprint, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.WalletID, a.UserID, string(a.Type), a.Title, a.Message, a.Icon,
		string(data), a.Fingerprint, a.Read, encodeTime(a.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (s *Store) ListAlertsByWallet(ctx context.Context, walletID string) ([]core.Alert, error) {
	return s.listAlerts(ctx, `
		SELECT id, wallet_id, user_id, type, title, message, icon, data, fingerprint, read, created_at
		FROM alerts WHERE wallet_id = ? ORDER BY created_at DESC, id`, walletID)
}

func (s *Store) ListRecentAlertsByUser(ctx context.Context, userID string, since time.Time) ([]core.Alert, error) {
	return s.listAlerts(ctx, `
		SELECT id, wallet_id, user_id, type, title, message, icon, data, fingerprint, read, created_at
		FROM alerts WHERE user_id = ? AND created_at >= ? ORDER BY created_at DESC, id`,
		userID, encodeTime(since))
}

func (s *Store) listAlerts(ctx context.Context, q string, args ...any) ([]core.Alert, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var out []core.Alert
	for rows.Next() {
		var a core.Alert
		var data, createdAt string
		if err := rows.Scan(&a.ID, &a.WalletID, &a.UserID, &a.Type, &a.Title, &a.Message,
			&a.Icon, &data, &a.Fingerprint, &a.Read, &createdAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &a.Data); err != nil {
			return nil, fmt.Errorf("decode alert data: %w", err)
		}
		if a.CreatedAt, err = decodeTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) MarkAlertRead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE alerts SET read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark alert read: %w", err)
	}
	return requireRow(res)
}

func (s *Store) MarkAllAlertsRead(ctx context.Context, walletID string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE alerts SET read = 1 WHERE wallet_id = ?`, walletID)
	if err != nil {
		return fmt.Errorf("mark all alerts read: %w", err)
	}
	return nil
}

// Wallets

func (s *Store) InsertWallet(ctx context.Context, w *core.Wallet) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wallets (id, name, owner_user_id, created_at) VALUES (?, ?, ?, ?)`,
		w.ID, w.Name, w.OwnerUserID, encodeTime(w.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

func (s *Store) GetWallet(ctx context.Context, id string) (*core.Wallet, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, owner_user_id, created_at FROM wallets WHERE id = ?`, id)
	var w core.Wallet
	var createdAt string
	err := row.Scan(&w.ID, &w.Name, &w.OwnerUserID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get wallet: %w", err)
	}
	if w.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *Store) ListWalletsByOwner(ctx context.Context, ownerUserID string) ([]core.Wallet, error) {
	return s.listWallets(ctx, `
		SELECT id, name, owner_user_id, created_at FROM wallets
		WHERE owner_user_id = ? ORDER BY id`, ownerUserID)
}

func (s *Store) ListWallets(ctx context.Context) ([]core.Wallet, error) {
	return s.listWallets(ctx, `
		SELECT id, name, owner_user_id, created_at FROM wallets ORDER BY id`)
}

func (s *Store) listWallets(ctx context.Context, q string, args ...any) ([]core.Wallet, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	var out []core.Wallet
	for rows.Next() {
		var w core.Wallet
		var createdAt string
		if err := rows.Scan(&w.ID, &w.Name, &w.OwnerUserID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		if w.CreatedAt, err = decodeTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Shares

func (s *Store) InsertShare(ctx context.Context, sh *core.WalletShare) error {
	if err := sh.Validate(); err != nil {
		return err
	}
	if sh.ID == "" {
		sh.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wallet_shares (id, wallet_id, owner_user_id, grantee_email, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sh.ID, sh.WalletID, sh.OwnerUserID, sh.GranteeEmail, string(sh.Status), encodeTime(sh.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert share: %w", err)
	}
	return nil
}

func (s *Store) GetShare(ctx context.Context, id string) (*core.WalletShare, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, wallet_id, owner_user_id, grantee_email, status, created_at
		FROM wallet_shares WHERE id = ?`, id)
	sh, err := scanShare(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get share: %w", err)
	}
	return sh, nil
}

func (s *Store) FindActiveShare(ctx context.Context, walletID, granteeEmail string) (*core.WalletShare, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, wallet_id, owner_user_id, grantee_email, status, created_at
		FROM wallet_shares WHERE wallet_id = ? AND grantee_email = ? AND status != 'rejected'
		LIMIT 1`, walletID, granteeEmail)
	sh, err := scanShare(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find active share: %w", err)
	}
	return sh, nil
}

func (s *Store) ListSharesByWallet(ctx context.Context, walletID string) ([]core.WalletShare, error) {
	return s.listShares(ctx, `
		SELECT id, wallet_id, owner_user_id, grantee_email, status, created_at
		FROM wallet_shares WHERE wallet_id = ? ORDER BY id`, walletID)
}

func (s *Store) ListSharesByGrantee(ctx context.Context, granteeEmail string) ([]core.WalletShare, error) {
	return s.listShares(ctx, `
		SELECT id, wallet_id, owner_user_id, grantee_email, status, created_at
		FROM wallet_shares WHERE grantee_email = ? ORDER BY id`, granteeEmail)
}

func (s *Store) listShares(ctx context.Context, q string, args ...any) ([]core.WalletShare, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	defer rows.Close()

	var out []core.WalletShare
	for rows.Next() {
		sh, err := scanShare(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan share: %w", err)
		}
		out = append(out, *sh)
	}
	return out, rows.Err()
}

func (s *Store) UpdateShareStatus(ctx context.Context, id string, status core.ShareStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE wallet_shares SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update share status: %w", err)
	}
	return requireRow(res)
}

func scanShare(scan func(...any) error) (*core.WalletShare, error) {
	var sh core.WalletShare
	var createdAt string
	if err := scan(&sh.ID, &sh.WalletID, &sh.OwnerUserID, &sh.GranteeEmail, &sh.Status, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if sh.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, err
	}
	return &sh, nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return encodeTime(t)
}

func nullableTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return encodeTime(*t)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
