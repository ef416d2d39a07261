package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"releve/internal/core"
	"releve/internal/log"

	_ "modernc.org/sqlite"
)

const Name = "sqlite"

// StatementRow is one stored statement header.
type StatementRow struct {
	ID        int64
	RunID     string
	Bank      string
	Account   string
	Period    core.Period
	Opening   core.Money
	Closing   core.Money
	Count     int
	CreatedAt time.Time
}

type SQLiteRepository struct {
	db     *sql.DB
	logger *log.Logger
	now    func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection keeps the foreign_keys pragma in effect for every statement.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		logger: log.Nop(),
		now:    time.Now,
	}, nil
}

// SetLogger replaces the discard logger installed by NewSQLiteRepository.
func (r *SQLiteRepository) SetLogger(l *log.Logger) {
	if l != nil {
		r.logger = l.WithComponent(log.ComponentStorage)
	}
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Name() string { return Name }

// Render stores the statement and returns "sqlite:statements/<id>".
func (r *SQLiteRepository) Render(ctx context.Context, st core.Statement) (string, error) {
	id, err := r.SaveStatement(ctx, st)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("sqlite:statements/%d", id), nil
}

// SaveStatement writes the header and every line in one transaction.
func (r *SQLiteRepository) SaveStatement(ctx context.Context, st core.Statement) (int64, error) {
	b := st.Batch
	if err := b.Period.Validate(); err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO statements (run_id, bank, account, year, month, opening_cents, closing_cents, tx_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.RunID, st.Account.Bank, st.Account.Number, b.Period.Year, b.Period.Month,
		b.Opening.Cents, b.Closing.Cents, len(b.Transactions), r.now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("insert statement %s: %w", b.Period, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("statement id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO statement_lines (statement_id, position, day, description, direction, amount_cents, balance_cents)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare line insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range b.Transactions {
		dir := core.Credit
		if t.Amount.Cents < 0 {
			dir = core.Debit
		}
		if t.Category != nil {
			dir = t.Category.Direction
		}
		if _, err := stmt.ExecContext(ctx, id, i, t.Date.Day(), t.Description(), string(dir), t.Amount.Cents, t.Balance.Cents); err != nil {
			return 0, fmt.Errorf("insert line %d of %s: %w", i+1, b.Period, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit statement %s: %w", b.Period, err)
	}

	r.logger.DebugContext(ctx, "statement saved",
		"id", id,
		log.FieldRunID, st.RunID,
		log.FieldPeriod, b.Period.String(),
		log.FieldCount, len(b.Transactions))
	return id, nil
}

// ListStatements returns stored headers newest period first. An empty account lists
// every account.
func (r *SQLiteRepository) ListStatements(ctx context.Context, account string) ([]StatementRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, run_id, bank, account, year, month, opening_cents, closing_cents, tx_count, created_at
		FROM statements
		WHERE ? = '' OR account = ?
		ORDER BY year DESC, month DESC, id DESC`, account, account)
	if err != nil {
		return nil, fmt.Errorf("list statements: %w", err)
	}
	defer rows.Close()

	var out []StatementRow
	for rows.Next() {
		var (
			s       StatementRow
			created string
		)
		if err := rows.Scan(&s.ID, &s.RunID, &s.Bank, &s.Account, &s.Period.Year, &s.Period.Month,
			&s.Opening.Cents, &s.Closing.Cents, &s.Count, &created); err != nil {
			return nil, fmt.Errorf("scan statement: %w", err)
		}
		s.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate statements: %w", err)
	}
	return out, nil
}

// FindStatement returns the header stored for one run, account and month.
func (r *SQLiteRepository) FindStatement(ctx context.Context, account, runID string, p core.Period) (StatementRow, bool, error) {
	var (
		s       StatementRow
		created string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, run_id, bank, account, year, month, opening_cents, closing_cents, tx_count, created_at
		FROM statements
		WHERE account = ? AND run_id = ? AND year = ? AND month = ?`,
		account, runID, p.Year, p.Month).Scan(&s.ID, &s.RunID, &s.Bank, &s.Account, &s.Period.Year, &s.Period.Month,
		&s.Opening.Cents, &s.Closing.Cents, &s.Count, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return StatementRow{}, false, nil
	}
	if err != nil {
		return StatementRow{}, false, fmt.Errorf("find statement %s: %w", p, err)
	}
	s.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return s, true, nil
}

// LatestClosing returns the closing balance and period of the newest statement for
// account. ok is false when nothing is stored yet.
func (r *SQLiteRepository) LatestClosing(ctx context.Context, account string) (closing core.Money, period core.Period, ok bool, err error) {
	err = r.db.QueryRowContext(ctx, `
		SELECT closing_cents, year, month
		FROM statements
		WHERE account = ?
		ORDER BY year DESC, month DESC, id DESC
		LIMIT 1`, account).Scan(&closing.Cents, &period.Year, &period.Month)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Money{}, core.Period{}, false, nil
	}
	if err != nil {
		return core.Money{}, core.Period{}, false, fmt.Errorf("latest closing: %w", err)
	}
	return closing, period, true, nil
}

// ReadMonthOverview aggregates the newest stored statement for the given account and
// month. Categories keep the order they first appear in the statement.
func (r *SQLiteRepository) ReadMonthOverview(ctx context.Context, account string, year, month int) (core.Overview, error) {
	overview := core.Overview{Year: year, Month: month}
	if err := core.NewPeriod(year, month).Validate(); err != nil {
		return overview, err
	}

	var id int64
	err := r.db.QueryRowContext(ctx, `
		SELECT id FROM statements
		WHERE account = ? AND year = ? AND month = ?
		ORDER BY id DESC
		LIMIT 1`, account, year, month).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return overview, nil
	}
	if err != nil {
		return overview, fmt.Errorf("find statement: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT description,
		       SUM(amount_cents),
		       COUNT(*),
		       SUM(CASE WHEN amount_cents > 0 THEN amount_cents ELSE 0 END),
		       SUM(CASE WHEN amount_cents <= 0 THEN amount_cents ELSE 0 END)
		FROM statement_lines
		WHERE statement_id = ?
		GROUP BY description
		ORDER BY MIN(position)`, id)
	if err != nil {
		return overview, fmt.Errorf("get category sums: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ca              core.CategoryAmount
			credits, debits int64
		)
		if err := rows.Scan(&ca.Name, &ca.Amount.Cents, &ca.Count, &credits, &debits); err != nil {
			return overview, fmt.Errorf("scan category sum: %w", err)
		}
		overview.Credits.Cents += credits
		overview.Debits.Cents += debits
		overview.ByCategory = append(overview.ByCategory, ca)
	}
	if err := rows.Err(); err != nil {
		return overview, fmt.Errorf("iterate category sums: %w", err)
	}
	return overview, nil
}
