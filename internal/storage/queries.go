package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Contribution struct {
	ID             int64
	UserID         int64
	Username       sql.NullString
	Year           int64
	Month          string
	Category       string
	MemberName     sql.NullString
	Amount         string
	ProofPath      string
	RecordedAt     string
	RecordedAtUnix int64
}

const contributionColumns = `id, user_id, username, year, month, category, member_name, amount, proof_path, recorded_at, recorded_at_unix`

func scanContribution(row interface{ Scan(dest ...any) error }) (Contribution, error) {
	var c Contribution
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Username,
		&c.Year,
		&c.Month,
		&c.Category,
		&c.MemberName,
		&c.Amount,
		&c.ProofPath,
		&c.RecordedAt,
		&c.RecordedAtUnix,
	)
	return c, err
}

const createContribution = `INSERT INTO contributions (
    user_id, username, year, month, category, member_name, amount, proof_path, recorded_at, recorded_at_unix
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + contributionColumns

type CreateContributionParams struct {
	UserID         int64
	Username       sql.NullString
	Year           int64
	Month          string
	Category       string
	MemberName     sql.NullString
	Amount         string
	ProofPath      string
	RecordedAt     string
	RecordedAtUnix int64
}

func (q *Queries) CreateContribution(ctx context.Context, arg CreateContributionParams) (Contribution, error) {
	row := q.db.QueryRowContext(ctx, createContribution,
		arg.UserID,
		arg.Username,
		arg.Year,
		arg.Month,
		arg.Category,
		arg.MemberName,
		arg.Amount,
		arg.ProofPath,
		arg.RecordedAt,
		arg.RecordedAtUnix,
	)
	return scanContribution(row)
}

const getContribution = `SELECT ` + contributionColumns + ` FROM contributions WHERE id = ?`

func (q *Queries) GetContribution(ctx context.Context, id int64) (Contribution, error) {
	row := q.db.QueryRowContext(ctx, getContribution, id)
	return scanContribution(row)
}

const listContributions = `SELECT ` + contributionColumns + ` FROM contributions
ORDER BY recorded_at_unix DESC, id DESC`

func (q *Queries) ListContributions(ctx context.Context) ([]Contribution, error) {
	return q.list(ctx, listContributions)
}

const listContributionsByUser = `SELECT ` + contributionColumns + ` FROM contributions
WHERE user_id = ?
ORDER BY recorded_at_unix DESC, id DESC`

func (q *Queries) ListContributionsByUser(ctx context.Context, userID int64) ([]Contribution, error) {
	return q.list(ctx, listContributionsByUser, userID)
}

func (q *Queries) list(ctx context.Context, query string, args ...interface{}) ([]Contribution, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Contribution
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Amounts are summed by the caller so totals stay exact decimals.
const listPeriodAmounts = `SELECT category, amount
FROM contributions
WHERE year = ? AND month = ?
ORDER BY category, id`

type ListPeriodAmountsRow struct {
	Category string
	Amount   string
}

func (q *Queries) ListPeriodAmounts(ctx context.Context, year int64, month string) ([]ListPeriodAmountsRow, error) {
	rows, err := q.db.QueryContext(ctx, listPeriodAmounts, year, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListPeriodAmountsRow
	for rows.Next() {
		var i ListPeriodAmountsRow
		if err := rows.Scan(&i.Category, &i.Amount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
