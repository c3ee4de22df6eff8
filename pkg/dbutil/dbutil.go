package dbutil

import (
	"context"
	"database/sql"
	"time"

	rgerrors "github.com/lxopi/repgo/pkg/common/errors"
)

// Querier is the subset of database/sql needed by Query and Exec. Both
// *sql.DB and *sql.Tx satisfy it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// QueryResult records one executed query: what ran, when, how long it took,
// and everything it returned. The whole record marshals cleanly with
// pkg/jsonutil, which makes query audit trails one line of code.
type QueryResult struct {
	QueryTime time.Time       `json:"query_time"`
	Duration  time.Duration   `json:"duration"`
	Query     string          `json:"query"`
	Columns   []string        `json:"columns"`
	Rows      [][]interface{} `json:"rows"`
	RowCount  int             `json:"row_count"`
	Err       error           `json:"err"`
}

// ExecResult records one executed statement.
type ExecResult struct {
	QueryTime    time.Time     `json:"query_time"`
	Duration     time.Duration `json:"duration"`
	Query        string        `json:"query"`
	RowsAffected int64         `json:"rows_affected"`
	Err          error         `json:"err"`
}

// Query runs a query and captures every row generically. The returned
// record always carries the query text and timing; on failure its Err field
// matches the returned error.
func Query(ctx context.Context, q Querier, query string, args ...interface{}) (*QueryResult, error) {
	result := &QueryResult{
		QueryTime: time.Now(),
		Query:     query,
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return result.fail("query", err)
	}
	defer rows.Close()

	result.Columns, err = rows.Columns()
	if err != nil {
		return result.fail("query", err)
	}

	for rows.Next() {
		values := make([]interface{}, len(result.Columns))
		scan := make([]interface{}, len(result.Columns))
		for i := range values {
			scan[i] = &values[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return result.fail("scan", err)
		}

		for i, v := range values {
			// Drivers hand text back as raw bytes; strings serialize better.
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return result.fail("query", err)
	}

	result.RowCount = len(result.Rows)
	result.Duration = time.Since(result.QueryTime)
	return result, nil
}

// Exec runs a statement and records its effect.
func Exec(ctx context.Context, q Querier, query string, args ...interface{}) (*ExecResult, error) {
	result := &ExecResult{
		QueryTime: time.Now(),
		Query:     query,
	}

	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		result.Duration = time.Since(result.QueryTime)
		result.Err = rgerrors.NewOperationError("dbutil", "exec", err)
		return result, result.Err
	}

	// Not every driver reports affected rows; treat that as zero.
	if affected, err := res.RowsAffected(); err == nil {
		result.RowsAffected = affected
	}

	result.Duration = time.Since(result.QueryTime)
	return result, nil
}

func (r *QueryResult) fail(op string, err error) (*QueryResult, error) {
	r.Duration = time.Since(r.QueryTime)
	r.Err = rgerrors.NewOperationError("dbutil", op, err).WithContext("query: " + r.Query)
	return r, r.Err
}
