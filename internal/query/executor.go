package query

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"daapshare/internal/logging"
	"daapshare/internal/services"
)

// Executor runs a query and returns every cell of the result, row-major.
type Executor interface {
	Query(ctx context.Context, statement string) ([]string, error)
}

// SQLExecutor runs queries against a database/sql handle.
type SQLExecutor struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLExecutor wraps db. A nil logger discards output.
func NewSQLExecutor(db *sql.DB, logger *slog.Logger) *SQLExecutor {
	return &SQLExecutor{db: db, logger: logging.NewComponentLogger(logger, "query")}
}

// Query flattens the result set. NULL cells become empty strings.
func (e *SQLExecutor) Query(ctx context.Context, statement string) ([]string, error) {
	if e == nil || e.db == nil {
		return nil, services.Wrap(services.ErrConfiguration, "query", "sql", "database unavailable", nil)
	}
	e.logger.Debug("sql query", logging.String("statement", statement))

	rows, err := e.db.QueryContext(ctx, statement)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "query", "sql", statement, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	cells := make([]sql.NullString, len(columns))
	dest := make([]any, len(columns))
	for i := range cells {
		dest[i] = &cells[i]
	}

	var out []string
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for _, cell := range cells {
			out = append(out, cell.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrTransient, "query", "sql", "iterate rows", err)
	}
	return out, nil
}
