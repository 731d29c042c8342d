package db

import (
	"context"
	"database/sql/driver"
	"fmt"
	"log/slog"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// NewTracingConnector opens sqlite3 connections whose statements are logged
// at debug level as "archive sql" with op, sql and args attributes.
// Use with sql.OpenDB. A nil logger means slog.Default().
func NewTracingConnector(dsn string, logger *slog.Logger) driver.Connector {
	if logger == nil {
		logger = slog.Default()
	}
	return &tracingConnector{dsn: dsn, logger: logger, driver: &sqlite3.SQLiteDriver{}}
}

type tracingConnector struct {
	dsn    string
	logger *slog.Logger
	driver *sqlite3.SQLiteDriver
}

func (c *tracingConnector) Connect(context.Context) (driver.Conn, error) {
	conn, err := c.driver.Open(c.dsn)
	if err != nil {
		return nil, err
	}
	return &tracedConn{Conn: conn, logger: c.logger}, nil
}

func (c *tracingConnector) Driver() driver.Driver { return c.driver }

// tracedConn routes every statement through Prepare so it can be logged.
type tracedConn struct {
	driver.Conn
	logger *slog.Logger
}

func (c *tracedConn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

func (c *tracedConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	var (
		stmt driver.Stmt
		err  error
	)
	if p, ok := c.Conn.(driver.ConnPrepareContext); ok {
		stmt, err = p.PrepareContext(ctx, query)
	} else {
		stmt, err = c.Conn.Prepare(query)
	}
	if err != nil {
		return nil, err
	}
	return &tracedStmt{Stmt: stmt, query: query, logger: c.logger}, nil
}

// ExecContext keeps multi-statement scripts intact; the prepared path only
// runs the first statement.
func (c *tracedConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	e, ok := c.Conn.(driver.ExecerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	traceSQL(c.logger, "exec", query, namedToStrings(args))
	return e.ExecContext(ctx, query, args)
}

func (c *tracedConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	q, ok := c.Conn.(driver.QueryerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	traceSQL(c.logger, "query", query, namedToStrings(args))
	return q.QueryContext(ctx, query, args)
}

func (c *tracedConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if b, ok := c.Conn.(driver.ConnBeginTx); ok {
		return b.BeginTx(ctx, opts)
	}
	//nolint:staticcheck // SA1019: fallback for drivers without ConnBeginTx
	return c.Conn.Begin()
}

type tracedStmt struct {
	driver.Stmt
	query  string
	logger *slog.Logger
}

func (s *tracedStmt) Exec(args []driver.Value) (driver.Result, error) {
	s.trace("exec", valuesToStrings(args))
	//nolint:staticcheck // SA1019: driver.Stmt contract
	return s.Stmt.Exec(args)
}

func (s *tracedStmt) Query(args []driver.Value) (driver.Rows, error) {
	s.trace("query", valuesToStrings(args))
	//nolint:staticcheck // SA1019: driver.Stmt contract
	return s.Stmt.Query(args)
}

func (s *tracedStmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	s.trace("exec", namedToStrings(args))
	if e, ok := s.Stmt.(driver.StmtExecContext); ok {
		return e.ExecContext(ctx, args)
	}
	//nolint:staticcheck // SA1019: fallback for statements without StmtExecContext
	return s.Stmt.Exec(namedToValues(args))
}

func (s *tracedStmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	s.trace("query", namedToStrings(args))
	if q, ok := s.Stmt.(driver.StmtQueryContext); ok {
		return q.QueryContext(ctx, args)
	}
	//nolint:staticcheck // SA1019: fallback for statements without StmtQueryContext
	return s.Stmt.Query(namedToValues(args))
}

func (s *tracedStmt) trace(op string, args []string) {
	traceSQL(s.logger, op, s.query, args)
}

func traceSQL(logger *slog.Logger, op, query string, args []string) {
	logger.Debug("archive sql", "op", op, "sql", query, "args", args)
}

func valuesToStrings(args []driver.Value) []string {
	out := make([]string, len(args))
	for i, v := range args {
		out[i] = formatArg(v)
	}
	return out
}

func namedToStrings(args []driver.NamedValue) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = formatArg(a.Value)
		if a.Name != "" {
			out[i] = a.Name + "=" + out[i]
		}
	}
	return out
}

func namedToValues(args []driver.NamedValue) []driver.Value {
	out := make([]driver.Value, len(args))
	for i := range args {
		out[i] = args[i].Value
	}
	return out
}

func formatArg(v driver.Value) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
