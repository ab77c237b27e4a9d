package store

import (
	"database/sql"
	"strings"
)

// Executor abstracts *sql.DB and *sql.Tx so repository methods can run
// either against the pool or inside an orchestrator-managed transaction.
type Executor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// BaseRepository provides the executor-selection plumbing shared by every
// repository in this package.
type BaseRepository struct {
	db *DB
	tx *Tx
}

// NewBaseRepository binds a repository to the store's connection pool.
func NewBaseRepository(db *DB) BaseRepository {
	return BaseRepository{db: db}
}

// WithTx returns a repository bound to tx instead of the pool — every
// batch write in this package runs inside one such transaction so a
// mid-batch failure rolls back the whole batch (spec.md §4.1).
func (r BaseRepository) WithTx(tx *Tx) BaseRepository {
	return BaseRepository{db: r.db, tx: tx}
}

// BeginTx starts a new transaction against the bound pool.
func (r BaseRepository) BeginTx() (*Tx, error) {
	return r.db.BeginTx()
}

func (r BaseRepository) exec() Executor {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// QueryBuilder builds parameterized SQL safely — every value is bound as a
// `?` placeholder, never interpolated into the query text (see DESIGN.md's
// "bound parameters uniformly" decision).
type QueryBuilder struct {
	selectFields []string
	fromTable    string
	joins        []string
	whereClause  []string
	orderBy      []string
	limit        *int
	args         []interface{}
}

// NewQueryBuilder starts a new query.
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{}
}

// Select adds SELECT fields.
func (qb *QueryBuilder) Select(fields ...string) *QueryBuilder {
	qb.selectFields = append(qb.selectFields, fields...)
	return qb
}

// From sets the FROM clause, e.g. "files f".
func (qb *QueryBuilder) From(table string) *QueryBuilder {
	qb.fromTable = table
	return qb
}

// Join adds a JOIN clause verbatim.
func (qb *QueryBuilder) Join(join string) *QueryBuilder {
	qb.joins = append(qb.joins, join)
	return qb
}

// Where adds a WHERE condition containing `?` placeholders bound to args.
func (qb *QueryBuilder) Where(condition string, args ...interface{}) *QueryBuilder {
	qb.whereClause = append(qb.whereClause, condition)
	qb.args = append(qb.args, args...)
	return qb
}

// OrderBy adds an ORDER BY expression.
func (qb *QueryBuilder) OrderBy(orderBy string) *QueryBuilder {
	qb.orderBy = append(qb.orderBy, orderBy)
	return qb
}

// Limit sets the row cap.
func (qb *QueryBuilder) Limit(limit int) *QueryBuilder {
	qb.limit = &limit
	return qb
}

// Build renders the query text and its bound argument list.
func (qb *QueryBuilder) Build() (string, []interface{}) {
	var q strings.Builder

	if len(qb.selectFields) > 0 {
		q.WriteString("SELECT ")
		q.WriteString(strings.Join(qb.selectFields, ", "))
	} else {
		q.WriteString("SELECT *")
	}

	if qb.fromTable != "" {
		q.WriteString(" FROM ")
		q.WriteString(qb.fromTable)
	}
	for _, j := range qb.joins {
		q.WriteString(" ")
		q.WriteString(j)
	}
	if len(qb.whereClause) > 0 {
		q.WriteString(" WHERE ")
		q.WriteString(strings.Join(qb.whereClause, " AND "))
	}
	if len(qb.orderBy) > 0 {
		q.WriteString(" ORDER BY ")
		q.WriteString(strings.Join(qb.orderBy, ", "))
	}
	args := qb.args
	if qb.limit != nil {
		q.WriteString(" LIMIT ?")
		args = append(args, *qb.limit)
	}
	return q.String(), args
}

// placeholders returns "?, ?, ..." for n values, for IN-clause construction.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// chunkStrings splits a slice into pieces of at most size (batch-boundary
// helper used by DeleteEntries to respect spec.md's 1,000-row batches).
func chunkStrings(items []string, size int) [][]string {
	if size <= 0 {
		size = len(items)
	}
	var out [][]string
	for len(items) > 0 {
		n := size
		if n > len(items) {
			n = len(items)
		}
		out = append(out, items[:n])
		items = items[n:]
	}
	return out
}
