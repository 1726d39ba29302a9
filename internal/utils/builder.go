// Package querybuilder assembles simple SQL statements with "?" placeholders.
// Callers rebind them for their driver, e.g. with sqlx.Rebind.
package querybuilder

import (
	"fmt"
	"strings"
)

type QueryBuilder interface {
	Select(cols ...string) QueryBuilder
	From(table string) QueryBuilder
	Where(clause string, args ...any) QueryBuilder
	And(clause string, args ...any) QueryBuilder
	Or(clause string, args ...any) QueryBuilder
	GroupBy(cols ...string) QueryBuilder
	OrderBy(col string, asc bool) QueryBuilder
	Limit(n int) QueryBuilder

	Insert(cols ...string) QueryBuilder
	Into(table string) QueryBuilder
	Values(values ...any) QueryBuilder
	OnConflictDoNothing(cols ...string) QueryBuilder

	Build() (string, []any, error)
}

type CondType int

const (
	CondTypeAnd CondType = iota + 1
	CondTypeOr
)

func (c CondType) ToString() string {
	switch c {
	case CondTypeAnd:
		return "AND"
	case CondTypeOr:
		return "OR"
	default:
		return ""
	}
}

type condition struct {
	condType CondType
	clause   string
	args     []any
}

type queryBuilder struct {
	schema     string
	table      string
	cols       []string
	conditions []condition
	groupBy    []string
	orderBy    []string
	limit      int
	isInsert   bool
	values     [][]any
	onConflict []string
}

func NewQueryBuilder(schema string) QueryBuilder {
	return &queryBuilder{schema: schema}
}

func (q *queryBuilder) Select(cols ...string) QueryBuilder {
	q.cols = append(q.cols, cols...)
	return q
}

func (q *queryBuilder) From(table string) QueryBuilder {
	q.table = table
	return q
}

func (q *queryBuilder) Where(clause string, args ...any) QueryBuilder {
	return q.And(clause, args...)
}

func (q *queryBuilder) And(clause string, args ...any) QueryBuilder {
	q.conditions = append(q.conditions, condition{condType: CondTypeAnd, clause: clause, args: args})
	return q
}

func (q *queryBuilder) Or(clause string, args ...any) QueryBuilder {
	q.conditions = append(q.conditions, condition{condType: CondTypeOr, clause: clause, args: args})
	return q
}

func (q *queryBuilder) GroupBy(cols ...string) QueryBuilder {
	q.groupBy = append(q.groupBy, cols...)
	return q
}

func (q *queryBuilder) OrderBy(col string, asc bool) QueryBuilder {
	orderVector := "ASC"
	if !asc {
		orderVector = "DESC"
	}
	q.orderBy = append(q.orderBy, fmt.Sprintf("%s %s", col, orderVector))
	return q
}

func (q *queryBuilder) Limit(n int) QueryBuilder {
	q.limit = n
	return q
}

func (q *queryBuilder) Insert(cols ...string) QueryBuilder {
	q.isInsert = true
	q.cols = cols
	return q
}

func (q *queryBuilder) Into(table string) QueryBuilder {
	q.table = table
	return q
}

func (q *queryBuilder) Values(values ...any) QueryBuilder {
	q.values = append(q.values, values)
	return q
}

func (q *queryBuilder) OnConflictDoNothing(cols ...string) QueryBuilder {
	q.onConflict = cols
	return q
}

func (q *queryBuilder) Build() (string, []any, error) {
	if q.table == "" {
		return "", nil, fmt.Errorf("querybuilder: no table")
	}
	if q.isInsert {
		return q.buildInsert()
	}
	return q.buildSelect()
}

func (q *queryBuilder) qualified() string {
	if q.schema == "" {
		return q.table
	}
	return q.schema + "." + q.table
}

func (q *queryBuilder) buildSelect() (string, []any, error) {
	if len(q.cols) == 0 {
		return "", nil, fmt.Errorf("querybuilder: no columns selected from %s", q.table)
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(q.cols, ", "), q.qualified())

	var args []any
	if len(q.conditions) > 0 {
		parts := make([]string, 0, len(q.conditions)*2)
		for i, cond := range q.conditions {
			if i > 0 {
				parts = append(parts, cond.condType.ToString())
			}
			parts = append(parts, cond.clause)
			args = append(args, cond.args...)
		}
		query += " WHERE " + strings.Join(parts, " ")
	}

	if len(q.groupBy) > 0 {
		query += fmt.Sprintf(" GROUP BY %s", strings.Join(q.groupBy, ", "))
	}

	if len(q.orderBy) > 0 {
		query += fmt.Sprintf(" ORDER BY %s", strings.Join(q.orderBy, ", "))
	}

	if q.limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.limit)
	}

	return query, args, nil
}

func (q *queryBuilder) buildInsert() (string, []any, error) {
	if len(q.values) == 0 || len(q.cols) == 0 {
		return "", nil, fmt.Errorf("querybuilder: empty insert into %s", q.table)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(q.cols)), ", ")
	tuples := make([]string, len(q.values))
	args := make([]any, 0, len(q.values)*len(q.cols))
	for i, row := range q.values {
		if len(row) != len(q.cols) {
			return "", nil, fmt.Errorf("querybuilder: row %d has %d values for %d columns", i, len(row), len(q.cols))
		}
		tuples[i] = "(" + placeholders + ")"
		args = append(args, row...)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", q.qualified(), strings.Join(q.cols, ", "), strings.Join(tuples, ", "))
	if len(q.onConflict) > 0 {
		query += fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", strings.Join(q.onConflict, ", "))
	}
	return query, args, nil
}
