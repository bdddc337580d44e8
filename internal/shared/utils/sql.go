package utils

import (
	"fmt"
	"strings"
)

// WhereBuilder accumulates AND-ed SQL predicates with positional pgx arguments.
type WhereBuilder struct {
	clauses []string
	args    []any
}

// Add appends a predicate. Each "?" in clause is replaced by the next $n placeholder.
func (w *WhereBuilder) Add(clause string, args ...any) {
	for _, a := range args {
		w.args = append(w.args, a)
		clause = strings.Replace(clause, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}
	w.clauses = append(w.clauses, clause)
}

// SQL returns " WHERE a AND b" or an empty string.
func (w *WhereBuilder) SQL() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + JoinWithAnd(w.clauses)
}

func (w *WhereBuilder) Args() []any {
	return w.args
}

// Next returns the placeholder index the next argument would take.
func (w *WhereBuilder) Next() int {
	return len(w.args) + 1
}

// JoinWithAnd joins a slice of strings with AND operator
func JoinWithAnd(clauses []string) string {
	return strings.Join(clauses, " AND ")
}
