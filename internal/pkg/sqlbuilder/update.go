// Package sqlbuilder builds parameterized UPDATE statements from
// conditionally-present fields.
package sqlbuilder

import (
	"fmt"
	"strings"
)

// UpdateBuilder accumulates typed (column, value) pairs and renders a
// single UPDATE statement with positional placeholders. Assignments
// render in insertion order; the WHERE filter value is always the final
// positional parameter. Repository code relies on that ordering when it
// appends trailing args, so it is part of the builder's contract.
type UpdateBuilder struct {
	table   string
	columns []string
	exprs   []string
	args    []any
}

// NewUpdate creates a builder for the given table.
func NewUpdate(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

// Set adds a parameterized assignment for column.
func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.columns = append(b.columns, column)
	b.exprs = append(b.exprs, "")
	b.args = append(b.args, value)
	return b
}

// SetRaw adds an assignment with a literal SQL expression (e.g. NOW()).
// No parameter is bound for it.
func (b *UpdateBuilder) SetRaw(column, expr string) *UpdateBuilder {
	b.columns = append(b.columns, column)
	b.exprs = append(b.exprs, expr)
	return b
}

// Empty reports whether no parameterized assignments were added.
// Raw assignments alone (updated_at = NOW()) do not count as a real
// update.
func (b *UpdateBuilder) Empty() bool {
	return len(b.args) == 0
}

// Build renders the statement with a WHERE clause on filterColumn. The
// filter value is appended after all assignment parameters.
func (b *UpdateBuilder) Build(filterColumn string, filterValue any, returning string) (string, []any) {
	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(b.table)
	sb.WriteString(" SET ")

	argNum := 1
	for i, col := range b.columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(col)
		sb.WriteString(" = ")
		if b.exprs[i] != "" {
			sb.WriteString(b.exprs[i])
			continue
		}
		sb.WriteString(fmt.Sprintf("$%d", argNum))
		argNum++
	}

	sb.WriteString(fmt.Sprintf(" WHERE %s = $%d", filterColumn, argNum))
	args := append(append([]any{}, b.args...), filterValue)

	if returning != "" {
		sb.WriteString(" RETURNING ")
		sb.WriteString(returning)
	}

	return sb.String(), args
}
