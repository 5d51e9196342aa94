// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package query provides SQL WHERE-clause building utilities for the
// discovery package, reducing duplication between its filtered-list
// operations (the signature queue and the artist-linking queue).
package query

import (
	"strings"
)

// WhereBuilder constructs SQL WHERE clauses with parameterized arguments.
// It ensures consistent parameter handling across the discovery queue's
// filtered listings.
//
// Example usage:
//
//	wb := query.NewWhereBuilder()
//	wb.AddClause("cooldown_until IS NULL OR cooldown_until < current_timestamp")
//	wb.AddWorkMatched(true)
//	whereClause, args := wb.Build()
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates a new WhereBuilder instance.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []interface{}{},
	}
}

// AddClause adds a raw WHERE clause with its arguments.
// This is useful for custom conditions not covered by helper methods.
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddWorkMatched filters broadcast_logs rows by whether work_id has been
// resolved. Used by the artist-linking queue, which (unlike the
// signature Discovery Queue) is fed from every BroadcastLog rather than
// only the unmatched ones.
func (wb *WhereBuilder) AddWorkMatched(matched bool) *WhereBuilder {
	if matched {
		wb.clauses = append(wb.clauses, "work_id IS NOT NULL")
	} else {
		wb.clauses = append(wb.clauses, "work_id IS NULL")
	}
	return wb
}

// AddSignatures adds a signature filter using an IN clause.
// Generates "signature IN (?, ?, ...)" for batch signature lookups.
func (wb *WhereBuilder) AddSignatures(signatures []string) *WhereBuilder {
	if len(signatures) > 0 {
		placeholders := make([]string, len(signatures))
		for i, sig := range signatures {
			placeholders[i] = "?"
			wb.args = append(wb.args, sig)
		}
		wb.clauses = append(wb.clauses, "signature IN ("+strings.Join(placeholders, ", ")+")")
	}
	return wb
}

// Build constructs the final WHERE clause and returns it with arguments.
// Clauses are joined with "AND". Returns ("1=1", []) if no clauses were
// added, so callers can always append the result without special-casing
// the empty-filter case.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", []interface{}{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix returns the WHERE clause with a "WHERE " prefix.
func (wb *WhereBuilder) BuildWithPrefix() (string, []interface{}) {
	whereClause, args := wb.Build()
	return "WHERE " + whereClause, args
}

// IsEmpty returns true if no clauses have been added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}
