// Package specification holds composable query predicates for the gorm
// repositories. Repositories accept a list of specifications and apply them
// in order, so callers combine filters, ordering, and pagination without the
// repository growing a method per query shape.
package specification

import "gorm.io/gorm"

// Specification narrows or shapes a gorm query.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
