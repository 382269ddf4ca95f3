// Package core defines the shared language of the olist feature pipeline.
//
// This package contains:
//   - Raw entity records (Order, OrderItem, OrderReview, ...) and the Dataset bundle
//   - The static entity catalog (logical name, file name, required columns)
//   - The load-time Filter predicate
//   - The error taxonomy (MissingFileError, EmptyInputError, SchemaMismatchError)
//   - Service contracts shared across packages (Adapter, Store, Table)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
