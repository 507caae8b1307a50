// Package records persists applicant records in SQLite and enforces the
// dedup and forward-only stage invariants the pipeline depends on: one record
// per dedup key, exact-duplicate submissions are no-ops, and questions and
// evaluations are never rewound once populated.
package records
