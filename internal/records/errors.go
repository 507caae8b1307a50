package records

import "errors"

// ErrMissingDedupKey indicates an upsert was attempted without a dedup key.
// This is a caller bug: the record is dropped, logged, and the batch
// continues.
var ErrMissingDedupKey = errors.New("record missing dedup key")

// ErrUnknownPredicate indicates a Find call named a predicate outside the
// closed set the store evaluates.
var ErrUnknownPredicate = errors.New("unknown predicate")
