// Package reserve implements the Reserve use case: a member or guest claims
// one copy of a game for a short time before picking it up at the counter.
//
// The claim succeeds only if a copy is free after overdue reservations of the
// item have been reclaimed. Out of stock and duplicate holds are rejections,
// not failures, and are never retried.
package reserve
