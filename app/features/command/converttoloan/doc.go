// Package converttoloan implements the pickup of a reserved copy.
//
// Converting keeps the copy claimed, so the available count does not move.
// A reservation whose deadline has passed is expired on the spot and the
// conversion is rejected with ErrReservationExpired; the expired hold is
// still returned so staff can see what happened.
package converttoloan
