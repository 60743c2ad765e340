// Package itemstatus implements the item status query used by the catalog display.
//
// Resolving a status is not a pure read: overdue reservations of the item are
// reclaimed first, so the returned available count never includes expired holds.
// A reconciliation gap is reported in the result, it never fails the query.
package itemstatus
