// Package rentaltest provides Given-style fixtures over the in-memory engine
// for tests of the application layer, the HTTP API and the acceptance scenarios.
package rentaltest
