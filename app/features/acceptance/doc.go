// Package acceptance holds the godog scenarios that drive the feature handlers
// against the in-memory engine.
package acceptance
