// Package shell holds the infrastructure shared by the command and query feature slices:
// handler contracts, retry with exponential backoff, handler results and observability helpers.
package shell
