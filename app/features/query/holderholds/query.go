package holderholds

import (
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

const (
	queryType = "HolderHolds"
)

// Query represents the intent to list the open holds of a holder.
type Query struct {
	Holder rental.Holder
}

// BuildQuery creates a new Query with the provided holder.
func BuildQuery(holder rental.Holder) Query {
	return Query{
		Holder: holder,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
