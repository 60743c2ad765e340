package auditlog

const (
	queryType = "AuditLog"

	// DefaultLimit is used when a query asks for no limit.
	DefaultLimit uint = 100
)

// Query represents the intent to read the audit trail of one item.
type Query struct {
	ItemID string
	Limit  uint
}

// BuildQuery creates a new Query. A limit of 0 falls back to DefaultLimit.
func BuildQuery(itemID string, limit uint) Query {
	if limit == 0 {
		limit = DefaultLimit
	}

	return Query{
		ItemID: itemID,
		Limit:  limit,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
