package itemstatus

const (
	queryType = "ItemStatus"
)

// Query represents the intent to see the current status of one catalog item.
type Query struct {
	ItemID string
}

// BuildQuery creates a new Query with the provided item ID.
func BuildQuery(itemID string) Query {
	return Query{
		ItemID: itemID,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
