package registeritem

const (
	commandType = "RegisterItem"
)

// Command represents the intent of the catalog to make copies of a game title rentable.
// Registering an existing item changes its quantity and shifts its available count by the same delta.
type Command struct {
	ItemID   string
	Name     string
	Quantity int
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(itemID string, name string, quantity int) Command {
	return Command{
		ItemID:   itemID,
		Name:     name,
		Quantity: quantity,
	}
}
