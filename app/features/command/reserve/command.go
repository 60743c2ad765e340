package reserve

import (
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

const (
	commandType = "Reserve"
)

// Command represents the intent to reserve one copy of an item.
type Command struct {
	ItemID string
	Holder rental.Holder
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(itemID string, holder rental.Holder) Command {
	return Command{
		ItemID: itemID,
		Holder: holder,
	}
}
