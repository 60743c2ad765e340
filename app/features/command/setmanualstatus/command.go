package setmanualstatus

import (
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

const (
	commandType = "SetManualStatus"
)

// Command represents the intent of staff to withdraw an item (LOST, MAINTENANCE) or to put it back into circulation.
// A nil Status clears the override.
type Command struct {
	ItemID string
	Status *rental.ManualStatus
	Actor  string
	Detail string
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command from the raw status string. An empty status clears the override.
func BuildCommand(itemID string, status string, actor string, detail string) (Command, error) {
	command := Command{
		ItemID: itemID,
		Actor:  actor,
		Detail: detail,
	}

	if status == "" {
		return command, nil
	}

	parsed, err := rental.ParseManualStatus(status)
	if err != nil {
		return Command{}, err
	}

	command.Status = &parsed

	return command, nil
}

func (c Command) sameStatusAs(item rental.CatalogItem) bool {
	switch {
	case c.Status == nil && item.ManualStatus == nil:
		return true
	case c.Status == nil || item.ManualStatus == nil:
		return false
	default:
		return *c.Status == *item.ManualStatus
	}
}
