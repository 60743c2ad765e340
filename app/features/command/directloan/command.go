package directloan

import (
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

const (
	commandType = "DirectLoan"
)

// Command represents the intent of staff to hand a copy directly to a holder, skipping the reservation.
type Command struct {
	ItemID string
	Holder rental.Holder
	Actor  string
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(itemID string, holder rental.Holder, actor string) Command {
	return Command{
		ItemID: itemID,
		Holder: holder,
		Actor:  actor,
	}
}
