package bulkreturn

import (
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

const (
	commandType = "BulkReturnLoans"
)

// Command represents the intent to take back every lent copy of one holder at once.
type Command struct {
	Holder rental.Holder
	Actor  string
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(holder rental.Holder, actor string) Command {
	return Command{
		Holder: holder,
		Actor:  actor,
	}
}
