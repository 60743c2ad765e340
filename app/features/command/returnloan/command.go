package returnloan

import (
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

const (
	commandType = "ReturnLoan"
)

// Command represents the intent to bring a lent copy back.
// The loan is addressed either by HoldID or by ItemID and Holder.
type Command struct {
	HoldID string
	ItemID string
	Holder rental.Holder
	Actor  string
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a Command that addresses the loan by its hold id.
func BuildCommand(holdID string, actor string) Command {
	return Command{
		HoldID: holdID,
		Actor:  actor,
	}
}

// BuildCommandByHolder creates a Command that addresses the open loan of holder on itemID.
func BuildCommandByHolder(itemID string, holder rental.Holder, actor string) Command {
	return Command{
		ItemID: itemID,
		Holder: holder,
		Actor:  actor,
	}
}

func (c Command) byHolder() bool {
	return c.HoldID == ""
}
