package cancelreservation

import (
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

const (
	commandType = "CancelReservation"
)

// Command represents the intent to withdraw a reservation before pickup.
// Staff cancel by HoldID; a holder cancels their own reservation by ItemID.
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

// BuildCommand creates a Command that addresses the reservation by its hold id.
func BuildCommand(holdID string, actor string) Command {
	return Command{
		HoldID: holdID,
		Actor:  actor,
	}
}

// BuildCommandByHolder creates a Command for the holder's own open reservation on itemID.
func BuildCommandByHolder(itemID string, holder rental.Holder) Command {
	return Command{
		ItemID: itemID,
		Holder: holder,
	}
}
