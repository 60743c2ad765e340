package httpapi

import (
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// HolderRequest identifies a member by user id or a guest by name.
type HolderRequest struct {
	UserID    string `json:"userId"`
	GuestName string `json:"guestName"`
}

// Holder converts the request into a rental.Holder. Validation happens in the engine.
func (r HolderRequest) Holder() rental.Holder {
	return rental.Holder{UserID: r.UserID, GuestName: r.GuestName}
}

// ReserveRequest is the body of a kiosk reservation.
type ReserveRequest struct {
	HolderRequest
}

// StaffHolderRequest is the body of staff actions addressed by holder.
type StaffHolderRequest struct {
	HolderRequest
	Actor string `json:"actor"`
}

// ActorRequest is the body of staff actions addressed by hold id.
type ActorRequest struct {
	Actor string `json:"actor"`
}

// RegisterItemRequest is the body of a catalog registration.
type RegisterItemRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// ManualStatusRequest sets (LOST, MAINTENANCE) or clears ("") the manual status of an item.
type ManualStatusRequest struct {
	Status string `json:"status"`
	Actor  string `json:"actor"`
	Detail string `json:"detail"`
}

// ReserveResponse is the result of a reservation.
type ReserveResponse struct {
	HoldID string      `json:"holdId"`
	Hold   rental.Hold `json:"hold"`
}
