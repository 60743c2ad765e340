package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// Error codes of the API envelope.
const (
	CodeOutOfStock         = "OUT_OF_STOCK"
	CodeDuplicateHold      = "DUPLICATE_HOLD"
	CodeWrongKind          = "WRONG_KIND"
	CodeReservationExpired = "RESERVATION_EXPIRED"
	CodeNotYetExpired      = "NOT_YET_EXPIRED"
	CodeItemWithdrawn      = "ITEM_WITHDRAWN"
	CodeLedgerInvariant    = "LEDGER_INVARIANT"
	CodeHoldClosed         = "HOLD_CLOSED"
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidHolder      = "INVALID_HOLDER"
	CodeBadRequest         = "BAD_REQUEST"
	CodeInternal           = "INTERNAL_SERVER_ERROR"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// Ordered: the first match wins.
var errorMappings = []errorMapping{
	{rental.ErrOutOfStock, fiber.StatusConflict, CodeOutOfStock},
	{rental.ErrDuplicateHold, fiber.StatusConflict, CodeDuplicateHold},
	{rental.ErrWrongKind, fiber.StatusConflict, CodeWrongKind},
	{rental.ErrReservationExpired, fiber.StatusConflict, CodeReservationExpired},
	{rental.ErrNotYetExpired, fiber.StatusConflict, CodeNotYetExpired},
	{rental.ErrItemWithdrawn, fiber.StatusConflict, CodeItemWithdrawn},
	{rental.ErrLedgerInvariant, fiber.StatusConflict, CodeLedgerInvariant},
	{rental.ErrAlreadyClosed, fiber.StatusConflict, CodeHoldClosed},
	{rental.ErrHoldNotFound, fiber.StatusNotFound, CodeNotFound},
	{rental.ErrItemNotFound, fiber.StatusNotFound, CodeNotFound},
	{rental.ErrInvalidHolder, fiber.StatusBadRequest, CodeInvalidHolder},
	{rental.ErrEmptyItemID, fiber.StatusBadRequest, CodeBadRequest},
	{rental.ErrEmptyActor, fiber.StatusBadRequest, CodeBadRequest},
	{rental.ErrInvalidQuantity, fiber.StatusBadRequest, CodeBadRequest},
	{rental.ErrInvalidManualStatus, fiber.StatusBadRequest, CodeBadRequest},
}

// StatusAndCode maps an operation error to an HTTP status and an envelope error code.
func StatusAndCode(err error) (int, string) {
	for _, mapping := range errorMappings {
		if errors.Is(err, mapping.target) {
			return mapping.status, mapping.code
		}
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch {
		case fiberErr.Code == fiber.StatusNotFound:
			return fiberErr.Code, CodeNotFound
		case fiberErr.Code < fiber.StatusInternalServerError:
			return fiberErr.Code, CodeBadRequest
		}
	}

	return fiber.StatusInternalServerError, CodeInternal
}
