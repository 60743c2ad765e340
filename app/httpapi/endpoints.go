package httpapi

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/features/command/bulkapprove"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/features/command/bulkreturn"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/features/command/cancelreservation"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/features/command/converttoloan"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/features/command/directloan"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/features/command/registeritem"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/features/command/reserve"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/features/command/returnloan"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/features/command/setmanualstatus"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/features/query/auditlog"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/features/query/holderholds"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/features/query/itemstatus"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/shared/shell"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

func parseBody(c *fiber.Ctx, target any) error {
	if err := c.BodyParser(target); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	return nil
}

// holdResponse renders a hold, or the closed hold when the handler reported an idempotent outcome.
func holdResponse(c *fiber.Ctx, message string, hold rental.Hold, result shell.HandlerResult) error {
	if result.Idempotent {
		return idempotentResponse(c, "hold was already closed, nothing changed", hold)
	}

	return successResponse(c, message, hold)
}

func (s *Server) registerItem(c *fiber.Ctx) error {
	var request RegisterItemRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	item, _, err := s.handlers.RegisterItem.Handle(c.UserContext(),
		registeritem.BuildCommand(request.ID, request.Name, request.Quantity))
	if err != nil {
		return err
	}

	return createdResponse(c, "item registered", item)
}

func (s *Server) itemStatus(c *fiber.Ctx) error {
	resolution, err := s.handlers.ItemStatus.Handle(c.UserContext(), itemstatus.BuildQuery(c.Params("itemId")))
	if err != nil {
		return err
	}

	return successResponse(c, "item status resolved", resolution)
}

func (s *Server) auditLog(c *fiber.Ctx) error {
	limit := uint64(0)

	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "limit must be a positive number")
		}

		limit = parsed
	}

	trail, err := s.handlers.AuditLog.Handle(c.UserContext(), auditlog.BuildQuery(c.Params("itemId"), uint(limit)))
	if err != nil {
		return err
	}

	return successResponse(c, "audit log retrieved", trail)
}

func (s *Server) setManualStatus(c *fiber.Ctx) error {
	var request ManualStatusRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	command, err := setmanualstatus.BuildCommand(c.Params("itemId"), request.Status, request.Actor, request.Detail)
	if err != nil {
		return err
	}

	item, result, err := s.handlers.SetManualStatus.Handle(c.UserContext(), command)
	if err != nil {
		return err
	}

	if result.Idempotent {
		return idempotentResponse(c, "manual status unchanged", item)
	}

	return successResponse(c, "manual status updated", item)
}

func (s *Server) reserve(c *fiber.Ctx) error {
	var request ReserveRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	hold, _, err := s.handlers.Reserve.Handle(c.UserContext(),
		reserve.BuildCommand(c.Params("itemId"), request.Holder()))
	if err != nil {
		return err
	}

	return createdResponse(c, "reservation created", ReserveResponse{HoldID: hold.ID, Hold: hold})
}

func (s *Server) directLoan(c *fiber.Ctx) error {
	var request StaffHolderRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	hold, _, err := s.handlers.DirectLoan.Handle(c.UserContext(),
		directloan.BuildCommand(c.Params("itemId"), request.Holder(), request.Actor))
	if err != nil {
		return err
	}

	return createdResponse(c, "loan created", hold)
}

func (s *Server) convertToLoan(c *fiber.Ctx) error {
	var request ActorRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	hold, _, err := s.handlers.ConvertToLoan.Handle(c.UserContext(),
		converttoloan.BuildCommand(c.Params("holdId"), request.Actor))
	if err != nil {
		return err
	}

	return successResponse(c, "reservation converted to loan", hold)
}

func (s *Server) returnLoan(c *fiber.Ctx) error {
	var request ActorRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	hold, result, err := s.handlers.ReturnLoan.Handle(c.UserContext(),
		returnloan.BuildCommand(c.Params("holdId"), request.Actor))
	if err != nil {
		return err
	}

	return holdResponse(c, "loan returned", hold, result)
}

func (s *Server) returnByHolder(c *fiber.Ctx) error {
	var request StaffHolderRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	hold, result, err := s.handlers.ReturnLoan.Handle(c.UserContext(),
		returnloan.BuildCommandByHolder(c.Params("itemId"), request.Holder(), request.Actor))
	if err != nil {
		return err
	}

	return holdResponse(c, "loan returned", hold, result)
}

func (s *Server) cancel(c *fiber.Ctx) error {
	var request ActorRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	hold, result, err := s.handlers.CancelReservation.Handle(c.UserContext(),
		cancelreservation.BuildCommand(c.Params("holdId"), request.Actor))
	if err != nil {
		return err
	}

	return holdResponse(c, "reservation canceled", hold, result)
}

func (s *Server) cancelByHolder(c *fiber.Ctx) error {
	var request HolderRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	hold, result, err := s.handlers.CancelReservation.Handle(c.UserContext(),
		cancelreservation.BuildCommandByHolder(c.Params("itemId"), request.Holder()))
	if err != nil {
		return err
	}

	return holdResponse(c, "reservation canceled", hold, result)
}

func (s *Server) holderHolds(c *fiber.Ctx) error {
	holder := HolderRequest{UserID: c.Query("userId"), GuestName: c.Query("guestName")}.Holder()

	result, err := s.handlers.HolderHolds.Handle(c.UserContext(), holderholds.BuildQuery(holder))
	if err != nil {
		return err
	}

	return successResponse(c, "holds retrieved", result)
}

func (s *Server) bulkApprove(c *fiber.Ctx) error {
	var request StaffHolderRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	result, handlerResult, err := s.handlers.BulkApprove.Handle(c.UserContext(),
		bulkapprove.BuildCommand(request.Holder(), request.Actor))
	if err != nil {
		return err
	}

	if handlerResult.Idempotent {
		return idempotentResponse(c, "no open reservations to approve", result)
	}

	return successResponse(c, "reservations approved", result)
}

func (s *Server) bulkReturn(c *fiber.Ctx) error {
	var request StaffHolderRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	result, handlerResult, err := s.handlers.BulkReturn.Handle(c.UserContext(),
		bulkreturn.BuildCommand(request.Holder(), request.Actor))
	if err != nil {
		return err
	}

	if handlerResult.Idempotent {
		return idempotentResponse(c, "no open loans to return", result)
	}

	return successResponse(c, "loans returned", result)
}
