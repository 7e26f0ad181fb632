package api

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/chatspace-app/chatspace/pkg/interop"
)

func (s *Server) spaceReady() bool {
	return s.config.Space != nil && s.config.Space.IsSetup()
}

func (s *Server) handleActionsConfig(c *fiber.Ctx) error {
	return c.JSON(ActionsConfigResponse{IsSetup: s.spaceReady()})
}

func (s *Server) handleListActions(c *fiber.Ctx) error {
	if !s.spaceReady() {
		return spaceNotSetup(c)
	}

	actions, err := s.config.Space.ListActions(c.UserContext())
	if err != nil {
		return s.spaceError(c, err)
	}

	return c.JSON(ActionListResponse{Count: len(actions), Actions: actions})
}

func (s *Server) handleInvokeAction(c *fiber.Ctx) error {
	if !s.spaceReady() {
		return spaceNotSetup(c)
	}

	var payload any
	if body := c.Body(); len(body) > 0 {
		if !json.Valid(body) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error: "payload must be valid JSON",
			})
		}
		payload = append(json.RawMessage(nil), body...)
	}

	out, err := s.config.Space.InvokeAction(c.UserContext(), c.Params("instance"), c.Params("action"), payload)
	if err != nil {
		return s.spaceError(c, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(out)
}

func spaceNotSetup(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
		Error:   interop.ErrNotSetup.Error(),
		Message: "Space access token is not configured.",
	})
}

func (s *Server) spaceError(c *fiber.Ctx, err error) error {
	var apiErr *interop.Error
	if errors.As(err, &apiErr) {
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{
			Error:  err.Error(),
			Status: apiErr.Status,
		})
	}

	s.logger.Error("space request failed", "error", err)
	return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{
		Error:   err.Error(),
		Message: "Could not reach Space.",
	})
}
