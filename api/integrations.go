package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/chatspace-app/chatspace/pkg/integration"
	"github.com/chatspace-app/chatspace/pkg/integration/registry"
	"github.com/chatspace-app/chatspace/pkg/push"
	"github.com/chatspace-app/chatspace/pkg/storage"
)

func (s *Server) handleListIntegrations(c *fiber.Ctx) error {
	summaries, err := s.registry.Configured(c.UserContext())
	if err != nil {
		s.logger.Error("failed to list integrations", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "failed to list integrations",
		})
	}

	if summaries == nil {
		summaries = []integration.Summary{}
	}

	return c.JSON(IntegrationListResponse{
		Count:        len(summaries),
		Integrations: summaries,
		Supported:    s.registry.Supported(),
	})
}

func (s *Server) handlePutIntegration(c *fiber.Ctx) error {
	key := storage.NormalizeKey(c.Params("key"))
	if !s.registry.IsSupported(key) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "unsupported integration",
			Message: "Supported integrations: " + strings.Join(s.registry.Supported(), ", "),
		})
	}

	var req PutIntegrationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "invalid request body",
		})
	}

	cfg := integration.Config{
		Key:      key,
		Instance: strings.TrimSpace(req.Instance),
		APIKey:   strings.TrimSpace(req.APIKey),
	}

	if err := s.store.Put(c.UserContext(), cfg); err != nil {
		if errors.Is(err, integration.ErrInvalidConfig) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error:   "invalid integration config",
				Message: err.Error(),
			})
		}
		s.logger.Error("failed to store integration", "integration", key, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "failed to store integration",
		})
	}

	s.logger.Info("integration saved", "integration", key, "instance", cfg.Instance)
	return c.JSON(cfg.Summary())
}

func (s *Server) handleDeleteIntegration(c *fiber.Ctx) error {
	key := storage.NormalizeKey(c.Params("key"))

	if err := s.store.Delete(c.UserContext(), key); err != nil {
		if storage.IsNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Error: "integration not configured",
			})
		}
		s.logger.Error("failed to delete integration", "integration", key, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "failed to delete integration",
		})
	}

	s.logger.Info("integration removed", "integration", key)
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handlePush(c *fiber.Ctx) error {
	key := c.Params("key")

	var req PushRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "invalid request body",
		})
	}
	if strings.TrimSpace(req.Content) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "content is required",
		})
	}

	res, err := s.dispatcher.Push(c.UserContext(), key, req.Content, req.Title)
	if err != nil {
		status, body := pushErrorResponse(err)
		if status == fiber.StatusInternalServerError {
			s.logger.Error("push failed", "integration", key, "error", err)
		}
		return c.Status(status).JSON(body)
	}

	return c.Status(fiber.StatusCreated).JSON(PushResponse{
		Key:        res.Key,
		Reference:  res.Reference,
		DurationMs: res.Duration.Milliseconds(),
	})
}

// pushErrorResponse maps a dispatcher error onto a status and body.
func pushErrorResponse(err error) (int, ErrorResponse) {
	body := ErrorResponse{Error: err.Error(), Message: push.UserMessage(err)}

	switch {
	case errors.Is(err, push.ErrInFlight):
		return fiber.StatusConflict, body
	case integration.IsNotConfigured(err):
		return fiber.StatusNotFound, body
	case errors.Is(err, registry.ErrUnsupported):
		return fiber.StatusBadRequest, body
	}

	pe, ok := integration.AsPushError(err)
	if !ok {
		return fiber.StatusInternalServerError, body
	}

	body.Kind = pe.Kind.String()
	body.Status = pe.Status
	if pe.Kind == integration.KindTimeout {
		return http.StatusGatewayTimeout, body
	}
	return fiber.StatusBadGateway, body
}
