package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"studymate/internal/model"
	"studymate/internal/service"
)

// documentOperation adapts a per-document AI call into a handler.
func documentOperation(op func(ctx context.Context, id string) (*model.AIResult, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid document id")
		}
		res, err := op(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// Summarize
//
// @Summary  Summarize a document
// @Tags     ai
// @Produce  json
// @Param    id  path string true "Document id"
// @Success  200 {object} model.AIResult
// @Failure  502 {object} errorPayload
// @Router   /api/documents/{id}/summarize [post]
func Summarize(svc service.StudyService) fiber.Handler {
	return documentOperation(svc.Summarize)
}

// Explain
//
// @Summary  Explain a document
// @Tags     ai
// @Produce  json
// @Param    id  path string true "Document id"
// @Success  200 {object} model.AIResult
// @Router   /api/documents/{id}/explain [post]
func Explain(svc service.StudyService) fiber.Handler {
	return documentOperation(svc.Explain)
}

// Quiz returns the generated quiz with its questions split out.
//
// @Summary  Generate a quiz
// @Tags     ai
// @Produce  json
// @Param    id  path string true "Document id"
// @Success  200 {object} service.Quiz
// @Router   /api/documents/{id}/quiz [post]
func Quiz(svc service.StudyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid document id")
		}
		q, err := svc.Quiz(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(q)
	}
}

type askRequest struct {
	Question string `json:"question"`
}

// Ask answers a question about a document.
//
// @Summary  Ask about a document
// @Tags     ai
// @Accept   json
// @Produce  json
// @Param    id    path string     true "Document id"
// @Param    body  body askRequest true "Question"
// @Success  200 {object} model.AIResult
// @Failure  400 {object} errorPayload
// @Router   /api/documents/{id}/ask [post]
func Ask(svc service.StudyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid document id")
		}
		var req askRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		res, err := svc.Ask(c.UserContext(), id, req.Question)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}
