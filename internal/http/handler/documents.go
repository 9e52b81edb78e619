package handler

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"studymate/internal/service"
)

// documentID returns the unescaped :id parameter. Ids may be storage paths containing "/".
func documentID(c *fiber.Ctx) (string, bool) {
	id, err := url.PathUnescape(c.Params("id"))
	if err != nil || strings.TrimSpace(id) == "" {
		return "", false
	}
	return id, true
}

// ListDocuments returns the signed-in user's documents in backend order.
//
// @Summary  List documents
// @Tags     documents
// @Produce  json
// @Success  200 {object} map[string][]model.Document
// @Failure  401 {object} errorPayload
// @Failure  502 {object} errorPayload
// @Router   /api/documents [get]
func ListDocuments(svc service.StudyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docs, err := svc.Documents(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"documents": docs})
	}
}

// UploadDocument forwards a multipart upload (field "file") to the backend.
//
// @Summary  Upload a document
// @Tags     documents
// @Accept   multipart/form-data
// @Produce  json
// @Param    file          formData file   true  "PDF, JPEG or PNG"
// @Param    document_name formData string true  "Display name"
// @Param    subject       formData string false "Subject"
// @Param    topic         formData string false "Topic"
// @Success  201 {object} model.Document
// @Failure  400 {object} errorPayload
// @Failure  401 {object} errorPayload
// @Router   /api/documents [post]
func UploadDocument(svc service.StudyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		name := c.FormValue("document_name")
		if name == "" {
			name = c.FormValue("name", c.FormValue("title"))
		}

		doc, err := svc.Upload(c.UserContext(), service.UploadInput{
			File:     f,
			Filename: fh.Filename,
			Name:     name,
			Subject:  c.FormValue("subject"),
			Topic:    c.FormValue("topic"),
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// DocumentContent returns the extracted text of a document.
//
// @Summary  Document content
// @Tags     documents
// @Produce  json
// @Param    id  path string true "Document id"
// @Success  200 {object} model.DocumentContent
// @Failure  404 {object} errorPayload
// @Router   /api/documents/{id}/content [get]
func DocumentContent(svc service.StudyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid document id")
		}
		content, err := svc.Content(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(content)
	}
}

type messageRequest struct {
	Message string `json:"message"`
}

// ListDiscussions returns a document's discussion board, oldest first.
//
// @Summary  List discussion messages
// @Tags     discussions
// @Produce  json
// @Param    id  path string true "Document id"
// @Success  200 {object} map[string][]model.DiscussionMessage
// @Router   /api/documents/{id}/discussions [get]
func ListDiscussions(svc service.StudyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid document id")
		}
		msgs, err := svc.Discussions(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"messages": msgs})
	}
}

// PostDiscussion adds a message to a document's discussion board.
//
// @Summary  Post a discussion message
// @Tags     discussions
// @Accept   json
// @Param    id    path string         true "Document id"
// @Param    body  body messageRequest true "Message"
// @Success  204
// @Failure  400 {object} errorPayload
// @Router   /api/documents/{id}/discussions [post]
func PostDiscussion(svc service.StudyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid document id")
		}
		var req messageRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := svc.Discuss(c.UserContext(), id, req.Message); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
