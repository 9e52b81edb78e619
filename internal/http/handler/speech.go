package handler

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"studymate/internal/service"
	"studymate/internal/storage"
)

type speechRequest struct {
	Text string `json:"text"`
}

// Speak synthesizes text and returns a playable clip. The previous clip is released.
//
// @Summary  Text to speech
// @Tags     speech
// @Accept   json
// @Produce  json
// @Param    body  body speechRequest true "Text to read"
// @Success  201 {object} service.AudioClip
// @Failure  400 {object} errorPayload
// @Router   /api/speech [post]
func Speak(svc service.StudyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req speechRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		clip, err := svc.Speak(c.UserContext(), req.Text)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(clip)
	}
}

func clipKey(c *fiber.Ctx) (string, bool) {
	key, err := url.PathUnescape(c.Params("*"))
	return key, err == nil && key != ""
}

// ServeClip streams a live clip from the in-memory clip store.
//
// @Summary  Play an audio clip
// @Tags     speech
// @Produce  audio/mpeg
// @Param    key  path string true "Clip key"
// @Success  200 {file} binary
// @Failure  404 {object} errorPayload
// @Router   /audio/{key} [get]
func ServeClip(svc service.StudyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key, ok := clipKey(c)
		if !ok {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "audio clip not found")
		}
		rc, info, err := svc.OpenClip(c.UserContext(), key)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "audio clip not found")
			}
			return writeServiceError(c, err)
		}
		if info.ContentType != "" {
			c.Set(fiber.HeaderContentType, info.ContentType)
		}
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.SendStream(rc, int(info.Size))
	}
}

// ReleaseClip frees a clip once playback is done or abandoned.
//
// @Summary  Release an audio clip
// @Tags     speech
// @Param    key  path string true "Clip key"
// @Success  204
// @Failure  404 {object} errorPayload
// @Router   /audio/{key} [delete]
func ReleaseClip(svc service.StudyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key, ok := clipKey(c)
		if !ok {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "audio clip not found")
		}
		if err := svc.Release(c.UserContext(), key); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
