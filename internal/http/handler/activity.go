package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"studymate/internal/repository"
	"studymate/internal/service"
)

const maxActivityLimit = 200

type activityPage struct {
	Items  any `json:"data"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ListActivity pages through the signed-in user's journaled calls, newest first.
//
// @Summary  Activity journal
// @Tags     activity
// @Produce  json
// @Param    limit   query int false "Page size (1-200)" default(20)
// @Param    offset  query int false "Offset"    default(0)
// @Success  200 {object} activityPage
// @Failure  400 {object} errorPayload
// @Router   /api/activity [get]
func ListActivity(svc service.StudyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "20"))
		if err != nil || limit < 1 || limit > maxActivityLimit {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil || offset < 0 {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.Activity(c.UserContext(), repository.PageQuery{Limit: limit, Offset: offset})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(activityPage{Items: res.Items, Total: res.Total, Limit: limit, Offset: offset})
	}
}
