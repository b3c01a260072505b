package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"kerneltest/internal/service"
)

func browseError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrIDRequired), errors.Is(err, service.ErrInvalidID):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "test run not found")
	case errors.Is(err, service.ErrLogNotFound):
		return writeError(c, fiber.StatusNotFound, "LOG_NOT_FOUND", "raw log not found")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ListResults returns runs newest first.
//
// @Summary List test runs
// @Tags results
// @Produce json
// @Param limit query int false "page size" default(10)
// @Param offset query int false "offset" default(0)
// @Param fedora query int false "distribution version, 0 for rawhide"
// @Param release query string false "exact release filter"
// @Param kernel query string false "exact kernel filter"
// @Success 200 {object} service.ResultListResult
// @Failure 400 {object} errorPayload
// @Router /api/results [get]
func ListResults(svc service.ResultService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		var fedora *int
		if v := c.Query("fedora"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return writeError(c, fiber.StatusBadRequest, "INVALID_FEDORA", "invalid fedora version")
			}
			fedora = &n
		}

		res, err := svc.List(c.UserContext(), service.ListFilter{
			Limit:   limit,
			Offset:  offset,
			Fedora:  fedora,
			Release: c.Query("release"),
			Kernel:  c.Query("kernel"),
		})
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetResult returns one run with its test cases.
//
// @Summary Get a test run
// @Tags results
// @Produce json
// @Param id path string true "run id (uuid)"
// @Success 200 {object} model.TestRun
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/results/{id} [get]
func GetResult(svc service.ResultService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		run, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return browseError(c, err)
		}
		return c.JSON(run)
	}
}

// ResultLog streams the archived raw log.
//
// @Summary Download the raw log
// @Tags results
// @Produce plain
// @Param id path string true "run id (uuid)"
// @Success 200 {string} string "log text"
// @Failure 404 {object} errorPayload
// @Router /api/results/{id}/log [get]
func ResultLog(svc service.ResultService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rc, info, err := svc.OpenLog(c.UserContext(), c.Params("id"))
		if err != nil {
			return browseError(c, err)
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		size := int(info.Size)
		if size <= 0 {
			size = -1
		}
		// fasthttp closes rc once the body is written.
		return c.SendStream(rc, size)
	}
}

// ResultLogURL hands out a presigned link to the raw log.
//
// @Summary Presigned raw log URL
// @Tags results
// @Produce json
// @Param id path string true "run id (uuid)"
// @Success 200 {object} map[string]any
// @Failure 404 {object} errorPayload
// @Router /api/results/{id}/log-url [get]
func ResultLogURL(svc service.ResultService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, ttl, err := svc.LogURL(c.UserContext(), c.Params("id"))
		if err != nil {
			return browseError(c, err)
		}
		return c.JSON(fiber.Map{"url": u, "expires_in": int(ttl.Seconds())})
	}
}
