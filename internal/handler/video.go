package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/maegy2011/orchids-tube-sub000/internal/errs"
	"github.com/maegy2011/orchids-tube-sub000/internal/service"
)

type VideoHandler struct {
	svc *service.VideoService
}

func NewVideoHandler(svc *service.VideoService) *VideoHandler {
	return &VideoHandler{svc: svc}
}

// validVideoID rejects obviously malformed ids before they reach any
// upstream call. YouTube ids are 11 characters, but sibling frontends
// occasionally pad them, so the bounds stay loose.
func validVideoID(id string) bool {
	if len(id) < 8 || len(id) > 16 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// Detail handles GET /api/videos/:videoId
func (h *VideoHandler) Detail(c fiber.Ctx) error {
	videoID := c.Params("videoId")
	if !validVideoID(videoID) {
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_VIDEO_ID",
			errs.Localize("invalid_field", langOf(c)))
	}

	restricted := fiber.Query[bool](c, "restricted")
	detail, err := h.svc.Detail(c.Context(), videoID, restricted)
	if err != nil {
		if _, blocked := errs.AsRejection(err); blocked {
			Metrics.FilterDecisions.WithLabelValues("deny").Inc()
		}
		return respondError(c, err)
	}

	Metrics.FilterDecisions.WithLabelValues("allow").Inc()
	return c.JSON(detail)
}
