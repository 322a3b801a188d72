package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/maegy2011/orchids-tube-sub000/internal/download"
	"github.com/maegy2011/orchids-tube-sub000/internal/errs"
	"github.com/maegy2011/orchids-tube-sub000/internal/model"
)

type DownloadHandler struct {
	resolver *download.Resolver
}

func NewDownloadHandler(resolver *download.Resolver) *DownloadHandler {
	return &DownloadHandler{resolver: resolver}
}

type downloadRequest struct {
	VideoID string `json:"videoId"`
	Type    string `json:"type"`
	Quality string `json:"quality"`
}

// Resolve handles POST /api/download
func (h *DownloadHandler) Resolve(c fiber.Ctx) error {
	var req downloadRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_BODY",
			errs.Localize("invalid_field", langOf(c)))
	}
	if !validVideoID(req.VideoID) {
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_VIDEO_ID",
			errs.Localize("invalid_field", langOf(c)))
	}

	mediaType := model.MediaType(req.Type)
	if mediaType == "" {
		mediaType = model.MediaVideo
	}
	if mediaType != model.MediaAudio && mediaType != model.MediaVideo {
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_TYPE",
			errs.Localize("invalid_field", langOf(c)))
	}

	res, err := h.resolver.Resolve(c.Context(), download.Request{
		VideoID: req.VideoID,
		Type:    mediaType,
		Quality: req.Quality,
	})
	if err != nil {
		return respondError(c, err)
	}

	Metrics.DownloadResolutions.WithLabelValues(res.Source).Inc()
	return c.JSON(res)
}

// Formats handles GET /api/download/formats?videoId=X
func (h *DownloadHandler) Formats(c fiber.Ctx) error {
	videoID := fiber.Query[string](c, "videoId")
	if !validVideoID(videoID) {
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_VIDEO_ID",
			errs.Localize("invalid_field", langOf(c)))
	}

	formats, err := h.resolver.Formats(c.Context(), videoID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"videoId": videoID, "formats": formats})
}
