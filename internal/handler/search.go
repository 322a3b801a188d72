package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/maegy2011/orchids-tube-sub000/internal/errs"
	"github.com/maegy2011/orchids-tube-sub000/internal/search"
)

type SearchHandler struct {
	orch *search.Orchestrator
}

func NewSearchHandler(orch *search.Orchestrator) *SearchHandler {
	return &SearchHandler{orch: orch}
}

// Search handles GET /api/search?q=&limit=&page=&token=&location=&language=&restricted=
func (h *SearchHandler) Search(c fiber.Ctx) error {
	query := fiber.Query[string](c, "q")
	if query == "" {
		return errorJSON(c, fiber.StatusBadRequest, "MISSING_PARAM",
			errs.Localize("missing_field", langOf(c)))
	}

	language := fiber.Query[string](c, "language")
	if language == "" {
		language = fiber.Query[string](c, "lang")
	}

	params := search.Params{
		Query:      query,
		Location:   fiber.Query[string](c, "location"),
		Language:   language,
		Restricted: fiber.Query[bool](c, "restricted"),
		Limit:      fiber.Query[int](c, "limit"),
		Page:       fiber.Query[int](c, "page", 1),
		Token:      fiber.Query[string](c, "token"),
	}

	res, cached, err := h.orch.Search(c.Context(), params)
	if err != nil {
		if errors.Is(err, search.ErrBadToken) {
			return errorJSON(c, fiber.StatusBadRequest, "INVALID_TOKEN",
				errs.Localize("invalid_field", langOf(c)))
		}
		return respondError(c, err)
	}

	if cached {
		Metrics.CacheHits.Inc()
	} else {
		Metrics.CacheMisses.Inc()
		Metrics.SearchAttempts.Observe(float64(res.Debug.Attempts))
	}
	return c.JSON(res)
}
