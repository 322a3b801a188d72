package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/maegy2011/orchids-tube-sub000/internal/errs"
	"github.com/maegy2011/orchids-tube-sub000/internal/filter"
	"github.com/maegy2011/orchids-tube-sub000/internal/model"
)

// FilterHandler exposes the policy admin surface. Every mutation carries
// the PIN in the request body; the service refuses when it is missing or
// wrong, and the handler maps that to 401.
type FilterHandler struct {
	svc *filter.Service
}

func NewFilterHandler(svc *filter.Service) *FilterHandler {
	return &FilterHandler{svc: svc}
}

// Get handles GET /api/filter
func (h *FilterHandler) Get(c fiber.Ctx) error {
	view, err := h.svc.ClientView(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

type configPatchRequest struct {
	Enabled     *bool  `json:"enabled"`
	DefaultDeny *bool  `json:"defaultDeny"`
	Pin         string `json:"pin"`
}

// Patch handles PATCH /api/filter
func (h *FilterHandler) Patch(c fiber.Ctx) error {
	var req configPatchRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_BODY",
			errs.Localize("invalid_field", langOf(c)))
	}

	patch := filter.ConfigPatch{Enabled: req.Enabled, DefaultDeny: req.DefaultDeny}
	if err := h.svc.UpdateConfig(c.Context(), patch, req.Pin); err != nil {
		return respondError(c, err)
	}
	return h.Get(c)
}

type pinRequest struct {
	Action     string `json:"action"`
	Pin        string `json:"pin"`
	CurrentPin string `json:"currentPin"`
	NewPin     string `json:"newPin"`
}

// Pin handles POST /api/filter/pin with an action switch: verify, setup,
// update, remove.
func (h *FilterHandler) Pin(c fiber.Ctx) error {
	var req pinRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_BODY",
			errs.Localize("invalid_field", langOf(c)))
	}

	switch req.Action {
	case "verify":
		valid, err := h.svc.VerifyPin(c.Context(), req.Pin)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"valid": valid})
	case "setup":
		if err := h.svc.SetupPin(c.Context(), req.Pin); err != nil {
			return respondError(c, err)
		}
	case "update":
		current := req.CurrentPin
		if current == "" {
			current = req.Pin
		}
		if err := h.svc.UpdatePin(c.Context(), current, req.NewPin); err != nil {
			return respondError(c, err)
		}
	case "remove":
		current := req.CurrentPin
		if current == "" {
			current = req.Pin
		}
		if err := h.svc.RemovePin(c.Context(), current); err != nil {
			return respondError(c, err)
		}
	default:
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_ACTION",
			errs.Localize("invalid_field", langOf(c)))
	}

	return c.JSON(fiber.Map{"success": true})
}

// Categories handles GET /api/filter/categories
func (h *FilterHandler) Categories(c fiber.Ctx) error {
	view, err := h.svc.ClientView(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view.Categories)
}

type categoryRequest struct {
	Category string `json:"category"`
	Enabled  bool   `json:"enabled"`
	Pin      string `json:"pin"`
}

// PatchCategory handles PATCH /api/filter/categories/:categoryId and the
// body-addressed PATCH /api/filter/categories {category, enabled}.
func (h *FilterHandler) PatchCategory(c fiber.Ctx) error {
	var req categoryRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_BODY",
			errs.Localize("invalid_field", langOf(c)))
	}

	categoryID := c.Params("categoryId")
	if categoryID == "" {
		categoryID = req.Category
	}

	err := h.svc.SetCategoryEnabled(c.Context(), categoryID, req.Enabled, req.Pin)
	if err == filter.ErrUnknownCategory {
		return errorJSON(c, fiber.StatusNotFound, "UNKNOWN_CATEGORY",
			errs.Localize("not_found", langOf(c)))
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

type whitelistRequest struct {
	YoutubeID string `json:"youtubeId"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Reason    string `json:"reason"`
	Pin       string `json:"pin"`
}

// AddWhitelist handles POST /api/filter/whitelist
func (h *FilterHandler) AddWhitelist(c fiber.Ctx) error {
	var req whitelistRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_BODY",
			errs.Localize("invalid_field", langOf(c)))
	}

	item := model.WhitelistItem{
		YoutubeID: req.YoutubeID,
		Type:      model.ContentType(req.Type),
		Title:     req.Title,
		Reason:    req.Reason,
	}
	if err := h.svc.AddWhitelist(c.Context(), item, req.Pin); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
}

// RemoveWhitelist handles DELETE /api/filter/whitelist?youtubeId=&type=
// The identifiers come from the query string; a body with the same fields
// (plus the pin) is also accepted.
func (h *FilterHandler) RemoveWhitelist(c fiber.Ctx) error {
	var req whitelistRequest
	_ = c.Bind().JSON(&req)
	if v := fiber.Query[string](c, "youtubeId"); v != "" {
		req.YoutubeID = v
	}
	if v := fiber.Query[string](c, "type"); v != "" {
		req.Type = v
	}
	if v := fiber.Query[string](c, "pin"); v != "" {
		req.Pin = v
	}

	if err := h.svc.RemoveWhitelist(c.Context(), req.YoutubeID, model.ContentType(req.Type), req.Pin); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

type keywordRequest struct {
	Keyword string `json:"keyword"`
	Pin     string `json:"pin"`
}

// AddKeyword handles POST /api/filter/keywords
func (h *FilterHandler) AddKeyword(c fiber.Ctx) error {
	var req keywordRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_BODY",
			errs.Localize("invalid_field", langOf(c)))
	}

	if err := h.svc.AddKeyword(c.Context(), req.Keyword, req.Pin); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
}

// RemoveKeyword handles DELETE /api/filter/keywords?keyword=
func (h *FilterHandler) RemoveKeyword(c fiber.Ctx) error {
	var req keywordRequest
	_ = c.Bind().JSON(&req)
	if v := fiber.Query[string](c, "keyword"); v != "" {
		req.Keyword = v
	}
	if v := fiber.Query[string](c, "pin"); v != "" {
		req.Pin = v
	}

	if err := h.svc.RemoveKeyword(c.Context(), req.Keyword, req.Pin); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
