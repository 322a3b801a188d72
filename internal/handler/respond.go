// Package handler contains the Fiber HTTP handlers. Error responses use
// one envelope shape: {"error": {"code", "message"}} with the message
// localized; raw upstream error text never reaches a client.
package handler

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/maegy2011/orchids-tube-sub000/internal/errs"
)

// langOf resolves the response language: explicit ?language= first (with
// ?lang= as a short alias), then the Accept-Language header, defaulting
// to Arabic.
func langOf(c fiber.Ctx) string {
	if l := fiber.Query[string](c, "language"); l != "" {
		return l
	}
	if l := fiber.Query[string](c, "lang"); l != "" {
		return l
	}
	if al := c.Get("Accept-Language"); strings.HasPrefix(strings.ToLower(al), "en") {
		return "en"
	}
	return "ar"
}

func errorJSON(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// respondError maps the error taxonomy to HTTP statuses. Filter
// rejections are not errors in the envelope sense: they get a dedicated
// blocked body so clients can show the reason.
func respondError(c fiber.Ctx, err error) error {
	lang := langOf(c)

	if rej, ok := errs.AsRejection(err); ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"blocked": true,
			"reason":  rej.Reason,
			"message": errs.Localize("blocked", lang),
		})
	}

	if ae, ok := errs.AsKind(err); ok {
		code := strings.ToUpper(ae.Key)
		switch ae.Kind {
		case errs.KindConfig:
			return errorJSON(c, fiber.StatusUnauthorized, code, errs.Localize(ae.Key, lang))
		case errs.KindValidation:
			return errorJSON(c, fiber.StatusBadRequest, code, errs.Localize(ae.Key, lang))
		case errs.KindNotFound:
			return errorJSON(c, fiber.StatusNotFound, code, errs.Localize(ae.Key, lang))
		}
	}

	if _, ok := errs.AsAggregate(err); ok {
		return errorJSON(c, fiber.StatusInternalServerError, "UPSTREAM_FAILED", errs.LocalizeError(err, lang))
	}

	return errorJSON(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", errs.Localize("internal", lang))
}
