package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	_ "regapi/docs"
)

// RegisterSwagger mounts the Swagger UI. The spec is served without a host or
// scheme so the UI resolves requests against the page it was loaded from.
func RegisterSwagger(app *fiber.App) {
	app.Get("/swagger/*", swagger.HandlerDefault)
}
