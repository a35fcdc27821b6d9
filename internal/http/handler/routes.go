package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"regapi/internal/model"
	"regapi/internal/service"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// loc is the zone export days are interpreted in.
func RegisterRoutes(app *fiber.App, db Pinger, svc service.RegistrationService, loc *time.Location) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	regs := app.Group("/registrations")
	regs.Get("/", ListRegistrations(svc))
	regs.Post("/", CreateRegistration(svc))
	// Registered before /:id so "today" is not taken for an id.
	regs.Get("/today", TodayRegistrations(svc))
	regs.Post("/exports/:day", ExportRegistrations(svc, loc))
	regs.Get("/exports/:day", DownloadExport(svc, loc))
	regs.Get("/:id", GetRegistration(svc))
	regs.Delete("/:id", DeleteRegistration(svc))
}

// HealthCheck checks DB connectivity only.
func HealthCheck(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always answers 200.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListRegistrations godoc
// @Summary List registrations
// @Param limit query int false "page size" default(10)
// @Param offset query int false "page offset" default(0)
// @Param type query string false "registration type"
// @Param customer_id query string false "customer id"
// @Success 200 {object} service.RegistrationListResult
// @Router /registrations [get]
func ListRegistrations(svc service.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}
		filter := service.ListFilter{
			Type:       c.Query("type"),
			CustomerID: c.Query("customer_id"),
		}

		res, err := svc.List(c.UserContext(), limit, offset, filter)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// TodayRegistrations godoc
// @Summary Registrations dated today
// @Success 200 {array} model.Registration
// @Router /registrations/today [get]
func TodayRegistrations(svc service.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.Today(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(items)
	}
}

// CreateRegistration godoc
// @Summary Create a registration
// @Accept json
// @Param registration body model.Registration true "registration record; Id is assigned by the server"
// @Success 201 {object} model.Registration
// @Failure 400 {object} errorPayload
// @Router /registrations [post]
func CreateRegistration(svc service.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reg, err := model.DecodeRegistration(c.Body())
		if err != nil {
			return writeServiceError(c, err)
		}

		stored, err := svc.Create(c.UserContext(), reg)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(stored)
	}
}

// GetRegistration godoc
// @Summary Get a registration by id
// @Param id path int true "registration id"
// @Success 200 {object} model.Registration
// @Failure 404 {object} errorPayload
// @Router /registrations/{id} [get]
func GetRegistration(svc service.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		reg, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(reg)
	}
}

// DeleteRegistration godoc
// @Summary Delete a registration
// @Param id path int true "registration id"
// @Success 204
// @Router /registrations/{id} [delete]
func DeleteRegistration(svc service.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ExportRegistrations godoc
// @Summary Export one day of registrations to object storage
// @Param day path string true "calendar day, YYYY-MM-DD"
// @Success 201 {object} service.ExportResult
// @Router /registrations/exports/{day} [post]
func ExportRegistrations(svc service.RegistrationService, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		day, err := time.ParseInLocation(service.DayLayout, c.Params("day"), loc)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_DAY", "day must be YYYY-MM-DD")
		}
		res, err := svc.ExportDay(c.UserContext(), day)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// DownloadExport godoc
// @Summary Download a stored daily export
// @Param day path string true "calendar day, YYYY-MM-DD"
// @Produce json
// @Success 200 {array} model.Registration
// @Router /registrations/exports/{day} [get]
func DownloadExport(svc service.RegistrationService, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		day, err := time.ParseInLocation(service.DayLayout, c.Params("day"), loc)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_DAY", "day must be YYYY-MM-DD")
		}
		rc, info, err := svc.OpenExport(c.UserContext(), day)
		if err != nil {
			return writeServiceError(c, err)
		}
		ct := info.ContentType
		if ct == "" {
			ct = fiber.MIMEApplicationJSON
		}
		c.Set(fiber.HeaderContentType, ct)
		return c.SendStream(rc, int(info.Size))
	}
}
