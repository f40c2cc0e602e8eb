package apiv1

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"hr-docgen-backend/config"
	"hr-docgen-backend/controllers"
	recordstore "hr-docgen-backend/lib/record-store"
	"hr-docgen-backend/models"
	apimodels "hr-docgen-backend/models/api"
	recordsapimodels "hr-docgen-backend/models/api/records"
)

type recordsApiController struct {
	controllers.BaseAPIController
}

func InitRecordsApiRouters(app *fiber.App) {
	controller := recordsApiController{}
	app.Route("records", func(router fiber.Router) {
		router.Get("", controller.list)
		router.Post("", controller.submit)
		router.Post("clear", controller.clear)
	})
}

func (c *recordsApiController) store() recordstore.Provider {
	return recordstore.NewInstance(config.Conf.Paths.MainData)
}

// @Summary Candidate dataset
// @Tags Records
// @Description Columns and rows of the candidate dataset
// @Success 200 {object} apimodels.ScrollerResponse{data=recordsapimodels.RecordsView}
// @Failure 500 {object} apimodels.Response
// @router /api/v1/records [get]
func (c *recordsApiController) list(ctx *fiber.Ctx) error {
	ds, err := c.store().Read()
	if err != nil && !errors.Is(err, recordstore.ErrNotFound) {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to read dataset")
	}
	view := recordsapimodels.RecordsView{Columns: ds.Columns, Rows: ds.Rows}
	if view.Rows == nil {
		view.Rows = []models.Record{}
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(view, int64(ds.Len())))
}

// @Summary Add a candidate
// @Tags Records
// @Description Appends one row; unknown fields become new columns
// @Accept json,x-www-form-urlencoded
// @Param	body body	object	true	"candidate fields"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/records [post]
func (c *recordsApiController) submit(ctx *fiber.Ctx) error {
	values, err := c.FormValues(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if len(values) == 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError("no fields submitted"))
	}
	if err = c.store().Append(ctx.UserContext(), models.Record(values)); err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to save record")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewMessage("Record saved."))
}

// @Summary Clear the dataset
// @Tags Records
// @Description Removes every row, keeping the column headers
// @Success 200 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/records/clear [post]
func (c *recordsApiController) clear(ctx *fiber.Ctx) error {
	if err := c.store().Clear(ctx.UserContext()); err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to clear dataset")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewMessage("All data cleared successfully."))
}
