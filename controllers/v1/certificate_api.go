package apiv1

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"hr-docgen-backend/controllers"
	"hr-docgen-backend/lib/certificate"
	apimodels "hr-docgen-backend/models/api"
	certificateapimodels "hr-docgen-backend/models/api/certificate"
)

type certificateApiController struct {
	controllers.BaseAPIController
}

func InitCertificateApiRouters(app *fiber.App) {
	controller := certificateApiController{}
	app.Route("certificate", func(router fiber.Router) {
		router.Post("", controller.submit)
	})
}

// @Summary Register an experience certificate
// @Tags Certificate
// @Description Fills the [key] placeholders of a specimen, saves it as the next "Page (N)" experience template
// @Description and adds it to the manual experience pool. Every form field is a placeholder value.
// @Accept json,x-www-form-urlencoded
// @Param	body body	certificateapimodels.SubmitRequest	true	"request body"
// @Success 200 {object} apimodels.Response{data=certificate.Result}
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/certificate [post]
func (c *certificateApiController) submit(ctx *fiber.Ctx) error {
	values, err := c.FormValues(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	payload := certificateapimodels.SubmitRequest{
		Template:       values[certificate.FieldTemplate],
		CompanyName:    values[certificate.FieldCompany],
		CompanyProject: values[certificate.FieldProject],
		Country:        values[certificate.FieldCountry],
	}
	if err = payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	delete(values, certificate.FieldTemplate)

	result, err := certificate.Instance.Submit(ctx.UserContext(), certificate.Request{
		Template: payload.Template,
		Values:   values,
	})
	if err != nil {
		if errors.Is(err, certificate.ErrTemplateNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(apimodels.NewError("template not found"))
		}
		if errors.Is(err, certificate.ErrPoolNotFound) {
			return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
		}
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to register certificate")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}
