package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	apimodels "hr-docgen-backend/models/api"
)

type BaseAPIController struct{}

// BodyParser decodes a json or form body; an empty body leaves out untouched.
func (c *BaseAPIController) BodyParser(ctx *fiber.Ctx, out interface{}) error {
	if len(ctx.Body()) == 0 {
		return nil
	}
	if err := ctx.BodyParser(out); err != nil {
		c.GetLogger(ctx).WithError(err).Error("request parse error")
		return errors.New("unable to read request data")
	}
	return nil
}

func (c *BaseAPIController) QueryParser(ctx *fiber.Ctx, out interface{}) error {
	if err := ctx.QueryParser(out); err != nil {
		c.GetLogger(ctx).WithError(err).Error("query parse error")
		return errors.New("unable to read query parameters")
	}
	return nil
}

func (c *BaseAPIController) GetLogger(ctx *fiber.Ctx) *log.Entry {
	return log.WithFields(log.Fields{
		"method": ctx.Method(),
		"path":   ctx.Path(),
	})
}

// SendError logs err and answers 500 with a fail envelope carrying message.
func (c *BaseAPIController) SendError(ctx *fiber.Ctx, logger *log.Entry, err error, message string) error {
	logger.WithError(err).Error(message)
	return ctx.Status(fiber.StatusInternalServerError).JSON(apimodels.NewError(message + ": " + err.Error()))
}

// FormValues reads a flat set of string fields from a json, multipart or url-encoded body.
func (c *BaseAPIController) FormValues(ctx *fiber.Ctx) (map[string]string, error) {
	values := map[string]string{}
	contentType := strings.ToLower(string(ctx.Request().Header.ContentType()))
	switch {
	case strings.HasPrefix(contentType, fiber.MIMEApplicationJSON):
		raw := map[string]interface{}{}
		dec := json.NewDecoder(bytes.NewReader(ctx.Body()))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			c.GetLogger(ctx).WithError(err).Error("request parse error")
			return nil, errors.New("unable to read request data")
		}
		for k, v := range raw {
			if v == nil {
				continue
			}
			values[k] = fmt.Sprint(v)
		}
	case strings.HasPrefix(contentType, fiber.MIMEMultipartForm):
		form, err := ctx.MultipartForm()
		if err != nil {
			c.GetLogger(ctx).WithError(err).Error("request parse error")
			return nil, errors.New("unable to read request data")
		}
		for k, v := range form.Value {
			if len(v) != 0 {
				values[k] = v[0]
			}
		}
	default:
		ctx.Request().PostArgs().VisitAll(func(k, v []byte) {
			values[string(k)] = string(v)
		})
	}
	out := make(map[string]string, len(values))
	for k, v := range values {
		if k = strings.TrimSpace(k); k != "" {
			out[k] = v
		}
	}
	return out, nil
}
