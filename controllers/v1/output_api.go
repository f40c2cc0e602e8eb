package apiv1

import (
	"bytes"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"

	"hr-docgen-backend/config"
	"hr-docgen-backend/controllers"
	"hr-docgen-backend/lib/export/archive"
	apimodels "hr-docgen-backend/models/api"
	outputapimodels "hr-docgen-backend/models/api/output"
)

type outputApiController struct {
	controllers.BaseAPIController
}

func InitOutputApiRouters(app *fiber.App) {
	controller := outputApiController{}
	app.Get("outputs", controller.list)
	app.Get("download-all", controller.downloadAll)
	app.Get("download/:filename", controller.download)
}

// @Summary Generated files
// @Tags Output
// @Description Files of the output directory, newest first
// @Success 200 {object} apimodels.ScrollerResponse{data=[]outputapimodels.FileView}
// @Failure 500 {object} apimodels.Response
// @router /api/v1/outputs [get]
func (c *outputApiController) list(ctx *fiber.Ctx) error {
	items, err := os.ReadDir(config.Conf.Paths.OutputDir)
	if err != nil && !os.IsNotExist(err) {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to list output directory")
	}
	list := make([]outputapimodels.FileView, 0, len(items))
	for _, item := range items {
		if !item.Type().IsRegular() {
			continue
		}
		info, err := item.Info()
		if err != nil {
			continue
		}
		list = append(list, outputapimodels.FileView{
			Name:       item.Name(),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].ModifiedAt.After(list[j].ModifiedAt)
	})
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(list, int64(len(list))))
}

// @Summary Download a generated file
// @Tags Output
// @Param   filename	path	string	true	"file name"
// @Success 200
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @router /api/v1/download/{filename} [get]
func (c *outputApiController) download(ctx *fiber.Ctx) error {
	name, err := url.PathUnescape(ctx.Params("filename"))
	if err != nil || !isPlainFileName(name) {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError("invalid file name"))
	}
	path := filepath.Join(config.Conf.Paths.OutputDir, name)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return ctx.Status(fiber.StatusNotFound).JSON(apimodels.NewError("file not found"))
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to read file")
	}
	ctx.Attachment(name)
	return ctx.Status(fiber.StatusOK).Send(body)
}

// @Summary Download every generated file
// @Tags Output
// @Description Zip archive of the output directory
// @Produce application/zip
// @Success 200
// @Failure 404 {object} apimodels.Response
// @router /api/v1/download-all [get]
func (c *outputApiController) downloadAll(ctx *fiber.Ctx) error {
	dir := config.Conf.Paths.OutputDir
	if _, err := os.Stat(dir); err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(apimodels.NewError("no generated files"))
	}
	var buf bytes.Buffer
	count, err := archive.WriteDir(&buf, dir)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to archive output directory")
	}
	c.GetLogger(ctx).WithField("files", count).Info("output archive prepared")
	ctx.Set(fiber.HeaderContentType, "application/zip")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="generated_documents.zip"`)
	return ctx.Status(fiber.StatusOK).Send(buf.Bytes())
}

// isPlainFileName accepts a bare file name: no directories and no dot entries.
func isPlainFileName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return false
	}
	return filepath.Base(name) == name
}
