package apiv1

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"hr-docgen-backend/controllers"
	"hr-docgen-backend/lib/batch"
	"hr-docgen-backend/lib/generator"
	apimodels "hr-docgen-backend/models/api"
	batchapimodels "hr-docgen-backend/models/api/batch"
	wsmodels "hr-docgen-backend/models/ws"
)

// heartbeat is how often an idle progress stream is pinged to detect gone clients.
const heartbeat = 15 * time.Second

type batchApiController struct {
	controllers.BaseAPIController
}

func InitBatchApiRouters(app *fiber.App) {
	controller := batchApiController{}
	app.Get("generate-docx", controller.startFromQuery)
	app.Route("batch", func(router fiber.Router) {
		router.Post("start", controller.start)
		router.Post("synth", controller.synth)
		router.Get("status", controller.status)
		router.Get("logs", controller.logs)
		router.Get("log", controller.logSnapshot)
		router.Use("ws", func(ctx *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(ctx) {
				return ctx.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		router.Get("ws", websocket.New(controller.wsLogs))
	})
}

// @Summary Start a batch
// @Tags Batch
// @Description Generates documents for every dataset row in the background
// @Param	body body	batchapimodels.StartRequest	false	"request body"
// @Success 200 {object} apimodels.Response{data=batchapimodels.StartView}
// @Failure 400 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response{data=batchapimodels.StartView}
// @router /api/v1/batch/start [post]
func (c *batchApiController) start(ctx *fiber.Ctx) error {
	var payload batchapimodels.StartRequest
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	return c.startRun(ctx, payload, false)
}

// @Summary Start a batch
// @Tags Batch
// @Description Same as POST /api/v1/batch/start with query parameters
// @Param   pdf		query	bool	false	"convert to pdf"
// @Param   mode	query	string	false	"merge | individual"
// @Param   seed	query	int		false	"random seed"
// @Success 200 {object} apimodels.Response{data=batchapimodels.StartView}
// @Failure 400 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response{data=batchapimodels.StartView}
// @router /api/v1/generate-docx [get]
func (c *batchApiController) startFromQuery(ctx *fiber.Ctx) error {
	var payload batchapimodels.StartRequest
	if err := c.QueryParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	return c.startRun(ctx, payload, false)
}

// @Summary Synthesize experience only
// @Tags Batch
// @Description Fills the experience columns and saves the updated dataset, no documents
// @Param	body body	batchapimodels.StartRequest	false	"request body"
// @Success 200 {object} apimodels.Response{data=batchapimodels.StartView}
// @Failure 409 {object} apimodels.Response{data=batchapimodels.StartView}
// @router /api/v1/batch/synth [post]
func (c *batchApiController) synth(ctx *fiber.Ctx) error {
	var payload batchapimodels.StartRequest
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	return c.startRun(ctx, payload, true)
}

func (c *batchApiController) startRun(ctx *fiber.Ctx, payload batchapimodels.StartRequest, synthOnly bool) error {
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	run, err := generator.Instance.Start(generator.StartOptions{
		PDF:           payload.PDF,
		Mode:          payload.Mode,
		Seed:          payload.Seed,
		SynthesisOnly: synthOnly,
	})
	if errors.Is(err, batch.ErrAlreadyRunning) {
		return ctx.Status(fiber.StatusConflict).JSON(apimodels.Response{
			Status: apimodels.StatusAlreadyRunning,
			Data:   batchapimodels.StartView{RunID: run.ID},
		})
	}
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.Response{
		Status: apimodels.StatusStarted,
		Data:   batchapimodels.StartView{RunID: run.ID},
	})
}

func (c *batchApiController) findRun(ctx *fiber.Ctx) (*batch.Run, error) {
	run := generator.Instance.Get(ctx.Query("run_id"))
	if run == nil {
		return nil, ctx.Status(fiber.StatusNotFound).JSON(apimodels.NewError("batch not found"))
	}
	return run, nil
}

// @Summary Batch status
// @Tags Batch
// @Description State and summary of the latest batch
// @Param   run_id	query	string	false	"run id, latest when empty"
// @Success 200 {object} apimodels.Response{data=batchapimodels.StatusView}
// @Failure 404 {object} apimodels.Response
// @router /api/v1/batch/status [get]
func (c *batchApiController) status(ctx *fiber.Ctx) error {
	run, err := c.findRun(ctx)
	if run == nil {
		return err
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(batchapimodels.StatusView{
		Status:  run.Status(),
		Running: run.IsRunning(),
	}))
}

// @Summary Batch log snapshot
// @Tags Batch
// @Description Every progress line written so far, for clients that do not stream
// @Param   run_id	query	string	false	"run id, latest when empty"
// @Success 200 {object} apimodels.ScrollerResponse{data=[]string}
// @Failure 404 {object} apimodels.Response
// @router /api/v1/batch/log [get]
func (c *batchApiController) logSnapshot(ctx *fiber.Ctx) error {
	run, err := c.findRun(ctx)
	if run == nil {
		return err
	}
	lines := run.Log.Texts()
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(lines, int64(len(lines))))
}

// @Summary Batch progress
// @Tags Batch
// @Description Server-Sent Events, one "data:" event per log line starting at offset.
// @Description The stream ends once the batch is finished and every line was sent.
// @Param   run_id	query	string	false	"run id, latest when empty"
// @Param   offset	query	int		false	"first line to send"
// @Produce text/event-stream
// @Success 200
// @Failure 404 {object} apimodels.Response
// @router /api/v1/batch/logs [get]
func (c *batchApiController) logs(ctx *fiber.Ctx) error {
	run, err := c.findRun(ctx)
	if run == nil {
		return err
	}
	offset := max(ctx.QueryInt("offset", 0), 0)
	logger := c.GetLogger(ctx).WithField("run_id", run.ID)

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")
	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		streamLog(run.Log, offset, logger, func(line batch.Line) error {
			_, err := fmt.Fprintf(w, "data: %s\n\n", sseEscape(line.Text))
			if err != nil {
				return err
			}
			return w.Flush()
		}, func() error {
			if _, err := w.WriteString(": ping\n\n"); err != nil {
				return err
			}
			return w.Flush()
		})
	}))
	return nil
}

// @Summary Batch progress over websocket
// @Tags Batch
// @Description Same stream as /batch/logs as wsmodels.ServerMessage values, then one "finished" message
// @Param   run_id	query	string	false	"run id, latest when empty"
// @Param   offset	query	int		false	"first line to send"
// @Success 200 {object} wsmodels.ServerMessage
// @router /api/v1/batch/ws [get]
func (c *batchApiController) wsLogs(conn *websocket.Conn) {
	run := generator.Instance.Get(conn.Query("run_id"))
	if run == nil {
		_ = conn.WriteJSON(apimodels.NewError("batch not found"))
		return
	}
	offset, err := strconv.Atoi(conn.Query("offset", "0"))
	if err != nil {
		offset = 0
	}
	offset = max(offset, 0)
	logger := log.WithField("run_id", run.ID)
	sent := offset
	streamLog(run.Log, offset, logger, func(line batch.Line) error {
		sent++
		return conn.WriteJSON(wsmodels.NewProgress(line.Time, line.Text, sent-1))
	}, func() error {
		return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second))
	})
	_ = conn.WriteJSON(wsmodels.NewFinished(string(run.State()), sent))
}

// streamLog sends every line from offset until the log is closed and drained, or send fails.
func streamLog(l *batch.ProgressLog, offset int, logger *log.Entry, send func(batch.Line) error, ping func() error) {
	for {
		waitCtx, cancel := context.WithTimeout(context.Background(), heartbeat)
		lines, closed, err := l.Wait(waitCtx, offset)
		cancel()
		if err != nil {
			if pingErr := ping(); pingErr != nil {
				logger.WithError(pingErr).Info("progress client gone")
				return
			}
			continue
		}
		for _, line := range lines {
			if err := send(line); err != nil {
				logger.WithError(err).Info("progress client gone")
				return
			}
			offset++
		}
		if closed && len(lines) == 0 {
			return
		}
	}
}

// sseEscape keeps a multi-line text inside one event.
func sseEscape(text string) string {
	return strings.ReplaceAll(strings.ReplaceAll(text, "\r", ""), "\n", "\ndata: ")
}
