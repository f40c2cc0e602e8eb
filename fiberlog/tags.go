package fiberlog

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	TagPid       = "pid"
	TagLatency   = "latency"
	TagStatus    = "status"
	TagMethod    = "method"
	TagPath      = "path"
	TagURL       = "url"
	TagIP        = "ip"
	TagUserAgent = "user_agent"
	TagBody      = "body"
	TagResBody   = "res_body"
	TagQuery     = "query"
	RequestID    = "request_id"
)

// bodyLogLimit caps logged request and response bodies.
const bodyLogLimit = 2048

type data struct {
	pid   int
	start time.Time
	end   time.Time
}

// FuncTag returns the value logged under a tag.
type FuncTag func(c *fiber.Ctx, d *data) interface{}

func getFuncTagMap(cfg Config) map[string]FuncTag {
	all := map[string]FuncTag{
		TagPid: func(_ *fiber.Ctx, d *data) interface{} {
			return d.pid
		},
		TagLatency: func(_ *fiber.Ctx, d *data) interface{} {
			return d.end.Sub(d.start).String()
		},
		TagStatus: func(c *fiber.Ctx, _ *data) interface{} {
			return c.Response().StatusCode()
		},
		TagMethod: func(c *fiber.Ctx, _ *data) interface{} {
			return c.Method()
		},
		TagPath: func(c *fiber.Ctx, _ *data) interface{} {
			return c.Path()
		},
		TagURL: func(c *fiber.Ctx, _ *data) interface{} {
			return c.OriginalURL()
		},
		TagIP: func(c *fiber.Ctx, _ *data) interface{} {
			return c.IP()
		},
		TagUserAgent: func(c *fiber.Ctx, _ *data) interface{} {
			return c.Get(fiber.HeaderUserAgent)
		},
		TagQuery: func(c *fiber.Ctx, _ *data) interface{} {
			return string(c.Request().URI().QueryString())
		},
		TagBody: func(c *fiber.Ctx, _ *data) interface{} {
			return truncate(c.Body())
		},
		TagResBody: func(c *fiber.Ctx, _ *data) interface{} {
			if ct := string(c.Response().Header.ContentType()); ct != fiber.MIMEApplicationJSON && ct != fiber.MIMEApplicationJSONCharsetUTF8 {
				return ""
			}
			return truncate(c.Response().Body())
		},
		RequestID: func(c *fiber.Ctx, _ *data) interface{} {
			return c.Get(fiber.HeaderXRequestID)
		},
	}
	ftm := make(map[string]FuncTag, len(cfg.Tags))
	for _, tag := range cfg.Tags {
		if ft, ok := all[tag]; ok {
			ftm[tag] = ft
		}
	}
	return ftm
}

func truncate(body []byte) string {
	if len(body) > bodyLogLimit {
		return string(body[:bodyLogLimit]) + "..."
	}
	return string(body)
}
