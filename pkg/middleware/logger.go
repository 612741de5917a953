package middleware

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type loggerConfig struct {
	logger *slog.Logger
	req    middleware.RequestLoggerConfig
	params []string
}

type LoggerOpts func(*loggerConfig)

// WithSkipper excludes requests, e.g. health probes, from request logging.
func WithSkipper(skipper middleware.Skipper) LoggerOpts {
	return func(c *loggerConfig) {
		c.req.Skipper = skipper
	}
}

func WithLogger(l *slog.Logger) LoggerOpts {
	return func(c *loggerConfig) {
		c.logger = l
	}
}

// WithPathParams adds the named route params, when present, to every entry.
func WithPathParams(names ...string) LoggerOpts {
	return func(c *loggerConfig) {
		c.params = append(c.params, names...)
	}
}

// Logger logs one entry per request. Handler errors and 5xx log at Error, other 4xx at Warn.
func Logger(opts ...LoggerOpts) echo.MiddlewareFunc {
	cfg := loggerConfig{
		req: middleware.RequestLoggerConfig{
			LogStatus:   true,
			LogLatency:  true,
			LogURIPath:  true,
			LogMethod:   true,
			LogError:    true,
			HandleError: true,
		},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	cfg.req.LogValuesFunc = func(c echo.Context, v middleware.RequestLoggerValues) error {
		attrs := []slog.Attr{
			slog.String("method", v.Method),
			slog.String("path", v.URIPath),
			slog.Int("status", v.Status),
			slog.Duration("latency", v.Latency),
		}
		if q := c.QueryString(); q != "" {
			attrs = append(attrs, slog.String("query", q))
		}
		for _, name := range cfg.params {
			if p := c.Param(name); p != "" {
				attrs = append(attrs, slog.String(name, p))
			}
		}

		level, msg := slog.LevelInfo, "REQUEST"
		switch {
		case v.Error != nil || v.Status >= 500:
			level, msg = slog.LevelError, "REQUEST_ERROR"
			if v.Error != nil {
				attrs = append(attrs, slog.String("err", v.Error.Error()))
			}
		case v.Status >= 400:
			level = slog.LevelWarn
		}

		cfg.logger.LogAttrs(c.Request().Context(), level, msg, attrs...)
		return nil
	}

	return middleware.RequestLoggerWithConfig(cfg.req)
}
