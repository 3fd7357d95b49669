// Package server exposes the read buffer over HTTP. It is a thin boundary
// layer: requests are decoded into the engine's predicate/projection types,
// the store executes them, and results are serialized column-wise. The
// engine's error taxonomy maps onto status classes: not found is 404, schema
// mismatches and invalid arguments are 400, duplicate keys are 409, and
// construction or invariant violations are 500 since they indicate a bug in
// the ingestion path rather than a malformed query.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	gojson "github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/stratadb/strata/pkg/compression"
	"github.com/stratadb/strata/pkg/config"
	"github.com/stratadb/strata/pkg/readbuffer"
	strataerrors "github.com/stratadb/strata/pkg/errors"
)

// Server is the HTTP front end over a read buffer store.
type Server struct {
	echo  *echo.Echo
	store *readbuffer.Store
	cfg   *config.Config
	log   *zap.Logger
	comp  compression.Compressor
}

// New creates a server for the given store.
func New(store *readbuffer.Store, cfg *config.Config, log *zap.Logger) (*Server, error) {
	comp, err := compression.NewCompressor(cfg.Compression.Algorithm, compression.Default)
	if err != nil {
		return nil, err
	}

	s := &Server{
		echo:  echo.New(),
		store: store,
		cfg:   cfg,
		log:   log,
		comp:  comp,
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Server.ReadTimeout = cfg.Server.ReadTimeout
	s.echo.Server.WriteTimeout = cfg.Server.WriteTimeout
	s.echo.JSONSerializer = &jsonSerializer{}
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.BodyLimit(byteCount(cfg.Server.MaxBodyBytes)))
	s.echo.Use(s.requestLogger)

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api/v1")
	api.GET("/databases", s.handleListDatabases)
	api.POST("/databases/:db", s.handleCreateDatabase)
	api.DELETE("/databases/:db", s.handleRemoveDatabase)
	api.POST("/databases/:db/chunks/:key", s.handleWriteChunk)
	api.DELETE("/databases/:db/chunks/:key", s.handleRemoveChunk)

	api.POST("/databases/:db/query/select", s.handleSelect)
	api.POST("/databases/:db/query/aggregate", s.handleAggregate)
	api.POST("/databases/:db/query/aggregate_window", s.handleAggregateWindow)
	api.POST("/databases/:db/query/table_names", s.handleTableNames)
	api.POST("/databases/:db/query/tag_keys", s.handleTagKeys)
	api.POST("/databases/:db/query/tag_values", s.handleTagValues)
}

// Start begins serving and blocks until the listener closes.
func (s *Server) Start() error {
	s.log.Info("starting http server", zap.String("address", s.cfg.Server.Address))
	err := s.echo.Start(s.cfg.Server.Address)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		s.log.Debug("request",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Int("status", c.Response().Status),
		)
		return err
	}
}

// jsonSerializer is echo's JSON codec backed by goccy/go-json. Decoding uses
// UseNumber so 64-bit nanosecond timestamps round-trip exactly.
type jsonSerializer struct{}

func (jsonSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := gojson.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsonSerializer) Deserialize(c echo.Context, i interface{}) error {
	dec := gojson.NewDecoder(c.Request().Body)
	dec.UseNumber()
	if err := dec.Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// httpError converts an engine error into a JSON error response. Errors that
// are already HTTP errors pass through to echo's handler unchanged.
func httpError(c echo.Context, err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	status := http.StatusInternalServerError
	switch strataerrors.TypeOf(err) {
	case strataerrors.ErrorTypeNotFound:
		status = http.StatusNotFound
	case strataerrors.ErrorTypeSchemaMismatch, strataerrors.ErrorTypeInvalidArgument:
		status = http.StatusBadRequest
	case strataerrors.ErrorTypeConflict:
		status = http.StatusConflict
	}
	return c.JSON(status, errorPayload{
		Error: err.Error(),
		Type:  string(strataerrors.TypeOf(err)),
	})
}

func byteCount(n int64) string {
	// echo's body limit accepts a human-readable size string
	const unit = 1 << 20
	if n >= unit && n%unit == 0 {
		return strconv.FormatInt(n/unit, 10) + "M"
	}
	return strconv.FormatInt(n, 10)
}
