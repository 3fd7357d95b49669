package server

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/stratadb/strata/pkg/compression"
	"github.com/stratadb/strata/pkg/readbuffer"
)

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *Server) handleListDatabases(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"databases": s.store.DatabaseNames(),
		"size":      s.store.Size(),
	})
}

func (s *Server) handleCreateDatabase(c echo.Context) error {
	name := c.Param("db")
	if err := s.store.AddDatabase(name, readbuffer.NewDatabase()); err != nil {
		return httpError(c, err)
	}
	s.log.Info("database created", zap.String("database", name))
	return c.NoContent(http.StatusCreated)
}

func (s *Server) handleRemoveDatabase(c echo.Context) error {
	name := c.Param("db")
	if err := s.store.RemoveDatabase(name); err != nil {
		return httpError(c, err)
	}
	s.log.Info("database removed", zap.String("database", name))
	return c.NoContent(http.StatusNoContent)
}

// handleWriteChunk ingests one chunk. The body maps table name to columns;
// it may be compressed, indicated by the Content-Encoding header.
func (s *Server) handleWriteChunk(c echo.Context) error {
	body, err := s.readBody(c)
	if err != nil {
		return httpError(c, err)
	}

	var req writeRequest
	dec := gojson.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	batches := make(map[string]*readbuffer.Batch, len(req))
	for table, cols := range req {
		b, err := toBatch(cols)
		if err != nil {
			return httpError(c, err)
		}
		batches[table] = b
	}

	db, key := c.Param("db"), c.Param("key")
	if err := s.store.AddChunk(db, key, batches); err != nil {
		return httpError(c, err)
	}
	s.log.Info("chunk written",
		zap.String("database", db),
		zap.String("chunk", key),
		zap.Int("tables", len(batches)),
	)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleRemoveChunk(c echo.Context) error {
	db, key := c.Param("db"), c.Param("key")
	if err := s.store.RemoveChunk(db, key); err != nil {
		return httpError(c, err)
	}
	s.log.Info("chunk removed", zap.String("database", db), zap.String("chunk", key))
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleSelect(c echo.Context) error {
	var req queryRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	preds, err := req.predicates()
	if err != nil {
		return httpError(c, err)
	}
	res, err := s.store.Select(c.Param("db"), req.Table, req.timeRange(), preds, req.Columns)
	if err != nil {
		return httpError(c, err)
	}
	return s.respond(c, res)
}

func (s *Server) handleAggregate(c echo.Context) error {
	var req queryRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	preds, err := req.predicates()
	if err != nil {
		return httpError(c, err)
	}
	aggs, err := req.aggregates()
	if err != nil {
		return httpError(c, err)
	}
	res, err := s.store.Aggregate(c.Param("db"), req.Table, req.timeRange(), preds, req.GroupColumns, aggs)
	if err != nil {
		return httpError(c, err)
	}
	return s.respond(c, res)
}

func (s *Server) handleAggregateWindow(c echo.Context) error {
	var req queryRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	preds, err := req.predicates()
	if err != nil {
		return httpError(c, err)
	}
	aggs, err := req.aggregates()
	if err != nil {
		return httpError(c, err)
	}
	res, err := s.store.AggregateWindow(c.Param("db"), req.Table, req.timeRange(), preds, req.GroupColumns, aggs, req.Window)
	if err != nil {
		return httpError(c, err)
	}
	return s.respond(c, res)
}

func (s *Server) handleTableNames(c echo.Context) error {
	var req queryRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	preds, err := req.predicates()
	if err != nil {
		return httpError(c, err)
	}
	res, err := s.store.TableNames(c.Param("db"), req.timeRange(), preds)
	if err != nil {
		return httpError(c, err)
	}
	return s.respond(c, res)
}

func (s *Server) handleTagKeys(c echo.Context) error {
	var req queryRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	preds, err := req.predicates()
	if err != nil {
		return httpError(c, err)
	}
	res, err := s.store.TagKeys(c.Param("db"), req.Table, req.timeRange(), preds)
	if err != nil {
		return httpError(c, err)
	}
	return s.respond(c, res)
}

func (s *Server) handleTagValues(c echo.Context) error {
	var req queryRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	preds, err := req.predicates()
	if err != nil {
		return httpError(c, err)
	}
	res, err := s.store.TagValues(c.Param("db"), req.Table, req.timeRange(), preds, req.Keys)
	if err != nil {
		return httpError(c, err)
	}
	return s.respond(c, res)
}

// readBody reads the request body, decompressing it according to the
// Content-Encoding header.
func (s *Server) readBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, err
	}
	encoding := c.Request().Header.Get(echo.HeaderContentEncoding)
	if encoding == "" || encoding == "identity" {
		return body, nil
	}
	comp, err := compression.NewCompressor(compression.Algorithm(encoding), compression.Default)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnsupportedMediaType,
			"unsupported content encoding "+encoding)
	}
	return comp.Decompress(body)
}

// respond serializes a query result, compressing it when the configured
// algorithm appears in the client's Accept-Encoding.
func (s *Server) respond(c echo.Context, res *readbuffer.Result) error {
	payload := toResultPayload(res)
	if s.comp.Algorithm() == compression.None || !acceptsEncoding(c, string(s.comp.Algorithm())) {
		return c.JSON(http.StatusOK, payload)
	}

	raw, err := gojson.Marshal(payload)
	if err != nil {
		return err
	}
	compressed, err := s.comp.Compress(raw)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentEncoding, string(s.comp.Algorithm()))
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, compressed)
}

func acceptsEncoding(c echo.Context, encoding string) bool {
	accept := c.Request().Header.Get(echo.HeaderAcceptEncoding)
	for _, part := range strings.Split(accept, ",") {
		if strings.TrimSpace(strings.SplitN(part, ";", 2)[0]) == encoding {
			return true
		}
	}
	return false
}
