// Package api exposes estr externalization and comparison over HTTP.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"estr-go/pkg/buffers"
	"estr-go/pkg/config"
	"estr-go/pkg/estr"
	"estr-go/pkg/log"
	"estr-go/pkg/transform"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Api struct {
	Echo     *echo.Echo
	cfg      *config.Config
	alloc    buffers.Allocator
	pipeline *transform.Pipeline
}

// CompareRequest carries the two operands of /compare. encoding/json
// transports []byte as base64, so zero bytes survive.
type CompareRequest struct {
	A []byte `json:"a"`
	B []byte `json:"b"`
}

type CompareResponse struct {
	Result int `json:"result"`
}

// NewApi wires the routes for cfg.
func NewApi(cfg *config.Config) (*Api, error) {
	pipeline, err := cfg.NewPipeline()
	if err != nil {
		return nil, err
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	a := &Api{
		Echo:     e,
		cfg:      cfg,
		alloc:    cfg.NewAllocator(),
		pipeline: pipeline,
	}
	e.POST("/escape", a.Escape)
	e.POST("/compare", a.Compare)
	e.GET("/stats", a.Stats)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(buffers.Registry, promhttp.HandlerOpts{})))
	return a, nil
}

// readStr appends r into a new string chunk by chunk.
func (a *Api) readStr(r io.Reader) (*estr.Str, error) {
	s, err := estr.NewWithAllocator(a.alloc, a.cfg.CapacityHint)
	if err != nil {
		return nil, err
	}
	if _, err := io.CopyBuffer(s, struct{ io.Reader }{r}, make([]byte, a.cfg.ChunkSize)); err != nil {
		s.Destroy()
		return nil, err
	}
	return s, nil
}

func httpError(err error) error {
	if errors.Is(err, estr.ErrAllocation) {
		return echo.NewHTTPError(http.StatusInsufficientStorage, err.Error())
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

// Escape returns the request body externalized with the escape from the
// "escape" query parameter, or the configured one when it is absent. The
// terminator is not sent.
func (a *Api) Escape(c echo.Context) error {
	s, err := a.readStr(c.Request().Body)
	if err != nil {
		log.Warn().Err(err).Msg("api: escape: read body")
		return httpError(err)
	}
	defer s.Destroy()

	esc := a.cfg.Escape()
	if c.QueryParams().Has("escape") {
		esc = []byte(c.QueryParam("escape"))
	}

	nbrNUL := s.CountByte(0)
	cstr, err := s.ToCString(esc)
	if err != nil {
		log.Warn().Err(err).Uint64("length", s.Len()).Msg("api: escape: externalize")
		return httpError(err)
	}
	defer a.alloc.Free(cstr)

	out, err := a.pipeline.PrepareOutput(cstr[:len(cstr)-1])
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h := c.Response().Header()
	h.Set("X-Estr-Length", strconv.FormatUint(s.Len(), 10))
	h.Set("X-Estr-Nul-Count", strconv.Itoa(nbrNUL))
	h.Set("X-Estr-Transform", a.cfg.Compression)
	log.Info().Uint64("length", s.Len()).Int("nul", nbrNUL).Int("out", len(out)).Msg("api: escape")
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, out)
}

// Compare orders two byte strings, length first.
func (a *Api) Compare(c echo.Context) error {
	var req CompareRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	sa, err := estr.NewFromBytesWithAllocator(a.alloc, req.A)
	if err != nil {
		return httpError(err)
	}
	defer sa.Destroy()
	sb, err := estr.NewFromBytesWithAllocator(a.alloc, req.B)
	if err != nil {
		return httpError(err)
	}
	defer sb.Destroy()

	return c.JSON(http.StatusOK, CompareResponse{Result: estr.Compare(sa, sb)})
}

// Stats reports the allocator counters.
func (a *Api) Stats(c echo.Context) error {
	sp, ok := a.alloc.(buffers.StatsProvider)
	if !ok {
		return echo.NewHTTPError(http.StatusNotImplemented, "allocator keeps no stats")
	}
	return c.JSON(http.StatusOK, sp.Stats())
}

// Run serves on the configured address until Shutdown.
func (a *Api) Run() error {
	log.Info().Str("addr", a.cfg.APIListenAddr).Msg("api: listening")
	err := a.Echo.Start(a.cfg.APIListenAddr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *Api) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}
