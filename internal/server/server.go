// Package server exposes text-to-.npy conversion over HTTP.
package server

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/npywrite/internal/logger"
	"github.com/samcharles93/npywrite/pkg/npy"
)

const (
	HeaderRequestID = "X-Request-Id"
	HeaderShape     = "X-Npy-Shape"
	HeaderChecksum  = "X-Npy-Checksum"

	DefaultMaxBodyBytes int64 = 64 << 20
)

// Config holds the conversion defaults applied when a request omits them.
type Config struct {
	DType        npy.DType
	Separator    string
	AllowRagged  bool
	MaxBodyBytes int64
	Logger       logger.Logger
}

type Server struct {
	cfg Config
	log logger.Logger
}

func New(cfg Config) *Server {
	if cfg.Separator == "" {
		cfg.Separator = " "
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Server{cfg: cfg, log: log.With("component", "server")}
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/convert", s.handleConvert)
	e.GET("/v1/dtypes", s.handleDTypes)
}

type dtypeInfo struct {
	Name  string `json:"name"`
	Descr string `json:"descr"`
	Width int    `json:"width"`
}

func (s *Server) handleDTypes(c *echo.Context) error {
	out := make([]dtypeInfo, 0, len(npy.DTypes()))
	for _, dt := range npy.DTypes() {
		out = append(out, dtypeInfo{Name: dt.String(), Descr: dt.Descr(), Width: dt.Width()})
	}
	return c.JSON(http.StatusOK, map[string]any{"dtypes": out})
}

func (s *Server) handleConvert(c *echo.Context) error {
	reqID := uuid.NewString()
	c.Response().Header().Set(HeaderRequestID, reqID)
	log := s.log.With("request_id", reqID)

	opts := npy.Options{
		DType:       s.cfg.DType,
		Separator:   s.cfg.Separator,
		AllowRagged: s.cfg.AllowRagged,
	}
	query := c.Request().URL.Query()
	if query.Has("dtype") {
		dt, err := npy.ParseDType(query.Get("dtype"))
		if err != nil {
			return writeBadRequest(c, err.Error())
		}
		opts.DType = dt
	}
	if query.Has("separator") {
		opts.Separator = query.Get("separator")
	}
	if query.Has("allow_ragged") {
		v, err := strconv.ParseBool(query.Get("allow_ragged"))
		if err != nil {
			return writeBadRequest(c, "allow_ragged must be a boolean")
		}
		opts.AllowRagged = v
	}
	if err := opts.Validate(); err != nil {
		return writeBadRequest(c, err.Error())
	}

	body := http.MaxBytesReader(c.Response(), c.Request().Body, s.cfg.MaxBodyBytes)
	var out bytes.Buffer
	shape, err := npy.WriteStream(&out, body, opts)
	if err != nil {
		log.Warn("conversion failed", "dtype", opts.DType.String(), "error", err)
		return writeConvertError(c, err)
	}

	sum := xxhash.Sum64(out.Bytes()[npy.HeaderSize:])
	c.Response().Header().Set(HeaderShape, shape.String())
	c.Response().Header().Set(HeaderChecksum, strconv.FormatUint(sum, 16))
	log.Info("converted", "dtype", opts.DType.String(), "shape", shape.String(), "bytes", out.Len())
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, out.Bytes())
}
