package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/agenthands/healthrisk/internal/core"
	"github.com/agenthands/healthrisk/internal/core/model"
	"github.com/agenthands/healthrisk/internal/monitoring"
	"github.com/agenthands/healthrisk/internal/rate"
	"github.com/agenthands/healthrisk/internal/report"
	"github.com/agenthands/healthrisk/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

type Server struct {
	Predictor      *core.Predictor
	Limiter        *rate.Limiter
	Metrics        monitoring.MetricsMonitoring
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
	// TrustedProxies lists the proxy addresses or CIDRs whose forwarding
	// headers decide the client IP. Empty means the peer address is used.
	TrustedProxies []string

	logger logr.Logger
}

func NewServer(
	predictor *core.Predictor,
	limiter *rate.Limiter,
	metrics monitoring.MetricsMonitoring,
	gatherer prometheus.Gatherer,
	allowedOrigins []string,
	logger logr.Logger,
) *Server {
	if metrics == nil {
		metrics = monitoring.NoopMonitor{}
	}
	return &Server{
		Predictor:      predictor,
		Limiter:        limiter,
		Metrics:        metrics,
		Gatherer:       gatherer,
		AllowedOrigins: allowedOrigins,
		logger:         logger.WithName("server"),
	}
}

// Handler returns the router wrapped with CORS.
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: s.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(s.SetupRouter())
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(s.TrustedProxies); err != nil {
		s.logger.Error(err, "Invalid trusted proxies, ignoring forwarding headers")
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(s.accessLog(), gin.CustomRecovery(s.recover))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	api.POST("/profile", s.SaveProfile)
	api.GET("/profile/:name", s.GetProfile)
	api.DELETE("/profile/:name", s.DeleteProfile)

	limited := api.Group("")
	if s.Limiter != nil {
		limited.Use(s.Limiter.Middleware())
	}
	limited.POST("/predict", s.Predict)
	limited.POST("/assess", s.Assess)

	return r
}

func (s *Server) SaveProfile(c *gin.Context) {
	var p model.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		s.fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if _, err := s.Predictor.SaveProfile(c.Request.Context(), p); err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "message": "Profile saved successfully!"})
}

func (s *Server) GetProfile(c *gin.Context) {
	p, err := s.Predictor.GetProfile(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) DeleteProfile(c *gin.Context) {
	if err := s.Predictor.DeleteProfile(c.Request.Context(), c.Param("name")); err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// LocationRequest is the optional device location. Lat and Lon go together.
type LocationRequest struct {
	District string   `json:"district"`
	Lat      *float64 `json:"lat"`
	Lon      *float64 `json:"lon"`
}

type SymptomRequest struct {
	Symptoms []string         `json:"symptoms"`
	FreeText string           `json:"free_text"`
	Location *LocationRequest `json:"location"`
}

func (r SymptomRequest) toCore() (core.Request, error) {
	req := core.Request{
		Symptoms: model.Symptoms{Selected: r.Symptoms, FreeText: r.FreeText},
	}
	if r.Location == nil {
		return req, nil
	}
	req.Location.District = r.Location.District
	switch {
	case r.Location.Lat != nil && r.Location.Lon != nil:
		req.Location.Coordinates = &model.Coordinates{Lat: *r.Location.Lat, Lon: *r.Location.Lon}
	case r.Location.Lat != nil || r.Location.Lon != nil:
		return core.Request{}, errors.New("location needs both lat and lon")
	}
	return req, nil
}

type PredictRequest struct {
	Name string `json:"name"`
	SymptomRequest
}

type AssessRequest struct {
	Profile model.Profile `json:"profile"`
	SymptomRequest
}

func (s *Server) Predict(c *gin.Context) {
	defer s.observe("predict", time.Now())

	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Name == "" {
		s.fail(c, http.StatusBadRequest, "Profile name is required")
		return
	}
	coreReq, err := req.toCore()
	if err != nil {
		s.fail(c, http.StatusBadRequest, err.Error())
		return
	}

	pred, err := s.Predictor.Predict(c.Request.Context(), req.Name, coreReq)
	if err != nil {
		s.handleError(c, err)
		return
	}
	s.respond(c, pred)
}

func (s *Server) Assess(c *gin.Context) {
	defer s.observe("assess", time.Now())

	var req AssessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	coreReq, err := req.toCore()
	if err != nil {
		s.fail(c, http.StatusBadRequest, err.Error())
		return
	}

	pred, err := s.Predictor.Assess(c.Request.Context(), req.Profile, coreReq)
	if err != nil {
		s.handleError(c, err)
		return
	}
	s.respond(c, pred)
}

func (s *Server) respond(c *gin.Context, pred *model.Prediction) {
	if c.Query("format") == "markdown" {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown(pred)))
		return
	}
	c.JSON(http.StatusOK, pred)
}

func (s *Server) observe(endpoint string, start time.Time) {
	s.Metrics.ObserveRequestLatency(endpoint, time.Since(start))
}

func (s *Server) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		s.fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		s.fail(c, http.StatusNotFound, "Profile not found")
	case errors.Is(err, context.Canceled):
		// client went away
		c.Abort()
	default:
		s.logger.Error(err, "Request failed", "path", c.Request.URL.Path)
		s.fail(c, http.StatusInternalServerError, "Internal server error")
	}
}

func (s *Server) fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"status": "error", "message": message})
}

func (s *Server) recover(c *gin.Context, rec any) {
	s.logger.Error(nil, "Recovered from panic", "panic", rec, "path", c.Request.URL.Path)
	s.fail(c, http.StatusInternalServerError, "Internal server error")
}

func (s *Server) accessLog() gin.HandlerFunc {
	log := s.logger.WithName("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("Request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client", c.ClientIP(),
		)
	}
}
