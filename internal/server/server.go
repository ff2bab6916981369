package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agenthands/flavorgraph/internal/core/model"
	"github.com/agenthands/flavorgraph/internal/driver"
	"github.com/agenthands/flavorgraph/internal/logging"
	"github.com/agenthands/flavorgraph/internal/metrics"
)

// PairingService is what the HTTP layer needs from core.PairingService.
type PairingService interface {
	GetTrios(ctx context.Context, ingredient string) ([]string, error)
	GetFlavorTree(ctx context.Context, ingredient string) (*model.FlavorTree, error)
	AddPairing(ctx context.Context, req model.PairRequest) error
	GetLatestPairings() []model.LatestPairing
}

type Server struct {
	Pairings PairingService
}

func NewServer(pairings PairingService) *Server {
	return &Server{Pairings: pairings}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.GinLogger(), observe())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/ingredients/:name/trios", s.GetTrios)
	r.GET("/ingredients/:name/flavortree", s.GetFlavorTree)
	r.POST("/pairings", s.AddPairing)
	r.GET("/pairings/latest", s.GetLatestPairings)

	return r
}

func (s *Server) GetTrios(c *gin.Context) {
	trios, err := s.Pairings.GetTrios(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trios": trios})
}

func (s *Server) GetFlavorTree(c *gin.Context) {
	tree, err := s.Pairings.GetFlavorTree(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

func (s *Server) AddPairing(c *gin.Context) {
	var req model.PairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := s.Pairings.AddPairing(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (s *Server) GetLatestPairings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"pairings": s.Pairings.GetLatestPairings()})
}

func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, model.ErrInvalidAffinity), errors.Is(err, model.ErrInvalidPairing):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, driver.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Graph storage unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

func observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
