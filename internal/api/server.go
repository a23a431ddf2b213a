package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"Farjax/internal/model"
	"Farjax/internal/scheduler"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Source publishes annotated snapshots and accepts manual refreshes.
type Source interface {
	Latest() *model.Snapshot
	Refresh(trigger string) (*model.Snapshot, error)
}

type viewQuery struct {
	Days         *int `form:"days" binding:"omitempty,min=1,max=60"`
	MinutesAhead *int `form:"minutes_ahead" binding:"omitempty,min=0,max=480"`
}

// Server exposes snapshots over REST and WebSocket.
type Server struct {
	Source   Source
	Hub      *Hub
	Defaults ViewParams
	Gatherer prometheus.Gatherer
	Now      func() time.Time

	httpServer *http.Server
}

// NewServer creates a server listening on addr.
func NewServer(addr string, src Source, hub *Hub, defaults ViewParams, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		Source:   src,
		Hub:      hub,
		Defaults: defaults,
		Gatherer: gatherer,
		Now:      time.Now,
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Routes builds the gin engine.
func (s *Server) Routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/api/v1")
	v1.GET("/health", s.health)
	v1.GET("/candles", s.candles)
	v1.POST("/refresh", s.refresh)
	v1.GET("/stream", s.stream)
	return r
}

func (s *Server) health(c *gin.Context) {
	snap := s.Source.Latest()
	if snap == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "waiting for first refresh"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"symbol":         snap.Symbol,
		"generated_at":   snap.GeneratedAt,
		"candles":        len(snap.Candles),
		"synthetic":      snap.SyntheticCount(),
		"stream_clients": s.Hub.ClientCount(),
	})
}

func (s *Server) candles(c *gin.Context) {
	var q viewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := s.Defaults
	if q.Days != nil {
		p.DaysBack = *q.Days
	}
	if q.MinutesAhead != nil {
		p.MinutesAhead = *q.MinutesAhead
	}

	snap := s.Source.Latest()
	if snap == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no data yet"})
		return
	}
	c.JSON(http.StatusOK, BuildView(snap, s.Now(), p))
}

func (s *Server) refresh(c *gin.Context) {
	snap, err := s.Source.Refresh("manual")
	switch {
	case errors.Is(err, scheduler.ErrRefreshInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{
			"generated_at": snap.GeneratedAt,
			"candles":      len(snap.Candles),
			"synthetic":    snap.SyntheticCount(),
		})
	}
}

func (s *Server) stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WARN] stream upgrade: %v", err)
		return
	}
	s.Hub.Serve(conn)
}

// Publish pushes the default view of snap to stream clients.
func (s *Server) Publish(snap *model.Snapshot) {
	if err := s.Hub.Publish(BuildView(snap, s.Now(), s.Defaults)); err != nil {
		log.Printf("[ERROR] publish snapshot: %v", err)
	}
}

// Start serves HTTP in the background.
func (s *Server) Start() {
	go func() {
		log.Printf("[INFO] http server listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[ERROR] http server: %v", err)
		}
	}()
}

// Stop shuts the server down and disconnects stream clients.
func (s *Server) Stop(ctx context.Context) {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("[WARN] http shutdown: %v", err)
	}
	s.Hub.Close()
}
