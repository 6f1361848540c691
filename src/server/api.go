package server

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"stocksdash/src/helpers"
	"stocksdash/src/logger"
	"stocksdash/src/market"
	"stocksdash/src/models"
	"stocksdash/src/quotes"
)

// -----------------------------------------------------------------------------
// APIServer
// -----------------------------------------------------------------------------

type APIServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	Engine *quotes.Engine
	Oracle *market.Oracle
	engine *gin.Engine

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan *models.MQuoteUpdate
	register   chan *Client
	unregister chan *Client

	// Last pushed update, replayed to newly connected clients
	latestUpdate *models.MQuoteUpdate
	stateMutex   sync.RWMutex

	// Closed on Stop; once closed, late fetch completions are dropped
	done     chan struct{}
	stopOnce sync.Once
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewAPIServer(cfg *models.MConfig, log *logger.Logger, eng *quotes.Engine, oracle *market.Oracle) *APIServer {
	if !strings.EqualFold(cfg.LogLevel, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &APIServer{
		Config:  cfg,
		Logger:  log,
		Engine:  eng,
		Oracle:  oracle,
		engine:  gin.Default(),
		clients: make(map[*Client]struct{}),
		// Buffered channel so a burst of completions cannot block fetch
		// goroutines on slow consumers
		broadcast:  make(chan *models.MQuoteUpdate, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *APIServer) setupRoutes() {
	// REST API endpoints
	s.engine.GET("/api/quotes", s.getQuotes)
	s.engine.GET("/api/quote/:symbol", s.getQuote)
	s.engine.GET("/api/quote/:symbol/info", s.getInfo)
	s.engine.GET("/api/quote/:symbol/news", s.getNews)
	s.engine.GET("/api/quote/:symbol/history", s.getHistory)
	s.engine.GET("/api/market-status", s.getMarketStatus)
	s.engine.GET("/api/health", s.getHealth)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *APIServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	go s.runHub()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

// Stop shuts the hub down. Background fetches may still complete after
// this; their deliveries are dropped by Broadcast rather than sent into a
// dead hub. Idempotent.
func (s *APIServer) Stop() error {
	s.stopOnce.Do(func() { close(s.done) })
	return nil
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

// getQuotes serves GET /api/quotes?symbols=aapl,MSFT&refresh=true
func (s *APIServer) getQuotes(c *gin.Context) {
	raw := c.Query("symbols")
	if raw == "" {
		c.JSON(400, gin.H{"error": "symbols query parameter is required"})
		return
	}

	symbols := strings.Split(raw, ",")
	force := c.Query("refresh") == "true"

	data := s.Engine.GetQuotes(c.Request.Context(), symbols, force)
	c.JSON(200, gin.H{"quotes": data})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getQuote(c *gin.Context) {
	symbol := c.Param("symbol")

	data := s.Engine.GetQuotes(c.Request.Context(), []string{symbol}, false)
	if len(data) == 0 {
		c.JSON(404, gin.H{"error": "symbol not found"})
		return
	}
	c.JSON(200, data[0])
}

// -----------------------------------------------------------------------------

func (s *APIServer) getInfo(c *gin.Context) {
	symbol := c.Param("symbol")

	result := s.Engine.Info(c.Request.Context(), symbol)
	if result.State != models.InfoKnown {
		c.JSON(404, gin.H{"error": "no info available for symbol"})
		return
	}
	c.JSON(200, result.Info)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getNews(c *gin.Context) {
	symbol := c.Param("symbol")

	articles, err := s.Engine.News(c.Request.Context(), symbol)
	if err != nil {
		if _, ok := err.(*helpers.InvalidSymbolError); ok {
			c.JSON(404, gin.H{"error": "symbol not found"})
			return
		}
		c.JSON(502, gin.H{"error": "news unavailable"})
		return
	}
	c.JSON(200, gin.H{"symbol": strings.ToUpper(symbol), "articles": articles})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getHistory(c *gin.Context) {
	symbol := c.Param("symbol")
	rng := c.DefaultQuery("range", "1mo")
	interval := c.DefaultQuery("interval", "1d")

	candles, err := s.Engine.History(c.Request.Context(), symbol, rng, interval)
	if err != nil {
		if _, ok := err.(*helpers.InvalidSymbolError); ok {
			c.JSON(404, gin.H{"error": "symbol not found"})
			return
		}
		c.JSON(502, gin.H{"error": "history unavailable"})
		return
	}
	c.JSON(200, gin.H{"symbol": strings.ToUpper(symbol), "candles": candles})
}

// -----------------------------------------------------------------------------

// getMarketStatus serves GET /api/market-status?exchange=NMS. Defaults to
// NYSE's feed code when no exchange is given.
func (s *APIServer) getMarketStatus(c *gin.Context) {
	exchange := c.DefaultQuery("exchange", "NYQ")
	c.JSON(200, s.Oracle.Status(exchange))
}

// -----------------------------------------------------------------------------

func (s *APIServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	connections := len(s.clients)
	var lastUpdate int64
	if s.latestUpdate != nil {
		lastUpdate = s.latestUpdate.Timestamp
	}
	s.stateMutex.RUnlock()

	c.JSON(200, gin.H{
		"status":        "ok",
		"connections":   connections,
		"cached":        s.Engine.Cache.Len(),
		"latest_update": lastUpdate,
	})
}
