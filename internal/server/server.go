// Package server exposes the pipeline over HTTP: candle history,
// prediction orchestration, live prices and the alert check.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marketlens/internal/alert"
	"marketlens/internal/interfaces"
	"marketlens/internal/journal"
	"marketlens/internal/types"
)

const defaultCandleLimit = 90

// Predictor is the slice of the orchestrator the handlers need.
type Predictor interface {
	Predict(ctx context.Context, symbol string, interval types.Interval, entries []journal.Entry) (*types.Forecast, error)
}

type Server struct {
	candles   interfaces.CandleSource
	predictor Predictor
	feed      interfaces.PriceFeed
	alerts    *alert.Service
}

func New(candles interfaces.CandleSource, p Predictor, feed interfaces.PriceFeed, alerts *alert.Service) *Server {
	return &Server{candles: candles, predictor: p, feed: feed, alerts: alerts}
}

// Router builds the gin engine. allowedOrigins of nil enables the
// permissive CORS default.
func (s *Server) Router(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	if len(allowedOrigins) == 0 {
		r.Use(cors.Default())
	} else {
		cfg := cors.DefaultConfig()
		cfg.AllowOrigins = allowedOrigins
		r.Use(cors.New(cfg))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/candles", s.getCandles)
		api.POST("/predict", s.postPredict)
		api.GET("/price", s.getPrice)
		api.GET("/alert", s.getAlert)
	}
	return r
}

func (s *Server) getCandles(c *gin.Context) {
	symbol := c.Query("symbol")
	interval, ok := types.ParseInterval(c.Query("interval"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown interval: " + c.Query("interval")})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultCandleLimit)))

	series, err := s.candles.Load(c.Request.Context(), symbol, interval, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"symbol":   symbol,
		"interval": interval,
		"candles":  candlePayload(series),
	})
}

type predictRequest struct {
	Symbol   string          `json:"symbol" binding:"required"`
	Interval string          `json:"interval"`
	Entries  []journal.Entry `json:"entries"`
}

func (s *Server) postPredict(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	interval, ok := types.ParseInterval(req.Interval)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown interval: " + req.Interval})
		return
	}

	forecast, err := s.predictor.Predict(c.Request.Context(), req.Symbol, interval, req.Entries)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, forecast)
}

func (s *Server) getPrice(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}
	snap := s.feed.Snapshot(symbol)
	c.JSON(http.StatusOK, gin.H{
		"symbol":    symbol,
		"price":     snap.Price,
		"connected": snap.Connected,
		"error":     snap.Error,
	})
}

func (s *Server) getAlert(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}
	c.JSON(http.StatusOK, s.alerts.Check(c.Request.Context(), symbol))
}

// writeError maps the pipeline error taxonomy onto HTTP statuses.
// Caller mistakes are 400, missing credentials 500, short history 422,
// and anything that went wrong upstream or inside the model 502.
func writeError(c *gin.Context, err error) {
	var (
		invalidSymbol *types.InvalidSymbolError
		journalErr    *journal.ValidationError
		configErr     *types.ConfigurationError
		historyErr    *types.InsufficientHistoryError
		upstreamErr   *types.UpstreamFetchError
		modelErr      *types.ModelCallError
		malformedErr  *types.MalformedModelOutputError
	)
	switch {
	case errors.As(err, &invalidSymbol), errors.As(err, &journalErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &configErr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	case errors.As(err, &historyErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &upstreamErr), errors.As(err, &modelErr), errors.As(err, &malformedErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

type candleJSON struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

func candlePayload(series []types.Candle) []candleJSON {
	out := make([]candleJSON, len(series))
	for i, cd := range series {
		out[i] = candleJSON{Time: cd.Time, Open: cd.Open, High: cd.High, Low: cd.Low, Close: cd.Close, Volume: cd.Vol}
	}
	return out
}
