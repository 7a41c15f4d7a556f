package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	models "TazeAI/internal/domain/models"
	"TazeAI/internal/service/metrics"
	"TazeAI/internal/service/ratelimit"
	xhttp "TazeAI/pkg/http"
	xlogger "TazeAI/pkg/logger"
	"TazeAI/pkg/util"
)

// Analyzer is the live signal source behind /api/signals.
type Analyzer interface {
	Analyze(ctx context.Context, symbols []string, refresh bool) ([]models.SignalRecord, error)
	Degraded() bool
}

// Backtester is the replay source behind /api/backtest.
type Backtester interface {
	RunSymbol(ctx context.Context, symbol, profile string) (*models.BacktestReport, error)
}

// SignalsEchoHandler serves signals and backtests over Echo.
type SignalsEchoHandler struct {
	logger   *xlogger.Logger
	analyzer Analyzer
	bt       Backtester
	rl       *ratelimit.Limiter
}

func NewSignalsEchoHandler(logger *xlogger.Logger, analyzer Analyzer, bt Backtester, rl *ratelimit.Limiter) *SignalsEchoHandler {
	metrics.Register()
	if logger == nil {
		logger = xlogger.NewNop()
	}
	return &SignalsEchoHandler{logger: logger, analyzer: analyzer, bt: bt, rl: rl}
}

func (h *SignalsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	g := e.Group("/api")
	if h.rl != nil {
		g.Use(h.rl.Middleware())
	}
	g.GET("/signals", h.Signals)
	g.GET("/backtest", h.Backtest)
}

type healthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

func (h *SignalsEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, healthResponse{Status: "ok", ModelLoaded: !h.analyzer.Degraded()})
}

func (h *SignalsEchoHandler) Signals(c echo.Context) error {
	start := time.Now()
	var failed error
	defer func() { metrics.Observe("signals", start, failed) }()

	req := &models.SignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	recs, aerr := h.analyzer.Analyze(c.Request().Context(), util.SplitSymbols(req.Symbols), req.Refresh)
	if aerr != nil {
		failed = aerr
		h.logger.Error("signals usecase error", xlogger.Error(aerr))
		return xhttp.AppErrorResponse(c, toAppError(aerr))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, recs)
}

func (h *SignalsEchoHandler) Backtest(c echo.Context) error {
	start := time.Now()
	var failed error
	defer func() { metrics.Observe("backtest", start, failed) }()

	req := &models.BacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rep, berr := h.bt.RunSymbol(c.Request().Context(), req.Symbol, req.Profile)
	if berr != nil {
		failed = berr
		h.logger.Warn("backtest usecase error",
			xlogger.String("symbol", req.Symbol),
			xlogger.String("profile", req.Profile),
			xlogger.Error(berr),
		)
		return xhttp.AppErrorResponse(c, toAppError(berr))
	}
	if !req.Curve {
		out := *rep
		out.Curve = nil
		rep = &out
	}
	return xhttp.SuccessResponse(c, rep)
}

var errorRules = []xhttp.ErrorRule{
	{Target: models.ErrNoDataset, Status: http.StatusServiceUnavailable, Code: "ERR_NO_DATASET"},
	{Target: models.ErrModelNotLoaded, Status: http.StatusServiceUnavailable, Code: "ERR_MODEL_NOT_LOADED"},
	{Target: models.ErrNoValidData, Status: http.StatusNotFound, Code: "ERR_NO_VALID_DATA"},
	{Target: models.ErrUnknownProfile, Status: http.StatusBadRequest, Code: "ERR_UNKNOWN_PROFILE"},
}

func toAppError(err error) error { return xhttp.MapError(err, errorRules) }
