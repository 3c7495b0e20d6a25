package restapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"wallet_monitor/internal/app/monitor"
	"wallet_monitor/internal/domain/entity"
)

// Monitor is the part of the monitoring facade exposed over HTTP.
type Monitor interface {
	Register(kind entity.TaskKind, target entity.Target) (bool, error)
	UnregisterTarget(kind entity.TaskKind, chain, address string) bool
	Targets() []entity.Registration
	SetThreshold(symbol string, value float64) error
	GetThreshold(symbol string) float64
	ListAlerts() []entity.Alert
	AlertsForSymbol(symbol string) []entity.Alert
	AlertsForChain(chain string) []entity.Alert
	PruneOldAlerts(age time.Duration) int
	Snapshot(kind entity.TaskKind, chain, address string) (*entity.Snapshot, bool)
	TotalMonitoredValue() float64
	SnapshotWrites() uint64
}

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// ThresholdRequest is the body of PUT /thresholds/:symbol.
type ThresholdRequest struct {
	Value *float64 `json:"value" binding:"required"`
}

// TargetRequest is the body of POST /targets.
type TargetRequest struct {
	Kind        string `json:"kind"`
	Chain       string `json:"chain" binding:"required"`
	Address     string `json:"address" binding:"required"`
	PortfolioID string `json:"portfolioId"`
}

// Summary aggregates the engine state.
type Summary struct {
	TotalMonitoredValue float64 `json:"totalMonitoredValue"`
	AlertCount          int     `json:"alertCount"`
	TargetCount         int     `json:"targetCount"`
	SnapshotWrites      uint64  `json:"snapshotWrites"`
}

// MonitorHandler serves the monitoring API.
type MonitorHandler struct {
	monitor Monitor
	logger  *zap.Logger
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(m Monitor, logger *zap.Logger) *MonitorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MonitorHandler{monitor: m, logger: logger.Named("MonitorHandler")}
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, APIResponse{Error: msg})
}

func parseKind(c *gin.Context, raw string) (entity.TaskKind, bool) {
	if raw == "" {
		return entity.KindBalance, true
	}
	kind, ok := entity.ParseTaskKind(raw)
	if !ok {
		fail(c, http.StatusBadRequest, "unknown kind "+raw)
	}
	return kind, ok
}

// ListAlerts handles GET /alerts with optional symbol and chain filters.
func (h *MonitorHandler) ListAlerts(c *gin.Context) {
	symbol := strings.TrimSpace(c.Query("symbol"))
	chain := strings.TrimSpace(c.Query("chain"))

	var alerts []entity.Alert
	switch {
	case symbol != "" && chain != "":
		alerts = lo.Filter(h.monitor.AlertsForSymbol(symbol), func(a entity.Alert, _ int) bool {
			return strings.EqualFold(a.Chain, chain)
		})
	case symbol != "":
		alerts = h.monitor.AlertsForSymbol(symbol)
	case chain != "":
		alerts = h.monitor.AlertsForChain(chain)
	default:
		alerts = h.monitor.ListAlerts()
	}
	c.JSON(http.StatusOK, APIResponse{Data: alerts})
}

// PruneAlerts handles POST /alerts/prune?age=<duration>.
func (h *MonitorHandler) PruneAlerts(c *gin.Context) {
	var age time.Duration
	if raw := c.Query("age"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			fail(c, http.StatusBadRequest, "age must be a positive duration such as 24h")
			return
		}
		age = d
	}
	removed := h.monitor.PruneOldAlerts(age)
	c.JSON(http.StatusOK, APIResponse{Data: gin.H{"removed": removed}})
}

// GetThreshold handles GET /thresholds/:symbol.
func (h *MonitorHandler) GetThreshold(c *gin.Context) {
	symbol := monitor.NormalizeSymbol(c.Param("symbol"))
	c.JSON(http.StatusOK, APIResponse{Data: gin.H{"symbol": symbol, "value": h.monitor.GetThreshold(symbol)}})
}

// SetThreshold handles PUT /thresholds/:symbol.
func (h *MonitorHandler) SetThreshold(c *gin.Context) {
	var req ThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	symbol := c.Param("symbol")
	if err := h.monitor.SetThreshold(symbol, *req.Value); err != nil {
		if errors.Is(err, monitor.ErrInvalidThreshold) {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to set threshold", zap.String("symbol", symbol), zap.Error(err))
		fail(c, http.StatusInternalServerError, "failed to set threshold")
		return
	}
	c.JSON(http.StatusOK, APIResponse{Data: gin.H{"symbol": monitor.NormalizeSymbol(symbol), "value": *req.Value}})
}

// ListTargets handles GET /targets.
func (h *MonitorHandler) ListTargets(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{Data: h.monitor.Targets()})
}

// RegisterTarget handles POST /targets. It answers 201 when a task was
// started and 200 when the target was already watched.
func (h *MonitorHandler) RegisterTarget(c *gin.Context) {
	var req TargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	kind, ok := parseKind(c, req.Kind)
	if !ok {
		return
	}

	target := entity.Target{Chain: req.Chain, Address: req.Address, PortfolioID: req.PortfolioID}
	started, err := h.monitor.Register(kind, target)
	switch {
	case errors.Is(err, monitor.ErrInvalidTarget), errors.Is(err, monitor.ErrUnknownKind):
		fail(c, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, monitor.ErrClosed):
		fail(c, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		h.logger.Error("Failed to register target", zap.Error(err))
		fail(c, http.StatusInternalServerError, "failed to register target")
		return
	}

	status := http.StatusOK
	if started {
		status = http.StatusCreated
	}
	c.JSON(status, APIResponse{Data: gin.H{"started": started, "registration": entity.Registration{Kind: kind, Target: target}}})
}

// UnregisterTarget handles DELETE /targets/:kind/:chain/:address.
func (h *MonitorHandler) UnregisterTarget(c *gin.Context) {
	kind, ok := parseKind(c, c.Param("kind"))
	if !ok {
		return
	}
	if !h.monitor.UnregisterTarget(kind, c.Param("chain"), c.Param("address")) {
		fail(c, http.StatusNotFound, "target not registered")
		return
	}
	c.Status(http.StatusNoContent)
}

// GetSnapshot handles GET /snapshots/:kind/:chain/:address.
func (h *MonitorHandler) GetSnapshot(c *gin.Context) {
	kind, ok := parseKind(c, c.Param("kind"))
	if !ok {
		return
	}
	snapshot, found := h.monitor.Snapshot(kind, c.Param("chain"), c.Param("address"))
	if !found {
		fail(c, http.StatusNotFound, "no snapshot yet")
		return
	}
	c.JSON(http.StatusOK, APIResponse{Data: snapshot})
}

// GetSummary handles GET /summary.
func (h *MonitorHandler) GetSummary(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{Data: Summary{
		TotalMonitoredValue: h.monitor.TotalMonitoredValue(),
		AlertCount:          len(h.monitor.ListAlerts()),
		TargetCount:         len(h.monitor.Targets()),
		SnapshotWrites:      h.monitor.SnapshotWrites(),
	}})
}
