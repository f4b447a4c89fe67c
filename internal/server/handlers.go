package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tinchodeluca/scann-url/internal/dashboard"
	"github.com/tinchodeluca/scann-url/internal/domain"
)

// SnapshotReader reads the current snapshot.
type SnapshotReader interface {
	Read() (domain.Snapshot, error)
}

// HistoryReader reads price histories.
type HistoryReader interface {
	Get(ctx context.Context, name string) (domain.ProductHistory, error)
	All(ctx context.Context) (map[string]domain.ProductHistory, error)
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// ProductHistoryResponse is returned by /api/v1/history/:name.
type ProductHistoryResponse struct {
	Name    string                `json:"name"`
	History domain.ProductHistory `json:"history"`
}

type handlers struct {
	snapshots SnapshotReader
	history   HistoryReader
	version   string
	started   time.Time
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: ServiceName,
		Version: h.version,
		Uptime:  time.Since(h.started).Truncate(time.Second).String(),
	})
}

func (h *handlers) prices(c *gin.Context) {
	snap, err := h.snapshots.Read()
	if errors.Is(err, dashboard.ErrNoSnapshot) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no price check has run yet"})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *handlers) allHistory(c *gin.Context) {
	all, err := h.history.All(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	doc := domain.NewHistoryDocument()
	for name, entries := range all {
		doc.History[name] = entries
	}
	c.JSON(http.StatusOK, doc)
}

func (h *handlers) productHistory(c *gin.Context) {
	name := c.Param("name")
	entries, err := h.history.Get(c.Request.Context(), name)
	if err != nil {
		h.fail(c, err)
		return
	}
	if len(entries) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown product", "name": name})
		return
	}
	c.JSON(http.StatusOK, ProductHistoryResponse{Name: name, History: entries})
}

func (h *handlers) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
