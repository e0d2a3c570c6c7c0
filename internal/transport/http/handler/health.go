package handler

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// Probe reports whether one dependency is reachable.
type Probe func(ctx context.Context) error

type HealthHandler struct {
	appName   string
	env       string
	startedAt time.Time
	probes    map[string]Probe
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func NewHealthHandler(appName, env string, startedAt time.Time, probes map[string]Probe) *HealthHandler {
	return &HealthHandler{
		appName:   appName,
		env:       env,
		startedAt: startedAt,
		probes:    probes,
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.probes))
	for name := range h.probes {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		mu       sync.Mutex
		statuses = make(map[string]dependencyStatus, len(names))
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		name := name
		probe := h.probes[name]
		g.Go(func() error {
			status := dependencyStatus{OK: true}
			if err := probe(gctx); err != nil {
				status = dependencyStatus{OK: false, Message: err.Error()}
			}
			mu.Lock()
			statuses[name] = status
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	allOK := true
	for _, s := range statuses {
		allOK = allOK && s.OK
	}
	statusCode := http.StatusOK
	if !allOK {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"success":      allOK,
		"app":          h.appName,
		"env":          h.env,
		"uptime_sec":   int(time.Since(h.startedAt).Seconds()),
		"dependencies": statuses,
	})
}
