package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lifehex/lifehex/config"
	"github.com/lifehex/lifehex/habit"
	"github.com/lifehex/lifehex/utils"
)

// DashboardController serves the aggregated dashboard snapshot and the
// analytics rollup surface.
type DashboardController struct {
	svc *habit.Service
}

// NewDashboardController creates a new controller instance.
func NewDashboardController(svc *habit.Service) *DashboardController {
	return &DashboardController{svc: svc}
}

// Get returns the single-response dashboard snapshot for the authenticated
// user, optionally as of a given day (?as_of=YYYY-MM-DD). Snapshots are
// cached briefly in Redis and invalidated by any write.
func (c *DashboardController) Get(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	asOf := utils.Today()
	if raw := ctx.Query("as_of"); raw != "" {
		d, err := utils.ParseDay(raw)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40003, err.Error())
			return
		}
		asOf = d
	}

	cacheTTL := time.Duration(config.Get().DashboardCacheTTLSec) * time.Second
	cacheKey := fmt.Sprintf("dash:%d:%s", userID, utils.FormatDay(asOf))
	if cacheTTL > 0 {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			utils.Success(ctx, json.RawMessage(b))
			return
		}
	}

	snapshot, err := c.svc.GetDashboard(ctx.Request.Context(), userID, asOf)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	if cacheTTL > 0 {
		utils.CacheSetJSON(cacheKey, snapshot, cacheTTL)
	}
	utils.Success(ctx, snapshot)
}

// Rollups returns per-day completion summaries for a date range
// (?from=YYYY-MM-DD&to=YYYY-MM-DD, both required).
func (c *DashboardController) Rollups(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	from, err := utils.ParseDay(ctx.Query("from"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, err.Error())
		return
	}
	to, err := utils.ParseDay(ctx.Query("to"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, err.Error())
		return
	}

	rows, err := c.svc.GetRollups(ctx.Request.Context(), userID, from, to)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"rollups": rows})
}
