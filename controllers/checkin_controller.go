package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lifehex/lifehex/config"
	"github.com/lifehex/lifehex/habit"
	"github.com/lifehex/lifehex/middleware"
	"github.com/lifehex/lifehex/utils"
)

// CheckinController handles the daily check-in endpoints.
type CheckinController struct {
	svc *habit.Service
}

// NewCheckinController creates a new controller instance.
func NewCheckinController(svc *habit.Service) *CheckinController {
	return &CheckinController{svc: svc}
}

type recordCheckinRequest struct {
	CategoryID uint   `json:"category_id" binding:"required"`
	Day        string `json:"day"`
	Mood       *int   `json:"mood"`
	Notes      string `json:"notes"`
}

// Record upserts a check-in for the authenticated user. Submitting the same
// day twice updates mood/notes and is never an error.
func (c *CheckinController) Record(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req recordCheckinRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request body")
		return
	}

	var day *time.Time
	if req.Day != "" {
		d, err := utils.ParseDay(req.Day)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40003, err.Error())
			return
		}
		day = &d
	}

	checkin, err := c.svc.RecordCheckin(ctx.Request.Context(), userID, req.CategoryID, day, req.Mood, req.Notes)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	invalidateDashboard(userID)
	utils.Success(ctx, checkin)
}

// Remove deletes the check-in for a (category, day) and recomputes the
// streak. Removing a day never checked in is a no-op success.
func (c *CheckinController) Remove(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	categoryID, ok := parseID(ctx.Param("categoryID"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid category id")
		return
	}
	day, err := utils.ParseDay(ctx.Param("day"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, err.Error())
		return
	}

	removed, err := c.svc.RemoveCheckin(ctx.Request.Context(), userID, categoryID, day)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	invalidateDashboard(userID)
	utils.Success(ctx, gin.H{"removed": removed})
}

// GetStreak returns the persisted streak for one category, zeros when the
// user has no history.
func (c *CheckinController) GetStreak(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	categoryID, ok := parseID(ctx.Param("categoryID"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid category id")
		return
	}

	s, err := c.svc.GetStreak(ctx.Request.Context(), userID, categoryID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, s)
}

// RecomputeStreak rebuilds the streak from full history. Idempotent and safe
// to re-run at any time.
func (c *CheckinController) RecomputeStreak(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	categoryID, ok := parseID(ctx.Param("categoryID"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid category id")
		return
	}

	s, err := c.svc.RecomputeStreak(ctx.Request.Context(), userID, categoryID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	invalidateDashboard(userID)
	utils.Success(ctx, s)
}

// respondServiceError maps engine errors onto the response envelope.
func respondServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, habit.ErrInvalidMood):
		utils.Error(ctx, http.StatusBadRequest, 40004, err.Error())
	case errors.Is(err, habit.ErrFutureDay):
		utils.Error(ctx, http.StatusBadRequest, 40005, err.Error())
	case errors.Is(err, habit.ErrInvalidRange):
		utils.Error(ctx, http.StatusBadRequest, 40006, err.Error())
	case errors.Is(err, habit.ErrCategoryNotFound):
		utils.Error(ctx, http.StatusNotFound, 40401, err.Error())
	default:
		utils.Error(ctx, http.StatusServiceUnavailable, 50301, "storage unavailable")
	}
}

// getUserID extracts the authenticated user id injected by the auth middleware.
func getUserID(ctx *gin.Context) (uint, bool) {
	v, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// invalidateDashboard drops the user's cached dashboard snapshots after any
// write. No-op when snapshot caching is disabled.
func invalidateDashboard(userID uint) {
	if config.Get().DashboardCacheTTLSec <= 0 {
		return
	}
	utils.InvalidateByPrefix(fmt.Sprintf("dash:%d:", userID))
}
