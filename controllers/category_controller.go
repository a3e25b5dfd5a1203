package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/lifehex/lifehex/habit"
	"github.com/lifehex/lifehex/utils"
)

// CategoryController serves the fixed category set.
type CategoryController struct {
	svc *habit.Service
}

// NewCategoryController creates a new controller instance.
func NewCategoryController(svc *habit.Service) *CategoryController {
	return &CategoryController{svc: svc}
}

// List returns all active categories in position order. The full set is
// always returned; size anomalies are reported by the engine, not hidden by
// truncation here.
func (c *CategoryController) List(ctx *gin.Context) {
	cats, err := c.svc.ListCategories(ctx.Request.Context())
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"categories": cats})
}
