package main

import (
	"context"
	"time"

	"github.com/lifehex/lifehex/config"
	"github.com/lifehex/lifehex/habit"
	"github.com/lifehex/lifehex/models"
	"github.com/lifehex/lifehex/routes"
	"github.com/lifehex/lifehex/store"
	"github.com/lifehex/lifehex/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.Category{}, &models.Checkin{}, &models.Streak{}, &models.DailyRollup{})

	categories := store.NewCategoryRepo(db)
	checkins := store.NewCheckinRepo(db)
	streaks := store.NewStreakRepo(db)
	rollups := store.NewRollupRepo(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := categories.Seed(ctx, cfg.Categories); err != nil {
		cancel()
		utils.Sugar.Fatalf("category seeding failed: %v", err)
	}
	cancel()

	svc := habit.NewService(categories, checkins, streaks, rollups, cfg.CategoryCount, utils.Sugar)

	reconciler, err := habit.NewReconciler(svc, cfg.ReconcileCron, utils.Sugar)
	if err != nil {
		utils.Sugar.Fatalf("invalid reconcile cron spec %q: %v", cfg.ReconcileCron, err)
	}
	reconciler.Start()
	defer reconciler.Stop()

	r := routes.SetupRouter(svc)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
