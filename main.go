package main

import (
	"context"
	"flag"
	"time"

	"github.com/cppla/mdblog/config"
	"github.com/cppla/mdblog/controllers"
	"github.com/cppla/mdblog/routes"
	"github.com/cppla/mdblog/storage"
	"github.com/cppla/mdblog/utils"
	"github.com/cppla/mdblog/views"
)

func main() {
	reset := flag.Bool("reset", false, "delete every post before starting")
	configPath := flag.String("config", config.DefaultPath, "location of configuration file")
	flag.Parse()

	cfg := config.Load(*configPath)

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	store, err := storage.Open(cfg.DataPath)
	if err != nil {
		utils.Sugar.Fatalw("could not open post store", "path", cfg.DataPath, "err", err)
	}

	cache := utils.NewPageCache(utils.NewRedisClient(cfg), time.Duration(cfg.CacheTTLSeconds)*time.Second)

	if *reset {
		if err := controllers.ResetContent(context.Background(), store, cache); err != nil {
			_ = store.Close()
			utils.Sugar.Fatalw("could not reset post store", "err", err)
		}
	}

	last, err := store.LastID()
	if err != nil {
		_ = store.Close()
		utils.Sugar.Fatalw("could not read last post id", "err", err)
	}

	posts := controllers.NewPostController(
		store,
		utils.NewIDGenerator(last),
		utils.NewMarkdown(!cfg.AllowRawHTML),
		views.MustRenderer(),
		cache,
		cfg.SiteTitle,
	)
	r := routes.SetupRouter(cfg, posts)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	err = utils.GraceServer(":"+cfg.AppPort, r)
	if cerr := store.Close(); cerr != nil {
		utils.Sugar.Warnw("could not close post store", "err", cerr)
	}
	if err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
