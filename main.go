package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/checklist"
	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/config"
	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/database"
	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/monitor"
	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/router"
)

func main() {
	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// ensure basic directories exist
	if err := ensureDir(filepath.Dir(cfg.Database.Path)); err != nil {
		log.Fatalf("create data dir: %v", err)
	}
	if err := ensureDir(filepath.Dir(cfg.Log.File)); err != nil {
		log.Fatalf("create log dir: %v", err)
	}

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	// run migrations and install the checklist catalogue
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}
	if err := database.Seed(db); err != nil {
		log.Fatalf("seed database: %v", err)
	}

	svc := checklist.NewService(db)

	// background compliance poll, logs lapsed checklists server-side
	mon := monitor.New(svc,
		time.Duration(cfg.Monitor.PollIntervalSeconds)*time.Second,
		func(expired []checklist.TypeOverview) {
			for _, t := range expired {
				log.Printf("checklist %s (%s) is not valid", t.Code, t.Name)
			}
		})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go mon.Run(ctx)

	// setup router
	r := router.SetupRouter(cfg, db, svc, mon)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	log.Printf("server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
