package main

import (
	"context"
	"log"

	"intellicart-assistant-be/internal/bootstrap"
	"intellicart-assistant-be/internal/config"
	"intellicart-assistant-be/internal/server"
	"intellicart-assistant-be/internal/tracer"
	"intellicart-assistant-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database (only needed for the pgvector index)
	var gormDB *gorm.DB
	if cfg.Index.Backend == "pgvector" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	if container.ReindexOnStartup {
		go func() {
			log.Println("Background: Reindexing catalogue...")
			res, err := container.CatalogueService.Reindex(context.Background())
			if err != nil {
				log.Printf("Background Reindex Error: %v", err)
				return
			}
			log.Printf("Background: %s", res.Status)
		}()
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
