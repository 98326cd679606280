package main

import (
	"fmt"
	"os"

	"github.com/DRSN-tech/taxonomy-backend/internal/app"
	config "github.com/DRSN-tech/taxonomy-backend/internal/cfg"
	"github.com/DRSN-tech/taxonomy-backend/pkg/logger"
)

// main запускает сервис таксономии.
//
//	@title			Taxonomy API
//	@version		1.0
//	@description	Управление деревом категорий: категории, узлы и подкатегории.
//	@host			localhost:8080
//	@BasePath		/api/v1
func main() {
	log, err := logger.NewZapLogger(os.Getenv("LOG_MODE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		log.Sync()
		os.Exit(1)
	}
}
