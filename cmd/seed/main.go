// Command seed loads users and cards from a YAML catalog into the entity store.
//
//	seed -catalog catalog.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/yungbote/cardmarket-backend/internal/app"
	"github.com/yungbote/cardmarket-backend/internal/data/db"
	"github.com/yungbote/cardmarket-backend/internal/data/repos"
	"github.com/yungbote/cardmarket-backend/internal/pkg/logger"
	"github.com/yungbote/cardmarket-backend/internal/seed"
)

func main() {
	path := flag.String("catalog", "catalog.yaml", "path to the YAML card catalog")
	flag.Parse()

	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	raw, err := os.ReadFile(*path)
	if err != nil {
		log.Fatal("Read catalog failed", "path", *path, "error", err)
	}
	catalog, err := seed.ParseCatalog(raw)
	if err != nil {
		log.Fatal("Parse catalog failed", "path", *path, "error", err)
	}

	store, err := db.NewService(cfg.DB(), log)
	if err != nil {
		log.Fatal("Open entity store failed", "error", err)
	}
	defer store.Close()
	if err := store.AutoMigrateAll(); err != nil {
		log.Fatal("Automigrate failed", "error", err)
	}

	loader := seed.NewLoader(store.DB(), log, repos.NewUserRepo(store.DB(), log), repos.NewCardRepo(store.DB(), log))
	res, err := loader.Load(context.Background(), catalog)
	if err != nil {
		log.Fatal("Seed failed", "error", err)
	}
	log.Info("Seed complete", "users_created", res.UsersCreated, "users_skipped", res.UsersSkipped, "cards_created", res.CardsCreated)
}
