package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/pantrykeeper/internal/buildinfo"
	"github.com/dmitrijs2005/pantrykeeper/internal/server"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Seed(ctx); err != nil {
		log.Fatalf("seed: %v", err)
	}

	log.Println("Database wiped and demo data inserted.")
}
