package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/pantrykeeper/internal/buildinfo"
	"github.com/dmitrijs2005/pantrykeeper/internal/client/cli"
	"github.com/dmitrijs2005/pantrykeeper/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	cli.NewApp(cfg).Run(ctx)

}
