package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/aridlab/labsite/config"
	"github.com/aridlab/labsite/models"
	"github.com/aridlab/labsite/routes"
	"github.com/aridlab/labsite/seed"
	"github.com/aridlab/labsite/storage"
	"github.com/aridlab/labsite/utils"
)

func main() {
	configPath := flag.String("config", "config/config.json", "path to the JSON config file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config path] [serve|seed]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cmd, ok := command(flag.Args())
	if !ok {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadFrom(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	config.Set(cfg)

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	db := config.InitDatabase(models.All()...)

	if cmd == cmdSeed {
		if err := seed.Run(db); err != nil {
			utils.Logger.Fatal("seed failed", zap.Error(err))
		}
		utils.Sugar.Info("database seeded")
		return
	}

	ctx := context.Background()
	shutdownTracing, err := utils.SetupTelemetry(ctx, cfg)
	if err != nil {
		utils.Logger.Fatal("telemetry setup failed", zap.Error(err))
	}

	store, err := storage.New(ctx, cfg)
	if err != nil {
		utils.Logger.Fatal("upload store setup failed", zap.Error(err))
	}

	r := routes.SetupRouter(db, store)

	closeDB := func(context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	utils.Sugar.Infof("Starting server on port %s (graceful, db=%s, storage=%s)", cfg.AppPort, cfg.DBDriver, cfg.StorageDriver)
	if err := utils.GraceServer(":"+cfg.AppPort, r, shutdownTracing, closeDB); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}

const (
	cmdServe = "serve"
	cmdSeed  = "seed"
)

// command resolves the sub-command from the positional arguments; serve is the default.
func command(args []string) (string, bool) {
	if len(args) == 0 {
		return cmdServe, true
	}
	if len(args) > 1 {
		return "", false
	}
	switch args[0] {
	case cmdServe, cmdSeed:
		return args[0], true
	default:
		return "", false
	}
}
