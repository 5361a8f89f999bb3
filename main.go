package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/typehack/assets"
	"github.com/robalobadob/typehack/internal/config"
	"github.com/robalobadob/typehack/internal/database"
	"github.com/robalobadob/typehack/internal/httpserver"
	"github.com/robalobadob/typehack/internal/store"
	"github.com/robalobadob/typehack/internal/words"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if !cfg.Production() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	lib, err := loadWords(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}

	db, err := database.OpenMigrated(cfg.DatabasePath, assets.Migrations())
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("failed to open database")
	}
	defer db.Close()

	srv := httpserver.New(cfg, httpserver.Deps{
		Runs:    store.NewMemoryRuns(),
		Players: store.NewFiles(cfg.SaveDir),
		DB:      db,
		Words:   lib,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("port", cfg.Port).Str("saves", cfg.SaveDir).Msg("starting typehack server")
	if err := srv.Run(ctx, ":"+cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

// loadWords reads keyword lists from KEYWORDS_DIR when set, else the embedded set.
func loadWords(cfg config.Config) (*words.Library, error) {
	if cfg.KeywordsDir != "" {
		log.Info().Str("dir", cfg.KeywordsDir).Msg("loading keyword lists from disk")
		return words.LoadDir(cfg.KeywordsDir)
	}
	return words.Embedded()
}
