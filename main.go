package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/korjavin/catmoodbot/bot"
	"github.com/korjavin/catmoodbot/config"
	"github.com/korjavin/catmoodbot/database"
	"github.com/korjavin/catmoodbot/deck"
	"github.com/korjavin/catmoodbot/logging"
	"github.com/korjavin/catmoodbot/models"
	"github.com/korjavin/catmoodbot/mood"
	"github.com/korjavin/catmoodbot/prediction"
	"github.com/korjavin/catmoodbot/session"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: loading .env: %v", err)
	}

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogMode, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	logger.Info("starting CatMoodBot")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("bot stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

// run wires the components and blocks until ctx is done. Startup failures
// are returned so the deferred cleanups still run.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if err := mood.ValidateQuestions(models.Questions); err != nil {
		return fmt.Errorf("invalid quiz: %w", err)
	}
	if err := mood.ValidateCategories(models.MoodCategories); err != nil {
		return fmt.Errorf("invalid mood categories: %w", err)
	}

	catalog, err := deck.LoadCatalog(cfg.CatalogPath, deck.CatalogOptions{
		ArtDir:         cfg.CardArtDir,
		ArtExt:         cfg.CardArtExt,
		RequireArtwork: cfg.CardArtRequired,
	})
	if err != nil {
		return fmt.Errorf("load card catalog: %w", err)
	}
	d, err := deck.NewDeck(catalog)
	if err != nil {
		return fmt.Errorf("build deck: %w", err)
	}
	logger.Info("card catalog loaded", zap.Int("cards", d.Size()))

	db, err := database.New(cfg.DatabasePath, database.WithLocation(cfg.Location()), database.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("open database %s: %w", cfg.DatabasePath, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("could not close database", zap.Error(err))
		}
	}()

	oracle := prediction.NewOracleClient(cfg.OracleURL, cfg.OracleUserID, cfg.OracleAPIKey, cfg.HTTPTimeout, logger.Named("oracle"))
	var translator prediction.Translator
	if cfg.TranslatorAPIKey != "" {
		translator = prediction.NewTranslatorClient(cfg.TranslatorURL, cfg.TranslatorAPIKey, cfg.HTTPTimeout, logger.Named("translator"))
	} else {
		logger.Info("translator api key not set, predictions stay untranslated")
	}
	provider := prediction.NewProvider(oracle, translator, cfg.TranslateTo, logger.Named("prediction"))

	sess := session.New(db, provider, d, logger.Named("session"))

	b, err := bot.New(cfg, sess, logger.Named("bot"))
	if err != nil {
		return fmt.Errorf("initialize bot: %w", err)
	}

	logger.Info("bot initialized successfully")
	b.Start(ctx)
	return nil
}
