package deps

import (
	"context"

	"github.com/bwise1/reportnow/config"
	"github.com/bwise1/reportnow/internal/db"
	"github.com/bwise1/reportnow/internal/http/gemini"
	"github.com/bwise1/reportnow/internal/http/radar"
	"github.com/bwise1/reportnow/internal/notify"
	"github.com/bwise1/reportnow/util/storage"
	"github.com/bwise1/reportnow/util/websockets"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Dependencies holds the long-lived clients built once at startup. A nil
// field means the integration is not configured.
type Dependencies struct {
	DB         *db.DB
	Images     storage.ImageStore
	Gemini     *gemini.Client
	Analyzer   *gemini.Analyzer
	Radar      *radar.Client
	Dispatcher *notify.Dispatcher
	WebSocket  *websockets.WebSocketManager
}

func New(ctx context.Context, cfg *config.Config) *Dependencies {
	d := &Dependencies{WebSocket: websockets.NewWebSocketManager()}

	if cfg.Dsn == "" {
		log.Warn().Msg("DSN is not set, report storage is disabled")
	} else {
		database, err := db.New(cfg.Dsn)
		if err != nil {
			log.Panic().Err(err).Msg("failed to configure database")
		}
		d.DB = database
	}

	images, err := storage.New(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Str("provider", cfg.StorageProvider).Msg("image storage disabled, reports will be saved without images")
	} else {
		d.Images = images
	}

	var generator gemini.Generator
	if cfg.GeminiAPIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set, image analysis will fail with a configuration error")
	} else {
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Error().Err(err).Msg("failed to create gemini client")
		} else {
			d.Gemini = client
			generator = client
		}
	}
	d.Analyzer = gemini.NewAnalyzer(generator)

	radarClient, err := radar.NewClient(cfg.RadarAPIKey, cfg.RadarBaseURL)
	if err != nil {
		log.Error().Err(err).Msg("failed to create radar client")
	} else {
		d.Radar = radarClient
	}

	var sender notify.Sender
	if resendSender, err := notify.NewResendSender(cfg.ResendAPIKey); err != nil {
		log.Warn().Err(err).Msg("email notifications disabled")
	} else {
		sender = resendSender
	}
	d.Dispatcher = notify.NewDispatcher(sender, cfg.NotifyFrom, cfg.NotifyTimeout)

	return d
}

func (d *Dependencies) Pool() *pgxpool.Pool {
	if d.DB == nil {
		return nil
	}
	return d.DB.Pool()
}

// Close waits for queued notifications and releases every client.
func (d *Dependencies) Close() {
	d.WebSocket.Stop()
	d.Dispatcher.Wait()
	if d.Gemini != nil {
		if err := d.Gemini.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close gemini client")
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
}
