package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/burger-helsinki/internal/announcement"
	"github.com/example/burger-helsinki/internal/auth"
	"github.com/example/burger-helsinki/internal/booking"
	"github.com/example/burger-helsinki/internal/config"
	"github.com/example/burger-helsinki/internal/crypto"
	"github.com/example/burger-helsinki/internal/db"
	"github.com/example/burger-helsinki/internal/drafts"
	"github.com/example/burger-helsinki/internal/events"
	"github.com/example/burger-helsinki/internal/migrate"
	"github.com/example/burger-helsinki/internal/scheduler"
	"github.com/example/burger-helsinki/internal/web"
	"github.com/gorilla/securecookie"
	"github.com/spf13/cobra"
)

func newServerCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the website",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			if cfg.EphemeralKeys {
				logger.Warn("COOKIE_HASH_KEY/COOKIE_BLOCK_KEY not set; using random keys, sessions end on restart")
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			var d *db.DB
			if cfg.DatabaseURL != "" {
				if d, err = openDB(ctx, cfg); err != nil {
					return err
				}
				defer d.Close()
				if migrateUp {
					if err := migrate.Up(ctx, d); err != nil {
						return err
					}
				}
			} else {
				logger.Info("no DATABASE_URL; running in memory mode, staff login disabled")
			}

			var users auth.Users
			var annRepo *announcement.Repo
			if d != nil {
				users = auth.NewUserRepo(d)
				annRepo = announcement.NewRepo(d)
			}
			authStore := auth.NewStore(users, cfg.CookieHashKey, cfg.CookieBlockKey)

			source, err := serverAnnouncements(ctx, cfg, annRepo, logger)
			if err != nil {
				return err
			}

			var publisher events.Publisher = events.Nop{}
			if len(cfg.KafkaBrokers) > 0 {
				publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
				logger.Info("publishing reservation events", slog.Any("brokers", cfg.KafkaBrokers), slog.String("topic", cfg.KafkaTopic))
			}
			defer publisher.Close()

			backend, err := bookingBackend(cfg, d)
			if err != nil {
				return err
			}
			logger.Info("booking backend", slog.String("kind", cfg.BookingBackend))

			draftStore := drafts.NewStore(cfg.DraftTTL)
			s := &scheduler.Scheduler{
				Tasks:    []scheduler.Task{scheduler.ExpireDrafts(draftStore.Expire, logger)},
				Interval: cfg.SweepInterval,
				Logger:   logger,
			}
			go func() { _ = s.Run(ctx) }()

			ws := &web.Server{
				Auth:   authStore,
				Drafts: draftStore,
				Booking: &booking.Service{
					Backend:   backend,
					Publisher: publisher,
					Timeout:   cfg.BookingTimeout,
					Location:  cfg.Location,
					Logger:    logger,
				},
				DraftTokens:      securecookie.New(cfg.CookieHashKey, cfg.CookieBlockKey),
				Announcements:    source,
				AnnouncementRepo: annRepo,
				MaxGuests:        cfg.MaxGuests,
				WeekStart:        time.Sunday,
				Location:         cfg.Location,
				LoadingMin:       cfg.LoadingMin,
				Logger:           logger,
			}
			return web.Start(ctx, cfg.ListenAddr, ws.Routes(), logger)
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")
	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}

// serverAnnouncements prefers the database so staff posts show up, then a
// watched YAML file, then the built-in seed.
func serverAnnouncements(ctx context.Context, cfg config.Config, repo *announcement.Repo, logger *slog.Logger) (announcement.Source, error) {
	switch {
	case repo != nil:
		return repo, nil
	case cfg.AnnouncementsFile != "":
		fs, err := announcement.OpenFile(cfg.AnnouncementsFile, logger)
		if err != nil {
			return nil, err
		}
		go func() {
			if err := fs.Watch(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("announcements watcher stopped", slog.Any("error", err))
			}
		}()
		return fs, nil
	default:
		return announcement.Seed()
	}
}

func bookingBackend(cfg config.Config, d *db.DB) (booking.Backend, error) {
	switch cfg.BookingBackend {
	case config.BackendPostgres:
		if d == nil {
			return nil, fmt.Errorf("booking backend %q needs DATABASE_URL", cfg.BookingBackend)
		}
		aead, err := crypto.New(cfg.ContactEncKey)
		if err != nil {
			return nil, fmt.Errorf("CONTACT_ENC_KEY: %w", err)
		}
		return &booking.PostgresBackend{Repo: booking.NewRepo(d, aead), Location: cfg.Location}, nil
	case config.BackendHTTP:
		return booking.NewHTTPBackend(cfg.BookingURL, cfg.BookingAPIKey, cfg.BookingTimeout, cfg.Location), nil
	default:
		return &booking.MemoryBackend{Location: cfg.Location}, nil
	}
}
