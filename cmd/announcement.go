package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/example/burger-helsinki/internal/announcement"
	"github.com/example/burger-helsinki/internal/config"
	"github.com/example/burger-helsinki/internal/migrate"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newAnnouncementCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "announcement",
		Aliases: []string{"announcements"},
		Short:   "Manage announcements",
	}
	cmd.AddCommand(newAnnouncementAddCmd())
	cmd.AddCommand(newAnnouncementListCmd())
	return cmd
}

func newAnnouncementAddCmd() *cobra.Command {
	var title, body, published string

	c := &cobra.Command{
		Use:   "add",
		Short: "Publish an announcement",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}
			it := announcement.Item{Title: title, Body: body}
			if published != "" {
				if it.PublishedAt, err = time.ParseInLocation("2006-01-02 15:04", published, cfg.Location); err != nil {
					return fmt.Errorf("invalid --published (want YYYY-MM-DD HH:MM): %w", err)
				}
			}
			if err := it.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			d, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer d.Close()
			if err := migrate.Up(ctx, d); err != nil {
				return err
			}

			id, err := announcement.NewRepo(d).Create(ctx, it, 0)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published announcement id=%d\n", id)
			return nil
		},
	}
	c.Flags().StringVar(&title, "title", "", "headline")
	c.Flags().StringVar(&body, "body", "", "text")
	c.Flags().StringVar(&published, "published", "", "publish time YYYY-MM-DD HH:MM (default now)")
	_ = c.MarkFlagRequired("title")
	_ = c.MarkFlagRequired("body")
	return c
}

func newAnnouncementListCmd() *cobra.Command {
	var query string

	c := &cobra.Command{
		Use:   "list",
		Short: "List announcements from the configured source",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			src, closeFn, err := announcementSource(cmd, cfg, logger)
			if err != nil {
				return err
			}
			defer closeFn()

			items, err := src.List(ctx)
			if err != nil {
				return err
			}
			now := time.Now()
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"ID", "Published", "Title"})
			for _, it := range announcement.Filter(items, query) {
				t.AppendRow(table.Row{it.ID, it.Age(now), it.Title})
			}
			t.Render()
			return nil
		},
	}
	c.Flags().StringVarP(&query, "query", "q", "", "only show announcements containing this text")
	return c
}

// announcementSource picks the database when configured, then
// ANNOUNCEMENTS_FILE, then the built-in seed.
func announcementSource(cmd *cobra.Command, cfg config.Config, logger *slog.Logger) (announcement.Source, func(), error) {
	if cfg.DatabaseURL != "" {
		d, err := openDB(cmd.Context(), cfg)
		if err != nil {
			return nil, nil, err
		}
		return announcement.NewRepo(d), d.Close, nil
	}
	if cfg.AnnouncementsFile != "" {
		fs, err := announcement.OpenFile(cfg.AnnouncementsFile, logger)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	}
	seed, err := announcement.Seed()
	if err != nil {
		return nil, nil, err
	}
	return seed, func() {}, nil
}
