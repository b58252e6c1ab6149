package cmd

import (
	"fmt"
	"time"

	"github.com/example/burger-helsinki/internal/booking"
	"github.com/example/burger-helsinki/internal/calendar"
	"github.com/example/burger-helsinki/internal/crypto"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newReservationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reservation",
		Aliases: []string{"reservations"},
		Short:   "Inspect booked tables",
	}
	cmd.AddCommand(newReservationListCmd())
	return cmd
}

func newReservationListCmd() *cobra.Command {
	var from string
	var limit int

	c := &cobra.Command{
		Use:   "list",
		Short: "List reservations stored in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}
			start := time.Now().In(cfg.Location)
			day, err := calendar.ParseDate(start.Format(calendar.DateLayout))
			if err != nil {
				return err
			}
			if from != "" {
				if day, err = calendar.ParseDate(from); err != nil {
					return fmt.Errorf("invalid --from (want YYYY-MM-DD): %w", err)
				}
			}
			aead, err := crypto.New(cfg.ContactEncKey)
			if err != nil {
				return fmt.Errorf("CONTACT_ENC_KEY: %w", err)
			}

			ctx := cmd.Context()
			d, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			list, err := booking.NewRepo(d, aead).ListFrom(ctx, day, limit)
			if err != nil {
				return err
			}
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Confirmation", "Date", "Time", "Guests", "Name", "Phone", "Email", "Notes"})
			for _, r := range list {
				t.AppendRow(table.Row{
					r.ConfirmationID, r.Date.Format(calendar.DateLayout), r.Time, r.Guests,
					r.Contact.Name, r.Contact.Phone, r.Contact.Email, r.Contact.Notes,
				})
			}
			t.Render()
			return nil
		},
	}
	c.Flags().StringVar(&from, "from", "", "first date YYYY-MM-DD (default today)")
	c.Flags().IntVar(&limit, "limit", 50, "maximum rows")
	return c
}
