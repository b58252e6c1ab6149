package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/example/burger-helsinki/internal/calendar"
	"github.com/example/burger-helsinki/internal/crypto"
	"github.com/example/burger-helsinki/internal/db"
	"github.com/example/burger-helsinki/internal/reservation"
)

// Reservation is a stored booking with its contact details decrypted.
type Reservation struct {
	ID             int64
	ConfirmationID string
	DraftID        string
	Guests         int
	Date           time.Time
	Time           string
	Contact        reservation.Contact
	CreatedAt      time.Time
}

// Repo persists bookings. Phone and email are sealed before they reach the
// database.
type Repo struct {
	db   db.Querier
	aead *crypto.AEAD
}

func NewRepo(d db.Querier, aead *crypto.AEAD) *Repo { return &Repo{db: d, aead: aead} }

func (r *Repo) Create(ctx context.Context, confirmationID string, req reservation.Request) (int64, error) {
	phone, err := r.aead.Seal(req.Contact.Phone)
	if err != nil {
		return 0, fmt.Errorf("seal phone: %w", err)
	}
	email, err := r.aead.Seal(req.Contact.Email)
	if err != nil {
		return 0, fmt.Errorf("seal email: %w", err)
	}
	var id int64
	err = r.db.QueryRow(ctx, `
INSERT INTO reservations(confirmation_id, draft_id, guests, reservation_date, reservation_time, name, phone_sealed, email_sealed, notes)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
RETURNING id`,
		confirmationID, req.DraftID, req.Guests, req.Date, req.Time, req.Contact.Name, phone, email, req.Contact.Notes,
	).Scan(&id)
	return id, db.WrapNotFound(err)
}

// ListFrom returns bookings on or after from, earliest first.
func (r *Repo) ListFrom(ctx context.Context, from time.Time, limit int) ([]Reservation, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, confirmation_id, draft_id, guests, reservation_date, reservation_time, name, phone_sealed, email_sealed, notes, created_at
FROM reservations
WHERE reservation_date >= $1
ORDER BY reservation_date ASC, reservation_time ASC
LIMIT $2`, from, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Reservation
	for rows.Next() {
		var res Reservation
		var phone, email string
		if err := rows.Scan(&res.ID, &res.ConfirmationID, &res.DraftID, &res.Guests, &res.Date, &res.Time,
			&res.Contact.Name, &phone, &email, &res.Contact.Notes, &res.CreatedAt); err != nil {
			return nil, err
		}
		if res.Contact.Phone, err = r.aead.Open(phone); err != nil {
			return nil, fmt.Errorf("open phone for %s: %w", res.ConfirmationID, err)
		}
		if res.Contact.Email, err = r.aead.Open(email); err != nil {
			return nil, fmt.Errorf("open email for %s: %w", res.ConfirmationID, err)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// PostgresBackend books directly into the restaurant's own database.
type PostgresBackend struct {
	Repo     *Repo
	Location *time.Location
}

func (b *PostgresBackend) Submit(ctx context.Context, req reservation.Request) (Confirmation, error) {
	at, err := req.At(b.Location)
	if err != nil {
		return Confirmation{}, &Rejection{Reason: "the reservation time is not valid"}
	}
	conf := Confirmation{ID: NewConfirmationID(), BookedFor: at}
	if _, err := b.Repo.Create(ctx, conf.ID, req); err != nil {
		return Confirmation{}, fmt.Errorf("%w: store %s on %s: %w", ErrUnavailable, conf.ID, req.Date.Format(calendar.DateLayout), err)
	}
	return conf, nil
}
