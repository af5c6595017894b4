package postgres

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"partshub-backend/internal/domain"
)

type fulfillmentOutbox struct {
	db *pgxpool.Pool
}

// NewFulfillmentOutbox stores "payment confirmed, invoice pending"
// records so a confirmed payment is never silently dropped when the
// invoice dispatch fails.
func NewFulfillmentOutbox(db *pgxpool.Pool) domain.FulfillmentOutbox {
	return &fulfillmentOutbox{db: db}
}

func (r *fulfillmentOutbox) Record(ctx context.Context, rec *domain.FulfillmentRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	var invoice []byte
	if rec.Invoice != nil {
		b, err := json.Marshal(rec.Invoice)
		if err != nil {
			return err
		}
		invoice = b
	}

	const q = `
		INSERT INTO fulfillment_outbox (id, payment_session_id, user_id, reason, invoice)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, q, rec.ID, rec.PaymentSessionID, rec.UserID, rec.Reason, invoice)
	return err
}
