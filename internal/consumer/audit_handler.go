package consumer

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// AuditHandler writes consumed plan events into plan_event_log.
type AuditHandler struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewAuditHandler constructs a handler backed by the provided pool.
func NewAuditHandler(pool *pgxpool.Pool, logger *zap.Logger) *AuditHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditHandler{pool: pool, logger: logger}
}

// Handle stores the event. Redelivered records are ignored by offset.
func (h *AuditHandler) Handle(ctx context.Context, msg Message) error {
	tag, err := h.pool.Exec(ctx,
		`INSERT INTO plan_event_log (event_type, slot_key, topic, partition, record_offset, payload, received_at)
         VALUES ($1,$2,$3,$4,$5,$6,$7)
         ON CONFLICT (topic, partition, record_offset) DO NOTHING`,
		msg.EventType,
		msg.SlotKey,
		msg.Topic,
		msg.Partition,
		msg.Offset,
		msg.Payload,
		msg.Timestamp,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		h.logger.Debug("duplicate plan event ignored", zap.String("topic", msg.Topic), zap.Int64("offset", msg.Offset))
		return nil
	}
	h.logger.Info("plan event audited", zap.String("event_type", msg.EventType), zap.String("slot_key", msg.SlotKey))
	return nil
}
