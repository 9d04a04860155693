package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/segmentio/kafka-go"

	"github.com/md-rashed-zaman/salonbook/libs/db"
	"github.com/md-rashed-zaman/salonbook/libs/kafkax"
	otelx "github.com/md-rashed-zaman/salonbook/libs/otel"
)

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Publisher struct {
	db        db.Beginner
	repo      *Repository
	logger    *slog.Logger
	brokers   []string
	pollEvery time.Duration
	batchSize int
	// published is called with the number of events sent per batch.
	published func(n int)
}

type PublisherConfig struct {
	Brokers   string
	PollEvery time.Duration
	BatchSize int
	Published func(n int)
}

func NewPublisher(b db.Beginner, repo *Repository, logger *slog.Logger, cfg PublisherConfig) *Publisher {
	brokers := kafkax.SplitBrokers(cfg.Brokers)
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Publisher{
		db:        b,
		repo:      repo,
		logger:    logger,
		brokers:   brokers,
		pollEvery: cfg.PollEvery,
		batchSize: cfg.BatchSize,
		published: cfg.Published,
	}
}

func (p *Publisher) Enabled() bool {
	return len(p.brokers) > 0
}

func (p *Publisher) Run(ctx context.Context) {
	if !p.Enabled() {
		p.logger.Warn("outbox publisher disabled (no kafka brokers configured)")
		return
	}

	writer := kafkax.NewWriter(p.brokers)
	defer writer.Close()
	p.run(ctx, writer)
}

func (p *Publisher) run(ctx context.Context, writer MessageWriter) {
	ticker := time.NewTicker(p.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.PublishBatch(ctx, writer); err != nil {
				p.logger.Error("outbox publish failed", "err", err)
			}
		}
	}
}

// PublishBatch sends up to batchSize pending events and marks them published in the same transaction.
func (p *Publisher) PublishBatch(ctx context.Context, writer MessageWriter) (int, error) {
	var sent int
	err := db.InTx(ctx, p.db, 0, func(ctx context.Context, tx pgx.Tx) error {
		records, err := p.repo.FetchUnpublished(ctx, tx, p.batchSize)
		if err != nil || len(records) == 0 {
			return err
		}

		msgs := make([]kafka.Message, 0, len(records))
		ids := make([]int64, 0, len(records))
		for _, r := range records {
			msgCtx := otelx.TraceContext{Parent: r.Traceparent, State: r.Tracestate}.Into(ctx)
			msgs = append(msgs, kafkax.NewMessage(msgCtx, r.EventType, r.AggregateID, r.Payload, kafkax.EventMeta{
				EventID:   r.EventID,
				EventType: r.EventType,
			}))
			ids = append(ids, r.ID)
		}
		if err := writer.WriteMessages(ctx, msgs...); err != nil {
			return err
		}
		if err := p.repo.MarkPublished(ctx, tx, ids); err != nil {
			return err
		}
		sent = len(records)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if sent > 0 && p.published != nil {
		p.published(sent)
	}
	return sent, nil
}
