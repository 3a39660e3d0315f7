// Package processor dispatches consumed interaction messages into the intake
// path. It decides what is poison (skip and commit) versus what is transient
// (leave uncommitted so the consumer retries).
package processor

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/trellis/internal/repositories/company"
	"github.com/Ramsey-B/trellis/pkg/interactions"
	"github.com/Ramsey-B/trellis/pkg/kafka"
	"github.com/Ramsey-B/trellis/pkg/tracing"
)

// Processor handles interaction messages from the intake topic
type Processor struct {
	logger      ectologger.Logger
	intake      *interactions.Service
	companyRepo *company.Repository
}

// NewProcessor creates a new interaction message processor
func NewProcessor(logger ectologger.Logger, intake *interactions.Service, companyRepo *company.Repository) *Processor {
	return &Processor{
		logger:      logger,
		intake:      intake,
		companyRepo: companyRepo,
	}
}

// ProcessMessage handles an incoming Kafka message. A nil return commits the
// offset; an error leaves it for redelivery.
func (p *Processor) ProcessMessage(ctx context.Context, msg *kafka.IncomingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "processor.ProcessMessage")
	defer span.End()

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"key":    msg.Key,
		"topic":  msg.Topic,
		"offset": msg.Offset,
	})

	// Malformed payloads never parse on redelivery either; commit and move on
	if msg.Interaction == nil {
		if err := msg.ParseInteraction(); err != nil {
			log.WithError(err).Error("Failed to parse interaction message, skipping")
			return nil
		}
	}

	companyID := msg.GetCompanyID()
	if companyID == 0 {
		log.Error("Missing company_id in message, skipping")
		return nil
	}

	log = log.WithFields(map[string]any{"company_id": companyID})

	// An unknown company can never succeed on retry, so treat it like any
	// other poison message instead of wedging the partition on FK errors.
	if _, err := p.companyRepo.Get(ctx, companyID); err != nil {
		if httperror.GetStatusCode(err) == http.StatusNotFound {
			log.Warn("Unknown company in message, skipping")
			return nil
		}
		return err
	}

	req := msg.Interaction.ToCreateRequest()
	if _, err := p.intake.Record(ctx, companyID, req, interactions.SourceKafka); err != nil {
		if httperror.IsHTTPError(err) && httperror.GetStatusCode(err) < http.StatusInternalServerError {
			log.WithError(err).Warn("Rejected interaction message, skipping")
			return nil
		}
		return err
	}

	return nil
}
