package kafka

import (
	"context"
	"strings"
	"time"

	domainCitation "github.com/turtacn/keyip-citation-network/internal/domain/citation"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/keyip-citation-network/pkg/errors"
)

// Warm-up builds at the depths the UI requests by default.
const (
	WarmupBackwardDepth = 1
	WarmupForwardDepth  = 1
)

// NetworkFetcher is the part of the citation service the warm-up needs.
type NetworkFetcher interface {
	FetchCitationNetwork(ctx context.Context, patentID string, backwardDepth, forwardDepth int) *domainCitation.CitationNetwork
}

// NewWarmupHandler returns a handler that builds, and thereby caches, the
// default network of every ingested patent.
func NewWarmupHandler(fetcher NetworkFetcher, logger logging.Logger) MessageHandler {
	log := logger.Named("warmup")
	return func(ctx context.Context, msg *Message) error {
		env, err := MessageToEventEnvelope(msg)
		if err != nil {
			return err
		}
		if env.EventType != "" && env.EventType != EventTypePatentIngest {
			log.Debug("ignoring event", logging.String("event_type", env.EventType))
			return nil
		}

		var payload PatentIngestedPayload
		if err := env.DecodePayload(&payload); err != nil {
			return err
		}
		id := strings.TrimSpace(payload.PatentID)
		if id == "" {
			return errors.New(errors.ErrCodeValidation, "patent_id missing from payload").WithDetail("event_id: " + env.EventID)
		}

		start := time.Now()
		network := fetcher.FetchCitationNetwork(ctx, id, WarmupBackwardDepth, WarmupForwardDepth)
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Info("citation network warmed",
			logging.PatentID(id),
			logging.Int("nodes", len(network.Nodes)),
			logging.Int("edges", len(network.Edges)),
			logging.Duration("elapsed", time.Since(start)))
		return nil
	}
}

//Personal.AI order the ending
