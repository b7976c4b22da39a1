package citation

import (
	"context"
	"strings"

	domainCitation "github.com/turtacn/keyip-citation-network/internal/domain/citation"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/keyip-citation-network/pkg/errors"
)

// enrich fills title, assignee and classification codes from details.  A
// lookup failure leaves the placeholders in place.
func enrich(ctx context.Context, details domainCitation.DetailSource, acc *accumulator, logger logging.Logger) {
	if details == nil {
		return
	}

	found, err := lookupDetails(ctx, details, acc.registry.ids())
	if err != nil {
		acc.stats.ErrorCount++
		logger.Warn("patent detail enrichment failed", logging.PatentID(acc.rootID), logging.Err(err))
		return
	}

	for _, node := range acc.registry.nodes() {
		d, ok := found[node.ID]
		if !ok {
			continue
		}
		if t := strings.TrimSpace(d.Title); t != "" {
			node.Title = t
		}
		node.Assignee = strings.TrimSpace(d.Assignee)
		codes := make([]string, 0, len(d.ClassificationCodes))
		for _, c := range d.ClassificationCodes {
			if c = strings.TrimSpace(c); c != "" {
				codes = append(codes, c)
			}
		}
		node.ClassificationCodes = codes
	}
}

func lookupDetails(ctx context.Context, details domainCitation.DetailSource, ids []string) (found map[string]domainCitation.PatentDetail, err error) {
	defer func() {
		if r := recover(); r != nil {
			found = nil
			err = errors.Newf(errors.ErrCodeEnrichmentFailed, "detail lookup panicked: %v", r)
		}
	}()
	return details.GetPatentDetails(ctx, ids)
}

//Personal.AI order the ending
