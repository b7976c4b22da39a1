package citation

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	domainCitation "github.com/turtacn/keyip-citation-network/internal/domain/citation"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/keyip-citation-network/pkg/errors"
)

// fetchResult is the outcome of one directional fetch.
type fetchResult struct {
	requested bool
	records   []domainCitation.CitationRecord
	err       error
}

// graphExpander builds the one-hop neighbourhood of a root patent.
type graphExpander struct {
	source   domainCitation.CitationDataSource
	recorder MetricsRecorder
	logger   logging.Logger
}

func newGraphExpander(source domainCitation.CitationDataSource, recorder MetricsRecorder, logger logging.Logger) *graphExpander {
	return &graphExpander{source: source, recorder: recorder, logger: logger}
}

// fetch runs the backward and forward lookups concurrently.  A direction with
// depth 0 is not requested.
func (e *graphExpander) fetch(ctx context.Context, patentID string, backwardDepth, forwardDepth int) (backward, forward fetchResult) {
	var g errgroup.Group
	if backwardDepth > 0 {
		g.Go(func() error {
			backward = e.fetchDirection(ctx, domainCitation.DirectionBackward, patentID)
			return nil
		})
	}
	if forwardDepth > 0 {
		g.Go(func() error {
			forward = e.fetchDirection(ctx, domainCitation.DirectionForward, patentID)
			return nil
		})
	}
	_ = g.Wait()
	return backward, forward
}

func (e *graphExpander) fetchDirection(ctx context.Context, dir domainCitation.Direction, patentID string) (res fetchResult) {
	res.requested = true
	defer func() {
		if r := recover(); r != nil {
			res.err = errors.Newf(errors.ErrCodeCitationFetchFailed, "%s fetch panicked: %v", dir, r)
		}
	}()

	switch dir {
	case domainCitation.DirectionBackward:
		res.records, res.err = e.source.GetBackwardCitations(ctx, patentID)
	default:
		res.records, res.err = e.source.GetForwardCitations(ctx, patentID)
	}
	return res
}

// expand applies fetched records to acc for one direction.  Records are
// consumed in source order until a node ceiling is hit.
func (e *graphExpander) expand(acc *accumulator, dir domainCitation.Direction, res fetchResult) {
	if !res.requested || acc.expanded[dir] {
		return
	}
	acc.expanded[dir] = true

	log := e.logger.With(logging.PatentID(acc.rootID), logging.String("direction", string(dir)))

	// Both directions are fetched concurrently before this check, so a
	// direction skipped here still cost one upstream call.  With depth capped
	// at 1 the graph holds at most 1+2*MaxNodesPerLevel nodes and the check
	// only fires for a pre-populated accumulator.
	if acc.registry.count() >= domainCitation.MaxTotalNodes {
		acc.stats.NodesLimitReached = true
		log.Warn("node ceiling reached before expansion", logging.Int("nodes", acc.registry.count()))
		return
	}

	if res.err != nil {
		acc.stats.ErrorCount++
		e.recorder.UpstreamError(string(dir))
		log.Warn("citation fetch failed, keeping partial data", logging.Err(res.err), logging.Int("records", len(res.records)))
	}

	switch dir {
	case domainCitation.DirectionBackward:
		acc.stats.BackwardFetched = len(res.records)
	case domainCitation.DirectionForward:
		acc.stats.ForwardFetched = len(res.records)
		if res.err == nil && len(res.records) == 0 {
			acc.stats.HasNoForwardCitations = true
		}
	}

	added := 0
	for i, rec := range res.records {
		if added >= domainCitation.MaxNodesPerLevel {
			acc.stats.Truncated = true
			e.recorder.Truncated(string(dir))
			log.Info("per-level node limit reached", logging.Int("consumed", i), logging.Int("available", len(res.records)))
			break
		}
		if acc.registry.count() >= domainCitation.MaxTotalNodes {
			acc.stats.NodesLimitReached = true
			log.Info("total node limit reached", logging.Int("consumed", i))
			break
		}

		created, err := e.applyRecord(acc, dir, rec)
		if err != nil {
			acc.stats.ErrorCount++
			log.Debug("citation record skipped", logging.Int("index", i), logging.Err(err))
			continue
		}
		if created {
			added++
		}
	}
}

// applyRecord adds the edge and, when unseen, the neighbour node described by
// rec.  It reports whether a new node was created.
func (e *graphExpander) applyRecord(acc *accumulator, dir domainCitation.Direction, rec domainCitation.CitationRecord) (created bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			created = false
			err = errors.Newf(errors.ErrCodeCitationRecordBad, "record processing panicked: %v", r)
		}
	}()

	var neighbour, source, target, color string
	switch dir {
	case domainCitation.DirectionBackward:
		neighbour = strings.TrimSpace(rec.CitedPatentID)
		source, target, color = acc.rootID, neighbour, BackwardNodeColor
	case domainCitation.DirectionForward:
		neighbour = strings.TrimSpace(rec.CitingPatentID)
		source, target, color = neighbour, acc.rootID, ForwardNodeColor
	default:
		return false, errors.Newf(errors.CodeInternal, "unknown direction %q", dir)
	}

	if neighbour == "" {
		return false, errors.New(errors.ErrCodeCitationRecordBad, "citation record without patent identifier").
			WithDetail(fmt.Sprintf("sequence=%d", rec.Sequence))
	}
	if neighbour == acc.rootID {
		return false, nil
	}

	acc.addEdge(source, target, rec.Category, rec.Date)

	if _, ok := acc.registry.get(neighbour); ok {
		return false, nil
	}
	return acc.registry.add(&domainCitation.PatentNode{
		ID:                  neighbour,
		Title:               neighbour,
		Depth:               1,
		Color:               color,
		ClassificationCodes: []string{},
	}), nil
}

//Personal.AI order the ending
