package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	domainCitation "github.com/turtacn/keyip-citation-network/internal/domain/citation"
	driver "github.com/turtacn/keyip-citation-network/internal/infrastructure/database/neo4j"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/keyip-citation-network/pkg/errors"
)

// DefaultFetchLimit caps the records returned per direction.
const DefaultFetchLimit = 500

const (
	backwardCypher = `
		MATCH (root:Patent {id: $id})-[r:CITES]->(cited:Patent)
		RETURN root.id AS citing, cited.id AS cited,
		       coalesce(r.sequence, 0) AS sequence,
		       coalesce(r.category, '') AS category,
		       r.cited_date AS cited_date
		ORDER BY sequence, cited
		LIMIT $limit`

	forwardCypher = `
		MATCH (citing:Patent)-[r:CITES]->(root:Patent {id: $id})
		RETURN citing.id AS citing, root.id AS cited,
		       coalesce(r.sequence, 0) AS sequence,
		       coalesce(r.category, '') AS category,
		       r.cited_date AS cited_date
		ORDER BY sequence, citing
		LIMIT $limit`

	detailsCypher = `
		MATCH (p:Patent)
		WHERE p.id IN $ids
		RETURN p.id AS id,
		       coalesce(p.title, '') AS title,
		       coalesce(p.assignee, '') AS assignee,
		       coalesce(p.classification_codes, []) AS codes`
)

// CitationSource reads citation records from a (:Patent)-[:CITES]->(:Patent)
// graph.  It serves both the expander and the enrichment stage.
type CitationSource struct {
	driver driver.DriverInterface
	limit  int
	log    logging.Logger
}

// NewCitationSource builds a source; limit <= 0 means DefaultFetchLimit.
func NewCitationSource(d driver.DriverInterface, limit int, log logging.Logger) *CitationSource {
	if limit <= 0 {
		limit = DefaultFetchLimit
	}
	return &CitationSource{driver: d, limit: limit, log: log.Named("neo4j_source")}
}

func (s *CitationSource) GetBackwardCitations(ctx context.Context, patentID string) ([]domainCitation.CitationRecord, error) {
	return s.citations(ctx, backwardCypher, patentID)
}

func (s *CitationSource) GetForwardCitations(ctx context.Context, patentID string) ([]domainCitation.CitationRecord, error) {
	return s.citations(ctx, forwardCypher, patentID)
}

func (s *CitationSource) citations(ctx context.Context, cypher, patentID string) ([]domainCitation.CitationRecord, error) {
	params := map[string]any{"id": patentID, "limit": int64(s.limit)}
	out, err := s.driver.ExecuteRead(ctx, func(tx driver.Transaction) (any, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return driver.CollectRecords(ctx, result, mapCitationRecord)
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCitationFetchFailed, "neo4j citation query failed").WithDetail(patentID)
	}
	records, _ := out.([]domainCitation.CitationRecord)
	return records, nil
}

// GetPatentDetails returns the stored bibliographic fields of ids.  Unknown ids
// are absent from the result.
func (s *CitationSource) GetPatentDetails(ctx context.Context, ids []string) (map[string]domainCitation.PatentDetail, error) {
	if len(ids) == 0 {
		return map[string]domainCitation.PatentDetail{}, nil
	}
	out, err := s.driver.ExecuteRead(ctx, func(tx driver.Transaction) (any, error) {
		result, err := tx.Run(ctx, detailsCypher, map[string]any{"ids": ids})
		if err != nil {
			return nil, err
		}
		return driver.CollectRecords(ctx, result, mapPatentDetail)
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEnrichmentFailed, "neo4j detail query failed")
	}
	details, _ := out.([]domainCitation.PatentDetail)
	byID := make(map[string]domainCitation.PatentDetail, len(details))
	for _, d := range details {
		byID[d.PatentID] = d
	}
	return byID, nil
}

// HealthCheck reports whether the graph is reachable.
func (s *CitationSource) HealthCheck(ctx context.Context) error {
	return s.driver.HealthCheck(ctx)
}

// mapCitationRecord never fails on a single bad row: a missing id comes back
// empty and the expander counts it as malformed.
func mapCitationRecord(rec *neo4j.Record) (domainCitation.CitationRecord, error) {
	r := domainCitation.CitationRecord{
		CitingPatentID: stringValue(rec, "citing"),
		CitedPatentID:  stringValue(rec, "cited"),
		Category:       stringValue(rec, "category"),
	}
	if v, ok := rec.Get("sequence"); ok {
		if n, ok := v.(int64); ok {
			r.Sequence = int(n)
		}
	}
	if v, ok := rec.Get("cited_date"); ok {
		r.Date = timeValue(v)
	}
	return r, nil
}

func mapPatentDetail(rec *neo4j.Record) (domainCitation.PatentDetail, error) {
	d := domainCitation.PatentDetail{
		PatentID: stringValue(rec, "id"),
		Title:    stringValue(rec, "title"),
		Assignee: stringValue(rec, "assignee"),
	}
	if d.PatentID == "" {
		return d, errors.New(errors.ErrCodeDataSourceParseError, "patent node without id")
	}
	if v, ok := rec.Get("codes"); ok {
		if list, ok := v.([]any); ok {
			for _, item := range list {
				d.ClassificationCodes = append(d.ClassificationCodes, fmt.Sprint(item))
			}
		}
	}
	return d, nil
}

func stringValue(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func timeValue(v any) *time.Time {
	var t time.Time
	switch x := v.(type) {
	case neo4j.Date:
		t = x.Time()
	case time.Time:
		t = x
	case string:
		parsed, err := time.Parse("2006-01-02", x)
		if err != nil {
			return nil
		}
		t = parsed
	default:
		return nil
	}
	return &t
}

//Personal.AI order the ending
