// Package repositories provides the PostgreSQL-backed citation data source.
package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	domainCitation "github.com/turtacn/keyip-citation-network/internal/domain/citation"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/keyip-citation-network/pkg/errors"
)

// DefaultFetchLimit caps the rows returned per direction.
const DefaultFetchLimit = 500

const (
	backwardSQL = `
		SELECT citing_patent_id, cited_patent_id, sequence, category, cited_date
		FROM patent_citations
		WHERE citing_patent_id = $1
		ORDER BY sequence, cited_patent_id
		LIMIT $2`

	forwardSQL = `
		SELECT citing_patent_id, cited_patent_id, sequence, category, cited_date
		FROM patent_citations
		WHERE cited_patent_id = $1
		ORDER BY sequence, citing_patent_id
		LIMIT $2`

	detailsSQL = `
		SELECT patent_id, title, assignee, classification_codes
		FROM patent_details
		WHERE patent_id = ANY($1)`
)

// Querier is the subset of *pgxpool.Pool the repository needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

// CitationSource reads citation rows from patent_citations and bibliographic
// fields from patent_details.
type CitationSource struct {
	db    Querier
	limit int
	log   logging.Logger
}

// NewCitationSource builds a source; limit <= 0 means DefaultFetchLimit.
func NewCitationSource(db Querier, limit int, log logging.Logger) *CitationSource {
	if limit <= 0 {
		limit = DefaultFetchLimit
	}
	return &CitationSource{db: db, limit: limit, log: log.Named("postgres_source")}
}

func (s *CitationSource) GetBackwardCitations(ctx context.Context, patentID string) ([]domainCitation.CitationRecord, error) {
	return s.citations(ctx, backwardSQL, patentID)
}

func (s *CitationSource) GetForwardCitations(ctx context.Context, patentID string) ([]domainCitation.CitationRecord, error) {
	return s.citations(ctx, forwardSQL, patentID)
}

// citations returns the rows scanned before a mid-stream failure together with
// the error, so the expander can keep what arrived.
func (s *CitationSource) citations(ctx context.Context, query, patentID string) ([]domainCitation.CitationRecord, error) {
	rows, err := s.db.Query(ctx, query, patentID, s.limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeCitationFetchFailed, "citation query failed").WithDetail(patentID)
	}
	defer rows.Close()

	var records []domainCitation.CitationRecord
	for rows.Next() {
		var (
			r    domainCitation.CitationRecord
			date *time.Time
		)
		if err := rows.Scan(&r.CitingPatentID, &r.CitedPatentID, &r.Sequence, &r.Category, &date); err != nil {
			return records, appErrors.Wrap(err, appErrors.ErrCodeDataSourceParseError, "citation row scan failed").WithDetail(patentID)
		}
		r.Date = date
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return records, appErrors.Wrap(err, appErrors.ErrCodeCitationFetchFailed, "citation rows failed").WithDetail(patentID)
	}
	return records, nil
}

// GetPatentDetails returns the stored details of ids.  Unknown ids are absent.
func (s *CitationSource) GetPatentDetails(ctx context.Context, ids []string) (map[string]domainCitation.PatentDetail, error) {
	details := make(map[string]domainCitation.PatentDetail, len(ids))
	if len(ids) == 0 {
		return details, nil
	}
	rows, err := s.db.Query(ctx, detailsSQL, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeEnrichmentFailed, "patent detail query failed")
	}
	defer rows.Close()

	for rows.Next() {
		var d domainCitation.PatentDetail
		if err := rows.Scan(&d.PatentID, &d.Title, &d.Assignee, &d.ClassificationCodes); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDataSourceParseError, "patent detail row scan failed")
		}
		details[d.PatentID] = d
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeEnrichmentFailed, "patent detail rows failed")
	}
	return details, nil
}

// HealthCheck pings the pool.
func (s *CitationSource) HealthCheck(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "postgres ping failed")
	}
	return nil
}

//Personal.AI order the ending
