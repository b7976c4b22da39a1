package citation

import (
	"context"
	"time"
)

// CitationRecord is one citation as reported by a data source.
type CitationRecord struct {
	CitingPatentID string     `json:"citing_patent_id"`
	CitedPatentID  string     `json:"cited_patent_id"`
	Sequence       int        `json:"sequence"`
	Category       string     `json:"category,omitempty"`
	Date           *time.Time `json:"date,omitempty"`
}

// CitationDataSource supplies raw citation records.  Both calls may return an
// empty slice; errors are treated by callers as "no data" for that direction.
type CitationDataSource interface {
	// GetBackwardCitations lists patents cited by patentID, in source order.
	GetBackwardCitations(ctx context.Context, patentID string) ([]CitationRecord, error)
	// GetForwardCitations lists patents citing patentID, in source order.
	GetForwardCitations(ctx context.Context, patentID string) ([]CitationRecord, error)
}

// PatentDetail carries the descriptive fields used to enrich nodes.
type PatentDetail struct {
	PatentID            string   `json:"patent_id"`
	Title               string   `json:"title"`
	Assignee            string   `json:"assignee"`
	ClassificationCodes []string `json:"classification_codes"`
}

// DetailSource looks up patent details in bulk.  Unknown ids are omitted from
// the result map.
type DetailSource interface {
	GetPatentDetails(ctx context.Context, patentIDs []string) (map[string]PatentDetail, error)
}

//Personal.AI order the ending
