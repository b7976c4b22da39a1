package testutil

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	domainCitation "github.com/turtacn/keyip-citation-network/internal/domain/citation"
)

// StaticCitationSource serves canned records per patent and direction.  Unknown
// patents yield empty slices.  Configured errors are returned together with
// whatever records are set for that direction.
type StaticCitationSource struct {
	mu          sync.RWMutex
	backward    map[string][]domainCitation.CitationRecord
	forward     map[string][]domainCitation.CitationRecord
	backwardErr map[string]error
	forwardErr  map[string]error
	details     map[string]domainCitation.PatentDetail
	detailErr   error
	delay       time.Duration

	BackwardCalls int64
	ForwardCalls  int64
	DetailCalls   int64
}

// NewStaticCitationSource creates an empty source.
func NewStaticCitationSource() *StaticCitationSource {
	return &StaticCitationSource{
		backward:    make(map[string][]domainCitation.CitationRecord),
		forward:     make(map[string][]domainCitation.CitationRecord),
		backwardErr: make(map[string]error),
		forwardErr:  make(map[string]error),
		details:     make(map[string]domainCitation.PatentDetail),
	}
}

// SetBackward sets the patents cited by id.
func (s *StaticCitationSource) SetBackward(id string, recs []domainCitation.CitationRecord) *StaticCitationSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backward[id] = recs
	return s
}

// SetForward sets the patents citing id.
func (s *StaticCitationSource) SetForward(id string, recs []domainCitation.CitationRecord) *StaticCitationSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forward[id] = recs
	return s
}

// FailBackward makes the backward lookup for id return err.
func (s *StaticCitationSource) FailBackward(id string, err error) *StaticCitationSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backwardErr[id] = err
	return s
}

// FailForward makes the forward lookup for id return err.
func (s *StaticCitationSource) FailForward(id string, err error) *StaticCitationSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forwardErr[id] = err
	return s
}

// SetDetail registers enrichment data.
func (s *StaticCitationSource) SetDetail(d domainCitation.PatentDetail) *StaticCitationSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.details[d.PatentID] = d
	return s
}

// FailDetails makes every detail lookup return err.
func (s *StaticCitationSource) FailDetails(err error) *StaticCitationSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detailErr = err
	return s
}

// WithDelay slows every lookup down, for coalescing tests.
func (s *StaticCitationSource) WithDelay(d time.Duration) *StaticCitationSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
	return s
}

func (s *StaticCitationSource) wait(ctx context.Context) error {
	s.mu.RLock()
	d := s.delay
	s.mu.RUnlock()
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *StaticCitationSource) GetBackwardCitations(ctx context.Context, patentID string) ([]domainCitation.CitationRecord, error) {
	atomic.AddInt64(&s.BackwardCalls, 1)
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.backward[patentID], s.backwardErr[patentID]
}

func (s *StaticCitationSource) GetForwardCitations(ctx context.Context, patentID string) ([]domainCitation.CitationRecord, error) {
	atomic.AddInt64(&s.ForwardCalls, 1)
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.forward[patentID], s.forwardErr[patentID]
}

func (s *StaticCitationSource) GetPatentDetails(_ context.Context, ids []string) (map[string]domainCitation.PatentDetail, error) {
	atomic.AddInt64(&s.DetailCalls, 1)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.detailErr != nil {
		return nil, s.detailErr
	}
	out := make(map[string]domainCitation.PatentDetail, len(ids))
	for _, id := range ids {
		if d, ok := s.details[id]; ok {
			out[id] = d
		}
	}
	return out, nil
}

// BackwardRecords builds n records "<root> cites <prefix>1..n".
func BackwardRecords(root, prefix string, n int) []domainCitation.CitationRecord {
	recs := make([]domainCitation.CitationRecord, n)
	for i := range recs {
		recs[i] = domainCitation.CitationRecord{
			CitingPatentID: root,
			CitedPatentID:  fmt.Sprintf("%s%d", prefix, i+1),
			Sequence:       i + 1,
			Category:       "cited by examiner",
		}
	}
	return recs
}

// ForwardRecords builds n records "<prefix>1..n cites <root>".
func ForwardRecords(root, prefix string, n int) []domainCitation.CitationRecord {
	recs := make([]domainCitation.CitationRecord, n)
	for i := range recs {
		recs[i] = domainCitation.CitationRecord{
			CitingPatentID: fmt.Sprintf("%s%d", prefix, i+1),
			CitedPatentID:  root,
			Sequence:       i + 1,
			Category:       "cited by applicant",
		}
	}
	return recs
}

//Personal.AI order the ending
