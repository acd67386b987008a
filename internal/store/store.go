// Package store owns the two record collections (evaluations and room
// submissions) behind an injected persistence port. Every mutation is a full
// read-modify-write of one collection document, serialized by a single mutex.
package store

import (
	"errors"
	"sync"
	"time"
)

// Qualification values mirror the wire format of the evaluation form.
const (
	Qualified   = "qualified"
	Unqualified = "unqualified"
)

// Evaluation is one evaluator's judgment of one SKU within one room. At most
// one record exists per (roomId, skuId, evaluatorId) triple.
type Evaluation struct {
	RoomID               string   `json:"roomId"`
	SkuID                string   `json:"skuId"`
	EvaluatorID          string   `json:"evaluatorId"`
	VideoQualified       string   `json:"videoQualified"`
	VisualQualified      string   `json:"visualQualified"`
	BoardAppearanceCount int      `json:"boardAppearanceCount"`
	Issues               []string `json:"issues"`
	OtherIssueDesc       string   `json:"otherIssueDesc,omitempty"`
	Timestamp            int64    `json:"timestamp"` // epoch milliseconds
}

// EvaluationPatch carries an upsert. Pointer fields distinguish "not sent"
// from zero values: on merge, nil fields keep whatever the stored record has.
type EvaluationPatch struct {
	RoomID               string    `json:"roomId"`
	SkuID                string    `json:"skuId"`
	EvaluatorID          string    `json:"evaluatorId"`
	VideoQualified       *string   `json:"videoQualified"`
	VisualQualified      *string   `json:"visualQualified"`
	BoardAppearanceCount *int      `json:"boardAppearanceCount"`
	Issues               *[]string `json:"issues"`
	OtherIssueDesc       *string   `json:"otherIssueDesc"`
	Timestamp            *int64    `json:"timestamp"`
}

// Submission marks one evaluator's finalized batch for one room. At most one
// record exists per (roomId, evaluatorId) pair; the first submission wins.
type Submission struct {
	RoomID      string `json:"roomId"`
	EvaluatorID string `json:"evaluatorId"`
	SubmittedAt int64  `json:"submittedAt"` // epoch milliseconds
}

// SubmissionFilter restricts ListSubmissions; empty fields match everything,
// set fields combine with AND semantics.
type SubmissionFilter struct {
	EvaluatorID string
	RoomID      string
}

// ErrEvaluatorRequired rejects records submitted without an evaluator id.
var ErrEvaluatorRequired = errors.New("evaluator id is required")

// Persistence reads and writes whole collection documents. Implementations
// must return an empty slice, not an error, when the backing document is
// missing or unreadable, so a fresh system starts clean.
type Persistence interface {
	LoadEvaluations() ([]Evaluation, error)
	SaveEvaluations([]Evaluation) error
	LoadSubmissions() ([]Submission, error)
	SaveSubmissions([]Submission) error
	Wipe() error
}

// Store is the single-writer serialization point over a Persistence port.
type Store struct {
	mu  sync.Mutex
	p   Persistence
	now func() time.Time
}

// New builds a Store over the given persistence port.
func New(p Persistence) *Store {
	return &Store{p: p, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Store) nowMillis() int64 { return s.now().UnixMilli() }

type pairKey struct{ roomID, evaluatorID string }

// ListEvaluations returns evaluations in insertion order. With submittedOnly
// set, only evaluations whose (roomId, evaluatorId) pair has a submission are
// returned, so dashboards reflect finalized batches only.
func (s *Store) ListEvaluations(submittedOnly bool) ([]Evaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	evals, err := s.p.LoadEvaluations()
	if err != nil {
		return nil, err
	}
	if !submittedOnly {
		return evals, nil
	}
	subs, err := s.p.LoadSubmissions()
	if err != nil {
		return nil, err
	}
	submitted := make(map[pairKey]bool, len(subs))
	for _, sub := range subs {
		submitted[pairKey{sub.RoomID, sub.EvaluatorID}] = true
	}
	out := make([]Evaluation, 0, len(evals))
	for _, e := range evals {
		if submitted[pairKey{e.RoomID, e.EvaluatorID}] {
			out = append(out, e)
		}
	}
	return out, nil
}

// UpsertEvaluation merges the patch into the record matching its
// (roomId, skuId, evaluatorId) triple, or appends a new record. Fields the
// patch leaves nil keep their stored values.
func (s *Store) UpsertEvaluation(p EvaluationPatch) error {
	if p.EvaluatorID == "" {
		return ErrEvaluatorRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	evals, err := s.p.LoadEvaluations()
	if err != nil {
		return err
	}
	idx := -1
	for i, e := range evals {
		if e.RoomID == p.RoomID && e.SkuID == p.SkuID && e.EvaluatorID == p.EvaluatorID {
			idx = i
			break
		}
	}
	if idx >= 0 {
		evals[idx].Apply(p)
	} else {
		e := Evaluation{RoomID: p.RoomID, SkuID: p.SkuID, EvaluatorID: p.EvaluatorID, Timestamp: s.nowMillis()}
		e.Apply(p)
		evals = append(evals, e)
	}
	return s.p.SaveEvaluations(evals)
}

// Apply overlays the patch's set fields onto the record; nil fields are left
// untouched.
func (e *Evaluation) Apply(p EvaluationPatch) {
	if p.VideoQualified != nil {
		e.VideoQualified = *p.VideoQualified
	}
	if p.VisualQualified != nil {
		e.VisualQualified = *p.VisualQualified
	}
	if p.BoardAppearanceCount != nil {
		e.BoardAppearanceCount = *p.BoardAppearanceCount
	}
	if p.Issues != nil {
		e.Issues = *p.Issues
	}
	if p.OtherIssueDesc != nil {
		e.OtherIssueDesc = *p.OtherIssueDesc
	}
	if p.Timestamp != nil {
		e.Timestamp = *p.Timestamp
	}
}

// ListSubmissions returns submissions in insertion order, restricted by the
// filter's set fields.
func (s *Store) ListSubmissions(f SubmissionFilter) ([]Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs, err := s.p.LoadSubmissions()
	if err != nil {
		return nil, err
	}
	out := make([]Submission, 0, len(subs))
	for _, sub := range subs {
		if f.EvaluatorID != "" && sub.EvaluatorID != f.EvaluatorID {
			continue
		}
		if f.RoomID != "" && sub.RoomID != f.RoomID {
			continue
		}
		out = append(out, sub)
	}
	return out, nil
}

// CreateSubmission appends the submission unless its (roomId, evaluatorId)
// pair already exists; a duplicate is a silent no-op and the stored timestamp
// is not updated. Completeness of the underlying evaluations is the
// submitting client's responsibility.
func (s *Store) CreateSubmission(sub Submission) error {
	if sub.EvaluatorID == "" {
		return ErrEvaluatorRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	subs, err := s.p.LoadSubmissions()
	if err != nil {
		return err
	}
	for _, existing := range subs {
		if existing.RoomID == sub.RoomID && existing.EvaluatorID == sub.EvaluatorID {
			return nil
		}
	}
	if sub.SubmittedAt == 0 {
		sub.SubmittedAt = s.nowMillis()
	}
	subs = append(subs, sub)
	return s.p.SaveSubmissions(subs)
}

// ClearAll irreversibly empties both collections.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Wipe()
}
