package services

import (
	"errors"

	"github.com/jdlive/kteval/internal/store"
)

type ErrorCode string

const (
	ErrorInvalid      ErrorCode = "invalid"
	ErrorUnauthorized ErrorCode = "unauthorized"
	ErrorNotFound     ErrorCode = "not_found"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: ErrorUnauthorized, Message: msg}
}
func NewNotFoundError(msg string) error { return &ServiceError{Code: ErrorNotFound, Message: msg} }

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// RecordStore abstracts the persistence operations the record workflow needs.
type RecordStore interface {
	ListEvaluations(submittedOnly bool) ([]store.Evaluation, error)
	UpsertEvaluation(p store.EvaluationPatch) error
	ListSubmissions(f store.SubmissionFilter) ([]store.Submission, error)
	CreateSubmission(s store.Submission) error
	ClearAll() error
}

var _ RecordStore = (*store.Store)(nil)

// RecordService fronts the record store for the HTTP layer, translating store
// failures into the service error taxonomy.
type RecordService struct {
	store RecordStore
}

func NewRecordService(st RecordStore) *RecordService {
	return &RecordService{store: st}
}

func (s *RecordService) ListEvaluations(submittedOnly bool) ([]store.Evaluation, error) {
	return s.store.ListEvaluations(submittedOnly)
}

func (s *RecordService) UpsertEvaluation(p store.EvaluationPatch) error {
	if err := s.store.UpsertEvaluation(p); err != nil {
		if errors.Is(err, store.ErrEvaluatorRequired) {
			return NewInvalidError("evaluator id is required")
		}
		return err
	}
	return nil
}

func (s *RecordService) ListSubmissions(f store.SubmissionFilter) ([]store.Submission, error) {
	return s.store.ListSubmissions(f)
}

// CreateSubmission is idempotent: a duplicate (room, evaluator) pair reports
// success without touching the stored record.
func (s *RecordService) CreateSubmission(sub store.Submission) error {
	if err := s.store.CreateSubmission(sub); err != nil {
		if errors.Is(err, store.ErrEvaluatorRequired) {
			return NewInvalidError("evaluator id is required")
		}
		return err
	}
	return nil
}

// ClearAll wipes both collections. Irreversible; reachable only through the
// admin-gated reset.
func (s *RecordService) ClearAll() error {
	return s.store.ClearAll()
}
