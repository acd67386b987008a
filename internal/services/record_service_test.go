package services

import (
	"errors"
	"testing"

	"github.com/jdlive/kteval/internal/store"
)

type stubRecordStore struct {
	upsertErr error
	createErr error
	cleared   bool
}

func (s *stubRecordStore) ListEvaluations(submittedOnly bool) ([]store.Evaluation, error) {
	return nil, nil
}
func (s *stubRecordStore) UpsertEvaluation(p store.EvaluationPatch) error { return s.upsertErr }
func (s *stubRecordStore) ListSubmissions(f store.SubmissionFilter) ([]store.Submission, error) {
	return nil, nil
}
func (s *stubRecordStore) CreateSubmission(sub store.Submission) error { return s.createErr }
func (s *stubRecordStore) ClearAll() error                             { s.cleared = true; return nil }

func TestUpsertEvaluationMapsValidationError(t *testing.T) {
	svc := NewRecordService(&stubRecordStore{upsertErr: store.ErrEvaluatorRequired})
	err := svc.UpsertEvaluation(store.EvaluationPatch{})
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorInvalid {
		t.Fatalf("err = %v, want invalid ServiceError", err)
	}
}

func TestUpsertEvaluationPassesThroughStorageError(t *testing.T) {
	boom := errors.New("disk full")
	svc := NewRecordService(&stubRecordStore{upsertErr: boom})
	if err := svc.UpsertEvaluation(store.EvaluationPatch{EvaluatorID: "A-X"}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want passthrough of %v", err, boom)
	}
}

func TestCreateSubmissionMapsValidationError(t *testing.T) {
	svc := NewRecordService(&stubRecordStore{createErr: store.ErrEvaluatorRequired})
	err := svc.CreateSubmission(store.Submission{})
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorInvalid {
		t.Fatalf("err = %v, want invalid ServiceError", err)
	}
}

func TestClearAllDelegates(t *testing.T) {
	st := &stubRecordStore{}
	if err := NewRecordService(st).ClearAll(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !st.cleared {
		t.Fatalf("store not cleared")
	}
}
