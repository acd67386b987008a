package services

import (
	"testing"

	"github.com/jdlive/kteval/internal/store"
)

type stubStatsStore struct {
	evals []store.Evaluation
	subs  []store.Submission
}

func (s *stubStatsStore) ListEvaluations(submittedOnly bool) ([]store.Evaluation, error) {
	return s.evals, nil
}

func (s *stubStatsStore) ListSubmissions(f store.SubmissionFilter) ([]store.Submission, error) {
	out := []store.Submission{}
	for _, sub := range s.subs {
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

func eval(roomID, skuID, evaluatorID, video, visual string, boards int, issues ...string) store.Evaluation {
	return store.Evaluation{
		RoomID:               roomID,
		SkuID:                skuID,
		EvaluatorID:          evaluatorID,
		VideoQualified:       video,
		VisualQualified:      visual,
		BoardAppearanceCount: boards,
		Issues:               issues,
	}
}

func TestRoomOverviewRatesAndOmission(t *testing.T) {
	svc := NewStatsService(&stubStatsStore{evals: []store.Evaluation{
		eval("fashion", "f-001", "A-X", store.Qualified, store.Qualified, 1, "mismatch"),
		eval("fashion", "f-002", "A-X", store.Qualified, store.Unqualified, 2),
		eval("fashion", "f-003", "A-X", store.Unqualified, store.Unqualified, 4),
	}})
	rows, err := svc.RoomOverview()
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	// Rooms without evaluations are omitted, not shown as 0%.
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	r := rows[0]
	if r.RoomID != "fashion" || r.RoomName != "大时尚直播间" || r.SKUCount != 5 || r.EvalCount != 3 {
		t.Fatalf("row header wrong: %+v", r)
	}
	if r.VideoQualifiedRate != "66.7%" {
		t.Fatalf("video rate = %q, want 66.7%%", r.VideoQualifiedRate)
	}
	if r.VisualQualifiedRate != "33.3%" {
		t.Fatalf("visual rate = %q, want 33.3%%", r.VisualQualifiedRate)
	}
	if r.AvgBoardCount != "2.3" {
		t.Fatalf("avg board count = %q, want 2.3", r.AvgBoardCount)
	}
	if r.MismatchRate != "33.3%" {
		t.Fatalf("mismatch rate = %q, want 33.3%%", r.MismatchRate)
	}
}

func TestRoomOverviewEmpty(t *testing.T) {
	svc := NewStatsService(&stubStatsStore{})
	rows, err := svc.RoomOverview()
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rows = %d, want 0", len(rows))
	}
}

func TestSKUDetailGroupsAndDropsUnknown(t *testing.T) {
	svc := NewStatsService(&stubStatsStore{evals: []store.Evaluation{
		eval("fashion", "f-001", "A-X", store.Qualified, store.Qualified, 2, "mismatch", "ux"),
		eval("fashion", "f-001", "B-Y", store.Unqualified, store.Qualified, 4, "mismatch"),
		eval("supermarket", "s-002", "A-X", store.Qualified, store.Unqualified, 1),
		eval("fashion", "gone-001", "A-X", store.Qualified, store.Qualified, 1),
	}})
	rows, err := svc.SKUDetail("all")
	if err != nil {
		t.Fatalf("sku detail: %v", err)
	}
	// The stale SKU id is dropped; the remaining two groups keep first-seen order.
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	r := rows[0]
	if r.SKUID != "f-001" || r.Name != "时尚连衣裙" || r.Price != 299 || r.RoomName != "大时尚直播间" {
		t.Fatalf("sku metadata wrong: %+v", r)
	}
	if r.EvalCount != 2 || r.TotalBoardCount != 6 || r.AvgBoardCount != "3.0" {
		t.Fatalf("counts wrong: %+v", r)
	}
	if r.VideoQualifiedRate != "50.0%" || r.VisualQualifiedRate != "100.0%" {
		t.Fatalf("rates wrong: %+v", r)
	}
	if r.Issues["mismatch"] != 2 || r.Issues["ux"] != 1 {
		t.Fatalf("issue counts wrong: %+v", r.Issues)
	}

	// Restricting to one room excludes the other group.
	rows, err = svc.SKUDetail("supermarket")
	if err != nil {
		t.Fatalf("sku detail: %v", err)
	}
	if len(rows) != 1 || rows[0].SKUID != "s-002" {
		t.Fatalf("room-filtered rows = %+v", rows)
	}
}

func TestIssueDistribution(t *testing.T) {
	svc := NewStatsService(&stubStatsStore{evals: []store.Evaluation{
		eval("supermarket", "s-001", "A-X", store.Qualified, store.Qualified, 1, "mismatch"),
		eval("fashion", "f-001", "A-X", store.Qualified, store.Qualified, 1, "mismatch", "duration"),
		eval("fashion", "f-002", "A-X", store.Qualified, store.Qualified, 1),
		eval("3c_digital", "d-001", "A-X", store.Qualified, store.Qualified, 1),
	}})
	rows, err := svc.IssueDistribution()
	if err != nil {
		t.Fatalf("distribution: %v", err)
	}
	if len(rows) != 6 {
		t.Fatalf("rows = %d, want one per catalog issue kind", len(rows))
	}
	byID := map[string]IssueDistributionRow{}
	for _, r := range rows {
		byID[r.IssueID] = r
	}
	// mismatch is tied 1:1 between supermarket and fashion; catalog order
	// puts fashion first, so fashion wins the tie.
	m := byID["mismatch"]
	if m.Count != 2 || m.Percentage != "50.0%" || m.TopRoom != "大时尚直播间" {
		t.Fatalf("mismatch row = %+v", m)
	}
	d := byID["duration"]
	if d.Count != 1 || d.Percentage != "25.0%" || d.TopRoom != "大时尚直播间" {
		t.Fatalf("duration row = %+v", d)
	}
	// Kinds with no occurrences still appear, with a placeholder top room.
	u := byID["ux"]
	if u.Count != 0 || u.Percentage != "0.0%" || u.TopRoom != "-" {
		t.Fatalf("ux row = %+v", u)
	}
}

func TestIssueDistributionEmptyInput(t *testing.T) {
	svc := NewStatsService(&stubStatsStore{})
	rows, err := svc.IssueDistribution()
	if err != nil {
		t.Fatalf("distribution: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rows = %d, want 0 when there are no evaluations", len(rows))
	}
}

func TestCompletionCountsSeededPerRoom(t *testing.T) {
	svc := NewStatsService(&stubStatsStore{subs: []store.Submission{
		{RoomID: "fashion", EvaluatorID: "A-X", SubmittedAt: 1},
		{RoomID: "fashion", EvaluatorID: "B-Y", SubmittedAt: 2},
		{RoomID: "ghost", EvaluatorID: "A-X", SubmittedAt: 3},
	}})
	counts, err := svc.CompletionCounts("")
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if len(counts) != 4 {
		t.Fatalf("entries = %d, want one per catalog room", len(counts))
	}
	if counts["fashion"] != 2 || counts["supermarket"] != 0 || counts["home_appliance"] != 0 || counts["3c_digital"] != 0 {
		t.Fatalf("counts = %v", counts)
	}
	if _, ok := counts["ghost"]; ok {
		t.Fatalf("unknown room accumulated a count: %v", counts)
	}

	filtered, err := svc.CompletionCounts("B-Y")
	if err != nil {
		t.Fatalf("filtered counts: %v", err)
	}
	if filtered["fashion"] != 1 || len(filtered) != 4 {
		t.Fatalf("filtered counts = %v", filtered)
	}
}

func TestEvaluatorSummary(t *testing.T) {
	svc := NewStatsService(&stubStatsStore{subs: []store.Submission{
		{RoomID: "fashion", EvaluatorID: "京东科技-曹政", SubmittedAt: 100},
		{RoomID: "supermarket", EvaluatorID: "京东科技-曹政", SubmittedAt: 300},
		{RoomID: "ghost", EvaluatorID: "京东科技-曹政", SubmittedAt: 200},
		{RoomID: "fashion", EvaluatorID: "A-B-C", SubmittedAt: 50},
		{RoomID: "fashion", EvaluatorID: "solo", SubmittedAt: 60},
	}})
	rows, err := svc.EvaluatorSummary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	r := rows[0]
	if r.Department != "京东科技" || r.Name != "曹政" {
		t.Fatalf("identity split wrong: %+v", r)
	}
	if r.CompletedCount != 3 || r.LastSubmission != 300 {
		t.Fatalf("counts wrong: %+v", r)
	}
	// Unknown rooms fall back to the raw id in the touched-rooms list.
	if len(r.Rooms) != 3 || r.Rooms[0] != "大时尚直播间" || r.Rooms[2] != "ghost" {
		t.Fatalf("rooms = %v", r.Rooms)
	}
	// A hyphenated name keeps everything after the first hyphen.
	if rows[1].Department != "A" || rows[1].Name != "B-C" {
		t.Fatalf("hyphenated identity split wrong: %+v", rows[1])
	}
	// An id without a hyphen is both department and fallback name.
	if rows[2].Department != "solo" || rows[2].Name != "solo" {
		t.Fatalf("bare identity split wrong: %+v", rows[2])
	}
}
