package services

import (
	"fmt"
	"strings"

	"github.com/jdlive/kteval/internal/catalog"
	"github.com/jdlive/kteval/internal/store"
)

// StatsStore is the read-only slice of the record store the aggregation
// engine consumes.
type StatsStore interface {
	ListEvaluations(submittedOnly bool) ([]store.Evaluation, error)
	ListSubmissions(f store.SubmissionFilter) ([]store.Submission, error)
}

// StatsService computes dashboard aggregates over finalized evaluation
// batches. All methods are single-pass groupings with no side effects.
type StatsService struct {
	store StatsStore
}

func NewStatsService(st StatsStore) *StatsService {
	return &StatsService{store: st}
}

type RoomOverviewRow struct {
	RoomID              string `json:"roomId"`
	RoomName            string `json:"roomName"`
	SKUCount            int    `json:"skuCount"`
	EvalCount           int    `json:"evalCount"`
	VideoQualifiedRate  string `json:"videoQualifiedRate"`
	VisualQualifiedRate string `json:"visualQualifiedRate"`
	AvgBoardCount       string `json:"avgBoardCount"`
	MismatchRate        string `json:"mismatchRate"`
}

type SKUDetailRow struct {
	SKUID               string         `json:"skuId"`
	Name                string         `json:"name"`
	Price               int            `json:"price"`
	RoomName            string         `json:"roomName"`
	EvalCount           int            `json:"evalCount"`
	VideoQualifiedRate  string         `json:"videoQualifiedRate"`
	VisualQualifiedRate string         `json:"visualQualifiedRate"`
	AvgBoardCount       string         `json:"avgBoardCount"`
	TotalBoardCount     int            `json:"totalBoardCount"`
	Issues              map[string]int `json:"issues"`
}

type IssueDistributionRow struct {
	IssueID    string `json:"issueId"`
	Label      string `json:"label"`
	Count      int    `json:"count"`
	Percentage string `json:"percentage"`
	TopRoom    string `json:"topRoom"`
}

type EvaluatorSummaryRow struct {
	EvaluatorID    string   `json:"evaluatorId"`
	Department     string   `json:"department"`
	Name           string   `json:"name"`
	CompletedCount int      `json:"completedCount"`
	Rooms          []string `json:"rooms"`
	LastSubmission int64    `json:"lastSubmission"`
}

// percent renders count/total as a one-decimal percentage with a trailing
// percent sign, e.g. "66.7%". Callers must guarantee total > 0.
func percent(count, total int) string {
	return fmt.Sprintf("%.1f%%", float64(count)/float64(total)*100)
}

func mean(sum, total int) string {
	return fmt.Sprintf("%.1f", float64(sum)/float64(total))
}

// RoomOverview compares core metrics across rooms. Rooms without a single
// evaluation are omitted entirely rather than shown with zero rates.
func (s *StatsService) RoomOverview() ([]RoomOverviewRow, error) {
	evals, err := s.store.ListEvaluations(true)
	if err != nil {
		return nil, err
	}
	rows := []RoomOverviewRow{}
	for _, room := range catalog.Rooms() {
		var total, videoOK, visualOK, boardSum, mismatch int
		for _, e := range evals {
			if e.RoomID != room.ID {
				continue
			}
			total++
			if e.VideoQualified == store.Qualified {
				videoOK++
			}
			if e.VisualQualified == store.Qualified {
				visualOK++
			}
			boardSum += e.BoardAppearanceCount
			if hasIssue(e, catalog.IssueMismatch) {
				mismatch++
			}
		}
		if total == 0 {
			continue
		}
		rows = append(rows, RoomOverviewRow{
			RoomID:              room.ID,
			RoomName:            room.Name,
			SKUCount:            len(room.SKUs),
			EvalCount:           total,
			VideoQualifiedRate:  percent(videoOK, total),
			VisualQualifiedRate: percent(visualOK, total),
			AvgBoardCount:       mean(boardSum, total),
			MismatchRate:        percent(mismatch, total),
		})
	}
	return rows, nil
}

// SKUDetail groups evaluations by SKU, optionally restricted to one room
// ("" or "all" selects every room). Evaluations referencing a SKU the catalog
// no longer lists are dropped silently.
func (s *StatsService) SKUDetail(roomID string) ([]SKUDetailRow, error) {
	evals, err := s.store.ListEvaluations(true)
	if err != nil {
		return nil, err
	}
	type acc struct {
		sku      *catalog.SKU
		roomName string
		total    int
		videoOK  int
		visualOK int
		boardSum int
		issues   map[string]int
	}
	order := []string{}
	groups := map[string]*acc{}
	for _, e := range evals {
		if roomID != "" && roomID != "all" && e.RoomID != roomID {
			continue
		}
		g, ok := groups[e.SkuID]
		if !ok {
			sku, room := catalog.FindSKU(e.SkuID)
			if sku == nil {
				continue
			}
			g = &acc{sku: sku, roomName: room.Name, issues: map[string]int{}}
			groups[e.SkuID] = g
			order = append(order, e.SkuID)
		}
		g.total++
		if e.VideoQualified == store.Qualified {
			g.videoOK++
		}
		if e.VisualQualified == store.Qualified {
			g.visualOK++
		}
		g.boardSum += e.BoardAppearanceCount
		for _, issue := range e.Issues {
			g.issues[issue]++
		}
	}
	rows := make([]SKUDetailRow, 0, len(order))
	for _, id := range order {
		g := groups[id]
		rows = append(rows, SKUDetailRow{
			SKUID:               id,
			Name:                g.sku.Name,
			Price:               g.sku.Price,
			RoomName:            g.roomName,
			EvalCount:           g.total,
			VideoQualifiedRate:  percent(g.videoOK, g.total),
			VisualQualifiedRate: percent(g.visualOK, g.total),
			AvgBoardCount:       mean(g.boardSum, g.total),
			TotalBoardCount:     g.boardSum,
			Issues:              g.issues,
		})
	}
	return rows, nil
}

// IssueDistribution reports, per catalog issue kind, the total occurrence
// count, its share of all evaluations, and the room where the kind occurs
// most. Ties on the top room resolve to the first room in catalog order. An
// empty evaluation set yields an empty result.
func (s *StatsService) IssueDistribution() ([]IssueDistributionRow, error) {
	evals, err := s.store.ListEvaluations(true)
	if err != nil {
		return nil, err
	}
	rows := []IssueDistributionRow{}
	if len(evals) == 0 {
		return rows, nil
	}
	for _, kind := range catalog.IssueKinds() {
		count := 0
		roomCounts := map[string]int{}
		for _, e := range evals {
			if !hasIssue(e, kind.ID) {
				continue
			}
			count++
			roomCounts[e.RoomID]++
		}
		topRoom := "-"
		best := 0
		for _, room := range catalog.Rooms() {
			if roomCounts[room.ID] > best {
				best = roomCounts[room.ID]
				topRoom = room.Name
			}
		}
		rows = append(rows, IssueDistributionRow{
			IssueID:    kind.ID,
			Label:      kind.Label,
			Count:      count,
			Percentage: percent(count, len(evals)),
			TopRoom:    topRoom,
		})
	}
	return rows, nil
}

// CompletionCounts counts submissions per catalog room, optionally restricted
// to one evaluator. Every catalog room appears in the result, zero-submission
// rooms included; submissions for unknown room ids accumulate nothing.
func (s *StatsService) CompletionCounts(evaluatorID string) (map[string]int, error) {
	subs, err := s.store.ListSubmissions(store.SubmissionFilter{EvaluatorID: evaluatorID})
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, room := range catalog.Rooms() {
		counts[room.ID] = 0
	}
	for _, sub := range subs {
		if _, ok := counts[sub.RoomID]; ok {
			counts[sub.RoomID]++
		}
	}
	return counts, nil
}

// EvaluatorSummary groups submissions by evaluator in first-seen order. The
// evaluator id splits on its first hyphen into department and name; names may
// themselves contain hyphens.
func (s *StatsService) EvaluatorSummary() ([]EvaluatorSummaryRow, error) {
	subs, err := s.store.ListSubmissions(store.SubmissionFilter{})
	if err != nil {
		return nil, err
	}
	order := []string{}
	byID := map[string]*EvaluatorSummaryRow{}
	seenRooms := map[string]map[string]bool{}
	for _, sub := range subs {
		row, ok := byID[sub.EvaluatorID]
		if !ok {
			dept, name := splitEvaluatorID(sub.EvaluatorID)
			row = &EvaluatorSummaryRow{EvaluatorID: sub.EvaluatorID, Department: dept, Name: name, Rooms: []string{}}
			byID[sub.EvaluatorID] = row
			seenRooms[sub.EvaluatorID] = map[string]bool{}
			order = append(order, sub.EvaluatorID)
		}
		row.CompletedCount++
		roomName := catalog.RoomName(sub.RoomID)
		if !seenRooms[sub.EvaluatorID][roomName] {
			seenRooms[sub.EvaluatorID][roomName] = true
			row.Rooms = append(row.Rooms, roomName)
		}
		if sub.SubmittedAt > row.LastSubmission {
			row.LastSubmission = sub.SubmittedAt
		}
	}
	rows := make([]EvaluatorSummaryRow, 0, len(order))
	for _, id := range order {
		rows = append(rows, *byID[id])
	}
	return rows, nil
}

// splitEvaluatorID parses the "department-name" identity convention. Two
// evaluators entering identical strings are indistinguishable; that is an
// accepted property of the identity scheme, not a bug.
func splitEvaluatorID(id string) (department, name string) {
	department, name, _ = strings.Cut(id, "-")
	if department == "" {
		department = "Unknown"
	}
	if name == "" {
		name = id
	}
	return department, name
}

func hasIssue(e store.Evaluation, issueID string) bool {
	for _, issue := range e.Issues {
		if issue == issueID {
			return true
		}
	}
	return false
}
