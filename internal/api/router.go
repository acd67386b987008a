// Package api exposes the record store and aggregation engine over JSON HTTP.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"os"

	"github.com/jdlive/kteval/internal/catalog"
	"github.com/jdlive/kteval/internal/middleware"
	"github.com/jdlive/kteval/internal/services"
	"github.com/jdlive/kteval/internal/store"
)

type Router struct {
	records *services.RecordService
	stats   *services.StatsService
	auth    *services.AuthService
}

// NewRouter wires the services over the given record store. The admin
// credential defaults to the built-in placeholder and can be overridden with
// KTEVAL_ADMIN_ID / KTEVAL_ADMIN_PASSWORD.
func NewRouter(st services.RecordStore) (*Router, error) {
	adminID := os.Getenv("KTEVAL_ADMIN_ID")
	if adminID == "" {
		adminID = services.DefaultAdminID
	}
	adminPassword := os.Getenv("KTEVAL_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = services.DefaultAdminPassword
	}
	auth, err := services.NewAuthService(adminID, adminPassword, middleware.SignAdminToken)
	if err != nil {
		return nil, err
	}
	return &Router{
		records: services.NewRecordService(st),
		stats:   services.NewStatsService(st),
		auth:    auth,
	}, nil
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/evaluations", rt.handleEvaluations)
	mux.HandleFunc("/api/submissions", rt.handleSubmissions)
	mux.HandleFunc("/api/stats", rt.handleStats)
	mux.HandleFunc("/api/rooms", rt.handleRooms)
	mux.HandleFunc("/api/dashboard/overview", rt.handleOverview)
	mux.HandleFunc("/api/dashboard/skus", rt.handleSKUDetail)
	mux.HandleFunc("/api/dashboard/issues", rt.handleIssues)
	mux.HandleFunc("/api/export", rt.handleExport)
	mux.HandleFunc("/api/admin/login", rt.handleAdminLogin)
	mux.Handle("/api/admin/evaluators", middleware.RequireAdmin(http.HandlerFunc(rt.handleAdminEvaluators)))
	mux.Handle("/api/admin/clear", middleware.RequireAdmin(http.HandlerFunc(rt.handleAdminClear)))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	if se, ok := services.AsServiceError(err); ok {
		switch se.Code {
		case services.ErrorInvalid:
			http.Error(w, se.Message, http.StatusBadRequest)
		case services.ErrorUnauthorized:
			http.Error(w, se.Message, http.StatusUnauthorized)
		case services.ErrorNotFound:
			http.Error(w, se.Message, http.StatusNotFound)
		default:
			http.Error(w, se.Message, http.StatusInternalServerError)
		}
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// GET /api/evaluations?submittedOnly=true | POST /api/evaluations
func (rt *Router) handleEvaluations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		submittedOnly := r.URL.Query().Get("submittedOnly") == "true"
		evals, err := rt.records.ListEvaluations(submittedOnly)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, evals)
	case http.MethodPost:
		var patch store.EvaluationPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := rt.records.UpsertEvaluation(patch); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"success": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// GET /api/submissions?evaluatorId=&roomId= | POST /api/submissions
func (rt *Router) handleSubmissions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		filter := store.SubmissionFilter{
			EvaluatorID: r.URL.Query().Get("evaluatorId"),
			RoomID:      r.URL.Query().Get("roomId"),
		}
		subs, err := rt.records.ListSubmissions(filter)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, subs)
	case http.MethodPost:
		var sub store.Submission
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := rt.records.CreateSubmission(sub); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"success": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// GET /api/stats?evaluatorId= — completion counts, one entry per catalog room.
func (rt *Router) handleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := rt.stats.CompletionCounts(r.URL.Query().Get("evaluatorId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, counts)
}

// GET /api/rooms — the static catalog, for clients rendering the room list.
func (rt *Router) handleRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, catalog.Rooms())
}

func (rt *Router) handleOverview(w http.ResponseWriter, r *http.Request) {
	rows, err := rt.stats.RoomOverview()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, rows)
}

// GET /api/dashboard/skus?roomId=all
func (rt *Router) handleSKUDetail(w http.ResponseWriter, r *http.Request) {
	rows, err := rt.stats.SKUDetail(r.URL.Query().Get("roomId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, rows)
}

func (rt *Router) handleIssues(w http.ResponseWriter, r *http.Request) {
	rows, err := rt.stats.IssueDistribution()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, rows)
}

// GET /api/export?roomId= — SKU detail as a CSV attachment.
func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
	rows, err := rt.stats.SKUDetail(r.URL.Query().Get("roomId"))
	if err != nil {
		writeError(w, err)
		return
	}
	b, err := services.ExportSKUDetailCSV(rows)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=sku_evaluation_data.csv")
	_, _ = w.Write(b)
}

// POST /api/admin/login
func (rt *Router) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		ID       string `json:"id"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := rt.auth.Login(req.ID, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"token": res.Token})
}

// GET /api/admin/evaluators — admin token required.
func (rt *Router) handleAdminEvaluators(w http.ResponseWriter, r *http.Request) {
	rows, err := rt.stats.EvaluatorSummary()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, rows)
}

// POST /api/admin/clear — admin token required; irreversible.
func (rt *Router) handleAdminClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := rt.records.ClearAll(); err != nil {
		writeError(w, err)
		return
	}
	if admin, ok := middleware.AdminFromContext(r.Context()); ok {
		log.Printf("admin %s cleared all evaluation data", admin)
	}
	writeJSON(w, map[string]any{"success": true})
}
