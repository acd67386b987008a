package main

import (
	"encoding/json"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jdlive/kteval/internal/api"
	"github.com/jdlive/kteval/internal/db"
	"github.com/jdlive/kteval/internal/middleware"
	"github.com/jdlive/kteval/internal/services"
	"github.com/jdlive/kteval/internal/store"
)

func main() {
	addr := os.Getenv("KTEVAL_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	dataDir := os.Getenv("KTEVAL_DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	commit := os.Getenv("KTEVAL_COMMIT")
	buildTime := os.Getenv("KTEVAL_BUILD_TIME")

	var recordStore services.RecordStore
	if sqlitePath := os.Getenv("KTEVAL_SQLITE_PATH"); sqlitePath != "" {
		st, err := openSQLite(dataDir, sqlitePath)
		if err != nil {
			log.Fatalf("sqlite store: %v", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				log.Printf("warning: failed to close sqlite db: %v", cerr)
			}
		}()
		recordStore = st
		log.Printf("using sqlite record store at %s", sqlitePath)
	} else {
		recordStore = store.New(store.NewFilePersistence(dataDir))
		log.Printf("using JSON record store under %s", dataDir)
	}

	mux := http.NewServeMux()
	router, err := api.NewRouter(recordStore)
	if err != nil {
		log.Fatalf("router: %v", err)
	}
	router.Register(mux)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         true,
			"name":       "KT Board Eval API",
			"commit":     commit,
			"build_time": buildTime,
		})
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"commit":     commit,
			"build_time": buildTime,
		})
	})

	// Frontend serving strategy (priority):
	// 1) Static files if KTEVAL_STATIC_DIR is set (fullstack image)
	// 2) Dev proxy if KTEVAL_DEV_FRONTEND_URL is set
	if staticDir := os.Getenv("KTEVAL_STATIC_DIR"); staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	} else if devURL := os.Getenv("KTEVAL_DEV_FRONTEND_URL"); devURL != "" {
		if u, err := url.Parse(devURL); err == nil {
			mux.Handle("/", httputil.NewSingleHostReverseProxy(u))
		} else {
			log.Printf("invalid KTEVAL_DEV_FRONTEND_URL=%q: %v", devURL, err)
		}
	}

	handler := middleware.NoStore(middleware.SecureHeaders(middleware.CORS(middleware.WithAuth(mux))))

	log.Printf("KT board eval server listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func openSQLite(dataDir, sqlitePath string) (*db.SQLiteStore, error) {
	migrate := needsMigration(dataDir, sqlitePath)
	st, err := db.Open(sqlitePath)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := migrateFromJSON(dataDir, st); err != nil {
			_ = st.Close()
			return nil, err
		}
	}
	return st, nil
}
