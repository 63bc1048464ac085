// Package monitor exposes a strictly observational HTTP status endpoint for
// a running synchronizer session: GET /status reports current_path and
// current_mode as JSON, the same pair CurrentPath/CurrentMode expose for
// progress reporting between Step calls. It never mutates Synchronizer
// state and is not required for correctness.
package monitor

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"code.vellumsync.dev/vellum/go/src/juliett/synchronizer"
)

type status struct {
	Direction   string `json:"direction"`
	CurrentPath string `json:"current_path"`
	CurrentMode string `json:"current_mode"`
}

func handler(s *synchronizer.Synchronizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := status{Direction: s.Direction().String()}

		if path, err := s.CurrentPath(); err == nil {
			out.CurrentPath = path
		}

		if mode, err := s.CurrentMode(); err == nil {
			out.CurrentMode = mode.String()
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	}
}

// Serve starts a background HTTP server on addr reporting s's progress at
// GET /status, returning a func that shuts it down. The server is best
// effort: a failure to bind is logged to stderr rather than returned, since
// a monitor endpoint is never required for a sync session to complete.
func Serve(addr string, s *synchronizer.Synchronizer) func() {
	router := mux.NewRouter()
	router.HandleFunc("/status", handler(s)).Methods(http.MethodGet)

	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "vellum: monitor: %v\n", err)
		}
	}()

	return func() {
		_ = srv.Close()
	}
}
