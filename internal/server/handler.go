// Package server exposes the compiler over HTTP. The handler is transport
// agnostic; HTTP3Server serves it over QUIC.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/basicc-lang/basicc/internal/cli"
	"github.com/basicc-lang/basicc/internal/codegen"
	"github.com/basicc-lang/basicc/internal/diagnostics"
)

// MaxSourceBytes bounds the accepted request body.
const MaxSourceBytes = 1 << 20

// ContentTypeC is returned with compiled output.
const ContentTypeC = "text/x-c; charset=utf-8"

type handler struct {
	log *cli.Logger
}

// NewHandler returns the compile service:
//
//	POST /compile   body is BASIC source; 200 with C, or 422 with a JSON diagnostic
//	GET  /healthz   liveness and version
//
// The optional "filename" query parameter names the source in diagnostics.
func NewHandler(logger *cli.Logger) http.Handler {
	if logger == nil {
		logger = cli.NewLogger(io.Discard, false, false)
	}
	h := &handler{log: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /compile", h.compile)
	mux.HandleFunc("GET /healthz", h.healthz)
	return mux
}

func (h *handler) compile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	src, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxSourceBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "source too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	filename := r.URL.Query().Get("filename")
	res, err := codegen.Compile(string(src), codegen.WithFilename(filename))
	if err != nil {
		d := diagnostics.From(err)
		h.log.Info("%s %s: %s %s", r.Method, r.URL.Path, d.Code, d.Message)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		if err := diagnostics.RenderJSON(w, d); err != nil {
			h.log.Warn("writing diagnostic: %v", err)
		}
		return
	}

	h.log.Info("%s %s: %d bytes in %s", r.Method, r.URL.Path, len(src), time.Since(start).Round(time.Microsecond))
	w.Header().Set("Content-Type", ContentTypeC)
	if _, err := io.WriteString(w, res.Output); err != nil {
		h.log.Warn("writing output: %v", err)
	}
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"version": cli.Version,
	})
}
