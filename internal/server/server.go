// Package server exposes the extractor behind a small stateless HTTP shell:
// upload an XML export, get the dictionary back as JSON or as a download.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/hanadict/internal/dictionary"
	"github.com/hyperifyio/hanadict/internal/export"
)

// RenderModel is everything a client needs to display one parsed document.
type RenderModel struct {
	SourceEntity string           `json:"source_entity"`
	RowCount     int              `json:"row_count"`
	Parameters   int              `json:"parameters"`
	Attributes   int              `json:"attributes"`
	Header       []string         `json:"header"`
	Rows         []dictionary.Row `json:"rows"`
	Warning      string           `json:"warning,omitempty"`
}

const noDataWarning = "No data found in the uploaded XML."

// HandleUpload extracts one uploaded document into a RenderModel.
func HandleUpload(b []byte) (RenderModel, error) {
	doc, err := dictionary.ExtractDocument(b)
	if err != nil {
		return RenderModel{}, err
	}
	s := dictionary.Summarize(doc.Rows)
	m := RenderModel{
		SourceEntity: doc.SourceEntity,
		RowCount:     len(doc.Rows),
		Parameters:   s.Parameters,
		Attributes:   s.Attributes,
		Header:       dictionary.Header(),
		Rows:         doc.Rows,
	}
	if m.Rows == nil {
		m.Rows = []dictionary.Row{}
	}
	if len(doc.Rows) == 0 {
		m.Warning = noDataWarning
	}
	return m, nil
}

// Options configures a Server.
type Options struct {
	// MaxUploadBytes caps the request body. Zero means 10 MiB.
	MaxUploadBytes int64
	Export         export.Options
}

// Server holds no per-request state; every request parses its own upload.
type Server struct {
	opts Options
}

func New(opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &Server{opts: opts}
}

// Handler returns the routed, logged HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})
	mux.HandleFunc("/api/extract", s.handleExtract)
	mux.HandleFunc("/api/export", s.handleExport)
	return logRequests(mux)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexPage.Execute(w, export.Formats()); err != nil {
		log.Error().Err(err).Msg("render index")
	}
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	body, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	m, err := HandleUpload(body)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	name := r.URL.Query().Get("format")
	if name == "" {
		name = string(export.FormatXLSX)
	}
	f, err := export.ParseFormat(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	body, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	rows, err := dictionary.ExtractBytes(body)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if len(rows) == 0 {
		writeError(w, http.StatusUnprocessableEntity, errors.New(noDataWarning))
		return
	}
	// serialize fully first so a failed export never sends a partial file
	var buf bytes.Buffer
	if err := export.Write(&buf, f, rows, s.opts.Export); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": f.FileName()}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// readUpload returns the XML document from a multipart "file" field or, for
// any other content type, the raw request body. An empty body is left to the
// extractor to reject.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	defer r.Body.Close()

	var (
		body []byte
		err  error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		body, err = readMultipartFile(r, s.opts.MaxUploadBytes)
	} else {
		body, err = io.ReadAll(r.Body)
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d bytes", tooLarge.Limit))
			return nil, false
		}
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	return body, true
}

func readMultipartFile(r *http.Request, limit int64) ([]byte, error) {
	if err := r.ParseMultipartForm(limit); err != nil {
		return nil, err
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("form field %q: %w", "file", err)
	}
	defer file.Close()
	return io.ReadAll(file)
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

// statusRecorder captures the response code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Msg("http request")
	})
}

// ListenAndServe serves h on addr until ctx is cancelled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("serving uploads")
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

var indexPage = template.Must(template.New("index").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>HANA View Data Dictionary Generator</title></head>
<body>
<h1>HANA View Data Dictionary Generator</h1>
<form method="post" enctype="multipart/form-data" action="/api/extract">
  <p><input type="file" name="file" accept=".xml,text/xml,application/xml" required></p>
  <p>
    <button type="submit">Parse</button>
    {{range .}}<button type="submit" formaction="/api/export?format={{.}}">Download {{.}}</button>
    {{end}}
  </p>
</form>
</body>
</html>
`))
