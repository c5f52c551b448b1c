package httpadapter

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/kirillkom/lab-grader/internal/core/ports"
	"github.com/kirillkom/lab-grader/internal/core/usecase"
	"github.com/kirillkom/lab-grader/internal/infrastructure/export"
	"github.com/kirillkom/lab-grader/internal/observability/metrics"
)

// maxUploadBytes bounds one multipart upload set. Scanned lab reports run
// a few megabytes each; a class set fits comfortably.
const maxUploadBytes = 256 << 20

type Router struct {
	createUC *usecase.CreateBatchUseCase
	repo     ports.BatchRepository
	metrics  *metrics.HTTPServerMetrics
	service  string
}

func NewRouter(
	createUC *usecase.CreateBatchUseCase,
	repo ports.BatchRepository,
	m *metrics.HTTPServerMetrics,
	service string,
) *Router {
	return &Router{
		createUC: createUC,
		repo:     repo,
		metrics:  m,
		service:  service,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/batches", rt.createBatch)
	mux.HandleFunc("/v1/batches/", rt.batchSubroutes)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) createBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}
	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'files' is required"})
		return
	}

	uploads := make([]usecase.Upload, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable upload: " + fh.Filename})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable upload: " + fh.Filename})
			return
		}
		uploads = append(uploads, usecase.Upload{Filename: fh.Filename, Data: data})
	}

	batch, notices, err := rt.createUC.Create(r.Context(), r.FormValue("name"), uploads)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]any{
			"error":   err.Error(),
			"notices": notices,
		})
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordBatchCreated(rt.service, batch.Submitted, batch.Ignored)
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"batch":   batch,
		"notices": notices,
	})
}

// batchSubroutes dispatches /v1/batches/{id}, /v1/batches/{id}/results and
// /v1/batches/{id}/export/{format}.
func (rt *Router) batchSubroutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/batches/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if parts[0] == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "batch id is required"})
		return
	}

	switch {
	case len(parts) == 1:
		rt.getBatch(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "results":
		rt.listResults(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "export":
		rt.exportBatch(w, r, parts[0], parts[2])
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown route"})
	}
}

func (rt *Router) getBatch(w http.ResponseWriter, r *http.Request, id string) {
	batch, err := rt.repo.GetBatch(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (rt *Router) listResults(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := rt.repo.GetBatch(r.Context(), id); err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	results, err := rt.repo.ListResults(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (rt *Router) exportBatch(w http.ResponseWriter, r *http.Request, id, format string) {
	if _, err := rt.repo.GetBatch(r.Context(), id); err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	results, err := rt.repo.ListResults(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	var (
		contentType string
		filename    string
		render      func(io.Writer) error
	)
	switch format {
	case "csv":
		contentType = "text/csv; charset=utf-8"
		filename = "gradebook.csv"
		render = func(w io.Writer) error { return export.WriteCSV(w, export.BuildTable(results)) }
	case "xlsx":
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		filename = "gradebook.xlsx"
		render = func(w io.Writer) error { return export.WriteXLSX(w, export.BuildTable(results)) }
	case "docx":
		contentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
		filename = "feedback.docx"
		render = func(w io.Writer) error { return export.WriteBatchDoc(w, results) }
	case "zip":
		contentType = "application/zip"
		filename = "feedback_bundle.zip"
		render = func(w io.Writer) error { return export.WriteBundle(w, results) }
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown export format: " + format})
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := render(w); err != nil {
		// Headers are already out; all we can do is log via middleware status.
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordExport(rt.service, format)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
