// Package web is the browser adapter: an upload form, the rendered
// diagnostic report and the prospect-list downloads, routed with chi.
package web

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Traumerei-sf/tokumei-AI/internal/ai"
	"github.com/Traumerei-sf/tokumei-AI/internal/app"
	webui "github.com/Traumerei-sf/tokumei-AI/web"
)

// maxUploadBytes caps a single multipart upload.
const maxUploadBytes = 64 << 20

// Handler holds the ApplicationService, the chi router, and the finished-run store.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
	runs   *resultStore
	log    zerolog.Logger
	index  *template.Template
	result *template.Template
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string, log zerolog.Logger) http.Handler {
	pages, err := template.ParseFS(webui.Templates, "templates/index.html.tmpl", "templates/result.html.tmpl")
	if err != nil {
		panic("web template parse failed: " + err.Error())
	}

	h := &Handler{
		svc:    svc,
		runs:   newResultStore(),
		log:    log,
		index:  pages.Lookup("index.html.tmpl"),
		result: pages.Lookup("result.html.tmpl"),
	}
	h.runs.startPurge(context.Background())

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recoverer(log))
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(maxUploadBytes))

	r.Get("/api/health", h.health)
	r.Post("/api/check", h.checkAPI)
	r.Get("/api/runs", h.listRuns)
	r.Get("/api/runs/{id}", h.getRun)

	r.Get("/", h.indexPage)
	r.Post("/analyze", h.analyzeAction)
	r.Get("/report/{id}", h.reportDocument)
	r.Get("/report/{id}/preview", h.reportPreview)
	r.Get("/prospects/{id}.csv", h.prospectCSV)
	r.Get("/prospects/{id}.xlsx", h.prospectXLSX)

	h.router = r
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// checkAPI validates uploads without running the diagnostic.
func (h *Handler) checkAPI(w http.ResponseWriter, r *http.Request) {
	journal, balanceSheet, err := readUploads(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_UPLOAD", http.StatusBadRequest)
		return
	}
	res, err := h.svc.CheckFiles(r.Context(), journal, balanceSheet)
	if err != nil {
		writeError(w, r, err.Error(), "CHECK_FAILED", http.StatusInternalServerError)
		return
	}
	writeJSON(w, res)
}

// listRuns returns the archived run history, newest first.
func (h *Handler) listRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	runs, err := h.svc.RecentRuns(r.Context(), limit)
	if err != nil {
		writeError(w, r, err.Error(), "ARCHIVE_FAILED", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"runs": runs})
}

// getRun returns one archived run including its findings.
func (h *Handler) getRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "invalid run id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	run, err := h.svc.ArchivedRun(r.Context(), id)
	if err != nil {
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeJSON(w, run)
}

type flashMessage struct {
	Kind string
	Text string
}

func (h *Handler) indexPage(w http.ResponseWriter, r *http.Request) {
	h.renderIndex(w, nil)
}

func (h *Handler) renderIndex(w http.ResponseWriter, messages []flashMessage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.index.Execute(w, map[string]any{"Messages": messages}); err != nil {
		h.log.Error().Err(err).Msg("render index")
	}
}

// analyzeAction runs the diagnostic on the uploaded files and, when the
// prospecting agent is configured, generates the sales candidate list for
// the same journal in the same run.
func (h *Handler) analyzeAction(w http.ResponseWriter, r *http.Request) {
	journal, balanceSheet, err := readUploads(r)
	if err != nil {
		h.renderIndex(w, []flashMessage{{Kind: "error", Text: err.Error()}})
		return
	}

	analysis, err := h.svc.Analyze(r.Context(), journal, balanceSheet)
	if err != nil {
		h.log.Error().Err(err).Msg("analysis failed")
		h.renderIndex(w, []flashMessage{{Kind: "error", Text: "分析中にエラーが発生しました"}})
		return
	}

	entry := &runEntry{Analysis: analysis}
	if analysis.DocumentHTML != nil {
		prospects, err := h.svc.BuildProspectList(r.Context(), journal)
		if err != nil {
			h.log.Warn().Err(err).Msg("prospect generation skipped")
		} else {
			entry.Prospects = prospects
		}
	}
	h.runs.put(analysis.RunID, entry)

	http.Redirect(w, r, "/report/"+analysis.RunID.String()+"/preview", http.StatusSeeOther)
}

// reportDocument serves the full print-ready report.
func (h *Handler) reportDocument(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.lookupRun(w, r)
	if !ok {
		return
	}
	if entry.Analysis.DocumentHTML == nil {
		http.Redirect(w, r, "/report/"+chi.URLParam(r, "id")+"/preview", http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(entry.Analysis.DocumentHTML)
}

// reportPreview shows the run summary page: checks, findings table and
// download links.
func (h *Handler) reportPreview(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.lookupRun(w, r)
	if !ok {
		return
	}
	a := entry.Analysis

	var prospects []ai.Prospect
	if entry.Prospects != nil {
		prospects = entry.Prospects.List.BusinessList
	}
	data := map[string]any{
		"RunID":          a.RunID,
		"Checks":         a.Checks,
		"HasFindings":    len(a.Findings) > 0,
		"Findings":       a.Findings,
		"Red":            a.RedCount > 0,
		"SummaryMessage": a.SummaryMessage,
		"HasProspects":   entry.Prospects != nil,
		"Prospects":      prospects,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.result.Execute(w, data); err != nil {
		h.log.Error().Err(err).Msg("render result page")
	}
}

func (h *Handler) prospectCSV(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.lookupRun(w, r)
	if !ok {
		return
	}
	if entry.Prospects == nil {
		writeError(w, r, "prospect list not available for this run", "NOT_FOUND", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="business_list.csv"`)
	_, _ = w.Write(entry.Prospects.CSV)
}

func (h *Handler) prospectXLSX(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.lookupRun(w, r)
	if !ok {
		return
	}
	if entry.Prospects == nil {
		writeError(w, r, "prospect list not available for this run", "NOT_FOUND", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="business_list.xlsx"`)
	_, _ = w.Write(entry.Prospects.XLSX)
}

// lookupRun resolves the {id} route param against the finished-run store.
func (h *Handler) lookupRun(w http.ResponseWriter, r *http.Request) (*runEntry, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "invalid run id", "BAD_REQUEST", http.StatusBadRequest)
		return nil, false
	}
	entry, ok := h.runs.get(id)
	if !ok {
		writeError(w, r, "run not found or expired", "NOT_FOUND", http.StatusNotFound)
		return nil, false
	}
	return entry, true
}

// readUploads pulls the journal (required) and balance sheet (optional)
// files out of a multipart form.
func readUploads(r *http.Request) (journal, balanceSheet *app.UploadedFile, err error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, nil, fmt.Errorf("アップロードの読み込みに失敗しました")
	}

	journal, err = readFormFile(r, "journal")
	if err != nil {
		return nil, nil, fmt.Errorf("仕訳帳ファイルを選択してください")
	}

	balanceSheet, err = readFormFile(r, "balance_sheet")
	if err != nil {
		// Optional upload, absence is not an error.
		balanceSheet = nil
	}
	return journal, balanceSheet, nil
}

func readFormFile(r *http.Request, field string) (*app.UploadedFile, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty upload")
	}
	return &app.UploadedFile{Name: strings.TrimSpace(header.Filename), Data: data}, nil
}
