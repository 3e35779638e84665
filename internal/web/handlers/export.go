package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/photobook/internal/archive"
	"github.com/kozaktomas/photobook/internal/book"
	"github.com/kozaktomas/photobook/internal/config"
	"github.com/kozaktomas/photobook/internal/constants"
	"github.com/kozaktomas/photobook/internal/session"
	"github.com/kozaktomas/photobook/internal/web/middleware"
)

// Export formats accepted by the format query parameter.
const (
	exportFormatZip    = "zip"
	exportFormatReport = "report"
	exportFormatProof  = "proof"
)

var errNothingToExport = errors.New("no photos to export")

// ExportHandler handles archive export, both inline and as background jobs
type ExportHandler struct {
	config         *config.Config
	sessionManager *middleware.SessionManager
	assembler      *archive.Assembler
	jobManager     *JobManager
}

// NewExportHandler creates a new export handler
func NewExportHandler(cfg *config.Config, sm *middleware.SessionManager, assembler *archive.Assembler, jm *JobManager) *ExportHandler {
	return &ExportHandler{
		config:         cfg,
		sessionManager: sm,
		assembler:      assembler,
		jobManager:     jm,
	}
}

// Export builds the archive and returns it in the requested format:
// the zip itself (default), the JSON report, or a merged proof PDF.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	s := requireSession(w, r)
	if s == nil {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = exportFormatZip
	}
	if format != exportFormatZip && format != exportFormatReport && format != exportFormatProof {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown export format %q", format))
		return
	}

	entries, settings, err := s.BeginExport()
	if err != nil {
		respondExportError(w, err)
		return
	}
	defer s.EndExport()

	if len(entries) == 0 {
		respondExportError(w, errNothingToExport)
		return
	}

	var buf bytes.Buffer
	report, err := h.assembler.Assemble(&buf, entries, settings, nil)
	if err != nil {
		respondExportError(w, err)
		return
	}

	switch format {
	case exportFormatReport:
		respondJSON(w, http.StatusOK, report)
	case exportFormatProof:
		var proof bytes.Buffer
		if err := archive.MergeProof(&proof, report.PDFs()); err != nil {
			log.Printf("WARNING: proof merge failed for session export: %v", err)
			respondError(w, http.StatusInternalServerError, "failed to build proof")
			return
		}
		writeAttachment(w, constants.ProofContentType, archive.ProofName, proof.Bytes(), report.Fallbacks)
	default:
		writeAttachment(w, constants.ArchiveContentType, archive.ArchiveName, buf.Bytes(), report.Fallbacks)
	}
}

// StartJob begins a background export and returns its job for progress tracking
func (h *ExportHandler) StartJob(w http.ResponseWriter, r *http.Request) {
	s := requireSession(w, r)
	if s == nil {
		return
	}

	entries, settings, err := s.BeginExport()
	if err != nil {
		respondExportError(w, err)
		return
	}
	if len(entries) == 0 {
		s.EndExport()
		respondExportError(w, errNothingToExport)
		return
	}

	job := h.jobManager.CreateJob(s.ID)
	go h.runJob(job, s, entries, settings)

	respondJSON(w, http.StatusAccepted, job.Snapshot())
}

func (h *ExportHandler) runJob(job *ExportJob, s *session.Session, entries []*book.Entry, settings book.FormatSettings) {
	defer s.EndExport()

	job.start(len(entries))
	var buf bytes.Buffer
	report, err := h.assembler.Assemble(&buf, entries, settings, job.progress)
	if err != nil {
		log.Printf("WARNING: export job %s failed: %v", job.ID, err)
		job.fail(err)
		return
	}
	job.complete(report, buf.Bytes())
}

// JobStatus returns the state of an export job
func (h *ExportHandler) JobStatus(w http.ResponseWriter, r *http.Request) {
	job := h.sessionJob(w, r)
	if job == nil {
		return
	}
	respondJSON(w, http.StatusOK, job.Snapshot())
}

// JobEvents streams export progress as server-sent events
func (h *ExportHandler) JobEvents(w http.ResponseWriter, r *http.Request) {
	job := h.sessionJob(w, r)
	if job == nil {
		return
	}
	streamExportEvents(w, r, job)
}

// JobArchive downloads the archive of a completed export job
func (h *ExportHandler) JobArchive(w http.ResponseWriter, r *http.Request) {
	job := h.sessionJob(w, r)
	if job == nil {
		return
	}

	data := job.Archive()
	if data == nil {
		respondError(w, http.StatusConflict, fmt.Sprintf("export job is %s", job.GetStatus()))
		return
	}
	snap := job.Snapshot()
	writeAttachment(w, constants.ArchiveContentType, archive.ArchiveName, data, snap.Report.Fallbacks)
}

// DeleteJob discards an export job and its archive
func (h *ExportHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	job := h.sessionJob(w, r)
	if job == nil {
		return
	}
	if !isJobTerminal(job.GetStatus()) {
		respondError(w, http.StatusConflict, "export job is still running")
		return
	}
	h.jobManager.DeleteJob(job.ID)
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// sessionJob resolves the jobId parameter to a job owned by the caller's session.
func (h *ExportHandler) sessionJob(w http.ResponseWriter, r *http.Request) *ExportJob {
	s := requireSession(w, r)
	if s == nil {
		return nil
	}
	job := h.jobManager.GetSessionJob(chi.URLParam(r, "jobId"), s.ID)
	if job == nil {
		respondError(w, http.StatusNotFound, "job not found")
		return nil
	}
	return job
}

// writeAttachment sends a file download. The fallback count is exposed so
// clients can tell the user some pages were replaced.
func writeAttachment(w http.ResponseWriter, contentType, name string, data []byte, fallbacks int) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Photobook-Fallbacks", strconv.Itoa(fallbacks))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// respondExportError maps export errors to HTTP statuses.
func respondExportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrExportInProgress):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, errNothingToExport):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, archive.ErrPacking):
		log.Printf("WARNING: export failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to create archive")
	default:
		log.Printf("WARNING: export failed: %v", err)
		respondError(w, http.StatusInternalServerError, "export failed")
	}
}
