package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"clinicrag/internal/api"
	"clinicrag/internal/coreerr"
	"clinicrag/internal/ingestion"
	"clinicrag/internal/records"
)

const maxUploadBytes = 25 << 20 // 25 MiB, mirrors §4.6's audio size ceiling; ingestion further holds documents to 10 MiB.

func readUploadFile(r *http.Request, field string) (string, []byte, string, error) {
	if err := r.ParseMultipartForm(maxUploadBytes + 1<<20); err != nil {
		return "", nil, "", coreerr.Wrap(coreerr.InvalidMedia, "parse multipart form", err)
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", nil, "", coreerr.New(coreerr.InvalidMedia, "missing file field "+field)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return "", nil, "", coreerr.Wrap(coreerr.Internal, "read upload", err)
	}
	if len(data) > maxUploadBytes {
		return "", nil, "", coreerr.New(coreerr.InvalidMedia, "upload exceeds size limit")
	}

	mime := header.Header.Get("Content-Type")
	return header.Filename, data, mime, nil
}

func (s *Server) uploadAudio(w http.ResponseWriter, r *http.Request) {
	filename, data, mime, err := readUploadFile(r, "audio")
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	rec, err := s.facade.SubmitAudio(r.Context(), filename, data, mime)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"id": rec.ID})
}

func (s *Server) uploadDocument(w http.ResponseWriter, r *http.Request) {
	filename, data, mime, err := readUploadFile(r, "document")
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	// patient_name, document_type and description (§6) are caller-supplied
	// hints; the extractor still derives its own structured fields from the
	// document body, so they are currently accepted but not threaded further.
	_ = r.FormValue("patient_name")
	_ = r.FormValue("document_type")
	_ = r.FormValue("description")
	override, _ := strconv.ParseBool(r.FormValue("override_ocr_confidence"))

	rec, err := s.facade.SubmitDocument(r.Context(), filename, data, mime, ingestion.DocumentOptions{
		OverrideOCRConfidence: override,
	})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"id": rec.ID})
}

func (s *Server) resubmit(w http.ResponseWriter, r *http.Request) {
	rec, err := s.facade.Resubmit(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, toRecordView(rec))
}

func (s *Server) getRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.facade.GetRecord(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, toRecordView(rec))
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := records.Filter{
		Status:  records.Status(q.Get("status")),
		Patient: q.Get("patient"),
	}
	if from, err := time.Parse(time.RFC3339, q.Get("from")); err == nil {
		filter.From = &from
	}
	if to, err := time.Parse(time.RFC3339, q.Get("to")); err == nil {
		filter.To = &to
	}

	page := records.Page{Size: 20}
	if size, err := strconv.Atoi(q.Get("size")); err == nil && size > 0 {
		page.Size = size
	}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		page.Offset = (n - 1) * page.Size
	}

	recs, err := s.facade.ListRecords(r.Context(), filter, page)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	views := make([]recordView, 0, len(recs))
	for _, rec := range recs {
		views = append(views, toRecordView(rec))
	}
	respondJSON(w, http.StatusOK, views)
}

func (s *Server) deleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := s.facade.DeleteRecord(r.Context(), r.PathValue("id")); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(r.Context(), w, coreerr.Wrap(coreerr.InvalidInput, "decode chat request", err))
		return
	}
	if req.Query == "" {
		writeError(r.Context(), w, coreerr.New(coreerr.InvalidInput, "query is required"))
		return
	}

	res, err := s.facade.Chat(r.Context(), req.Query, api.ChatOptions{MaxResults: req.MaxResults})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, toChatResponse(res, req.IncludeSources))
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("query")
	if q == "" {
		writeError(r.Context(), w, coreerr.New(coreerr.InvalidInput, "query is required"))
		return
	}
	maxResults, _ := strconv.Atoi(r.URL.Query().Get("max_results"))

	results, err := s.facade.Search(r.Context(), q, api.SearchOptions{MaxResults: maxResults})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSearchResults(results))
}

func (s *Server) vectorStoreStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.facade.VectorStoreStatus(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	statuses := s.facade.Health(r.Context())
	overall := http.StatusOK
	for _, st := range statuses {
		if !st.OK {
			overall = http.StatusServiceUnavailable
			break
		}
	}
	respondJSON(w, overall, statuses)
}
