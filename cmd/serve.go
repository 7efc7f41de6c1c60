package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/review-cli/internal/chat"
	"github.com/sells-group/review-cli/internal/document"
	"github.com/sells-group/review-cli/internal/model"
	"github.com/sells-group/review-cli/internal/ocr"
	"github.com/sells-group/review-cli/internal/provenance"
	"github.com/sells-group/review-cli/internal/review"
	"github.com/sells-group/review-cli/internal/search"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the review HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		user, err := currentUser()
		if err != nil {
			return err
		}

		srvState := &server{
			user:      user,
			dataDir:   cfg.Review.DataDir,
			sessions:  make(map[string]*sessionEntry),
			responder: chat.Canned{},
		}

		r := srvState.routes(cfg.Server.AllowedOrigins)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				zap.L().Warn("server shutdown", zap.Error(err))
			}
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// sessionEntry pairs a review session with its chat transcript and a
// lock serializing access; the session itself is single-owner.
type sessionEntry struct {
	mu      sync.Mutex
	session *review.Session
	history chat.History
}

type server struct {
	user      model.User
	dataDir   string
	responder chat.Responder

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

func (s *server) routes(allowedOrigins []string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/uploads", s.handleUpload)
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", s.handleCloseSession)
			r.Get("/record", s.handleGetRecord)
			r.Post("/edits", s.handleSubmitEdits)
			r.Post("/save", s.handleSave)
			r.Get("/history", s.handleHistory)
			r.Get("/export", s.handleExport)
			r.Get("/document", s.handleDocument)
			r.Get("/document/info", s.handleDocumentInfo)
			r.Get("/guidelines", s.handleGuidelines)
			r.Get("/ocr", s.handleOCR)
			r.Post("/search", s.handleSearch)
			r.Post("/chat", s.handleChat)
		})
	})
	return r
}

func (s *server) entry(id string) (*sessionEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	return e, ok
}

func (s *server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RecordPath     string `json:"record_path"`
		DocumentPath   string `json:"document_path"`
		OCRPath        string `json:"ocr_path"`
		GuidelinesPath string `json:"guidelines_path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RecordPath == "" {
		writeError(w, http.StatusBadRequest, "record_path is required")
		return
	}

	sess := review.Open(s.user, req.RecordPath,
		review.WithDocument(req.DocumentPath),
		review.WithOCR(req.OCRPath),
		review.WithGuidelines(req.GuidelinesPath),
	)

	s.mu.Lock()
	s.sessions[sess.ID] = &sessionEntry{session: sess}
	s.mu.Unlock()

	resp := map[string]any{
		"id":     sess.ID,
		"user":   sess.User,
		"record": sess.Record(),
	}
	if loadErr := sess.LoadError(); loadErr != nil {
		resp["load_error"] = loadErr.Error()
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	e, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	e.mu.Lock()
	e.session.Close()
	e.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

func (s *server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	writeJSON(w, http.StatusOK, e.session.Record())
}

func (s *server) handleSubmitEdits(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var req struct {
		Values json.RawMessage `json:"values"`
		Notes  string          `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	values, err := review.ParseRows(req.Values)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	result, err := e.session.Submit(values, req.Notes)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleSave(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	path, err := e.session.Save()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": path})
}

func (s *server) handleHistory(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	rec := e.session.Record()
	if field := r.URL.Query().Get("field"); field != "" {
		events := provenance.FieldHistory(rec, field)
		writeJSON(w, http.StatusOK, map[string]any{"field": field, "events": events})
		return
	}
	if email := r.URL.Query().Get("user"); email != "" {
		writeJSON(w, http.StatusOK, map[string]any{"user": email, "entries": provenance.UserHistory(rec, email)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": rec.Provenance})
}

func (s *server) handleExport(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	var buf bytes.Buffer
	if err := provenance.ExportSorted(e.session.Record(), &buf); err != nil {
		if errors.Is(err, provenance.ErrEmptyLog) {
			writeError(w, http.StatusNotFound, "no provenance entries to export")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="provenance_report.json"`)
	w.Write(buf.Bytes())
}

func (s *server) handleDocument(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	e.mu.Lock()
	path := e.session.DocumentPath
	e.mu.Unlock()
	if path == "" {
		writeError(w, http.StatusNotFound, "session has no document")
		return
	}

	data, err := document.Load(path)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	if document.Detect(path) == document.KindXML && r.URL.Query().Get("pretty") == "1" {
		pretty, err := document.PrettyXML(data)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(pretty))
		return
	}

	w.Header().Set("Content-Type", document.MIMEType(path))
	w.Write(data)
}

// handleGuidelines serves the session's review-guidelines file verbatim.
func (s *server) handleGuidelines(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	e.mu.Lock()
	path := e.session.GuidelinesPath
	e.mu.Unlock()
	if path == "" {
		writeError(w, http.StatusNotFound, "session has no guidelines")
		return
	}

	data, err := document.Load(path)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.Header().Set("Content-Type", document.MIMEType(path))
	w.Write(data)
}

func (s *server) handleDocumentInfo(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	e.mu.Lock()
	path := e.session.DocumentPath
	e.mu.Unlock()
	if path == "" {
		writeError(w, http.StatusNotFound, "session has no document")
		return
	}
	info, err := document.Stat(path)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleOCR returns the text blocks for one page; given image dimensions
// it also projects pixel rectangles for overlay drawing.
func (s *server) handleOCR(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	e.mu.Lock()
	ocrPath := e.session.OCRPath
	e.mu.Unlock()
	if ocrPath == "" {
		writeError(w, http.StatusNotFound, "session has no OCR data")
		return
	}

	blocks, err := ocr.LoadFile(ocrPath)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		if page, err = strconv.Atoi(p); err != nil || page < 1 {
			writeError(w, http.StatusBadRequest, "invalid page")
			return
		}
	}
	imgW, _ := strconv.Atoi(r.URL.Query().Get("width"))
	imgH, _ := strconv.Atoi(r.URL.Query().Get("height"))

	type overlay struct {
		Text       string             `json:"text"`
		BlockType  string             `json:"block_type"`
		Confidence float64            `json:"confidence"`
		Band       ocr.ConfidenceBand `json:"band"`
		Box        ocr.BoundingBox    `json:"box"`
		Rect       *ocr.Rect          `json:"rect,omitempty"`
	}

	pageBlocks := ocr.ForPage(ocr.TextBlocks(blocks), page)
	overlays := make([]overlay, 0, len(pageBlocks))
	for _, b := range pageBlocks {
		o := overlay{
			Text:       b.Text,
			BlockType:  b.BlockType,
			Confidence: b.Confidence,
			Band:       ocr.Band(b.Confidence),
			Box:        b.Geometry.BoundingBox,
		}
		if imgW > 0 && imgH > 0 {
			rect := b.Geometry.BoundingBox.PixelRect(imgW, imgH)
			o.Rect = &rect
		}
		overlays = append(overlays, o)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"page":   page,
		"pages":  ocr.PageCount(blocks),
		"blocks": overlays,
	})
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var req struct {
		Query string `json:"query"`
		Match string `json:"match"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	matcher, err := search.ByName(req.Match)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	e.mu.Lock()
	docPath := e.session.DocumentPath
	ocrPath := e.session.OCRPath
	e.mu.Unlock()

	var results []search.Result
	switch document.Detect(docPath) {
	case document.KindXML, document.KindText:
		data, err := document.Load(docPath)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		results = search.Lines(string(data), req.Query, matcher)
	default:
		if ocrPath == "" {
			writeError(w, http.StatusUnprocessableEntity, "document type requires OCR data for search")
			return
		}
		blocks, err := ocr.LoadFile(ocrPath)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		results = search.Blocks(blocks, req.Query, matcher)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":   req.Query,
		"match":   matcher.Name(),
		"count":   len(results),
		"results": results,
	})
}

func (s *server) handleChat(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var req struct {
		Message string `json:"message"`
		Clear   bool   `json:"clear"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if req.Clear {
		e.history.Clear()
		writeJSON(w, http.StatusOK, map[string]any{"history": []chat.Message{}})
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	doc := chat.DocContext{
		DocumentPath: e.session.DocumentPath,
		RecordPath:   e.session.RecordPath,
		OCRPath:      e.session.OCRPath,
	}
	reply, err := s.responder.Reply(r.Context(), doc, req.Message)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	e.history.Add(chat.RoleUser, req.Message)
	e.history.Add(chat.RoleAssistant, reply)

	writeJSON(w, http.StatusOK, map[string]any{
		"reply":   reply,
		"history": e.history.Messages(),
	})
}

// handleUpload accepts a multipart file and stores it under the data
// directory, returning the stored path for use in session creation.
func (s *server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	dest := filepath.Join(s.dataDir, filepath.Base(header.Filename))
	path, err := document.SaveUpload(file, dest)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	zap.L().Info("file uploaded", zap.String("path", path), zap.Int64("size", header.Size))
	writeJSON(w, http.StatusCreated, map[string]string{"path": path})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
