package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"blueprint/api/internal/blueprint"
	"blueprint/api/internal/export"
	"blueprint/api/internal/session"
)

// maxImportBytes caps uploaded documents. The largest valid blueprint is a
// few hundred kilobytes; anything beyond this is not a document.
const maxImportBytes = 4 << 20

type HTTPServer struct {
	service    *Service
	corsOrigin string
}

func NewHTTPServer(service *Service, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := "ready"
		statusCode := http.StatusOK
		checks := map[string]any{
			"sessionStore": map[string]any{"status": "ok"},
		}

		if err := s.service.Ping(ctx); err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks["sessionStore"] = map[string]any{
				"status": "error",
				"error":  err.Error(),
			}
		}

		writeJSON(w, statusCode, map[string]any{
			"ok":     status == "ready",
			"status": status,
			"checks": checks,
		})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/sessions" {
		payload, err := s.service.CreateSession(r.Context())
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusCreated, payload)
		return
	}

	parts := splitPath(r.URL.Path)

	if len(parts) >= 3 && parts[0] == "api" && parts[1] == "sessions" {
		sessionID := parts[2]

		if len(parts) == 3 {
			if r.Method == http.MethodGet {
				payload, err := s.service.Workspace(r.Context(), sessionID)
				if err != nil {
					status, code, message, details := mapError(err)
					writeError(w, status, code, message, details)
					return
				}
				writeJSON(w, http.StatusOK, payload)
				return
			}
			if r.Method == http.MethodDelete {
				if err := s.service.EndSession(r.Context(), sessionID); err != nil {
					status, code, message, details := mapError(err)
					writeError(w, status, code, message, details)
					return
				}
				writeJSON(w, http.StatusOK, map[string]any{"ok": true})
				return
			}
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
			return
		}

		s.handleSession(w, r, sessionID, parts[3:])
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

// handleSession dispatches sub-routes of /api/sessions/{id}. rest holds the
// path segments after the session id.
func (s *HTTPServer) handleSession(w http.ResponseWriter, r *http.Request, sessionID string, rest []string) {
	switch rest[0] {
	case "network-vp":
		if len(rest) == 1 && r.Method == http.MethodPost {
			var body struct {
				Statement string `json:"statement"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			s.apply(w, r, sessionID, func(doc *blueprint.Blueprint) {
				blueprint.SetNetworkVP(doc, body.Statement)
			})
			return
		}

	case "meta":
		if len(rest) == 1 && r.Method == http.MethodPost {
			var body struct {
				Name string `json:"name"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			s.apply(w, r, sessionID, func(doc *blueprint.Blueprint) {
				blueprint.SetMetaName(doc, body.Name)
			})
			return
		}

	case "actors":
		if len(rest) == 1 && r.Method == http.MethodPost {
			s.apply(w, r, sessionID, blueprint.AddActor)
			return
		}
		if len(rest) == 2 && r.Method == http.MethodDelete {
			actorID := rest[1]
			s.apply(w, r, sessionID, func(doc *blueprint.Blueprint) {
				blueprint.RemoveActor(doc, actorID)
			})
			return
		}
		if len(rest) >= 3 {
			s.handleActor(w, r, sessionID, rest[1], rest[2:])
			return
		}

	case "processes":
		if len(rest) == 1 && r.Method == http.MethodPost {
			s.apply(w, r, sessionID, blueprint.AddProcess)
			return
		}
		if len(rest) == 2 && r.Method == http.MethodPost {
			slot, ok := parseSlot(w, rest[1])
			if !ok {
				return
			}
			var body struct {
				Text string `json:"text"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			s.apply(w, r, sessionID, func(doc *blueprint.Blueprint) {
				blueprint.SetProcessSlot(doc, slot, body.Text)
			})
			return
		}

	case "save":
		if len(rest) == 1 && r.Method == http.MethodPost {
			payload, err := s.service.Save(r.Context(), sessionID)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, payload)
			return
		}

	case "discard":
		if len(rest) == 1 && r.Method == http.MethodPost {
			payload, err := s.service.Discard(r.Context(), sessionID)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, payload)
			return
		}

	case "reset":
		if len(rest) == 1 && r.Method == http.MethodPost {
			confirmed := r.URL.Query().Get("confirm") == "true"
			payload, err := s.service.Reset(r.Context(), sessionID, confirmed)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, payload)
			return
		}

	case "import":
		if len(rest) == 1 && r.Method == http.MethodPost {
			defer r.Body.Close()
			raw, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
			if err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", "could not read body", nil)
				return
			}
			payload, err := s.service.Import(r.Context(), sessionID, raw)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, payload)
			return
		}

	case "export":
		if len(rest) == 2 && r.Method == http.MethodGet {
			format := export.Format(rest[1])
			if format != export.FormatJSON && format != export.FormatPNG && format != export.FormatPDF {
				writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "format must be 'json', 'png' or 'pdf'", nil)
				return
			}
			source := export.SourceDraft
			if raw := strings.TrimSpace(r.URL.Query().Get("source")); raw != "" {
				source = export.Source(raw)
				if source != export.SourceDraft && source != export.SourceCommitted {
					writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "source must be 'draft' or 'committed'", nil)
					return
				}
			}
			result, err := s.service.Export(r.Context(), sessionID, source, format)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			w.Header().Set("Content-Disposition", "attachment; filename=\""+result.Filename+"\"")
			w.Header().Set("Content-Type", result.MimeType)
			w.Write(result.Data)
			return
		}
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

// handleActor dispatches sub-routes of /api/sessions/{id}/actors/{aid}. rest
// holds the path segments after the actor id.
func (s *HTTPServer) handleActor(w http.ResponseWriter, r *http.Request, sessionID, actorID string, rest []string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}

	switch rest[0] {
	case "name":
		if len(rest) == 1 {
			value, ok := decodeValue(w, r)
			if !ok {
				return
			}
			s.apply(w, r, sessionID, func(doc *blueprint.Blueprint) {
				blueprint.SetActorName(doc, actorID, value)
			})
			return
		}

	case "value-proposition":
		if len(rest) == 1 {
			value, ok := decodeValue(w, r)
			if !ok {
				return
			}
			s.apply(w, r, sessionID, func(doc *blueprint.Blueprint) {
				blueprint.SetActorVP(doc, actorID, value)
			})
			return
		}

	case "costs", "benefits":
		kind := blueprint.ListCosts
		if rest[0] == "benefits" {
			kind = blueprint.ListBenefits
		}
		if len(rest) < 2 {
			break
		}
		category, ok := parseCategory(w, rest[1])
		if !ok {
			return
		}
		if len(rest) == 2 {
			s.apply(w, r, sessionID, func(doc *blueprint.Blueprint) {
				blueprint.AddCostBenefitSlot(doc, actorID, kind, category)
			})
			return
		}
		if len(rest) == 3 {
			slot, ok := parseSlot(w, rest[2])
			if !ok {
				return
			}
			var body struct {
				Text string `json:"text"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			s.apply(w, r, sessionID, func(doc *blueprint.Blueprint) {
				blueprint.SetCostBenefitSlot(doc, actorID, kind, category, slot, body.Text)
			})
			return
		}

	case "kpis":
		if len(rest) == 1 {
			s.apply(w, r, sessionID, func(doc *blueprint.Blueprint) {
				blueprint.AddKPISlot(doc, actorID)
			})
			return
		}
		if len(rest) == 2 {
			slot, ok := parseSlot(w, rest[1])
			if !ok {
				return
			}
			var body struct {
				Text string `json:"text"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			s.apply(w, r, sessionID, func(doc *blueprint.Blueprint) {
				blueprint.SetKPISlot(doc, actorID, slot, body.Text)
			})
			return
		}

	case "services":
		if len(rest) == 1 {
			s.apply(w, r, sessionID, func(doc *blueprint.Blueprint) {
				blueprint.AddServiceSlot(doc, actorID)
			})
			return
		}
		if len(rest) == 2 {
			slot, ok := parseSlot(w, rest[1])
			if !ok {
				return
			}
			var body struct {
				Text string `json:"text"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			s.apply(w, r, sessionID, func(doc *blueprint.Blueprint) {
				blueprint.SetServiceSlot(doc, actorID, slot, body.Text)
			})
			return
		}
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

// apply runs one mutator through the service and writes the resulting
// workspace payload.
func (s *HTTPServer) apply(w http.ResponseWriter, r *http.Request, sessionID string, mutate func(*blueprint.Blueprint)) {
	payload, err := s.service.Apply(r.Context(), sessionID, mutate)
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func decodeValue(w http.ResponseWriter, r *http.Request) (string, bool) {
	var body struct {
		Value string `json:"value"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return "", false
	}
	return body.Value, true
}

func parseSlot(w http.ResponseWriter, raw string) (int, bool) {
	slot, err := strconv.Atoi(raw)
	if err != nil || slot < 0 {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "slot must be a non-negative integer", nil)
		return 0, false
	}
	return slot, true
}

func parseCategory(w http.ResponseWriter, raw string) (blueprint.Category, bool) {
	category := blueprint.Category(raw)
	for _, known := range blueprint.Categories {
		if category == known {
			return category, true
		}
	}
	writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "unknown category: "+raw, nil)
	return "", false
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	if errors.Is(err, session.ErrNotFound) {
		return http.StatusNotFound, "NOT_FOUND", "Session not found", nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}
