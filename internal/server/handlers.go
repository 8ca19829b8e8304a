package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/harunnryd/studioport/internal/convert"
	spErrors "github.com/harunnryd/studioport/internal/errors"
	"github.com/harunnryd/studioport/internal/logger"
	"github.com/harunnryd/studioport/internal/output"
)

type paramsOverride struct {
	Temperature *float64 `json:"temperature"`
	TopP        *float64 `json:"top_p"`
	ToolChoice  *string  `json:"tool_choice"`
}

type convertRequest struct {
	Tools      json.RawMessage `json:"tools"`
	Transcript json.RawMessage `json:"transcript"`
	Params     *paramsOverride `json:"params"`
}

type convertResponse struct {
	Request      convert.Request `json:"request"`
	MessageCount int             `json:"message_count"`
	ToolCount    int             `json:"tool_count"`
	Curl         string          `json:"curl"`
	Script       string          `json:"script"`
}

type errorResponse struct {
	Error    string `json:"error"`
	Category string `json:"category"`
	TraceID  string `json:"trace_id"`
}

func (s *Server) resolveParams(override *paramsOverride) convert.Params {
	p := s.params
	if override == nil {
		return p
	}
	if override.Temperature != nil {
		p.Temperature = *override.Temperature
	}
	if override.TopP != nil {
		p.TopP = *override.TopP
	}
	if override.ToolChoice != nil {
		p.ToolChoice = *override.ToolChoice
	}
	return p
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	log := logger.From(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)

	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, http.StatusRequestEntityTooLarge,
				spErrors.InvalidInput(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)))
			return
		}
		s.writeError(w, r, 0, spErrors.InvalidInput(fmt.Sprintf("request body is not valid JSON (%v)", err)))
		return
	}

	res, err := convert.ConvertJSON(req.Tools, req.Transcript, s.resolveParams(req.Params), s.opts...)
	if err != nil {
		log.Warn("Conversion rejected", "category", spErrors.Category(err), "error", err)
		s.writeError(w, r, 0, err)
		return
	}

	artifacts, err := output.Build(s.factory, res)
	if err != nil {
		log.Error("Failed to render conversion", "error", err)
		s.writeError(w, r, 0, err)
		return
	}

	log.Info("Converted request", "messages", res.MessageCount, "tools", res.ToolCount)
	writeJSON(w, http.StatusOK, convertResponse{
		Request:      res.Request,
		MessageCount: res.MessageCount,
		ToolCount:    res.ToolCount,
		Curl:         artifacts.Curl,
		Script:       artifacts.Script,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	started := s.started
	startTime := s.startTime
	s.mu.RUnlock()

	resp := map[string]interface{}{
		"status": "ok",
	}
	if started {
		resp["uptime"] = time.Since(startTime).Round(time.Second).String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeError reports err as JSON. A zero status derives the code from the
// error category.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status == 0 {
		status = spErrors.HTTPStatus(err)
	}
	writeJSON(w, status, errorResponse{
		Error:    err.Error(),
		Category: spErrors.Category(err),
		TraceID:  logger.GetTraceID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		slog.Debug("Failed to write response", "error", err)
	}
}
