package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/xaenox/chronex/internal/assistant"
	"github.com/xaenox/chronex/internal/models"
	"github.com/xaenox/chronex/internal/responder"
	"go.uber.org/zap"
)

const (
	maxJSONBody         = 1 << 20
	defaultHistoryLimit = 10
)

var capabilityFlags = []string{"chat", "code_analysis", "language_support", "math_solving", "data_analysis", "image_analysis"}

type chatRequest struct {
	Message string        `json:"message"`
	History []models.Turn `json:"history"`
}

type messageRequest struct {
	Message string `json:"message"`
}

type codeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

type mathRequest struct {
	Problem string `json:"problem"`
}

type storeRequest struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	s.respondError(w, http.StatusBadRequest, "invalid request body")
	return false
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	result, err := s.Assistant.Chat(r.Context(), req.Message, req.History)
	if errors.Is(err, assistant.ErrEmptyMessage) {
		s.respondError(w, http.StatusBadRequest, "No message provided")
		return
	}
	if err != nil {
		s.internalError(w, "chat failed", err)
		return
	}

	s.respondJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		assistant.ChatResult
	}{true, result})
}

func (s *Server) handleAnalyzeCode(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Language == "" {
		req.Language = "unknown"
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"analysis": s.Assistant.AnalyzeCode(req.Language, req.Code),
		"language": req.Language,
	})
}

func (s *Server) handleSolveMath(w http.ResponseWriter, r *http.Request) {
	var req mathRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"solution": s.Assistant.SolveMath(req.Problem),
	})
}

func (s *Server) handleFamily(family responder.Family, kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req messageRequest
		if !s.decodeJSON(w, r, &req) {
			return
		}

		s.respondJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"response": s.Assistant.Respond(r.Context(), family, req.Message),
			"type":     kind,
		})
	}
}

// handleReset exists for older clients. History lives with the caller, so
// there is nothing to clear.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Conversation history cleared",
	})
}

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"capabilities": map[string]any{
			"general":             []string{"chat", "code analysis", "math solving", "question answering"},
			"advanced":            []string{"system architecture", "devops", "infrastructure"},
			"data_science":        []string{"data analysis", "machine learning", "predictive analytics"},
			"web_dev":             []string{"web development", "performance optimization", "security"},
			"images":              []string{"upload", "basic analysis", "vision questions"},
			"supported_languages": assistant.SupportedLanguages,
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"status":       "healthy",
		"uptime":       s.Assistant.Uptime().Round(time.Second).String(),
		"model":        assistant.ModelName,
		"capabilities": capabilityFlags,
		"version":      assistant.Version,
		"provider":     s.Gateway.Status(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"status":       "online",
		"model":        assistant.ModelName,
		"version":      assistant.Version,
		"capabilities": capabilityFlags,
	})
}

func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	ai, _ := s.Settings.AI()
	info := s.Library.Info()
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"model_name": assistant.ModelName,
		"model_config": map[string]any{
			"name":        assistant.ModelName,
			"provider":    s.Gateway.Status().Active,
			"temperature": ai.Temperature,
			"max_tokens":  ai.MaxTokens,
		},
		"creator": info.PrimaryCreator,
		"version": assistant.Version,
	})
}

func (s *Server) handleCreator(w http.ResponseWriter, r *http.Request) {
	info := s.Library.Info()
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"primary_creator":   info.PrimaryCreator,
		"secondary_creator": info.SecondaryCreator,
		"role":              "Developer",
		"system":            info.System,
		"version":           info.Version,
	})
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	status := s.Gateway.Status()
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success":             true,
		"available_providers": s.Gateway.Available(),
		"current_provider":    status.Configured,
		"active_provider":     status.Active,
	})
}

func (s *Server) handleCreatorInfo(w http.ResponseWriter, r *http.Request) {
	info := s.Library.Info()
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"creator_info": info,
		"primary":      info.PrimaryCreator,
		"secondary":    info.SecondaryCreator,
	})
}

func (s *Server) handleLibraryExport(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"library": s.Library.Export(),
	})
}

func (s *Server) handleQueryHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"total_queries":  s.Library.TotalQueries(),
		"recent_queries": s.Library.RecentHistory(limit),
	})
}

func (s *Server) handleLibraryStore(w http.ResponseWriter, r *http.Request) {
	var req storeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Key == "" || isBlank(req.Value) {
		s.respondError(w, http.StatusBadRequest, "Key and value required")
		return
	}

	stored := s.Library.Put(r.Context(), req.Key, req.Value)
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"message":      fmt.Sprintf("Stored '%s' in creator library", req.Key),
		"stored_items": stored,
	})
}

// isBlank reports a missing value or an empty string.
func isBlank(v any) bool {
	if v == nil {
		return true
	}
	text, ok := v.(string)
	return ok && text == ""
}

func (s *Server) handleLibraryRetrieve(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	value, ok := s.Library.Get(key)
	if !ok {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("No information found for key '%s'", key))
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"key":     key,
		"data":    value,
	})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	s.Library.Clear(r.Context())
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Query history cleared",
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// internalError logs err and answers 500. The error text is only exposed
// in debug mode.
func (s *Server) internalError(w http.ResponseWriter, msg string, err error) {
	s.logger.Error(msg, zap.Error(err))
	if s.config.Debug {
		s.respondError(w, http.StatusInternalServerError, msg+": "+err.Error())
		return
	}
	s.respondError(w, http.StatusInternalServerError, "internal server error")
}
