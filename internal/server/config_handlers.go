package server

import (
	"errors"
	"net/http"

	"github.com/xaenox/chronex/pkg/config"
	"go.uber.org/zap"
)

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	ai, _ := s.Settings.AI()
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success":             true,
		"ai_provider":         ai.Provider,
		"use_real_ai":         ai.UseRealAI,
		"enable_vision":       ai.EnableVision,
		"available_providers": s.Gateway.Available(),
		"models": map[string]string{
			"openai":      ai.OpenAIModel,
			"huggingface": ai.HuggingFaceModel,
			"ollama":      ai.OllamaModel,
			"vision":      ai.VisionModel,
		},
		"settings": s.Settings.Snapshot(false),
	})
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var changes map[string]any
	if !s.decodeJSON(w, r, &changes) {
		return
	}

	applied, err := s.Settings.Update(changes)
	if errors.Is(err, config.ErrInvalidSetting) {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.internalError(w, "config update failed", err)
		return
	}

	keys := make([]string, 0, len(applied))
	for k := range applied {
		keys = append(keys, k)
	}
	s.logger.Info("Config updated", zap.Strings("keys", keys), zap.Uint64("version", s.Settings.Version()))

	s.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Configuration updated",
		"config":  s.Settings.Snapshot(false),
	})
}
