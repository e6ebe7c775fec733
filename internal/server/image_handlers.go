package server

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/xaenox/chronex/internal/images"
	"go.uber.org/zap"
)

const (
	multipartOverhead = 1 << 20
	basicNote         = "For advanced AI analysis, set up an OpenAI API key and enable vision"
)

type analyzeImageRequest struct {
	Filepath string `json:"filepath"`
	UseAI    *bool  `json:"use_ai"`
}

type visionRequest struct {
	Filepath string `json:"filepath"`
	Question string `json:"question"`
}

// imagePart finds the "image" field of a multipart upload.
func imagePart(r *http.Request) (*multipart.Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}
	for {
		part, err := mr.NextPart()
		if err != nil {
			return nil, err
		}
		if part.FormName() == "image" {
			return part, nil
		}
		part.Close()
	}
}

// receiveImage stores the uploaded image and writes the error response
// itself when that fails.
func (s *Server) receiveImage(w http.ResponseWriter, r *http.Request) (string, images.Info, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.Images.MaxSize()+multipartOverhead)

	part, err := imagePart(r)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.respondError(w, http.StatusBadRequest, images.TooLarge(s.Images.MaxSize()).Error())
			return "", images.Info{}, false
		}
		s.respondError(w, http.StatusBadRequest, "No image file provided")
		return "", images.Info{}, false
	}
	defer part.Close()

	name := part.FileName()
	info, err := s.Images.Save(name, part)
	if err != nil {
		var verr *images.ValidationError
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &verr):
			s.respondError(w, http.StatusBadRequest, verr.Message)
		case errors.As(err, &tooBig):
			s.respondError(w, http.StatusBadRequest, images.TooLarge(s.Images.MaxSize()).Error())
		default:
			s.internalError(w, "image upload failed", err)
		}
		return "", images.Info{}, false
	}

	s.logger.Info("Image uploaded", zap.String("filename", name), zap.String("stored_as", info.Filename))
	return name, info, true
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	name, info, ok := s.receiveImage(w, r)
	if !ok {
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Image uploaded successfully",
		"filename":  name,
		"stored_as": info.Filename,
		"filepath":  info.Filepath,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleAnalyzeImage(w http.ResponseWriter, r *http.Request) {
	var req analyzeImageRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	useAI := req.UseAI == nil || *req.UseAI

	analysis, err := s.Images.Analyze(r.Context(), req.Filepath, useAI)
	if errors.Is(err, images.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "Image file not found")
		return
	}
	if err != nil {
		s.logger.Error("image analysis failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "Could not analyze image")
		return
	}

	resp := map[string]any{
		"success":  true,
		"analysis": analysis.Text,
		"method":   analysis.Method,
		"filepath": req.Filepath,
	}
	if analysis.Metadata != nil {
		resp["metadata"] = analysis.Metadata
		resp["note"] = basicNote
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleScanImage(w http.ResponseWriter, r *http.Request) {
	name, info, ok := s.receiveImage(w, r)
	if !ok {
		return
	}

	resp := map[string]any{
		"success":         true,
		"message":         "Image scanned and analyzed",
		"filename":        name,
		"stored_as":       info.Filename,
		"filepath":        info.Filepath,
		"analysis":        nil,
		"analysis_method": "None",
		"timestamp":       time.Now().Format(time.RFC3339),
	}

	analysis, err := s.Images.Analyze(r.Context(), info.Filepath, true)
	if err != nil {
		s.logger.Warn("scanned image could not be analyzed", zap.String("filepath", info.Filepath), zap.Error(err))
	} else {
		resp["analysis"] = analysis.Text
		resp["analysis_method"] = analysis.Method
		if analysis.Metadata != nil {
			resp["metadata"] = analysis.Metadata
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleImageVision(w http.ResponseWriter, r *http.Request) {
	var req visionRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	question := req.Question
	if question == "" {
		question = images.DefaultQuestion
	}

	answer, err := s.Images.Ask(r.Context(), req.Filepath, question)
	if errors.Is(err, images.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "Image file not found")
		return
	}
	if err != nil {
		s.logger.Error("vision request failed", zap.Error(err))
		msg := "Vision API unavailable"
		if s.config.Debug {
			msg = fmt.Sprintf("Vision API error: %v", err)
		}
		s.respondError(w, http.StatusServiceUnavailable, msg)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"question": question,
		"response": answer,
		"filepath": req.Filepath,
	})
}

func (s *Server) handleImageList(w http.ResponseWriter, r *http.Request) {
	list, err := s.Images.List()
	if err != nil {
		s.internalError(w, "image list failed", err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"total_images": len(list),
		"images":       list,
	})
}

func (s *Server) handleImageDelete(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	err := s.Images.Delete(filename)
	if errors.Is(err, images.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "Image not found")
		return
	}
	if err != nil {
		s.internalError(w, "image delete failed", err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Image '%s' deleted", filename),
	})
}
