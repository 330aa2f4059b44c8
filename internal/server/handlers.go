package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/omiai/internal/artifact"
	"github.com/hyperjump/omiai/internal/classifier"
	"github.com/hyperjump/omiai/internal/models"
	"github.com/hyperjump/omiai/internal/recommend"
	"github.com/hyperjump/omiai/internal/storage"
	"github.com/hyperjump/omiai/internal/vectorize"
)

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var query models.RecommendQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("recommend request",
		zap.String("job_id", query.JobID),
		zap.Strings("skills", query.Skills),
		zap.Int("top_n", query.TopN),
	)
	response, err := s.engine.Recommend(r.Context(), &query)
	if err != nil {
		switch {
		case errors.Is(err, recommend.ErrUnknownJob):
			s.respondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, recommend.ErrInvalidFilter):
			s.respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, artifact.ErrNoArtifacts):
			s.respondError(w, http.StatusConflict, "no trained model available, run training first")
		default:
			s.logger.Error("recommend failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("train request")
	report, err := s.engine.Train(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, classifier.ErrInsufficientData), errors.Is(err, vectorize.ErrEmptyCorpus):
			s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			s.logger.Error("training failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleSearchJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit := s.config.Recommend.JobSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed < limit {
			limit = parsed
		}
	}
	s.logger.Debug("job search request", zap.String("q", query), zap.Int("limit", limit))
	results, err := s.jobIndex.Search(r.Context(), query, limit)
	if err != nil {
		s.logger.Error("job search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"results": results,
	})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	detail, err := s.engine.GetJob(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "job not found")
		return
	}
	s.respondJSON(w, http.StatusOK, detail)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobCount, err := s.storage.CountJobs(ctx)
	if err != nil {
		s.logger.Error("status: count jobs failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	applicantCount, err := s.storage.CountApplicants(ctx)
	if err != nil {
		s.logger.Error("status: count applicants failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	prospectCount, err := s.storage.CountProspects(ctx)
	if err != nil {
		s.logger.Error("status: count prospects failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := map[string]interface{}{
		"jobs":         jobCount,
		"applicants":   applicantCount,
		"prospects":    prospectCount,
		"model_loaded": s.engine.Loaded(),
	}
	if fp := s.engine.Fingerprint(); fp != "" {
		resp["model_fingerprint"] = fp
	}
	if s.jobIndex != nil {
		if indexed, err := s.jobIndex.Count(); err == nil {
			resp["indexed_jobs"] = indexed
		}
	}

	configInfo := map[string]interface{}{
		"vocabulary":     s.config.Vocabulary,
		"default_top_n":  s.config.Recommend.DefaultTopN,
		"max_applicants": s.config.Recommend.MaxApplicants,
		"database_path":  s.config.Storage.DatabasePath,
		"job_index_path": s.config.Storage.JobIndexPath,
		"artifact_dir":   s.config.Storage.ArtifactDir,
	}
	diskBytes, err := storage.DiskUsageBytes(
		s.config.Storage.DatabasePath,
		s.config.Storage.JobIndexPath,
		s.config.Storage.ArtifactDir,
	)
	if err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	resp["config"] = configInfo
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
