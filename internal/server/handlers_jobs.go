package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/sketch-animator/internal/db"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// sniffExtension maps the detected content type of an upload to the stored
// file extension. Only sketch formats are accepted.
var sniffExtension = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// handleCreateJob accepts a multipart sketch upload, stores the input blob,
// records a pending job and hands it to the dispatcher.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	filename, data, err := s.readUpload(w, r)
	if err != nil {
		s.errorResponse(w, httpStatus(err), err.Error())
		return
	}

	contentType := http.DetectContentType(data)
	ext, ok := sniffExtension[contentType]
	if !ok {
		err := &UnsupportedMediaTypeError{Detected: contentType}
		s.errorResponse(w, err.HTTPStatus(), err.Error())
		return
	}

	id := uuid.New()
	inputKey := fmt.Sprintf("uploads/%s%s", id, ext)
	if err := s.blobs.Put(r.Context(), inputKey, data, contentType); err != nil {
		s.logger.Error("storing upload", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	job, err := s.store.CreateJob(r.Context(), id, filename, inputKey)
	if err != nil {
		s.logger.Error("creating job", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	if err := s.queue.Enqueue(job.ID); err != nil {
		s.logger.Warn("enqueue failed, job stays pending",
			zap.String("job_id", job.ID.String()), zap.Error(err))
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]any{
			"error": "job created but could not be scheduled, retry later",
			"job":   job,
		})
		return
	}

	s.jsonResponse(w, http.StatusCreated, job)
}

// readUpload extracts and size-checks the multipart file field.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	if r.ContentLength > s.maxUpload {
		return "", nil, &UploadTooLargeError{LimitBytes: s.maxUpload}
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", nil, &UploadTooLargeError{LimitBytes: s.maxUpload}
		}
		return "", nil, &MissingFileError{}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, &MissingFileError{}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > s.maxUpload {
		return "", nil, &UploadTooLargeError{LimitBytes: s.maxUpload}
	}
	return header.Filename, data, nil
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid job id")
		return
	}

	job, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		s.logger.Error("getting job", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to get job")
		return
	}
	if job == nil {
		s.errorResponse(w, http.StatusNotFound, "job not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", defaultPageSize)
	if offset < 0 {
		offset = 0
	}
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}

	jobs, total, err := s.store.ListJobs(r.Context(), offset, limit)
	if err != nil {
		s.logger.Error("listing jobs", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"jobs":   jobs,
		"total":  total,
		"offset": offset,
		"limit":  limit,
	})
}

// handleGetResult returns a presigned download URL for a completed job's video.
func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid job id")
		return
	}

	job, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		s.logger.Error("getting job", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to get job")
		return
	}
	if job == nil {
		s.errorResponse(w, http.StatusNotFound, "job not found")
		return
	}
	if job.Status != db.StatusCompleted || job.OutputKey == nil {
		s.errorResponse(w, http.StatusConflict,
			fmt.Sprintf("job is %s, result is only available for completed jobs", job.Status))
		return
	}

	url, err := s.blobs.URLFor(r.Context(), *job.OutputKey, resultURLTTL)
	if err != nil {
		s.logger.Error("presigning result", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to generate result URL")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"url":                url,
		"expires_in_seconds": int(resultURLTTL.Seconds()),
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
