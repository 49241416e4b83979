package webui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"paintserver/archive"
	"paintserver/db"
	"paintserver/logging"
	"paintserver/metrics"
	"paintserver/processing"
	"paintserver/sdruntime"
	"paintserver/vision"
)

// multipartMemory is how much of a form is held in memory before spilling
// to temp files.
const multipartMemory = 8 << 20

func newJobID() string {
	return uuid.NewString()
}

// processRequest is a validated /process upload.
type processRequest struct {
	task   processing.Task
	image  image.Image
	mask   image.Image
	params *processing.RawParams
	prompt string
}

// handleProcess runs one task on the uploaded image and answers with the
// result PNG. Form fields: image (file), mask (file, inpainting), task, params.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	req, status, msg := s.parseProcessRequest(w, r)
	if status != 0 {
		writeJSONError(w, status, msg)
		return
	}

	jobID := s.newJobID()
	logger := s.logger.With(zap.String("job_id", jobID), zap.String("task", req.task.String()))

	ctx, cancel := context.WithTimeout(r.Context(), s.config.RequestTimeout)
	defer cancel()
	ctx = sdruntime.WithDebugTag(ctx, jobID)

	start := time.Now()
	var result *sdruntime.Result
	run := func(ctx context.Context) error {
		var err error
		result, err = s.deps.Processor.Process(ctx, req.task, req.image, req.mask, req.params)
		return err
	}
	var err error
	if s.deps.Operations != nil {
		err = s.deps.Operations.WrapOperation(ctx, "process", run)
	} else {
		err = run(ctx)
	}

	job := db.Job{
		ID:          jobID,
		Task:        req.task.String(),
		Prompt:      req.prompt,
		InputWidth:  req.image.Bounds().Dx(),
		InputHeight: req.image.Bounds().Dy(),
		DurationMS:  time.Since(start).Milliseconds(),
		CreatedAt:   start,
	}

	if err != nil {
		status, msg := errorStatus(err)
		logger.Warn("Processing failed", zap.Int("status", status), zap.Error(err))
		job.Status = db.StatusError
		job.ErrorMessage = err.Error()
		s.record(logger, job, nil)
		writeJSONError(w, status, msg)
		return
	}

	data, err := vision.PNGBytes(result.Image)
	if err != nil {
		logger.Error("Failed to encode result", zap.Error(err))
		job.Status = db.StatusError
		job.ErrorMessage = err.Error()
		s.record(logger, job, nil)
		writeJSONError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	job.Status = db.StatusSuccess
	job.Backend = result.Backend
	job.OutputWidth = result.Image.Bounds().Dx()
	job.OutputHeight = result.Image.Bounds().Dy()
	job.Steps = result.Steps
	job.ArchiveKey = s.archiveResult(logger, job.Task, jobID, data)
	s.record(logger, job, result)

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Job-ID", jobID)
	w.Header().Set("X-Seed", strconv.FormatInt(result.Seed, 10))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.Debug("Client went away before the result was written", zap.Error(err))
	}
}

// parseProcessRequest returns a non-zero status when the upload is unusable.
func (s *Server) parseProcessRequest(w http.ResponseWriter, r *http.Request) (*processRequest, int, string) {
	if r.ContentLength > s.config.MaxUploadBytes {
		return nil, http.StatusRequestEntityTooLarge, fmt.Sprintf("Upload exceeds %d bytes", s.config.MaxUploadBytes)
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, fmt.Sprintf("Upload exceeds %d bytes", tooLarge.Limit)
		}
		return nil, http.StatusBadRequest, "Invalid form data"
	}

	imgData, ok, err := formFile(r, "image")
	if err != nil || !ok {
		return nil, http.StatusBadRequest, msgNoImage
	}
	img, err := vision.DecodeImage(imgData)
	if err != nil {
		return nil, http.StatusBadRequest, "Invalid image: " + err.Error()
	}

	task, err := processing.ParseTask(r.FormValue("task"))
	if err != nil {
		return nil, http.StatusBadRequest, msgInvalidTask
	}

	params, err := processing.ParseParams([]byte(r.FormValue("params")))
	if err != nil {
		return nil, http.StatusBadRequest, err.Error()
	}

	req := &processRequest{task: task, image: img, params: params}
	if params.Prompt != nil {
		req.prompt = *params.Prompt
	}

	maskData, ok, err := formFile(r, "mask")
	if err != nil {
		return nil, http.StatusBadRequest, "Invalid mask upload"
	}
	if ok {
		mask, err := vision.DecodeImage(maskData)
		if err != nil {
			return nil, http.StatusBadRequest, "Invalid mask: " + err.Error()
		}
		req.mask = mask
	}
	return req, 0, ""
}

// formFile reads a multipart file field. ok is false when it was not sent.
func formFile(r *http.Request, field string) ([]byte, bool, error) {
	if r.MultipartForm == nil {
		return nil, false, nil
	}
	file, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer func(f multipart.File) { _ = f.Close() }(file)
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// archiveResult uploads data when an archive is configured. Upload failures
// are logged and leave the key empty.
func (s *Server) archiveResult(logger *logging.Logger, task, jobID string, data []byte) string {
	if s.deps.Archive == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.archiveWait)
	defer cancel()
	key, err := s.deps.Archive.SavePNG(ctx, archive.Key(task, jobID), data)
	if err != nil {
		logger.Warn("Archive upload failed", zap.Error(err))
		return ""
	}
	return key
}

// record feeds the finished job to the stats store and the job store, when
// configured. result is nil for failed jobs.
func (s *Server) record(logger *logging.Logger, job db.Job, result *sdruntime.Result) {
	if s.deps.Stats != nil {
		rec := metrics.TaskRecord{
			ID:        job.ID,
			Task:      job.Task,
			Status:    metrics.TaskStatusSuccess,
			Backend:   job.Backend,
			StartTime: job.CreatedAt,
			Duration:  time.Duration(job.DurationMS) * time.Millisecond,
			ErrorMsg:  job.ErrorMessage,
		}
		if job.Status == db.StatusError {
			rec.Status = metrics.TaskStatusError
		}
		if result != nil {
			rec.QueueWait = result.QueueWait
			rec.Inference = result.Inference
		}
		s.deps.Stats.RecordTask(rec)
	}

	if s.deps.Jobs == nil {
		return
	}
	if _, err := s.deps.Jobs.InsertJob(context.Background(), job); err != nil {
		logger.Warn("Failed to record job", zap.Error(err))
	}
}
