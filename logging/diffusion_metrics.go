package logging

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DiffusionMetrics describes one pipeline run for structured logging.
//
//	logger.Info("diffusion complete", logging.DiffusionFields(metrics))
type DiffusionMetrics struct {
	Task          string
	Backend       string
	InputWidth    int
	InputHeight   int
	Width         int // Normalized width sent to the backend
	Height        int // Normalized height sent to the backend
	Steps         int
	Strength      float64
	GuidanceScale float64
	QueueWait     time.Duration // Time spent waiting for a slot
	Inference     time.Duration // Time spent inside the backend
	Total         time.Duration
}

// MarshalLogObject implements zapcore.ObjectMarshaler. Durations are in milliseconds.
func (m DiffusionMetrics) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("task", m.Task)
	enc.AddString("backend", m.Backend)
	enc.AddInt("input_width", m.InputWidth)
	enc.AddInt("input_height", m.InputHeight)
	enc.AddInt("width", m.Width)
	enc.AddInt("height", m.Height)
	enc.AddInt("steps", m.Steps)
	enc.AddFloat64("strength", m.Strength)
	enc.AddFloat64("guidance_scale", m.GuidanceScale)
	enc.AddInt64("queue_wait_ms", m.QueueWait.Milliseconds())
	enc.AddInt64("inference_ms", m.Inference.Milliseconds())
	enc.AddInt64("total_ms", m.Total.Milliseconds())
	return nil
}

// DiffusionFields wraps metrics as a single nested "diffusion" field.
func DiffusionFields(m DiffusionMetrics) zap.Field {
	return zap.Object("diffusion", m)
}

// SizeFields returns width/height fields for quick image size logging.
func SizeFields(prefix string, width, height int) []zap.Field {
	return []zap.Field{
		zap.Int(prefix+"_width", width),
		zap.Int(prefix+"_height", height),
	}
}
