package logging

import (
	"os"

	"go.uber.org/zap/zapcore"
)

// NewMultiCore creates a core that tees console output with a rotated JSON file.
// The console is human-readable and colored in development, JSON otherwise.
// When filePath is empty only the console core is returned.
func NewMultiCore(level zapcore.Level, filePath string, isDev bool) (zapcore.Core, error) {
	if filePath == "" {
		return zapcore.NewCore(consoleEncoder(isDev), consoleSyncer(), level), nil
	}
	if err := ensureLogDir(filePath); err != nil {
		return nil, err
	}
	return NewMultiCoreWithWriters(level, consoleSyncer(), NewFileWriter(filePath), isDev), nil
}

// NewMultiCoreWithWriters tees two arbitrary writers. The file side is always JSON.
//
//	var buf bytes.Buffer
//	core := NewMultiCoreWithWriters(zapcore.DebugLevel, zapcore.AddSync(io.Discard), zapcore.AddSync(&buf), true)
func NewMultiCoreWithWriters(level zapcore.Level, consoleWriter, fileWriter zapcore.WriteSyncer, isDev bool) zapcore.Core {
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(NewEncoderConfig()), fileWriter, level)
	consoleCore := zapcore.NewCore(consoleEncoder(isDev), consoleWriter, level)
	return zapcore.NewTee(consoleCore, fileCore)
}

func consoleEncoder(isDev bool) zapcore.Encoder {
	if isDev {
		return zapcore.NewConsoleEncoder(NewConsoleEncoderConfig())
	}
	return zapcore.NewJSONEncoder(NewEncoderConfig())
}

// consoleSyncer wraps stdout so that Sync on a terminal does not report EINVAL.
func consoleSyncer() zapcore.WriteSyncer {
	return zapcore.AddSync(stdoutWriter{})
}

type stdoutWriter struct{}

func (stdoutWriter) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}
