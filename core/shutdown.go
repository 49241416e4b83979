package core

import (
	"context"
)

// ShutdownFunc is a cleanup handler run during graceful shutdown.
// It must respect the context deadline and be safe to call more than once.
//
//	var closeStore ShutdownFunc = func(ctx context.Context) error {
//	    return store.Close()
//	}
type ShutdownFunc func(ctx context.Context) error

// CloserFunc adapts an io.Closer style Close method into a ShutdownFunc.
func CloserFunc(close func() error) ShutdownFunc {
	return func(ctx context.Context) error {
		return close()
	}
}
