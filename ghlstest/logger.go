// Copyright © 2024 The GHLS authors

// Package ghlstest contains helpers shared by the tests of ghls packages.
package ghlstest

import (
	"bytes"
	"io"
	"sync"
	"testing"

	"github.com/tliron/commonlog"
	"github.com/tliron/commonlog/simple"
)

// Logger is an io.Writer that forwards complete lines to t.Log.
type Logger struct {
	mu  sync.Mutex
	t   testing.TB
	buf []byte
}

var _ io.Writer = (*Logger)(nil)

func NewLogger(t testing.TB) *Logger {
	return &Logger{
		t: t,
	}
}

func (log *Logger) Write(b []byte) (int, error) {
	log.mu.Lock()
	defer log.mu.Unlock()
	log.buf = append(log.buf, b...)
	for {
		i := bytes.IndexByte(log.buf, '\n')
		if i < 0 {
			return len(b), nil
		}
		log.t.Log(string(log.buf[:i])) // slice does not include \n
		log.buf = log.buf[i+1:]
	}
}

func (log *Logger) Flush() {
	log.mu.Lock()
	defer log.mu.Unlock()
	if len(log.buf) == 0 {
		return
	}
	log.t.Log(string(log.buf))
	log.buf = nil
}

// UseLogger routes all commonlog output at debug level to t for the
// duration of the test. Logging is disabled again on cleanup, so callers
// must not leave goroutines running that log after the test returns.
func UseLogger(t testing.TB) *Logger {
	logger := NewLogger(t)
	backend := simple.NewBackend()
	backend.Buffered = false
	backend.Writer = logger
	backend.SetMaxLevel(commonlog.Debug)
	commonlog.SetBackend(backend)
	t.Cleanup(func() {
		logger.Flush()
		commonlog.SetBackend(nil)
	})
	return logger
}
