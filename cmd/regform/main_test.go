package main

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// syncCountingCore drops entries and counts flushes.
type syncCountingCore struct {
	zapcore.Core
	syncs *atomic.Int32
}

func (c syncCountingCore) With([]zapcore.Field) zapcore.Core { return c }

func (c syncCountingCore) Sync() error {
	c.syncs.Add(1)
	return nil
}

func useCountingLogger(t *testing.T) *atomic.Int32 {
	t.Helper()
	syncs := &atomic.Int32{}
	prev := buildLogger
	buildLogger = func(level, format string) (*zap.Logger, error) {
		return zap.New(syncCountingCore{Core: zapcore.NewNopCore(), syncs: syncs}), nil
	}
	t.Cleanup(func() {
		buildLogger = prev
		logger = nil
		runEngine = ""
	})
	t.Chdir(t.TempDir())
	return syncs
}

func TestRunFlushesLoggerOnFailure(t *testing.T) {
	syncs := useCountingLogger(t)

	code := run(context.Background(), []string{"run", "--engine", "bogus"})
	assert.Equal(t, 1, code)
	require.NotNil(t, logger, "Logger is built before the command fails")
	assert.Equal(t, int32(1), syncs.Load())
}

func TestRunFlushesLoggerOnSuccess(t *testing.T) {
	syncs := useCountingLogger(t)

	assert.Equal(t, 0, run(context.Background(), []string{"defects"}))
	assert.Equal(t, int32(1), syncs.Load())
}

func TestRunUnknownCommand(t *testing.T) {
	useCountingLogger(t)
	assert.Equal(t, 1, run(context.Background(), []string{"nope"}))
}
