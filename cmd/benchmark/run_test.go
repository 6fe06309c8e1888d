package benchmark

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Manu343726/rvbench/pkg/bench"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPort struct {
	io.Reader
	closed int
}

func (p *recordingPort) Close() error {
	p.closed++
	return nil
}

func quietConfig() bench.Config {
	return bench.Config{ClockHz: 1e8, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestMeasure_ClosesPort(t *testing.T) {
	t.Run("finished run", func(t *testing.T) {
		port := &recordingPort{Reader: bytes.NewReader([]byte{bench.CycleReportByte, '\n', 'G', 'o', 'o', 'd', 'b', 'y', 'e', '!', '\n'})}

		result, err := measure(context.Background(), port, quietConfig(), 0)
		require.NoError(t, err)
		assert.Equal(t, bench.ModeCycleCounter, result.Mode)
		assert.Equal(t, 1, port.closed)
	})

	t.Run("failed run", func(t *testing.T) {
		port := &recordingPort{Reader: bytes.NewReader([]byte{bench.StartByte})}

		_, err := measure(context.Background(), port, quietConfig(), time.Second)
		assert.ErrorIs(t, err, bench.ErrStreamClosed)
		assert.Equal(t, 1, port.closed)
	})
}
