package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"orevein/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	writerMu sync.RWMutex
	writer   io.Writer = os.Stdout
)

// Init configures the global zerolog logger. When cfg.File is set, logs go to
// a size-capped file instead of stdout; Writer() exposes the same sink for the
// HTTP request logger.
func Init(cfg config.LogConfig) {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stdout
	if cfg.File != "" {
		if fw, err := newCappedFileWriter(cfg.File, cfg.MaxMB); err == nil {
			out = fw
		}
	}
	setWriter(out)

	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}
	logger := zerolog.New(out).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
}

// Writer returns the raw log sink (pre-pretty), for handlers that need an
// io.Writer such as the httplog slog backend.
func Writer() io.Writer {
	writerMu.RLock()
	defer writerMu.RUnlock()
	return writer
}

func setWriter(w io.Writer) {
	writerMu.Lock()
	defer writerMu.Unlock()
	writer = w
}
