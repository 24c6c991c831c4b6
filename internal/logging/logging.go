package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"mafia-table/internal/config"
)

var writer io.Writer = os.Stdout

// Writer returns the sink Init configured, so request loggers built on
// other logging stacks share the same destination.
func Writer() io.Writer { return writer }

// Init configures the global zerolog logger. With LOG_FILE set the
// output goes to a size-capped file so long-running games cannot fill
// the disk; otherwise to stdout, optionally pretty-printed.
func Init(cfg config.LogConfig) error {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var output io.Writer = os.Stdout
	switch {
	case strings.TrimSpace(cfg.File) != "":
		w, err := newSizeLimitedWriter(cfg.File, cfg.MaxMB)
		if err != nil {
			return err
		}
		output = w
	case cfg.Pretty:
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	writer = output
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
	return nil
}
