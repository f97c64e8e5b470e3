package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/botflow"
	"github.com/aretw0/botflow/internal/logging"
	"github.com/aretw0/botflow/pkg/config"
	"github.com/spf13/viper"
)

// Open resolves the configuration held by v and wires a Bot from it.
// Logs go to stderr so stdout stays free for previews and graph output.
func Open(v *viper.Viper) (*botflow.Bot, *config.Config, *slog.Logger, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, nil, err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := logging.NewWithFormat(os.Stderr, level, cfg.LogFormat)

	bot, err := botflow.New(cfg, botflow.WithLogger(logger))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error initializing botflow: %w", err)
	}
	return bot, cfg, logger, nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
