package commands

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanchriswhite/regionshot/internal/logger"
	"github.com/bryanchriswhite/regionshot/internal/output"
	"github.com/spf13/cobra"
)

var clipboardServeCmd = &cobra.Command{
	Use:    output.ServeCommand,
	Short:  "Serve PNG data from stdin on the clipboard",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE:   runClipboardServe,
}

var clipboardServeTimeout time.Duration

func init() {
	rootCmd.AddCommand(clipboardServeCmd)

	clipboardServeCmd.Flags().DurationVar(&clipboardServeTimeout, "timeout", 10*time.Minute, "stop serving after this long (0 serves until replaced)")
}

func runClipboardServe(cmd *cobra.Command, args []string) error {
	if configMgr, err := loadConfig(cmd); err == nil {
		initLogging(configMgr.Get())
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read clipboard data: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("no clipboard data on stdin")
	}

	// The parent terminal may close at any time
	signal.Ignore(syscall.SIGHUP)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.WithComponent("clipboard").Debug().Int("bytes", len(data)).Msg("Clipboard server started")
	return output.NewClipboardServer().Serve(ctx, data, clipboardServeTimeout)
}
