package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bryanchriswhite/regionshot/internal/capture"
	"github.com/bryanchriswhite/regionshot/internal/config"
	"github.com/bryanchriswhite/regionshot/internal/display"
	"github.com/bryanchriswhite/regionshot/internal/logger"
	"github.com/bryanchriswhite/regionshot/internal/monitor"
	"github.com/bryanchriswhite/regionshot/internal/output"
	"github.com/bryanchriswhite/regionshot/internal/overlay"
	"github.com/bryanchriswhite/regionshot/internal/selection"
	"github.com/bryanchriswhite/regionshot/internal/session"
	"github.com/spf13/cobra"
)

func runCapture(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg := configMgr.Get()
	initLogging(cfg)
	log := logger.WithComponent("cli")

	sinks, err := buildSinks(cfg, savePath)
	if err != nil {
		return err
	}
	opts, err := selectionOptions(cfg)
	if err != nil {
		return err
	}
	style, err := overlayStyle(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	disp, err := display.Open()
	if err != nil {
		return err
	}
	defer disp.Close()

	reg, err := monitor.Load(disp)
	if err != nil {
		return err
	}

	router, err := capture.NewRouter(cfg.Capture.Backend, cfg.Capture.PortalTimeout)
	if err != nil {
		return err
	}
	if err := router.Start(); err != nil {
		return err
	}
	defer router.Stop()

	composite, err := router.Populate(reg)
	if err != nil {
		return err
	}

	sess, err := session.New(reg, composite, opts)
	if err != nil {
		return err
	}

	ov, err := disp.NewOverlay(reg, overlay.NewRenderer(style))
	if err != nil {
		return fmt.Errorf("failed to open overlay: %w", err)
	}
	exit, err := sess.Run(ctx, ov, ov)
	ov.Close()
	if err != nil {
		return err
	}

	if exit.Kind != selection.ExitWithSelection {
		log.Info().Msg("Selection cancelled")
		return nil
	}

	res, err := sess.Crop(exit)
	if err != nil {
		return err
	}
	log.Info().
		Str("selection", exit.Selection.String()).
		Str("source", res.Source.String()).
		Str("pixels", res.Pixels.String()).
		Msg("Selection captured")

	if err := output.WriteAll(res.Image, sinks...); err != nil {
		return err
	}
	return output.WaitAll(sinks...)
}

// buildSinks turns the output settings into sinks. At least one destination
// is required.
func buildSinks(cfg *config.Config, path string) ([]output.Sink, error) {
	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}

	var sinks []output.Sink
	if path != "" || cfg.Output.SaveDir != "" {
		sinks = append(sinks, &output.FileSink{
			Path:     path,
			Dir:      cfg.Output.SaveDir,
			Template: cfg.Output.FilenameTemplate,
			Format:   format,
		})
	}
	if cfg.Output.Stdout {
		sinks = append(sinks, &output.StdoutSink{W: os.Stdout})
	}
	if cfg.Output.Copy {
		mode, err := output.ParseClipboardMode(cfg.Output.ClipboardMode)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, output.NewClipboardSink(mode, cfg.Output.ClipboardTimeout))
	}

	if len(sinks) == 0 {
		return nil, fmt.Errorf("nothing to do: pass --save-path, --save-dir, --stdout or --copy")
	}
	return sinks, nil
}

func selectionOptions(cfg *config.Config) (selection.Options, error) {
	policy, err := selection.ParseZeroAreaPolicy(cfg.Selection.ZeroArea)
	if err != nil {
		return selection.Options{}, err
	}
	keys, unknown := display.KeysymsFor(cfg.Selection.CancelKeys)
	if len(unknown) > 0 {
		return selection.Options{}, fmt.Errorf("unknown cancel keys: %v", unknown)
	}
	return selection.Options{ZeroArea: policy, CancelKeys: keys}, nil
}

func overlayStyle(cfg *config.Config) (overlay.Style, error) {
	border, err := config.ParseColor(cfg.Overlay.BorderColor)
	if err != nil {
		return overlay.Style{}, err
	}
	style := overlay.DefaultStyle()
	style.DimAlpha = uint8(cfg.Overlay.DimAlpha)
	style.Border = border
	style.ShowSize = cfg.Overlay.ShowSize
	return style, nil
}
