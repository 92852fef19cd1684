package output

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"time"

	"github.com/bryanchriswhite/regionshot/internal/logger"
	"golang.design/x/clipboard"
)

// ClipboardMode selects how the clipboard is served after the capture
type ClipboardMode string

const (
	// ClipboardDetach hands the image to a background process and returns
	ClipboardDetach ClipboardMode = "detach"
	// ClipboardWait serves from this process until Wait returns
	ClipboardWait ClipboardMode = "wait"
)

// ServeCommand is the hidden subcommand a detached clipboard owner runs
const ServeCommand = "clipboard-serve"

// ParseClipboardMode validates a clipboard mode name
func ParseClipboardMode(s string) (ClipboardMode, error) {
	switch ClipboardMode(s) {
	case "", ClipboardDetach:
		return ClipboardDetach, nil
	case ClipboardWait:
		return ClipboardWait, nil
	}
	return "", fmt.Errorf("unknown clipboard mode %q", s)
}

// ClipboardSink publishes the capture as a PNG on the clipboard. X11
// clipboards are served by their owner, so ownership is handed to a detached
// subprocess or to a worker goroutine that outlives Write.
type ClipboardSink struct {
	Mode    ClipboardMode
	Timeout time.Duration

	server  *ClipboardServer
	command func(timeout time.Duration) (*exec.Cmd, error)
	done    chan error
}

// NewClipboardSink creates a clipboard sink backed by the system clipboard
func NewClipboardSink(mode ClipboardMode, timeout time.Duration) *ClipboardSink {
	return &ClipboardSink{
		Mode:    mode,
		Timeout: timeout,
		server:  NewClipboardServer(),
		command: serveCommand,
	}
}

// Name returns the sink name
func (s *ClipboardSink) Name() string {
	return "clipboard"
}

// Write encodes img and hands it off to the clipboard owner
func (s *ClipboardSink) Write(img *image.RGBA) error {
	var buf bytes.Buffer
	if err := Encode(&buf, img, FormatPNG); err != nil {
		return err
	}

	if s.Mode == ClipboardWait {
		data := buf.Bytes()
		s.done = make(chan error, 1)
		go func() {
			s.done <- s.server.Serve(context.Background(), data, s.Timeout)
		}()
		return nil
	}

	return s.detach(buf.Bytes())
}

// Wait blocks until an in-process clipboard owner gives up ownership
func (s *ClipboardSink) Wait() error {
	if s.done == nil {
		return nil
	}
	return <-s.done
}

func (s *ClipboardSink) detach(data []byte) error {
	cmd, err := s.command(s.Timeout)
	if err != nil {
		return err
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to open clipboard server stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start clipboard server: %w", err)
	}

	if _, err := stdin.Write(data); err != nil {
		stdin.Close()
		cmd.Process.Kill()
		return fmt.Errorf("failed to hand off clipboard data: %w", err)
	}
	if err := stdin.Close(); err != nil {
		return fmt.Errorf("failed to hand off clipboard data: %w", err)
	}

	logger.WithComponent("clipboard").Debug().
		Int("pid", cmd.Process.Pid).
		Int("bytes", len(data)).
		Msg("Clipboard handed to background server")

	return cmd.Process.Release()
}

func serveCommand(timeout time.Duration) (*exec.Cmd, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate executable: %w", err)
	}
	cmd := exec.Command(exe, ServeCommand, "--timeout", timeout.String())
	detachProcess(cmd)
	return cmd, nil
}

// ClipboardWriter takes clipboard ownership of PNG data and returns a channel
// closed when another client replaces it
type ClipboardWriter func(png []byte) (<-chan struct{}, error)

// ClipboardServer holds clipboard ownership for one image
type ClipboardServer struct {
	write ClipboardWriter
}

// NewClipboardServer creates a server for the system clipboard
func NewClipboardServer() *ClipboardServer {
	return &ClipboardServer{write: systemClipboard}
}

func systemClipboard(png []byte) (<-chan struct{}, error) {
	if err := clipboard.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize clipboard: %w", err)
	}
	return clipboard.Write(clipboard.FmtImage, png), nil
}

// Serve publishes png and blocks until the clipboard is replaced, the timeout
// elapses, or ctx is done. A zero timeout serves until replaced.
func (s *ClipboardServer) Serve(ctx context.Context, png []byte, timeout time.Duration) error {
	log := logger.WithComponent("clipboard")

	changed, err := s.write(png)
	if err != nil {
		return err
	}
	log.Info().Int("bytes", len(png)).Dur("timeout", timeout).Msg("Serving clipboard")

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-changed:
		log.Debug().Msg("Clipboard replaced by another owner")
		return nil
	case <-expired:
		log.Debug().Msg("Clipboard serve timeout elapsed")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
