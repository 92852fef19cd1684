package output

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/bryanchriswhite/regionshot/internal/logger"
)

// DefaultFilenameTemplate names captures saved into a directory
const DefaultFilenameTemplate = "regionshot_02-01-2006_15:04.png"

// FileSink saves the capture to disk. With Path set the image goes exactly
// there; otherwise a name is generated in Dir from Template.
type FileSink struct {
	Path     string
	Dir      string
	Template string
	// Format is used when the target path has no recognizable extension
	Format Format
	Now    func() time.Time

	written string
}

// Name returns the sink name
func (s *FileSink) Name() string {
	return "file"
}

// Target returns the path the next Write will create, and its format
func (s *FileSink) Target() (string, Format, error) {
	path := s.Path
	if path == "" {
		if s.Dir == "" {
			return "", "", fmt.Errorf("file sink needs a path or a directory")
		}
		tmpl := s.Template
		if tmpl == "" {
			tmpl = DefaultFilenameTemplate
		}
		now := time.Now
		if s.Now != nil {
			now = s.Now
		}
		path = filepath.Join(s.Dir, now().Format(tmpl))
	}

	if f, err := FormatFromPath(path); err == nil {
		return path, f, nil
	}

	f := s.Format
	if f == "" {
		f = FormatPNG
	}
	if filepath.Ext(path) == "" {
		path += f.Extension()
	}
	return path, f, nil
}

// Write encodes img to the target path, creating parent directories
func (s *FileSink) Write(img *image.RGBA) error {
	path, format, err := s.Target()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Encode(f, img, format); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	s.written = path
	logger.WithComponent("output").Info().
		Str("path", path).
		Str("format", string(format)).
		Msg("Capture saved")
	return nil
}

// Written returns the path of the last successful Write
func (s *FileSink) Written() string {
	return s.written
}
