package output

import (
	"bufio"
	"image"
	"io"
	"os"
)

// StdoutSink writes the encoded capture to a stream, stdout by default
type StdoutSink struct {
	W      io.Writer
	Format Format
}

// Name returns the sink name
func (s *StdoutSink) Name() string {
	return "stdout"
}

// Write encodes img to the stream
func (s *StdoutSink) Write(img *image.RGBA) error {
	w := s.W
	if w == nil {
		w = os.Stdout
	}
	format := s.Format
	if format == "" {
		format = FormatPNG
	}

	bw := bufio.NewWriter(w)
	if err := Encode(bw, img, format); err != nil {
		return err
	}
	return bw.Flush()
}
