package output

import (
	"image"
)

// Sink is a destination for the final capture.
// This allows the same image to go to several places:
// - a file on disk
// - stdout for piping
// - the clipboard
type Sink interface {
	// Name returns a human-readable name for this sink
	Name() string

	// Write delivers the image
	Write(img *image.RGBA) error
}

// Waiter is implemented by sinks that keep working after Write returns
type Waiter interface {
	Wait() error
}

// WriteAll delivers img to every sink, stopping at the first failure
func WriteAll(img *image.RGBA, sinks ...Sink) error {
	for _, s := range sinks {
		if err := s.Write(img); err != nil {
			return err
		}
	}
	return nil
}

// WaitAll waits on every sink that implements Waiter
func WaitAll(sinks ...Sink) error {
	for _, s := range sinks {
		if w, ok := s.(Waiter); ok {
			if err := w.Wait(); err != nil {
				return err
			}
		}
	}
	return nil
}
