package output

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	img.SetRGBA(3, 2, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	return img
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"png", FormatPNG},
		{"PNG", FormatPNG},
		{".jpg", FormatJPEG},
		{"jpeg", FormatJPEG},
		{"bmp", FormatBMP},
		{"tif", FormatTIFF},
		{"tiff", FormatTIFF},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFormat("webp")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("/tmp/shot.JPG")
	require.NoError(t, err)
	assert.Equal(t, FormatJPEG, f)

	_, err = FormatFromPath("/tmp/shot")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	assert.Equal(t, ".jpg", FormatJPEG.Extension())
	assert.Equal(t, ".tiff", FormatTIFF.Extension())
}

func TestEncode_RoundTripBounds(t *testing.T) {
	img := testImage()
	decoders := map[Format]func(*bytes.Buffer) (image.Image, error){
		FormatPNG:  func(b *bytes.Buffer) (image.Image, error) { return png.Decode(b) },
		FormatBMP:  func(b *bytes.Buffer) (image.Image, error) { return bmp.Decode(b) },
		FormatTIFF: func(b *bytes.Buffer) (image.Image, error) { return tiff.Decode(b) },
	}

	for format, decode := range decoders {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, img, format))

			got, err := decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, img.Bounds(), got.Bounds())

			r, g, b, _ := got.At(3, 2).RGBA()
			assert.Equal(t, []uint32{200, 100, 50}, []uint32{r >> 8, g >> 8, b >> 8})
		})
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img, FormatJPEG))
	assert.NotZero(t, buf.Len())

	assert.ErrorIs(t, Encode(&buf, img, "gif"), ErrUnsupportedFormat)
}

func TestFileSink_Target(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 3, 7, 9, 5, 0, 0, time.UTC) }

	s := &FileSink{Dir: "/pics", Now: now}
	path, format, err := s.Target()
	require.NoError(t, err)
	assert.Equal(t, "/pics/regionshot_07-03-2024_09:05.png", path)
	assert.Equal(t, FormatPNG, format)

	s = &FileSink{Dir: "/pics", Template: "shot-2006", Format: FormatJPEG, Now: now}
	path, format, err = s.Target()
	require.NoError(t, err)
	assert.Equal(t, "/pics/shot-2024.jpg", path)
	assert.Equal(t, FormatJPEG, format)

	// An explicit extension wins over the configured format
	s = &FileSink{Path: "/out/a.bmp", Format: FormatJPEG}
	path, format, err = s.Target()
	require.NoError(t, err)
	assert.Equal(t, "/out/a.bmp", path)
	assert.Equal(t, FormatBMP, format)

	_, _, err = (&FileSink{}).Target()
	assert.Error(t, err)
}

func TestFileSink_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	s := &FileSink{Dir: dir, Now: time.Now}

	require.NoError(t, s.Write(testImage()))

	f, err := os.Open(s.Written())
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 6), img.Bounds())
}

func TestStdoutSink_WritesPNG(t *testing.T) {
	var buf bytes.Buffer
	s := &StdoutSink{W: &buf}

	require.NoError(t, s.Write(testImage()))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
}

type errSink struct{ err error }

func (e errSink) Name() string            { return "err" }
func (e errSink) Write(*image.RGBA) error { return e.err }

func TestWriteAll_StopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	var buf bytes.Buffer

	err := WriteAll(testImage(), errSink{boom}, &StdoutSink{W: &buf})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, buf.Len())
}

func fakeServer(changed chan struct{}, got *[]byte) *ClipboardServer {
	return &ClipboardServer{write: func(png []byte) (<-chan struct{}, error) {
		*got = append([]byte(nil), png...)
		return changed, nil
	}}
}

func TestClipboardServer_ReturnsWhenReplaced(t *testing.T) {
	changed := make(chan struct{})
	var got []byte
	s := fakeServer(changed, &got)
	close(changed)

	err := s.Serve(context.Background(), []byte("png"), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), got)
}

func TestClipboardServer_Timeout(t *testing.T) {
	var got []byte
	s := fakeServer(make(chan struct{}), &got)

	start := time.Now()
	require.NoError(t, s.Serve(context.Background(), []byte("png"), 20*time.Millisecond))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestClipboardServer_ContextCancelled(t *testing.T) {
	var got []byte
	s := fakeServer(make(chan struct{}), &got)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Serve(ctx, []byte("png"), 0), context.Canceled)
}

func TestClipboardServer_WriteError(t *testing.T) {
	boom := errors.New("no display")
	s := &ClipboardServer{write: func([]byte) (<-chan struct{}, error) { return nil, boom }}

	assert.ErrorIs(t, s.Serve(context.Background(), nil, 0), boom)
}

func TestClipboardSink_WaitMode(t *testing.T) {
	changed := make(chan struct{})
	var got []byte
	s := &ClipboardSink{Mode: ClipboardWait, Timeout: time.Hour, server: fakeServer(changed, &got)}

	require.NoError(t, s.Write(testImage()))
	close(changed)
	require.NoError(t, s.Wait())

	img, err := png.Decode(bytes.NewReader(got))
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
}

func TestClipboardSink_DetachHandsOffBytes(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	out := filepath.Join(t.TempDir(), "handoff.png")

	s := &ClipboardSink{
		Mode: ClipboardDetach,
		command: func(time.Duration) (*exec.Cmd, error) {
			return exec.Command("sh", "-c", "cat > "+out+".tmp && mv "+out+".tmp "+out), nil
		},
	}
	require.NoError(t, s.Write(testImage()))
	require.NoError(t, s.Wait())

	assert.Eventually(t, func() bool {
		_, err := os.Stat(out)
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 6, img.Bounds().Dy())
}

func TestParseClipboardMode(t *testing.T) {
	m, err := ParseClipboardMode("")
	require.NoError(t, err)
	assert.Equal(t, ClipboardDetach, m)

	m, err = ParseClipboardMode("wait")
	require.NoError(t, err)
	assert.Equal(t, ClipboardWait, m)

	_, err = ParseClipboardMode("fork")
	assert.Error(t, err)
}
