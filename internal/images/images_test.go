package images

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/image/bmp"
)

type fakeDescriber struct {
	text     string
	err      error
	prompt   string
	mimeType string
}

func (f *fakeDescriber) Describe(_ context.Context, _ []byte, mimeType, prompt string) (string, error) {
	f.prompt, f.mimeType = prompt, mimeType
	return f.text, f.err
}

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func newStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	s, err := New(filepath.Join(t.TempDir(), "images"), zap.NewNop(), opts...)
	require.NoError(t, err)
	return s
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func dirEntries(t *testing.T, s *Store) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	return entries
}

func TestSave(t *testing.T) {
	s := newStore(t)

	info, err := s.Save("cat.PNG", bytes.NewReader(pngBytes(t, 2, 2)))
	require.NoError(t, err)

	assert.Equal(t, "20260304_050607_cat.PNG", info.Filename)
	assert.Equal(t, filepath.Join(s.Dir(), info.Filename), info.Filepath)
	assert.FileExists(t, info.Filepath)
}

func TestSave_StripsDirectories(t *testing.T) {
	s := newStore(t)

	info, err := s.Save("../../etc/evil.png", bytes.NewReader(pngBytes(t, 1, 1)))
	require.NoError(t, err)

	assert.Equal(t, "20260304_050607_evil.png", info.Filename)
	assert.Len(t, dirEntries(t, s), 1)
}

func TestSave_Validation(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		size    int
		message string
	}{
		{"empty name", "", 10, "No image selected"},
		{"bad extension", "notes.txt", 10, "File type not allowed"},
		{"no extension", "image", 10, "File type not allowed"},
		{"too large", "big.png", 1024 + 1, "File too large. Max size: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t, WithMaxSize(1024))

			_, err := s.Save(tt.file, bytes.NewReader(make([]byte, tt.size)))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Message, tt.message)
			assert.Empty(t, dirEntries(t, s))
		})
	}
}

func TestSave_DefaultLimitMessage(t *testing.T) {
	s := newStore(t)

	_, err := s.Save("huge.jpg", bytes.NewReader(make([]byte, DefaultMaxSize+1)))

	require.Error(t, err)
	assert.Equal(t, "File too large. Max size: 10MB", err.Error())
	assert.Empty(t, dirEntries(t, s))
}

func TestSave_ExactlyAtLimit(t *testing.T) {
	s := newStore(t, WithMaxSize(16))

	_, err := s.Save("ok.gif", bytes.NewReader(make([]byte, 16)))
	assert.NoError(t, err)
}

func TestAnalyze_Basic(t *testing.T) {
	s := newStore(t)
	info, err := s.Save("pic.png", bytes.NewReader(pngBytes(t, 3, 2)))
	require.NoError(t, err)

	analysis, err := s.Analyze(context.Background(), info.Filepath, true)
	require.NoError(t, err)

	assert.Equal(t, MethodBasic, analysis.Method)
	require.NotNil(t, analysis.Metadata)
	assert.Equal(t, "PNG", analysis.Metadata.Format)
	assert.Equal(t, 3, analysis.Metadata.Width)
	assert.Equal(t, 2, analysis.Metadata.Height)
	assert.Equal(t, "RGBA", analysis.Metadata.ColorMode)
	assert.Contains(t, analysis.Text, "Dimensions: 3x2 pixels")
}

func TestAnalyze_BMP(t *testing.T) {
	s := newStore(t)
	img := image.NewGray(image.Rect(0, 0, 4, 5))
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, img))
	info, err := s.Save("scan.bmp", &buf)
	require.NoError(t, err)

	analysis, err := s.Analyze(context.Background(), info.Filename, false)
	require.NoError(t, err)

	assert.Equal(t, "BMP", analysis.Metadata.Format)
	assert.Equal(t, 4, analysis.Metadata.Width)
	assert.Equal(t, 5, analysis.Metadata.Height)
}

func TestAnalyze_Vision(t *testing.T) {
	d := &fakeDescriber{text: "A tiny red pixel"}
	s := newStore(t, WithDescriber(d))
	info, err := s.Save("pic.png", bytes.NewReader(pngBytes(t, 1, 1)))
	require.NoError(t, err)

	analysis, err := s.Analyze(context.Background(), info.Filepath, true)
	require.NoError(t, err)

	assert.Equal(t, MethodVision, analysis.Method)
	assert.Equal(t, "A tiny red pixel", analysis.Text)
	assert.Equal(t, "image/png", d.mimeType)
	assert.Nil(t, analysis.Metadata)
}

func TestAnalyze_VisionFailureFallsBack(t *testing.T) {
	s := newStore(t, WithDescriber(&fakeDescriber{err: errors.New("quota")}))
	info, err := s.Save("pic.png", bytes.NewReader(pngBytes(t, 1, 1)))
	require.NoError(t, err)

	analysis, err := s.Analyze(context.Background(), info.Filepath, true)
	require.NoError(t, err)
	assert.Equal(t, MethodBasic, analysis.Method)
}

func TestAnalyze_Undecodable(t *testing.T) {
	s := newStore(t)
	info, err := s.Save("fake.png", strings.NewReader("not an image"))
	require.NoError(t, err)

	_, err = s.Analyze(context.Background(), info.Filepath, false)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestResolveRejectsOutsidePaths(t *testing.T) {
	s := newStore(t)
	outside := filepath.Join(filepath.Dir(s.Dir()), "secret.png")
	require.NoError(t, os.WriteFile(outside, pngBytes(t, 1, 1), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(s.Dir(), "nested"), 0o755))

	for _, p := range []string{
		"",
		outside,
		filepath.Join(s.Dir(), "..", "secret.png"),
		"../secret.png",
		"nested",
		s.Dir(),
		"missing.png",
	} {
		_, err := s.Analyze(context.Background(), p, false)
		assert.ErrorIs(t, err, ErrNotFound, p)
	}
}

func TestAsk(t *testing.T) {
	d := &fakeDescriber{text: "two cats"}
	s := newStore(t, WithDescriber(d))
	info, err := s.Save("pic.jpg", bytes.NewReader([]byte("jpeg-ish")))
	require.NoError(t, err)

	answer, err := s.Ask(context.Background(), info.Filepath, "")
	require.NoError(t, err)
	assert.Equal(t, "two cats", answer)
	assert.Equal(t, DefaultQuestion, d.prompt)
	assert.Equal(t, "image/jpeg", d.mimeType)

	_, err = s.Ask(context.Background(), info.Filepath, "How many cats?")
	require.NoError(t, err)
	assert.Equal(t, "How many cats?", d.prompt)
}

func TestAsk_NoVision(t *testing.T) {
	s := newStore(t)
	info, err := s.Save("pic.png", bytes.NewReader(pngBytes(t, 1, 1)))
	require.NoError(t, err)

	_, err = s.Ask(context.Background(), info.Filepath, "what?")
	assert.ErrorIs(t, err, ErrNoVision)

	_, err = s.Ask(context.Background(), "nope.png", "what?")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAndDelete(t *testing.T) {
	s := newStore(t)
	assert.Empty(t, mustList(t, s))

	first, err := s.Save("b.png", bytes.NewReader(pngBytes(t, 1, 1)))
	require.NoError(t, err)
	second, err := s.Save("a.png", bytes.NewReader(pngBytes(t, 1, 1)))
	require.NoError(t, err)

	list := mustList(t, s)
	require.Len(t, list, 2)
	assert.Equal(t, second.Filename, list[0].Filename)
	assert.Equal(t, first.Filename, list[1].Filename)
	assert.Positive(t, list[0].Size)

	require.NoError(t, s.Delete(first.Filename))
	assert.Len(t, mustList(t, s), 1)

	assert.ErrorIs(t, s.Delete(first.Filename), ErrNotFound)
	assert.ErrorIs(t, s.Delete("../images/"+second.Filename), ErrNotFound)
	assert.Len(t, mustList(t, s), 1)
}

func mustList(t *testing.T, s *Store) []Info {
	t.Helper()
	list, err := s.List()
	require.NoError(t, err)
	return list
}

func TestColorMode(t *testing.T) {
	assert.Equal(t, "P", colorMode(color.Palette{color.Black}))
	assert.Equal(t, "L", colorMode(color.GrayModel))
	assert.Equal(t, "YCbCr", colorMode(color.YCbCrModel))
	assert.Equal(t, "CMYK", colorMode(color.CMYKModel))
	assert.Equal(t, "RGBA", colorMode(color.NRGBAModel))
}
