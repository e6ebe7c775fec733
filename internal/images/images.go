// Package images stores uploaded images and analyses them, either through
// a vision model or by reading basic metadata from the file header.
package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xaenox/chronex/internal/metrics"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxSize = 10 << 20

	analyzePrompt   = "Please analyze this image in detail. What do you see? Describe objects, text, composition, and any notable features."
	DefaultQuestion = "Describe this image in detail"

	MethodVision = "OpenAI Vision"
	MethodBasic  = "Basic Analysis"
)

var (
	ErrNotFound = errors.New("image not found")
	// ErrNoVision is returned by Ask when no vision model is wired in.
	ErrNoVision = errors.New("vision model not available")
)

var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"webp": true,
	"bmp":  true,
}

// ValidationError reports an upload that was refused. Nothing is written
// to disk when it is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// TooLarge is the error for uploads over limit bytes.
func TooLarge(limit int64) *ValidationError {
	return &ValidationError{Message: "File too large. Max size: " + formatSize(limit)}
}

// Describer answers a prompt about an image.
type Describer interface {
	Describe(ctx context.Context, data []byte, mimeType, prompt string) (string, error)
}

type Info struct {
	Filename string `json:"filename"`
	Filepath string `json:"filepath"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
}

type Metadata struct {
	Format    string  `json:"format"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	ColorMode string  `json:"color_mode"`
	SizeKB    float64 `json:"size_kb"`
}

type Analysis struct {
	Text     string    `json:"analysis"`
	Method   string    `json:"method"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

type Store struct {
	dir       string
	absDir    string
	maxSize   int64
	describer Describer
	logger    *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

type Option func(*Store)

func WithMaxSize(n int64) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxSize = n
		}
	}
}

func WithDescriber(d Describer) Option {
	return func(s *Store) { s.describer = d }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates the upload directory if needed.
func New(dir string, logger *zap.Logger, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload dir: %w", err)
	}

	s := &Store{
		dir:     dir,
		absDir:  absDir,
		maxSize: DefaultMaxSize,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	logger.Info("Image processor initialized", zap.String("upload_dir", dir))
	return s, nil
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) MaxSize() int64 { return s.maxSize }

func extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

func formatSize(n int64) string {
	if n%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", n>>20)
	}
	return fmt.Sprintf("%.1fMB", float64(n)/(1<<20))
}

// Save validates and stores an upload as YYYYMMDD_HHMMSS_<name>.
func (s *Store) Save(name string, r io.Reader) (Info, error) {
	base := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(name, `\`, "/")))
	if name == "" || base == "/" || base == "." {
		s.metrics.RecordImageOperation("upload", "rejected")
		return Info{}, &ValidationError{Message: "No image selected"}
	}
	if !allowedExtensions[extension(base)] {
		s.metrics.RecordImageOperation("upload", "rejected")
		return Info{}, &ValidationError{Message: "File type not allowed. Use: PNG, JPG, GIF, WEBP, BMP"}
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		s.metrics.RecordImageOperation("upload", "error")
		return Info{}, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		s.metrics.RecordImageOperation("upload", "rejected")
		return Info{}, TooLarge(s.maxSize)
	}

	at := s.now()
	filename := at.Format("20060102_150405") + "_" + base
	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.metrics.RecordImageOperation("upload", "error")
		return Info{}, fmt.Errorf("failed to save image: %w", err)
	}

	s.metrics.RecordImageOperation("upload", "ok")
	s.logger.Info("Image saved", zap.String("path", path), zap.Int("bytes", len(data)))
	return Info{
		Filename: filename,
		Filepath: path,
		Size:     int64(len(data)),
		Modified: at.Format(time.RFC3339),
	}, nil
}

// resolve maps a stored file name, or a path returned by Save, to a file
// directly inside the upload directory. Anything else is ErrNotFound.
func (s *Store) resolve(p string) (string, error) {
	if p == "" {
		return "", ErrNotFound
	}

	candidate := p
	if !strings.ContainsAny(p, `/\`) {
		candidate = filepath.Join(s.dir, p)
	}
	abs, err := filepath.Abs(candidate)
	if err != nil {
		return "", ErrNotFound
	}
	rel, err := filepath.Rel(s.absDir, abs)
	if err != nil || rel == "." || rel == ".." || strings.ContainsRune(rel, filepath.Separator) {
		return "", ErrNotFound
	}

	fi, err := os.Stat(abs)
	if err != nil || !fi.Mode().IsRegular() {
		return "", ErrNotFound
	}
	return abs, nil
}

func mimeType(path string, data []byte) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); strings.HasPrefix(t, "image/") {
		return t
	}
	return http.DetectContentType(data)
}

// Analyze describes the image at path. With useAI and a vision model it
// asks the model and falls back to basic metadata on failure.
func (s *Store) Analyze(ctx context.Context, path string, useAI bool) (Analysis, error) {
	abs, err := s.resolve(path)
	if err != nil {
		return Analysis{}, err
	}

	if useAI && s.describer != nil {
		data, err := os.ReadFile(abs)
		if err != nil {
			return Analysis{}, fmt.Errorf("failed to read image: %w", err)
		}
		text, err := s.describer.Describe(ctx, data, mimeType(abs, data), analyzePrompt)
		if err == nil {
			s.metrics.RecordImageOperation("analyze", "vision")
			return Analysis{Text: text, Method: MethodVision}, nil
		}
		s.logger.Warn("Vision analysis failed, falling back to basic analysis", zap.Error(err))
	}

	meta, err := readMetadata(abs)
	if err != nil {
		s.metrics.RecordImageOperation("analyze", "error")
		return Analysis{}, err
	}
	s.metrics.RecordImageOperation("analyze", "basic")
	return Analysis{Text: meta.Report(), Method: MethodBasic, Metadata: &meta}, nil
}

// Ask sends a custom question about the image to the vision model.
func (s *Store) Ask(ctx context.Context, path, question string) (string, error) {
	abs, err := s.resolve(path)
	if err != nil {
		return "", err
	}
	if s.describer == nil {
		return "", ErrNoVision
	}
	if strings.TrimSpace(question) == "" {
		question = DefaultQuestion
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	return s.describer.Describe(ctx, data, mimeType(abs, data), question)
}

// List returns the stored images sorted by name.
func (s *Store) List() ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	out := make([]Info, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Info{
			Filename: e.Name(),
			Filepath: filepath.Join(s.dir, e.Name()),
			Size:     fi.Size(),
			Modified: fi.ModTime().Format(time.RFC3339),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	return out, nil
}

// Delete removes a stored image by file name.
func (s *Store) Delete(filename string) error {
	if strings.ContainsAny(filename, `/\`) {
		return ErrNotFound
	}
	abs, err := s.resolve(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete image: %w", err)
	}

	s.metrics.RecordImageOperation("delete", "ok")
	s.logger.Info("Image deleted", zap.String("filename", filename))
	return nil
}

func readMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read image: %w", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to decode image: %w", err)
	}
	return Metadata{
		Format:    strings.ToUpper(format),
		Width:     cfg.Width,
		Height:    cfg.Height,
		ColorMode: colorMode(cfg.ColorModel),
		SizeKB:    float64(len(data)) / 1024,
	}, nil
}

func colorMode(m color.Model) string {
	if _, ok := m.(color.Palette); ok {
		return "P"
	}
	switch m {
	case color.RGBAModel, color.NRGBAModel, color.RGBA64Model, color.NRGBA64Model:
		return "RGBA"
	case color.YCbCrModel, color.NYCbCrAModel:
		return "YCbCr"
	case color.GrayModel:
		return "L"
	case color.Gray16Model:
		return "I;16"
	case color.CMYKModel:
		return "CMYK"
	default:
		return "unknown"
	}
}

// Report renders the metadata as the basic analysis text.
func (m Metadata) Report() string {
	return fmt.Sprintf(`📸 **Image Analysis (Basic)**

**File Information:**
• Format: %s
• Dimensions: %dx%d pixels
• Color Mode: %s
• File Size: %.1f KB

**Description:**
Image successfully scanned and processed. For detailed AI analysis, enable an OpenAI vision model.`,
		m.Format, m.Width, m.Height, m.ColorMode, m.SizeKB)
}
