package reader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"

	"github.com/notesai/notesai/internal/logging"
	"github.com/notesai/notesai/internal/pdftext"
)

// ErrUnsupportedFormat is returned when a file format is not supported.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Document represents a loaded document.
type Document struct {
	// Path is the source file path
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
	// Name is the base filename
	Name string `json:"name" yaml:"name"`
	// Content is the extracted text content
	Content string `json:"text" yaml:"text"`
	// Strategy is the scanner that produced Content
	Strategy pdftext.Strategy `json:"strategy" yaml:"strategy"`
	// OriginalLength is the character count before truncation
	OriginalLength int `json:"original_length" yaml:"original_length"`
	// Truncated reports whether Content was capped
	Truncated bool `json:"truncated" yaml:"truncated"`
	// Info is only set when no text could be extracted
	Info *PDFInfo `json:"pdf,omitempty" yaml:"pdf,omitempty"`
}

// Failure records a file that could not be loaded during a directory scan.
type Failure struct {
	Path string
	Err  error
}

// Loader reads PDFs from disk or memory and runs them through an Extractor
// under a per-file deadline.
type Loader struct {
	extractor *pdftext.Extractor
	timeout   time.Duration
	log       *log.Logger
}

// NewLoader creates a Loader. A zero timeout disables the deadline.
func NewLoader(ex *pdftext.Extractor, timeout time.Duration, logger *log.Logger) *Loader {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Loader{extractor: ex, timeout: timeout, log: logger}
}

// LoadFile reads a single document from the given path.
func (l *Loader) LoadFile(ctx context.Context, path string) (Document, error) {
	if err := checkExt(path); err != nil {
		return Document{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read file %q: %w", path, err)
	}
	doc, err := l.LoadBytes(ctx, filepath.Base(path), data)
	doc.Path = path
	return doc, err
}

// LoadBytes extracts an in-memory PDF. When no text can be found the returned
// Document still carries Name and, if the file could be inspected, Info.
func (l *Loader) LoadBytes(ctx context.Context, name string, data []byte) (Document, error) {
	if err := checkExt(name); err != nil {
		return Document{}, err
	}
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	doc := Document{Name: name}
	res, err := Extract(ctx, l.extractor, data)
	if err != nil {
		if errors.Is(err, pdftext.ErrNoExtractableText) {
			if info, ierr := InspectPDF(data); ierr == nil {
				doc.Info = info
			} else {
				l.log.Debug().Str("name", name).Err(ierr).Msg("pdf inspection failed")
			}
		}
		return doc, fmt.Errorf("extract %q: %w", name, err)
	}

	doc.Content = res.Text
	doc.Strategy = res.Strategy
	doc.OriginalLength = res.OriginalLength
	doc.Truncated = res.Truncated
	return doc, nil
}

// LoadDirectory extracts every PDF in dir with up to workers files in flight.
// Files that fail are reported as failures rather than aborting the scan.
// Documents come back sorted by name.
func (l *Loader) LoadDirectory(ctx context.Context, dir string, workers int) ([]Document, []Failure, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read directory %q: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || checkExt(entry.Name()) != nil {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}

	if workers <= 0 {
		workers = 1
	}
	docs := make([]Document, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			docs[i], errs[i] = l.LoadFile(gctx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var (
		loaded   []Document
		failures []Failure
	)
	for i, path := range paths {
		if errs[i] != nil {
			l.log.Warn().Str("path", path).Err(errs[i]).Msg("skipping pdf")
			failures = append(failures, Failure{Path: path, Err: errs[i]})
			continue
		}
		loaded = append(loaded, docs[i])
	}
	sort.Slice(loaded, func(a, b int) bool { return loaded[a].Name < loaded[b].Name })
	return loaded, failures, nil
}

// Extract runs ex.Parse and gives up when ctx is done first. The abandoned
// parse finishes in the background; Parse is bounded by the input size.
func Extract(ctx context.Context, ex *pdftext.Extractor, data []byte) (pdftext.Result, error) {
	if err := ctx.Err(); err != nil {
		return pdftext.Result{}, err
	}

	type outcome struct {
		res pdftext.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := ex.Parse(data)
		done <- outcome{res: res, err: err}
	}()

	select {
	case o := <-done:
		return o.res, o.err
	case <-ctx.Done():
		return pdftext.Result{}, ctx.Err()
	}
}

func checkExt(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if ext != ".pdf" {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return nil
}
