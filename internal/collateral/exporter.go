package collateral

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/fundraiser/internal/investor"
	"github.com/spigell/fundraiser/internal/logger"
	"github.com/spigell/fundraiser/internal/scoring"
)

// Export kinds understood by Exporter.
const (
	KindCSV    = "csv"
	KindXLSX   = "xlsx"
	KindPDF    = "pdf"
	KindNotion = "notion"
)

// Renderer turns a markdown document into PDF bytes.
type Renderer interface {
	Render(ctx context.Context, markdown string) ([]byte, error)
}

// Publisher uploads the target list somewhere and returns a link to it.
type Publisher interface {
	Export(ctx context.Context, brief investor.Brief, matches []scoring.Match) (string, error)
}

// Exporter writes the requested artifacts into a directory.
type Exporter struct {
	dir       string
	renderer  Renderer
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewExporter returns an Exporter writing into dir. renderer and publisher
// may be nil, which disables the pdf and notion kinds.
func NewExporter(dir string, renderer Renderer, publisher Publisher, log *zap.Logger) *Exporter {
	return &Exporter{
		dir:       dir,
		renderer:  renderer,
		publisher: publisher,
		logger:    logger.OrNop(log),
		now:       time.Now,
	}
}

// Export produces every requested kind and returns kind to path (or URL).
// A kind that fails is logged and left out of the result.
func (e *Exporter) Export(ctx context.Context, kinds []string, brief investor.Brief, matches []scoring.Match) map[string]string {
	results := make(map[string]string)
	if len(kinds) == 0 {
		return results
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		e.logger.Warn("cannot create export directory", zap.String("dir", e.dir), zap.Error(err))
		return results
	}

	ts := e.now().Unix()
	seen := make(map[string]struct{}, len(kinds))

	for _, kind := range kinds {
		kind = strings.ToLower(strings.TrimSpace(kind))
		if _, dup := seen[kind]; dup {
			continue
		}
		seen[kind] = struct{}{}

		out, err := e.exportOne(ctx, kind, ts, brief, matches)
		if err != nil {
			e.logger.Warn("export failed", zap.String("kind", kind), zap.Error(err))
			continue
		}
		if out == "" {
			continue
		}

		e.logger.Info("export written", zap.String("kind", kind), zap.String("location", out))
		results[kind] = out
	}

	return results
}

func (e *Exporter) exportOne(ctx context.Context, kind string, ts int64, brief investor.Brief, matches []scoring.Match) (string, error) {
	switch kind {
	case KindCSV:
		path := filepath.Join(e.dir, fmt.Sprintf("matches_%d.csv", ts))
		file, err := os.Create(path)
		if err != nil {
			return "", err
		}
		defer file.Close()
		if err := CSV(file, matches); err != nil {
			return "", err
		}
		return path, nil

	case KindXLSX:
		path := filepath.Join(e.dir, fmt.Sprintf("matches_%d.xlsx", ts))
		book, err := XLSX(matches)
		if err != nil {
			return "", err
		}
		defer book.Close()
		if err := book.SaveAs(path); err != nil {
			return "", fmt.Errorf("save workbook: %w", err)
		}
		return path, nil

	case KindPDF:
		if e.renderer == nil {
			return "", fmt.Errorf("pdf renderer is not configured")
		}
		pdf, err := e.renderer.Render(ctx, OnePagerMarkdown(brief, matches))
		if err != nil {
			return "", err
		}
		path := filepath.Join(e.dir, fmt.Sprintf("one_pager_%d.pdf", ts))
		if err := os.WriteFile(path, pdf, 0o644); err != nil {
			return "", err
		}
		return path, nil

	case KindNotion:
		if e.publisher == nil {
			return "", nil
		}
		return e.publisher.Export(ctx, brief, matches)

	default:
		return "", fmt.Errorf("unknown export kind %q", kind)
	}
}
