package pdftext

import (
	"bytes"
	"context"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/ledongthuc/pdf"
	"github.com/riskibarqy/volleystats/internal/platform/logging"
)

var (
	ErrEmptyDocument = crerr.New("pdf document is empty")
	ErrNoPages       = crerr.New("pdf document has no pages")
)

// Extractor pulls plain text out of box-score PDFs.
type Extractor struct {
	logger *logging.Logger
}

func NewExtractor(logger *logging.Logger) *Extractor {
	if logger == nil {
		logger = logging.Default()
	}
	return &Extractor{logger: logger}
}

// FirstPageText returns the text of the first page. Box-score reports carry
// both teams on page one.
func (e *Extractor) FirstPageText(ctx context.Context, data []byte) (string, error) {
	return e.PageText(ctx, data, 1)
}

// PageText returns the text of page number (1-based) with NUL bytes removed.
func (e *Extractor) PageText(ctx context.Context, data []byte, number int) (text string, err error) {
	if len(data) == 0 {
		return "", ErrEmptyDocument
	}

	// The reader panics on some truncated cross-reference tables.
	defer func() {
		if recovered := recover(); recovered != nil {
			e.logger.WarnContext(ctx, "pdf reader panicked", "page", number, "panic", recovered)
			text = ""
			err = crerr.Newf("read pdf: %v", recovered)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", crerr.Wrap(err, "open pdf")
	}
	if reader.NumPage() < 1 {
		return "", ErrNoPages
	}
	if number < 1 || number > reader.NumPage() {
		return "", crerr.Newf("page %d out of range 1..%d", number, reader.NumPage())
	}

	page := reader.Page(number)
	if page.V.IsNull() {
		return "", crerr.Newf("page %d is empty", number)
	}

	fonts := make(map[string]*pdf.Font)
	for _, name := range page.Fonts() {
		font := page.Font(name)
		fonts[name] = &font
	}

	raw, err := page.GetPlainText(fonts)
	if err != nil {
		return "", crerr.Wrapf(err, "extract text of page %d", number)
	}
	return strings.ReplaceAll(raw, "\x00", ""), nil
}
