package csvsource

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/volleystats/internal/domain/mergedrow"
	"github.com/valyala/bytebufferpool"
)

// ContentType is the media type of encoded exports.
const ContentType = "text/csv; charset=utf-8"

// Encode renders merged rows as CSV with a FieldOrder header.
func Encode(rows []mergedrow.Row) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	writer := csv.NewWriter(buf)
	if err := writer.Write(mergedrow.FieldOrder); err != nil {
		return nil, crerr.Wrap(err, "write csv header")
	}
	for i, row := range rows {
		if err := writer.Write(row.Strings()); err != nil {
			return nil, crerr.Wrapf(err, "write csv row %d", i)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, crerr.Wrap(err, "flush csv")
	}

	return append([]byte(nil), buf.B...), nil
}

// WriteFile encodes rows and writes them to path, creating parent directories.
func WriteFile(ctx context.Context, path string, rows []mergedrow.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	encoded, err := Encode(rows)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return crerr.Wrapf(err, "create directory %s", dir)
		}
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return crerr.Wrapf(err, "write csv %s", path)
	}
	return nil
}
