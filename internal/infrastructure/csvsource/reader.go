package csvsource

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	crerr "github.com/cockroachdb/errors"
)

const utf8BOM = "\ufeff"

// ReadFile reads a CSV export into one map per data row, keyed by the trimmed
// header names. The delimiter (";" or ",") is taken from the header line.
func ReadFile(ctx context.Context, path string) ([]map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, crerr.Wrapf(err, "open csv %s", path)
	}
	defer file.Close()

	rows, err := Read(ctx, file)
	if err != nil {
		return nil, crerr.Wrapf(err, "read csv %s", path)
	}
	return rows, nil
}

func Read(ctx context.Context, r io.Reader) ([]map[string]string, error) {
	buffered := bufio.NewReader(r)
	head, err := buffered.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, crerr.Wrap(err, "peek header")
	}

	reader := csv.NewReader(buffered)
	reader.Comma = sniffDelimiter(head)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, crerr.Wrap(err, "read header")
	}
	for i, name := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(name, utf8BOM))
	}

	var rows []map[string]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, crerr.Wrapf(err, "read row %d", len(rows)+2)
		}
		if isBlankRecord(record) {
			continue
		}

		row := make(map[string]string, len(header))
		for i, name := range header {
			if name == "" || i >= len(record) {
				continue
			}
			row[name] = strings.TrimSpace(record[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func sniffDelimiter(head []byte) rune {
	line := head
	if idx := bytes.IndexByte(head, '\n'); idx >= 0 {
		line = head[:idx]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

func isBlankRecord(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
