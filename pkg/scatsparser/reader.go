package scatsparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dsnet/compress/bzip2"
)

type compressedFile struct {
	f  *os.File
	bz *bzip2.Reader
}

func (c *compressedFile) Read(p []byte) (int, error) {
	return c.bz.Read(p)
}

func (c *compressedFile) Close() error {
	c.bz.Close()
	return c.f.Close()
}

// open. open a csv file, .bz2 files are decompressed on the fly
func open(filename string) (io.ReadCloser, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	if !strings.HasSuffix(filename, ".bz2") {
		return f, nil
	}

	bz, err := bzip2.NewReader(f, &bzip2.ReaderConfig{})
	if err != nil {
		f.Close()
		return nil, err
	}
	return &compressedFile{f: f, bz: bz}, nil
}

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = false
	return cr
}

// header. column name -> position. a utf-8 BOM on the first column is stripped.
type header map[string]int

func readHeader(cr *csv.Reader) (header, error) {
	cols, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	h := make(header, len(cols))
	for i, c := range cols {
		c = strings.TrimPrefix(c, "\ufeff")
		h[strings.ToLower(strings.TrimSpace(c))] = i
	}
	return h, nil
}

// find. position of the first matching column name
func (h header) find(names ...string) (int, bool) {
	for _, n := range names {
		if i, ok := h[strings.ToLower(n)]; ok {
			return i, true
		}
	}
	return -1, false
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
