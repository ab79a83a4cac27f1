// Package csvio reads and writes datasets as comma-separated text.
package csvio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"example.com/activityfilter/internal/domain"
)

const utf8BOM = "\ufeff"

// Load reads the CSV file at path into a Dataset. The first row is the header.
func Load(path string) (domain.Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Dataset{}, fmt.Errorf("%w: %s", domain.ErrFileNotFound, path)
		}
		return domain.Dataset{}, fmt.Errorf("%w: open %s: %v", domain.ErrParse, path, err)
	}
	defer file.Close()

	ds, err := Decode(bufio.NewReader(file))
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Decode parses CSV text from r. Blank lines are skipped and every data row must
// have as many fields as the header. Line breaks inside quoted fields are kept
// byte for byte, including \r\n.
func Decode(r io.Reader) (domain.Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}
	data, restore := protectQuotedCRLF(data)

	reader := csv.NewReader(bytes.NewReader(data))
	// Zero makes the reader pin the width to the header.
	reader.FieldsPerRecord = 0

	header, err := reader.Read()
	if err == io.EOF {
		return domain.Dataset{}, fmt.Errorf("%w: empty file", domain.ErrParse)
	}
	if err != nil {
		return domain.Dataset{}, parseError(err)
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)
	restore(header)

	ds := domain.Dataset{
		Columns: header,
		Rows:    make([][]string, 0),
	}
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return domain.Dataset{}, parseError(err)
		}
		restore(rec)
		ds.Rows = append(ds.Rows, rec)
	}

	if err := ds.Validate(); err != nil {
		return domain.Dataset{}, err
	}
	return ds, nil
}

// protectQuotedCRLF swaps the \r of every \r\n inside a quoted field for a
// placeholder rune absent from data, because encoding/csv folds those pairs to
// \n. The \n stays so line numbers in parse errors are unchanged. The returned
// function puts the \r back into parsed fields.
func protectQuotedCRLF(data []byte) ([]byte, func([]string)) {
	noop := func([]string) {}
	if !bytes.Contains(data, []byte("\r\n")) {
		return data, noop
	}
	placeholder, ok := unusedRune(data)
	if !ok {
		return data, noop
	}
	mark := []byte(string(placeholder))

	out := make([]byte, 0, len(data)+len(mark))
	inQuotes, replaced := false, false
	for i := 0; i < len(data); i++ {
		c := data[i]
		switch {
		case c == '"':
			inQuotes = !inQuotes
		case c == '\r' && inQuotes && i+1 < len(data) && data[i+1] == '\n':
			out = append(out, mark...)
			replaced = true
			continue
		}
		out = append(out, c)
	}
	if !replaced {
		return data, noop
	}

	from := string(placeholder) + "\n"
	return out, func(fields []string) {
		for i, f := range fields {
			if strings.Contains(f, from) {
				fields[i] = strings.ReplaceAll(f, from, "\r\n")
			}
		}
	}
}

// unusedRune picks a private-use code point that does not occur in data.
func unusedRune(data []byte) (rune, bool) {
	for r := rune(0xE000); r <= 0xF8FF; r++ {
		if !bytes.ContainsRune(data, r) {
			return r, true
		}
	}
	return 0, false
}

func parseError(err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return fmt.Errorf("%w: line %d: %v", domain.ErrParse, perr.Line, perr.Err)
	}
	return fmt.Errorf("%w: %v", domain.ErrParse, err)
}
