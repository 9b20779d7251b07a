// Package flatfile reads and writes the header-plus-records text files that
// back the calendars and directories. Fields are comma separated with no
// quoting; a field may not itself contain a comma or a line break.
package flatfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// MaxLineLength bounds a single record. Longer lines are skipped, not loaded.
const MaxLineLength = 64 * 1024

var (
	ErrUnsafeField = errors.New("field contains a separator or line break")
	ErrLineTooLong = errors.New("line exceeds maximum length")
)

// Scan calls fn for every non-blank line of path after an optional leading
// header (matched case-insensitively). Lines longer than MaxLineLength are
// reported to skip, when non-nil, and otherwise ignored. A missing file has
// no lines.
func Scan(path, header string, fn func(lineNo int, line string), skip func(lineNo int, err error)) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	lineNo := 0
	for {
		raw, tooLong, err := readLine(reader)
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := err != nil
		if eof && len(raw) == 0 && !tooLong {
			return nil
		}

		lineNo++
		if tooLong {
			if skip != nil {
				skip(lineNo, ErrLineTooLong)
			}
		} else if line := strings.TrimSpace(string(raw)); line != "" &&
			!(lineNo == 1 && strings.EqualFold(line, header)) {
			fn(lineNo, line)
		}

		if eof {
			return nil
		}
	}
}

// readLine returns the next line without its terminator. Once a line passes
// MaxLineLength the rest of it is consumed and dropped.
func readLine(r *bufio.Reader) ([]byte, bool, error) {
	var line []byte
	tooLong := false
	for {
		chunk, err := r.ReadSlice('\n')
		if err == nil {
			chunk = bytes.TrimSuffix(bytes.TrimSuffix(chunk, []byte("\n")), []byte("\r"))
		}
		if !tooLong {
			if len(line)+len(chunk) > MaxLineLength {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return line, tooLong, err
	}
}

// Split breaks a record into trimmed fields.
func Split(line string) []string {
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

// Join renders fields as one record.
func Join(fields ...string) (string, error) {
	for _, f := range fields {
		if strings.ContainsAny(f, ",\r\n") {
			return "", fmt.Errorf("%w: %q", ErrUnsafeField, f)
		}
	}
	return strings.Join(fields, ","), nil
}

// WriteAtomic replaces path with header followed by records. The content is
// written to a temporary file in the same directory and renamed into place,
// so concurrent readers see either the old or the new file.
func WriteAtomic(path, header string, records []string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := bufio.NewWriter(tmp)
	_, _ = w.WriteString(header + "\n")
	for _, record := range records {
		_, _ = w.WriteString(record + "\n")
	}

	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}

	return nil
}
