// Package export renders row sets as CSV and delivers them as files or
// HTTP downloads.
package export

import (
	"fmt"
	"io"
	"math"
	"mime"
	"net/http"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// ContentType is the media type sent with every CSV download.
const ContentType = "text/csv;charset=utf-8;"

// Column maps a row to one CSV field. Accessor must return a primitive:
// string, a numeric kind, bool, nil or a fmt.Stringer.
type Column[T any] struct {
	Header   string
	Accessor func(T) any
}

// Text renders rows as CSV. Every data field is quoted with inner quotes
// doubled. Headers are quoted but left unescaped.
func Text[T any](rows []T, cols []Column[T]) string {
	var b strings.Builder

	for i, c := range cols {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(c.Header)
		b.WriteByte('"')
	}

	for _, row := range rows {
		b.WriteByte('\n')
		for i, c := range cols {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(field(c.Accessor(row)), `"`, `""`))
			b.WriteByte('"')
		}
	}

	return b.String()
}

// Write renders rows and writes them to w in one call.
func Write[T any](w io.Writer, rows []T, cols []Column[T]) error {
	_, err := io.WriteString(w, Text(rows, cols))
	return err
}

// Save writes the CSV to filename on fs. The text is rendered before the
// file is touched and renamed into place, so no partial file is left behind.
func Save[T any](fs afero.Fs, filename string, rows []T, cols []Column[T]) error {
	body := Text(rows, cols)

	dir := filepath.Dir(filename)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(filename)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(body); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(tmpName)
		return fmt.Errorf("write csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("close csv: %w", err)
	}
	if err := fs.Rename(tmpName, filename); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("rename csv: %w", err)
	}
	return nil
}

// Serve sends the CSV to w as a file download named filename.
func Serve[T any](w http.ResponseWriter, filename string, rows []T, cols []Column[T]) {
	body := Text(rows, cols)

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": filepath.Base(filename)})
	if disposition == "" {
		disposition = "attachment"
	}

	h := w.Header()
	h.Set("Content-Type", ContentType)
	h.Set("Content-Disposition", disposition)
	h.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}

func field(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		if isNilPointer(v) {
			return ""
		}
		return x.String()
	case float64:
		return formatFloat(x, 64)
	case float32:
		return formatFloat(float64(x), 32)
	}

	if isNilPointer(v) {
		return ""
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		return field(rv.Elem().Interface())
	}
	return fmt.Sprint(v)
}

// formatFloat writes plain decimals inside [1e-6, 1e21) and exponent form
// outside it.
func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	abs := math.Abs(f)
	if abs == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(f, 'f', -1, bits)
	}

	s := strconv.FormatFloat(f, 'e', -1, bits)
	mant, exp, _ := strings.Cut(s, "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + digits
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
