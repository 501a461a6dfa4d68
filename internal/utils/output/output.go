// Package output writes a reconciled table to disk in one of several formats.
// Every writer goes through a temporary file in the destination directory
// that is renamed into place, so a failed export leaves no partial artifact.
package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/datalayer/internal/schema"
)

// DefaultFilename is the artifact name used when no output path is given.
const DefaultFilename = "extracted_data.csv"

// Format identifies an export format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "md"
	FormatSQLite   Format = "sqlite"
)

// Formats lists the supported formats.
var Formats = []Format{FormatCSV, FormatJSON, FormatHTML, FormatMarkdown, FormatSQLite}

// ParseFormat resolves a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "html", "htm":
		return FormatHTML, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "sqlite", "sqlite3", "db":
		return FormatSQLite, nil
	}
	return "", fmt.Errorf("unsupported output format %q", s)
}

// FormatFromPath infers the format from the file extension, defaulting to CSV.
func FormatFromPath(path string) Format {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if f, err := ParseFormat(ext); err == nil {
		return f
	}
	return FormatCSV
}

// Save writes table to path. An empty format is inferred from path.
func Save(table *schema.Table, path string, format Format) error {
	if path == "" {
		path = DefaultFilename
	}
	if format == "" {
		format = FormatFromPath(path)
	}

	var err error
	switch format {
	case FormatCSV:
		err = writeAtomic(path, func(w io.Writer) error { return WriteCSV(w, table) })
	case FormatJSON:
		err = writeAtomic(path, func(w io.Writer) error { return WriteJSON(w, table) })
	case FormatHTML:
		err = writeAtomic(path, func(w io.Writer) error { return WriteHTML(w, table) })
	case FormatMarkdown:
		err = writeAtomic(path, func(w io.Writer) error { return WriteMarkdown(w, table) })
	case FormatSQLite:
		err = saveSQLite(table, path)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	log.Debug().
		Str("path", path).
		Str("format", string(format)).
		Int("rows", len(table.Rows)).
		Int("columns", len(table.Header)).
		Msg("Export written")
	return nil
}

// writeAtomic streams into a temp file next to path and renames it over path
// only after write succeeded.
func writeAtomic(path string, write func(io.Writer) error) error {
	return replaceAtomic(path, func(tmpName string) error {
		f, err := os.OpenFile(tmpName, os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return err
		}
		bw := bufio.NewWriter(f)
		if err := write(bw); err != nil {
			f.Close()
			return err
		}
		if err := bw.Flush(); err != nil {
			f.Close()
			return err
		}
		if err := f.Sync(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	})
}

// replaceAtomic reserves a temp file in path's directory, lets fill populate
// it by name, then renames it over path. The temp file is removed on failure.
func replaceAtomic(path string, fill func(tmpName string) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if err = tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if err = fill(tmpName); err != nil {
		return err
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
