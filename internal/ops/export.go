package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/kailabs/kapsel/internal/capsule"
	"github.com/kailabs/kapsel/internal/config"
	"github.com/kailabs/kapsel/internal/db"
	"github.com/kailabs/kapsel/internal/errors"
)

// ExportFormat selects the export file format.
type ExportFormat string

const (
	ExportJSONL    ExportFormat = "jsonl"    // header + one record per line
	ExportMarkdown ExportFormat = "markdown" // single readable collection
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path   string       // optional, default: ~/.kapsel/exports/capsules-<timestamp>.<ext>
	Format ExportFormat // default: jsonl
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Format     string `json:"format"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// ExportHeader represents the header line in a JSONL export file.
type ExportHeader struct {
	KapselExport  bool   `json:"_kapsel_export"`
	SchemaVersion string `json:"schema_version"`
	ExportedAt    int64  `json:"exported_at"`
}

// ExportSchemaVersion identifies the JSONL export layout.
const ExportSchemaVersion = "1.0"

// Export writes all capsules to a file in insertion order. The file is
// written to a temp path and atomically renamed into place, so a failed
// export never clobbers an existing file.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	format := input.Format
	if format == "" {
		format = ExportJSONL
	}
	if format != ExportJSONL && format != ExportMarkdown {
		return nil, errors.NewValidation("format must be one of: jsonl, markdown")
	}

	now := time.Now()
	exportedAt := now.Unix()

	exportPath := input.Path
	if exportPath == "" {
		var err error
		exportPath, err = defaultExportPath(format, now)
		if err != nil {
			return nil, err
		}
	}

	// Validate ALL paths (user-provided and default) before touching disk
	if err := ValidatePath(exportPath, PathCheckWrite, cfg); err != nil {
		return nil, err
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	// Clean up temp file on failure (original file is preserved)
	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	var count int
	switch format {
	case ExportJSONL:
		count, err = writeJSONL(ctx, database, file, exportedAt)
	case ExportMarkdown:
		count, err = writeMarkdownCollection(ctx, database, file)
	}
	if err != nil {
		return nil, err
	}

	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}

	// Close before atomic replace (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// Check if destination is a symlink (os.Rename would follow it)
	if info, err := os.Lstat(exportPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInternal(fmt.Errorf("export path is a symlink"))
	}

	if err := os.Rename(tempPath, exportPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(exportPath); statErr == nil {
				return nil, errors.NewValidation("export destination already exists; choose a new path or delete the existing file")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return &ExportOutput{
		Path:       exportPath,
		Format:     string(format),
		Count:      count,
		ExportedAt: exportedAt,
	}, nil
}

// writeJSONL streams capsules as JSONL: a header line followed by one
// export record per capsule.
func writeJSONL(ctx context.Context, database *sql.DB, w io.Writer, exportedAt int64) (int, error) {
	header := ExportHeader{
		KapselExport:  true,
		SchemaVersion: ExportSchemaVersion,
		ExportedAt:    exportedAt,
	}
	if err := writeJSONLine(w, header); err != nil {
		return 0, err
	}

	rows, err := db.StreamForExport(ctx, database)
	if err != nil {
		if ctx.Err() != nil {
			return 0, errors.NewCancelled("export")
		}
		return 0, err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		select {
		case <-ctx.Done():
			return 0, errors.NewCancelled("export")
		default:
		}

		c, err := db.ScanCapsuleFromRows(rows)
		if err != nil {
			return 0, errors.NewInternal(err)
		}
		if err := writeJSONLine(w, c.ToExportRecord()); err != nil {
			return 0, err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return 0, errors.NewInternal(err)
	}

	return count, nil
}

// writeMarkdownCollection renders every capsule to one markdown document.
func writeMarkdownCollection(ctx context.Context, database *sql.DB, w io.Writer) (int, error) {
	rows, err := db.StreamForExport(ctx, database)
	if err != nil {
		if ctx.Err() != nil {
			return 0, errors.NewCancelled("export")
		}
		return 0, err
	}
	defer rows.Close()

	var capsules []*capsule.Capsule
	for rows.Next() {
		select {
		case <-ctx.Done():
			return 0, errors.NewCancelled("export")
		default:
		}

		c, err := db.ScanCapsuleFromRows(rows)
		if err != nil {
			return 0, errors.NewInternal(err)
		}
		capsules = append(capsules, c)
	}
	if err := rows.Err(); err != nil {
		return 0, errors.NewInternal(err)
	}

	if _, err := fmt.Fprintf(w, "# Knowledge Capsule Collection\n\nTotal: %d capsules\n\n", len(capsules)); err != nil {
		return 0, errors.NewInternal(err)
	}
	for _, c := range capsules {
		if _, err := io.WriteString(w, c.ToMarkdown()); err != nil {
			return 0, errors.NewInternal(err)
		}
		if _, err := io.WriteString(w, "\n---\n\n"); err != nil {
			return 0, errors.NewInternal(err)
		}
	}

	return len(capsules), nil
}

// writeJSONLine marshals v and writes it followed by a newline.
func writeJSONLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.NewInternal(err)
	}
	if _, err := w.Write(data); err != nil {
		return errors.NewInternal(err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// defaultExportPath generates the default export path.
// Format: ~/.kapsel/exports/capsules-<timestamp>.jsonl (or .md)
func defaultExportPath(format ExportFormat, now time.Time) (string, error) {
	exportsDir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}

	ext := ".jsonl"
	if format == ExportMarkdown {
		ext = ".md"
	}

	timestamp := now.Format("2006-01-02T150405")
	return filepath.Join(exportsDir, fmt.Sprintf("capsules-%s%s", timestamp, ext)), nil
}
