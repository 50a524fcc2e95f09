package ops

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/kailabs/kapsel/internal/capsule"
	"github.com/kailabs/kapsel/internal/config"
	"github.com/kailabs/kapsel/internal/db"
	"github.com/kailabs/kapsel/internal/errors"
	"github.com/kailabs/kapsel/internal/index"
)

// ImportMode controls id collision behavior during import.
type ImportMode string

const (
	ImportModeError ImportMode = "error" // fail on the first existing id
	ImportModeSkip  ImportMode = "skip"  // skip records whose id exists
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string     // required, JSONL export file
	Mode ImportMode // default: error
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors,omitempty"`
}

// ImportError represents an error that occurred during import.
type ImportError struct {
	Line    int    `json:"line"`
	ID      string `json:"id,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Import loads capsules from a JSONL export file. Imported capsules are
// inserted and registered in the keyword index; ids are preserved.
func Import(database *sql.DB, idx *index.Index, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if input.Path == "" {
		return nil, errors.NewValidation("path is required")
	}
	mode := input.Mode
	if mode == "" {
		mode = ImportModeError
	}
	if mode != ImportModeError && mode != ImportModeSkip {
		return nil, errors.NewValidation("mode must be one of: error, skip")
	}

	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		if _, ok := err.(*errors.KapselError); ok {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	output := &ImportOutput{}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNum := 0
	sawHeader := false
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record capsule.ExportRecord
		if err := json.Unmarshal(line, &record); err != nil {
			if mode == ImportModeError {
				return nil, errors.NewValidation(fmt.Sprintf("line %d: invalid JSON: %v", lineNum, err))
			}
			output.Errors = append(output.Errors, ImportError{
				Line: lineNum, Code: "PARSE_ERROR",
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			continue
		}

		// First header line identifies the file; stray headers are ignored
		if record.KapselExport {
			sawHeader = true
			continue
		}
		if lineNum == 1 && !sawHeader {
			return nil, errors.NewValidation("not a kapsel export file (missing header line)")
		}

		if record.ID == "" {
			if mode == ImportModeError {
				return nil, errors.NewValidation(fmt.Sprintf("line %d: record has no id", lineNum))
			}
			output.Errors = append(output.Errors, ImportError{
				Line: lineNum, Code: "MISSING_ID", Message: "record has no id",
			})
			continue
		}

		c := record.ToCapsule()
		if err := db.Insert(database, c); err != nil {
			if errors.Is(err, errors.ErrConflict) {
				if mode == ImportModeSkip {
					output.Skipped++
					continue
				}
				return nil, errors.NewConflict(c.ID)
			}
			return nil, err
		}

		idx.Add(c.ID, c.Keywords())
		output.Imported++
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to read import file: %w", err))
	}

	return output, nil
}
