// Package export converts planner data to and from files: JSON dumps,
// iCalendar schedules, multi-profile backups and encrypted envelopes.
package export

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/existflow/semplan/internal/migrate"
	"github.com/existflow/semplan/internal/model"
)

var (
	ErrInvalidImport = errors.New("file does not contain planner data")
	ErrInvalidBackup = errors.New("file is not a planner backup")
)

// JSON returns the pretty-printed dataset
func JSON(d model.AppData) ([]byte, error) {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode data: %w", err)
	}
	return b, nil
}

// ParseImport accepts a JSON object with a semesters array at the top level
// or nested under "data". The result is migrated.
func ParseImport(b []byte) (model.AppData, error) {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return model.AppData{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	doc, ok := raw.(map[string]any)
	if !ok {
		return model.AppData{}, ErrInvalidImport
	}
	if hasSemesters(doc) {
		return migrate.Migrate(doc), nil
	}
	if nested, ok := doc["data"].(map[string]any); ok && hasSemesters(nested) {
		return migrate.Migrate(nested), nil
	}
	return model.AppData{}, ErrInvalidImport
}

func hasSemesters(doc map[string]any) bool {
	_, ok := doc["semesters"].([]any)
	return ok
}

// EncodeBackup returns the pretty-printed backup
func EncodeBackup(b model.Backup) ([]byte, error) {
	out, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return out, nil
}

// DecodeBackup parses a backup and migrates every profile's data.
// Profiles without an id are skipped.
func DecodeBackup(data []byte) (model.Backup, error) {
	var doc struct {
		Version    int    `json:"version"`
		ExportDate string `json:"exportDate"`
		Profiles   []struct {
			ID   string          `json:"id"`
			Name string          `json:"name"`
			Data json.RawMessage `json:"data"`
		} `json:"profiles"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.Backup{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if doc.Version < 1 || doc.Version > model.BackupVersion {
		return model.Backup{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidBackup, doc.Version)
	}

	out := model.Backup{Version: doc.Version, ExportDate: doc.ExportDate}
	for _, p := range doc.Profiles {
		if p.ID == "" {
			continue
		}
		d := model.DefaultAppData()
		if len(p.Data) > 0 {
			if parsed, err := migrate.Parse(p.Data); err == nil {
				d = parsed
			}
		}
		name := p.Name
		if name == "" {
			name = p.ID
		}
		out.Profiles = append(out.Profiles, model.BackupProfile{ID: p.ID, Name: name, Data: d})
	}
	if len(out.Profiles) == 0 {
		return model.Backup{}, fmt.Errorf("%w: no profiles", ErrInvalidBackup)
	}
	return out, nil
}
