package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sevanw/episodic/internal/paths"
)

func planPath() (string, error) {
	dir, err := paths.PlansDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "plan.json"), nil
}

// Save writes the plan to disk, replacing any previously saved plan. The
// creation timestamp is stamped on first save.
func Save(p *Plan) error {
	path, err := planPath()
	if err != nil {
		return err
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create plans directory: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write plan file: %w", err)
	}
	return nil
}

// Load reads the saved plan. A missing file is not an error; it returns
// (nil, nil) so callers can distinguish "no plan" from corruption.
func Load() (*Plan, error) {
	path, err := planPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse plan file: %w", err)
	}
	return &p, nil
}

// Delete removes the saved plan file if present
func Delete() error {
	path, err := planPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete plan file: %w", err)
	}
	return nil
}
