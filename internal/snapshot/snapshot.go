// Package snapshot implements the Inventory Writer (C4): persisting the
// canonical tile vector as a recovery snapshot after each successful parse,
// and restoring it on the read side for crash recovery.
package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mouselight/pipeline-scheduler/internal/domain/tile"
)

const (
	snapshotFilename = "pipeline-storage.json"
	backupFilename   = "pipeline-storage.json.last"
)

// row is the on-disk encoding of one tile-status row. Field names are fixed
// by the snapshot format; renaming any of them breaks round-trip compatibility
// with snapshots written by a previous run.
type row struct {
	RelativePath string   `json:"relativePath"`
	Index        *int64   `json:"index,omitempty"`
	TileName     string   `json:"tileName"`
	LatX         *float64 `json:"latX,omitempty"`
	LatY         *float64 `json:"latY,omitempty"`
	LatZ         *float64 `json:"latZ,omitempty"`
	StepX        *float64 `json:"stepX,omitempty"`
	StepY        *float64 `json:"stepY,omitempty"`
	StepZ        *float64 `json:"stepZ,omitempty"`

	PrevStageStatus int `json:"prevStageStatus"`
	ThisStageStatus int `json:"thisStageStatus"`

	Duration   float64 `json:"duration"`
	CPUHigh    float64 `json:"cpuHigh"`
	MemoryHigh float64 `json:"memoryHigh"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func rowFromTile(r tile.Row) row {
	return row{
		RelativePath:    r.RelativePath,
		Index:           r.Index,
		TileName:        r.TileName,
		LatX:            r.LatX,
		LatY:            r.LatY,
		LatZ:            r.LatZ,
		StepX:           r.StepX,
		StepY:           r.StepY,
		StepZ:           r.StepZ,
		PrevStageStatus: int(r.PrevStageStatus),
		ThisStageStatus: int(r.ThisStageStatus),
		Duration:        r.Duration,
		CPUHigh:         r.CPUHigh,
		MemoryHigh:      r.MemoryHigh,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func (r row) toTile() tile.Row {
	return tile.Row{
		RelativePath:    r.RelativePath,
		Index:           r.Index,
		TileName:        r.TileName,
		LatX:            r.LatX,
		LatY:            r.LatY,
		LatZ:            r.LatZ,
		StepX:           r.StepX,
		StepY:           r.StepY,
		StepZ:           r.StepZ,
		PrevStageStatus: tile.StageStatus(r.PrevStageStatus),
		ThisStageStatus: tile.StageStatus(r.ThisStageStatus),
		Duration:        r.Duration,
		CPUHigh:         r.CPUHigh,
		MemoryHigh:      r.MemoryHigh,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// Write implements the three-step procedure of spec §4.4. It is called after
// every successful inventory parse, including an empty tile vector.
//
// The steps are not required to be atomic as a whole (a crash between them
// leaves either file in a valid, individually-readable state); only the
// final os.Rename that produces pipeline-storage.json is atomic.
func Write(root string, rows []tile.Row) error {
	snapshotPath := filepath.Join(root, snapshotFilename)
	backupPath := filepath.Join(root, backupFilename)

	if err := copyIfExists(snapshotPath, backupPath); err != nil {
		return fmt.Errorf("snapshot: back up previous snapshot: %w", err)
	}

	encoded := make([]row, 0, len(rows))
	for _, r := range rows {
		encoded = append(encoded, rowFromTile(r))
	}

	data, err := json.MarshalIndent(encoded, "", "  ")
	if err != nil {
		return fmt.Errorf("snapshot: marshal tile vector: %w", err)
	}

	tmpPath := snapshotPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("snapshot: write temporary file: %w", err)
	}
	if err := os.Rename(tmpPath, snapshotPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("snapshot: rename temporary file: %w", err)
	}

	return nil
}

// Read parses a snapshot previously produced by Write, returning the
// canonical tile vector unchanged (spec §8 property 4, snapshot round-trip).
// A missing snapshot is not an error; it returns a nil slice.
func Read(root string) ([]tile.Row, error) {
	path := filepath.Join(root, snapshotFilename)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %s: %w", path, err)
	}

	var rows []row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("snapshot: parse %s: %w", path, err)
	}

	result := make([]tile.Row, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.toTile())
	}
	return result, nil
}

func copyIfExists(src, dst string) error {
	in, err := os.Open(src)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
