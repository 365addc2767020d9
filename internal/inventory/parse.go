package inventory

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/mouselight/pipeline-scheduler/internal/domain/tile"
)

// normalizeRelativePath replaces every backslash with a forward slash, per
// spec §4.2 and the universal property in §8 ("for any input path p, the
// stored relative_path contains no backslash characters").
func normalizeRelativePath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

func tileName(normalizedPath string) string {
	return path.Base(normalizedPath)
}

func pointOrNil(p *pointJSON) (x, y, z *float64) {
	if p == nil {
		return nil, nil, nil
	}
	return p.X, p.Y, p.Z
}

// parseDocument dispatches on the presence of a pipelineFormat field (spec
// §4.2) and returns the corresponding tagged variant.
func parseDocument(raw []byte) (Document, error) {
	if hasPipelineFormat(raw) {
		return parsePipelineDocument(raw)
	}
	return parseDashboardDocument(raw)
}

func parsePipelineDocument(raw []byte) (Document, error) {
	var doc pipelineDocJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse pipeline inventory: %w", err)
	}

	tiles := make([]tile.Tile, 0, len(doc.Tiles))
	for _, t := range doc.Tiles {
		if err := validateTile(t); err != nil {
			return nil, fmt.Errorf("parse pipeline inventory: %w", err)
		}
		normalized := normalizeRelativePath(t.RelativePath)
		x, y, z := pointOrNil(t.Position)
		sx, sy, sz := pointOrNil(t.Step)
		tiles = append(tiles, tile.Tile{
			RelativePath: normalized,
			Index:        t.ID,
			TileName:     tileName(normalized),
			LatX:         x, LatY: y, LatZ: z,
			StepX: sx, StepY: sy, StepZ: sz,
			IsComplete: t.IsComplete,
		})
	}

	result := PipelineDocument{tiles: tiles}
	if doc.Extents != nil {
		result.extent = doc.Extents.toExtent()
		result.hasExtent = true
	}
	return result, nil
}

func parseDashboardDocument(raw []byte) (Document, error) {
	var doc dashboardDocJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse dashboard inventory: %w", err)
	}

	groupNames := make([]string, 0, len(doc.TileMap))
	for name := range doc.TileMap {
		groupNames = append(groupNames, name)
	}
	sort.Strings(groupNames)

	tiles := make([]tile.Tile, 0)
	for _, name := range groupNames {
		for _, t := range doc.TileMap[name] {
			if err := validateTile(t); err != nil {
				return nil, fmt.Errorf("parse dashboard inventory: %w", err)
			}
			normalized := normalizeRelativePath(t.RelativePath)
			x, y, z := pointOrNil(t.Contents.LatticePosition)
			sx, sy, sz := pointOrNil(t.Contents.LatticeStep)
			tiles = append(tiles, tile.Tile{
				RelativePath: normalized,
				Index:        t.ID,
				TileName:     tileName(normalized),
				LatX:         x, LatY: y, LatZ: z,
				StepX: sx, StepY: sy, StepZ: sz,
				IsComplete: t.IsComplete,
			})
		}
	}

	result := DashboardDocument{tiles: tiles}
	if doc.Monitor.Extents != nil {
		result.extent = doc.Monitor.Extents.toExtent()
		result.hasExtent = true
	}
	return result, nil
}
