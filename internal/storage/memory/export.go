package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ExportVersion is bumped whenever the JSON layout changes.
const ExportVersion = 1

// Export is the root JSON structure
type Export struct {
	Version    int            `json:"version"`
	Engagement string         `json:"engagement"`
	DataFile   string         `json:"dataFile,omitempty"`
	Seed       uint64         `json:"seed"`
	StartTime  time.Time      `json:"startTime"`
	EndTick    uint64         `json:"endTick"`
	Survivors  map[string]int `json:"survivors"`
	Ships      []ShipJSON     `json:"ships"`
	Events     [][]any        `json:"events"`
}

// ShipJSON is one ship's shots and formation track
type ShipJSON struct {
	Name  string  `json:"name"`
	Team  string  `json:"team"`
	Shots [][]any `json:"shots"` // [tick, hardpoint, weapon, [x, y], angle, [vx, vy]]
	Slots [][]any `json:"slots"` // [tick, index, [x, y]]
}

// exportJSON writes the engagement data to a (gzipped) JSON file
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	name := strings.NewReplacer(" ", "_", ":", "_", "/", "_").Replace(b.engagement.Name)
	timestamp := b.engagement.StartTime.Format("20060102_150405")

	filename := fmt.Sprintf("%s_%s.json", name, timestamp)
	if b.cfg.CompressOutput {
		filename += ".gz"
	}
	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := writeExport(outputPath, b.cfg.CompressOutput, export); err != nil {
		return err
	}

	b.lastExportPath = outputPath
	return nil
}

// event is an export row with its sort key
type event struct {
	tick uint64
	row  []any
}

func (b *Backend) buildExport() Export {
	export := Export{
		Version:    ExportVersion,
		Engagement: b.engagement.Name,
		DataFile:   b.engagement.DataFile,
		Seed:       b.engagement.Seed,
		StartTime:  b.engagement.StartTime.UTC(),
		EndTick:    b.engagement.EndTick,
		Survivors:  b.survivors,
		Ships:      make([]ShipJSON, 0, len(b.order)),
		Events:     make([][]any, 0),
	}
	if export.Survivors == nil {
		export.Survivors = map[string]int{}
	}

	var events []event
	for _, name := range b.order {
		rec := b.ships[name]
		ship := ShipJSON{
			Name:  rec.Name,
			Team:  rec.Team,
			Shots: make([][]any, 0, len(rec.Shots)),
			Slots: make([][]any, 0, len(rec.Slots)),
		}
		for _, s := range rec.Shots {
			ship.Shots = append(ship.Shots, []any{
				s.Tick,
				s.Hardpoint,
				s.Weapon,
				[]float64{s.Origin.X, s.Origin.Y},
				s.Angle,
				[]float64{s.Velocity.X, s.Velocity.Y},
			})
		}
		for _, s := range rec.Slots {
			ship.Slots = append(ship.Slots, []any{
				s.Tick,
				s.Index,
				[]float64{s.Position.X, s.Position.Y},
			})
		}
		export.Ships = append(export.Ships, ship)

		// Format: [tick, "special", ship, weapon, kind, success]
		for _, s := range rec.Specials {
			events = append(events, event{s.Tick, []any{s.Tick, "special", s.Ship, s.Weapon, string(s.Kind), s.Success}})
		}
		// Format: [tick, "jam", ship, hardpoint, weapon]
		for _, j := range rec.Jams {
			events = append(events, event{j.Tick, []any{j.Tick, "jam", j.Ship, j.Hardpoint, j.Weapon}})
		}
	}

	// Format: [tick, "hit", victim, [shooter, weapon], damage, hullLeft]
	// followed by [tick, "destroyed", victim, [shooter, weapon]]
	for _, h := range b.hits {
		events = append(events, event{h.Tick, []any{h.Tick, "hit", h.Victim, []any{h.Shooter, h.Weapon}, h.Damage, h.HullLeft}})
		if h.Destroyed {
			events = append(events, event{h.Tick, []any{h.Tick, "destroyed", h.Victim, []any{h.Shooter, h.Weapon}}})
		}
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].tick < events[j].tick })
	for _, e := range events {
		export.Events = append(export.Events, e.row)
	}
	return export
}

func writeExport(path string, compress bool, data Export) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	var w io.Writer = f
	if compress {
		gzWriter := gzip.NewWriter(f)
		defer gzWriter.Close()
		w = gzWriter
	}
	return json.NewEncoder(w).Encode(data)
}

// ReadExport loads an export file written by the backend. Files ending in
// .gz are decompressed.
func ReadExport(path string) (Export, error) {
	var export Export

	f, err := os.Open(path)
	if err != nil {
		return export, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gzReader, err := gzip.NewReader(f)
		if err != nil {
			return export, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gzReader.Close()
		r = gzReader
	}

	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return export, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return export, nil
}
