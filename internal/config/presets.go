package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// PresetsFileName is the store of named trailer presets in the working directory.
const PresetsFileName = "presets.json"

// Preset is one named block of reusable trailer text.
type Preset struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// DefaultPresets returns the presets seeded on first run.
func DefaultPresets() []Preset {
	return []Preset{
		{
			Name: "Explain Changes",
			Text: "Provide context above and below every suggested code change and mark each change with a clear temporary comment.",
		},
		{
			Name: "Create Readme",
			Text: "Write a README.md for the project above, covering purpose, installation, usage examples, and configuration.",
		},
	}
}

// LoadPresets reads the preset store at path, seeding and persisting
// DefaultPresets when the store does not exist yet.
func LoadPresets(path string) ([]Preset, error) {
	data, readError := os.ReadFile(path)
	if readError != nil {
		if os.IsNotExist(readError) {
			defaults := DefaultPresets()
			if saveError := SavePresets(path, defaults); saveError != nil {
				return nil, saveError
			}
			return defaults, nil
		}
		return nil, fmt.Errorf("read presets from %s: %w", path, readError)
	}

	var presets []Preset
	if decodeError := json.Unmarshal(data, &presets); decodeError != nil {
		return nil, fmt.Errorf("decode presets from %s: %w", path, decodeError)
	}
	return presets, nil
}

// SavePresets writes the complete preset list to path, replacing any previous
// contents.
func SavePresets(path string, presets []Preset) error {
	data, encodeError := json.MarshalIndent(presets, "", "  ")
	if encodeError != nil {
		return fmt.Errorf("encode presets: %w", encodeError)
	}
	if writeError := os.WriteFile(path, append(data, '\n'), 0o644); writeError != nil {
		return fmt.Errorf("write presets to %s: %w", path, writeError)
	}
	return nil
}

// ResolvePreset returns the text of the named preset. Name comparison is
// case-insensitive; the first match wins.
func ResolvePreset(presets []Preset, name string) (string, bool) {
	for _, preset := range presets {
		if strings.EqualFold(preset.Name, name) {
			return preset.Text, true
		}
	}
	return "", false
}

// CombineTrailer joins the selected preset texts and the free-form notes into
// one trailer: each non-empty piece is trimmed and separated by a blank line,
// the way the pieces read when pasted under the trailer header. An all-empty
// input yields an empty trailer.
func CombineTrailer(presetTexts []string, notes string) string {
	var pieces []string
	for _, text := range presetTexts {
		trimmed := strings.TrimSpace(text)
		if trimmed != "" {
			pieces = append(pieces, trimmed)
		}
	}
	if trimmedNotes := strings.TrimSpace(notes); trimmedNotes != "" {
		pieces = append(pieces, trimmedNotes)
	}
	return strings.Join(pieces, "\n\n")
}
