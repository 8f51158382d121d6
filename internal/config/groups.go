package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// GroupsFileName is the store of named extension groups in the working directory.
const GroupsFileName = "filetypes.json"

// ExtensionGroup is one named, reusable set of file extensions.
type ExtensionGroup struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
}

// DefaultExtensionGroups returns the groups seeded on first run.
func DefaultExtensionGroups() []ExtensionGroup {
	return []ExtensionGroup{
		{Name: "Go", Extensions: []string{"go", "mod"}},
		{Name: "Rust", Extensions: []string{"rs"}},
		{Name: "JSON", Extensions: []string{"json"}},
		{Name: "Lua", Extensions: []string{"lua"}},
		{Name: "Web", Extensions: []string{"html", "css", "js", "ts"}},
	}
}

// LoadExtensionGroups reads the group store at path. A missing store is seeded
// with DefaultExtensionGroups and persisted so later runs see the same file
// the user can edit.
func LoadExtensionGroups(path string) ([]ExtensionGroup, error) {
	data, readError := os.ReadFile(path)
	if readError != nil {
		if os.IsNotExist(readError) {
			defaults := DefaultExtensionGroups()
			if saveError := SaveExtensionGroups(path, defaults); saveError != nil {
				return nil, saveError
			}
			return defaults, nil
		}
		return nil, fmt.Errorf("read extension groups from %s: %w", path, readError)
	}

	var groups []ExtensionGroup
	if decodeError := json.Unmarshal(data, &groups); decodeError != nil {
		return nil, fmt.Errorf("decode extension groups from %s: %w", path, decodeError)
	}
	return groups, nil
}

// SaveExtensionGroups writes the complete group list to path, replacing any
// previous contents.
func SaveExtensionGroups(path string, groups []ExtensionGroup) error {
	data, encodeError := json.MarshalIndent(groups, "", "  ")
	if encodeError != nil {
		return fmt.Errorf("encode extension groups: %w", encodeError)
	}
	if writeError := os.WriteFile(path, append(data, '\n'), 0o644); writeError != nil {
		return fmt.Errorf("write extension groups to %s: %w", path, writeError)
	}
	return nil
}

// ResolveExtensionGroup returns the extensions of the named group. Name
// comparison is case-insensitive; the first match wins.
func ResolveExtensionGroup(groups []ExtensionGroup, name string) ([]string, bool) {
	for _, group := range groups {
		if strings.EqualFold(group.Name, name) {
			return group.Extensions, true
		}
	}
	return nil, false
}
