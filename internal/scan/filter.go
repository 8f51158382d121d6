// Package scan implements the directory traversal that selects candidate files
// for assembly: extension filtering, folder exclusion, deterministic ordering,
// and cooperative cancellation.
package scan

import (
	"path/filepath"
	"strings"
)

// NormalizeExtensions lowercases the provided extensions, strips any leading
// dot, drops empty entries, and removes duplicates while preserving order.
func NormalizeExtensions(extensions []string) []string {
	encountered := make(map[string]struct{})
	normalized := make([]string, 0, len(extensions))
	for _, extension := range extensions {
		cleaned := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(extension), "."))
		if cleaned == "" {
			continue
		}
		if _, exists := encountered[cleaned]; exists {
			continue
		}
		encountered[cleaned] = struct{}{}
		normalized = append(normalized, cleaned)
	}
	return normalized
}

// MatchesExtension reports whether the file name carries one of the provided
// extensions. The extension is the text after the last dot of the base name;
// names without a dot, or with nothing after it, never match. Comparison is
// case-insensitive. Extensions are expected in normalized form.
func MatchesExtension(fileName string, extensions []string) bool {
	baseName := filepath.Base(fileName)
	lastDotIndex := strings.LastIndex(baseName, ".")
	if lastDotIndex < 0 || lastDotIndex == len(baseName)-1 {
		return false
	}
	fileExtension := strings.ToLower(baseName[lastDotIndex+1:])
	for _, extension := range extensions {
		if fileExtension == extension {
			return true
		}
	}
	return false
}
