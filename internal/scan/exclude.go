package scan

import "github.com/tagcat/tagcat/internal/utils"

// IsExcluded reports whether a directory name matches one of the exclusion
// entries. The comparison is an exact, case-sensitive match against a single
// path segment; exclusions are not globs. An empty exclusion list excludes
// nothing.
func IsExcluded(directoryName string, exclusions []string) bool {
	return utils.ContainsString(exclusions, directoryName)
}
