// Package assemble turns the candidate files of one scan into the final tagged
// text document: each file's content wrapped between an open and a close tag
// derived from its relative path, followed by an optional trailer section.
package assemble

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidTag is returned when a relative path cannot serve as a tag because
// it contains one of the tag delimiter characters.
var ErrInvalidTag = errors.New("path contains tag delimiter characters")

const errorInvalidTagFormat = "tag for %q: %w"

// TagFor validates a forward-slash relative path for use as a tag. The open
// tag is "<path>" and the close tag is "</path>"; a path containing a raw
// '<' or '>' would make the block boundaries ambiguous, so such paths are
// rejected with ErrInvalidTag and the caller skips the file.
func TagFor(relativePath string) (string, error) {
	if strings.ContainsAny(relativePath, "<>") {
		return "", fmt.Errorf(errorInvalidTagFormat, relativePath, ErrInvalidTag)
	}
	return relativePath, nil
}
