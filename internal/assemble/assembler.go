package assemble

import (
	"fmt"
	"os"
	"strings"

	"github.com/tagcat/tagcat/internal/scan"
	"github.com/tagcat/tagcat/internal/types"
	"github.com/tagcat/tagcat/internal/utils"
)

// TrailerSectionHeader introduces the free-form notes appended after the file blocks.
const TrailerSectionHeader = "[Additional Commands]"

const (
	warningReadFileFormat       = "reading file: %v"
	warningBinaryContentMessage = "binary or non-UTF-8 content"
	errorUnknownPolicyFormat    = "unknown binary policy %q"
	replacementMarker           = "�"
)

// Options configures one assembly run.
type Options struct {
	// Trailer is appended verbatim under TrailerSectionHeader. When it is
	// empty or whitespace the section is omitted entirely.
	Trailer string
	// BinaryPolicy selects how undecodable file content is handled:
	// types.BinaryPolicySkip drops the file with a warning,
	// types.BinaryPolicyReplace substitutes invalid bytes with U+FFFD and
	// keeps the block. Both policies are deterministic.
	BinaryPolicy string
}

// Assembler consumes scan events in traversal order and accumulates the output
// document. It never fails fatally on a single file: read errors, invalid tags
// and binary content degrade to recorded warnings.
type Assembler struct {
	options       Options
	builder       strings.Builder
	includedFiles int
	warnings      []types.Warning
}

// NewAssembler constructs an Assembler, defaulting the binary policy to skip.
func NewAssembler(options Options) (*Assembler, error) {
	if options.BinaryPolicy == "" {
		options.BinaryPolicy = types.BinaryPolicySkip
	}
	if options.BinaryPolicy != types.BinaryPolicySkip && options.BinaryPolicy != types.BinaryPolicyReplace {
		return nil, fmt.Errorf(errorUnknownPolicyFormat, options.BinaryPolicy)
	}
	return &Assembler{options: options}, nil
}

// Handle processes one scan event. File events append a tagged block, warning
// events are recorded, other kinds carry no payload for assembly.
func (assembler *Assembler) Handle(event scan.Event) error {
	switch event.Kind {
	case scan.EventKindFile:
		if event.File != nil {
			assembler.appendFile(event.File)
		}
	case scan.EventKindWarning:
		if event.Warning != nil {
			assembler.warnings = append(assembler.warnings, *event.Warning)
		}
	}
	return nil
}

// appendFile reads one candidate and emits its block: open tag, newline,
// content, newline, close tag, blank line. A file that cannot be tagged, read
// or decoded contributes a warning instead of a block.
func (assembler *Assembler) appendFile(candidate *types.CandidateFile) {
	tagValue, tagError := TagFor(candidate.RelativePath)
	if tagError != nil {
		assembler.warn(candidate.RelativePath, tagError.Error())
		return
	}

	content, readError := os.ReadFile(candidate.AbsolutePath)
	if readError != nil {
		assembler.warn(candidate.RelativePath, fmt.Sprintf(warningReadFileFormat, readError))
		return
	}

	if utils.IsBinary(content) {
		if assembler.options.BinaryPolicy == types.BinaryPolicySkip {
			assembler.warn(candidate.RelativePath, warningBinaryContentMessage)
			return
		}
		content = []byte(strings.ToValidUTF8(string(content), replacementMarker))
	}

	fmt.Fprintf(&assembler.builder, "<%s>\n%s\n</%s>\n\n", tagValue, content, tagValue)
	assembler.includedFiles++
}

func (assembler *Assembler) warn(path, reason string) {
	assembler.warnings = append(assembler.warnings, types.Warning{Path: path, Reason: reason})
}

// Finalize appends the trailer section when non-empty and returns the complete
// document. The incomplete flag marks a cancelled scan; the returned text is
// then a valid prefix, never a partially written block.
func (assembler *Assembler) Finalize(incomplete bool) types.Document {
	text := assembler.builder.String()
	if strings.TrimSpace(assembler.options.Trailer) != "" {
		trailer := assembler.options.Trailer
		if !strings.HasSuffix(trailer, "\n") {
			trailer += "\n"
		}
		text += TrailerSectionHeader + "\n" + trailer
	}
	return types.Document{
		Text:          text,
		IncludedFiles: assembler.includedFiles,
		Warnings:      assembler.warnings,
		Incomplete:    incomplete,
	}
}
