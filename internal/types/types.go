// Package types defines every cross-package data structure used by the tagcat CLI.
package types

// Binary content policies accepted by the assembler.
const (
	// BinaryPolicySkip omits files whose content is not valid UTF-8 and records a warning.
	BinaryPolicySkip = "skip"
	// BinaryPolicyReplace substitutes undecodable bytes with the Unicode replacement character.
	BinaryPolicyReplace = "replace"
)

// ScanRequest captures every input of one scan, resolved before the pipeline starts.
type ScanRequest struct {
	// Root is the absolute path of the directory to scan. It must exist and be a directory.
	Root string
	// Extensions lists the lowercase, dot-free file extensions to include.
	Extensions []string
	// Exclusions lists folder names whose subtrees are pruned from traversal.
	Exclusions []string
	// Recursive controls whether subdirectories are entered.
	Recursive bool
}

// CandidateFile is one file selected by traversal, identified both absolutely and
// relative to the scan root. The relative path uses forward slashes on every host.
type CandidateFile struct {
	AbsolutePath string
	RelativePath string
}

// Warning records one skipped entry together with the reason it was skipped.
type Warning struct {
	Path   string
	Reason string
}

// Document is the complete assembled artifact of one scan.
type Document struct {
	// Text is the full output: tagged file blocks followed by the optional trailer.
	Text string
	// IncludedFiles counts the file blocks present in Text.
	IncludedFiles int
	// Warnings lists every entry that was skipped during traversal or assembly.
	Warnings []Warning
	// Incomplete is true when the scan was cancelled before finishing. A cancelled
	// run is never reported as success even though Text holds a valid prefix.
	Incomplete bool
}
