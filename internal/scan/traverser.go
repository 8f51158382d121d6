package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tagcat/tagcat/internal/types"
	"github.com/tagcat/tagcat/internal/utils"
)

// ErrNotADirectory is returned when the scan root is missing or is not a directory.
var ErrNotADirectory = errors.New("path is not a directory")

const (
	warningReadDirectoryFormat  = "reading directory: %v"
	warningResolveSymlinkFormat = "resolving symlink: %v"
	warningSymlinkCycleMessage  = "symlink cycle detected, not re-entering directory"
	errorRootValidationFormat   = "scan root %q: %w"
	errorCanonicalizeRootFormat = "canonicalizing scan root %q: %w"
	errorEventChannelNilMessage = "scan: event channel is nil"
	errorEmptyRootMessage       = "scan: root path is empty"
)

type emitter struct {
	ctx context.Context
	out chan<- Event
}

func newEmitter(ctx context.Context, out chan<- Event) *emitter {
	if ctx == nil {
		ctx = context.Background()
	}
	return &emitter{ctx: ctx, out: out}
}

func (e *emitter) send(event Event) error {
	if e.out == nil {
		return errors.New(errorEventChannelNilMessage)
	}
	select {
	case <-e.ctx.Done():
		return e.ctx.Err()
	case e.out <- event:
		return nil
	}
}

func (e *emitter) warn(path, reason string) error {
	return e.send(Event{
		Kind:    EventKindWarning,
		Path:    path,
		Warning: &types.Warning{Path: path, Reason: reason},
	})
}

// walker carries the fixed request plus the canonical directory identities on
// the current descent path, used to refuse re-entering a directory a symlink
// cycle leads back into.
type walker struct {
	request types.ScanRequest
	emitter *emitter
	onPath  map[string]struct{}
}

// Stream walks the request's root and produces candidate files on out in
// deterministic order: entries of every directory are visited in ascending
// name order, and excluded directories are pruned together with their entire
// subtrees. The sequence is lazy; nothing is buffered ahead of the consumer.
//
// Stream fails with ErrNotADirectory before producing any event when the root
// is missing or not a directory. Per-entry failures (unreadable directories,
// dangling symlinks) degrade to warning events and the walk continues. The
// context is checked between directory visits; a cancelled context stops the
// walk cleanly and returns the context error.
func Stream(ctx context.Context, request types.ScanRequest, out chan<- Event) error {
	if request.Root == "" {
		return errors.New(errorEmptyRootMessage)
	}

	if !utils.IsDirectory(request.Root) {
		return fmt.Errorf(errorRootValidationFormat, request.Root, ErrNotADirectory)
	}

	streamEmitter := newEmitter(ctx, out)
	if sendError := streamEmitter.send(Event{Kind: EventKindStart, Path: request.Root}); sendError != nil {
		return sendError
	}

	canonicalRoot, canonicalizeError := filepath.EvalSymlinks(request.Root)
	if canonicalizeError != nil {
		return fmt.Errorf(errorCanonicalizeRootFormat, request.Root, canonicalizeError)
	}

	scanWalker := &walker{
		request: request,
		emitter: streamEmitter,
		onPath:  map[string]struct{}{canonicalRoot: {}},
	}
	if walkError := scanWalker.walkDirectory(ctx, request.Root); walkError != nil {
		return walkError
	}

	return streamEmitter.send(Event{Kind: EventKindDone, Path: request.Root})
}

// walkDirectory visits one directory level: files are tested against the
// extension set and emitted in name order, subdirectories are pruned by the
// exclusion set and entered only in recursive mode.
func (scanWalker *walker) walkDirectory(ctx context.Context, directoryPath string) error {
	if contextError := ctx.Err(); contextError != nil {
		return contextError
	}

	directoryEntries, readDirectoryError := os.ReadDir(directoryPath)
	if readDirectoryError != nil {
		return scanWalker.emitter.warn(scanWalker.relativePath(directoryPath), fmt.Sprintf(warningReadDirectoryFormat, readDirectoryError))
	}

	for _, directoryEntry := range directoryEntries {
		entryPath := filepath.Join(directoryPath, directoryEntry.Name())

		entryIsDirectory, resolveError := resolveEntryType(entryPath, directoryEntry)
		if resolveError != nil {
			if warnError := scanWalker.emitter.warn(scanWalker.relativePath(entryPath), fmt.Sprintf(warningResolveSymlinkFormat, resolveError)); warnError != nil {
				return warnError
			}
			continue
		}

		if entryIsDirectory {
			if walkError := scanWalker.enterDirectory(ctx, entryPath, directoryEntry.Name()); walkError != nil {
				return walkError
			}
			continue
		}

		if !MatchesExtension(directoryEntry.Name(), scanWalker.request.Extensions) {
			continue
		}

		candidate := &types.CandidateFile{
			AbsolutePath: entryPath,
			RelativePath: utils.RelativePathOrSelf(entryPath, scanWalker.request.Root),
		}
		if sendError := scanWalker.emitter.send(Event{Kind: EventKindFile, Path: entryPath, File: candidate}); sendError != nil {
			return sendError
		}
	}

	return nil
}

// enterDirectory applies exclusion and recursion rules before descending. A
// directory already present on the current descent path, reached again through
// a symlink, is reported and skipped instead of recursed into.
func (scanWalker *walker) enterDirectory(ctx context.Context, directoryPath, directoryName string) error {
	if IsExcluded(directoryName, scanWalker.request.Exclusions) {
		return nil
	}
	if !scanWalker.request.Recursive {
		return nil
	}

	canonicalPath, canonicalizeError := filepath.EvalSymlinks(directoryPath)
	if canonicalizeError != nil {
		return scanWalker.emitter.warn(scanWalker.relativePath(directoryPath), fmt.Sprintf(warningResolveSymlinkFormat, canonicalizeError))
	}
	if _, alreadyOnPath := scanWalker.onPath[canonicalPath]; alreadyOnPath {
		return scanWalker.emitter.warn(scanWalker.relativePath(directoryPath), warningSymlinkCycleMessage)
	}

	scanWalker.onPath[canonicalPath] = struct{}{}
	walkError := scanWalker.walkDirectory(ctx, directoryPath)
	delete(scanWalker.onPath, canonicalPath)
	return walkError
}

// relativePath rewrites an absolute entry path into the root-relative form
// used everywhere warnings surface, matching the form of candidate tags.
func (scanWalker *walker) relativePath(entryPath string) string {
	return utils.RelativePathOrSelf(entryPath, scanWalker.request.Root)
}

// resolveEntryType reports whether the entry is a directory, following
// symlinks to their target type.
func resolveEntryType(entryPath string, directoryEntry fs.DirEntry) (bool, error) {
	if directoryEntry.Type()&fs.ModeSymlink == 0 {
		return directoryEntry.IsDir(), nil
	}
	targetInfo, statError := os.Stat(entryPath)
	if statError != nil {
		return false, statError
	}
	return targetInfo.IsDir(), nil
}
