// Package cli provides the command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tagcat/tagcat/internal/assemble"
	"github.com/tagcat/tagcat/internal/config"
	"github.com/tagcat/tagcat/internal/scan"
	"github.com/tagcat/tagcat/internal/services/clipboard"
	"github.com/tagcat/tagcat/internal/tokenizer"
	"github.com/tagcat/tagcat/internal/types"
	"github.com/tagcat/tagcat/internal/utils"
)

const (
	extensionsFlagName   = "ext"
	groupFlagName        = "group"
	exclusionFlagName    = "exclude"
	recursiveFlagName    = "recursive"
	notesFlagName        = "notes"
	presetFlagName       = "preset"
	clipboardFlagName    = "copy"
	outputFlagName       = "output"
	binaryPolicyFlagName = "binary"
	tokensFlagName       = "tokens"
	modelFlagName        = "model"
	configFlagName       = "config"
	versionFlagName      = "version"
	versionTemplate      = "tagcat version: %s\n"

	rootUse              = "tagcat [path]"
	rootShortDescription = "wrap a directory's files in path tags for pasting into a prompt"
	rootLongDescription  = `tagcat scans a directory, selects files by extension, and concatenates their
contents into one text document. Each file's body is wrapped between <relative/path>
and </relative/path> tags; free-form notes or saved presets are appended under an
[Additional Commands] section. The result is written to a file and optionally
copied to the clipboard.`
	rootUsageExample = `  # Wrap all Go and Rust sources below the current directory
  tagcat --ext go --ext rs -r .

  # Use a named extension group, skip build output, copy the result
  tagcat --group Rust --exclude target -r --copy ~/projects/app

  # Append a saved preset and ad-hoc notes to the trailer
  tagcat --ext go --preset "Create Readme" --notes "focus on the scanner" .`

	groupsUse               = "groups"
	groupsShortDescription  = "list named extension groups"
	presetsUse              = "presets"
	presetsShortDescription = "list named trailer presets"

	extensionsFlagDescription   = "file extension to include (repeatable)"
	groupFlagDescription        = "named extension group from " + config.GroupsFileName
	exclusionFlagDescription    = "folder name to skip entirely (repeatable)"
	recursiveFlagDescription    = "descend into subdirectories"
	notesFlagDescription        = "free-form text appended under the trailer header"
	presetFlagDescription       = "named preset text appended to the trailer (repeatable)"
	clipboardFlagDescription    = "copy the assembled document to the system clipboard"
	outputFlagDescription       = "output file path, or - for stdout"
	binaryPolicyFlagDescription = "binary content policy: skip or replace"
	tokensFlagDescription       = "report the document's token count"
	modelFlagDescription        = "tokenizer model used for token counting"
	configFlagDescription       = "path to a configuration file"
	versionFlagDescription      = "display application version"

	defaultRootPath        = "."
	defaultOutputPath      = "tags_output.txt"
	stdoutOutputPath       = "-"
	outputFileMode         = 0o644
	summaryMessageFormat   = "included %d files, skipped %d"
	warningMessageFormat   = "skipped %s: %s"
	tokensMessageFormat    = "document tokens: %d (%s)"
	documentWrittenFormat  = "wrote %s"
	clipboardCopiedMessage = "copied document to clipboard"

	errorWorkingDirectoryFormat = "unable to determine working directory: %w"
	errorAbsolutePathFormat     = "abs failed for '%s': %w"
	errorUnknownGroupFormat     = "extension group '%s' is not defined in %s"
	errorUnknownPresetFormat    = "preset '%s' is not defined in %s"
	errorNoExtensionsMessage    = "no extensions selected; pass --ext, --group, or configure a default group"
	errorWriteOutputFormat      = "writing output to %s: %w"
	errorClipboardFormat        = "copying to clipboard: %w"
	errorCancelledMessage       = "scan cancelled before completion; partial document written"
)

// Execute runs the tagcat application.
func Execute(loggerInstance *zap.Logger) error {
	rootCommand := createRootCommand(loggerInstance)
	return rootCommand.Execute()
}

// scanOptions stores every flag of the root command.
type scanOptions struct {
	extensions     []string
	groupName      string
	exclusions     []string
	recursive      bool
	notes          string
	presetNames    []string
	clipboardCopy  bool
	outputPath     string
	binaryPolicy   string
	tokensEnabled  bool
	tokenizerModel string
	configPath     string
}

// createRootCommand builds the root Cobra command.
func createRootCommand(loggerInstance *zap.Logger) *cobra.Command {
	var showVersion bool
	var options scanOptions

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Example:      rootUsageExample,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			rootPath := defaultRootPath
			if len(arguments) > 0 {
				rootPath = arguments[0]
			}
			return runScan(command, loggerInstance, rootPath, options)
		},
	}

	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.Flags().StringArrayVar(&options.extensions, extensionsFlagName, nil, extensionsFlagDescription)
	rootCommand.Flags().StringVar(&options.groupName, groupFlagName, "", groupFlagDescription)
	rootCommand.Flags().StringArrayVarP(&options.exclusions, exclusionFlagName, "e", nil, exclusionFlagDescription)
	rootCommand.Flags().BoolVarP(&options.recursive, recursiveFlagName, "r", false, recursiveFlagDescription)
	rootCommand.Flags().StringVar(&options.notes, notesFlagName, "", notesFlagDescription)
	rootCommand.Flags().StringArrayVar(&options.presetNames, presetFlagName, nil, presetFlagDescription)
	rootCommand.Flags().BoolVar(&options.clipboardCopy, clipboardFlagName, false, clipboardFlagDescription)
	rootCommand.Flags().StringVar(&options.outputPath, outputFlagName, "", outputFlagDescription)
	rootCommand.Flags().StringVar(&options.binaryPolicy, binaryPolicyFlagName, "", binaryPolicyFlagDescription)
	rootCommand.Flags().BoolVar(&options.tokensEnabled, tokensFlagName, false, tokensFlagDescription)
	rootCommand.Flags().StringVar(&options.tokenizerModel, modelFlagName, "", modelFlagDescription)
	rootCommand.Flags().StringVar(&options.configPath, configFlagName, "", configFlagDescription)

	rootCommand.AddCommand(
		createGroupsCommand(),
		createPresetsCommand(),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// createGroupsCommand returns the groups subcommand.
func createGroupsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   groupsUse,
		Short: groupsShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			groups, loadError := config.LoadExtensionGroups(config.GroupsFileName)
			if loadError != nil {
				return loadError
			}
			for _, group := range groups {
				fmt.Fprintf(command.OutOrStdout(), "%s: %s\n", group.Name, strings.Join(group.Extensions, ", "))
			}
			return nil
		},
	}
}

// createPresetsCommand returns the presets subcommand.
func createPresetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   presetsUse,
		Short: presetsShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			presets, loadError := config.LoadPresets(config.PresetsFileName)
			if loadError != nil {
				return loadError
			}
			for _, preset := range presets {
				fmt.Fprintf(command.OutOrStdout(), "%s\n", preset.Name)
			}
			return nil
		},
	}
}

// runScan resolves configuration, executes the scan pipeline, and delivers the
// document to the configured sinks.
func runScan(command *cobra.Command, loggerInstance *zap.Logger, rootPath string, options scanOptions) error {
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return fmt.Errorf(errorWorkingDirectoryFormat, workingDirectoryError)
	}

	applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: options.configPath,
	})
	if configurationError != nil {
		return configurationError
	}

	request, requestError := buildScanRequest(command, rootPath, options, applicationConfiguration.Scan)
	if requestError != nil {
		return requestError
	}

	trailerText, trailerError := buildTrailer(options, applicationConfiguration.Scan)
	if trailerError != nil {
		return trailerError
	}

	binaryPolicy := firstNonEmpty(options.binaryPolicy, applicationConfiguration.Scan.BinaryPolicy, types.BinaryPolicySkip)
	documentAssembler, assemblerError := assemble.NewAssembler(assemble.Options{
		Trailer:      trailerText,
		BinaryPolicy: binaryPolicy,
	})
	if assemblerError != nil {
		return assemblerError
	}

	signalContext, stopSignalHandling := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignalHandling()

	document, dispatchError := dispatchScan(signalContext, request, documentAssembler)
	if dispatchError != nil {
		return dispatchError
	}

	if deliveryError := deliverDocument(loggerInstance, document, options, applicationConfiguration.Scan); deliveryError != nil {
		return deliveryError
	}

	if document.Incomplete {
		return errors.New(errorCancelledMessage)
	}
	return nil
}

// buildScanRequest merges flags with configuration defaults into one
// read-only request. Flags win over configuration; an explicit extension list
// wins over a named group.
func buildScanRequest(command *cobra.Command, rootPath string, options scanOptions, defaults config.ScanConfiguration) (types.ScanRequest, error) {
	absoluteRoot, absoluteError := filepath.Abs(rootPath)
	if absoluteError != nil {
		return types.ScanRequest{}, fmt.Errorf(errorAbsolutePathFormat, rootPath, absoluteError)
	}

	extensions, extensionsError := resolveExtensions(options, defaults)
	if extensionsError != nil {
		return types.ScanRequest{}, extensionsError
	}

	exclusions := options.exclusions
	if len(exclusions) == 0 {
		exclusions = defaults.Exclude
	}

	recursive := options.recursive
	if !command.Flags().Changed(recursiveFlagName) && defaults.Recursive != nil {
		recursive = *defaults.Recursive
	}

	return types.ScanRequest{
		Root:       absoluteRoot,
		Extensions: extensions,
		Exclusions: utils.DeduplicateStrings(exclusions),
		Recursive:  recursive,
	}, nil
}

// resolveExtensions produces the normalized extension set from flags, the
// group store, or configuration defaults.
func resolveExtensions(options scanOptions, defaults config.ScanConfiguration) ([]string, error) {
	if len(options.extensions) > 0 {
		return scan.NormalizeExtensions(options.extensions), nil
	}

	groupName := firstNonEmpty(options.groupName, defaults.Group)
	if groupName != "" {
		groups, loadError := config.LoadExtensionGroups(config.GroupsFileName)
		if loadError != nil {
			return nil, loadError
		}
		extensions, found := config.ResolveExtensionGroup(groups, groupName)
		if !found {
			return nil, fmt.Errorf(errorUnknownGroupFormat, groupName, config.GroupsFileName)
		}
		return scan.NormalizeExtensions(extensions), nil
	}

	if len(defaults.Extensions) > 0 {
		return scan.NormalizeExtensions(defaults.Extensions), nil
	}

	return nil, errors.New(errorNoExtensionsMessage)
}

// buildTrailer combines selected presets and free-form notes; when neither is
// provided the configured default trailer applies.
func buildTrailer(options scanOptions, defaults config.ScanConfiguration) (string, error) {
	var presetTexts []string
	if len(options.presetNames) > 0 {
		presets, loadError := config.LoadPresets(config.PresetsFileName)
		if loadError != nil {
			return "", loadError
		}
		for _, presetName := range options.presetNames {
			presetText, found := config.ResolvePreset(presets, presetName)
			if !found {
				return "", fmt.Errorf(errorUnknownPresetFormat, presetName, config.PresetsFileName)
			}
			presetTexts = append(presetTexts, presetText)
		}
	}

	trailerText := config.CombineTrailer(presetTexts, options.notes)
	if trailerText == "" {
		trailerText = defaults.Trailer
	}
	return trailerText, nil
}

// dispatchScan runs the traverser and the assembler as a producer/consumer
// pair. Cancellation surfaces as an incomplete document rather than an error
// so the assembled prefix still reaches the sinks.
func dispatchScan(ctx context.Context, request types.ScanRequest, documentAssembler *assemble.Assembler) (types.Document, error) {
	group, streamContext := errgroup.WithContext(ctx)
	events := make(chan scan.Event)

	group.Go(func() error {
		defer close(events)
		return scan.Stream(streamContext, request, events)
	})

	group.Go(func() error {
		for event := range events {
			if handleError := documentAssembler.Handle(event); handleError != nil {
				return handleError
			}
		}
		return nil
	})

	waitError := group.Wait()
	cancelled := errors.Is(waitError, context.Canceled) || errors.Is(waitError, context.DeadlineExceeded)
	if waitError != nil && !cancelled {
		return types.Document{}, waitError
	}

	return documentAssembler.Finalize(cancelled), nil
}

// deliverDocument writes the document to its sinks and reports counts. Sink
// failures after a complete assembly are reported but do not corrupt the
// document.
func deliverDocument(loggerInstance *zap.Logger, document types.Document, options scanOptions, defaults config.ScanConfiguration) error {
	for _, warning := range document.Warnings {
		loggerInstance.Warn(fmt.Sprintf(warningMessageFormat, warning.Path, warning.Reason))
	}
	loggerInstance.Info(fmt.Sprintf(summaryMessageFormat, document.IncludedFiles, len(document.Warnings)))

	outputPath := firstNonEmpty(options.outputPath, defaults.Output, defaultOutputPath)
	if outputPath == stdoutOutputPath {
		fmt.Print(document.Text)
	} else {
		if writeError := os.WriteFile(outputPath, []byte(document.Text), outputFileMode); writeError != nil {
			return fmt.Errorf(errorWriteOutputFormat, outputPath, writeError)
		}
		loggerInstance.Info(fmt.Sprintf(documentWrittenFormat, outputPath))
	}

	clipboardRequested := options.clipboardCopy
	if !clipboardRequested && defaults.Clipboard != nil {
		clipboardRequested = *defaults.Clipboard
	}
	if clipboardRequested {
		if copyError := clipboard.NewService().Copy(document.Text); copyError != nil {
			return fmt.Errorf(errorClipboardFormat, copyError)
		}
		loggerInstance.Info(clipboardCopiedMessage)
	}

	tokensRequested := options.tokensEnabled
	if !tokensRequested && defaults.Tokens.Enabled != nil {
		tokensRequested = *defaults.Tokens.Enabled
	}
	if tokensRequested {
		tokenModel := firstNonEmpty(options.tokenizerModel, defaults.Tokens.Model)
		tokenCounter, resolvedModel, counterError := tokenizer.NewCounter(tokenModel)
		if counterError != nil {
			return counterError
		}
		tokenCount, countError := tokenCounter.CountString(document.Text)
		if countError != nil {
			return countError
		}
		loggerInstance.Info(fmt.Sprintf(tokensMessageFormat, tokenCount, resolvedModel))
	}

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
