package sync

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stacks-network/migration-sync/internal/execshell"
	"github.com/stacks-network/migration-sync/internal/export"
	"github.com/stacks-network/migration-sync/internal/githubauth"
	"github.com/stacks-network/migration-sync/internal/githubcli"
	"github.com/stacks-network/migration-sync/internal/gitrepo"
	"github.com/stacks-network/migration-sync/internal/objectstore"
	"github.com/stacks-network/migration-sync/internal/proposal"
	"github.com/stacks-network/migration-sync/internal/utils"
	pathutils "github.com/stacks-network/migration-sync/internal/utils/path"
)

const (
	commandUseConstant                    = "sync"
	commandShortDescriptionConstant       = "Download migration export artifacts and open the change proposal"
	commandLongDescriptionConstant        = "sync downloads the chainstate and name zonefile export artifacts from the storage bucket, commits them to the configured feature branch, and opens or refreshes the migration pull request."
	commandExecutionErrorTemplateConstant = "migration sync failed: %w"
	unexpectedArgumentsMessageConstant    = "sync does not accept positional arguments"
	flagBlockHeightNameConstant           = "block-height"
	flagBlockHeightDescriptionConstant    = "Block height at which the export was triggered"
	flagRepositoryNameConstant            = "repository"
	flagRepositoryDescriptionConstant     = "Path to the local repository clone receiving the artifacts"
	flagRemoteNameConstant                = "remote"
	flagRemoteDescriptionConstant         = "Name of the remote the feature branch is pushed to"
	flagOutputDirectoryNameConstant       = "output-dir"
	flagOutputDirectoryDescription        = "Directory inside the repository receiving the artifacts"
	flagSourceBranchNameConstant          = "branch"
	flagSourceBranchDescriptionConstant   = "Feature branch carrying the export commit"
	flagBaseBranchNameConstant            = "base"
	flagBaseBranchDescriptionConstant     = "Base branch the change proposal targets"
	flagManifestNameConstant              = "manifest"
	flagManifestDescriptionConstant       = "Optional YAML manifest overriding the built-in dataset list"
	flagDryRunNameConstant                = "dry-run"
	flagDryRunDescriptionConstant         = "Fetch artifacts and print the proposal body without touching git or GitHub"
	loggerMissingMessageConstant          = "logger not configured"
	executorCreationErrorTemplateConstant = "unable to construct shell executor: %w"
	managerCreationErrorTemplateConstant  = "unable to construct repository manager: %w"
	clientCreationErrorTemplateConstant   = "unable to construct GitHub client: %w"
	serviceCreationErrorTemplateConstant  = "unable to construct sync services: %w"
	bodyRenderErrorTemplateConstant       = "unable to render proposal body: %w"
	dryRunBodyWriteErrorTemplateConstant  = "unable to write proposal body preview: %w"
	logMessageSyncCompletedConstant       = "migration sync completed"
	logMessageDryRunCompletedConstant     = "migration sync dry run completed"
	logMessageDirtyWorktreeConstant       = "repository worktree has local changes before sync"
	logFieldRepositoryConstant            = "repository"
	logFieldRunIdentifierConstant         = "run_id"
	logFieldBlockHeightConstant           = "block_height"
	logFieldDatasetCountConstant          = "datasets"
	logFieldCommitCreatedConstant         = "commit_created"
	logFieldPullRequestOpenedConstant     = "pull_request_opened"
	logFieldPullRequestNumberConstant     = "pull_request"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the sync Cobra command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	CommandRunner                execshell.CommandRunner
	ObjectClient                 export.ObjectFetcher
}

type commandOptions struct {
	blockHeight     uint64
	repositoryPath  string
	remoteName      string
	outputDirectory string
	sourceBranch    string
	baseBranch      string
	manifestPath    string
	dryRunRequested bool
}

// Build constructs the sync command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().Uint64(flagBlockHeightNameConstant, 0, flagBlockHeightDescriptionConstant)
	command.Flags().String(flagRepositoryNameConstant, "", flagRepositoryDescriptionConstant)
	command.Flags().String(flagRemoteNameConstant, "", flagRemoteDescriptionConstant)
	command.Flags().String(flagOutputDirectoryNameConstant, "", flagOutputDirectoryDescription)
	command.Flags().String(flagSourceBranchNameConstant, "", flagSourceBranchDescriptionConstant)
	command.Flags().String(flagBaseBranchNameConstant, "", flagBaseBranchDescriptionConstant)
	command.Flags().String(flagManifestNameConstant, "", flagManifestDescriptionConstant)
	command.Flags().Bool(flagDryRunNameConstant, false, flagDryRunDescriptionConstant)

	if markError := command.MarkFlagRequired(flagBlockHeightNameConstant); markError != nil {
		return nil, markError
	}

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	logger := builder.resolveLogger()
	if logger == nil {
		return errors.New(loggerMissingMessageConstant)
	}

	options, optionsError := builder.resolveOptions(command)
	if optionsError != nil {
		return optionsError
	}

	runIdentifier := uuid.NewString()
	logger = logger.With(zap.String(logFieldRunIdentifierConstant, runIdentifier))

	executionContext := utils.NewCommandContextAccessor().WithRunIdentifier(command.Context(), runIdentifier)

	datasets, datasetsError := builder.resolveDatasets(options)
	if datasetsError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, datasetsError)
	}

	configuration := builder.resolveConfiguration()

	var (
		shellExecutor     *execshell.ShellExecutor
		repositoryManager *gitrepo.RepositoryManager
	)
	if !options.dryRunRequested {
		constructedExecutor, executorError := execshell.NewShellExecutor(logger, builder.resolveCommandRunner(), builder.humanReadableLoggingEnabled())
		if executorError != nil {
			return fmt.Errorf(executorCreationErrorTemplateConstant, executorError)
		}
		shellExecutor = constructedExecutor

		constructedManager, managerError := gitrepo.NewRepositoryManager(logger, shellExecutor)
		if managerError != nil {
			return fmt.Errorf(managerCreationErrorTemplateConstant, managerError)
		}
		repositoryManager = constructedManager

		worktreeClean, worktreeError := repositoryManager.CheckCleanWorktree(executionContext, options.repositoryPath)
		if worktreeError != nil {
			return fmt.Errorf(commandExecutionErrorTemplateConstant, worktreeError)
		}
		if !worktreeClean {
			logger.Warn(
				logMessageDirtyWorktreeConstant,
				zap.String(logFieldRepositoryConstant, options.repositoryPath),
			)
		}
	}

	exportService, exportServiceError := export.NewService(export.ServiceDependencies{
		Logger:       logger,
		ObjectClient: builder.resolveObjectClient(),
	})
	if exportServiceError != nil {
		return fmt.Errorf(serviceCreationErrorTemplateConstant, exportServiceError)
	}

	outputDirectory := options.outputDirectory
	if !filepath.IsAbs(outputDirectory) {
		outputDirectory = filepath.Join(options.repositoryPath, outputDirectory)
	}

	syncResult, syncError := exportService.Execute(executionContext, export.SyncOptions{
		OutputDirectory: outputDirectory,
		Datasets:        datasets,
		VerifyChecksums: configuration.VerifyChecksums,
	})
	if syncError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, syncError)
	}

	proposalBody, renderError := proposal.RenderBody(options.blockHeight, syncResult.Records)
	if renderError != nil {
		return fmt.Errorf(bodyRenderErrorTemplateConstant, renderError)
	}

	if options.dryRunRequested {
		bodyWriter := utils.NewFlushingWriter(command.OutOrStdout())
		if _, writeError := bodyWriter.Write([]byte(proposalBody)); writeError != nil {
			return fmt.Errorf(dryRunBodyWriteErrorTemplateConstant, writeError)
		}
		logger.Info(
			logMessageDryRunCompletedConstant,
			zap.Uint64(logFieldBlockHeightConstant, options.blockHeight),
			zap.Int(logFieldDatasetCountConstant, len(syncResult.Records)),
		)
		return nil
	}

	gitHubClient, clientError := githubcli.NewClient(shellExecutor, options.repositoryPath, githubauth.ExecutionEnvironment(nil))
	if clientError != nil {
		return fmt.Errorf(clientCreationErrorTemplateConstant, clientError)
	}

	proposalService, proposalServiceError := proposal.NewService(proposal.ServiceDependencies{
		Logger:            logger,
		RepositoryManager: repositoryManager,
		GitHubClient:      gitHubClient,
	})
	if proposalServiceError != nil {
		return fmt.Errorf(serviceCreationErrorTemplateConstant, proposalServiceError)
	}

	proposalResult, proposalError := proposalService.Execute(executionContext, proposal.Options{
		RepositoryPath: options.repositoryPath,
		RemoteName:     options.remoteName,
		SourceBranch:   options.sourceBranch,
		BaseBranch:     options.baseBranch,
		Title:          configuration.Title,
		Body:           proposalBody,
		CommitMessage:  configuration.CommitMessage,
		CommitIdentity: gitrepo.CommitIdentity{
			Name:  configuration.CommitterName,
			Email: configuration.CommitterEmail,
		},
		Assignees:  configuration.Assignees,
		Reviewers:  configuration.Reviewers,
		StagePaths: []string{options.outputDirectory},
	})
	if proposalError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, proposalError)
	}

	logger.Info(
		logMessageSyncCompletedConstant,
		zap.Uint64(logFieldBlockHeightConstant, options.blockHeight),
		zap.Int(logFieldDatasetCountConstant, len(syncResult.Records)),
		zap.Bool(logFieldCommitCreatedConstant, proposalResult.CommitCreated),
		zap.Bool(logFieldPullRequestOpenedConstant, proposalResult.PullRequestOpened),
		zap.Int(logFieldPullRequestNumberConstant, proposalResult.PullRequestNumber),
	)

	return nil
}

func (builder *CommandBuilder) resolveOptions(command *cobra.Command) (commandOptions, error) {
	configuration := builder.resolveConfiguration()
	homeExpander := pathutils.NewHomeExpander()

	options := commandOptions{
		repositoryPath:  homeExpander.Expand(configuration.RepositoryPath),
		remoteName:      configuration.RemoteName,
		outputDirectory: configuration.OutputDirectory,
		sourceBranch:    configuration.SourceBranch,
		baseBranch:      configuration.BaseBranch,
		manifestPath:    homeExpander.Expand(configuration.ManifestPath),
	}

	blockHeightValue, blockHeightError := command.Flags().GetUint64(flagBlockHeightNameConstant)
	if blockHeightError != nil {
		return commandOptions{}, blockHeightError
	}
	options.blockHeight = blockHeightValue

	if command.Flags().Changed(flagRepositoryNameConstant) {
		flagValue, _ := command.Flags().GetString(flagRepositoryNameConstant)
		options.repositoryPath = homeExpander.Expand(flagValue)
	}
	if command.Flags().Changed(flagRemoteNameConstant) {
		options.remoteName, _ = command.Flags().GetString(flagRemoteNameConstant)
	}
	if command.Flags().Changed(flagOutputDirectoryNameConstant) {
		options.outputDirectory, _ = command.Flags().GetString(flagOutputDirectoryNameConstant)
	}
	if command.Flags().Changed(flagSourceBranchNameConstant) {
		options.sourceBranch, _ = command.Flags().GetString(flagSourceBranchNameConstant)
	}
	if command.Flags().Changed(flagBaseBranchNameConstant) {
		options.baseBranch, _ = command.Flags().GetString(flagBaseBranchNameConstant)
	}
	if command.Flags().Changed(flagManifestNameConstant) {
		flagValue, _ := command.Flags().GetString(flagManifestNameConstant)
		options.manifestPath = homeExpander.Expand(flagValue)
	}

	options.dryRunRequested, _ = command.Flags().GetBool(flagDryRunNameConstant)

	return options, nil
}

func (builder *CommandBuilder) resolveDatasets(options commandOptions) ([]export.Dataset, error) {
	if len(options.manifestPath) > 0 {
		return export.LoadManifest(options.manifestPath)
	}
	return export.DefaultDatasets(), nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return CommandConfiguration{}.sanitize()
	}
	return builder.ConfigurationProvider().sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	providedLogger := builder.LoggerProvider()
	if providedLogger == nil {
		return zap.NewNop()
	}
	return providedLogger
}

func (builder *CommandBuilder) resolveCommandRunner() execshell.CommandRunner {
	if builder.CommandRunner == nil {
		return execshell.NewOSCommandRunner()
	}
	return builder.CommandRunner
}

func (builder *CommandBuilder) resolveObjectClient() export.ObjectFetcher {
	if builder.ObjectClient == nil {
		return objectstore.NewClient(nil)
	}
	return builder.ObjectClient
}

func (builder *CommandBuilder) humanReadableLoggingEnabled() bool {
	if builder.HumanReadableLoggingProvider == nil {
		return false
	}
	return builder.HumanReadableLoggingProvider()
}
