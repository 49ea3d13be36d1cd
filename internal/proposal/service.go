package proposal

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/stacks-network/migration-sync/internal/githubcli"
	"github.com/stacks-network/migration-sync/internal/gitrepo"
)

const (
	repositoryManagerMissingMessageConstant = "repository manager not configured"
	githubClientMissingMessageConstant      = "GitHub client not configured"
	branchCheckoutErrorTemplateConstant     = "unable to check out branch %s: %w"
	stageErrorTemplateConstant              = "unable to stage export artifacts: %w"
	commitErrorTemplateConstant             = "unable to commit export artifacts: %w"
	pushErrorTemplateConstant               = "unable to push branch %s: %w"
	pullRequestListErrorTemplateConstant    = "unable to list pull requests: %w"
	pullRequestCreateErrorTemplateConstant  = "unable to open pull request: %w"
	pullRequestUpdateErrorTemplateConstant  = "unable to update pull request #%d: %w"
	logMessageNoContentChangesConstant      = "no content changes detected, skipping commit"
	logMessageBranchSwitchConstant          = "switching to export branch"
	logMessagePullRequestOpenedConstant     = "pull request opened"
	logMessagePullRequestUpdatedConstant    = "pull request updated"
	logFieldBranchConstant                  = "branch"
	logFieldPreviousBranchConstant          = "previous_branch"
	logFieldPullRequestNumberConstant       = "pull_request"
)

// RepositoryOperations is the subset of gitrepo.RepositoryManager used by the service.
type RepositoryOperations interface {
	GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	CheckoutBranch(executionContext context.Context, repositoryPath string, branchName string) error
	StagePaths(executionContext context.Context, repositoryPath string, paths []string) error
	HasStagedOrUnstagedChanges(executionContext context.Context, repositoryPath string) (bool, error)
	CreateCommit(executionContext context.Context, repositoryPath string, commitMessage string, identity gitrepo.CommitIdentity) error
	PushBranch(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error
}

// GitHubOperations is the subset of githubcli.Client used by the service.
type GitHubOperations interface {
	CreatePullRequest(executionContext context.Context, definition githubcli.PullRequestDefinition) error
	EditPullRequestBody(executionContext context.Context, pullRequestNumber int, body string) error
	ListPullRequests(executionContext context.Context, options githubcli.PullRequestListOptions) ([]githubcli.PullRequest, error)
}

// ServiceDependencies describes required collaborators for the proposal service.
type ServiceDependencies struct {
	Logger            *zap.Logger
	RepositoryManager RepositoryOperations
	GitHubClient      GitHubOperations
}

// Options configures a change proposal submission.
type Options struct {
	RepositoryPath string
	RemoteName     string
	SourceBranch   string
	BaseBranch     string
	Title          string
	Body           string
	CommitMessage  string
	CommitIdentity gitrepo.CommitIdentity
	Assignees      []string
	Reviewers      []string
	StagePaths     []string
}

// Result captures the observable outcome of a proposal submission.
type Result struct {
	CommitCreated     bool
	PullRequestOpened bool
	PullRequestNumber int
}

// Service pushes export artifacts to the feature branch and opens or refreshes the pull request.
type Service struct {
	logger            *zap.Logger
	repositoryManager RepositoryOperations
	gitHubClient      GitHubOperations
}

var (
	errRepositoryManagerMissing = errors.New(repositoryManagerMissingMessageConstant)
	errGitHubClientMissing      = errors.New(githubClientMissingMessageConstant)
)

// NewService constructs a Service with the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.RepositoryManager == nil {
		return nil, errRepositoryManagerMissing
	}
	if dependencies.GitHubClient == nil {
		return nil, errGitHubClientMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		logger:            logger,
		repositoryManager: dependencies.RepositoryManager,
		gitHubClient:      dependencies.GitHubClient,
	}, nil
}

// Execute commits the staged artifacts to the source branch, pushes, and opens or updates the pull request.
func (service *Service) Execute(executionContext context.Context, options Options) (Result, error) {
	previousBranch, branchError := service.repositoryManager.GetCurrentBranch(executionContext, options.RepositoryPath)
	if branchError != nil {
		return Result{}, branchError
	}

	service.logger.Debug(
		logMessageBranchSwitchConstant,
		zap.String(logFieldPreviousBranchConstant, previousBranch),
		zap.String(logFieldBranchConstant, options.SourceBranch),
	)

	if checkoutError := service.repositoryManager.CheckoutBranch(executionContext, options.RepositoryPath, options.SourceBranch); checkoutError != nil {
		return Result{}, fmt.Errorf(branchCheckoutErrorTemplateConstant, options.SourceBranch, checkoutError)
	}

	if stageError := service.repositoryManager.StagePaths(executionContext, options.RepositoryPath, options.StagePaths); stageError != nil {
		return Result{}, fmt.Errorf(stageErrorTemplateConstant, stageError)
	}

	result := Result{}

	changesPresent, changesError := service.repositoryManager.HasStagedOrUnstagedChanges(executionContext, options.RepositoryPath)
	if changesError != nil {
		return Result{}, changesError
	}

	if changesPresent {
		if commitError := service.repositoryManager.CreateCommit(executionContext, options.RepositoryPath, options.CommitMessage, options.CommitIdentity); commitError != nil {
			return Result{}, fmt.Errorf(commitErrorTemplateConstant, commitError)
		}
		result.CommitCreated = true
	} else {
		service.logger.Info(
			logMessageNoContentChangesConstant,
			zap.String(logFieldBranchConstant, options.SourceBranch),
		)
	}

	if pushError := service.repositoryManager.PushBranch(executionContext, options.RepositoryPath, options.RemoteName, options.SourceBranch); pushError != nil {
		return Result{}, fmt.Errorf(pushErrorTemplateConstant, options.SourceBranch, pushError)
	}

	existingPullRequests, listError := service.gitHubClient.ListPullRequests(executionContext, githubcli.PullRequestListOptions{
		State:      githubcli.PullRequestStateOpen,
		HeadBranch: options.SourceBranch,
	})
	if listError != nil {
		return Result{}, fmt.Errorf(pullRequestListErrorTemplateConstant, listError)
	}

	if len(existingPullRequests) > 0 {
		existingNumber := existingPullRequests[0].Number
		if updateError := service.gitHubClient.EditPullRequestBody(executionContext, existingNumber, options.Body); updateError != nil {
			return Result{}, fmt.Errorf(pullRequestUpdateErrorTemplateConstant, existingNumber, updateError)
		}
		result.PullRequestNumber = existingNumber
		service.logger.Info(
			logMessagePullRequestUpdatedConstant,
			zap.Int(logFieldPullRequestNumberConstant, existingNumber),
			zap.String(logFieldBranchConstant, options.SourceBranch),
		)
		return result, nil
	}

	createError := service.gitHubClient.CreatePullRequest(executionContext, githubcli.PullRequestDefinition{
		Title:      options.Title,
		Body:       options.Body,
		BaseBranch: options.BaseBranch,
		HeadBranch: options.SourceBranch,
		Assignees:  options.Assignees,
		Reviewers:  options.Reviewers,
	})
	if createError != nil {
		return Result{}, fmt.Errorf(pullRequestCreateErrorTemplateConstant, createError)
	}

	result.PullRequestOpened = true
	service.logger.Info(
		logMessagePullRequestOpenedConstant,
		zap.String(logFieldBranchConstant, options.SourceBranch),
	)

	return result, nil
}
