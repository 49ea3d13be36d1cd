package gitrepo

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/stacks-network/migration-sync/internal/execshell"
)

const (
	statusSubcommandConstant            = "status"
	statusPorcelainFlagConstant         = "--porcelain"
	revParseSubcommandConstant          = "rev-parse"
	abbreviatedReferenceFlagConstant    = "--abbrev-ref"
	headReferenceConstant               = "HEAD"
	checkoutSubcommandConstant          = "checkout"
	checkoutResetBranchFlagConstant     = "-B"
	addSubcommandConstant               = "add"
	commitSubcommandConstant            = "commit"
	commitMessageFlagConstant           = "-m"
	pushSubcommandConstant              = "push"
	pushSetUpstreamFlagConstant         = "--set-upstream"
	pushForceWithLeaseFlagConstant      = "--force-with-lease"
	authorNameEnvironmentVariable       = "GIT_AUTHOR_NAME"
	authorEmailEnvironmentVariable      = "GIT_AUTHOR_EMAIL"
	committerNameEnvironmentVariable    = "GIT_COMMITTER_NAME"
	committerEmailEnvironmentVariable   = "GIT_COMMITTER_EMAIL"
	executorNotConfiguredMessageConstant = "git executor not configured"
)

// CommitIdentity describes the author and committer recorded on generated commits.
type CommitIdentity struct {
	Name  string
	Email string
}

// GitExecutor exposes the subset of shell execution used by the repository manager.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager performs git operations against a local repository clone.
type RepositoryManager struct {
	logger   *zap.Logger
	executor GitExecutor
}

// ErrExecutorNotConfigured indicates the manager was constructed without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// NewRepositoryManager constructs a RepositoryManager with the provided executor.
func NewRepositoryManager(logger *zap.Logger, executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}

	resolvedLogger := logger
	if resolvedLogger == nil {
		resolvedLogger = zap.NewNop()
	}

	return &RepositoryManager{logger: resolvedLogger, executor: executor}, nil
}

// CheckCleanWorktree reports whether the repository worktree has no pending changes.
func (manager *RepositoryManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	statusOutput, statusError := manager.worktreeStatus(executionContext, repositoryPath)
	if statusError != nil {
		return false, statusError
	}
	return len(statusOutput) == 0, nil
}

// HasStagedOrUnstagedChanges reports whether the repository worktree contains changes to commit.
func (manager *RepositoryManager) HasStagedOrUnstagedChanges(executionContext context.Context, repositoryPath string) (bool, error) {
	statusOutput, statusError := manager.worktreeStatus(executionContext, repositoryPath)
	if statusError != nil {
		return false, statusError
	}
	return len(statusOutput) > 0, nil
}

// GetCurrentBranch resolves the branch currently checked out in the repository.
func (manager *RepositoryManager) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{revParseSubcommandConstant, abbreviatedReferenceFlagConstant, headReferenceConstant},
		WorkingDirectory: repositoryPath,
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return "", executionError
	}

	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// CheckoutBranch switches the repository to the named branch, creating or resetting it from HEAD.
func (manager *RepositoryManager) CheckoutBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{checkoutSubcommandConstant, checkoutResetBranchFlagConstant, branchName},
		WorkingDirectory: repositoryPath,
	}

	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	return executionError
}

// StagePaths stages the provided paths for the next commit.
func (manager *RepositoryManager) StagePaths(executionContext context.Context, repositoryPath string, paths []string) error {
	commandArguments := append([]string{addSubcommandConstant}, paths...)
	commandDetails := execshell.CommandDetails{
		Arguments:        commandArguments,
		WorkingDirectory: repositoryPath,
	}

	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	return executionError
}

// CreateCommit records a commit with the provided message and identity.
func (manager *RepositoryManager) CreateCommit(executionContext context.Context, repositoryPath string, commitMessage string, identity CommitIdentity) error {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{commitSubcommandConstant, commitMessageFlagConstant, commitMessage},
		WorkingDirectory: repositoryPath,
		EnvironmentVariables: map[string]string{
			authorNameEnvironmentVariable:     identity.Name,
			authorEmailEnvironmentVariable:    identity.Email,
			committerNameEnvironmentVariable:  identity.Name,
			committerEmailEnvironmentVariable: identity.Email,
		},
	}

	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	return executionError
}

// PushBranch publishes the branch to the named remote, forcing with lease and configuring the upstream.
func (manager *RepositoryManager) PushBranch(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error {
	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			pushSubcommandConstant,
			pushForceWithLeaseFlagConstant,
			pushSetUpstreamFlagConstant,
			remoteName,
			branchName,
		},
		WorkingDirectory: repositoryPath,
	}

	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	return executionError
}

func (manager *RepositoryManager) worktreeStatus(executionContext context.Context, repositoryPath string) (string, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{statusSubcommandConstant, statusPorcelainFlagConstant},
		WorkingDirectory: repositoryPath,
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return "", executionError
	}

	return strings.TrimSpace(executionResult.StandardOutput), nil
}
