package githubcli_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stacks-network/migration-sync/internal/execshell"
	"github.com/stacks-network/migration-sync/internal/githubcli"
)

const (
	repositoryDirectoryConstant   = "/srv/stacks-blockchain"
	proposalTitleConstant         = "Update chainstate and name zonefile exports"
	proposalBodyConstant          = "proposal body"
	sourceBranchConstant          = "auto/chainstate-export"
	targetBranchConstant          = "master"
	tokenEnvironmentValueConstant = "ghp_example"
	pullRequestListJSONConstant   = `[{"number":42,"title":"Update exports","headRefName":"auto/chainstate-export"}]`
)

type fakeGitHubExecutor struct {
	results         []execshell.ExecutionResult
	receivedDetails []execshell.CommandDetails
	resultOffset    int
}

func (executor *fakeGitHubExecutor) ExecuteGitHubCLI(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.receivedDetails = append(executor.receivedDetails, details)
	if executor.resultOffset < len(executor.results) {
		result := executor.results[executor.resultOffset]
		executor.resultOffset++
		return result, nil
	}
	return execshell.ExecutionResult{}, nil
}

func TestNewClientRequiresExecutor(testInstance *testing.T) {
	_, constructionError := githubcli.NewClient(nil, repositoryDirectoryConstant, nil)
	require.ErrorIs(testInstance, constructionError, githubcli.ErrExecutorNotConfigured)
}

func TestCreatePullRequestValidation(testInstance *testing.T) {
	testCases := []struct {
		name       string
		definition githubcli.PullRequestDefinition
	}{
		{
			name:       "missing_title",
			definition: githubcli.PullRequestDefinition{HeadBranch: sourceBranchConstant, BaseBranch: targetBranchConstant},
		},
		{
			name:       "missing_head_branch",
			definition: githubcli.PullRequestDefinition{Title: proposalTitleConstant, BaseBranch: targetBranchConstant},
		},
		{
			name:       "missing_base_branch",
			definition: githubcli.PullRequestDefinition{Title: proposalTitleConstant, HeadBranch: sourceBranchConstant},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			executor := &fakeGitHubExecutor{}
			client, constructionError := githubcli.NewClient(executor, repositoryDirectoryConstant, nil)
			require.NoError(subtest, constructionError)

			creationError := client.CreatePullRequest(context.Background(), testCase.definition)

			inputError := githubcli.InvalidInputError{}
			require.ErrorAs(subtest, creationError, &inputError)
			require.Empty(subtest, executor.receivedDetails)
		})
	}
}

func TestCreatePullRequestBuildsArguments(testInstance *testing.T) {
	executor := &fakeGitHubExecutor{}
	environment := map[string]string{"GH_TOKEN": tokenEnvironmentValueConstant}
	client, constructionError := githubcli.NewClient(executor, repositoryDirectoryConstant, environment)
	require.NoError(testInstance, constructionError)

	creationError := client.CreatePullRequest(context.Background(), githubcli.PullRequestDefinition{
		Title:      proposalTitleConstant,
		Body:       proposalBodyConstant,
		BaseBranch: targetBranchConstant,
		HeadBranch: sourceBranchConstant,
		Assignees:  []string{"alice", "bob"},
		Reviewers:  []string{"carol"},
	})
	require.NoError(testInstance, creationError)

	require.Len(testInstance, executor.receivedDetails, 1)
	require.Equal(
		testInstance,
		[]string{
			"pr", "create",
			"--title", proposalTitleConstant,
			"--body", proposalBodyConstant,
			"--base", targetBranchConstant,
			"--head", sourceBranchConstant,
			"--assignee", "alice,bob",
			"--reviewer", "carol",
		},
		executor.receivedDetails[0].Arguments,
	)
	require.Equal(testInstance, repositoryDirectoryConstant, executor.receivedDetails[0].WorkingDirectory)
	require.Equal(testInstance, tokenEnvironmentValueConstant, executor.receivedDetails[0].EnvironmentVariables["GH_TOKEN"])
}

func TestEditPullRequestBodyBuildsArguments(testInstance *testing.T) {
	executor := &fakeGitHubExecutor{}
	client, constructionError := githubcli.NewClient(executor, repositoryDirectoryConstant, nil)
	require.NoError(testInstance, constructionError)

	editError := client.EditPullRequestBody(context.Background(), 42, proposalBodyConstant)
	require.NoError(testInstance, editError)

	require.Len(testInstance, executor.receivedDetails, 1)
	require.Equal(testInstance, []string{"pr", "edit", "42", "--body", proposalBodyConstant}, executor.receivedDetails[0].Arguments)
}

func TestListPullRequestsDecodesResponse(testInstance *testing.T) {
	executor := &fakeGitHubExecutor{results: []execshell.ExecutionResult{{StandardOutput: pullRequestListJSONConstant}}}
	client, constructionError := githubcli.NewClient(executor, repositoryDirectoryConstant, nil)
	require.NoError(testInstance, constructionError)

	pullRequests, listError := client.ListPullRequests(context.Background(), githubcli.PullRequestListOptions{
		HeadBranch: sourceBranchConstant,
	})
	require.NoError(testInstance, listError)

	require.Len(testInstance, pullRequests, 1)
	require.Equal(testInstance, 42, pullRequests[0].Number)
	require.Equal(testInstance, sourceBranchConstant, pullRequests[0].HeadRefName)

	require.Equal(
		testInstance,
		[]string{
			"pr", "list",
			"--state", "open",
			"--json", "number,title,headRefName",
			"--limit", "30",
			"--head", sourceBranchConstant,
		},
		executor.receivedDetails[0].Arguments,
	)
}

func TestListPullRequestsReportsDecodingFailures(testInstance *testing.T) {
	executor := &fakeGitHubExecutor{results: []execshell.ExecutionResult{{StandardOutput: "not json"}}}
	client, constructionError := githubcli.NewClient(executor, repositoryDirectoryConstant, nil)
	require.NoError(testInstance, constructionError)

	_, listError := client.ListPullRequests(context.Background(), githubcli.PullRequestListOptions{})

	decodingError := githubcli.ResponseDecodingError{}
	require.ErrorAs(testInstance, listError, &decodingError)
}
