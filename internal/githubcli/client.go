package githubcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/stacks-network/migration-sync/internal/execshell"
)

const (
	pullRequestSubcommandConstant           = "pr"
	createSubcommandConstant                = "create"
	editSubcommandConstant                  = "edit"
	listSubcommandConstant                  = "list"
	titleFlagConstant                       = "--title"
	bodyFlagConstant                        = "--body"
	baseFlagConstant                        = "--base"
	headFlagConstant                        = "--head"
	assigneeFlagConstant                    = "--assignee"
	reviewerFlagConstant                    = "--reviewer"
	stateFlagConstant                       = "--state"
	jsonFlagConstant                        = "--json"
	limitFlagConstant                       = "--limit"
	listSeparatorConstant                   = ","
	pullRequestJSONFieldsConstant           = "number,title,headRefName"
	pullRequestLimitDefaultValueConstant    = 30
	titleFieldNameConstant                  = "title"
	headBranchFieldNameConstant             = "head_branch"
	baseBranchFieldNameConstant             = "base_branch"
	requiredValueMessageConstant            = "value required"
	executorNotConfiguredMessageConstant    = "github cli executor not configured"
	operationErrorTemplateConstant          = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant   = "%s response decoding failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	createPullRequestOperationNameConstant  = OperationName("CreatePullRequest")
	editPullRequestOperationNameConstant    = OperationName("EditPullRequest")
	listPullRequestsOperationNameConstant   = OperationName("ListPullRequests")
)

// OperationName describes a named GitHub CLI workflow supported by the client.
type OperationName string

// PullRequestState describes acceptable GitHub pull request states.
type PullRequestState string

// Pull request state enumerations.
const (
	PullRequestStateOpen   PullRequestState = PullRequestState("open")
	PullRequestStateClosed PullRequestState = PullRequestState("closed")
)

// PullRequest represents minimal pull request details returned by GitHub CLI.
type PullRequest struct {
	Number      int
	Title       string
	HeadRefName string
}

// PullRequestDefinition describes a pull request to open.
type PullRequestDefinition struct {
	Title      string
	Body       string
	BaseBranch string
	HeadBranch string
	Assignees  []string
	Reviewers  []string
}

// PullRequestListOptions configures ListPullRequests queries.
type PullRequestListOptions struct {
	State       PullRequestState
	HeadBranch  string
	ResultLimit int
}

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates GitHub CLI invocations through execshell.
type Client struct {
	executor         GitHubCommandExecutor
	workingDirectory string
	environment      map[string]string
}

// ErrExecutorNotConfigured indicates the client was constructed without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub CLI operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// NewClient constructs a GitHub CLI client operating in the provided repository directory.
func NewClient(executor GitHubCommandExecutor, workingDirectory string, environment map[string]string) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}

	duplicatedEnvironment := make(map[string]string, len(environment))
	for environmentKey, environmentValue := range environment {
		duplicatedEnvironment[environmentKey] = environmentValue
	}

	return &Client{
		executor:         executor,
		workingDirectory: workingDirectory,
		environment:      duplicatedEnvironment,
	}, nil
}

// CreatePullRequest opens a pull request using gh pr create.
func (client *Client) CreatePullRequest(executionContext context.Context, definition PullRequestDefinition) error {
	if len(strings.TrimSpace(definition.Title)) == 0 {
		return InvalidInputError{FieldName: titleFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(definition.HeadBranch)) == 0 {
		return InvalidInputError{FieldName: headBranchFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(definition.BaseBranch)) == 0 {
		return InvalidInputError{FieldName: baseBranchFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandArguments := []string{
		pullRequestSubcommandConstant,
		createSubcommandConstant,
		titleFlagConstant,
		definition.Title,
		bodyFlagConstant,
		definition.Body,
		baseFlagConstant,
		definition.BaseBranch,
		headFlagConstant,
		definition.HeadBranch,
	}

	if len(definition.Assignees) > 0 {
		commandArguments = append(commandArguments, assigneeFlagConstant, strings.Join(definition.Assignees, listSeparatorConstant))
	}
	if len(definition.Reviewers) > 0 {
		commandArguments = append(commandArguments, reviewerFlagConstant, strings.Join(definition.Reviewers, listSeparatorConstant))
	}

	_, executionError := client.executor.ExecuteGitHubCLI(executionContext, client.commandDetails(commandArguments))
	if executionError != nil {
		return OperationError{Operation: createPullRequestOperationNameConstant, Cause: executionError}
	}

	return nil
}

// EditPullRequestBody replaces the body of an existing pull request using gh pr edit.
func (client *Client) EditPullRequestBody(executionContext context.Context, pullRequestNumber int, body string) error {
	commandArguments := []string{
		pullRequestSubcommandConstant,
		editSubcommandConstant,
		strconv.Itoa(pullRequestNumber),
		bodyFlagConstant,
		body,
	}

	_, executionError := client.executor.ExecuteGitHubCLI(executionContext, client.commandDetails(commandArguments))
	if executionError != nil {
		return OperationError{Operation: editPullRequestOperationNameConstant, Cause: executionError}
	}

	return nil
}

// ListPullRequests enumerates pull requests using gh pr list.
func (client *Client) ListPullRequests(executionContext context.Context, options PullRequestListOptions) ([]PullRequest, error) {
	if len(options.State) == 0 {
		options.State = PullRequestStateOpen
	}

	resultLimit := options.ResultLimit
	if resultLimit <= 0 {
		resultLimit = pullRequestLimitDefaultValueConstant
	}

	commandArguments := []string{
		pullRequestSubcommandConstant,
		listSubcommandConstant,
		stateFlagConstant,
		string(options.State),
		jsonFlagConstant,
		pullRequestJSONFieldsConstant,
		limitFlagConstant,
		strconv.Itoa(resultLimit),
	}

	if len(strings.TrimSpace(options.HeadBranch)) > 0 {
		commandArguments = append(commandArguments, headFlagConstant, options.HeadBranch)
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, client.commandDetails(commandArguments))
	if executionError != nil {
		return nil, OperationError{Operation: listPullRequestsOperationNameConstant, Cause: executionError}
	}

	var response []struct {
		Number      int    `json:"number"`
		Title       string `json:"title"`
		HeadRefName string `json:"headRefName"`
	}

	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return nil, ResponseDecodingError{Operation: listPullRequestsOperationNameConstant, Cause: decodingError}
	}

	pullRequests := make([]PullRequest, 0, len(response))
	for _, pullRequestEntry := range response {
		pullRequests = append(pullRequests, PullRequest{
			Number:      pullRequestEntry.Number,
			Title:       pullRequestEntry.Title,
			HeadRefName: pullRequestEntry.HeadRefName,
		})
	}

	return pullRequests, nil
}

func (client *Client) commandDetails(commandArguments []string) execshell.CommandDetails {
	return execshell.CommandDetails{
		Arguments:            commandArguments,
		WorkingDirectory:     client.workingDirectory,
		EnvironmentVariables: client.environment,
	}
}
