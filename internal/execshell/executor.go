package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	gitExecutableNameConstant                = "git"
	githubCLIExecutableNameConstant          = "gh"
	commandRunnerMissingMessageConstant      = "command runner not configured"
	loggerMissingMessageConstant             = "logger not configured"
	commandNameMissingMessageConstant        = "command name must be provided"
	commandFailureTemplateConstant           = "%s command failed with exit code %d: %s"
	commandExecutionFailureTemplateConstant  = "%s command execution failed: %w"
	logMessageCommandStartedConstant         = "shell command started"
	logMessageCommandCompletedConstant       = "shell command completed"
	logMessageCommandFailedConstant          = "shell command failed"
	logFieldCommandNameConstant              = "command"
	logFieldCommandArgumentsConstant         = "arguments"
	logFieldWorkingDirectoryConstant         = "working_directory"
	logFieldExitCodeConstant                 = "exit_code"
	logFieldStandardErrorConstant            = "standard_error"
	humanReadableMessageSkippedValueConstant = ""
)

// CommandName identifies a supported executable.
type CommandName string

// Supported executables.
const (
	CommandGit       CommandName = CommandName(gitExecutableNameConstant)
	CommandGitHubCLI CommandName = CommandName(githubCLIExecutableNameConstant)
)

// CommandDetails describes a single command invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand combines a CommandName with specific invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable results of executing a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner represents the ability to run shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandFailedError reports a command that completed with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the command failure including trimmed standard error output.
func (failedError CommandFailedError) Error() string {
	return fmt.Sprintf(
		commandFailureTemplateConstant,
		failedError.Command.Name,
		failedError.Result.ExitCode,
		strings.TrimSpace(failedError.Result.StandardError),
	)
}

// ShellExecutor coordinates command execution, logging, and observer notification.
type ShellExecutor struct {
	logger               *zap.Logger
	commandRunner        CommandRunner
	eventObserver        CommandEventObserver
	humanReadableLogging bool
}

var (
	// ErrCommandRunnerMissing indicates the executor was constructed without a runner.
	ErrCommandRunnerMissing = errors.New(commandRunnerMissingMessageConstant)
	// ErrLoggerMissing indicates the executor was constructed without a logger.
	ErrLoggerMissing = errors.New(loggerMissingMessageConstant)
	// ErrCommandNameMissing indicates an execution request without an executable name.
	ErrCommandNameMissing = errors.New(commandNameMissingMessageConstant)
)

// NewShellExecutor constructs a ShellExecutor with the provided collaborators.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner, humanReadableLogging bool) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerMissing
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerMissing
	}

	return &ShellExecutor{
		logger:               logger,
		commandRunner:        commandRunner,
		eventObserver:        noopCommandEventObserver{},
		humanReadableLogging: humanReadableLogging,
	}, nil
}

// SetEventObserver registers an observer for command lifecycle notifications.
func (executor *ShellExecutor) SetEventObserver(observer CommandEventObserver) {
	if observer == nil {
		executor.eventObserver = noopCommandEventObserver{}
		return
	}
	executor.eventObserver = observer
}

// ExecuteGit runs git with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// ExecuteGitHubCLI runs the GitHub CLI with the provided details.
func (executor *ShellExecutor) ExecuteGitHubCLI(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.execute(executionContext, ShellCommand{Name: CommandGitHubCLI, Details: details})
}

func (executor *ShellExecutor) execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if len(command.Name) == 0 {
		return ExecutionResult{}, ErrCommandNameMissing
	}

	executor.eventObserver.CommandStarted(command)
	executor.logCommandStarted(command)

	executionResult, executionError := executor.commandRunner.Run(executionContext, command)
	if executionError != nil {
		executor.eventObserver.CommandExecutionFailed(command, executionError)
		executor.logger.Error(
			logMessageCommandFailedConstant,
			zap.String(logFieldCommandNameConstant, string(command.Name)),
			zap.Strings(logFieldCommandArgumentsConstant, command.Details.Arguments),
			zap.Error(executionError),
		)
		return ExecutionResult{}, fmt.Errorf(commandExecutionFailureTemplateConstant, command.Name, executionError)
	}

	executor.eventObserver.CommandCompleted(command, executionResult)

	if executionResult.ExitCode != 0 {
		executor.logger.Warn(
			logMessageCommandFailedConstant,
			zap.String(logFieldCommandNameConstant, string(command.Name)),
			zap.Strings(logFieldCommandArgumentsConstant, command.Details.Arguments),
			zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
			zap.String(logFieldStandardErrorConstant, strings.TrimSpace(executionResult.StandardError)),
		)
		return executionResult, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logCommandCompleted(command, executionResult)

	return executionResult, nil
}

func (executor *ShellExecutor) logCommandStarted(command ShellCommand) {
	if executor.humanReadableLogging {
		startedMessage := NewCommandMessageFormatter().BuildStartedMessage(command)
		if startedMessage != humanReadableMessageSkippedValueConstant {
			executor.logger.Info(startedMessage)
		}
		return
	}

	executor.logger.Debug(
		logMessageCommandStartedConstant,
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldCommandArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	)
}

func (executor *ShellExecutor) logCommandCompleted(command ShellCommand, result ExecutionResult) {
	if executor.humanReadableLogging {
		successMessage := NewCommandMessageFormatter().BuildSuccessMessage(command)
		if successMessage != humanReadableMessageSkippedValueConstant {
			executor.logger.Info(successMessage)
		}
		return
	}

	executor.logger.Debug(
		logMessageCommandCompletedConstant,
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldCommandArgumentsConstant, command.Details.Arguments),
		zap.Int(logFieldExitCodeConstant, result.ExitCode),
	)
}
