package execshell

import (
	"fmt"
	"strings"
)

const (
	genericStartTemplateConstant           = "Running %s"
	genericSuccessTemplateConstant         = "Completed %s"
	commandLabelTemplateConstant           = "%s %s"
	commandArgumentsJoinSeparatorConstant  = " "
	defaultWorkingDirectoryLabelConstant   = "current directory"
	gitStatusSubcommandNameConstant        = "status"
	gitCheckoutSubcommandNameConstant      = "checkout"
	gitAddSubcommandNameConstant           = "add"
	gitCommitSubcommandNameConstant        = "commit"
	gitPushSubcommandNameConstant          = "push"
	gitRevParseSubcommandNameConstant      = "rev-parse"
	githubPullRequestSubcommandConstant    = "pr"
	githubPullRequestCreateSubcommand      = "create"
	githubPullRequestEditSubcommand        = "edit"
	githubPullRequestListSubcommand        = "list"
	gitStatusStartTemplateConstant         = "Reviewing working tree status in %s"
	gitStatusSuccessTemplateConstant       = "Collected working tree status for %s"
	gitCheckoutStartTemplateConstant       = "Switching %s to branch %s"
	gitCheckoutSuccessTemplateConstant     = "%s now on branch %s"
	gitAddStartTemplateConstant            = "Staging %s in %s"
	gitAddSuccessTemplateConstant          = "Staged %s in %s"
	gitCommitStartTemplateConstant         = "Creating commit in %s with message %q"
	gitCommitSuccessTemplateConstant       = "Created commit in %s with message %q"
	gitPushStartTemplateConstant           = "Pushing %s from %s"
	gitPushSuccessTemplateConstant         = "Pushed %s from %s"
	githubPRCreateStartTemplateConstant    = "Opening pull request in %s"
	githubPRCreateSuccessTemplateConstant  = "Opened pull request in %s"
	githubPREditStartTemplateConstant      = "Updating pull request in %s"
	githubPREditSuccessTemplateConstant    = "Updated pull request in %s"
	githubPRListStartTemplateConstant      = "Listing pull requests in %s"
	githubPRListSuccessTemplateConstant    = "Listed pull requests in %s"
	checkoutBranchFlagConstant             = "-B"
	argumentsAfterSubcommandStartingOffset = 1
)

// CommandMessageFormatter builds human-readable descriptions of shell commands for console logging.
type CommandMessageFormatter struct{}

// NewCommandMessageFormatter constructs a CommandMessageFormatter.
func NewCommandMessageFormatter() CommandMessageFormatter {
	return CommandMessageFormatter{}
}

// BuildStartedMessage describes a command that is about to execute.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.describeCommand(command, true)
}

// BuildSuccessMessage describes a command that completed successfully.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.describeCommand(command, false)
}

func (formatter CommandMessageFormatter) describeCommand(command ShellCommand, started bool) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitCommand(command, started)
	case CommandGitHubCLI:
		return formatter.describeGitHubCommand(command, started)
	}
	return formatter.describeGenericCommand(command, started)
}

func (formatter CommandMessageFormatter) describeGitCommand(command ShellCommand, started bool) string {
	arguments := command.Details.Arguments
	if len(arguments) == 0 {
		return formatter.describeGenericCommand(command, started)
	}

	workingDirectoryLabel := formatter.workingDirectoryLabel(command)

	switch arguments[0] {
	case gitStatusSubcommandNameConstant:
		if started {
			return fmt.Sprintf(gitStatusStartTemplateConstant, workingDirectoryLabel)
		}
		return fmt.Sprintf(gitStatusSuccessTemplateConstant, workingDirectoryLabel)
	case gitCheckoutSubcommandNameConstant:
		branchName := formatter.firstNonFlagArgument(arguments[argumentsAfterSubcommandStartingOffset:])
		if started {
			return fmt.Sprintf(gitCheckoutStartTemplateConstant, workingDirectoryLabel, branchName)
		}
		return fmt.Sprintf(gitCheckoutSuccessTemplateConstant, workingDirectoryLabel, branchName)
	case gitAddSubcommandNameConstant:
		stagedPaths := strings.Join(arguments[argumentsAfterSubcommandStartingOffset:], commandArgumentsJoinSeparatorConstant)
		if started {
			return fmt.Sprintf(gitAddStartTemplateConstant, stagedPaths, workingDirectoryLabel)
		}
		return fmt.Sprintf(gitAddSuccessTemplateConstant, stagedPaths, workingDirectoryLabel)
	case gitCommitSubcommandNameConstant:
		commitMessage := formatter.commitMessageArgument(arguments)
		if started {
			return fmt.Sprintf(gitCommitStartTemplateConstant, workingDirectoryLabel, commitMessage)
		}
		return fmt.Sprintf(gitCommitSuccessTemplateConstant, workingDirectoryLabel, commitMessage)
	case gitPushSubcommandNameConstant:
		pushTarget := strings.Join(arguments[argumentsAfterSubcommandStartingOffset:], commandArgumentsJoinSeparatorConstant)
		if started {
			return fmt.Sprintf(gitPushStartTemplateConstant, pushTarget, workingDirectoryLabel)
		}
		return fmt.Sprintf(gitPushSuccessTemplateConstant, pushTarget, workingDirectoryLabel)
	case gitRevParseSubcommandNameConstant:
		// rev-parse probes are noise in console output.
		return humanReadableMessageSkippedValueConstant
	}

	return formatter.describeGenericCommand(command, started)
}

func (formatter CommandMessageFormatter) describeGitHubCommand(command ShellCommand, started bool) string {
	arguments := command.Details.Arguments
	if len(arguments) < 2 || arguments[0] != githubPullRequestSubcommandConstant {
		return formatter.describeGenericCommand(command, started)
	}

	workingDirectoryLabel := formatter.workingDirectoryLabel(command)

	switch arguments[1] {
	case githubPullRequestCreateSubcommand:
		if started {
			return fmt.Sprintf(githubPRCreateStartTemplateConstant, workingDirectoryLabel)
		}
		return fmt.Sprintf(githubPRCreateSuccessTemplateConstant, workingDirectoryLabel)
	case githubPullRequestEditSubcommand:
		if started {
			return fmt.Sprintf(githubPREditStartTemplateConstant, workingDirectoryLabel)
		}
		return fmt.Sprintf(githubPREditSuccessTemplateConstant, workingDirectoryLabel)
	case githubPullRequestListSubcommand:
		if started {
			return fmt.Sprintf(githubPRListStartTemplateConstant, workingDirectoryLabel)
		}
		return fmt.Sprintf(githubPRListSuccessTemplateConstant, workingDirectoryLabel)
	}

	return formatter.describeGenericCommand(command, started)
}

func (formatter CommandMessageFormatter) describeGenericCommand(command ShellCommand, started bool) string {
	commandLabel := fmt.Sprintf(
		commandLabelTemplateConstant,
		command.Name,
		strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant),
	)
	if started {
		return fmt.Sprintf(genericStartTemplateConstant, strings.TrimSpace(commandLabel))
	}
	return fmt.Sprintf(genericSuccessTemplateConstant, strings.TrimSpace(commandLabel))
}

func (formatter CommandMessageFormatter) workingDirectoryLabel(command ShellCommand) string {
	if len(command.Details.WorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return command.Details.WorkingDirectory
}

func (formatter CommandMessageFormatter) firstNonFlagArgument(arguments []string) string {
	for _, argument := range arguments {
		if argument == checkoutBranchFlagConstant {
			continue
		}
		if strings.HasPrefix(argument, "-") {
			continue
		}
		return argument
	}
	return ""
}

func (formatter CommandMessageFormatter) commitMessageArgument(arguments []string) string {
	for argumentIndex, argument := range arguments {
		if argument == "-m" && argumentIndex+1 < len(arguments) {
			return arguments[argumentIndex+1]
		}
	}
	return ""
}
