package execshell_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stacks-network/migration-sync/internal/execshell"
)

func TestCommandMessageFormatterDescriptions(testInstance *testing.T) {
	testCases := []struct {
		name            string
		command         execshell.ShellCommand
		expectedStarted string
		expectedSuccess string
	}{
		{
			name: "git_status",
			command: execshell.ShellCommand{
				Name:    execshell.CommandGit,
				Details: execshell.CommandDetails{Arguments: []string{"status", "--porcelain"}, WorkingDirectory: "/srv/repo"},
			},
			expectedStarted: "Reviewing working tree status in /srv/repo",
			expectedSuccess: "Collected working tree status for /srv/repo",
		},
		{
			name: "git_checkout_reset_branch",
			command: execshell.ShellCommand{
				Name:    execshell.CommandGit,
				Details: execshell.CommandDetails{Arguments: []string{"checkout", "-B", "auto/chainstate-export"}, WorkingDirectory: "/srv/repo"},
			},
			expectedStarted: "Switching /srv/repo to branch auto/chainstate-export",
			expectedSuccess: "/srv/repo now on branch auto/chainstate-export",
		},
		{
			name: "git_commit",
			command: execshell.ShellCommand{
				Name:    execshell.CommandGit,
				Details: execshell.CommandDetails{Arguments: []string{"commit", "-m", "Update migration export artifacts"}, WorkingDirectory: "/srv/repo"},
			},
			expectedStarted: `Creating commit in /srv/repo with message "Update migration export artifacts"`,
			expectedSuccess: `Created commit in /srv/repo with message "Update migration export artifacts"`,
		},
		{
			name: "git_rev_parse_is_silent",
			command: execshell.ShellCommand{
				Name:    execshell.CommandGit,
				Details: execshell.CommandDetails{Arguments: []string{"rev-parse", "--abbrev-ref", "HEAD"}},
			},
			expectedStarted: "",
			expectedSuccess: "",
		},
		{
			name: "github_pull_request_create",
			command: execshell.ShellCommand{
				Name:    execshell.CommandGitHubCLI,
				Details: execshell.CommandDetails{Arguments: []string{"pr", "create", "--title", "Update exports"}, WorkingDirectory: "/srv/repo"},
			},
			expectedStarted: "Opening pull request in /srv/repo",
			expectedSuccess: "Opened pull request in /srv/repo",
		},
		{
			name: "generic_fallback_uses_current_directory_label",
			command: execshell.ShellCommand{
				Name:    execshell.CommandGit,
				Details: execshell.CommandDetails{Arguments: []string{"gc"}},
			},
			expectedStarted: "Running git gc",
			expectedSuccess: "Completed git gc",
		},
	}

	formatter := execshell.NewCommandMessageFormatter()
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			require.Equal(subtest, testCase.expectedStarted, formatter.BuildStartedMessage(testCase.command))
			require.Equal(subtest, testCase.expectedSuccess, formatter.BuildSuccessMessage(testCase.command))
		})
	}
}
