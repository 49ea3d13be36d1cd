package sync

import "strings"

const (
	configurationRepositoryKeySuffix      = ".repository"
	configurationRemoteKeySuffix          = ".remote"
	configurationOutputDirectoryKeySuffix = ".output_directory"
	configurationSourceBranchKeySuffix    = ".source_branch"
	configurationBaseBranchKeySuffix      = ".base_branch"
	configurationTitleKeySuffix           = ".title"
	configurationCommitMessageKeySuffix   = ".commit_message"
	configurationCommitterNameKeySuffix   = ".committer_name"
	configurationCommitterEmailKeySuffix  = ".committer_email"
	configurationAssigneesKeySuffix       = ".assignees"
	configurationReviewersKeySuffix       = ".reviewers"
	configurationVerifyChecksumsKeySuffix = ".verify_checksums"
	configurationManifestKeySuffix        = ".manifest"

	defaultRepositoryPathConstant  = "."
	defaultRemoteNameConstant      = "origin"
	defaultOutputDirectoryConstant = "stx-genesis"
	defaultSourceBranchConstant    = "auto/chainstate-export"
	defaultBaseBranchConstant      = "master"
	defaultTitleConstant           = "Update chainstate and name zonefile exports"
	defaultCommitMessageConstant   = "Update migration export artifacts"
	defaultCommitterNameConstant   = "migration-sync-bot"
	defaultCommitterEmailConstant  = "migration-sync-bot@users.noreply.github.com"
	defaultVerifyChecksumsConstant = true
)

// CommandConfiguration captures configuration values for the sync command.
type CommandConfiguration struct {
	RepositoryPath  string   `mapstructure:"repository"`
	RemoteName      string   `mapstructure:"remote"`
	OutputDirectory string   `mapstructure:"output_directory"`
	SourceBranch    string   `mapstructure:"source_branch"`
	BaseBranch      string   `mapstructure:"base_branch"`
	Title           string   `mapstructure:"title"`
	CommitMessage   string   `mapstructure:"commit_message"`
	CommitterName   string   `mapstructure:"committer_name"`
	CommitterEmail  string   `mapstructure:"committer_email"`
	Assignees       []string `mapstructure:"assignees"`
	Reviewers       []string `mapstructure:"reviewers"`
	VerifyChecksums bool     `mapstructure:"verify_checksums"`
	ManifestPath    string   `mapstructure:"manifest"`
}

// DefaultConfigurationValues maps configuration keys under the provided prefix to their defaults.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + configurationRepositoryKeySuffix:      defaultRepositoryPathConstant,
		configurationKeyPrefix + configurationRemoteKeySuffix:          defaultRemoteNameConstant,
		configurationKeyPrefix + configurationOutputDirectoryKeySuffix: defaultOutputDirectoryConstant,
		configurationKeyPrefix + configurationSourceBranchKeySuffix:    defaultSourceBranchConstant,
		configurationKeyPrefix + configurationBaseBranchKeySuffix:      defaultBaseBranchConstant,
		configurationKeyPrefix + configurationTitleKeySuffix:           defaultTitleConstant,
		configurationKeyPrefix + configurationCommitMessageKeySuffix:   defaultCommitMessageConstant,
		configurationKeyPrefix + configurationCommitterNameKeySuffix:   defaultCommitterNameConstant,
		configurationKeyPrefix + configurationCommitterEmailKeySuffix:  defaultCommitterEmailConstant,
		configurationKeyPrefix + configurationAssigneesKeySuffix:       []string{},
		configurationKeyPrefix + configurationReviewersKeySuffix:       []string{},
		configurationKeyPrefix + configurationVerifyChecksumsKeySuffix: defaultVerifyChecksumsConstant,
		configurationKeyPrefix + configurationManifestKeySuffix:        "",
	}
}

// sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.RepositoryPath = strings.TrimSpace(configuration.RepositoryPath)
	sanitized.RemoteName = strings.TrimSpace(configuration.RemoteName)
	sanitized.OutputDirectory = strings.TrimSpace(configuration.OutputDirectory)
	sanitized.SourceBranch = strings.TrimSpace(configuration.SourceBranch)
	sanitized.BaseBranch = strings.TrimSpace(configuration.BaseBranch)
	sanitized.Title = strings.TrimSpace(configuration.Title)
	sanitized.CommitMessage = strings.TrimSpace(configuration.CommitMessage)
	sanitized.CommitterName = strings.TrimSpace(configuration.CommitterName)
	sanitized.CommitterEmail = strings.TrimSpace(configuration.CommitterEmail)
	sanitized.ManifestPath = strings.TrimSpace(configuration.ManifestPath)
	sanitized.Assignees = sanitizeList(configuration.Assignees)
	sanitized.Reviewers = sanitizeList(configuration.Reviewers)

	return sanitized
}

func sanitizeList(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	for _, candidate := range raw {
		trimmed := strings.TrimSpace(candidate)
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}
