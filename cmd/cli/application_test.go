package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stacks-network/migration-sync/internal/utils"
)

const applicationTestConfigContent = `common:
  log_level: warn
  log_format: console
tools:
  sync:
    repository: /srv/stacks-blockchain
    source_branch: auto/testnet-export
`

func TestNewApplicationRegistersSyncCommand(testInstance *testing.T) {
	application := NewApplication()

	commandNames := make([]string, 0)
	for _, registeredCommand := range application.rootCommand.Commands() {
		commandNames = append(commandNames, registeredCommand.Name())
	}
	require.Contains(testInstance, commandNames, "sync")

	require.NotNil(testInstance, application.rootCommand.PersistentFlags().Lookup("config"))
	require.NotNil(testInstance, application.rootCommand.PersistentFlags().Lookup("log-level"))
	require.NotNil(testInstance, application.rootCommand.PersistentFlags().Lookup("log-format"))
}

func TestInitializeConfigurationAppliesDefaults(testInstance *testing.T) {
	application := NewApplication()

	initializationError := application.initializeConfiguration(application.rootCommand)
	require.NoError(testInstance, initializationError)

	require.Equal(testInstance, string(utils.LogLevelInfo), application.configuration.Common.LogLevel)
	require.Equal(testInstance, string(utils.LogFormatStructured), application.configuration.Common.LogFormat)
	require.Equal(testInstance, ".", application.configuration.Tools.Sync.RepositoryPath)
	require.Equal(testInstance, "auto/chainstate-export", application.configuration.Tools.Sync.SourceBranch)
	require.Equal(testInstance, "master", application.configuration.Tools.Sync.BaseBranch)
	require.True(testInstance, application.configuration.Tools.Sync.VerifyChecksums)
	require.NotNil(testInstance, application.logger)
}

func TestInitializeConfigurationReadsConfigurationFile(testInstance *testing.T) {
	configurationFilePath := filepath.Join(testInstance.TempDir(), "config.yaml")
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(applicationTestConfigContent), 0o644))

	application := NewApplication()
	application.configurationFilePath = configurationFilePath

	initializationError := application.initializeConfiguration(application.rootCommand)
	require.NoError(testInstance, initializationError)

	require.Equal(testInstance, "warn", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "console", application.configuration.Common.LogFormat)
	require.Equal(testInstance, "/srv/stacks-blockchain", application.configuration.Tools.Sync.RepositoryPath)
	require.Equal(testInstance, "auto/testnet-export", application.configuration.Tools.Sync.SourceBranch)
	require.Equal(testInstance, configurationFilePath, application.configurationMetadata.ConfigFileUsed)

	storedPath, pathAvailable := application.commandContextAccessor.ConfigurationFilePath(application.rootCommand.Context())
	require.True(testInstance, pathAvailable)
	require.Equal(testInstance, configurationFilePath, storedPath)
}

func TestInitializeConfigurationHonorsFlagOverrides(testInstance *testing.T) {
	application := NewApplication()
	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set("log-level", "debug"))

	initializationError := application.initializeConfiguration(application.rootCommand)
	require.NoError(testInstance, initializationError)

	require.Equal(testInstance, "debug", application.configuration.Common.LogLevel)
}

func TestInitializeConfigurationRejectsUnknownLogLevel(testInstance *testing.T) {
	application := NewApplication()
	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set("log-level", "verbose"))

	initializationError := application.initializeConfiguration(application.rootCommand)
	require.Error(testInstance, initializationError)
}

func TestHumanReadableLoggingEnabled(testInstance *testing.T) {
	testCases := []struct {
		name            string
		logFormat       string
		expectedEnabled bool
	}{
		{name: "console", logFormat: "console", expectedEnabled: true},
		{name: "console_mixed_case", logFormat: "Console", expectedEnabled: true},
		{name: "structured", logFormat: "structured", expectedEnabled: false},
		{name: "empty", logFormat: "", expectedEnabled: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			application := NewApplication()
			application.configuration.Common.LogFormat = testCase.logFormat
			require.Equal(subtest, testCase.expectedEnabled, application.humanReadableLoggingEnabled())
		})
	}
}

func TestRootCommandPrintsHelpWithoutArguments(testInstance *testing.T) {
	application := NewApplication()

	outputBuffer := &bytes.Buffer{}
	application.rootCommand.SetOut(outputBuffer)
	application.rootCommand.SetErr(outputBuffer)
	application.rootCommand.SetArgs([]string{})

	require.NoError(testInstance, application.Execute())
	require.Contains(testInstance, outputBuffer.String(), "sync")
}
