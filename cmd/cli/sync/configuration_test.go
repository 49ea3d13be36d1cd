package sync_test

import (
	"testing"

	"github.com/go-viper/mapstructure/v2"
	"github.com/stretchr/testify/require"

	synccmd "github.com/stacks-network/migration-sync/cmd/cli/sync"
)

const configurationKeyPrefixConstant = "tools.sync"

func TestDefaultConfigurationValuesDecodeIntoConfiguration(testInstance *testing.T) {
	defaults := synccmd.DefaultConfigurationValues(configurationKeyPrefixConstant)

	flattened := make(map[string]any, len(defaults))
	for configurationKey, configurationValue := range defaults {
		require.Contains(testInstance, configurationKey, configurationKeyPrefixConstant+".")
		flattened[configurationKey[len(configurationKeyPrefixConstant)+1:]] = configurationValue
	}

	var configuration synccmd.CommandConfiguration
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{Result: &configuration})
	require.NoError(testInstance, decoderError)
	require.NoError(testInstance, decoder.Decode(flattened))

	require.Equal(testInstance, ".", configuration.RepositoryPath)
	require.Equal(testInstance, "origin", configuration.RemoteName)
	require.Equal(testInstance, "stx-genesis", configuration.OutputDirectory)
	require.Equal(testInstance, "auto/chainstate-export", configuration.SourceBranch)
	require.Equal(testInstance, "master", configuration.BaseBranch)
	require.Equal(testInstance, "Update chainstate and name zonefile exports", configuration.Title)
	require.Equal(testInstance, "Update migration export artifacts", configuration.CommitMessage)
	require.Equal(testInstance, "migration-sync-bot", configuration.CommitterName)
	require.Equal(testInstance, "migration-sync-bot@users.noreply.github.com", configuration.CommitterEmail)
	require.True(testInstance, configuration.VerifyChecksums)
	require.Empty(testInstance, configuration.ManifestPath)
	require.Empty(testInstance, configuration.Assignees)
	require.Empty(testInstance, configuration.Reviewers)
}
