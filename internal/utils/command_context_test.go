package utils_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stacks-network/migration-sync/internal/utils"
)

func TestCommandContextAccessorRoundTripsValues(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	executionContext := accessor.WithConfigurationFilePath(context.Background(), "/etc/migration-sync/config.yaml")
	executionContext = accessor.WithRunIdentifier(executionContext, "f3b3a1de-run")

	configurationFilePath, configurationAvailable := accessor.ConfigurationFilePath(executionContext)
	require.True(testInstance, configurationAvailable)
	require.Equal(testInstance, "/etc/migration-sync/config.yaml", configurationFilePath)

	runIdentifier, runIdentifierAvailable := accessor.RunIdentifier(executionContext)
	require.True(testInstance, runIdentifierAvailable)
	require.Equal(testInstance, "f3b3a1de-run", runIdentifier)
}

func TestCommandContextAccessorHandlesMissingValues(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	_, configurationAvailable := accessor.ConfigurationFilePath(context.Background())
	require.False(testInstance, configurationAvailable)

	_, runIdentifierAvailable := accessor.RunIdentifier(context.Background())
	require.False(testInstance, runIdentifierAvailable)

	_, nilContextAvailable := accessor.ConfigurationFilePath(nil)
	require.False(testInstance, nilContextAvailable)
}

func TestCommandContextAccessorToleratesNilParent(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	executionContext := accessor.WithRunIdentifier(nil, "orphaned-run")
	runIdentifier, runIdentifierAvailable := accessor.RunIdentifier(executionContext)
	require.True(testInstance, runIdentifierAvailable)
	require.Equal(testInstance, "orphaned-run", runIdentifier)
}
