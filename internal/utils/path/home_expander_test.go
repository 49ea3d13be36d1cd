package pathutils_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/stacks-network/migration-sync/internal/utils/path"
)

const fakeHomeDirectoryConstant = "/home/operator"

func TestExpandResolvesTildePrefixes(testInstance *testing.T) {
	testCases := []struct {
		name          string
		candidatePath string
		expectedPath  string
	}{
		{name: "bare_tilde", candidatePath: "~", expectedPath: fakeHomeDirectoryConstant},
		{name: "tilde_with_path", candidatePath: "~/repos/stacks-blockchain", expectedPath: "/home/operator/repos/stacks-blockchain"},
		{name: "absolute_path_untouched", candidatePath: "/srv/repos", expectedPath: "/srv/repos"},
		{name: "relative_path_untouched", candidatePath: "repos/stacks-blockchain", expectedPath: "repos/stacks-blockchain"},
		{name: "tilde_username_untouched", candidatePath: "~operator/repos", expectedPath: "~operator/repos"},
		{name: "empty_path", candidatePath: "", expectedPath: ""},
	}

	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return fakeHomeDirectoryConstant, nil
	})

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			require.Equal(subtest, testCase.expectedPath, expander.Expand(testCase.candidatePath))
		})
	}
}

func TestExpandKeepsPathWhenHomeLookupFails(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return "", errors.New("home directory unavailable")
	})

	require.Equal(testInstance, "~/repos", expander.Expand("~/repos"))
}

func TestExpandCachesHomeDirectoryLookup(testInstance *testing.T) {
	lookupCount := 0
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		lookupCount++
		return fakeHomeDirectoryConstant, nil
	})

	expander.Expand("~/first")
	expander.Expand("~/second")
	require.Equal(testInstance, 1, lookupCount)
}
