package export_test

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/stacks-network/migration-sync/internal/export"
	"github.com/stacks-network/migration-sync/internal/objectstore"
)

const (
	chainstateObjectContent = "chainstate export payload"
	zonefilesObjectContent  = "zonefile export payload"
)

type fakeObjectFetcher struct {
	objectsByURL   map[string][]byte
	metadataByURL  map[string]objectstore.ObjectMetadata
	downloadError  error
	metadataError  error
	downloadedURLs []string
	metadataURLs   []string
}

func (fetcher *fakeObjectFetcher) Download(_ context.Context, objectURL string) ([]byte, error) {
	fetcher.downloadedURLs = append(fetcher.downloadedURLs, objectURL)
	if fetcher.downloadError != nil {
		return nil, fetcher.downloadError
	}
	return fetcher.objectsByURL[objectURL], nil
}

func (fetcher *fakeObjectFetcher) FetchMetadata(_ context.Context, metadataURL string) (objectstore.ObjectMetadata, error) {
	fetcher.metadataURLs = append(fetcher.metadataURLs, metadataURL)
	if fetcher.metadataError != nil {
		return objectstore.ObjectMetadata{}, fetcher.metadataError
	}
	return fetcher.metadataByURL[metadataURL], nil
}

func checksumOf(objectBytes []byte) string {
	digest := md5.Sum(objectBytes)
	return base64.StdEncoding.EncodeToString(digest[:])
}

func testDatasets() []export.Dataset {
	return []export.Dataset{
		{
			Name:          "chainstate",
			ObjectURL:     "https://storage.example/chainstate.txt",
			MetadataURL:   "https://storage.example/meta/chainstate.txt",
			LocalFileName: "chainstate.txt",
		},
		{
			Name:          "name_zonefiles",
			ObjectURL:     "https://storage.example/name_zonefiles.txt",
			MetadataURL:   "https://storage.example/meta/name_zonefiles.txt",
			LocalFileName: "name_zonefiles.txt",
		},
	}
}

func TestServiceRequiresObjectClient(testInstance *testing.T) {
	_, constructionError := export.NewService(export.ServiceDependencies{})
	require.Error(testInstance, constructionError)
}

func TestExecuteWritesDatasetsAndCollectsMetadata(testInstance *testing.T) {
	datasets := testDatasets()
	fetcher := &fakeObjectFetcher{
		objectsByURL: map[string][]byte{
			datasets[0].ObjectURL: []byte(chainstateObjectContent),
			datasets[1].ObjectURL: []byte(zonefilesObjectContent),
		},
		metadataByURL: map[string]objectstore.ObjectMetadata{
			datasets[0].MetadataURL: {
				TimeCreated: "2021-01-13T20:47:22.811Z",
				Size:        "25",
				MD5Hash:     checksumOf([]byte(chainstateObjectContent)),
				MediaLink:   "https://storage.example/download/chainstate.txt",
			},
			datasets[1].MetadataURL: {
				TimeCreated: "2021-01-13T20:51:08.622Z",
				Size:        "23",
				MD5Hash:     checksumOf([]byte(zonefilesObjectContent)),
				MediaLink:   "https://storage.example/download/name_zonefiles.txt",
			},
		},
	}

	service, constructionError := export.NewService(export.ServiceDependencies{
		Logger:       zaptest.NewLogger(testInstance),
		ObjectClient: fetcher,
	})
	require.NoError(testInstance, constructionError)

	outputDirectory := filepath.Join(testInstance.TempDir(), "stx-genesis")
	result, executionError := service.Execute(context.Background(), export.SyncOptions{
		OutputDirectory: outputDirectory,
		Datasets:        datasets,
		VerifyChecksums: true,
	})
	require.NoError(testInstance, executionError)
	require.Len(testInstance, result.Records, 2)

	for recordIndex, record := range result.Records {
		require.True(testInstance, record.MetadataAvailable)
		require.Equal(testInstance, filepath.Join(outputDirectory, datasets[recordIndex].LocalFileName), record.LocalPath)

		writtenBytes, readError := os.ReadFile(record.LocalPath)
		require.NoError(testInstance, readError)
		require.Equal(testInstance, fetcher.objectsByURL[datasets[recordIndex].ObjectURL], writtenBytes)
		require.Equal(testInstance, len(writtenBytes), record.ByteCount)
	}

	require.Equal(testInstance, "https://storage.example/download/chainstate.txt", result.Records[0].Metadata.MediaLink)
}

func TestExecuteAbortsWhenDownloadFails(testInstance *testing.T) {
	fetcher := &fakeObjectFetcher{downloadError: errors.New("connection reset")}
	service, constructionError := export.NewService(export.ServiceDependencies{
		Logger:       zaptest.NewLogger(testInstance),
		ObjectClient: fetcher,
	})
	require.NoError(testInstance, constructionError)

	_, executionError := service.Execute(context.Background(), export.SyncOptions{
		OutputDirectory: testInstance.TempDir(),
		Datasets:        testDatasets(),
	})
	require.Error(testInstance, executionError)
	require.ErrorContains(testInstance, executionError, "chainstate")
}

func TestExecuteRecordsMetadataAsUnavailableWhenFetchFails(testInstance *testing.T) {
	datasets := testDatasets()
	fetcher := &fakeObjectFetcher{
		objectsByURL: map[string][]byte{
			datasets[0].ObjectURL: []byte(chainstateObjectContent),
			datasets[1].ObjectURL: []byte(zonefilesObjectContent),
		},
		metadataError: errors.New("metadata endpoint unavailable"),
	}
	service, constructionError := export.NewService(export.ServiceDependencies{
		Logger:       zaptest.NewLogger(testInstance),
		ObjectClient: fetcher,
	})
	require.NoError(testInstance, constructionError)

	result, executionError := service.Execute(context.Background(), export.SyncOptions{
		OutputDirectory: testInstance.TempDir(),
		Datasets:        datasets,
		VerifyChecksums: true,
	})
	require.NoError(testInstance, executionError)
	require.Len(testInstance, result.Records, 2)

	for _, record := range result.Records {
		require.False(testInstance, record.MetadataAvailable)
		require.FileExists(testInstance, record.LocalPath)
	}
}

func TestExecuteReportsChecksumMismatch(testInstance *testing.T) {
	datasets := testDatasets()[:1]
	fetcher := &fakeObjectFetcher{
		objectsByURL: map[string][]byte{
			datasets[0].ObjectURL: []byte(chainstateObjectContent),
		},
		metadataByURL: map[string]objectstore.ObjectMetadata{
			datasets[0].MetadataURL: {MD5Hash: "bm90IHRoZSByaWdodCBoYXNo"},
		},
	}
	service, constructionError := export.NewService(export.ServiceDependencies{
		Logger:       zaptest.NewLogger(testInstance),
		ObjectClient: fetcher,
	})
	require.NoError(testInstance, constructionError)

	_, executionError := service.Execute(context.Background(), export.SyncOptions{
		OutputDirectory: testInstance.TempDir(),
		Datasets:        datasets,
		VerifyChecksums: true,
	})

	mismatchError := export.ChecksumMismatchError{}
	require.ErrorAs(testInstance, executionError, &mismatchError)
	require.Equal(testInstance, "chainstate", mismatchError.DatasetName)
	require.Equal(testInstance, checksumOf([]byte(chainstateObjectContent)), mismatchError.ActualChecksum)
}

func TestExecuteSkipsChecksumWhenMetadataOmitsHash(testInstance *testing.T) {
	datasets := testDatasets()[:1]
	fetcher := &fakeObjectFetcher{
		objectsByURL: map[string][]byte{
			datasets[0].ObjectURL: []byte(chainstateObjectContent),
		},
		metadataByURL: map[string]objectstore.ObjectMetadata{
			datasets[0].MetadataURL: {TimeCreated: "2021-01-13T20:47:22.811Z"},
		},
	}
	service, constructionError := export.NewService(export.ServiceDependencies{
		Logger:       zaptest.NewLogger(testInstance),
		ObjectClient: fetcher,
	})
	require.NoError(testInstance, constructionError)

	result, executionError := service.Execute(context.Background(), export.SyncOptions{
		OutputDirectory: testInstance.TempDir(),
		Datasets:        datasets,
		VerifyChecksums: true,
	})
	require.NoError(testInstance, executionError)
	require.True(testInstance, result.Records[0].MetadataAvailable)
}

func TestExecuteRequiresOutputDirectory(testInstance *testing.T) {
	service, constructionError := export.NewService(export.ServiceDependencies{
		ObjectClient: &fakeObjectFetcher{},
	})
	require.NoError(testInstance, constructionError)

	_, executionError := service.Execute(context.Background(), export.SyncOptions{Datasets: testDatasets()})
	require.Error(testInstance, executionError)
}
