package export

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/stacks-network/migration-sync/internal/objectstore"
)

const (
	outputDirectoryPermissionsConstant        = 0o755
	outputFilePermissionsConstant             = 0o644
	objectClientMissingMessageConstant        = "object store client not configured"
	outputDirectoryRequiredMessageConstant    = "output directory must be provided"
	outputDirectoryCreationTemplateConstant   = "unable to create output directory %s: %w"
	datasetDownloadErrorTemplateConstant      = "dataset %s download failed: %w"
	datasetWriteErrorTemplateConstant         = "dataset %s could not be written to %s: %w"
	checksumMismatchTemplateConstant          = "dataset %s checksum mismatch: bucket reports %s, downloaded bytes hash to %s"
	logMessageDatasetDownloadedConstant       = "dataset downloaded"
	logMessageMetadataUnavailableConstant     = "metadata document unavailable, proposal fields will render placeholders"
	logMessageChecksumVerifiedConstant        = "dataset checksum verified"
	logMessageChecksumSkippedConstant         = "dataset checksum verification skipped, metadata carries no hash"
	logFieldDatasetNameConstant               = "dataset"
	logFieldLocalPathConstant                 = "local_path"
	logFieldByteCountConstant                 = "bytes"
	logFieldMetadataURLConstant               = "metadata_url"
)

// DatasetRecord pairs a dataset with its downloaded state and metadata document.
type DatasetRecord struct {
	Dataset           Dataset
	LocalPath         string
	ByteCount         int
	Metadata          objectstore.ObjectMetadata
	MetadataAvailable bool
}

// SyncResult captures the outcome of a sync run across all datasets.
type SyncResult struct {
	Records []DatasetRecord
}

// ChecksumMismatchError reports downloaded bytes that do not hash to the bucket's checksum.
type ChecksumMismatchError struct {
	DatasetName      string
	ExpectedChecksum string
	ActualChecksum   string
}

// Error describes the checksum mismatch.
func (mismatchError ChecksumMismatchError) Error() string {
	return fmt.Sprintf(
		checksumMismatchTemplateConstant,
		mismatchError.DatasetName,
		mismatchError.ExpectedChecksum,
		mismatchError.ActualChecksum,
	)
}

// ObjectFetcher is the minimal interface required from objectstore.Client.
type ObjectFetcher interface {
	FetchMetadata(executionContext context.Context, metadataURL string) (objectstore.ObjectMetadata, error)
	Download(executionContext context.Context, objectURL string) ([]byte, error)
}

// ServiceDependencies describes required collaborators for the sync service.
type ServiceDependencies struct {
	Logger       *zap.Logger
	ObjectClient ObjectFetcher
}

// SyncOptions configures a sync run.
type SyncOptions struct {
	OutputDirectory string
	Datasets        []Dataset
	VerifyChecksums bool
}

// Service downloads every configured dataset and collects metadata records.
type Service struct {
	logger       *zap.Logger
	objectClient ObjectFetcher
}

var (
	errObjectClientMissing    = errors.New(objectClientMissingMessageConstant)
	errOutputDirectoryMissing = errors.New(outputDirectoryRequiredMessageConstant)
)

// NewService constructs a Service with the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.ObjectClient == nil {
		return nil, errObjectClientMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{logger: logger, objectClient: dependencies.ObjectClient}, nil
}

// Execute downloads all datasets into the output directory and returns their records.
//
// A failed download aborts the run. A failed metadata fetch does not: the
// record is marked unavailable and the proposal template renders placeholders
// for its fields.
func (service *Service) Execute(executionContext context.Context, options SyncOptions) (SyncResult, error) {
	if len(options.OutputDirectory) == 0 {
		return SyncResult{}, errOutputDirectoryMissing
	}
	if validationError := ValidateDatasets(options.Datasets); validationError != nil {
		return SyncResult{}, validationError
	}

	if directoryError := os.MkdirAll(options.OutputDirectory, outputDirectoryPermissionsConstant); directoryError != nil {
		return SyncResult{}, fmt.Errorf(outputDirectoryCreationTemplateConstant, options.OutputDirectory, directoryError)
	}

	records := make([]DatasetRecord, 0, len(options.Datasets))
	for _, dataset := range options.Datasets {
		record, recordError := service.syncDataset(executionContext, options, dataset)
		if recordError != nil {
			return SyncResult{}, recordError
		}
		records = append(records, record)
	}

	return SyncResult{Records: records}, nil
}

func (service *Service) syncDataset(executionContext context.Context, options SyncOptions, dataset Dataset) (DatasetRecord, error) {
	objectBytes, downloadError := service.objectClient.Download(executionContext, dataset.ObjectURL)
	if downloadError != nil {
		return DatasetRecord{}, fmt.Errorf(datasetDownloadErrorTemplateConstant, dataset.Name, downloadError)
	}

	localPath := filepath.Join(options.OutputDirectory, dataset.LocalFileName)
	if writeError := os.WriteFile(localPath, objectBytes, outputFilePermissionsConstant); writeError != nil {
		return DatasetRecord{}, fmt.Errorf(datasetWriteErrorTemplateConstant, dataset.Name, localPath, writeError)
	}

	record := DatasetRecord{
		Dataset:   dataset,
		LocalPath: localPath,
		ByteCount: len(objectBytes),
	}

	service.logger.Info(
		logMessageDatasetDownloadedConstant,
		zap.String(logFieldDatasetNameConstant, dataset.Name),
		zap.String(logFieldLocalPathConstant, localPath),
		zap.Int(logFieldByteCountConstant, len(objectBytes)),
	)

	metadata, metadataError := service.objectClient.FetchMetadata(executionContext, dataset.MetadataURL)
	if metadataError != nil {
		service.logger.Warn(
			logMessageMetadataUnavailableConstant,
			zap.String(logFieldDatasetNameConstant, dataset.Name),
			zap.String(logFieldMetadataURLConstant, dataset.MetadataURL),
			zap.Error(metadataError),
		)
		return record, nil
	}

	record.Metadata = metadata
	record.MetadataAvailable = true

	if options.VerifyChecksums {
		if verificationError := service.verifyChecksum(dataset, objectBytes, metadata); verificationError != nil {
			return DatasetRecord{}, verificationError
		}
	}

	return record, nil
}

func (service *Service) verifyChecksum(dataset Dataset, objectBytes []byte, metadata objectstore.ObjectMetadata) error {
	if len(metadata.MD5Hash) == 0 {
		service.logger.Warn(
			logMessageChecksumSkippedConstant,
			zap.String(logFieldDatasetNameConstant, dataset.Name),
		)
		return nil
	}

	digest := md5.Sum(objectBytes)
	actualChecksum := base64.StdEncoding.EncodeToString(digest[:])
	if actualChecksum != metadata.MD5Hash {
		return ChecksumMismatchError{
			DatasetName:      dataset.Name,
			ExpectedChecksum: metadata.MD5Hash,
			ActualChecksum:   actualChecksum,
		}
	}

	service.logger.Debug(
		logMessageChecksumVerifiedConstant,
		zap.String(logFieldDatasetNameConstant, dataset.Name),
	)

	return nil
}
