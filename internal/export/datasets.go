package export

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	chainstateDatasetNameConstant        = "chainstate"
	chainstateHashDatasetNameConstant    = "chainstate_hash"
	nameZonefilesDatasetNameConstant     = "name_zonefiles"
	nameZonefilesHashDatasetNameConstant = "name_zonefiles_hash"
	chainstateLocalFileNameConstant      = "chainstate.txt"
	chainstateHashLocalFileNameConstant  = "chainstate.txt.sha256"
	nameZonefilesLocalFileNameConstant   = "name_zonefiles.txt"
	nameZonefilesHashLocalFileConstant   = "name_zonefiles.txt.sha256"
	defaultBucketMediaBaseURLConstant    = "https://storage.googleapis.com/blockstack-v1-migration-data"
	defaultBucketMetadataBaseURLConstant = "https://storage.googleapis.com/storage/v1/b/blockstack-v1-migration-data/o"
	mediaURLTemplateConstant             = "%s/%s"
	metadataURLTemplateConstant          = "%s/%s"
	manifestReadErrorTemplateConstant    = "failed to load dataset manifest: %w"
	manifestParseErrorTemplateConstant   = "failed to parse dataset manifest: %w"
	manifestEmptyMessageConstant         = "dataset manifest must define at least one dataset"
	manifestNameMissingMessageConstant   = "dataset manifest entry missing name"
	manifestFieldMissingTemplateConstant = "dataset %s missing %s"
	manifestDuplicateNameTemplate        = "dataset manifest defines duplicate name %s"
	objectURLFieldLabelConstant          = "object url"
	metadataURLFieldLabelConstant        = "metadata url"
	localFileFieldLabelConstant          = "local file name"
)

// Dataset describes one remote resource and its local destination.
type Dataset struct {
	Name          string `yaml:"name"`
	ObjectURL     string `yaml:"object_url"`
	MetadataURL   string `yaml:"metadata_url"`
	LocalFileName string `yaml:"local_file"`
}

// Manifest describes the collection of datasets a sync run processes.
type Manifest struct {
	Datasets []Dataset `yaml:"datasets"`
}

// DefaultDatasets returns the four export artifacts published by the migration bucket.
func DefaultDatasets() []Dataset {
	return []Dataset{
		{
			Name:          chainstateDatasetNameConstant,
			ObjectURL:     fmt.Sprintf(mediaURLTemplateConstant, defaultBucketMediaBaseURLConstant, chainstateLocalFileNameConstant),
			MetadataURL:   fmt.Sprintf(metadataURLTemplateConstant, defaultBucketMetadataBaseURLConstant, chainstateLocalFileNameConstant),
			LocalFileName: chainstateLocalFileNameConstant,
		},
		{
			Name:          chainstateHashDatasetNameConstant,
			ObjectURL:     fmt.Sprintf(mediaURLTemplateConstant, defaultBucketMediaBaseURLConstant, chainstateHashLocalFileNameConstant),
			MetadataURL:   fmt.Sprintf(metadataURLTemplateConstant, defaultBucketMetadataBaseURLConstant, chainstateHashLocalFileNameConstant),
			LocalFileName: chainstateHashLocalFileNameConstant,
		},
		{
			Name:          nameZonefilesDatasetNameConstant,
			ObjectURL:     fmt.Sprintf(mediaURLTemplateConstant, defaultBucketMediaBaseURLConstant, nameZonefilesLocalFileNameConstant),
			MetadataURL:   fmt.Sprintf(metadataURLTemplateConstant, defaultBucketMetadataBaseURLConstant, nameZonefilesLocalFileNameConstant),
			LocalFileName: nameZonefilesLocalFileNameConstant,
		},
		{
			Name:          nameZonefilesHashDatasetNameConstant,
			ObjectURL:     fmt.Sprintf(mediaURLTemplateConstant, defaultBucketMediaBaseURLConstant, nameZonefilesHashLocalFileConstant),
			MetadataURL:   fmt.Sprintf(metadataURLTemplateConstant, defaultBucketMetadataBaseURLConstant, nameZonefilesHashLocalFileConstant),
			LocalFileName: nameZonefilesHashLocalFileConstant,
		},
	}
}

// LoadManifest reads and validates a dataset manifest from the provided YAML file.
func LoadManifest(manifestPath string) ([]Dataset, error) {
	manifestBytes, readError := os.ReadFile(manifestPath)
	if readError != nil {
		return nil, fmt.Errorf(manifestReadErrorTemplateConstant, readError)
	}

	var manifest Manifest
	if parseError := yaml.Unmarshal(manifestBytes, &manifest); parseError != nil {
		return nil, fmt.Errorf(manifestParseErrorTemplateConstant, parseError)
	}

	if validationError := ValidateDatasets(manifest.Datasets); validationError != nil {
		return nil, validationError
	}

	return manifest.Datasets, nil
}

// ValidateDatasets confirms every dataset entry is complete and uniquely named.
func ValidateDatasets(datasets []Dataset) error {
	if len(datasets) == 0 {
		return errors.New(manifestEmptyMessageConstant)
	}

	seenNames := make(map[string]struct{}, len(datasets))
	for _, dataset := range datasets {
		if len(dataset.Name) == 0 {
			return errors.New(manifestNameMissingMessageConstant)
		}
		if _, duplicated := seenNames[dataset.Name]; duplicated {
			return fmt.Errorf(manifestDuplicateNameTemplate, dataset.Name)
		}
		seenNames[dataset.Name] = struct{}{}

		if len(dataset.ObjectURL) == 0 {
			return fmt.Errorf(manifestFieldMissingTemplateConstant, dataset.Name, objectURLFieldLabelConstant)
		}
		if len(dataset.MetadataURL) == 0 {
			return fmt.Errorf(manifestFieldMissingTemplateConstant, dataset.Name, metadataURLFieldLabelConstant)
		}
		if len(dataset.LocalFileName) == 0 {
			return fmt.Errorf(manifestFieldMissingTemplateConstant, dataset.Name, localFileFieldLabelConstant)
		}
	}

	return nil
}
