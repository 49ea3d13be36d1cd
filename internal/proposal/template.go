package proposal

import (
	"strconv"
	"strings"
	"text/template"

	"github.com/stacks-network/migration-sync/internal/export"
)

const (
	missingFieldPlaceholderConstant = "n/a"
	bodyTemplateNameConstant        = "proposal-body"
	bodyTemplateTextConstant        = `This change proposal refreshes the migration export artifacts from the storage bucket.

Export triggered at block height: ` + "`{{.BlockHeight}}`" + `
{{range .Datasets}}
### {{.Title}}

- Created: ` + "`{{.TimeCreated}}`" + `
- Size (bytes): ` + "`{{.Size}}`" + `
- MD5 checksum: ` + "`{{.MD5Hash}}`" + `
- Download: {{.MediaLink}}
{{end}}`
)

// DatasetFields carries the rendered metadata values for one dataset.
type DatasetFields struct {
	Title       string
	TimeCreated string
	Size        string
	MD5Hash     string
	MediaLink   string
}

// BodyData is the input to the proposal body template.
type BodyData struct {
	BlockHeight string
	Datasets    []DatasetFields
}

var bodyTemplate = template.Must(template.New(bodyTemplateNameConstant).Parse(bodyTemplateTextConstant))

// RenderBody produces the pull request body for the provided block height and dataset records.
//
// Metadata fields that were unavailable or returned empty render as the
// placeholder value rather than an empty slot.
func RenderBody(blockHeight uint64, records []export.DatasetRecord) (string, error) {
	bodyData := BodyData{
		BlockHeight: strconv.FormatUint(blockHeight, 10),
		Datasets:    make([]DatasetFields, 0, len(records)),
	}

	for _, record := range records {
		bodyData.Datasets = append(bodyData.Datasets, datasetFields(record))
	}

	var renderedBody strings.Builder
	if executionError := bodyTemplate.Execute(&renderedBody, bodyData); executionError != nil {
		return "", executionError
	}

	return renderedBody.String(), nil
}

func datasetFields(record export.DatasetRecord) DatasetFields {
	fields := DatasetFields{
		Title:       record.Dataset.LocalFileName,
		TimeCreated: missingFieldPlaceholderConstant,
		Size:        missingFieldPlaceholderConstant,
		MD5Hash:     missingFieldPlaceholderConstant,
		MediaLink:   missingFieldPlaceholderConstant,
	}

	if !record.MetadataAvailable {
		return fields
	}

	fields.TimeCreated = fieldOrPlaceholder(record.Metadata.TimeCreated)
	fields.Size = fieldOrPlaceholder(record.Metadata.Size)
	fields.MD5Hash = fieldOrPlaceholder(record.Metadata.MD5Hash)
	fields.MediaLink = fieldOrPlaceholder(record.Metadata.MediaLink)

	return fields
}

func fieldOrPlaceholder(fieldValue string) string {
	trimmedValue := strings.TrimSpace(fieldValue)
	if len(trimmedValue) == 0 {
		return missingFieldPlaceholderConstant
	}
	return trimmedValue
}
