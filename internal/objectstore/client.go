package objectstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultRequestTimeoutConstant        = 5 * time.Minute
	httpClientMissingMessageConstant     = "http client not configured"
	requestErrorTemplateConstant         = "request to %s failed: %s"
	statusErrorTemplateConstant          = "request to %s returned status %d"
	metadataDecodeErrorTemplateConstant  = "metadata document from %s could not be decoded: %s"
	requestCreationErrorTemplateConstant = "unable to build request for %s: %w"
)

// ObjectMetadata captures the metadata document fields describing a stored object.
type ObjectMetadata struct {
	TimeCreated string `json:"timeCreated"`
	Size        string `json:"size"`
	MD5Hash     string `json:"md5Hash"`
	MediaLink   string `json:"mediaLink"`
}

// UnmarshalJSON accepts the size field as either a quoted decimal string or a bare number.
func (metadata *ObjectMetadata) UnmarshalJSON(data []byte) error {
	var document struct {
		TimeCreated string          `json:"timeCreated"`
		Size        json.RawMessage `json:"size"`
		MD5Hash     string          `json:"md5Hash"`
		MediaLink   string          `json:"mediaLink"`
	}

	if decodeError := json.Unmarshal(data, &document); decodeError != nil {
		return decodeError
	}

	metadata.TimeCreated = document.TimeCreated
	metadata.MD5Hash = document.MD5Hash
	metadata.MediaLink = document.MediaLink
	metadata.Size = decodeSizeField(document.Size)

	return nil
}

func decodeSizeField(rawSize json.RawMessage) string {
	if len(rawSize) == 0 {
		return ""
	}

	var quotedSize string
	if stringError := json.Unmarshal(rawSize, &quotedSize); stringError == nil {
		return quotedSize
	}

	var numericSize int64
	if numberError := json.Unmarshal(rawSize, &numericSize); numberError == nil {
		return strconv.FormatInt(numericSize, 10)
	}

	return ""
}

// RequestError reports a transport-level fetch failure.
type RequestError struct {
	URL   string
	Cause error
}

// Error describes the transport failure.
func (requestError RequestError) Error() string {
	return fmt.Sprintf(requestErrorTemplateConstant, requestError.URL, requestError.Cause)
}

// Unwrap exposes the underlying transport error.
func (requestError RequestError) Unwrap() error {
	return requestError.Cause
}

// StatusError reports a non-success HTTP status.
type StatusError struct {
	URL        string
	StatusCode int
}

// Error describes the unexpected status.
func (statusError StatusError) Error() string {
	return fmt.Sprintf(statusErrorTemplateConstant, statusError.URL, statusError.StatusCode)
}

// MetadataDecodeError reports an unparsable metadata document.
type MetadataDecodeError struct {
	URL   string
	Cause error
}

// Error describes the decoding failure.
func (decodeError MetadataDecodeError) Error() string {
	return fmt.Sprintf(metadataDecodeErrorTemplateConstant, decodeError.URL, decodeError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodeError MetadataDecodeError) Unwrap() error {
	return decodeError.Cause
}

// HTTPDoer is the minimal interface required from net/http clients.
type HTTPDoer interface {
	Do(request *http.Request) (*http.Response, error)
}

// Client downloads bucket objects and their metadata documents.
type Client struct {
	httpClient HTTPDoer
}

// ErrHTTPClientMissing indicates the client was constructed without an HTTP client.
var ErrHTTPClientMissing = errors.New(httpClientMissingMessageConstant)

// NewClient constructs a Client using the provided HTTP client, or a default client when nil.
func NewClient(httpClient HTTPDoer) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeoutConstant}
	}
	return &Client{httpClient: httpClient}
}

// FetchMetadata retrieves and decodes the metadata document at the provided URL.
func (client *Client) FetchMetadata(executionContext context.Context, metadataURL string) (ObjectMetadata, error) {
	responseBody, fetchError := client.fetch(executionContext, metadataURL)
	if fetchError != nil {
		return ObjectMetadata{}, fetchError
	}

	var metadata ObjectMetadata
	if decodeError := json.Unmarshal(responseBody, &metadata); decodeError != nil {
		return ObjectMetadata{}, MetadataDecodeError{URL: metadataURL, Cause: decodeError}
	}

	return metadata, nil
}

// Download retrieves the raw bytes of the object at the provided URL.
func (client *Client) Download(executionContext context.Context, objectURL string) ([]byte, error) {
	return client.fetch(executionContext, objectURL)
}

func (client *Client) fetch(executionContext context.Context, resourceURL string) ([]byte, error) {
	if client.httpClient == nil {
		return nil, ErrHTTPClientMissing
	}

	request, requestError := http.NewRequestWithContext(executionContext, http.MethodGet, resourceURL, nil)
	if requestError != nil {
		return nil, fmt.Errorf(requestCreationErrorTemplateConstant, resourceURL, requestError)
	}

	response, responseError := client.httpClient.Do(request)
	if responseError != nil {
		return nil, RequestError{URL: resourceURL, Cause: responseError}
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, StatusError{URL: resourceURL, StatusCode: response.StatusCode}
	}

	responseBody, readError := io.ReadAll(response.Body)
	if readError != nil {
		return nil, RequestError{URL: resourceURL, Cause: readError}
	}

	return responseBody, nil
}
