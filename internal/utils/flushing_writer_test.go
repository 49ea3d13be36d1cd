package utils_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stacks-network/migration-sync/internal/utils"
)

type flushRecordingWriter struct {
	buffer     bytes.Buffer
	flushCount int
}

func (writer *flushRecordingWriter) Write(data []byte) (int, error) {
	return writer.buffer.Write(data)
}

func (writer *flushRecordingWriter) Flush() error {
	writer.flushCount++
	return nil
}

func TestFlushingWriterFlushesAfterEachWrite(testInstance *testing.T) {
	underlyingWriter := &flushRecordingWriter{}
	flushingWriter := utils.NewFlushingWriter(underlyingWriter)

	bytesWritten, writeError := flushingWriter.Write([]byte("proposal body"))
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, len("proposal body"), bytesWritten)
	require.Equal(testInstance, "proposal body", underlyingWriter.buffer.String())
	require.Equal(testInstance, 1, underlyingWriter.flushCount)
}

func TestFlushingWriterPassesThroughUnflushableWriters(testInstance *testing.T) {
	underlyingBuffer := &bytes.Buffer{}
	flushingWriter := utils.NewFlushingWriter(underlyingBuffer)

	_, writeError := flushingWriter.Write([]byte("artifact listing"))
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, "artifact listing", underlyingBuffer.String())
}

func TestFlushingWriterAvoidsDoubleWrapping(testInstance *testing.T) {
	underlyingBuffer := &bytes.Buffer{}
	wrappedOnce := utils.NewFlushingWriter(underlyingBuffer)
	wrappedTwice := utils.NewFlushingWriter(wrappedOnce)

	require.Same(testInstance, wrappedOnce, wrappedTwice)
}

func TestFlushingWriterReturnsNilForNilWriter(testInstance *testing.T) {
	require.Nil(testInstance, utils.NewFlushingWriter(nil))
}
