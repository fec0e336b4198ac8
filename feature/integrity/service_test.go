package integrity

import (
	"context"
	"io"
	"strings"
	"testing"

	"dat-manager/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testOptions = Options{Bucket: "test-bucket", InputPrefix: "incoming/", OutputPrefix: "processed/", Workers: 2}

func TestService_Structure(t *testing.T) {
	mockClient := new(mocks.Client)
	svc := NewService(mockClient, nil, testOptions, zap.NewNop())

	t.Run("CheckStructure", func(t *testing.T) {
		mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
		mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).Return(mocks.Objects())

		missing, err := svc.CheckStructure(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, []string{"incoming/", "processed/"}, missing)
	})

	t.Run("FixStructure", func(t *testing.T) {
		mockClient.On("PutObject", mock.Anything, "test-bucket", mock.Anything, mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)
		err := svc.FixStructure(context.Background(), []string{"incoming/"})
		assert.NoError(t, err)
	})
}

func TestService_Documents(t *testing.T) {
	mockClient := new(mocks.Client)
	svc := NewService(mockClient, nil, testOptions, zap.NewNop())

	mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).Return(mocks.Objects("incoming/a.json"))
	mockClient.On("GetObject", mock.Anything, "test-bucket", "incoming/a.json", mock.Anything).
		Return(io.NopCloser(strings.NewReader(`{"header":{"name":"A"},"machines":[]}`)), nil)

	report, err := svc.CheckDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "incoming/", report.Prefix)
	assert.Equal(t, 1, report.Valid)
}

func TestService_SchemaWithoutDatabase(t *testing.T) {
	svc := NewService(new(mocks.Client), nil, testOptions, zap.NewNop())
	_, err := svc.CheckSchema()
	assert.ErrorIs(t, err, ErrNoDatabase)
	_, err = svc.SyncSchema()
	assert.ErrorIs(t, err, ErrNoDatabase)
}
