package catalog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"dat-manager/core/database"
	"dat-manager/core/storage/mocks"
	"dat-manager/feature/datjson"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	bucket = "test-bucket"

	docA = `{"header":{"name":"A"},"machines":[{"name":"game","items":[
		{"type":"rom","name":"x.bin","size":4,"crc":"11111111"},
		{"type":"rom","name":"y.bin","size":4,"crc":"22222222"}]}]}`
	docB = `{"header":{"name":"B"},"machines":[{"name":"game","items":[
		{"type":"rom","name":"x.bin","size":4,"crc":"11111111","sha1":"0123456789abcdef0123456789abcdef01234567"}]}]}`
	docRegions = `{"header":{"name":"R"},"machines":[
		{"name":"Game (USA)","items":[{"type":"rom","name":"u.bin","crc":"33333333"}]},
		{"name":"Game (Europe)","cloneof":"Game (USA)","items":[{"type":"rom","name":"e.bin","crc":"44444444"}]}]}`
)

func newTestService(t *testing.T, cfg Config) (*Service, *mocks.Client) {
	t.Helper()
	client := new(mocks.Client)
	svc := NewService(cfg, Backends{Client: client, Bucket: bucket}, zaptest.NewLogger(t))
	return svc, client
}

func defaultConfig() Config {
	return Config{Workers: 2, Dedupe: "none", InputPrefix: "incoming/", OutputPrefix: "processed/"}
}

// expectObject serves body from key; every call reads it from the start.
func expectObject(client *mocks.Client, key, body string) {
	client.On("GetObject", mock.Anything, bucket, key, mock.Anything).
		Return(func(context.Context, string, string, minio.GetObjectOptions) (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		}, nil)
}

// expectOutput captures the document written to key.
func expectOutput(client *mocks.Client, key string) *bytes.Buffer {
	var out bytes.Buffer
	client.On("BucketExists", mock.Anything, bucket).Return(true, nil)
	client.On("PutObject", mock.Anything, bucket, key, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			_, _ = io.Copy(&out, args.Get(3).(io.Reader))
		}).
		Return(minio.UploadInfo{}, nil)
	return &out
}

func TestProcess_MergesInputs(t *testing.T) {
	svc, client := newTestService(t, defaultConfig())
	expectObject(client, "a.json", docA)
	expectObject(client, "b.json", docB)
	out := expectOutput(client, "processed/merged.json")

	report, err := svc.Process(context.Background(), Request{
		Inputs: []string{"a.json", "b.json"},
		Name:   "merged",
		Dedupe: "full",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.json", "b.json"}, report.Inputs)
	assert.Equal(t, "processed/merged.json", report.Output)
	assert.Equal(t, int64(3), report.Before.Total)
	assert.Equal(t, int64(2), report.After.Total)
	assert.Equal(t, 1, report.Buckets)
	assert.Empty(t, report.RunID)

	doc, err := datjson.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, "merged", doc.Header.Name)
	require.Len(t, doc.Machines, 1)
	require.Len(t, doc.Machines[0].Items, 2)
	assert.Equal(t, "x.bin", doc.Machines[0].Items[0].Name)
	assert.Equal(t, "0123456789abcdef0123456789abcdef01234567", doc.Machines[0].Items[0].SHA1)
	assert.Equal(t, "y.bin", doc.Machines[0].Items[1].Name)
	client.AssertExpectations(t)
}

func TestProcess_ListsInputPrefix(t *testing.T) {
	svc, client := newTestService(t, defaultConfig())
	client.On("ListObjects", mock.Anything, bucket, mock.Anything).
		Return(mocks.Objects("incoming/", "incoming/a.json"))
	expectObject(client, "incoming/a.json", docA)
	expectOutput(client, "processed/catalog.json")

	report, err := svc.Process(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, []string{"incoming/a.json"}, report.Inputs)
	assert.Equal(t, int64(2), report.After.Total)
}

func TestProcess_NoInputs(t *testing.T) {
	svc, client := newTestService(t, defaultConfig())
	client.On("ListObjects", mock.Anything, bucket, mock.Anything).Return(mocks.Objects())

	_, err := svc.Process(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrNoInputs)
}

func TestProcess_InvalidRequest(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"dedupe", Request{Inputs: []string{"a"}, Dedupe: "sometimes"}},
		{"key", Request{Inputs: []string{"a"}, Key: "colour"}},
		{"type", Request{Inputs: []string{"a"}, Types: []string{"widget"}}},
		{"status", Request{Inputs: []string{"a"}, Statuses: []string{"shiny"}}},
		{"pattern", Request{Inputs: []string{"a"}, MachinePattern: "("}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, defaultConfig())
			_, err := svc.Process(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestProcess_ExportWithoutDatabase(t *testing.T) {
	svc, _ := newTestService(t, defaultConfig())
	_, err := svc.Process(context.Background(), Request{Inputs: []string{"a.json"}, Export: true})
	assert.ErrorIs(t, err, ErrNoDatabase)
}

func TestProcess_GetObjectError(t *testing.T) {
	svc, client := newTestService(t, defaultConfig())
	client.On("GetObject", mock.Anything, bucket, "a.json", mock.Anything).
		Return(nil, errors.New("boom"))

	_, err := svc.Process(context.Background(), Request{Inputs: []string{"a.json"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.json")
}

func TestProcess_MalformedInput(t *testing.T) {
	svc, client := newTestService(t, defaultConfig())
	expectObject(client, "a.json", `{"machines":`)

	_, err := svc.Process(context.Background(), Request{Inputs: []string{"a.json"}})
	require.Error(t, err)
	assert.True(t, datjson.Error.Has(err))
}

func TestProcess_Regions(t *testing.T) {
	cfg := defaultConfig()
	cfg.Regions = "Europe, USA"
	svc, client := newTestService(t, cfg)
	expectObject(client, "r.json", docRegions)
	out := expectOutput(client, "processed/catalog.json")

	report, err := svc.Process(context.Background(), Request{Inputs: []string{"r.json"}})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Families)
	assert.Equal(t, 1, report.RemovedMachines)
	assert.Equal(t, int64(1), report.After.Total)

	doc, err := datjson.Decode(out)
	require.NoError(t, err)
	require.Len(t, doc.Machines, 1)
	assert.Equal(t, "Game (Europe)", doc.Machines[0].Name)
	assert.Empty(t, doc.Machines[0].CloneOf)
}

func TestProcess_Filters(t *testing.T) {
	svc, client := newTestService(t, defaultConfig())
	expectObject(client, "a.json", docA)
	out := expectOutput(client, "processed/catalog.json")

	report, err := svc.Process(context.Background(), Request{
		Inputs:         []string{"a.json"},
		MachinePattern: "^nomatch$",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Filtered)
	assert.Equal(t, 2, report.Removed)
	assert.Equal(t, int64(0), report.After.Total)

	doc, err := datjson.Decode(out)
	require.NoError(t, err)
	assert.Empty(t, doc.Machines)
}

func TestProcess_OneItemPerGame(t *testing.T) {
	svc, client := newTestService(t, defaultConfig())
	expectObject(client, "a.json", docA)
	out := expectOutput(client, "processed/catalog.json")

	_, err := svc.Process(context.Background(), Request{Inputs: []string{"a.json"}, OneItemPerGame: true})
	require.NoError(t, err)

	doc, err := datjson.Decode(out)
	require.NoError(t, err)
	var names []string
	for _, m := range doc.Machines {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"game/x", "game/y"}, names)
}

func TestProcess_Export(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	client := new(mocks.Client)
	svc := NewService(defaultConfig(), Backends{Client: client, Bucket: bucket, DB: db, BatchSize: 10}, zaptest.NewLogger(t))
	expectObject(client, "a.json", docA)
	expectOutput(client, "processed/catalog.json")

	report, err := svc.Process(context.Background(), Request{Inputs: []string{"a.json"}, Export: true})
	require.NoError(t, err)
	require.NotEmpty(t, report.RunID)

	var count int64
	require.NoError(t, db.Model(&database.ItemRecord{}).Where("run_id = ?", report.RunID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestProcess_ReconcileRun(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	client := new(mocks.Client)
	svc := NewService(defaultConfig(), Backends{Client: client, Bucket: bucket, DB: db, BatchSize: 10}, zaptest.NewLogger(t))
	expectObject(client, "a.json", docA)
	expectObject(client, "b.json", docB)
	expectOutput(client, "processed/catalog.json")

	first, err := svc.Process(context.Background(), Request{Inputs: []string{"a.json"}, Export: true})
	require.NoError(t, err)
	client.AssertNumberOfCalls(t, "GetObject", 1)

	dry, err := svc.Process(context.Background(), Request{Inputs: []string{"b.json"}, RunID: first.RunID, DryRun: true})
	require.NoError(t, err)
	require.NotNil(t, dry.Reconcile)
	assert.Equal(t, 1, dry.Reconcile.MissingCatalog)
	assert.Equal(t, 1, dry.Reconcile.Mismatches)
	assert.Zero(t, dry.Applied)

	report, err := svc.Process(context.Background(), Request{Inputs: []string{"b.json"}, RunID: first.RunID})
	require.NoError(t, err)
	assert.Equal(t, first.RunID, report.RunID)
	assert.Equal(t, 2, report.Applied)

	var items []database.ItemRecord
	require.NoError(t, db.Where("run_id = ?", first.RunID).Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, "x.bin", items[0].Name)
	assert.Equal(t, "0123456789abcdef0123456789abcdef01234567", items[0].SHA1)
	client.AssertNumberOfCalls(t, "GetObject", 3)
}

func TestConfig_RegionList(t *testing.T) {
	assert.Equal(t, []string{"USA", "Europe"}, Config{Regions: " USA, ,Europe "}.RegionList())
	assert.Empty(t, Config{}.RegionList())
}
