package image

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visionapi/internal/dto"
	"visionapi/internal/entity"
	"visionapi/pkg/types/errs"
)

type nopLogger struct{}

func (nopLogger) Debug(interface{}, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})       {}
func (nopLogger) Warn(string, ...interface{})       {}
func (nopLogger) Error(interface{}, ...interface{}) {}
func (nopLogger) Fatal(interface{}, ...interface{}) {}

type putCall struct {
	key         string
	contentType string
	metadata    map[string]string
}

type fakeObjectRepo struct {
	puts       []putCall
	failPut    bool
	headErr    error
	listErr    error
	objects    []entity.StorageObject
	presignErr error
	bucketErr  error
}

func (f *fakeObjectRepo) Put(_ context.Context, key string, _ io.Reader, contentType string, _ int64, metadata map[string]string) error {
	if f.failPut {
		return errors.New("put failed")
	}
	f.puts = append(f.puts, putCall{key: key, contentType: contentType, metadata: metadata})
	return nil
}

func (f *fakeObjectRepo) PresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return "https://s3.local/" + key, nil
}

func (f *fakeObjectRepo) Head(_ context.Context, _ string) error { return f.headErr }

func (f *fakeObjectRepo) List(_ context.Context, _ string) ([]entity.StorageObject, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.objects, nil
}

func (f *fakeObjectRepo) HeadBucket(_ context.Context) error { return f.bucketErr }

type fakeMetadataRepo struct {
	created    []*entity.Image
	byKey      map[string]*entity.Image
	statuses   map[uuid.UUID]dto.StatusInfo
	getAllErr  error
	getAllRows []*entity.Image
	connErr    error

	statusUpdates []uuid.UUID
}

func (f *fakeMetadataRepo) Create(_ context.Context, image *entity.Image) error {
	f.created = append(f.created, image)
	return nil
}

func (f *fakeMetadataRepo) UpdateStatus(_ context.Context, id uuid.UUID, _ entity.Status, _ *time.Time) error {
	f.statusUpdates = append(f.statusUpdates, id)
	return nil
}

func (f *fakeMetadataRepo) GetByKey(_ context.Context, key string) (*entity.Image, error) {
	img, ok := f.byKey[key]
	if !ok {
		return nil, errs.ErrRecordNotFound
	}
	return img, nil
}

func (f *fakeMetadataRepo) GetAll(_ context.Context) ([]*entity.Image, error) {
	if f.getAllErr != nil {
		return nil, f.getAllErr
	}
	return f.getAllRows, nil
}

func (f *fakeMetadataRepo) GetProcessingStatus(_ context.Context, id uuid.UUID) (*dto.StatusInfo, error) {
	info, ok := f.statuses[id]
	if !ok {
		return nil, errs.ErrRecordNotFound
	}
	return &info, nil
}

func (f *fakeMetadataRepo) TestConnection(_ context.Context) error { return f.connErr }

type fakeDetectionRepo struct {
	labels  map[uuid.UUID][]entity.Label
	persons map[uuid.UUID][]entity.PersonDetection
	faces   map[uuid.UUID][]entity.FaceDetection
}

func (f *fakeDetectionRepo) SaveLabels(context.Context, uuid.UUID, []entity.Label) error {
	return nil
}

func (f *fakeDetectionRepo) SavePersons(context.Context, uuid.UUID, []entity.PersonDetection) error {
	return nil
}

func (f *fakeDetectionRepo) SaveFaces(context.Context, uuid.UUID, []entity.FaceDetection) error {
	return nil
}

func (f *fakeDetectionRepo) LabelsByImage(_ context.Context, id uuid.UUID) ([]entity.Label, error) {
	return f.labels[id], nil
}

func (f *fakeDetectionRepo) PersonsByImage(_ context.Context, id uuid.UUID) ([]entity.PersonDetection, error) {
	return f.persons[id], nil
}

func (f *fakeDetectionRepo) FacesByImage(_ context.Context, id uuid.UUID) ([]entity.FaceDetection, error) {
	return f.faces[id], nil
}

type fakeLogRepo struct {
	entries []*entity.ProcessingLog
}

func (f *fakeLogRepo) Append(_ context.Context, entry *entity.ProcessingLog) error {
	f.entries = append(f.entries, entry)
	return nil
}

type fakeOutboxRepo struct {
	created []*entity.OutboxEvent
	pending []*entity.OutboxEvent

	processing uuid.UUIDs
	completed  uuid.UUIDs
	retried    uuid.UUIDs
}

func (f *fakeOutboxRepo) Create(_ context.Context, event *entity.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}

func (f *fakeOutboxRepo) GetPendingEvents(context.Context, int, int) ([]*entity.OutboxEvent, error) {
	return f.pending, nil
}

func (f *fakeOutboxRepo) MarkAsProcessingBatch(_ context.Context, ids uuid.UUIDs) error {
	f.processing = append(f.processing, ids...)
	return nil
}

func (f *fakeOutboxRepo) MarkAsCompletedBatch(_ context.Context, ids uuid.UUIDs) error {
	f.completed = append(f.completed, ids...)
	return nil
}

func (f *fakeOutboxRepo) MarkAsFailedBatch(context.Context, uuid.UUIDs) error { return nil }

func (f *fakeOutboxRepo) MarkMaxRetriesAsFailed(context.Context, int) error { return nil }

func (f *fakeOutboxRepo) IncrementRetryCountBatch(_ context.Context, ids uuid.UUIDs) error {
	f.retried = append(f.retried, ids...)
	return nil
}

func (f *fakeOutboxRepo) DeleteOldCompletedAndFailed(context.Context) (int64, error) {
	return 0, nil
}

type fakeTransactor struct {
	err   error
	calls int
}

func (f *fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return fn(ctx)
}

func defaultOptions() Options {
	return Options{
		Bucket:       "test-bucket",
		UploadPrefix: "uploads/",
		PresignTTL:   time.Hour,
		UploaderTag:  "image-recognition-system",
	}
}

func newTestUseCase(obj *fakeObjectRepo, meta *fakeMetadataRepo) (*ImageUseCase, *fakeOutboxRepo, *fakeLogRepo) {
	outboxRepo := &fakeOutboxRepo{}
	logRepo := &fakeLogRepo{}

	if meta == nil {
		return New(obj, nil, nil, nil, nil, nil, defaultOptions(), nopLogger{}), outboxRepo, logRepo
	}

	uc := New(obj, meta, &fakeDetectionRepo{}, logRepo, outboxRepo, &fakeTransactor{}, defaultOptions(), nopLogger{})
	return uc, outboxRepo, logRepo
}

func TestUploadImagesEmptyBatch(t *testing.T) {
	uc, _, _ := newTestUseCase(&fakeObjectRepo{}, &fakeMetadataRepo{})

	_, err := uc.UploadImages(context.Background(), nil)
	require.ErrorIs(t, err, errs.ErrNoFilesProvided)
}

func TestUploadImagesOrderAndPartialFailure(t *testing.T) {
	obj := &fakeObjectRepo{}
	meta := &fakeMetadataRepo{}
	uc, outboxRepo, logRepo := newTestUseCase(obj, meta)

	files := []dto.FileUpload{
		{Name: "first.JPG", ContentType: "image/jpeg", Size: 10, Data: strings.NewReader("aaaaaaaaaa")},
		{Name: "broken.png", ContentType: "image/png", Size: 5}, // nil Data
		{Name: "second.png", ContentType: "image/png", Size: 7, Data: strings.NewReader("bbbbbbb")},
	}

	results, err := uc.UploadImages(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "first.JPG", results[0].OriginalName)
	assert.Equal(t, dto.UploadStatusUploaded, results[0].Status)
	assert.Equal(t, entity.Pending, results[0].ProcessingStatus)
	require.NotNil(t, results[0].ImageID)

	assert.Equal(t, "broken.png", results[1].OriginalName)
	assert.Equal(t, dto.UploadStatusFailed, results[1].Status)
	assert.Equal(t, "unable to read file", results[1].Error)
	assert.Nil(t, results[1].ImageID)

	assert.Equal(t, dto.UploadStatusUploaded, results[2].Status)
	require.NotNil(t, results[2].ImageID)

	// one metadata record and one outbox event per successful file
	assert.Len(t, meta.created, 2)
	assert.Len(t, outboxRepo.created, 2)
	assert.Len(t, logRepo.entries, 2)
	assert.Equal(t, *results[0].ImageID, outboxRepo.created[0].AggregateID)

	// keys keep the prefix and the lowercased extension
	require.Len(t, obj.puts, 2)
	assert.True(t, strings.HasPrefix(obj.puts[0].key, "uploads/"))
	assert.True(t, strings.HasSuffix(obj.puts[0].key, ".jpg"))
	assert.NotEqual(t, obj.puts[0].key, obj.puts[1].key)
	assert.Equal(t, "first.JPG", obj.puts[0].metadata["original-name"])
	assert.Equal(t, "image-recognition-system", obj.puts[0].metadata["uploaded-by"])
}

func TestUploadImagesSkipsEmptyNames(t *testing.T) {
	uc, _, _ := newTestUseCase(&fakeObjectRepo{}, &fakeMetadataRepo{})

	results, err := uc.UploadImages(context.Background(), []dto.FileUpload{
		{Name: ""},
		{Name: "ok.png", Size: 2, Data: strings.NewReader("ok")},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ok.png", results[0].OriginalName)
}

func TestUploadImagesStorageFailure(t *testing.T) {
	obj := &fakeObjectRepo{failPut: true}
	meta := &fakeMetadataRepo{}
	uc, outboxRepo, _ := newTestUseCase(obj, meta)

	results, err := uc.UploadImages(context.Background(), []dto.FileUpload{
		{Name: "a.png", Size: 2, Data: strings.NewReader("ab")},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, dto.UploadStatusFailed, results[0].Status)
	assert.Empty(t, meta.created)
	assert.Empty(t, outboxRepo.created)
}

func TestUploadImagesDegradedMode(t *testing.T) {
	obj := &fakeObjectRepo{}
	uc, _, _ := newTestUseCase(obj, nil)

	results, err := uc.UploadImages(context.Background(), []dto.FileUpload{
		{Name: "a.png", Size: 2, Data: strings.NewReader("ab")},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, dto.UploadStatusUploaded, results[0].Status)
	assert.Nil(t, results[0].ImageID)
	assert.Len(t, obj.puts, 1)
	assert.False(t, uc.MetadataEnabled())
}

func TestUploadImagesMetadataTxFailureKeepsObject(t *testing.T) {
	obj := &fakeObjectRepo{}
	meta := &fakeMetadataRepo{}
	outboxRepo := &fakeOutboxRepo{}
	uc := New(obj, meta, &fakeDetectionRepo{}, &fakeLogRepo{}, outboxRepo,
		&fakeTransactor{err: errors.New("tx failed")}, defaultOptions(), nopLogger{})

	results, err := uc.UploadImages(context.Background(), []dto.FileUpload{
		{Name: "a.png", Size: 2, Data: strings.NewReader("ab")},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	// the object stays in storage, the file is reported uploaded with no id
	assert.Equal(t, dto.UploadStatusUploaded, results[0].Status)
	assert.Nil(t, results[0].ImageID)
	assert.Len(t, obj.puts, 1)
}

func TestListImagesFromDatabase(t *testing.T) {
	id := uuid.New()
	now := time.Now().UTC()
	meta := &fakeMetadataRepo{
		getAllRows: []*entity.Image{{
			ID:           id,
			S3Key:        "uploads/x.png",
			OriginalName: "x.png",
			Size:         42,
			Status:       entity.Completed,
			UploadTime:   now,
			ProcessedAt:  &now,
		}},
	}
	detections := &fakeDetectionRepo{
		labels: map[uuid.UUID][]entity.Label{id: {{Name: "Dog", Confidence: 97.5}}},
	}
	uc := New(&fakeObjectRepo{}, meta, detections, &fakeLogRepo{}, &fakeOutboxRepo{},
		&fakeTransactor{}, defaultOptions(), nopLogger{})

	listing, err := uc.ListImages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dto.SourceDatabase, listing.Source)
	require.Len(t, listing.Images, 1)

	view := listing.Images[0]
	assert.Equal(t, "uploads/x.png", view.Key)
	assert.Equal(t, "https://s3.local/uploads/x.png", view.URL)
	assert.Equal(t, entity.Completed, view.ProcessingStatus)
	require.NotNil(t, view.ImageID)
	assert.Equal(t, id, *view.ImageID)
	require.Len(t, view.Labels, 1)
	assert.Equal(t, "Dog", view.Labels[0].Name)
}

func TestListImagesFallbackWhenDatabaseFails(t *testing.T) {
	obj := &fakeObjectRepo{
		objects: []entity.StorageObject{
			{Key: "uploads/abc.png", Size: 10, LastModified: time.Now()},
		},
	}
	meta := &fakeMetadataRepo{getAllErr: errors.New("db down")}
	uc, _, _ := newTestUseCase(obj, meta)

	listing, err := uc.ListImages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dto.SourceS3Fallback, listing.Source)
	require.Len(t, listing.Images, 1)
	assert.Equal(t, "abc.png", listing.Images[0].OriginalName)
	assert.Equal(t, entity.Processing, listing.Images[0].ProcessingStatus)
	assert.Nil(t, listing.Images[0].ImageID)
}

func TestListImagesStorageOnlyStatusUnknown(t *testing.T) {
	obj := &fakeObjectRepo{
		objects: []entity.StorageObject{{Key: "uploads/abc.png", Size: 10, LastModified: time.Now()}},
	}
	uc, _, _ := newTestUseCase(obj, nil)

	listing, err := uc.ListImages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dto.SourceS3Fallback, listing.Source)
	assert.Equal(t, entity.Unknown, listing.Images[0].ProcessingStatus)
}

func TestListImagesStorageError(t *testing.T) {
	obj := &fakeObjectRepo{listErr: errors.New("s3 down")}
	uc, _, _ := newTestUseCase(obj, nil)

	listing, err := uc.ListImages(context.Background())
	require.Error(t, err)
	assert.Equal(t, dto.SourceS3Error, listing.Source)
	assert.Empty(t, listing.Images)
}

func TestImageURL(t *testing.T) {
	meta := &fakeMetadataRepo{
		byKey: map[string]*entity.Image{"uploads/a.png": {S3Key: "uploads/a.png"}},
	}
	uc, _, _ := newTestUseCase(&fakeObjectRepo{}, meta)

	url, err := uc.ImageURL(context.Background(), "uploads/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://s3.local/uploads/a.png", url)

	_, err = uc.ImageURL(context.Background(), "uploads/missing.png")
	require.ErrorIs(t, err, errs.ErrRecordNotFound)
}

func TestImageURLStorageOnlyUsesHead(t *testing.T) {
	obj := &fakeObjectRepo{headErr: errs.ErrRecordNotFound}
	uc, _, _ := newTestUseCase(obj, nil)

	_, err := uc.ImageURL(context.Background(), "uploads/missing.png")
	require.ErrorIs(t, err, errs.ErrRecordNotFound)

	obj.headErr = nil
	url, err := uc.ImageURL(context.Background(), "uploads/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://s3.local/uploads/a.png", url)
}

func TestProcessingStatusMetadataDisabled(t *testing.T) {
	uc, _, _ := newTestUseCase(&fakeObjectRepo{}, nil)

	_, err := uc.ProcessingStatus(context.Background(), uuid.New())
	require.ErrorIs(t, err, errs.ErrMetadataDisabled)

	_, err = uc.BatchProcessingStatus(context.Background(), []uuid.UUID{uuid.New()})
	require.ErrorIs(t, err, errs.ErrMetadataDisabled)
}

func TestBatchProcessingStatus(t *testing.T) {
	known := uuid.New()
	meta := &fakeMetadataRepo{
		statuses: map[uuid.UUID]dto.StatusInfo{
			known: {Status: entity.Completed, UploadTime: time.Now()},
		},
	}
	uc, _, _ := newTestUseCase(&fakeObjectRepo{}, meta)

	_, err := uc.BatchProcessingStatus(context.Background(), nil)
	require.ErrorIs(t, err, errs.ErrNoImageIDs)

	// unknown ids are omitted, not errors
	statuses, err := uc.BatchProcessingStatus(context.Background(), []uuid.UUID{known, uuid.New()})
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, entity.Completed, statuses[known.String()].Status)
}

func TestCheckMetadataDisabled(t *testing.T) {
	uc, _, _ := newTestUseCase(&fakeObjectRepo{}, nil)

	require.ErrorIs(t, uc.CheckMetadata(context.Background()), errs.ErrMetadataDisabled)
	require.NoError(t, uc.CheckStorage(context.Background()))
}
