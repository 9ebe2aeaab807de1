package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visionapi/internal/dto"
	"visionapi/internal/entity"
)

type nopLogger struct{}

func (nopLogger) Debug(interface{}, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})       {}
func (nopLogger) Warn(string, ...interface{})       {}
func (nopLogger) Error(interface{}, ...interface{}) {}
func (nopLogger) Fatal(interface{}, ...interface{}) {}

type txMarker struct{}

// callRecorder tracks the order of repo calls and whether each one ran
// inside the transaction scope.
type callRecorder struct {
	calls []string
}

func (r *callRecorder) record(ctx context.Context, name string) {
	if ctx.Value(txMarker{}) != nil {
		name += ":tx"
	}
	r.calls = append(r.calls, name)
}

type recordingTransactor struct {
	rec *callRecorder
}

func (t *recordingTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(context.WithValue(ctx, txMarker{}, true))
}

type recordingDetectionRepo struct {
	rec *callRecorder

	savedFaces   []entity.FaceDetection
	saveFacesErr error
}

func (r *recordingDetectionRepo) SaveLabels(ctx context.Context, _ uuid.UUID, _ []entity.Label) error {
	r.rec.record(ctx, "SaveLabels")
	return nil
}

func (r *recordingDetectionRepo) SavePersons(ctx context.Context, _ uuid.UUID, _ []entity.PersonDetection) error {
	r.rec.record(ctx, "SavePersons")
	return nil
}

func (r *recordingDetectionRepo) SaveFaces(ctx context.Context, _ uuid.UUID, faces []entity.FaceDetection) error {
	r.rec.record(ctx, "SaveFaces")
	r.savedFaces = faces
	return r.saveFacesErr
}

func (r *recordingDetectionRepo) LabelsByImage(context.Context, uuid.UUID) ([]entity.Label, error) {
	return nil, nil
}

func (r *recordingDetectionRepo) PersonsByImage(context.Context, uuid.UUID) ([]entity.PersonDetection, error) {
	return nil, nil
}

func (r *recordingDetectionRepo) FacesByImage(context.Context, uuid.UUID) ([]entity.FaceDetection, error) {
	return nil, nil
}

type recordingMetadataRepo struct {
	rec *callRecorder

	lastStatus      entity.Status
	lastProcessedAt *time.Time
}

func (r *recordingMetadataRepo) Create(context.Context, *entity.Image) error { return nil }

func (r *recordingMetadataRepo) UpdateStatus(ctx context.Context, _ uuid.UUID, status entity.Status, processedAt *time.Time) error {
	r.rec.record(ctx, "UpdateStatus")
	r.lastStatus = status
	r.lastProcessedAt = processedAt
	return nil
}

func (r *recordingMetadataRepo) GetByKey(context.Context, string) (*entity.Image, error) {
	return nil, nil
}

func (r *recordingMetadataRepo) GetAll(context.Context) ([]*entity.Image, error) { return nil, nil }

func (r *recordingMetadataRepo) GetProcessingStatus(context.Context, uuid.UUID) (*dto.StatusInfo, error) {
	return nil, nil
}

func (r *recordingMetadataRepo) TestConnection(context.Context) error { return nil }

type recordingLogRepo struct {
	entries []*entity.ProcessingLog
}

func (r *recordingLogRepo) Append(_ context.Context, entry *entity.ProcessingLog) error {
	r.entries = append(r.entries, entry)
	return nil
}

func newRecordingUseCase() (*AnalysisUseCase, *callRecorder, *recordingMetadataRepo, *recordingDetectionRepo, *recordingLogRepo) {
	rec := &callRecorder{}
	meta := &recordingMetadataRepo{rec: rec}
	detections := &recordingDetectionRepo{rec: rec}
	logRepo := &recordingLogRepo{}
	uc := New(meta, detections, logRepo, &recordingTransactor{rec: rec}, nopLogger{})
	return uc, rec, meta, detections, logRepo
}

func TestSaveResultsTxOrderAndStatusFlip(t *testing.T) {
	uc, rec, meta, _, logRepo := newRecordingUseCase()

	processedAt := time.Now().UTC()
	results := dto.DetectionResults{
		Labels: []entity.Label{{Name: "Dog", Confidence: 96.0}},
	}

	err := uc.SaveResults(context.Background(), uuid.New(), results, processedAt)
	require.NoError(t, err)

	// sub-records commit inside the transaction, the status flip happens
	// after it
	assert.Equal(t, []string{"SaveLabels:tx", "SavePersons:tx", "SaveFaces:tx", "UpdateStatus"}, rec.calls)
	assert.Equal(t, entity.Completed, meta.lastStatus)
	require.NotNil(t, meta.lastProcessedAt)
	assert.Equal(t, processedAt, *meta.lastProcessedAt)

	require.Len(t, logRepo.entries, 1)
	assert.Equal(t, "analysis", logRepo.entries[0].ProcessType)
	assert.Equal(t, "completed", logRepo.entries[0].Status)
}

func TestSaveResultsDerivesPrimaryEmotion(t *testing.T) {
	uc, _, _, detections, _ := newRecordingUseCase()

	results := dto.DetectionResults{
		Faces: []entity.FaceDetection{{
			Confidence: 99.0,
			Emotions: []entity.Emotion{
				{Type: "CALM", Confidence: 40.0},
				{Type: "HAPPY", Confidence: 55.0},
				{Type: "SURPRISED", Confidence: 5.0},
			},
		}},
	}

	err := uc.SaveResults(context.Background(), uuid.New(), results, time.Now())
	require.NoError(t, err)

	require.Len(t, detections.savedFaces, 1)
	require.NotNil(t, detections.savedFaces[0].PrimaryEmotion)
	assert.Equal(t, "HAPPY", detections.savedFaces[0].PrimaryEmotion.Type)
	assert.Equal(t, 55.0, detections.savedFaces[0].PrimaryEmotion.Confidence)
}

func TestSaveResultsNoEmotions(t *testing.T) {
	uc, _, _, detections, _ := newRecordingUseCase()

	results := dto.DetectionResults{
		Faces: []entity.FaceDetection{{Confidence: 90.0}},
	}

	err := uc.SaveResults(context.Background(), uuid.New(), results, time.Now())
	require.NoError(t, err)

	require.Len(t, detections.savedFaces, 1)
	assert.Nil(t, detections.savedFaces[0].PrimaryEmotion)
}

func TestSaveResultsFailureSkipsStatusFlip(t *testing.T) {
	uc, rec, _, detections, _ := newRecordingUseCase()
	detections.saveFacesErr = errors.New("insert failed")

	err := uc.SaveResults(context.Background(), uuid.New(), dto.DetectionResults{}, time.Now())
	require.Error(t, err)
	assert.NotContains(t, rec.calls, "UpdateStatus")
}

func TestMarkFailed(t *testing.T) {
	uc, _, meta, _, logRepo := newRecordingUseCase()

	err := uc.MarkFailed(context.Background(), uuid.New(), "rekognition quota exceeded")
	require.NoError(t, err)

	assert.Equal(t, entity.Failed, meta.lastStatus)
	assert.Nil(t, meta.lastProcessedAt)

	require.Len(t, logRepo.entries, 1)
	assert.Equal(t, "failed", logRepo.entries[0].Status)
	require.NotNil(t, logRepo.entries[0].Message)
	assert.Equal(t, "rekognition quota exceeded", *logRepo.entries[0].Message)
}
