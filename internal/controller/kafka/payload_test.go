package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisResultPayloadToResults(t *testing.T) {
	raw := []byte(`{
		"image_id": "7f9c24e5-2b6a-4f4e-9d3a-111111111111",
		"status": "completed",
		"labels": [{"name": "Dog", "confidence": 97.2}],
		"persons": [{"confidence": 88.4, "left": 0.1, "top": 0.2, "width": 0.3, "height": 0.4}],
		"faces": [{
			"confidence": 99.1,
			"left": 0.5, "top": 0.1, "width": 0.2, "height": 0.2,
			"age_low": 25, "age_high": 35,
			"gender": "Female", "gender_confidence": 93.0,
			"emotions": [
				{"type": "CALM", "confidence": 60.0},
				{"type": "HAPPY", "confidence": 30.0}
			]
		}]
	}`)

	var payload AnalysisResultPayload
	require.NoError(t, json.Unmarshal(raw, &payload))

	results := payload.toResults()

	require.Len(t, results.Labels, 1)
	assert.Equal(t, "Dog", results.Labels[0].Name)
	assert.Equal(t, 97.2, results.Labels[0].Confidence)

	require.Len(t, results.Persons, 1)
	assert.Equal(t, 0.1, results.Persons[0].Box.Left)
	assert.Equal(t, 88.4, results.Persons[0].Confidence)

	require.Len(t, results.Faces, 1)
	face := results.Faces[0]
	require.NotNil(t, face.AgeRange)
	assert.Equal(t, 25, face.AgeRange.Low)
	assert.Equal(t, 35, face.AgeRange.High)
	require.NotNil(t, face.Gender)
	assert.Equal(t, "Female", face.Gender.Value)
	assert.Equal(t, 93.0, face.Gender.Confidence)
	require.Len(t, face.Emotions, 2)
	assert.Equal(t, "CALM", face.Emotions[0].Type)

	// derived at save time, never on the wire
	assert.Nil(t, face.PrimaryEmotion)
}

func TestAnalysisResultPayloadPartialFace(t *testing.T) {
	raw := []byte(`{
		"image_id": "7f9c24e5-2b6a-4f4e-9d3a-111111111111",
		"status": "completed",
		"faces": [{"confidence": 80.0, "left": 0, "top": 0, "width": 1, "height": 1}]
	}`)

	var payload AnalysisResultPayload
	require.NoError(t, json.Unmarshal(raw, &payload))

	results := payload.toResults()
	require.Len(t, results.Faces, 1)
	assert.Nil(t, results.Faces[0].AgeRange)
	assert.Nil(t, results.Faces[0].Gender)
	assert.Empty(t, results.Faces[0].Emotions)
}
