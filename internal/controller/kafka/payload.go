package kafka

import (
	"time"

	"github.com/google/uuid"

	"visionapi/internal/dto"
	"visionapi/internal/entity"
)

// AnalysisResultPayload is the wire format the external analysis worker
// publishes after it examines an uploaded image.
type AnalysisResultPayload struct {
	ImageID     uuid.UUID  `json:"image_id"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`

	Labels  []labelPayload  `json:"labels,omitempty"`
	Persons []personPayload `json:"persons,omitempty"`
	Faces   []facePayload   `json:"faces,omitempty"`
}

const (
	resultStatusCompleted = "completed"
	resultStatusFailed    = "failed"
)

type labelPayload struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

type personPayload struct {
	Confidence float64 `json:"confidence"`
	Left       float64 `json:"left"`
	Top        float64 `json:"top"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

type facePayload struct {
	Confidence float64 `json:"confidence"`
	Left       float64 `json:"left"`
	Top        float64 `json:"top"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`

	AgeLow           *int     `json:"age_low,omitempty"`
	AgeHigh          *int     `json:"age_high,omitempty"`
	Gender           *string  `json:"gender,omitempty"`
	GenderConfidence *float64 `json:"gender_confidence,omitempty"`

	Emotions []emotionPayload `json:"emotions,omitempty"`
}

type emotionPayload struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

func (p *AnalysisResultPayload) toResults() dto.DetectionResults {
	results := dto.DetectionResults{
		Labels:  make([]entity.Label, 0, len(p.Labels)),
		Persons: make([]entity.PersonDetection, 0, len(p.Persons)),
		Faces:   make([]entity.FaceDetection, 0, len(p.Faces)),
	}

	for _, label := range p.Labels {
		results.Labels = append(results.Labels, entity.Label{
			Name:       label.Name,
			Confidence: label.Confidence,
		})
	}

	for _, person := range p.Persons {
		results.Persons = append(results.Persons, entity.PersonDetection{
			Confidence: person.Confidence,
			Box: entity.BoundingBox{
				Left:   person.Left,
				Top:    person.Top,
				Width:  person.Width,
				Height: person.Height,
			},
		})
	}

	for _, face := range p.Faces {
		detection := entity.FaceDetection{
			Confidence: face.Confidence,
			Box: entity.BoundingBox{
				Left:   face.Left,
				Top:    face.Top,
				Width:  face.Width,
				Height: face.Height,
			},
		}

		if face.AgeLow != nil && face.AgeHigh != nil {
			detection.AgeRange = &entity.AgeRange{Low: *face.AgeLow, High: *face.AgeHigh}
		}

		if face.Gender != nil {
			gender := entity.Gender{Value: *face.Gender}
			if face.GenderConfidence != nil {
				gender.Confidence = *face.GenderConfidence
			}
			detection.Gender = &gender
		}

		for _, emotion := range face.Emotions {
			detection.Emotions = append(detection.Emotions, entity.Emotion{
				Type:       emotion.Type,
				Confidence: emotion.Confidence,
			})
		}

		results.Faces = append(results.Faces, detection)
	}

	return results
}
