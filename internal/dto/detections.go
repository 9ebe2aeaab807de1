package dto

import "visionapi/internal/entity"

// DetectionResults is one analyzer verdict for a single image. Faces
// carry their full emotion lists; the denormalized primary emotion is
// derived at save time.
type DetectionResults struct {
	Labels  []entity.Label
	Persons []entity.PersonDetection
	Faces   []entity.FaceDetection
}
