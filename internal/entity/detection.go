package entity

// BoundingBox coordinates are fractions of the image dimensions, 0-1.
type BoundingBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Label struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

type PersonDetection struct {
	Confidence float64     `json:"confidence"`
	Box        BoundingBox `json:"box"`
}

type AgeRange struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

type Gender struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

type Emotion struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// FaceDetection owns its emotion list; PrimaryEmotion is a denormalized
// copy of the highest-confidence entry, stored on the face row itself.
type FaceDetection struct {
	Confidence float64     `json:"confidence"`
	Box        BoundingBox `json:"box"`

	AgeRange       *AgeRange `json:"age_range,omitempty"`
	Gender         *Gender   `json:"gender,omitempty"`
	PrimaryEmotion *Emotion  `json:"primary_emotion,omitempty"`

	Emotions []Emotion `json:"emotions,omitempty"`
}
