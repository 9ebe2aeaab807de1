package response

// Detection payloads keep the capitalized field names the frontend has
// always consumed; confidence on boxes stays lowercase for the same
// reason.

type Label struct {
	Name       string  `json:"Name"`
	Confidence float64 `json:"Confidence"`
}

type BoundingBox struct {
	Left       float64 `json:"Left"`
	Top        float64 `json:"Top"`
	Width      float64 `json:"Width"`
	Height     float64 `json:"Height"`
	Confidence float64 `json:"confidence"`
}

type AgeRange struct {
	Low  int `json:"Low"`
	High int `json:"High"`
}

type Gender struct {
	Value      string  `json:"Value"`
	Confidence float64 `json:"Confidence"`
}

type Emotion struct {
	Type       string  `json:"Type"`
	Confidence float64 `json:"Confidence"`
}

type FaceBox struct {
	Left       float64 `json:"Left"`
	Top        float64 `json:"Top"`
	Width      float64 `json:"Width"`
	Height     float64 `json:"Height"`
	Confidence float64 `json:"confidence"`

	AgeRange *AgeRange `json:"ageRange,omitempty"`
	Gender   *Gender   `json:"gender,omitempty"`
	Emotions []Emotion `json:"emotions,omitempty"`
}

type Analysis struct {
	Status        string        `json:"status"`
	Message       string        `json:"message,omitempty"`
	Labels        []Label       `json:"labels"`
	BoundingBoxes []BoundingBox `json:"boundingBoxes"`
	FaceBoxes     []FaceBox     `json:"faceBoxes"`
}
