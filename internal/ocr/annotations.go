package ocr

// Annotation value objects mirroring the Vision API response shape. Each type
// is a plain immutable record decoded directly from the OCR JSON; no fields
// are added or rewritten after decoding.

// Vertex is a single polygon corner in absolute image coordinates. Vision
// omits a coordinate when it is zero, so both fields default cleanly.
type Vertex struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// BoundingPoly is the quadrilateral enclosing a detected element. Vertices
// start at the element's top-left in reading order and proceed clockwise, so
// their order encodes the element's rotation.
type BoundingPoly struct {
	Vertices []Vertex `json:"vertices"`
}

// TextAnnotation is one entry of the flat "textAnnotations" list. The first
// entry covers the whole image; subsequent entries are individual words.
type TextAnnotation struct {
	Locale       string       `json:"locale,omitempty"`
	Text         string       `json:"description"`
	BoundingPoly BoundingPoly `json:"boundingPoly"`
}

// LogoAnnotation is a detected brand logo.
type LogoAnnotation struct {
	ID          string  `json:"mid,omitempty"`
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

// LabelAnnotation is a detected image-level label.
type LabelAnnotation struct {
	ID          string  `json:"mid,omitempty"`
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

// Likelihood is the Vision API likelihood enum, as its string name.
type Likelihood string

const (
	LikelihoodUnknown      Likelihood = "UNKNOWN"
	LikelihoodVeryUnlikely Likelihood = "VERY_UNLIKELY"
	LikelihoodUnlikely     Likelihood = "UNLIKELY"
	LikelihoodPossible     Likelihood = "POSSIBLE"
	LikelihoodLikely       Likelihood = "LIKELY"
	LikelihoodVeryLikely   Likelihood = "VERY_LIKELY"
)

// AtLeast reports whether l is at least as likely as threshold.
func (l Likelihood) AtLeast(threshold Likelihood) bool {
	return likelihoodRank(l) >= likelihoodRank(threshold)
}

func likelihoodRank(l Likelihood) int {
	switch l {
	case LikelihoodVeryUnlikely:
		return 1
	case LikelihoodUnlikely:
		return 2
	case LikelihoodPossible:
		return 3
	case LikelihoodLikely:
		return 4
	case LikelihoodVeryLikely:
		return 5
	default:
		return 0
	}
}

// SafeSearchAnnotation carries the five content-moderation likelihoods.
type SafeSearchAnnotation struct {
	Adult    Likelihood `json:"adult"`
	Spoof    Likelihood `json:"spoof"`
	Medical  Likelihood `json:"medical"`
	Violence Likelihood `json:"violence"`
	Racy     Likelihood `json:"racy"`
}

// FaceAnnotation is a detected face with its emotion/attribute likelihoods.
type FaceAnnotation struct {
	DetectionConfidence    float64    `json:"detectionConfidence"`
	JoyLikelihood          Likelihood `json:"joyLikelihood"`
	SorrowLikelihood       Likelihood `json:"sorrowLikelihood"`
	AngerLikelihood        Likelihood `json:"angerLikelihood"`
	SurpriseLikelihood     Likelihood `json:"surpriseLikelihood"`
	UnderExposedLikelihood Likelihood `json:"underExposedLikelihood"`
	BlurredLikelihood      Likelihood `json:"blurredLikelihood"`
	HeadwearLikelihood     Likelihood `json:"headwearLikelihood"`
}
