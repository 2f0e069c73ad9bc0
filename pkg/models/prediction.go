package models

// PredictionType identifies the kind of fact a prediction asserts about a
// product. The set is closed: the downstream importer dispatches on it.
type PredictionType string

const (
	TypePackagerCode     PredictionType = "packager_code"
	TypeLabel            PredictionType = "label"
	TypeCategory         PredictionType = "category"
	TypeImageFlag        PredictionType = "image_flag"
	TypeProductWeight    PredictionType = "product_weight"
	TypeExpirationDate   PredictionType = "expiration_date"
	TypeBrand            PredictionType = "brand"
	TypeImageOrientation PredictionType = "image_orientation"
	TypeStore            PredictionType = "store"
	TypeNutrient         PredictionType = "nutrient"
	TypeNutrientMention  PredictionType = "nutrient_mention"
	TypeTrace            PredictionType = "trace"
	TypePackaging        PredictionType = "packaging"
	TypeLocation         PredictionType = "location"
	TypeImageLang        PredictionType = "image_lang"
	TypeOrigin           PredictionType = "origin"
)

// Prediction is a single machine-derived fact candidate emitted by an
// extractor. Predictions are value objects: extractors create them and never
// mutate them afterwards; persistence, deduplication and voting happen in the
// external importer.
type Prediction struct {
	// Type is the insight category this prediction belongs to.
	Type PredictionType `json:"type"`

	// Value is the free-form matched value (e.g. "FR 40.261.001 EC"), or
	// empty when the prediction is fully described by ValueTag/Data.
	Value string `json:"value,omitempty"`

	// ValueTag is the taxonomy-normalized identifier for the value
	// (lower-case, hyphen-separated, accent-free), when one exists.
	ValueTag string `json:"value_tag,omitempty"`

	// Data carries type-specific fields: raw matched text, units, normalized
	// values, matcher name, notify flag, bounding box.
	Data map[string]interface{} `json:"data,omitempty"`

	// AutomaticProcessing reports whether the match is trusted enough to be
	// applied without human review.
	AutomaticProcessing bool `json:"automatic_processing"`

	// Predictor names the component that produced the prediction
	// (e.g. "regex", "flashtext", "grammar").
	Predictor string `json:"predictor,omitempty"`

	// PredictorVersion pins the predictor implementation for reproducibility.
	PredictorVersion string `json:"predictor_version,omitempty"`

	// Confidence is an optional score in [0, 1].
	Confidence float64 `json:"confidence,omitempty"`

	// Barcode of the product the source image belongs to, when known.
	Barcode string `json:"barcode,omitempty"`

	// SourceImage references the image the OCR payload was derived from.
	SourceImage string `json:"source_image,omitempty"`
}
