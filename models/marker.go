package models

const (
	MarkerSchemaVersion = "2.0"

	MarkerVendorSubmission = "VENDOR_SUBMISSION"
	MarkerPricingReview    = "PRICING_REVIEW"

	SubmissionTypeVendor        = "vendor_submission"
	SubmissionTypePricingReview = "pricing_review"

	VendorTypeOptiCat    = "opticat"
	VendorTypeNonOptiCat = "non-opticat"
)

type MarkerActions struct {
	Notify bool `json:"notify"`
	RunETL bool `json:"run_etl"`
}

// Marker is the notification file dropped under raw/notifymarker/ for the
// downstream watcher.
type Marker struct {
	SchemaVersion  string        `json:"schema_version"`
	MarkerType     string        `json:"marker_type"`
	Vendor         string        `json:"vendor"`
	SubmissionID   string        `json:"submission_id"`
	SubmissionType string        `json:"submission_type"`
	VendorType     string        `json:"vendor_type,omitempty"`
	Actions        MarkerActions `json:"actions"`
	UploadedFiles  []string      `json:"uploaded_files,omitempty"`
	UploadedFile   string        `json:"uploaded_file,omitempty"`
	RawVendorPath  string        `json:"raw_vendor_path,omitempty"`
	CreatedAt      string        `json:"created_at"`
}

// Manifest records what one submission put in the raw zone. AssetsBlob and
// AssetsHash are null when no new asset archive was stored.
type Manifest struct {
	Vendor       string  `json:"vendor"`
	SubmissionID string  `json:"submission_id,omitempty"`
	Timestamp    string  `json:"timestamp"`
	XMLBlob      string  `json:"azure_xml_blob,omitempty"`
	PricingBlob  string  `json:"azure_pricing_blob,omitempty"`
	UnifiedBlob  string  `json:"azure_unified_blob,omitempty"`
	AssetsBlob   *string `json:"azure_assets_blob"`
	AssetsHash   *string `json:"assets_hash"`
}

// Status is the per-submission progress document in the silver zone.
type Status struct {
	Vendor       string `json:"vendor"`
	SubmissionID string `json:"submission_id"`
	Stage        string `json:"stage"`
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	UpdatedAt    string `json:"updated_at"`
}
