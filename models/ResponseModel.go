package models

// ErrorResponse is the body of every handler failure.
type ErrorResponse struct {
	Error   string `json:"error" example:"Invalid input"`
	Details string `json:"details,omitempty" example:""`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email" example:"vendor@grote.com"`
	Password string `json:"password" form:"password" binding:"required" example:"vendor123"`
}

type LoginResponse struct {
	Message     string `json:"message" example:"User successfully logged in"`
	AccessToken string `json:"access_token" example:"eyJhbGc..."`
	Role        string `json:"role" example:"vendor"`
	Vendor      string `json:"vendor,omitempty" example:"Grote Lighting"`
	ExpiresAt   int64  `json:"expires_at"`
}

type AssetSASRequest struct {
	Vendor       string `json:"vendor"`
	SubmissionID string `json:"submission_id" binding:"required"`
	SKU          string `json:"sku"`
	Filename     string `json:"filename" binding:"required"`
}

type AssetSASResponse struct {
	SASURL   string `json:"sas_url"`
	BlobPath string `json:"blob_path"`
}

type AssetHashRequest struct {
	Vendor       string `json:"vendor"`
	SubmissionID string `json:"submission_id" binding:"required"`
	FileHash     string `json:"file_hash"`
	Filename     string `json:"filename"`
}

type AssetHashResponse struct {
	Skip             bool   `json:"skip"`
	ExistingBlobPath string `json:"existing_blob_path,omitempty"`
}

type CleanupAssetsRequest struct {
	Vendor        string   `json:"vendor"`
	SubmissionID  string   `json:"submission_id" binding:"required"`
	KeepBlobPaths []string `json:"keep_blob_paths"`
}

type BatchItem struct {
	SKU           string `json:"sku"`
	Vendor        string `json:"vendor"`
	MethodSummary string `json:"method_summary"`
	AddedAt       string `json:"added_at"`
}

type BatchResponse struct {
	Count int         `json:"count"`
	Items []BatchItem `json:"items"`
}
