package services

import (
	"fmt"
	"time"
)

// Time layouts used in blob names.
const (
	SubmissionIDLayout = "20060102_150405"
	TimestampLayout    = "2006-01-02_15-04-05"
)

// Ready zones in the silver container.
const (
	ReadyZone              = "ready"
	ReadyPricingReviewZone = "ready_pricing_review"
)

// SubmissionID formats t (in UTC) as a submission id.
func SubmissionID(t time.Time) string {
	return t.UTC().Format(SubmissionIDLayout)
}

// Timestamp formats t as the blob name timestamp.
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

func RawVendorPath(vendor string) string {
	return "raw/vendor=" + vendor
}

// AssetPrefix holds the individually uploaded assets of one submission.
func AssetPrefix(vendor, submissionID string) string {
	return fmt.Sprintf("raw/vendor=%s/submission=%s/assets/", vendor, submissionID)
}

func AssetKey(vendor, submissionID, filename string, t time.Time) string {
	return AssetPrefix(vendor, submissionID) + t.UTC().Format(SubmissionIDLayout) + "_" + filename
}

func ProductKey(vendor, ts string) string {
	return fmt.Sprintf("%s/product/%s_product.xml", RawVendorPath(vendor), ts)
}

func PricingKey(vendor, ts string) string {
	return fmt.Sprintf("%s/pricing/%s_pricing.xlsx", RawVendorPath(vendor), ts)
}

func UnifiedKey(vendor, ts string) string {
	return fmt.Sprintf("%s/unified/%s_unified.xlsx", RawVendorPath(vendor), ts)
}

// AssetZipPrefix holds the vendor's asset archives.
func AssetZipPrefix(vendor string) string {
	return RawVendorPath(vendor) + "/assets/"
}

func AssetZipKey(vendor, ts string) string {
	return AssetZipPrefix(vendor) + ts + "_assets.zip"
}

func ManifestPrefix(vendor string) string {
	return RawVendorPath(vendor) + "/logs/"
}

func ManifestKey(vendor, ts string) string {
	return ManifestPrefix(vendor) + "manifest_" + ts + ".json"
}

func MarkerKey(vendor, ts string) string {
	return fmt.Sprintf("raw/notifymarker/%s_%s.json", vendor, ts)
}

func PricingMarkerKey(vendor, submissionID string) string {
	return fmt.Sprintf("raw/notifymarker/%s_%s_PRICING.json", vendor, submissionID)
}

// PricingReviewKey is the approved pricing file in the silver container.
func PricingReviewKey(vendor, submissionID string) string {
	return fmt.Sprintf("post_pricing_review/vendor=%s/submission=%s/mapped/mapped.xlsx", vendor, submissionID)
}

// StatusKey is the progress document in the silver container.
func StatusKey(vendor, submissionID string) string {
	return fmt.Sprintf("logs/vendor=%s/submission=%s/status.json", vendor, submissionID)
}

func ReviewPrefix(zone, vendor, submissionID string) string {
	return fmt.Sprintf("%s/vendor=%s/submission=%s/review/", zone, vendor, submissionID)
}

func RejectedLogPrefix(vendor, submissionID string) string {
	return fmt.Sprintf("rejected/logs/vendor=%s/submission=%s/", vendor, submissionID)
}

// MappedPrefix holds mapped workbooks in the bronze container.
func MappedPrefix(vendor, submissionID string) string {
	return fmt.Sprintf("raw/vendor=%s/submission=%s/mapped/", vendor, submissionID)
}
