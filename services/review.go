package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"vendorportal/logger"
	"vendorportal/storage"
)

// Promotion states reported by the output summary.
const (
	PromotionSuccess = "SUCCESS"
	PromotionHalted  = "HALTED"
	PromotionUnknown = "UNKNOWN"
)

const StatusPending = "PENDING"

var ErrNoLog = errors.New("no log found")

type OutputFile struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

type RejectionLog struct {
	Filename     string `json:"filename"`
	URL          string `json:"url"`
	Stage        string `json:"stage"`
	DisplayFile  string `json:"display_file"`
	ErrorType    string `json:"error_type"`
	ErrorMessage string `json:"error_message"`
	LoggedAt     string `json:"logged_at"`
}

type OutputSummary struct {
	PromotionStatus string         `json:"promotion_status"`
	Outputs         []OutputFile   `json:"outputs"`
	RejectionLogs   []RejectionLog `json:"rejection_logs"`
}

// UnknownSummary is reported when vendor or submission id is missing.
func UnknownSummary() *OutputSummary {
	return &OutputSummary{
		PromotionStatus: PromotionUnknown,
		Outputs:         []OutputFile{},
		RejectionLogs:   []RejectionLog{},
	}
}

// rejectionDoc is the log the pipeline writes when it halts a submission.
type rejectionDoc struct {
	Stage        string `json:"stage"`
	File         string `json:"file"`
	ErrorType    string `json:"error_type"`
	ErrorMessage string `json:"error_message"`
	Timestamp    string `json:"timestamp"`
}

// ReviewService reads pipeline results back for the vendor.
type ReviewService struct {
	blobs      storage.BlobStore
	containers Containers
	sasTTL     time.Duration
	log        logger.Logger
}

func NewReviewService(blobs storage.BlobStore, containers Containers, sasTTL time.Duration, log logger.Logger) *ReviewService {
	return &ReviewService{blobs: blobs, containers: containers, sasTTL: sasTTL, log: log}
}

// Status returns the submission's status document, or {"status":"PENDING"}
// while none has been written.
func (s *ReviewService) Status(ctx context.Context, vendor, submissionID string) (map[string]any, error) {
	doc := map[string]any{}
	err := storage.DownloadJSON(ctx, s.blobs, s.containers.Silver, StatusKey(vendor, submissionID), &doc)
	if errors.Is(err, storage.ErrBlobNotFound) {
		return map[string]any{"status": StatusPending}, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// OutputSummary lists review outputs and rejection logs of a submission.
// Outputs come from the pricing review zone when it has any, otherwise from
// the ready zone. Any rejection log halts the submission, and the mapped
// workbook from the raw zone is offered alongside.
func (s *ReviewService) OutputSummary(ctx context.Context, vendor, submissionID string) (*OutputSummary, error) {
	if vendor == "" || submissionID == "" {
		return UnknownSummary(), nil
	}
	silver := s.containers.Silver
	sum := &OutputSummary{
		PromotionStatus: PromotionSuccess,
		Outputs:         []OutputFile{},
		RejectionLogs:   []RejectionLog{},
	}

	zone := ReadyZone
	reviewBlobs, err := s.blobs.List(ctx, silver, ReviewPrefix(ReadyPricingReviewZone, vendor, submissionID))
	if err != nil {
		return nil, fmt.Errorf("list pricing review outputs: %w", err)
	}
	if len(reviewBlobs) > 0 {
		zone = ReadyPricingReviewZone
	}
	ready, err := s.blobs.List(ctx, silver, ReviewPrefix(zone, vendor, submissionID))
	if err != nil {
		return nil, fmt.Errorf("list outputs: %w", err)
	}
	for _, b := range ready {
		name := path.Base(b.Name)
		if strings.HasSuffix(b.Name, "/") || strings.HasSuffix(strings.ToLower(name), ".done") {
			continue
		}
		url, err := s.blobs.ReadURL(ctx, silver, b.Name, s.sasTTL)
		if err != nil {
			return nil, err
		}
		sum.Outputs = append(sum.Outputs, OutputFile{Filename: name, URL: url})
	}

	logs, err := s.blobs.List(ctx, silver, RejectedLogPrefix(vendor, submissionID))
	if err != nil {
		return nil, fmt.Errorf("list rejection logs: %w", err)
	}
	for _, b := range logs {
		if strings.HasSuffix(b.Name, "/") || !strings.HasSuffix(strings.ToLower(b.Name), ".json") {
			continue
		}
		var doc rejectionDoc
		if err := storage.DownloadJSON(ctx, s.blobs, silver, b.Name, &doc); err != nil {
			if errors.Is(err, storage.ErrBlobNotFound) {
				continue
			}
			s.log.Warnf(ctx, "unreadable rejection log %s: %v", b.Name, err)
		}
		url, err := s.blobs.ReadURL(ctx, silver, b.Name, s.sasTTL)
		if err != nil {
			return nil, err
		}
		sum.PromotionStatus = PromotionHalted
		sum.RejectionLogs = append(sum.RejectionLogs, RejectionLog{
			Filename:     path.Base(b.Name),
			URL:          url,
			Stage:        doc.Stage,
			DisplayFile:  displayFile(doc.File),
			ErrorType:    doc.ErrorType,
			ErrorMessage: doc.ErrorMessage,
			LoggedAt:     doc.Timestamp,
		})
	}

	if sum.PromotionStatus == PromotionHalted {
		mapped, err := s.blobs.List(ctx, s.containers.Bronze, MappedPrefix(vendor, submissionID))
		if err != nil {
			return nil, fmt.Errorf("list mapped outputs: %w", err)
		}
		for _, b := range mapped {
			if !strings.HasSuffix(strings.ToLower(b.Name), ".xlsx") {
				continue
			}
			url, err := s.blobs.ReadURL(ctx, s.containers.Bronze, b.Name, s.sasTTL)
			if err != nil {
				return nil, err
			}
			sum.Outputs = append(sum.Outputs, OutputFile{Filename: "mapped.xlsx", URL: url})
		}
	}
	return sum, nil
}

func displayFile(file string) string {
	if file == "" {
		return ""
	}
	return strings.ReplaceAll(path.Base(file), ".parquet", "")
}

// LatestLog returns the name and content of the newest rejection log.
func (s *ReviewService) LatestLog(ctx context.Context, vendor, submissionID string) (string, []byte, error) {
	blobs, err := s.blobs.List(ctx, s.containers.Silver, RejectedLogPrefix(vendor, submissionID))
	if err != nil {
		return "", nil, fmt.Errorf("list rejection logs: %w", err)
	}
	latest, ok := storage.Latest(blobs)
	if !ok {
		return "", nil, ErrNoLog
	}
	data, err := s.blobs.Download(ctx, s.containers.Silver, latest.Name)
	if err != nil {
		return "", nil, err
	}
	return path.Base(latest.Name), data, nil
}

// LogPreview returns the first rows of the newest rejection log read as a
// workbook, or no rows when there is no log.
func (s *ReviewService) LogPreview(ctx context.Context, vendor, submissionID string) ([]map[string]string, error) {
	_, data, err := s.LatestLog(ctx, vendor, submissionID)
	if errors.Is(err, ErrNoLog) {
		return []map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return PreviewRows(data, PreviewLimit)
}

