package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"vendorportal/catalog"
	"vendorportal/logger"
	"vendorportal/lookups"
	"vendorportal/models"
	"vendorportal/pricing"
	"vendorportal/storage"
)

var (
	ErrEmptyBatch   = errors.New("no products in batch")
	ErrMixedVendors = errors.New("batch holds products of more than one vendor")
)

type AddResult struct {
	Errors []string           `json:"errors,omitempty"`
	Entry  storage.BatchEntry `json:"-"`
	Count  int                `json:"count"`
}

// Accepted reports whether the product made it into the batch.
func (r AddResult) Accepted() bool { return len(r.Errors) == 0 }

type GenerateResult struct {
	FileName   string            `json:"file_name"`
	Path       string            `json:"-"`
	Products   int               `json:"products"`
	Submission *SubmissionResult `json:"submission"`
}

// ProductService collects single products into a batch and turns the batch
// into a unified workbook submission.
type ProductService struct {
	lookups     lookups.Lookups
	validator   *pricing.Validator
	normalizer  *pricing.Normalizer
	batches     storage.BatchStore
	submissions *SubmissionService
	outputDir   string
	log         logger.Logger
	now         func() time.Time
}

func NewProductService(l lookups.Lookups, batches storage.BatchStore, submissions *SubmissionService, outputDir string, log logger.Logger) *ProductService {
	return &ProductService{
		lookups:     l,
		validator:   pricing.NewValidator(l, time.Now),
		normalizer:  pricing.NewNormalizer(l),
		batches:     batches,
		submissions: submissions,
		outputDir:   outputDir,
		log:         log,
		now:         time.Now,
	}
}

// Add validates one product form and appends it to the batch. Validation
// problems are returned in the result, not as an error.
func (s *ProductService) Add(ctx context.Context, batchKey string, form map[string][]string) (AddResult, error) {
	p := catalog.Extract(form)
	if errs := catalog.ValidateSubmission(p, s.lookups, s.validator); len(errs) > 0 {
		return AddResult{Errors: errs}, nil
	}

	prices, summary := s.normalizer.Normalize(p.Pricing)
	entry := storage.BatchEntry{
		Vendor:        p.Vendor,
		SKU:           p.SKU,
		MethodSummary: summary,
		AddedAt:       s.now().UTC(),
		Rows:          p.Rows(prices),
	}
	if err := s.batches.Append(ctx, batchKey, entry); err != nil {
		return AddResult{}, err
	}
	entries, err := s.batches.Load(ctx, batchKey)
	if err != nil {
		return AddResult{}, err
	}
	s.log.Infof(logger.WithVendor(ctx, p.Vendor), "Product %s added to batch (%s)", p.SKU, summary)
	return AddResult{Entry: entry, Count: len(entries)}, nil
}

func (s *ProductService) Batch(ctx context.Context, batchKey string) ([]storage.BatchEntry, error) {
	return s.batches.Load(ctx, batchKey)
}

func (s *ProductService) Clear(ctx context.Context, batchKey string) error {
	return s.batches.Clear(ctx, batchKey)
}

// Overview lists the batch for display.
func Overview(entries []storage.BatchEntry) models.BatchResponse {
	items := make([]models.BatchItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, models.BatchItem{
			SKU:           e.SKU,
			Vendor:        e.Vendor,
			MethodSummary: e.MethodSummary,
			AddedAt:       e.AddedAt.Format(time.RFC3339),
		})
	}
	return models.BatchResponse{Count: len(items), Items: items}
}

// Generate writes the batch as one workbook, submits it as the vendor's
// unified file and clears the batch.
func (s *ProductService) Generate(ctx context.Context, batchKey, submittedBy, draftID string) (*GenerateResult, error) {
	entries, err := s.batches.Load(ctx, batchKey)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrEmptyBatch
	}
	vendor := entries[0].Vendor
	book := catalog.Book{}
	for _, e := range entries {
		if e.Vendor != vendor {
			return nil, ErrMixedVendors
		}
		book.Merge(e.Rows)
	}

	path, err := SaveWorkbook(s.outputDir, book, s.now())
	if err != nil {
		return nil, err
	}
	s.log.Infof(logger.WithVendor(ctx, vendor), "Batch workbook written: %s", filepath.Base(path))

	sub, err := s.submissions.SubmitVendor(ctx, VendorSubmission{
		Vendor:      vendor,
		VendorType:  models.VendorTypeNonOptiCat,
		DraftID:     draftID,
		SubmittedBy: submittedBy,
		Unified:     &StagedFile{Name: filepath.Base(path), Path: path},
	})
	if err != nil {
		return nil, fmt.Errorf("submit batch: %w", err)
	}
	if err := s.batches.Clear(ctx, batchKey); err != nil {
		s.log.Errorf(ctx, "Batch %s submitted as %s but not cleared: %v", batchKey, sub.SubmissionID, err)
	}
	return &GenerateResult{
		FileName:   filepath.Base(path),
		Path:       path,
		Products:   len(entries),
		Submission: sub,
	}, nil
}
