package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"vendorportal/logger"
	"vendorportal/models"
	"vendorportal/services"
	"vendorportal/utils"
)

// Multipart field names of the upload form.
const (
	fieldSubmissionType = "submission_type"
	fieldVendorType     = "vendor_type"
	fieldVendorName     = "vendor_name"

	fileProduct        = "product_file"
	filePricing        = "pricing_file"
	fileUnified        = "non_opticat_file"
	fileAssetZip       = "assets_zip"
	fileApprovedReview = "approved_pricing_file"
)

// Submission types accepted by the upload form.
const (
	submissionVendor        = "vendor"
	submissionPricingReview = "pricing_review"
)

const templateName = "standard_template.xlsx"

// Uploader stages multipart files under the upload folder before they are
// pushed to blob storage.
type Uploader struct {
	Folder  string
	MaxSize int64
}

// stage saves the named form file under <folder>/<vendor>/<subfolder>. A
// missing file is not an error and yields nil.
func (u Uploader) stage(c *gin.Context, field, vendor, subfolder string) (*services.StagedFile, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u.save(fh, vendor, subfolder)
}

func (u Uploader) save(fh *multipart.FileHeader, vendor, subfolder string) (*services.StagedFile, error) {
	dir := filepath.Join(u.Folder, utils.SafeFilename(vendor), subfolder)
	path, err := utils.UploadFileToDirectory(fh, dir, u.MaxSize)
	if err != nil {
		return nil, err
	}
	return &services.StagedFile{Name: filepath.Base(fh.Filename), Path: path}, nil
}

// UploadSessionHandler returns the draft submission id assets are uploaded
// under, issuing one on first use, and the last submission of the session.
// @Summary Upload session
// @Tags upload
// @Produce json
// @Success 200 {object} object
// @Router /api/upload/session [get]
func UploadSessionHandler(drafts *services.Drafts) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := currentPrincipal(c)
		active := drafts.Active(p.SessionID, p.Vendor)
		current := active
		if last, ok := drafts.Last(p.SessionID); ok {
			current = last
		}
		c.JSON(http.StatusOK, gin.H{
			"active_submission_id": active.SubmissionID,
			"submission_id":        current.SubmissionID,
			"submission_vendor":    current.Vendor,
		})
	}
}

// UploadHandler accepts a vendor submission (OptiCat or non-OptiCat) or an
// approved pricing review.
// @Summary Submit vendor files
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Param submission_type formData string true "vendor or pricing_review"
// @Param vendor_type formData string false "opticat or non-opticat"
// @Param vendor_name formData string false "Vendor (admins only)"
// @Success 200 {object} services.SubmissionResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/upload [post]
func UploadHandler(subs *services.SubmissionService, drafts *services.Drafts, up Uploader, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		p := currentPrincipal(c)
		vendor := p.ResolveVendor(c.PostForm(fieldVendorName))
		log.Infof(ctx, "Submission received")

		switch c.PostForm(fieldSubmissionType) {
		case submissionPricingReview:
			if vendor == "" {
				utils.ErrorResponse(c, "Vendor and pricing file are required.", http.StatusBadRequest)
				return
			}
			file, err := up.stage(c, fileApprovedReview, vendor, "pricing_review")
			if err != nil {
				uploadError(c, err)
				return
			}
			res, err := subs.SubmitPricingReview(ctx, services.PricingReview{Vendor: vendor, SubmittedBy: p.Email, File: file})
			if err != nil {
				submissionError(c, log, err)
				return
			}
			drafts.Finish(p.SessionID, services.Draft{SubmissionID: res.SubmissionID, Vendor: vendor})
			c.JSON(http.StatusOK, gin.H{"message": "Pricing review submitted for " + vendor + ".", "submission": res})

		case submissionVendor:
			if vendor == "" {
				utils.ErrorResponse(c, "Please select a vendor before submitting.", http.StatusBadRequest)
				return
			}
			in := services.VendorSubmission{
				Vendor:      vendor,
				VendorType:  c.PostForm(fieldVendorType),
				SubmittedBy: p.Email,
			}
			var err error
			switch in.VendorType {
			case models.VendorTypeOptiCat:
				if in.Product, err = up.stage(c, fileProduct, vendor, "opticat"); err == nil {
					in.Pricing, err = up.stage(c, filePricing, vendor, "opticat")
				}
			case models.VendorTypeNonOptiCat:
				in.Unified, err = up.stage(c, fileUnified, vendor, "non_opticat")
			}
			if err == nil {
				in.AssetZip, err = up.stage(c, fileAssetZip, vendor, "assets")
			}
			if err != nil {
				uploadError(c, err)
				return
			}

			in.DraftID = drafts.Active(p.SessionID, vendor).SubmissionID
			res, err := subs.SubmitVendor(ctx, in)
			if err != nil {
				submissionError(c, log, err)
				return
			}
			drafts.Finish(p.SessionID, services.Draft{SubmissionID: res.SubmissionID, Vendor: vendor})
			c.JSON(http.StatusOK, gin.H{"message": "Files for " + vendor + " uploaded successfully.", "submission": res})

		default:
			utils.ErrorResponse(c, "Unknown submission type.", http.StatusBadRequest)
		}
	}
}

func uploadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large", "details": err.Error()})
	case errors.Is(err, utils.ErrInvalidFileName):
		utils.ErrorResponse(c, "Invalid file name", http.StatusBadRequest)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error retrieving the file", "details": err.Error()})
	}
}

// submissionError maps submission failures to responses. Input problems are
// reported as sent; storage failures are logged and hidden.
func submissionError(c *gin.Context, log logger.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrMissingVendor),
		errors.Is(err, services.ErrMissingFile),
		errors.Is(err, services.ErrFileType),
		errors.Is(err, services.ErrUnknownVendorType):
		utils.ErrorResponse(c, err.Error(), http.StatusBadRequest)
	default:
		log.Errorf(c.Request.Context(), "upload failed: %v", err)
		utils.ErrorResponse(c, "Upload failed", http.StatusInternalServerError)
	}
}

// DownloadTemplate serves the standard vendor template.
// @Summary Download template
// @Tags upload
// @Produce application/octet-stream
// @Success 200 {file} file
// @Failure 404 {object} models.ErrorResponse
// @Router /download-template [get]
func DownloadTemplate(templateFolder string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path, err := utils.ResolveWithin(templateFolder, templateName)
		if err != nil || !utils.FileExists(path) {
			utils.ErrorResponse(c, "Template not found on server.", http.StatusNotFound)
			return
		}
		c.FileAttachment(path, templateName)
	}
}

// Healthz reports liveness.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
