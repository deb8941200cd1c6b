package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vendorportal/logger"
	"vendorportal/models"
	"vendorportal/services"
	"vendorportal/utils"
)

// AssetUploadSAS issues a direct upload URL for one digital asset.
// @Summary Asset upload URL
// @Tags assets
// @Accept json
// @Produce json
// @Param request body models.AssetSASRequest true "Asset"
// @Success 200 {object} models.AssetSASResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/get-asset-upload-sas [post]
func AssetUploadSAS(assets *services.AssetService, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AssetSASRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestWithValidation(c, err)
			return
		}
		vendor := currentPrincipal(c).ResolveVendor(req.Vendor)

		res, err := assets.UploadURL(c.Request.Context(), vendor, req.SubmissionID, req.Filename)
		switch {
		case errors.Is(err, services.ErrMissingSubmission):
			utils.ErrorResponse(c, "Missing submission_id", http.StatusBadRequest)
			return
		case errors.Is(err, services.ErrMissingVendor):
			utils.ErrorResponse(c, "Missing vendor or filename", http.StatusBadRequest)
			return
		case err != nil:
			log.Errorf(c.Request.Context(), "asset upload url: %v", err)
			utils.ErrorResponse(c, "Failed to issue upload URL", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// CheckAssetHash tells the browser whether an identical asset is already
// stored under the submission.
// @Summary Check asset hash
// @Tags assets
// @Accept json
// @Produce json
// @Param request body models.AssetHashRequest true "Asset hash"
// @Success 200 {object} models.AssetHashResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/check-asset-hash [post]
func CheckAssetHash(assets *services.AssetService, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AssetHashRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestWithValidation(c, err)
			return
		}
		vendor := currentPrincipal(c).ResolveVendor(req.Vendor)

		res, err := assets.CheckHash(c.Request.Context(), vendor, req.SubmissionID, req.FileHash, req.Filename)
		if err != nil {
			log.Warnf(c.Request.Context(), "asset hash check: %v", err)
			c.JSON(http.StatusOK, models.AssetHashResponse{Skip: false})
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// CleanupOldAssets deletes the submission's assets not listed in
// keep_blob_paths.
// @Summary Clean up assets
// @Tags assets
// @Accept json
// @Produce json
// @Param request body models.CleanupAssetsRequest true "Assets to keep"
// @Success 200 {object} object
// @Failure 400 {object} models.ErrorResponse
// @Router /api/cleanup-old-assets [post]
func CleanupOldAssets(assets *services.AssetService, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CleanupAssetsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestWithValidation(c, err)
			return
		}
		vendor := currentPrincipal(c).ResolveVendor(req.Vendor)

		n, err := assets.Cleanup(c.Request.Context(), vendor, req.SubmissionID, req.KeepBlobPaths)
		switch {
		case errors.Is(err, services.ErrMissingVendor):
			c.JSON(http.StatusOK, gin.H{"status": "no_vendor_provided"})
			return
		case err != nil:
			log.Errorf(c.Request.Context(), "asset cleanup: %v", err)
			utils.ErrorResponse(c, "Cleanup failed", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "cleanup_complete", "deleted": n})
	}
}
