package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vendorportal/logger"
	"vendorportal/services"
)

// reviewParams reads submission_id and the vendor the caller may act for.
func reviewParams(c *gin.Context) (vendor, submissionID string) {
	return currentPrincipal(c).ResolveVendor(c.Query("vendor")), c.Query("submission_id")
}

// SubmissionStatus returns the pipeline status document of a submission.
// @Summary Submission status
// @Tags review
// @Produce json
// @Param submission_id query string true "Submission id"
// @Param vendor query string false "Vendor (admins only)"
// @Success 200 {object} object
// @Failure 400 {object} object
// @Router /api/submission-status [get]
func SubmissionStatus(review *services.ReviewService, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		vendor, id := reviewParams(c)
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"status": "MISSING_PARAMS"})
			return
		}
		if vendor == "" {
			c.JSON(http.StatusBadRequest, gin.H{"status": "MISSING_VENDOR"})
			return
		}
		doc, err := review.Status(c.Request.Context(), vendor, id)
		if err != nil {
			log.Errorf(c.Request.Context(), "read status: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read status"})
			return
		}
		c.JSON(http.StatusOK, doc)
	}
}

// OutputSummary lists review outputs and rejection logs of a submission.
// @Summary Output summary
// @Tags review
// @Produce json
// @Param submission_id query string true "Submission id"
// @Param vendor query string false "Vendor (admins only)"
// @Success 200 {object} services.OutputSummary
// @Router /api/output-summary [get]
func OutputSummary(review *services.ReviewService, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		vendor, id := reviewParams(c)
		sum, err := review.OutputSummary(c.Request.Context(), vendor, id)
		if err != nil {
			log.Errorf(c.Request.Context(), "output summary: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read outputs"})
			return
		}
		c.JSON(http.StatusOK, sum)
	}
}

// DownloadLog sends the newest rejection log of a submission.
// @Summary Download rejection log
// @Tags review
// @Produce application/octet-stream
// @Param submission_id query string true "Submission id"
// @Param vendor query string false "Vendor (admins only)"
// @Success 200 {file} file
// @Failure 404 {object} models.ErrorResponse
// @Router /api/download-log [get]
func DownloadLog(review *services.ReviewService, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		vendor, id := reviewParams(c)
		name, data, err := review.LatestLog(c.Request.Context(), vendor, id)
		if errors.Is(err, services.ErrNoLog) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No log found"})
			return
		}
		if err != nil {
			log.Errorf(c.Request.Context(), "download log: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read log"})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		c.Data(http.StatusOK, "application/octet-stream", data)
	}
}

// LogPreview returns the first rows of the newest rejection log.
// @Summary Preview rejection log
// @Tags review
// @Produce json
// @Param submission_id query string true "Submission id"
// @Param vendor query string false "Vendor (admins only)"
// @Success 200 {object} object
// @Router /api/log-preview [get]
func LogPreview(review *services.ReviewService, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		vendor, id := reviewParams(c)
		rows, err := review.LogPreview(c.Request.Context(), vendor, id)
		if err != nil {
			log.Errorf(c.Request.Context(), "log preview: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read log", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"rows": rows})
	}
}

// SubmissionHistory lists the caller's recorded submissions.
// @Summary Submission history
// @Tags review
// @Produce json
// @Param vendor query string false "Vendor (admins only, blank for all)"
// @Param limit query int false "Max rows" default(50)
// @Success 200 {object} object
// @Router /api/submissions [get]
func SubmissionHistory(subs *services.SubmissionService, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		vendor := currentPrincipal(c).ResolveVendor(c.Query("vendor"))
		list, err := subs.History(c.Request.Context(), vendor, limit)
		if err != nil {
			log.Errorf(c.Request.Context(), "submission history: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list submissions"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"submissions": list, "count": len(list)})
	}
}
