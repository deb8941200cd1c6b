package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"vendorportal/catalog"
	"vendorportal/logger"
	"vendorportal/services"
)

// formValues returns the posted form fields, urlencoded or multipart.
func formValues(c *gin.Context) (map[string][]string, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, err
		}
		return form.Value, nil
	}
	if err := c.Request.ParseForm(); err != nil {
		return nil, err
	}
	return c.Request.PostForm, nil
}

// AddSingleProduct validates one product form and adds it to the session's
// batch.
// @Summary Add product to batch
// @Tags single-product
// @Accept x-www-form-urlencoded
// @Produce json
// @Success 200 {object} object
// @Failure 400 {object} object
// @Router /api/single-product/add [post]
func AddSingleProduct(products *services.ProductService, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := formValues(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		p := currentPrincipal(c)
		if !p.IsAdmin() {
			form[catalog.FieldVendor] = []string{p.Vendor}
		}

		res, err := products.Add(c.Request.Context(), p.SessionID, form)
		if err != nil {
			log.Errorf(c.Request.Context(), "add product: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add product"})
			return
		}
		if !res.Accepted() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "errors": res.Errors})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":        fmt.Sprintf("Product %s added to batch", res.Entry.SKU),
			"method_summary": res.Entry.MethodSummary,
			"count":          res.Count,
		})
	}
}

// GetBatch lists the session's batch.
// @Summary Batch overview
// @Tags single-product
// @Produce json
// @Success 200 {object} models.BatchResponse
// @Router /api/single-product/batch [get]
func GetBatch(products *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := products.Batch(c.Request.Context(), currentPrincipal(c).SessionID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load batch"})
			return
		}
		c.JSON(http.StatusOK, services.Overview(entries))
	}
}

// ClearBatch empties the session's batch.
// @Summary Clear batch
// @Tags single-product
// @Produce json
// @Success 200 {object} object
// @Router /api/single-product/batch [delete]
func ClearBatch(products *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := products.Clear(c.Request.Context(), currentPrincipal(c).SessionID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear batch"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Batch cleared"})
	}
}

// GenerateBatch writes the batch workbook and submits it as the vendor's
// unified file.
// @Summary Generate batch workbook
// @Tags single-product
// @Produce json
// @Success 200 {object} services.GenerateResult
// @Failure 400 {object} models.ErrorResponse
// @Router /api/single-product/generate [post]
func GenerateBatch(products *services.ProductService, drafts *services.Drafts, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		p := currentPrincipal(c)
		draft := drafts.Active(p.SessionID, p.Vendor)

		res, err := products.Generate(ctx, p.SessionID, p.Email, draft.SubmissionID)
		switch {
		case errors.Is(err, services.ErrEmptyBatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No products in batch"})
			return
		case errors.Is(err, services.ErrMixedVendors):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Batch holds products of more than one vendor"})
			return
		case err != nil:
			log.Errorf(ctx, "generate batch: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate batch"})
			return
		}
		drafts.Finish(p.SessionID, services.Draft{SubmissionID: res.Submission.SubmissionID, Vendor: res.Submission.Vendor})
		c.JSON(http.StatusOK, res)
	}
}

// BatchReceipt renders the session's batch as a PDF.
// @Summary Batch receipt
// @Tags single-product
// @Produce application/pdf
// @Success 200 {file} file
// @Failure 400 {object} models.ErrorResponse
// @Router /api/single-product/receipt [get]
func BatchReceipt(products *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := products.Batch(c.Request.Context(), currentPrincipal(c).SessionID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load batch"})
			return
		}
		if len(entries) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No products in batch"})
			return
		}

		now := time.Now()
		var buf bytes.Buffer
		if err := services.WriteReceipt(&buf, entries[0].Vendor, entries, now); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF", "details": err.Error()})
			return
		}
		name := fmt.Sprintf("batch_receipt_%s.pdf", services.Timestamp(now))
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		c.Data(http.StatusOK, "application/pdf", buf.Bytes())
	}
}
