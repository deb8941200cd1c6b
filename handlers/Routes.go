package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"vendorportal/logger"
	"vendorportal/services"
)

// Deps are the services the routes are built on.
type Deps struct {
	Auth       *services.AuthService
	Submission *services.SubmissionService
	Products   *services.ProductService
	Assets     *services.AssetService
	Review     *services.ReviewService
	Drafts     *services.Drafts
	Uploader   Uploader
	Ring       *logger.Ring
	Log        logger.Logger

	TemplateFolder string
	StreamInterval time.Duration
}

// Register mounts every portal route on r.
func Register(r gin.IRouter, d Deps) {
	if d.StreamInterval <= 0 {
		d.StreamInterval = 500 * time.Millisecond
	}

	r.GET("/healthz", Healthz)
	r.GET("/download-template", DownloadTemplate(d.TemplateFolder))
	r.GET("/logs/stream", StreamLogs(d.Ring, d.StreamInterval))

	// ==================== AUTH & LOGIN ====================
	r.POST("/api/login", LoginHandler(d.Auth, d.Log))
	r.POST("/api/validate-session", ValidateSession(d.Auth))

	api := r.Group("/api", AuthRequired(d.Auth))
	api.POST("/logout", LogoutHandler(d.Auth, d.Drafts))

	// ==================== UPLOADS ====================
	api.GET("/upload/session", UploadSessionHandler(d.Drafts))
	api.POST("/upload", UploadHandler(d.Submission, d.Drafts, d.Uploader, d.Log))

	// ==================== SINGLE PRODUCT ====================
	api.POST("/single-product/add", AddSingleProduct(d.Products, d.Log))
	api.GET("/single-product/batch", GetBatch(d.Products))
	api.DELETE("/single-product/batch", ClearBatch(d.Products))
	api.POST("/single-product/generate", GenerateBatch(d.Products, d.Drafts, d.Log))
	api.GET("/single-product/receipt", BatchReceipt(d.Products))

	// ==================== ASSETS ====================
	api.POST("/get-asset-upload-sas", AssetUploadSAS(d.Assets, d.Log))
	api.POST("/check-asset-hash", CheckAssetHash(d.Assets, d.Log))
	api.POST("/cleanup-old-assets", CleanupOldAssets(d.Assets, d.Log))

	// ==================== REVIEW ====================
	api.GET("/submission-status", SubmissionStatus(d.Review, d.Log))
	api.GET("/output-summary", OutputSummary(d.Review, d.Log))
	api.GET("/download-log", DownloadLog(d.Review, d.Log))
	api.GET("/log-preview", LogPreview(d.Review, d.Log))
	api.GET("/submissions", SubmissionHistory(d.Submission, d.Log))
}
