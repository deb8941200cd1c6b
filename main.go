// @title           Vendor Portal API
// @version         1.0
// @description     Vendor submissions, single product pricing batches and pipeline review.

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @schemes http https
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"vendorportal/config"
	"vendorportal/handlers"
	"vendorportal/logger"
	"vendorportal/services"
	"vendorportal/storage"
	"vendorportal/utils"
)

var cronRunning int32

func CORSConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{
		"http://localhost:3000",
		"http://localhost:8080",
		"http://localhost:5000",
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding", "Accept", "Origin",
		"X-Requested-With", "Authorization", "X-Request-ID", "Cache-Control",
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD"}
	corsConfig.ExposeHeaders = []string{"Content-Length", "Content-Disposition", "X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}

// cronPrintf feeds robfig/cron's logger into ours.
type cronPrintf struct{ log logger.Logger }

func (p cronPrintf) Printf(format string, args ...interface{}) {
	p.log.Infof(context.Background(), "cron: "+format, args...)
}

func safeGo(
	ctx context.Context,
	wg *sync.WaitGroup,
	name string,
	fn func(context.Context) error,
	log logger.Logger,
) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Errorf(ctx, "PANIC in %s: %v\n%s", name, r, debug.Stack())
			}
		}()

		if err := fn(ctx); err != nil {
			log.Errorf(ctx, "%s failed: %v", name, err)
		} else {
			log.Infof(ctx, "%s completed successfully", name)
		}
	}()
}

var ginPathParamRe = regexp.MustCompile(`:([^/]+)`)

func ginPathToSwaggerPath(path string) string {
	return ginPathParamRe.ReplaceAllString(path, "{$1}")
}

var swaggerDefinitions = map[string]interface{}{
	"Error": map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"error":   map[string]interface{}{"type": "string", "example": "Invalid input"},
			"details": map[string]interface{}{"type": "string"},
		},
	},
	"SubmissionResult": map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"submission_id":  map[string]interface{}{"type": "string", "example": "20250601_120000"},
			"vendor":         map[string]interface{}{"type": "string", "example": "Ride Air"},
			"marker_path":    map[string]interface{}{"type": "string", "example": "raw/notifymarker/Ride Air_2025-06-01_12-00-00.json"},
			"moved_assets":   map[string]interface{}{"type": "integer", "example": 3},
			"assets_skipped": map[string]interface{}{"type": "boolean", "example": false},
		},
	},
}

// buildSwaggerFromRoutes returns a handler that serves Swagger 2.0 JSON with
// every registered route.
func buildSwaggerFromRoutes(engine *gin.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		paths := make(map[string]interface{})
		for _, route := range engine.Routes() {
			if strings.HasPrefix(route.Path, "/swagger") {
				continue
			}
			path := ginPathToSwaggerPath(route.Path)
			if paths[path] == nil {
				paths[path] = make(map[string]interface{})
			}
			method := strings.ToLower(route.Method)

			op := map[string]interface{}{
				"summary":  route.Method + " " + route.Path,
				"tags":     []string{swaggerTag(route.Path)},
				"produces": []string{"application/json"},
				"responses": map[string]interface{}{
					"200": map[string]interface{}{"description": "Success"},
					"400": map[string]interface{}{
						"description": "Bad Request",
						"schema":      map[string]interface{}{"$ref": "#/definitions/Error"},
					},
					"500": map[string]interface{}{
						"description": "Internal Server Error",
						"schema":      map[string]interface{}{"$ref": "#/definitions/Error"},
					},
				},
			}
			if strings.HasPrefix(route.Path, "/api/") && route.Path != "/api/login" && route.Path != "/api/validate-session" {
				op["security"] = []map[string][]string{{"BearerAuth": {}}}
			}
			if route.Path == "/api/upload" {
				op["consumes"] = []string{"multipart/form-data"}
			}

			(paths[path].(map[string]interface{}))[method] = op
		}
		doc := map[string]interface{}{
			"swagger":     "2.0",
			"definitions": swaggerDefinitions,
			"info": map[string]interface{}{
				"title":       "Vendor Portal API",
				"description": "Vendor submissions, single product pricing batches and pipeline review.",
				"version":     "1.0",
			},
			"securityDefinitions": map[string]interface{}{
				"BearerAuth": map[string]interface{}{"type": "apiKey", "in": "header", "name": "Authorization"},
			},
			"host":     c.Request.Host,
			"basePath": "/",
			"schemes":  []string{"http", "https"},
			"paths":    paths,
		}
		c.JSON(http.StatusOK, doc)
	}
}

func swaggerTag(path string) string {
	parts := strings.Split(strings.TrimPrefix(path, "/api/"), "/")
	if parts[0] == "" {
		return "portal"
	}
	return parts[0]
}

// stores bundles the persistence chosen by configuration.
type stores struct {
	users    storage.UserStore
	sessions storage.SessionStore
	records  storage.SubmissionStore
	batches  storage.BatchStore
	blobs    storage.BlobStore
	closers  []io.Closer
}

func openStores(ctx context.Context, cfg *config.Config, log logger.Logger) (*stores, error) {
	s := &stores{}

	if cfg.Database.Enabled() {
		db, err := storage.InitDB(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db)
		sessions := storage.NewSQLSessionStore(db)
		if err := sessions.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		gdb, err := storage.InitGormDB(cfg.Database, cfg.App.Env == "development")
		if err != nil {
			return nil, err
		}
		s.users = storage.NewGormUserStore(gdb)
		s.records = storage.NewGormSubmissionStore(gdb)
		s.sessions = sessions
		log.Infof(ctx, "Using Postgres at %s:%s", cfg.Database.Host, cfg.Database.Port)
	} else {
		s.users = storage.NewMemoryUserStore()
		s.sessions = storage.NewMemorySessionStore()
		s.records = storage.NewMemorySubmissionStore()
		log.Warnf(ctx, "database.host not set, accounts and sessions are kept in memory")
	}

	if cfg.Redis.Addr != "" {
		rdb, err := storage.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, rdb)
		s.batches = storage.NewRedisBatchStore(rdb, cfg.Redis.BatchTTL)
	} else {
		s.batches = storage.NewMemoryBatchStore()
	}

	switch cfg.Blob.Backend {
	case "azure":
		az, err := storage.NewAzureBlobStore(cfg.Blob.ConnectionString)
		if err != nil {
			return nil, err
		}
		if err := az.EnsureContainers(ctx, cfg.Blob.Container, cfg.Blob.SilverContainer); err != nil {
			return nil, err
		}
		s.blobs = az
	default:
		local, err := storage.NewLocalBlobStore(cfg.Blob.LocalRoot)
		if err != nil {
			return nil, err
		}
		s.blobs = local
	}
	return s, nil
}

func (s *stores) Close() {
	for _, c := range s.closers {
		c.Close()
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "vendor portal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = config.DefaultPath
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ring := logger.NewRing(logger.DefaultRingSize)
	log, err := logger.NewZapLogger(cfg.App.LogLevel, ring)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := context.Background()
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	trigger, err := services.NewTrigger(cfg.ETL, log)
	if err != nil {
		return err
	}
	if closer, ok := trigger.(io.Closer); ok {
		defer closer.Close()
	}

	containers := services.Containers{Bronze: cfg.Blob.Container, Silver: cfg.Blob.SilverContainer}
	auth := services.NewAuthService(st.users, st.sessions, cfg.App.JWTSecret, cfg.App.SessionTTL, cfg.App.AllowMultipleSessions, log)
	if _, err := auth.SeedUsers(ctx, services.DefaultUsers); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	subs := services.NewSubmissionService(st.blobs, st.records, trigger, log, containers)
	drafts := services.NewDrafts()

	// ------------------ HOUSEKEEPING ------------------
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(cronPrintf{log: log})))
	_, err = c.AddFunc(cfg.Cron.CleanupSpec, func() {
		if !atomic.CompareAndSwapInt32(&cronRunning, 0, 1) {
			log.Warnf(ctx, "Previous cron still running. Skipping this run.")
			return
		}
		defer atomic.StoreInt32(&cronRunning, 0)

		jobCtx, cancel := context.WithTimeout(context.Background(), cfg.Cron.JobTimeout)
		defer cancel()
		var wg sync.WaitGroup

		safeGo(jobCtx, &wg, "CleanupExpiredSessions", func(ctx context.Context) error {
			n, err := auth.CleanupSessions(ctx)
			if err == nil {
				log.Infof(ctx, "Removed %d expired sessions", n)
			}
			return err
		}, log)
		safeGo(jobCtx, &wg, "CleanupStagingFiles", func(ctx context.Context) error {
			now := time.Now()
			for _, dir := range []string{cfg.App.UploadFolder, cfg.App.OutputFolder} {
				n, err := utils.RemoveOlderThan(dir, cfg.Cron.StagingMaxAge, now)
				if err != nil {
					return err
				}
				log.Infof(ctx, "Removed %d stale files from %s", n, dir)
			}
			return nil
		}, log)
		safeGo(jobCtx, &wg, "PruneDrafts", func(ctx context.Context) error {
			log.Infof(ctx, "Pruned drafts of %d sessions", drafts.Prune(cfg.App.SessionTTL))
			return nil
		}, log)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			log.Infof(ctx, "All cron jobs finished")
		case <-jobCtx.Done():
			log.Warnf(ctx, "Cron timeout reached, jobs cancelled")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule housekeeping: %w", err)
	}
	c.Start()
	defer c.Stop()

	// ------------------ HTTP ------------------
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.MaxMultipartMemory = 8 << 20
	r.Use(cors.New(CORSConfig()), handlers.RequestID())

	handlers.Register(r, handlers.Deps{
		Auth:           auth,
		Submission:     subs,
		Products:       services.NewProductService(cfg.Vocabulary(), st.batches, subs, cfg.App.OutputFolder, log),
		Assets:         services.NewAssetService(st.blobs, containers.Bronze, cfg.Blob.SASTTL, log),
		Review:         services.NewReviewService(st.blobs, containers, cfg.Blob.SASTTL, log),
		Drafts:         drafts,
		Uploader:       handlers.Uploader{Folder: cfg.App.UploadFolder, MaxSize: cfg.App.MaxUploadMB << 20},
		Ring:           ring,
		Log:            log,
		TemplateFolder: cfg.App.TemplateFolder,
	})

	swaggerDoc := buildSwaggerFromRoutes(r)
	r.GET("/swagger/*any", func(c *gin.Context) {
		if c.Param("any") == "/doc.json" {
			swaggerDoc(c)
			return
		}
		ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json"))(c)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Infof(ctx, "%s listening on :%s", cfg.App.Name, cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}
	log.Infof(ctx, "Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Infof(ctx, "Server exiting")
	return nil
}
