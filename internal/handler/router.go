package handler

import (
	"errors"
	"net/http"
	"os"
	"runtime/debug"

	"github.com/armchr/vectorapi/internal/config"
	"github.com/armchr/vectorapi/internal/controller"
	"github.com/armchr/vectorapi/internal/errs"
	"github.com/armchr/vectorapi/internal/model"
	"github.com/armchr/vectorapi/internal/service/vector"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter builds the REST facade. It exposes the same four
// operations as the MCP tools plus a health endpoint.
func SetupRouter(docs *controller.DocumentController, db vector.VectorDatabase, cfg *config.Config, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(RecoveryMiddleware(logger))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/collections", func(c *gin.Context) {
			names, err := docs.ListCollections(c.Request.Context())
			if err != nil {
				abortWithError(c, err)
				return
			}
			if names == nil {
				names = []string{}
			}
			c.JSON(http.StatusOK, model.ListCollectionsResponse{Collections: names})
		})

		v1.DELETE("/collections/:name", func(c *gin.Context) {
			name := c.Param("name")
			if err := docs.DeleteCollection(c.Request.Context(), name); err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, model.DeleteCollectionResponse{Collection: name, Success: true})
		})

		v1.POST("/documents", func(c *gin.Context) {
			var req model.AddDocumentsRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			content := req.Content
			source := ""
			if req.FilePath != "" {
				data, err := os.ReadFile(req.FilePath)
				if err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file: " + err.Error()})
					return
				}
				content = string(data)
				source = req.FilePath
			}

			result, err := docs.AddDocuments(c.Request.Context(), controller.IngestRequest{
				Content:      content,
				Source:       source,
				Collection:   req.Collection,
				Embedding:    cfg.EmbeddingConfigFor(req.EmbeddingService),
				ChunkSize:    req.ChunkSize,
				ChunkOverlap: req.ChunkOverlap,
			})
			if err != nil {
				abortWithError(c, err)
				return
			}

			c.JSON(http.StatusOK, model.AddDocumentsResponse{
				Collection:        req.Collection,
				ChunksWritten:     result.ChunksWritten,
				CollectionCreated: result.CollectionCreated,
				Warnings:          result.Warnings,
				Success:           true,
			})
		})

		v1.POST("/search", func(c *gin.Context) {
			var req model.SearchRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			results, err := docs.Search(c.Request.Context(), controller.SearchRequest{
				Query:      req.Query,
				Collection: req.Collection,
				Embedding:  cfg.EmbeddingConfigFor(req.EmbeddingService),
				Limit:      req.Limit,
			})
			if err != nil {
				abortWithError(c, err)
				return
			}

			c.JSON(http.StatusOK, model.SearchResponse{
				Collection: req.Collection,
				Results:    results,
				Success:    true,
			})
		})

		v1.GET("/health", func(c *gin.Context) {
			if err := db.Health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})
	}

	return router
}

// abortWithError maps the error taxonomy onto HTTP status codes.
func abortWithError(c *gin.Context, err error) {
	var (
		configErr     *errs.ConfigError
		validationErr *errs.ValidationError
		storeErr      *errs.StoreError
	)
	switch {
	case errors.As(err, &configErr), errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &storeErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// RecoveryMiddleware logs panics through zap and returns a 500.
func RecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
					zap.ByteString("stack", debug.Stack()))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}
