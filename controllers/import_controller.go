package controllers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ibrahim77gh/shopify-products/importer"
)

// ImportController queues inventory import jobs and reports their status.
// The actual run happens in the background worker; a scheduler can bypass
// this controller entirely by pushing onto the queue itself.
type ImportController struct {
	redis            *redis.Client
	storageDir       string
	defaultRecipient string
	logger           *zap.Logger
}

func NewImportController(rdb *redis.Client, storageDir, defaultRecipient string, logger *zap.Logger) *ImportController {
	return &ImportController{
		redis:            rdb,
		storageDir:       storageDir,
		defaultRecipient: defaultRecipient,
		logger:           logger,
	}
}

type triggerImportRequest struct {
	Source         string `json:"source"`
	RecipientEmail string `json:"recipient_email"`
}

// TriggerImport enqueues an import job. The feed is either an uploaded CSV
// (multipart "file"), a server-side source path, or empty for the bundled
// sample.
func (ic *ImportController) TriggerImport(c *gin.Context) {
	if ic.redis == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Import queue unavailable"})
		return
	}

	job := importer.Job{ID: uuid.New().String()}

	if file, err := c.FormFile("file"); err == nil {
		if !strings.EqualFold(filepath.Ext(file.Filename), ".csv") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file type. Only CSV files are allowed"})
			return
		}
		path, err := ic.persistUpload(c, job.ID)
		if err != nil {
			ic.logger.Error("Failed to persist uploaded feed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store uploaded file"})
			return
		}
		job.Source = path
		job.RecipientEmail = strings.TrimSpace(c.PostForm("recipient_email"))
	} else {
		var req triggerImportRequest
		if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		job.Source = strings.TrimSpace(req.Source)
		job.RecipientEmail = strings.TrimSpace(req.RecipientEmail)
	}

	if job.RecipientEmail == "" {
		job.RecipientEmail = ic.defaultRecipient
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := importer.EnqueueJob(ctx, ic.redis, job); err != nil {
		ic.logger.Error("Failed to enqueue import job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue import job"})
		return
	}

	ic.logger.Info("Import job queued", zap.String("job_id", job.ID), zap.String("source", job.Source))
	c.JSON(http.StatusAccepted, gin.H{
		"job_id":  job.ID,
		"message": "Import queued for processing",
	})
}

// GetImportJobStatus returns the job status/result stored in redis.
func (ic *ImportController) GetImportJobStatus(c *gin.Context) {
	if ic.redis == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Import queue unavailable"})
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Job ID required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := importer.GetJobStatus(ctx, ic.redis, id)
	if err != nil {
		ic.logger.Error("Failed to get job status", zap.String("job_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve job status"})
		return
	}
	if status == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	c.JSON(http.StatusOK, status)
}

func (ic *ImportController) persistUpload(c *gin.Context, jobID string) (string, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return "", err
	}
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(ic.storageDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	path := filepath.Join(ic.storageDir, jobID+".csv")
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create feed file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to persist feed file: %w", err)
	}
	return path, nil
}
