package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stock-import-service/middleware"
	"stock-import-service/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockController handles stock import and export operations
type StockController struct {
	importService services.ImportService
	exportService services.ExportService
	redis         *redis.Client
	validator     *RequestValidator
	storageDir    string
	timeout       time.Duration
}

func NewStockController(
	importService services.ImportService,
	exportService services.ExportService,
	rdb *redis.Client,
	validator *RequestValidator,
	storageDir string,
) *StockController {
	if storageDir == "" {
		storageDir = "./data/stock_imports"
	}
	return &StockController{
		importService: importService,
		exportService: exportService,
		redis:         rdb,
		validator:     validator,
		storageDir:    storageDir,
		timeout:       DefaultContextTimeout,
	}
}

// ImportStock accepts a CSV upload and reconciles it into stock records.
// With ?async=true the file is queued and processed by the worker.
func (sc *StockController) ImportStock(c *gin.Context) {
	merchantID, err := middleware.GetMerchantID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	file, err := sc.getAndValidateFile(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fileHandle, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open file"})
		return
	}
	defer fileHandle.Close()

	async := strings.ToLower(strings.TrimSpace(c.Query("async"))) == "true"
	if async {
		sc.handleAsyncImport(c, merchantID, fileHandle)
		return
	}

	sc.handleSyncImport(c, merchantID, fileHandle)
}

// GetImportJobStatus returns the job status/result stored in Redis
func (sc *StockController) GetImportJobStatus(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Job ID required"})
		return
	}

	merchantID, err := middleware.GetMerchantID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	val, err := sc.redis.Get(ctx, services.ImportJobKey(id)).Result()
	if err == redis.Nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	if err != nil {
		zap.L().Error("Failed to get job status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve job status"})
		return
	}

	var jobStatus map[string]interface{}
	if err := json.Unmarshal([]byte(val), &jobStatus); err != nil {
		zap.L().Error("Failed to parse job status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse job result"})
		return
	}

	// Jobs are only visible to the merchant that queued them.
	if owner, _ := jobStatus["merchant_id"].(string); owner != merchantID.String() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	c.JSON(http.StatusOK, jobStatus)
}

// ExportStock streams the merchant's current stock as CSV.
func (sc *StockController) ExportStock(c *gin.Context) {
	merchantID, err := middleware.GetMerchantID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), sc.timeout)
	defer cancel()

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="stock_export.csv"`)

	if svcErr := sc.exportService.ExportStock(ctx, merchantID, c.Writer); svcErr != nil {
		zap.L().Error("Stock export failed", zap.String("error", svcErr.Message))
		c.Status(svcErr.StatusCode)
	}
}

// Private helper methods

func (sc *StockController) getAndValidateFile(c *gin.Context) (*multipart.FileHeader, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("file is required")
	}

	if !sc.validator.IsValidCSVFile(file) {
		return nil, fmt.Errorf("invalid file type. Only CSV files are allowed")
	}

	if err := sc.validator.ValidateFileSize(file); err != nil {
		return nil, err
	}

	return file, nil
}

func (sc *StockController) handleSyncImport(c *gin.Context, merchantID uuid.UUID, fileHandle multipart.File) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), sc.timeout)
	defer cancel()

	summary, svcErr := sc.importService.ImportStock(ctx, merchantID, fileHandle)
	if svcErr != nil {
		zap.L().Error("Stock import failed", zap.String("error", svcErr.Message))
		if summary != nil {
			// Rows were processed but none succeeded: return the full
			// summary so the caller sees every row error.
			c.JSON(svcErr.StatusCode, summary)
			return
		}
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (sc *StockController) handleAsyncImport(c *gin.Context, merchantID uuid.UUID, fileHandle multipart.File) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), sc.timeout)
	defer cancel()

	jobID, err := sc.enqueueJob(ctx, merchantID, fileHandle)
	if err != nil {
		zap.L().Error("Failed to enqueue async stock import", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue import job"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job_id":  jobID,
		"message": "Import queued for processing",
	})
}

func (sc *StockController) enqueueJob(ctx context.Context, merchantID uuid.UUID, fileHandle multipart.File) (string, error) {
	data, err := io.ReadAll(fileHandle)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	if err := os.MkdirAll(sc.storageDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	jobID := uuid.New().String()
	filePath := filepath.Join(sc.storageDir, fmt.Sprintf("%s.csv", jobID))

	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to persist file: %w", err)
	}

	if err := sc.storeJobMetadata(ctx, jobID, merchantID, filePath); err != nil {
		os.Remove(filePath)
		return "", err
	}

	if err := sc.redis.RPush(ctx, services.ImportQueueKey, jobID).Err(); err != nil {
		os.Remove(filePath)
		sc.redis.Del(ctx, services.ImportJobKey(jobID))
		return "", fmt.Errorf("failed to enqueue job: %w", err)
	}

	zap.L().Info("Stock import job queued",
		zap.String("job_id", jobID),
		zap.String("merchant_id", merchantID.String()),
	)
	return jobID, nil
}

func (sc *StockController) storeJobMetadata(ctx context.Context, jobID string, merchantID uuid.UUID, filePath string) error {
	jobInfo := map[string]interface{}{
		"status":      "pending",
		"created_at":  time.Now().UTC().Format(time.RFC3339),
		"file_path":   filePath,
		"merchant_id": merchantID.String(),
	}

	jobData, err := json.Marshal(jobInfo)
	if err != nil {
		return fmt.Errorf("failed to marshal job info: %w", err)
	}

	if err := sc.redis.Set(ctx, services.ImportJobKey(jobID), jobData, services.JobTTL).Err(); err != nil {
		return fmt.Errorf("failed to store job metadata: %w", err)
	}

	return nil
}
