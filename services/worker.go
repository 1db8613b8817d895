package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Redis keys shared between the controller (producer) and the worker.
const (
	ImportQueueKey  = "stock_import:queue"
	importJobKeyFmt = "stock_import:job:%s"
	JobTTL          = 24 * time.Hour
)

// ImportJobKey returns the Redis key holding metadata for one job.
func ImportJobKey(jobID string) string {
	return fmt.Sprintf(importJobKeyFmt, jobID)
}

// StartImportWorker starts a background goroutine that consumes job IDs
// from the Redis queue and runs persisted CSV files through the import
// service. Job metadata carries the file path and merchant identity.
func StartImportWorker(ctx context.Context, rdb *redis.Client, importSvc ImportService, storageDir string) {
	if rdb == nil || importSvc == nil {
		zap.L().Warn("import worker not started: missing dependencies")
		return
	}

	if storageDir == "" {
		storageDir = "./data/stock_imports"
	}
	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		zap.L().Error("failed to create import storage dir", zap.Error(err))
		return
	}

	go func() {
		zap.L().Info("import worker started",
			zap.String("queue", ImportQueueKey),
			zap.String("dir", storageDir),
		)
		for {
			select {
			case <-ctx.Done():
				zap.L().Info("import worker stopping")
				return
			default:
			}

			res, err := rdb.BLPop(ctx, 0*time.Second, ImportQueueKey).Result()
			if err != nil {
				if err == context.Canceled || err == context.DeadlineExceeded {
					return
				}
				zap.L().Error("redis BLPop failed", zap.Error(err))
				time.Sleep(500 * time.Millisecond)
				continue
			}
			if len(res) < 2 {
				continue
			}
			processImportJob(ctx, rdb, importSvc, res[1])
		}
	}()
}

func processImportJob(ctx context.Context, rdb *redis.Client, importSvc ImportService, jobID string) {
	jobKey := ImportJobKey(jobID)

	val, err := rdb.Get(ctx, jobKey).Result()
	if err != nil {
		zap.L().Error("failed to read job metadata", zap.String("job", jobID), zap.Error(err))
		return
	}
	var meta map[string]interface{}
	if err := json.Unmarshal([]byte(val), &meta); err != nil {
		zap.L().Error("failed to parse job metadata", zap.String("job", jobID), zap.Error(err))
		return
	}

	filePath, _ := meta["file_path"].(string)
	merchantRaw, _ := meta["merchant_id"].(string)
	merchantID, err := uuid.Parse(merchantRaw)
	if err != nil {
		failJob(ctx, rdb, jobKey, meta, "invalid merchant id in job metadata")
		return
	}

	meta["status"] = "processing"
	storeJob(ctx, rdb, jobKey, meta)

	f, err := os.Open(filepath.Clean(filePath))
	if err != nil {
		zap.L().Error("failed to open job file",
			zap.String("job", jobID), zap.String("path", filePath), zap.Error(err))
		failJob(ctx, rdb, jobKey, meta, err.Error())
		return
	}

	summary, svcErr := importSvc.ImportStock(ctx, merchantID, f)
	f.Close()
	_ = os.Remove(filePath)

	if svcErr != nil && summary == nil {
		zap.L().Error("import job failed",
			zap.String("job", jobID), zap.String("error", svcErr.Message))
		failJob(ctx, rdb, jobKey, meta, svcErr.Message)
		return
	}

	meta["status"] = "done"
	meta["result"] = summary
	if svcErr != nil {
		// Rows were processed but none succeeded; surface the reason
		// alongside the full summary.
		meta["error"] = svcErr.Message
	}
	storeJob(ctx, rdb, jobKey, meta)
}

func failJob(ctx context.Context, rdb *redis.Client, jobKey string, meta map[string]interface{}, reason string) {
	meta["status"] = "failed"
	meta["error"] = reason
	storeJob(ctx, rdb, jobKey, meta)
}

func storeJob(ctx context.Context, rdb *redis.Client, jobKey string, meta map[string]interface{}) {
	b, err := json.Marshal(meta)
	if err != nil {
		zap.L().Error("failed to marshal job metadata", zap.Error(err))
		return
	}
	rdb.Set(ctx, jobKey, b, JobTTL)
}
