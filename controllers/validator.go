package controllers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validation constants
const (
	MaxUploadSize = 10 * 1024 * 1024 // 10MB
	MinUploadSize = 16               // anything smaller cannot hold a header row

	DefaultContextTimeout = 30 * time.Second
)

// Allowed file types
var allowedCSVExtensions = map[string]bool{
	".csv": true,
	".txt": true,
}

// RequestValidator handles all input validation
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{
		validate: validator.New(),
	}
}

// IsValidCSVFile checks if the file is a valid CSV
func (rv *RequestValidator) IsValidCSVFile(file *multipart.FileHeader) bool {
	// Check content type
	contentType := file.Header.Get("Content-Type")
	if contentType == "text/csv" || contentType == "application/csv" || contentType == "text/plain" {
		return true
	}

	// Check file extension
	ext := strings.ToLower(filepath.Ext(file.Filename))
	return allowedCSVExtensions[ext]
}

// ValidateFileSize checks if file size is within limits
func (rv *RequestValidator) ValidateFileSize(file *multipart.FileHeader) error {
	if file.Size > MaxUploadSize {
		return fmt.Errorf("file too large (max %dMB)", MaxUploadSize/(1024*1024))
	}
	if file.Size < MinUploadSize {
		return errors.New("file is empty")
	}
	return nil
}
