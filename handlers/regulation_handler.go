package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"handbookbot-backend/models"
	"handbookbot-backend/repository"

	"github.com/gin-gonic/gin"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RegulationHandler handles HTTP requests for regulation management
type RegulationHandler struct {
	regulationRepo    *repository.RegulationRepository
	maxFileSize       int64
	allowedExtensions map[string]bool
}

// NewRegulationHandler creates a new regulation handler
func NewRegulationHandler(regulationRepo *repository.RegulationRepository) *RegulationHandler {
	return &RegulationHandler{
		regulationRepo: regulationRepo,
		maxFileSize:    1 * 1024 * 1024, // 1MB
		allowedExtensions: map[string]bool{
			".txt": true,
			".md":  true,
		},
	}
}

// ListRegulations handles GET /api/regulations
func (h *RegulationHandler) ListRegulations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.regulationRepo.List(),
	})
}

// UploadRegulations handles POST /api/regulations/upload
func (h *RegulationHandler) UploadRegulations(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "At least one file is required",
			},
		})
		return
	}

	// The batch is all-or-nothing: one unreadable file rejects the upload
	batch := make([]models.UploadedRegulation, 0, len(form.File["files"]))
	for _, fileHeader := range form.File["files"] {
		content, code, err := h.readRegulationFile(fileHeader)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    code,
					"message": err.Error(),
				},
			})
			return
		}
		batch = append(batch, models.UploadedRegulation{
			Name:    fileHeader.Filename,
			Content: content,
		})
	}

	stored, ignored := h.regulationRepo.Add(context.WithoutCancel(c.Request.Context()), batch)
	if stored == nil {
		stored = []models.RegulationDocument{}
	}
	if ignored == nil {
		ignored = []string{}
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"stored":  stored,
			"ignored": ignored,
		},
	})
}

func (h *RegulationHandler) readRegulationFile(fileHeader *multipart.FileHeader) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !h.allowedExtensions[ext] {
		return "", "INVALID_FILE_TYPE", fmt.Errorf("%s: file type not allowed. Allowed types: TXT, MD", fileHeader.Filename)
	}

	if fileHeader.Size > h.maxFileSize {
		return "", "FILE_TOO_LARGE", fmt.Errorf("%s: file size exceeds maximum of %d bytes", fileHeader.Filename, h.maxFileSize)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", "FILE_OPEN_ERROR", fmt.Errorf("%s: %w", fileHeader.Filename, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		return "", "FILE_READ_ERROR", fmt.Errorf("%s: %w", fileHeader.Filename, err)
	}
	if int64(len(data)) > h.maxFileSize {
		return "", "FILE_TOO_LARGE", fmt.Errorf("%s: file size exceeds maximum of %d bytes", fileHeader.Filename, h.maxFileSize)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", "INVALID_ENCODING", fmt.Errorf("%s: file is not valid UTF-8 text", fileHeader.Filename)
	}

	return string(data), "", nil
}

// UpdateRegulationRequest represents the request body for editing a regulation
type UpdateRegulationRequest struct {
	Content string `json:"content"`
	Link    string `json:"link"`
}

// UpdateRegulation handles PUT /api/regulations/:id
func (h *RegulationHandler) UpdateRegulation(c *gin.Context) {
	var req UpdateRegulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	id := c.Param("id")
	update := models.RegulationUpdate{
		Content: req.Content,
		Link:    strings.TrimSpace(req.Link),
	}
	if !h.regulationRepo.Update(context.WithoutCancel(c.Request.Context()), id, update) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Regulation not found",
			},
		})
		return
	}

	doc, _ := h.regulationRepo.Get(id)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    doc,
	})
}

// DeleteRegulation handles DELETE /api/regulations/:id
func (h *RegulationHandler) DeleteRegulation(c *gin.Context) {
	if !h.regulationRepo.Delete(context.WithoutCancel(c.Request.Context()), c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Regulation not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}
