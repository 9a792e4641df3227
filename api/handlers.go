package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/acoustlab/strudelize/logging"
	"github.com/acoustlab/strudelize/transcode"
)

type convertURLRequest struct {
	URL string `json:"url" binding:"required"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleConvert accepts a multipart audio upload and returns the generated
// pattern code
func (s *Server) handleConvert(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "missing file field"})
		return
	}

	if !transcode.IsSupportedFile(file.Filename) {
		c.JSON(http.StatusUnsupportedMediaType, errorResponse{
			Error: "unsupported format, expected one of: " +
				strings.Join(transcode.SupportedExtensions(), " "),
		})
		return
	}

	uploadDir, err := os.MkdirTemp("", "strudelize_upload_")
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "storing upload failed"})
		return
	}
	defer os.RemoveAll(uploadDir)

	uploadPath := filepath.Join(uploadDir, uuid.NewString()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, uploadPath); err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "storing upload failed"})
		return
	}

	s.convert(c, uploadPath)
}

// handleConvertURL downloads remote audio and runs the same conversion
func (s *Server) handleConvertURL(c *gin.Context) {
	if s.downloader == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "url conversion disabled"})
		return
	}

	var req convertURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "missing url field"})
		return
	}

	audioPath, err := s.downloader.Download(c.Request.Context(), req.URL)
	if err != nil {
		s.logger.Warn("download failed", logging.Fields{"url": req.URL, "error": err.Error()})
		c.JSON(http.StatusBadGateway, errorResponse{Error: "fetching remote audio failed"})
		return
	}
	defer os.RemoveAll(filepath.Dir(audioPath))

	s.convert(c, audioPath)
}

func (s *Server) convert(c *gin.Context, audioPath string) {
	result, err := s.pipeline.Convert(c.Request.Context(), audioPath)
	if err != nil {
		if errors.Is(err, transcode.ErrDecode) {
			c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: "audio decode failed"})
			return
		}
		s.logger.Error(err, "conversion failed", logging.Fields{"path": audioPath})
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "conversion failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}
