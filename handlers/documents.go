package handlers

import (
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"bace/apperrors"
	"bace/storage"

	"github.com/gin-gonic/gin"
)

type document struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Size        int64  `json:"size"`
	Date        string `json:"date"`
	DownloadURL string `json:"downloadUrl"`
}

// ListDocuments returns the course material available to members.
func (h *Handler) ListDocuments(c *gin.Context) {
	files, err := h.Documents.List(c.Request.Context())
	if err != nil {
		respondError(c, apperrors.Internal(err))
		return
	}

	docs := make([]document, 0, len(files))
	for _, f := range files {
		ext := filepath.Ext(f.Name)
		docs = append(docs, document{
			ID:          f.Name,
			Name:        strings.TrimSuffix(f.Name, ext),
			Type:        strings.TrimPrefix(strings.ToLower(ext), "."),
			Size:        f.Size,
			Date:        f.ModTime.Format("2006-01-02"),
			DownloadURL: "/api/documents/" + url.PathEscape(f.Name) + "/download",
		})
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "documents": docs})
}

func (h *Handler) DownloadDocument(c *gin.Context) {
	name := c.Param("id")
	rc, err := h.Documents.Open(c.Request.Context(), name)
	if errors.Is(err, storage.ErrInvalidName) || errors.Is(err, fs.ErrNotExist) {
		respondError(c, apperrors.NotFound("Document not found"))
		return
	}
	if err != nil {
		respondError(c, apperrors.Internal(err))
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		c.Error(err)
	}
}
