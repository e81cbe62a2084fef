package response

import (
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/mahmoodhamdi/sounds-api/internal/models"
)

// FormUpload opens the multipart file under field. The caller must invoke
// closeFn once the upload has been consumed.
func FormUpload(c *gin.Context, field string) (upload models.Upload, closeFn func(), ok bool) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		BadRequest(c, field+" is required")
		return models.Upload{}, nil, false
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot open file"})
		return models.Upload{}, nil, false
	}

	ct := fileHeader.Header.Get("Content-Type")
	if ct == "" {
		ct = mime.TypeByExtension(filepath.Ext(fileHeader.Filename))
		if ct == "" {
			ct = "application/octet-stream"
		}
	}

	return models.Upload{
		Filename:    fileHeader.Filename,
		ContentType: ct,
		Size:        fileHeader.Size,
		Reader:      file,
	}, func() { _ = file.Close() }, true
}
