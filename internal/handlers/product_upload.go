package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"optika/internal/upload"
)

// multipart overhead allowed on top of the image itself
const uploadBodySlack = 1 << 20

func UploadImage(storage upload.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/upload"
		defer handlePanic(c, route)

		if !strings.HasPrefix(c.GetHeader("Content-Type"), "multipart/form-data") {
			respondWithError(c, http.StatusUnsupportedMediaType, route, "multipart/form-data required")
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, upload.MaxImageSize+uploadBodySlack)

		file, err := c.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				respondWithError(c, http.StatusBadRequest, route, upload.ErrTooLarge.Error())
				return
			}
			respondWithError(c, http.StatusBadRequest, route, "no file provided")
			return
		}

		url, err := storage.Save(c.Request.Context(), file)
		if err != nil {
			if errors.Is(err, upload.ErrUnsupportedType) || errors.Is(err, upload.ErrTooLarge) {
				respondWithError(c, http.StatusBadRequest, route, err.Error())
				return
			}
			log.Printf("[%s] save failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "failed to upload image")
			return
		}

		c.JSON(http.StatusOK, gin.H{"url": url})
	}
}
