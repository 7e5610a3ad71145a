package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"trustgate/internal/repository"
)

func (h HandlerSet) ListQuarantinedImages(c *gin.Context) {
	limit := 50
	offset := 0

	if perPage := c.Query("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if page := c.Query("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 1 {
			offset = (v - 1) * limit
		}
	}

	images, err := h.deadLetters.ListQuarantined(c.Request.Context(), limit, offset)
	if err != nil {
		h.internalError(c, err, "list quarantined images failed")
		return
	}

	items := make([]gin.H, 0, len(images))
	for _, img := range images {
		items = append(items, gin.H{
			"id":        img.ID,
			"productId": img.ProductID,
			"userId":    img.UserID,
			"imagePath": img.ImagePath,
			"attempts":  img.Attempts,
			"lastError": img.LastError,
			"updatedAt": img.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
	})
}

func (h HandlerSet) RequeueImage(c *gin.Context) {
	id := c.Param("id")
	if err := h.deadLetters.Requeue(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "quarantined_image_not_found"})
			return
		}
		h.internalError(c, err, "requeue image failed")
		return
	}

	h.log.Info().Str("image_id", id).Msg("image requeued")
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) internalError(c *gin.Context, err error, msg string) {
	h.log.Error().Err(err).Str("path", c.FullPath()).Msg(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
}
