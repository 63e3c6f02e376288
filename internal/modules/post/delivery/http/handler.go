package handler

import (
	"errors"
	"fmt"
	"net/http"

	postDto "github.com/bookcircle-app/backend/internal/modules/post/dto"
	post "github.com/bookcircle-app/backend/internal/modules/post/service"
	"github.com/bookcircle-app/backend/pkg/ratelimiter"
	"github.com/bookcircle-app/backend/pkg/response"
	"github.com/bookcircle-app/backend/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PostHandler struct {
	service post.PostService
}

func NewPostHandler(service post.PostService) *PostHandler {
	return &PostHandler{service: service}
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	var req postDto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.CreatePost(c.Request.Context(), userID, req)
	if err != nil {
		var rateErr *ratelimiter.RateLimitError
		if errors.As(err, &rateErr) {
			c.Header("Retry-After", fmt.Sprintf("%.0f", rateErr.RetryAfter.Seconds()))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": rateErr.Message})
			return
		}
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *PostHandler) GetFeed(c *gin.Context) {
	var filter postDto.FeedFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	viewerID := response.GetOptionalUserID(c)

	resp, err := h.service.GetFeed(c.Request.Context(), viewerID, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	viewerID := response.GetOptionalUserID(c)

	resp, err := h.service.GetPostByID(c.Request.Context(), postID, viewerID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
