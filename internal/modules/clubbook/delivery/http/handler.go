package handler

import (
	"net/http"

	"github.com/bookcircle-app/backend/internal/entity"
	clubbookDto "github.com/bookcircle-app/backend/internal/modules/clubbook/dto"
	clubbookRepo "github.com/bookcircle-app/backend/internal/modules/clubbook/repository"
	"github.com/bookcircle-app/backend/pkg/apperror"
	"github.com/bookcircle-app/backend/pkg/response"
	"github.com/bookcircle-app/backend/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ClubBookHandler is thin enough to sit directly on the repository; club
// books have no write-path side effects.
type ClubBookHandler struct {
	repo clubbookRepo.ClubBookRepository
}

func NewClubBookHandler(repo clubbookRepo.ClubBookRepository) *ClubBookHandler {
	return &ClubBookHandler{repo: repo}
}

func (h *ClubBookHandler) CreateClubBook(c *gin.Context) {
	var req clubbookDto.CreateClubBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if _, err := response.GetUserID(c); err != nil {
		response.ResponseError(c, err)
		return
	}

	book := &entity.ClubBook{
		Title:     req.Title,
		Author:    req.Author,
		CoverURL:  req.CoverURL,
		PageCount: req.PageCount,
	}
	if err := h.repo.Create(c.Request.Context(), book); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, book)
}

func (h *ClubBookHandler) GetClubBooks(c *gin.Context) {
	books, err := h.repo.FindAll(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": books})
}

func (h *ClubBookHandler) GetClubBook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid club book id"})
		return
	}

	book, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	if book == nil {
		response.ResponseError(c, apperror.ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, book)
}
