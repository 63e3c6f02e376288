package dto

type CreateClubBookRequest struct {
	Title     string  `json:"title" binding:"required,max=255"`
	Author    string  `json:"author" binding:"required,max=255"`
	CoverURL  *string `json:"cover_url" binding:"omitempty,url"`
	PageCount int     `json:"page_count" binding:"omitempty,min=1"`
}
