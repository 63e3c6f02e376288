package dto

type AuthorResponse struct {
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar_url"`
}

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
}

// ReactionsResponse carries the derived aggregate for one post plus the
// viewer's own reaction when an identity was present.
type ReactionsResponse struct {
	Counts      map[string]int64 `json:"counts"`
	UserReacted *string          `json:"user_reacted"`
}
