package dto

type ReactionToggleRequest struct {
	Type string `json:"type" binding:"required,oneof=like love laugh wow sad clap"`
}

// ToggleResponse reflects the post-transition state: active=false means the
// toggle removed the caller's reaction and Type is null.
type ToggleResponse struct {
	Active bool    `json:"active"`
	Type   *string `json:"type"`
}
