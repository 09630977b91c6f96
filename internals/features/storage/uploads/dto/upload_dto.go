package dto

import (
	"path"
	"strings"

	"kelasku_backend/internals/constants"
)

// Permintaan presigned URL untuk upload langsung ke storage.
type IssueUploadRequest struct {
	Filename    string `json:"filename" validate:"required,max=255"`
	ContentType string `json:"content_type" validate:"omitempty,max=120"`
}

func (r *IssueUploadRequest) Normalize() {
	r.Filename = path.Base(strings.TrimSpace(r.Filename))
	r.ContentType = strings.ToLower(strings.TrimSpace(r.ContentType))
	if r.ContentType == "" {
		r.ContentType = constants.DetectContentTypeFromExt(r.Filename)
	}
}
