package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectContentTypeFromExt(t *testing.T) {
	assert.Equal(t, "application/pdf", DetectContentTypeFromExt("Tugas.PDF"))
	assert.Equal(t, "image/jpeg", DetectContentTypeFromExt("foto.jpeg"))
	assert.Equal(t, "application/octet-stream", DetectContentTypeFromExt("catatan"))
}
