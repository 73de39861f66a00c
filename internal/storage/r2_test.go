package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	key := ObjectKey("user-1", "Mi CV.PDF")
	assert.True(t, strings.HasPrefix(key, "uploads/user-1/"), key)
	assert.True(t, strings.HasSuffix(key, ".pdf"), key)
	assert.NotEqual(t, key, ObjectKey("user-1", "Mi CV.PDF"))
}

func TestObjectURL(t *testing.T) {
	cfg := R2Config{AccountID: "acc", Bucket: "cvs"}
	assert.Equal(t, "https://acc.r2.cloudflarestorage.com/cvs/uploads/a.pdf", ObjectURL(cfg, "uploads/a.pdf"))

	cfg.PublicBaseURL = "https://files.example.com/"
	assert.Equal(t, "https://files.example.com/uploads/a.pdf", ObjectURL(cfg, "uploads/a.pdf"))
}
