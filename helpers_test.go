package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJson(t *testing.T) {
	assert.Equal(t, `{"a":1}`, CleanJson("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `[1]`, CleanJson("```\n[1]\n```"))
	assert.Equal(t, `{"a":1}`, CleanJson(`  {"a":1} `))
}

func TestUploadMime(t *testing.T) {
	assert.Equal(t, mimePDF, uploadMime("application/pdf", "x.bin"))
	assert.Equal(t, mimeText, uploadMime("text/plain; charset=utf-8", "cv"))
	assert.Equal(t, mimeDocx, uploadMime("application/octet-stream", "CV.DOCX"))
	assert.Equal(t, "image/png", uploadMime("image/png", "foto.png"))
}

func TestExtractCVText(t *testing.T) {
	text, err := ExtractCVText(mimeText, []byte("hola"))
	require.NoError(t, err)
	assert.Equal(t, "hola", text)

	_, err = ExtractCVText("image/png", nil)
	assert.ErrorIs(t, err, errUnsupportedType)

	_, err = ExtractCVText(mimeDocx, []byte("not a zip"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, errUnsupportedType)
}

func TestRequireFields(t *testing.T) {
	assert.NoError(t, requireFields(field{"a", "x"}, field{"b", "y"}))

	err := requireFields(field{"a", "x"}, field{"b", " \t"}, field{"c", ""})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "b", verr.Field)
}
