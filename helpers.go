package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	mimeText = "text/plain"
	mimePDF  = "application/pdf"
	mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var errUnsupportedType = errors.New("unsupported file type")

func CleanJson(input string) string {
	clean := strings.TrimSpace(input)

	// Remove opening ```json or ``` with optional newline
	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")
	clean = strings.TrimSuffix(clean, "```")

	return strings.TrimSpace(clean)
}

// uploadMime resolves the MIME type of an uploaded file from its declared
// content type, falling back to the file extension.
func uploadMime(declared, filename string) string {
	declared = strings.TrimSpace(strings.SplitN(declared, ";", 2)[0])
	switch declared {
	case mimeText, mimePDF, mimeDocx:
		return declared
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return mimeText
	case ".pdf":
		return mimePDF
	case ".docx":
		return mimeDocx
	}
	return declared
}

func ExtractCVText(mime string, data []byte) (string, error) {
	switch mime {
	case mimeText:
		return string(data), nil

	case mimePDF:
		return extractPDFText(data)

	case mimeDocx:
		return extractDocxText(data)

	default:
		return "", fmt.Errorf("%w: %s", errUnsupportedType, mime)
	}
}

func extractPDFText(data []byte) (string, error) {
	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}
	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, _ := page.GetPlainText(nil)
		textBuilder.WriteString(text)
	}
	return textBuilder.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return doc.Editable().GetContent(), nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func respondError(w http.ResponseWriter, code int, msg, details string) {
	writeJSON(w, code, errorBody{Error: msg, Details: details})
}

// decodeJSON reads a single JSON object from r into v.
func decodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
