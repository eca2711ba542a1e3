// Package extract pulls plain text out of uploaded resume files so the
// AI extraction step always works from text, regardless of the upload format.
package extract

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"cvforge/internal/errors"
)

// MIME types accepted for resume uploads
const (
	MIMETypePDF   = "application/pdf"
	MIMETypeDocx  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMETypePlain = "text/plain"
)

// FromFile extracts the text content of a resume file, dispatching on the
// file extension.
func FromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.NewExtractionFailedError("Failed to read resume file", err).
			WithContext("path", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FromBytes(data, MIMETypePDF)
	case ".docx":
		return FromBytes(data, MIMETypeDocx)
	default:
		return FromBytes(data, MIMETypePlain)
	}
}

// FromBytes extracts the text content of an in-memory resume, dispatching on
// the declared content type. Uploads arrive here straight from the HTTP layer.
func FromBytes(data []byte, contentType string) (string, error) {
	var text string
	var err error

	switch normalizeContentType(contentType) {
	case MIMETypePDF:
		text, err = pdfText(data)
	case MIMETypeDocx:
		text, err = docxText(data)
	case MIMETypePlain:
		text = string(data)
	default:
		return "", errors.NewExtractionFailedError("Unsupported resume file type", nil).
			WithContext("content_type", contentType)
	}

	if err != nil {
		return "", err
	}

	text = CleanText(text)
	if text == "" {
		return "", errors.NewExtractionFailedError("No text content found in resume file", nil).
			WithContext("content_type", contentType)
	}

	return text, nil
}

// normalizeContentType strips parameters ("; charset=utf-8") and lowercases
func normalizeContentType(contentType string) string {
	ct, _, _ := strings.Cut(contentType, ";")
	ct = strings.ToLower(strings.TrimSpace(ct))
	// Browsers sometimes send text uploads as generic text subtypes
	if strings.HasPrefix(ct, "text/") {
		return MIMETypePlain
	}
	return ct
}

// pdfText extracts plain text from every page of a PDF
func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.NewExtractionFailedError("Failed to parse PDF file", err)
	}

	var textBuilder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages, keep what the rest of the document yields
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}

// docxText extracts the document body text from a DOCX file
func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.NewExtractionFailedError("Failed to parse DOCX file", err)
	}
	defer doc.Close()

	return stripDocxTags(doc.Editable().GetContent()), nil
}

// stripDocxTags removes the WordprocessingML markup GetContent leaves in,
// inserting newlines at paragraph boundaries.
func stripDocxTags(content string) string {
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	var b strings.Builder
	inTag := false
	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CleanText trims each line and drops empty ones so downstream prompts stay compact
func CleanText(text string) string {
	var cleanedLines []string
	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}
	return strings.Join(cleanedLines, "\n")
}
