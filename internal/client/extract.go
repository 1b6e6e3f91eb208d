package client

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MimePDF   = "application/pdf"
	MimeDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimePlain = "text/plain"
)

var textExtensions = map[string]bool{
	".txt":      true,
	".text":     true,
	".md":       true,
	".markdown": true,
}

// DetectType normalises a declared MIME type, falling back to the file
// extension when the type is missing or generic.
func DetectType(name, mimeType string) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch clean {
	case "", "application/octet-stream", "application/zip":
	default:
		return clean
	}
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case ext == ".pdf":
		return MimePDF
	case ext == ".docx":
		return MimeDOCX
	case textExtensions[ext]:
		return MimePlain
	}
	return clean
}

// ExtractText converts a resume file to plain text.
func ExtractText(name, mimeType string, data []byte) (string, error) {
	kind := DetectType(name, mimeType)
	switch {
	case kind == MimePDF:
		return extractPDF(data)
	case kind == MimeDOCX:
		return extractDOCX(data)
	case strings.HasPrefix(kind, "text/"), looksLikeText(data):
		if !utf8.Valid(data) {
			return "", fmt.Errorf("client: %s is not valid UTF-8 text", name)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("client: unsupported file type %q", kind)
	}
}

func looksLikeText(data []byte) bool {
	return len(data) > 0 && utf8.Valid(data) && !bytes.ContainsRune(data, 0)
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("client: read pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("client: pdf plain text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("client: copy pdf text: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("client: empty docx data")
	}
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("client: parse docx: %w", err)
	}
	defer func() { _ = doc.Close() }()

	return stripDocxXML(doc.Editable().GetContent()), nil
}

// stripDocxXML keeps character data and turns paragraph and break ends into newlines.
func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.EndElement:
			if (t.Name.Local == "p" || t.Name.Local == "br") && buf.Len() > 0 {
				buf.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
