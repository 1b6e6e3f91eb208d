package client

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"[Content_Types].xml":          `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
		"word/document.xml":            documentXML,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDetectType(t *testing.T) {
	cases := []struct {
		name, mime, want string
	}{
		{"cv.pdf", "application/pdf", MimePDF},
		{"cv.pdf", "", MimePDF},
		{"cv.docx", "application/octet-stream", MimeDOCX},
		{"cv.docx", "application/zip", MimeDOCX},
		{"cv.md", "", MimePlain},
		{"cv.txt", "text/plain; charset=utf-8", MimePlain},
		{"cv.bin", "", ""},
		{"cv", "Image/PNG", "image/png"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, DetectType(tc.name, tc.mime), "name=%s mime=%s", tc.name, tc.mime)
	}
}

func TestExtractText_PlainText(t *testing.T) {
	text, err := ExtractText("resume.txt", MimePlain, []byte("Jane Doe\nGo engineer"))
	require.NoError(t, err)
	require.Equal(t, "Jane Doe\nGo engineer", text)

	text, err = ExtractText("resume", "", []byte("no extension but readable"))
	require.NoError(t, err)
	require.Equal(t, "no extension but readable", text)
}

func TestExtractText_RejectsBinary(t *testing.T) {
	_, err := ExtractText("photo.png", "image/png", []byte{0x89, 'P', 'N', 'G', 0x00, 0xff})
	require.ErrorContains(t, err, "unsupported file type")

	_, err = ExtractText("resume.txt", MimePlain, []byte{0xff, 0xfe, 0xfd})
	require.ErrorContains(t, err, "UTF-8")
}

func TestExtractText_DOCX(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Senior Go </w:t></w:r><w:r><w:t>Engineer</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	text, err := ExtractText("resume.docx", MimeDOCX, buildDOCX(t, doc))
	require.NoError(t, err)
	require.Equal(t, "Jane Doe\nSenior Go Engineer", text)
}

func TestExtractText_DOCXErrors(t *testing.T) {
	_, err := ExtractText("resume.docx", MimeDOCX, nil)
	require.ErrorContains(t, err, "empty docx")

	_, err = ExtractText("resume.docx", MimeDOCX, []byte("not a zip"))
	require.ErrorContains(t, err, "parse docx")
}

func TestExtractText_InvalidPDF(t *testing.T) {
	_, err := ExtractText("resume.pdf", MimePDF, []byte("%PDF-1.4 truncated"))
	require.ErrorContains(t, err, "pdf")
}

func TestStripDocxXML(t *testing.T) {
	require.Equal(t, "a\nb", stripDocxXML(`<d><p>a</p><p>b</p></d>`))
	require.Equal(t, "line1\nline2", stripDocxXML(`<d><p>line1<br/>line2</p></d>`))
	require.Equal(t, "<broken", stripDocxXML("<broken"))
}
