// Package document loads and describes the source files a review session
// consumes: the document under review (PDF, image, or XML), OCR data, and
// guidelines. Read-only with respect to review state; it never touches
// the extraction record.
package document

import (
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// Kind classifies a source file by extension.
type Kind string

const (
	KindPDF     Kind = "pdf"
	KindImage   Kind = "image"
	KindXML     Kind = "xml"
	KindJSON    Kind = "json"
	KindText    Kind = "text"
	KindUnknown Kind = "unknown"
)

// ErrNotFound indicates the source file does not exist.
var ErrNotFound = eris.New("document: file not found")

// Detect classifies a file by its extension.
func Detect(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return KindPDF
	case ".jpg", ".jpeg", ".png":
		return KindImage
	case ".xml":
		return KindXML
	case ".json":
		return KindJSON
	case ".md", ".txt":
		return KindText
	default:
		return KindUnknown
	}
}

// MIMEType returns the content type to serve a file under.
func MIMEType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".xml":
		return "application/xml"
	case ".json":
		return "application/json"
	case ".md":
		return "text/markdown"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

// Load reads a source file as raw bytes.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, eris.Wrapf(ErrNotFound, "%s", path)
		}
		return nil, eris.Wrapf(err, "document: read %s", path)
	}
	return data, nil
}

// PrettyXML reformats an XML document with two-space indentation for
// display. Charset declarations other than UTF-8 are honored via the
// html charset index.
func PrettyXML(content []byte) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "document: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}

	var buf bytes.Buffer
	encoder := xml.NewEncoder(&buf)
	encoder.Indent("", "  ")

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", eris.Wrap(err, "document: parse xml")
		}
		// Whitespace-only character data fights the indenter.
		if cd, ok := tok.(xml.CharData); ok && len(bytes.TrimSpace(cd)) == 0 {
			continue
		}
		if err := encoder.EncodeToken(tok); err != nil {
			return "", eris.Wrap(err, "document: reencode xml")
		}
	}
	if err := encoder.Flush(); err != nil {
		return "", eris.Wrap(err, "document: flush xml")
	}
	return buf.String(), nil
}

// SaveUpload streams an uploaded file to path, creating parent
// directories as needed, and returns the path written.
func SaveUpload(r io.Reader, path string) (string, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", eris.Wrapf(err, "document: create dir %s", dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return "", eris.Wrapf(err, "document: create %s", path)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", eris.Wrapf(err, "document: write %s", path)
	}
	return path, nil
}
