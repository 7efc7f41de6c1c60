package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want Kind
	}{
		{"invoice.pdf", KindPDF},
		{"scan.JPG", KindImage},
		{"scan.jpeg", KindImage},
		{"scan.png", KindImage},
		{"filing.xml", KindXML},
		{"extract.json", KindJSON},
		{"guidelines.md", KindText},
		{"notes.txt", KindText},
		{"archive.zip", KindUnknown},
		{"noext", KindUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Detect(tt.path), tt.path)
	}
}

func TestMIMEType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "application/pdf", MIMEType("a.pdf"))
	assert.Equal(t, "image/jpeg", MIMEType("a.jpg"))
	assert.Equal(t, "image/png", MIMEType("a.png"))
	assert.Equal(t, "application/xml", MIMEType("a.xml"))
	assert.Equal(t, "text/markdown", MIMEType("a.md"))
	assert.Equal(t, "text/plain", MIMEType("a.txt"))
	assert.Equal(t, "application/octet-stream", MIMEType("a.bin"))
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "doc.xml")
	require.NoError(t, os.WriteFile(path, []byte("<root/>"), 0o644))

	data, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("<root/>"), data)

	_, err = Load(filepath.Join(t.TempDir(), "missing.xml"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPrettyXML(t *testing.T) {
	t.Parallel()

	pretty, err := PrettyXML([]byte(`<invoice><amount currency="USD">100</amount><vendor>Acme</vendor></invoice>`))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(pretty), "\n")
	assert.Greater(t, len(lines), 1)
	assert.Contains(t, pretty, `<amount currency="USD">100</amount>`)
	assert.Contains(t, pretty, "  <vendor>Acme</vendor>")

	_, err = PrettyXML([]byte("<unclosed>"))
	assert.Error(t, err)
}

func TestSaveUpload(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "nested", "dir", "upload.pdf")
	path, err := SaveUpload(strings.NewReader("pdf bytes"), dest)
	require.NoError(t, err)
	assert.Equal(t, dest, path)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(data))
}

func TestStatNonPDF(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "doc.xml")
	require.NoError(t, os.WriteFile(path, []byte("<root/>"), 0o644))

	info, err := Stat(path)
	require.NoError(t, err)
	assert.Equal(t, KindXML, info.Kind)
	assert.Equal(t, int64(7), info.SizeBytes)
	assert.Zero(t, info.Pages)

	_, err = Stat(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, ErrNotFound)
}
