package document

import (
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rotisserie/eris"
)

// Info summarizes a source file for display headers.
type Info struct {
	Path      string `json:"path"`
	Kind      Kind   `json:"kind"`
	SizeBytes int64  `json:"size_bytes"`
	// Pages is set for PDFs only; other kinds report 0.
	Pages int `json:"pages,omitempty"`
}

// Stat describes the file at path, including the page count for PDFs.
func Stat(path string) (*Info, error) {
	st, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, eris.Wrapf(ErrNotFound, "%s", path)
		}
		return nil, eris.Wrapf(err, "document: stat %s", path)
	}

	info := &Info{
		Path:      path,
		Kind:      Detect(path),
		SizeBytes: st.Size(),
	}
	if info.Kind == KindPDF {
		pages, err := PageCount(path)
		if err != nil {
			return nil, err
		}
		info.Pages = pages
	}
	return info, nil
}

// PageCount returns the number of pages in a PDF, validating the file in
// the process.
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, eris.Wrapf(err, "document: pdf page count %s", path)
	}
	return n, nil
}
