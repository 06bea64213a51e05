package report

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"path/filepath"
	"wardroster/lib/cachedir"
)

//go:embed templates/report.html.tmpl
var templates embed.FS

// PhotoFunc returns the src of a member's photo, or "" if there is none.
type PhotoFunc func(memberId int64) string

type page struct {
	Data
	Title string
}

func parse(photo PhotoFunc, counts map[int64]int) (*template.Template, error) {
	return template.New("report.html.tmpl").
		Funcs(template.FuncMap{
			"photo": func(id int64) string {
				if photo == nil {
					return ""
				}
				return photo(id)
			},
			"callingCount": func(id int64) int {
				return counts[id]
			},
		}).
		ParseFS(templates, "templates/report.html.tmpl")
}

// Render writes the report page to w.
func Render(w io.Writer, title string, data Data, photo PhotoFunc) error {
	tmpl, err := parse(photo, data.CallingCounts)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, page{Data: data, Title: title})
}

// CachedPhotos links to the photos of the given size in `photos` relative to
// the directory the report is written to.
func CachedPhotos(outDir string, photos cachedir.PhotoStore, size string) PhotoFunc {
	return func(memberId int64) string {
		exists, err := photos.Exists(memberId, size)
		if err != nil || !exists {
			return ""
		}
		path := photos.Path(memberId, size)
		rel, err := filepath.Rel(outDir, path)
		if err != nil {
			return filepath.ToSlash(path)
		}
		return filepath.ToSlash(rel)
	}
}

// WriteFile renders the report to <outDir>/index.html and returns the path.
func WriteFile(outDir, title string, data Data, photo PhotoFunc) (string, error) {
	var buf bytes.Buffer
	err := Render(&buf, title, data, photo)
	if err != nil {
		return "", err
	}
	path := filepath.Join(outDir, "index.html")
	return path, cachedir.WriteFileAtomic(path, buf.Bytes())
}
