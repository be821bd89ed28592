// Package resources serves the playground page and its static assets.
package resources

import "net/http"

// StaticDirectoryPath is the path to static assets from the project root.
const StaticDirectoryPath = "internal/ui/resources/static"

// IndexFile is the playground page inside the static directory.
const IndexFile = "index.html"

// StaticPath returns the URL path for a static asset.
func StaticPath(path string) string {
	return "/static/" + path
}

// IndexHandler serves the playground page.
func IndexHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := readFile(IndexFile)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(data)
	})
}
