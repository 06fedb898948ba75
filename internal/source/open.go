package source

import (
	"net/http"
	"net/url"

	"github.com/roach88/bookshelf/internal/catalog"
)

// Open returns the source for location:
//   - "" serves an empty catalog
//   - http:// and https:// URLs use HTTPSource
//   - anything else is treated as a file path
func Open(location string, client *http.Client) catalog.Source {
	if location == "" {
		return NewStaticSource(nil)
	}
	if u, err := url.Parse(location); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return NewHTTPSource(location, client)
	}
	return NewFileSource(location)
}
