// Package source implements catalog.Source, the data service the catalog
// store loads books from.
//
// Three sources are provided:
//   - HTTPSource: GET a JSON array of books from a URL
//   - FileSource: read a YAML or JSON array of books from disk
//   - StaticSource: a fixed in-memory list
//
// HTTP and file payloads are checked against an embedded CUE schema before
// they are returned; a payload that fails validation is a fetch failure.
package source
