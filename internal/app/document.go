package app

import (
	"path/filepath"
	"sort"
	"sync"

	"github.com/dshills/plaintasks/internal/buffer"
	"github.com/dshills/plaintasks/internal/fsys"
	"github.com/dshills/plaintasks/internal/outline"
	"github.com/dshills/plaintasks/internal/region"
	"github.com/dshills/plaintasks/internal/scope"
)

// Document is an open task file.
type Document struct {
	// Path is the absolute file path.
	Path string

	// Name is the display name.
	Name string

	// Outline is the parsed view of the text.
	Outline *outline.Document

	saved buffer.RevisionID
}

// NewDocument creates a document from file content.
func NewDocument(path string, content []byte, g scope.Grammar) *Document {
	buf := buffer.New(string(content))
	return &Document{
		Path:    path,
		Name:    filepath.Base(path),
		Outline: outline.New(buf, g),
		saved:   buf.Revision(),
	}
}

// Buffer returns the document text.
func (d *Document) Buffer() *buffer.Buffer {
	return d.Outline.Buffer()
}

// IsModified returns true if the document has unsaved changes.
func (d *Document) IsModified() bool {
	return d.Buffer().Revision() != d.saved
}

// Save writes the document to fs when it has unsaved changes.
func (d *Document) Save(fs fsys.FS) (bool, error) {
	if !d.IsModified() {
		return false, nil
	}
	if err := fs.WriteFile(d.Path, []byte(d.Buffer().Save()), 0o644); err != nil {
		return false, err
	}
	d.saved = d.Buffer().Revision()
	return true, nil
}

// Lines returns the regions of the 1-based line numbers, newline excluded.
func (d *Document) Lines(numbers ...int) ([]region.Region, error) {
	buf := d.Buffer()
	lines := buf.Lines(region.New(0, buf.Size()))
	out := make([]region.Region, 0, len(numbers))
	for _, n := range numbers {
		if n < 1 || n > len(lines) {
			return nil, NewOperationError("line", d.Path, ErrLineOutOfRange)
		}
		out = append(out, lines[n-1])
	}
	return out, nil
}

// DocumentManager tracks the open documents.
type DocumentManager struct {
	mu        sync.RWMutex
	fs        fsys.FS
	documents map[string]*Document // path -> document
}

// NewDocumentManager creates a new document manager reading from fs.
func NewDocumentManager(fs fsys.FS) *DocumentManager {
	return &DocumentManager{
		fs:        fs,
		documents: make(map[string]*Document),
	}
}

// Open opens a document from a file.
// Returns existing document if already open.
func (dm *DocumentManager) Open(path string, g scope.Grammar) (*Document, error) {
	absPath, err := dm.fs.Abs(path)
	if err != nil {
		return nil, err
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()

	if doc, exists := dm.documents[absPath]; exists {
		return doc, nil
	}

	content, err := dm.fs.ReadFile(absPath)
	if err != nil {
		return nil, err
	}

	doc := NewDocument(absPath, content, g)
	dm.documents[absPath] = doc
	return doc, nil
}

// Reload reads the file at path again and replaces the open document.
func (dm *DocumentManager) Reload(path string, g scope.Grammar) (*Document, error) {
	absPath, err := dm.fs.Abs(path)
	if err != nil {
		return nil, err
	}
	content, err := dm.fs.ReadFile(absPath)
	if err != nil {
		return nil, err
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()
	doc := NewDocument(absPath, content, g)
	dm.documents[absPath] = doc
	return doc, nil
}

// Get returns an open document.
func (dm *DocumentManager) Get(path string) (*Document, bool) {
	absPath, err := dm.fs.Abs(path)
	if err != nil {
		return nil, false
	}
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	doc, ok := dm.documents[absPath]
	return doc, ok
}

// All returns the open documents sorted by path.
func (dm *DocumentManager) All() []*Document {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	docs := make([]*Document, 0, len(dm.documents))
	for _, d := range dm.documents {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs
}

// DirtyDocuments returns the documents with unsaved changes.
func (dm *DocumentManager) DirtyDocuments() []*Document {
	var out []*Document
	for _, d := range dm.All() {
		if d.IsModified() {
			out = append(out, d)
		}
	}
	return out
}
