package lsp

import (
	"slices"
	"strings"
	"sync"

	"github.com/leapstack-labs/bettersql/pkg/compiler"
)

// Document represents an open query document in the editor.
// Documents are replaced, never mutated, so a *Document obtained from the
// store may be read without holding the store lock.
type Document struct {
	URI     string           // Document URI (file:///path/to/query.bsql)
	Content string           // Full document content
	Version int              // Version number, incremented on each change
	Lines   []int            // Byte offsets of line starts for fast position lookups
	Result  *compiler.Result // Compilation of Content
}

// DocumentStore manages open documents in memory and keeps each one
// compiled against its latest content.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*Document
	compiler  *compiler.Compiler
}

// NewDocumentStore creates a new document store. A nil compiler compiles
// without logging.
func NewDocumentStore(c *compiler.Compiler) *DocumentStore {
	if c == nil {
		c = compiler.New(nil)
	}
	return &DocumentStore{
		documents: make(map[string]*Document),
		compiler:  c,
	}
}

func (s *DocumentStore) newDocument(uri, content string, version int) *Document {
	return &Document{
		URI:     uri,
		Content: content,
		Version: version,
		Lines:   computeLineOffsets(content),
		Result:  s.compiler.Compile(uri, content),
	}
}

// Open adds or replaces a document in the store and returns it.
func (s *DocumentStore) Open(uri string, content string, version int) *Document {
	doc := s.newDocument(uri, content, version)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[uri] = doc
	return doc
}

// Close removes a document from the store.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.documents, uri)
}

// Get retrieves a document by URI.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.documents[uri]
}

// Update replaces an open document's content. It returns nil when the
// document is not open.
func (s *DocumentStore) Update(uri string, content string, version int) *Document {
	if s.Get(uri) == nil {
		return nil
	}
	doc := s.newDocument(uri, content, version)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[uri]; !ok {
		return nil
	}
	s.documents[uri] = doc
	return doc
}

// List returns all open document URIs, sorted.
func (s *DocumentStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uris := make([]string, 0, len(s.documents))
	for uri := range s.documents {
		uris = append(uris, uri)
	}
	slices.Sort(uris)
	return uris
}

// computeLineOffsets calculates byte offsets for each line start.
func computeLineOffsets(content string) []int {
	offsets := []int{0}

	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}

	return offsets
}

// PositionToOffset converts a Position to a byte offset in the document.
func (d *Document) PositionToOffset(pos Position) int {
	if d == nil || len(d.Lines) == 0 {
		return 0
	}

	line := int(pos.Line)
	if line >= len(d.Lines) {
		return len(d.Content)
	}

	offset := d.Lines[line] + int(pos.Character)
	if offset > len(d.Content) {
		return len(d.Content)
	}

	return offset
}

// OffsetToPosition converts a byte offset to a Position.
func (d *Document) OffsetToPosition(offset int) Position {
	if d == nil || len(d.Lines) == 0 {
		return Position{}
	}

	offset = max(0, min(offset, len(d.Content)))

	line, found := slices.BinarySearch(d.Lines, offset)
	if !found {
		line--
	}

	return Position{
		Line:      uint32(line),
		Character: uint32(offset - d.Lines[line]),
	}
}

// GetTextBefore returns the text before the given position.
func (d *Document) GetTextBefore(pos Position) string {
	offset := d.PositionToOffset(pos)
	if offset <= 0 {
		return ""
	}
	return d.Content[:offset]
}

// GetLine returns the content of a specific line.
func (d *Document) GetLine(line int) string {
	if d == nil || line < 0 || line >= len(d.Lines) {
		return ""
	}

	start := d.Lines[line]
	end := len(d.Content)

	if line+1 < len(d.Lines) {
		end = d.Lines[line+1] - 1
		if end < start {
			end = start
		}
	}

	return strings.TrimSuffix(d.Content[start:end], "\r")
}

// GetWordAtPosition returns the word at the given position and its range.
func (d *Document) GetWordAtPosition(pos Position) (string, Range) {
	offset := d.PositionToOffset(pos)

	start := offset
	for start > 0 && isWordChar(d.Content[start-1]) {
		start--
	}

	end := offset
	for end < len(d.Content) && isWordChar(d.Content[end]) {
		end++
	}

	if start == end {
		return "", Range{Start: pos, End: pos}
	}

	return d.Content[start:end], Range{
		Start: d.OffsetToPosition(start),
		End:   d.OffsetToPosition(end),
	}
}

// isWordChar reports whether c may appear in a bsql word: identifiers,
// literals and the :name, @name, $name and ? placeholders.
func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '_' || c == ':' || c == '@' || c == '$' || c == '?'
}

// URIToPath converts a file:// URI to a file system path.
func URIToPath(uri string) string {
	const prefix = "file://"
	if strings.HasPrefix(uri, prefix) {
		return uri[len(prefix):]
	}
	return uri
}

// PathToURI converts a file system path to a file:// URI.
func PathToURI(path string) string {
	if strings.HasPrefix(path, "file://") {
		return path
	}
	return "file://" + path
}
