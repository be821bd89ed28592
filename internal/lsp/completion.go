package lsp

import (
	"slices"
	"strings"
)

// bsqlKeywords are the reserved words of the query language, in the order
// they are offered.
var bsqlKeywords = []struct {
	word   string
	detail string
}{
	{"select", "start a query"},
	{"as", "alias a table or column"},
	{"where", "filter the rows of a table"},
	{"and", "both predicates hold"},
	{"or", "either predicate holds"},
	{"not", "negate a predicate"},
	{"is", "null comparison"},
	{"null", "null literal"},
}

// getCompletions returns keyword, snippet and word completions for the
// identifier being typed at the given position.
func (s *Server) getCompletions(params CompletionParams) []CompletionItem {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return []CompletionItem{}
	}

	prefix := extractPrefix(doc.GetTextBefore(params.Position))
	lower := strings.ToLower(prefix)

	var items []CompletionItem
	for _, kw := range bsqlKeywords {
		if strings.HasPrefix(kw.word, lower) {
			items = append(items, CompletionItem{
				Label:  kw.word,
				Kind:   CompletionItemKindKeyword,
				Detail: kw.detail,
			})
		}
	}

	if strings.HasPrefix("select", lower) {
		items = append(items, CompletionItem{
			Label:            "select table",
			Kind:             CompletionItemKindSnippet,
			Detail:           "query skeleton",
			InsertText:       "select ${1:table} {\n\t$0\n}",
			InsertTextFormat: InsertTextFormatSnippet,
		})
	}

	for _, word := range documentWords(doc.Content) {
		if word == prefix || !strings.HasPrefix(strings.ToLower(word), lower) {
			continue
		}
		items = append(items, CompletionItem{
			Label: word,
			Kind:  CompletionItemKindField,
		})
	}

	return items
}

// extractPrefix returns the partial word ending at the end of before.
func extractPrefix(before string) string {
	i := len(before)
	for i > 0 && isWordChar(before[i-1]) {
		i--
	}
	return before[i:]
}

// documentWords returns the distinct identifiers used in content, sorted,
// skipping keywords, numbers and placeholders.
func documentWords(content string) []string {
	seen := make(map[string]bool)
	for _, word := range strings.FieldsFunc(content, func(r rune) bool {
		return r > 0x7f || !isWordChar(byte(r))
	}) {
		if isKeyword(word) || !isIdentStart(word[0]) {
			continue
		}
		seen[word] = true
	}

	words := make([]string, 0, len(seen))
	for w := range seen {
		words = append(words, w)
	}
	slices.Sort(words)
	return words
}

func isKeyword(word string) bool {
	lower := strings.ToLower(word)
	for _, kw := range bsqlKeywords {
		if kw.word == lower {
			return true
		}
	}
	return false
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

// getHover shows the SQL the document compiles to, or its syntax error.
func (s *Server) getHover(params HoverParams) *Hover {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil || doc.Result == nil {
		return nil
	}

	var value string
	if doc.Result.OK() {
		value = "```sql\n" + doc.Result.SQL + "\n```"
	} else {
		value = "**syntax error:** " + doc.Result.Err.Message
	}

	hover := &Hover{
		Contents: MarkupContent{Kind: MarkupKindMarkdown, Value: value},
	}
	if word, r := doc.GetWordAtPosition(params.Position); word != "" {
		hover.Range = &r
	}
	return hover
}
