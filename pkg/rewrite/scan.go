// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rewrite

import (
	"html"
	"regexp"
	"sort"
	"strings"
)

// Common anchors. All are case-insensitive and bounded.
var (
	HeadOpen   = regexp.MustCompile(`(?i)<head(?:\s[^>]*)?>`)
	HeadClose  = regexp.MustCompile(`(?i)</head\s*>`)
	BodyOpen   = regexp.MustCompile(`(?i)<body(?:\s[^>]*)?>`)
	BodyClose  = regexp.MustCompile(`(?i)</body\s*>`)
	TitleClose = regexp.MustCompile(`(?i)</title\s*>`)
	MainOpen   = regexp.MustCompile(`(?i)<main(?:\s[^>]*)?>`)
	MainClose  = regexp.MustCompile(`(?i)</main\s*>`)
	FooterOpen = regexp.MustCompile(`(?i)<footer[\s>]`)
)

// 📏 Span is a half-open byte range of a document
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered.
func (s Span) Len() int { return s.End - s.Start }

// Text returns the covered text.
func (s Span) Text(doc string) string { return doc[s.Start:s.End] }

// Contains reports whether o lies entirely within s.
func (s Span) Contains(o Span) bool { return s.Start <= o.Start && o.End <= s.End }

// 🏷️ Tag is a single start or end tag
type Tag struct {
	Name        string // lower case
	Closing     bool
	SelfClosing bool
	Span        Span
	Raw         string
}

// 🧱 Element is a balanced start/end tag pair
type Element struct {
	Open  Tag
	Span  Span // start of the open tag through the end of the close tag
	Inner Span // between the tags
}

type tokenKind int

const (
	tokenTag tokenKind = iota
	tokenComment
	tokenDirective
)

type token struct {
	kind tokenKind
	span Span
	tag  Tag
}

// tokenize splits doc into tags, comments and directives. The bodies of
// script and style elements are raw text and produce no tokens.
func tokenize(doc string) []token {
	var toks []token
	i := 0
	for i < len(doc) {
		lt := strings.IndexByte(doc[i:], '<')
		if lt < 0 {
			break
		}
		start := i + lt
		rest := doc[start:]

		switch {
		case strings.HasPrefix(rest, "<!--"):
			stop := len(doc)
			if end := strings.Index(rest[4:], "-->"); end >= 0 {
				stop = start + 4 + end + 3
			}
			toks = append(toks, token{kind: tokenComment, span: Span{start, stop}})
			i = stop
		case strings.HasPrefix(rest, "<!") || strings.HasPrefix(rest, "<?"):
			stop := len(doc)
			if end := strings.IndexByte(rest, '>'); end >= 0 {
				stop = start + end + 1
			}
			toks = append(toks, token{kind: tokenDirective, span: Span{start, stop}})
			i = stop
		default:
			tag, ok := parseTag(doc, start)
			if !ok {
				i = start + 1
				continue
			}
			toks = append(toks, token{kind: tokenTag, span: tag.Span, tag: tag})
			i = tag.Span.End
			if !tag.Closing && !tag.SelfClosing && (tag.Name == "script" || tag.Name == "style") {
				if closeIdx := IndexFold(doc, "</"+tag.Name, i); closeIdx >= 0 {
					i = closeIdx
				} else {
					i = len(doc)
				}
			}
		}
	}
	return toks
}

func parseTag(doc string, start int) (Tag, bool) {
	j := start + 1
	closing := false
	if j < len(doc) && doc[j] == '/' {
		closing = true
		j++
	}
	nameStart := j
	for j < len(doc) && isNameByte(doc[j]) {
		j++
	}
	if j == nameStart || !isLetter(doc[nameStart]) {
		return Tag{}, false
	}
	end := tagEnd(doc, j)
	if end < 0 {
		return Tag{}, false
	}
	raw := doc[start : end+1]
	self := !closing && strings.HasSuffix(strings.TrimRight(raw[:len(raw)-1], " \t\r\n"), "/")
	return Tag{
		Name:        asciiLower(doc[nameStart:j]),
		Closing:     closing,
		SelfClosing: self,
		Span:        Span{start, end + 1},
		Raw:         raw,
	}, true
}

// tagEnd returns the index of the '>' closing a tag, skipping quoted attribute values.
func tagEnd(doc string, from int) int {
	var quote byte
	afterEq := false
	for k := from; k < len(doc); k++ {
		c := doc[k]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '>':
			return k
		case '=':
			afterEq = true
			continue
		case '"', '\'':
			if afterEq {
				quote = c
			}
		case ' ', '\t', '\n', '\r':
			continue
		}
		afterEq = false
	}
	return -1
}

// 🔍 Tags returns every start and end tag in doc in document order.
// Comments, directives and script/style bodies are skipped.
func Tags(doc string) []Tag {
	var tags []Tag
	for _, tok := range tokenize(doc) {
		if tok.kind == tokenTag {
			tags = append(tags, tok.tag)
		}
	}
	return tags
}

// FirstTag returns the first start (or end, when closing is set) tag named name.
func FirstTag(doc, name string, closing bool) (Tag, bool) {
	name = asciiLower(name)
	for _, tok := range tokenize(doc) {
		if tok.kind == tokenTag && tok.tag.Name == name && tok.tag.Closing == closing {
			return tok.tag, true
		}
	}
	return Tag{}, false
}

// Comments returns the spans of every html comment in doc.
func Comments(doc string) []Span {
	var spans []Span
	for _, tok := range tokenize(doc) {
		if tok.kind == tokenComment {
			spans = append(spans, tok.span)
		}
	}
	return spans
}

// 🧱 FindElements returns every element named name whose start tag satisfies match
// (nil matches all), in document order. Nesting is resolved by counting depth,
// so an outer match contains the spans of inner ones. Unclosed elements are dropped.
func FindElements(doc, name string, match func(Tag) bool) []Element {
	name = asciiLower(name)
	var stack []Tag
	var out []Element
	for _, tok := range tokenize(doc) {
		if tok.kind != tokenTag || tok.tag.Name != name {
			continue
		}
		tag := tok.tag
		switch {
		case tag.SelfClosing:
			continue
		case !tag.Closing:
			stack = append(stack, tag)
		case len(stack) > 0:
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if match == nil || match(open) {
				out = append(out, Element{
					Open:  open,
					Span:  Span{open.Span.Start, tag.Span.End},
					Inner: Span{open.Span.End, tag.Span.Start},
				})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Span.Start < out[j].Span.Start })
	return out
}

// StyleBlocks returns every <style> element.
func StyleBlocks(doc string) []Element {
	return FindElements(doc, "style", nil)
}

// ScriptBlocks returns every <script> element.
func ScriptBlocks(doc string) []Element {
	return FindElements(doc, "script", nil)
}

// DefaultTextSkip lists elements whose text is never rewritten by text level rules.
var DefaultTextSkip = []string{
	"a", "script", "style", "head", "title", "button", "textarea", "code", "pre", "svg",
	"nav", "header", "footer", "h1", "h2", "h3", "h4", "h5", "h6",
}

// 📝 TextSpans returns the runs of text that sit outside tags, comments and the
// elements named in skip (DefaultTextSkip when skip is empty).
func TextSpans(doc string, skip ...string) []Span {
	if len(skip) == 0 {
		skip = DefaultTextSkip
	}
	skipSet := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipSet[asciiLower(s)] = true
	}

	var spans []Span
	depth := 0
	prev := 0
	for _, tok := range tokenize(doc) {
		if depth == 0 && tok.span.Start > prev {
			spans = append(spans, Span{prev, tok.span.Start})
		}
		prev = tok.span.End
		if tok.kind != tokenTag || !skipSet[tok.tag.Name] || tok.tag.SelfClosing {
			continue
		}
		if tok.tag.Closing {
			if depth > 0 {
				depth--
			}
		} else {
			depth++
		}
	}
	if depth == 0 && prev < len(doc) {
		spans = append(spans, Span{prev, len(doc)})
	}
	return spans
}

// ⚙️ Attribute is one attribute of a raw tag. Spans are relative to the raw tag.
type Attribute struct {
	Name      string // lower case
	Value     string // raw, still escaped
	HasValue  bool
	Span      Span
	ValueSpan Span
}

// Attrs parses the attributes of a raw tag.
func Attrs(raw string) []Attribute {
	var attrs []Attribute
	i := 1
	if i < len(raw) && raw[i] == '/' {
		i++
	}
	for i < len(raw) && isNameByte(raw[i]) {
		i++
	}
	for i < len(raw) {
		c := raw[i]
		if isSpace(c) || c == '/' {
			i++
			continue
		}
		if c == '>' {
			break
		}

		start := i
		for i < len(raw) && !isSpace(raw[i]) && raw[i] != '=' && raw[i] != '>' &&
			!(raw[i] == '/' && i+1 < len(raw) && raw[i+1] == '>') {
			i++
		}
		if i == start {
			i++
			continue
		}
		a := Attribute{Name: asciiLower(raw[start:i])}

		k := i
		for k < len(raw) && isSpace(raw[k]) {
			k++
		}
		if k < len(raw) && raw[k] == '=' {
			k++
			for k < len(raw) && isSpace(raw[k]) {
				k++
			}
			if k < len(raw) && (raw[k] == '"' || raw[k] == '\'') {
				q := raw[k]
				vs := k + 1
				if ve := strings.IndexByte(raw[vs:], q); ve >= 0 {
					a.ValueSpan = Span{vs, vs + ve}
					i = vs + ve + 1
				} else {
					a.ValueSpan = Span{vs, len(raw) - 1}
					i = len(raw) - 1
				}
			} else {
				vs := k
				for k < len(raw) && !isSpace(raw[k]) && raw[k] != '>' {
					k++
				}
				a.ValueSpan = Span{vs, k}
				i = k
			}
			a.HasValue = true
			a.Value = a.ValueSpan.Text(raw)
		}
		a.Span = Span{start, i}
		attrs = append(attrs, a)
	}
	return attrs
}

// Attr returns the unescaped value of the named attribute.
func Attr(raw, name string) (string, bool) {
	name = asciiLower(name)
	for _, a := range Attrs(raw) {
		if a.Name == name {
			return html.UnescapeString(a.Value), true
		}
	}
	return "", false
}

// HasClassOrID reports whether the tag's id or any of its classes contains one of words
// (case-insensitive).
func HasClassOrID(raw string, words ...string) bool {
	for _, name := range []string{"id", "class"} {
		v, ok := Attr(raw, name)
		if !ok {
			continue
		}
		v = asciiLower(v)
		for _, w := range words {
			if strings.Contains(v, asciiLower(w)) {
				return true
			}
		}
	}
	return false
}

// SetAttr sets name to value on a raw tag, replacing an existing value or
// appending the attribute before the tag end.
func SetAttr(raw, name, value string) string {
	lname := asciiLower(name)
	quoted := `="` + html.EscapeString(value) + `"`
	for _, a := range Attrs(raw) {
		if a.Name == lname {
			rawName := raw[a.Span.Start : a.Span.Start+len(lname)]
			return raw[:a.Span.Start] + rawName + quoted + raw[a.Span.End:]
		}
	}
	pos := len(raw) - 1
	if pos > 0 && raw[pos-1] == '/' {
		pos--
	}
	for pos > 0 && isSpace(raw[pos-1]) {
		pos--
	}
	return raw[:pos] + " " + name + quoted + raw[pos:]
}

// RemoveAttr drops the named attribute and the whitespace before it.
func RemoveAttr(raw, name string) string {
	lname := asciiLower(name)
	for _, a := range Attrs(raw) {
		if a.Name == lname {
			start := a.Span.Start
			for start > 0 && isSpace(raw[start-1]) {
				start--
			}
			return raw[:start] + raw[a.Span.End:]
		}
	}
	return raw
}

// 🧮 FindBraceBlock returns the span of the brace block opened at or after from,
// including both braces. Strings, template literals and comments are skipped.
// Regex literals are not recognized.
func FindBraceBlock(src string, from int) (Span, bool) {
	open := strings.IndexByte(src[from:], '{')
	if open < 0 {
		return Span{}, false
	}
	open += from
	end, ok := matchBrace(src, open, true)
	if !ok {
		return Span{}, false
	}
	return Span{open, end + 1}, true
}

// MatchParen returns the index just past the parenthesis group opened at open.
func MatchParen(src string, open int) (int, bool) {
	if open >= len(src) || src[open] != '(' {
		return 0, false
	}
	depth := 0
	for k := open; k < len(src); k++ {
		switch src[k] {
		case '"', '\'', '`':
			k = skipString(src, k)
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return k + 1, true
			}
		}
	}
	return 0, false
}

// StatementEnd returns the index just past the javascript statement starting at
// from: the first ';' at nesting depth zero, or the line break ending a
// statement without one. A brace closing the enclosing block also ends it.
func StatementEnd(src string, from int) int {
	depth := 0
	for k := from; k < len(src); k++ {
		c := src[k]
		switch {
		case c == '"' || c == '\'' || c == '`':
			k = skipString(src, k)
		case c == '/' && k+1 < len(src) && src[k+1] == '*':
			end := strings.Index(src[k+2:], "*/")
			if end < 0 {
				return len(src)
			}
			k = k + 2 + end + 1
		case c == '/' && k+1 < len(src) && src[k+1] == '/':
			end := strings.IndexByte(src[k:], '\n')
			if end < 0 {
				return len(src)
			}
			k += end - 1
		case c == '(' || c == '{' || c == '[':
			depth++
		case c == ')' || c == '}' || c == ']':
			depth--
			if depth < 0 {
				return k
			}
		case c == ';' && depth == 0:
			return k + 1
		case c == '\n' && depth == 0 && strings.TrimSpace(src[from:k]) != "":
			return k
		}
	}
	return len(src)
}

// matchBrace returns the index of the brace closing the one at open.
// js enables // line comments and backtick strings.
func matchBrace(src string, open int, js bool) (int, bool) {
	depth := 0
	for k := open; k < len(src); k++ {
		c := src[k]
		switch {
		case c == '"' || c == '\'' || (js && c == '`'):
			k = skipString(src, k)
		case c == '/' && k+1 < len(src) && src[k+1] == '*':
			end := strings.Index(src[k+2:], "*/")
			if end < 0 {
				return 0, false
			}
			k = k + 2 + end + 1
		case js && c == '/' && k+1 < len(src) && src[k+1] == '/':
			end := strings.IndexByte(src[k:], '\n')
			if end < 0 {
				return 0, false
			}
			k += end
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return k, true
			}
		}
	}
	return 0, false
}

// skipString returns the index of the quote closing the string opened at k.
func skipString(src string, k int) int {
	q := src[k]
	for j := k + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case q:
			return j
		case '\n':
			if q != '`' {
				return j
			}
		}
	}
	return len(src) - 1
}

// 🎨 CSSRule is one rule of a stylesheet
type CSSRule struct {
	Prelude string // selector list or at-rule prelude, trimmed
	Span    Span   // prelude start through the closing brace
	Body    Span   // between the braces
}

// CSSRules returns the top level rules found inside within. Nested blocks such as
// @media are returned whole; call CSSRules again on their Body to descend.
func CSSRules(doc string, within Span) []CSSRule {
	var rules []CSSRule
	src := doc[:within.End]
	i := within.Start
	for i < within.End {
		c := src[i]
		if isSpace(c) {
			i++
			continue
		}
		if strings.HasPrefix(src[i:], "/*") {
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return rules
			}
			i = i + 2 + end + 2
			continue
		}

		start := i
		j := i
		for j < within.End && src[j] != '{' && src[j] != ';' && src[j] != '}' {
			if src[j] == '"' || src[j] == '\'' {
				j = skipString(src, j)
			}
			j++
		}
		if j >= within.End {
			return rules
		}
		if src[j] != '{' {
			i = j + 1
			continue
		}
		end, ok := matchBrace(src, j, false)
		if !ok {
			return rules
		}
		rules = append(rules, CSSRule{
			Prelude: strings.TrimSpace(src[start:j]),
			Span:    Span{start, end + 1},
			Body:    Span{j + 1, end},
		})
		i = end + 1
	}
	return rules
}

// Selectors splits a rule prelude on commas and normalizes whitespace.
func (r CSSRule) Selectors() []string {
	parts := strings.Split(r.Prelude, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ✂️ InsertAfterFirst inserts snippet right after the first match of anchor.
func InsertAfterFirst(doc string, anchor *regexp.Regexp, snippet string) (string, bool) {
	loc := anchor.FindStringIndex(doc)
	if loc == nil {
		return doc, false
	}
	return doc[:loc[1]] + snippet + doc[loc[1]:], true
}

// InsertBeforeFirst inserts snippet right before the first match of anchor.
func InsertBeforeFirst(doc string, anchor *regexp.Regexp, snippet string) (string, bool) {
	loc := anchor.FindStringIndex(doc)
	if loc == nil {
		return doc, false
	}
	return doc[:loc[0]] + snippet + doc[loc[0]:], true
}

// Replace substitutes each span with the matching entry of repl. Spans must not overlap.
func Replace(doc string, spans []Span, repl []string) string {
	type edit struct {
		span Span
		text string
	}
	edits := make([]edit, len(spans))
	for i := range spans {
		edits[i] = edit{spans[i], repl[i]}
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].span.Start < edits[j].span.Start })

	var b strings.Builder
	b.Grow(len(doc))
	prev := 0
	for _, e := range edits {
		if e.span.Start < prev {
			continue
		}
		b.WriteString(doc[prev:e.span.Start])
		b.WriteString(e.text)
		prev = e.span.End
	}
	b.WriteString(doc[prev:])
	return b.String()
}

// 🗑️ RemoveSpans deletes every span from doc. Overlapping and nested spans are merged.
func RemoveSpans(doc string, spans []Span) string {
	if len(spans) == 0 {
		return doc
	}
	sorted := append([]Span(nil), spans...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var b strings.Builder
	b.Grow(len(doc))
	prev := 0
	for _, s := range sorted {
		if s.End <= prev {
			continue
		}
		if s.Start > prev {
			b.WriteString(doc[prev:s.Start])
		}
		prev = s.End
	}
	b.WriteString(doc[prev:])
	return b.String()
}

// WholeLines widens s to the full lines it occupies, including the line break,
// when nothing but whitespace shares those lines. Otherwise s is returned unchanged.
func WholeLines(doc string, s Span) Span {
	start := s.Start
	for start > 0 && (doc[start-1] == ' ' || doc[start-1] == '\t') {
		start--
	}
	end := s.End
	for end < len(doc) && (doc[end] == ' ' || doc[end] == '\t') {
		end++
	}
	if start > 0 && doc[start-1] != '\n' {
		return s
	}
	if end < len(doc) && doc[end] != '\n' && doc[end] != '\r' {
		return s
	}
	if end < len(doc) && doc[end] == '\r' {
		end++
	}
	if end < len(doc) && doc[end] == '\n' {
		end++
	}
	return Span{start, end}
}

// IndexFold returns the index of the first ASCII case-insensitive occurrence of
// substr in s at or after from, or -1.
func IndexFold(s, substr string, from int) int {
	if from > len(s) {
		return -1
	}
	idx := strings.Index(asciiLower(s[from:]), asciiLower(substr))
	if idx < 0 {
		return -1
	}
	return from + idx
}

// ContainsFold reports whether substr occurs in s ignoring ASCII case.
func ContainsFold(s, substr string) bool {
	return IndexFold(s, substr, 0) >= 0
}

// asciiLower lower-cases ASCII letters only, so byte offsets are preserved.
func asciiLower(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'A' && c <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if b[j] >= 'A' && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameByte(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == ':' || c == '_'
}
