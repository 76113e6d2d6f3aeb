package rag

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// replyParser uses GFM so bare URLs are linkified and found by the walk.
var replyParser = goldmark.New(goldmark.WithExtensions(extension.GFM)).Parser()

var (
	inlineSpaces  = regexp.MustCompile(`[ \t]{2,}`)
	trailingSpace = regexp.MustCompile(`[ \t]+\n`)
)

// SanitizeReply drops links from generated text; links travel as pills.
// Inline links keep their text, URLs and autolinks disappear, email
// addresses stay. Paragraph breaks survive, runs of spaces do not.
func SanitizeReply(reply string) string {
	out := stripLinks([]byte(reply))
	out = inlineSpaces.ReplaceAllString(out, " ")
	out = trailingSpace.ReplaceAllString(out, "\n")
	return strings.TrimSpace(out)
}

type splice struct {
	start, stop int
	repl        string
}

// stripLinks rewrites the source in place of each link node. Nodes are
// visited in document order and cursor never moves backwards, so splices
// are sorted and disjoint.
func stripLinks(src []byte) string {
	doc := replyParser.Parse(text.NewReader(src))
	var edits []splice
	cursor := 0
	advance := func(pos int) {
		if pos > cursor {
			cursor = pos
		}
	}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			advance(node.Segment.Stop)
		case *ast.Link, *ast.Image:
			if e, ok := linkSplice(src, node, cursor); ok {
				edits = append(edits, e)
				advance(e.stop)
			}
			return ast.WalkSkipChildren, nil
		case *ast.AutoLink:
			if node.AutoLinkType == ast.AutoLinkEmail {
				return ast.WalkContinue, nil
			}
			if e, ok := autoLinkSplice(src, node.Label(src), cursor); ok {
				edits = append(edits, e)
				advance(e.stop)
			}
		default:
			if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
				lines := n.Lines()
				if n.HasChildren() {
					advance(lines.At(0).Start)
				} else {
					// code and html blocks have no inline children to walk
					advance(lines.At(lines.Len() - 1).Stop)
				}
			}
		}
		return ast.WalkContinue, nil
	})

	var sb strings.Builder
	prev := 0
	for _, e := range edits {
		if e.start < prev {
			continue
		}
		sb.Write(src[prev:e.start])
		sb.WriteString(e.repl)
		prev = e.stop
	}
	sb.Write(src[prev:])
	return sb.String()
}

// linkSplice locates "[label](dest)" (or "![alt](dest)") around the node's
// text and replaces it with the raw label; images vanish.
func linkSplice(src []byte, n ast.Node, cursor int) (splice, bool) {
	open := -1
	if t := firstText(n); t != nil {
		open = bytes.LastIndexByte(src[:t.Segment.Start], '[')
	} else if i := bytes.Index(src[cursor:], []byte("[]")); i >= 0 {
		open = cursor + i
	}
	if open < cursor {
		return splice{}, false
	}
	end := matchClosing(src, open, '[', ']')
	if end < 0 {
		return splice{}, false
	}
	label := string(src[open+1 : end])
	stop := end + 1
	if stop < len(src) {
		switch src[stop] {
		case '(':
			if e := matchClosing(src, stop, '(', ')'); e >= 0 {
				stop = e + 1
			}
		case '[':
			if e := matchClosing(src, stop, '[', ']'); e >= 0 {
				stop = e + 1
			}
		}
	}
	start := open
	if _, ok := n.(*ast.Image); ok {
		if open > 0 && src[open-1] == '!' {
			start = open - 1
		}
		label = ""
	}
	return splice{start: start, stop: stop, repl: label}, true
}

func autoLinkSplice(src, label []byte, cursor int) (splice, bool) {
	i := bytes.Index(src[cursor:], label)
	if len(label) == 0 || i < 0 {
		return splice{}, false
	}
	start := cursor + i
	stop := start + len(label)
	if start > 0 && src[start-1] == '<' && stop < len(src) && src[stop] == '>' {
		start--
		stop++
	}
	return splice{start: start, stop: stop}, true
}

// matchClosing returns the index of the delimiter closing src[from], honoring
// nesting, backslash escapes, <...> destinations and quoted titles.
func matchClosing(src []byte, from int, open, closing byte) int {
	depth := 0
	var quote byte
	for i := from; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '\\':
			i++
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case open == '(' && (c == '"' || c == '\'') && depth == 1 && i > from && src[i-1] == ' ':
			quote = c
		case open == '(' && c == '<' && i == from+1:
			if j := bytes.IndexByte(src[i:], '>'); j >= 0 {
				i += j
			}
		case c == open:
			depth++
		case c == closing:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func firstText(n ast.Node) *ast.Text {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			return t
		}
		if t := firstText(c); t != nil {
			return t
		}
	}
	return nil
}
