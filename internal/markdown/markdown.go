// Package markdown analyses page bodies with goldmark. It never renders HTML.
package markdown

import (
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Analyze parses a Markdown body (frontmatter already removed) and collects
// its title and links.
func Analyze(body []byte) *Document {
	md := goldmark.New()
	ctx := parser.NewContext()
	root := md.Parser().Parse(text.NewReader(body), parser.WithContext(ctx))

	doc := &Document{Links: make([]Link, 0)}
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *gmast.Heading:
			if node.Level == 1 && doc.Title == "" {
				doc.Title = strings.TrimSpace(nodeText(node, body))
			}
		case *gmast.AutoLink:
			url := string(node.URL(body))
			doc.Links = append(doc.Links, Link{Kind: LinkKindAuto, Destination: url, Text: url})
		case *gmast.Image:
			doc.Links = append(doc.Links, Link{Kind: LinkKindImage, Destination: string(node.Destination), Text: nodeText(node, body)})
		case *gmast.Link:
			// Reference-style links arrive here already resolved.
			doc.Links = append(doc.Links, Link{Kind: LinkKindInline, Destination: string(node.Destination), Text: nodeText(node, body)})
		}
		return gmast.WalkContinue, nil
	})

	// Definitions live in the parser context, not the AST.
	refs := ctx.References()
	sort.Slice(refs, func(i, j int) bool {
		return string(refs[i].Label()) < string(refs[j].Label())
	})
	for _, ref := range refs {
		doc.Links = append(doc.Links, Link{
			Kind:        LinkKindReferenceDefinition,
			Destination: string(ref.Destination()),
			Text:        string(ref.Label()),
		})
	}
	return doc
}

// ExtractLinks returns the links of a Markdown body.
func ExtractLinks(body []byte) []Link {
	return Analyze(body).Links
}

// Title returns the first level-1 heading of a Markdown body.
func Title(body []byte) string {
	return Analyze(body).Title
}

func nodeText(n gmast.Node, source []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *gmast.Text:
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				sb.WriteByte(' ')
			}
		case *gmast.String:
			sb.Write(t.Value)
		default:
			sb.WriteString(nodeText(c, source))
		}
	}
	return sb.String()
}
