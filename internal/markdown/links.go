package markdown

// LinkKind describes which Markdown construct produced a link.
type LinkKind string

const (
	LinkKindInline              LinkKind = "inline"
	LinkKindImage               LinkKind = "image"
	LinkKindAuto                LinkKind = "auto"
	LinkKindReferenceDefinition LinkKind = "reference_definition"
)

// Link is one destination found in a page body.
type Link struct {
	Kind        LinkKind
	Destination string
	Text        string
}

// Document is the analysis result for a page body.
type Document struct {
	// Title is the text of the first level-1 heading, if any.
	Title string
	Links []Link
}
