// Package model defines the data structures used throughout the Chapterforge application.
package model

// Chapter is a top-level outline node. It exclusively owns its subchapters,
// diagrams and documents.
type Chapter struct {
	ID          string        `json:"id" xml:"id,attr"`
	Title       string        `json:"title" xml:"title"`
	Description string        `json:"description,omitempty" xml:"description,omitempty"`
	Expanded    bool          `json:"expanded" xml:"expanded,attr"`
	Subchapters []*Subchapter `json:"subchapters,omitempty" xml:"subchapters>subchapter,omitempty"`
	Diagrams    []*Diagram    `json:"diagrams,omitempty" xml:"diagrams>diagram,omitempty"`
	Documents   []*Document   `json:"documents,omitempty" xml:"documents>document,omitempty"`
}

// Subchapter is a second-level outline node, owned by exactly one chapter.
type Subchapter struct {
	ID          string      `json:"id" xml:"id,attr"`
	Title       string      `json:"title" xml:"title"`
	Description string      `json:"description,omitempty" xml:"description,omitempty"`
	Diagrams    []*Diagram  `json:"diagrams,omitempty" xml:"diagrams>diagram,omitempty"`
	Documents   []*Document `json:"documents,omitempty" xml:"documents>document,omitempty"`
}

// Outline is the persisted root document. The whole tree is serialized as one
// unit after every mutation. An empty CurrentChapter or CurrentSubchapter
// means no selection. CurrentSubchapter is meaningful only while
// CurrentChapter is set and always references a subchapter of it.
type Outline struct {
	Chapters          []*Chapter `json:"chapters" xml:"chapters>chapter"`
	CurrentChapter    string     `json:"current_chapter,omitempty" xml:"current_chapter,attr,omitempty"`
	CurrentSubchapter string     `json:"current_subchapter,omitempty" xml:"current_subchapter,attr,omitempty"`
}

// NodeRef addresses a chapter or one of its subchapters. An empty
// SubchapterID refers to the chapter itself.
type NodeRef struct {
	ChapterID    string
	SubchapterID string
}

// NewOutline returns an empty outline root.
func NewOutline() *Outline {
	return &Outline{Chapters: []*Chapter{}}
}

// ChapterFind returns the chapter with the given ID, or nil.
func (o *Outline) ChapterFind(id string) *Chapter {
	for _, c := range o.Chapters {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// SubchapterFind returns the subchapter with the given ID, or nil.
func (c *Chapter) SubchapterFind(id string) *Subchapter {
	for _, s := range c.Subchapters {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Selection returns the currently selected node as a NodeRef and whether any
// chapter is selected at all.
func (o *Outline) Selection() (NodeRef, bool) {
	if o.CurrentChapter == "" {
		return NodeRef{}, false
	}
	return NodeRef{ChapterID: o.CurrentChapter, SubchapterID: o.CurrentSubchapter}, true
}
