package model

import (
	"fmt"
	"time"
)

// DiagramKind discriminates the diagram variants. Consumers must switch
// exhaustively over the known kinds and treat anything else as an error.
type DiagramKind string

const (
	DiagramText  DiagramKind = "text"
	DiagramImage DiagramKind = "image"
)

// Valid reports whether the kind is one of the known variants.
func (k DiagramKind) Valid() bool {
	switch k {
	case DiagramText, DiagramImage:
		return true
	}
	return false
}

// DocumentKind discriminates file-based document variants.
type DocumentKind string

const (
	DocumentPDF    DocumentKind = "pdf"
	DocumentSlides DocumentKind = "slides"
)

// DocumentKindFromMIME maps a MIME type to a document kind.
func DocumentKindFromMIME(mimeType string) (DocumentKind, error) {
	switch mimeType {
	case "application/pdf":
		return DocumentPDF, nil
	case "application/vnd.ms-powerpoint",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"application/vnd.oasis.opendocument.presentation":
		return DocumentSlides, nil
	default:
		return "", fmt.Errorf("unsupported document MIME type: %s", mimeType)
	}
}

// PayloadRef records where an attachment's binary payload lives. At steady
// state exactly one of BlobID and Inline is set: BlobID references the blob
// store, Inline carries the full data URI when the blob tier was unavailable
// or a write failed.
type PayloadRef struct {
	BlobID string `json:"blob_id,omitempty" xml:"blob_id,attr,omitempty"`
	Inline string `json:"inline,omitempty" xml:"inline,omitempty"`
}

// IsZero reports whether the ref points at no payload at all.
func (r PayloadRef) IsZero() bool {
	return r.BlobID == "" && r.Inline == ""
}

// Diagram is an attachment on a chapter or subchapter. Text diagrams carry
// their source inline in Source; image diagrams carry a payload ref.
type Diagram struct {
	ID          string      `json:"id" xml:"id,attr"`
	Title       string      `json:"title" xml:"title"`
	Description string      `json:"description,omitempty" xml:"description,omitempty"`
	Kind        DiagramKind `json:"kind" xml:"kind,attr"`
	Source      string      `json:"source,omitempty" xml:"source,omitempty"`
	Payload     PayloadRef  `json:"payload,omitempty" xml:"payload,omitempty"`
}

// Document is a file attachment (PDF or slide deck) on a chapter or
// subchapter.
type Document struct {
	ID          string       `json:"id" xml:"id,attr"`
	Title       string       `json:"title" xml:"title"`
	Description string       `json:"description,omitempty" xml:"description,omitempty"`
	Kind        DocumentKind `json:"kind" xml:"kind,attr"`
	MIMEType    string       `json:"mime_type" xml:"mime_type,attr"`
	IssueDate   time.Time    `json:"issue_date" xml:"issue_date,attr"`
	Payload     PayloadRef   `json:"payload,omitempty" xml:"payload,omitempty"`
}

// Attachments groups the diagrams and documents of one outline node.
type Attachments struct {
	Diagrams  []*Diagram
	Documents []*Document
}

// DiagramInfo carries user-entered diagram fields into the save protocol.
// An empty ID means a new diagram; a set ID replaces the existing one.
type DiagramInfo struct {
	ID          string
	Title       string
	Description string
	Kind        DiagramKind
	Source      string
	FilePath    string
	Payload     string
}

// DocumentInfo carries user-entered document fields into the save protocol.
type DocumentInfo struct {
	ID          string
	Title       string
	Description string
	MIMEType    string
	IssueDate   time.Time
	FilePath    string
	Payload     string
}
