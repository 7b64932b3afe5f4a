package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChapterFind(t *testing.T) {
	outline := &Outline{
		Chapters: []*Chapter{
			{ID: "c1", Title: "One"},
			{ID: "c2", Title: "Two"},
		},
	}

	chapter := outline.ChapterFind("c2")
	require.NotNil(t, chapter)
	assert.Equal(t, "Two", chapter.Title)

	assert.Nil(t, outline.ChapterFind("missing"))
}

func TestSubchapterFind(t *testing.T) {
	chapter := &Chapter{
		ID: "c1",
		Subchapters: []*Subchapter{
			{ID: "s1", Title: "One-One"},
		},
	}

	sub := chapter.SubchapterFind("s1")
	require.NotNil(t, sub)
	assert.Equal(t, "One-One", sub.Title)

	assert.Nil(t, chapter.SubchapterFind("missing"))
}

func TestSelection(t *testing.T) {
	outline := NewOutline()

	_, ok := outline.Selection()
	assert.False(t, ok)

	outline.CurrentChapter = "c1"
	ref, ok := outline.Selection()
	require.True(t, ok)
	assert.Equal(t, NodeRef{ChapterID: "c1"}, ref)

	outline.CurrentSubchapter = "s1"
	ref, ok = outline.Selection()
	require.True(t, ok)
	assert.Equal(t, "s1", ref.SubchapterID)
}

func TestDiagramKindValid(t *testing.T) {
	assert.True(t, DiagramText.Valid())
	assert.True(t, DiagramImage.Valid())
	assert.False(t, DiagramKind("sculpture").Valid())
	assert.False(t, DiagramKind("").Valid())
}

func TestDocumentKindFromMIME(t *testing.T) {
	tests := []struct {
		mime    string
		want    DocumentKind
		wantErr bool
	}{
		{mime: "application/pdf", want: DocumentPDF},
		{mime: "application/vnd.ms-powerpoint", want: DocumentSlides},
		{mime: "application/vnd.openxmlformats-officedocument.presentationml.presentation", want: DocumentSlides},
		{mime: "application/vnd.oasis.opendocument.presentation", want: DocumentSlides},
		{mime: "image/png", wantErr: true},
		{mime: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			kind, err := DocumentKindFromMIME(tt.mime)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestPayloadRefIsZero(t *testing.T) {
	assert.True(t, PayloadRef{}.IsZero())
	assert.False(t, PayloadRef{BlobID: "b1"}.IsZero())
	assert.False(t, PayloadRef{Inline: "data:..."}.IsZero())
}
