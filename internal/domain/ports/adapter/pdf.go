package adapter

import (
	"io"
	"time"
)

type ReportDocument struct {
	Name      string
	Category  string
	Version   int
	Status    string
	CreatedAt time.Time
}

// MemoireReport is everything the export needs, already resolved.
type MemoireReport struct {
	Title       string
	Description string
	StudentName string
	CoachName   string
	Status      string
	Progress    int
	CurrentStep string
	DueDate     *time.Time
	Documents   []ReportDocument
	GeneratedAt time.Time
}

// ContentDocument is a thesis text ready to typeset. Body is plain text
// with paragraphs separated by a blank line.
type ContentDocument struct {
	Title       string
	Author      string
	Institution string
	Body        string
	GeneratedAt time.Time
}

type PDFRenderer interface {
	RenderMemoire(w io.Writer, r *MemoireReport) error
	// RenderContent writes a cover page followed by the justified body.
	RenderContent(w io.Writer, d *ContentDocument) error
}
