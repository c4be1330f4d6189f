package model

import (
	"strings"
	"time"

	"cledumemoire/internal/domain"
)

type DocumentStatus string

const (
	DocumentStatusPending       DocumentStatus = "PENDING"
	DocumentStatusApproved      DocumentStatus = "APPROVED"
	DocumentStatusRejected      DocumentStatus = "REJECTED"
	DocumentStatusNeedsRevision DocumentStatus = "NEEDS_REVISION"
)

const DefaultDocumentCategory = "GENERAL"

func ParseDocumentStatus(s string) (DocumentStatus, error) {
	switch st := DocumentStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case DocumentStatusPending, DocumentStatusApproved, DocumentStatusRejected, DocumentStatusNeedsRevision:
		return st, nil
	}
	return "", domain.ErrInvalidArgument
}

// Document is one uploaded version of a file attached to a memoire.
type Document struct {
	ID         string
	MemoireID  string
	UploaderID string
	Name       string
	URL        string
	StorageKey string
	MimeType   string
	Size       int64
	Category   string
	Version    int
	Status     DocumentStatus
	Feedback   string
	CreatedAt  time.Time
}

// NormalizeCategory upper-cases a category and falls back to GENERAL.
func NormalizeCategory(c string) string {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return DefaultDocumentCategory
	}
	return c
}
