package model

import (
	"path"
	"strings"
	"time"
)

type FileType string

const (
	FileTypePDF   FileType = "PDF"
	FileTypeDOCX  FileType = "DOCX"
	FileTypeExcel FileType = "EXCEL"
	FileTypeOther FileType = "OTHER"
	FileTypeLink  FileType = "LINK"
)

// DetectFileType guesses the resource type from a file name and MIME type.
func DetectFileType(name, mimeType string) FileType {
	ext := strings.ToLower(path.Ext(name))
	mt := strings.ToLower(mimeType)
	switch {
	case ext == ".pdf" || strings.Contains(mt, "pdf"):
		return FileTypePDF
	case ext == ".doc" || ext == ".docx" || strings.Contains(mt, "word"):
		return FileTypeDOCX
	case ext == ".xls" || ext == ".xlsx" || ext == ".csv" || strings.Contains(mt, "sheet") || strings.Contains(mt, "excel"):
		return FileTypeExcel
	}
	return FileTypeOther
}

// Resource is a shared library item (file or external link).
type Resource struct {
	ID          string
	Title       string
	Description string
	Category    string
	FileType    FileType
	URL         string
	StorageKey  string
	CreatedBy   string
	CreatedAt   time.Time
}
