package excel

import (
	"path/filepath"
	"strings"
)

// FileType identifies how a draw file is parsed.
type FileType string

const (
	FileTypeXLSX FileType = "xlsx"
	FileTypeCSV  FileType = "csv"
	FileTypeText FileType = "txt"
)

// DetectFileType maps a file name to its type by extension. Unknown
// extensions return an empty FileType.
func DetectFileType(name string) FileType {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FileTypeXLSX
	case ".csv":
		return FileTypeCSV
	case ".txt", ".tsv", ".dat":
		return FileTypeText
	}
	return ""
}
