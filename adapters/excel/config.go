package excel

// ReaderConfig holds options for reading draw files
type ReaderConfig struct {
	// Sheet selects the worksheet of an xlsx file. Empty means the first one.
	Sheet string `json:"sheet,omitempty"`
	// Comma overrides the csv delimiter. Zero means detect from the first
	// non-empty line (comma, semicolon or tab).
	Comma rune `json:"comma,omitempty"`
}

// DefaultReaderConfig reads the first sheet and detects csv delimiters
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{}
}
