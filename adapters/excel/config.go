package excel

// Config describes where the annotated rows live in a spreadsheet
type Config struct {
	FilePath      string `json:"file_path" yaml:"file_path"`
	Sheet         string `json:"sheet" yaml:"sheet"`
	MetadataSheet string `json:"metadata_sheet" yaml:"metadata_sheet"`
	SampleColumn  string `json:"sample_column" yaml:"sample_column"`
	LabelColumn   string `json:"label_column" yaml:"label_column"`
}

// DefaultConfig reads text/label columns from Sheet1 and provenance from a
// "metadata" sheet
func DefaultConfig(path string) Config {
	return Config{
		FilePath:      path,
		Sheet:         "Sheet1",
		MetadataSheet: "metadata",
		SampleColumn:  "text",
		LabelColumn:   "label",
	}
}
