package models

// StoredFile is a file reference kept on assessments and submissions. Files carrying a
// Path are private: their URL is regenerated as a signed link on every read and the
// stored URL is never served.
type StoredFile struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
	Path string `json:"path,omitempty"`
}

// IsPrivate reports whether the file must be served through a signed URL.
func (f StoredFile) IsPrivate() bool {
	return f.Path != ""
}
