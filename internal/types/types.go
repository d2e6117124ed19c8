package types

// Match represents the outcome of evaluating a filter against one
// record.
type Match struct {
	File       string `json:"file,omitempty"`
	Index      int    `json:"index"`
	Expression string `json:"expression"`
	Matched    bool   `json:"matched"`
	Value      any    `json:"value,omitempty"`
	ID         string `json:"id,omitempty"`
}

// ConfigField declares one record field in the engine configuration:
// its canonical semantic path and the domain type values compared
// against it are coerced to.
type ConfigField struct {
	Path string `yaml:"path"`
	Type string `yaml:"type"`
}
