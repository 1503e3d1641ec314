package output

import (
	"encoding/json"
	"io"
)

// JSONRenderer emits structured pipeline data.
type JSONRenderer struct {
	out io.Writer
}

// NewJSON creates a JSON renderer writing to out.
func NewJSON(out io.Writer) *JSONRenderer {
	return &JSONRenderer{out: out}
}

// Render encodes any pipeline document (report, verdict, trend, history) as
// indented JSON.
func (j *JSONRenderer) Render(doc any) error {
	enc := json.NewEncoder(j.out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
