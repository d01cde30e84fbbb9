package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// writeResult prints v as indented JSON or through text
func writeResult(w io.Writer, format string, v interface{}, text func(io.Writer)) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}

func line(w io.Writer, label string, value interface{}) {
	fmt.Fprintf(w, "%-22s %v\n", label+":", value)
}
