package toolchain

import (
	"bytes"
	"io"

	"gopkg.in/yaml.v3"
)

// YAML renders the descriptor for inspection.
func (d *Descriptor) YAML() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.WriteYAML(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteYAML streams the YAML rendering to w.
func (d *Descriptor) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}

// Format names a descriptor serialization.
type Format string

const (
	FormatCMake Format = "cmake"
	FormatYAML  Format = "yaml"
)

// Write serializes d in the given format.
func (d *Descriptor) Write(w io.Writer, format Format) error {
	if format == FormatYAML {
		return d.WriteYAML(w)
	}
	return d.WriteCMake(w)
}
