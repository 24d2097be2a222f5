package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

//go:embed encoders.toml
var defaultEncoders []byte

// Encoder is one broadcast channel a meeting can be assigned to.
type Encoder struct {
	Name string `toml:"name"`
	ID   string `toml:"id"`
}

// Encoders is the configured roster of broadcast encoders.
type Encoders struct {
	Encoder []Encoder `toml:"encoder"`
}

// IDs returns the encoder IDs in roster order.
func (e *Encoders) IDs() []string {
	out := make([]string, 0, len(e.Encoder))
	for _, enc := range e.Encoder {
		out = append(out, enc.ID)
	}
	return out
}

// NameFor resolves an encoder ID to its display name, or returns the ID
// unchanged when it is not on the roster.
func (e *Encoders) NameFor(id string) string {
	for _, enc := range e.Encoder {
		if enc.ID == id {
			return enc.Name
		}
	}
	return id
}

// LoadEncoders reads the roster from path, or falls back to the built-in
// roster when path is empty.
func LoadEncoders(path string) (*Encoders, error) {
	data := defaultEncoders
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read encoders file: %w", err)
		}
		data = raw
	}

	var e Encoders
	if err := toml.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("parse encoders file: %w", err)
	}
	if len(e.Encoder) == 0 {
		return nil, fmt.Errorf("encoder roster is empty")
	}
	for i, enc := range e.Encoder {
		if enc.ID == "" || enc.Name == "" {
			return nil, fmt.Errorf("encoder %d: name and id are required", i)
		}
	}
	return &e, nil
}
