package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is an on-disk encoding for scenario content.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Extensions recognised by FormatFor, in lookup order.
var Extensions = []string{".json", ".yaml", ".yml"}

// FormatFor picks the encoding from a file extension
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

func decode(data []byte, format Format, v interface{}) error {
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		return dec.Decode(v)
	case FormatYAML:
		return yaml.Unmarshal(data, v)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

// Parse decodes a scenario definition without validating it
func Parse(data []byte, format Format) (*Definition, error) {
	var def Definition
	if err := decode(data, format, &def); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	return &def, nil
}

// Load reads, parses and validates a scenario file
func Load(path string) (*Definition, error) {
	return LoadFS(os.DirFS(filepath.Dir(path)), filepath.Base(path))
}

// LoadFS reads, parses and validates a scenario file from fsys. A definition
// without an id takes the file name stem.
func LoadFS(fsys fs.FS, name string) (*Definition, error) {
	format, err := FormatFor(name)
	if err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	def, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	if def.ID == "" {
		def.ID = strings.TrimSuffix(path.Base(name), path.Ext(name))
	}
	if err := Validate(def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	return def, nil
}

// Marshal encodes a definition in the given format
func Marshal(def *Definition, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(def, "", "  ")
	case FormatYAML:
		return yaml.Marshal(def)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

// LoadJob reads and validates a job file with its embedded scenarios
func LoadJob(path string) (*Job, error) {
	return LoadJobFS(os.DirFS(filepath.Dir(path)), filepath.Base(path))
}

// LoadJobFS is LoadJob over an fs.FS
func LoadJobFS(fsys fs.FS, name string) (*Job, error) {
	format, err := FormatFor(name)
	if err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}
	var job Job
	if err := decode(data, format, &job); err != nil {
		return nil, fmt.Errorf("failed to parse job: %w", err)
	}
	if job.ID == "" {
		job.ID = strings.TrimSuffix(path.Base(name), path.Ext(name))
	}
	if err := ValidateJob(&job); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	return &job, nil
}

// LoadManifest reads a job manifest
func LoadManifest(path string) (*Manifest, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := decode(data, format, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}
