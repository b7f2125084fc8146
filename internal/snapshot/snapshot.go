// Package snapshot defines the versioned document that persists a whole
// project manager graph, along with its JSON encoding and validation.
package snapshot

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/steveyegge/projctl/internal/tracker"
)

// CurrentVersion is the document version written by this build
const CurrentVersion = 1

var (
	// ErrUnsupportedVersion is returned when a document was written by a
	// newer (or unknown) format version.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")

	// ErrNoSnapshot is returned by stores that hold no snapshot yet
	ErrNoSnapshot = errors.New("no snapshot stored")
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "snapshot.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// Document is one saved copy of the manager state
type Document struct {
	Version int           `json:"version"`
	ID      string        `json:"id"`
	SavedAt time.Time     `json:"saved_at"`
	State   tracker.State `json:"state"`
}

// Entry describes a stored snapshot without its state
type Entry struct {
	ID      string    `json:"id"`
	Version int       `json:"version"`
	SavedAt time.Time `json:"saved_at"`
}

// New captures the current state of m in a fresh document
func New(m *tracker.Manager) *Document {
	return &Document{
		Version: CurrentVersion,
		ID:      uuid.NewString(),
		SavedAt: time.Now().UTC(),
		State:   m.Export(),
	}
}

// Encode renders the document as indented JSON
func (d *Document) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// Restore rebuilds a manager from the document. Every element is replayed
// through the core operations, so invariant violations are reported here.
func (d *Document) Restore() (*tracker.Manager, error) {
	m, err := tracker.Import(d.State)
	if err != nil {
		return nil, fmt.Errorf("restore snapshot %s: %w", d.ID, err)
	}
	return m, nil
}

// Decode validates data against the snapshot schema and parses it
func Decode(data []byte) (*Document, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &doc, nil
}

// Load decodes data and restores the manager it describes
func Load(data []byte) (*tracker.Manager, *Document, error) {
	doc, err := Decode(data)
	if err != nil {
		return nil, nil, err
	}
	m, err := doc.Restore()
	if err != nil {
		return nil, nil, err
	}
	return m, doc, nil
}

// Validate checks data against the snapshot schema and the supported
// version. It does not check core invariants; use Load for that.
func Validate(data []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}

	var obj interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}

	if err := s.Validate(obj); err != nil {
		return schemaError(err)
	}

	var head struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}
	if head.Version != CurrentVersion {
		return fmt.Errorf("%w: %d (this build reads version %d)", ErrUnsupportedVersion, head.Version, CurrentVersion)
	}
	return nil
}

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("load snapshot schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile(schemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile snapshot schema: %w", schemaErr)
		}
	})
	return schema, schemaErr
}

// ValidationError reports the first schema violation found in a document
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return "invalid snapshot: " + e.Message
	}
	return fmt.Sprintf("invalid snapshot at %s: %s", e.Path, e.Message)
}

func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &ValidationError{Message: err.Error()}
	}
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	return &ValidationError{Path: pointerToPath(leaf.InstanceLocation), Message: leaf.Message}
}

// pointerToPath turns "/state/projects/0/name" into "state.projects[0].name"
func pointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}
	var b strings.Builder
	for i, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(strings.ReplaceAll(part, "~1", "/"), "~0", "~")
		if isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
