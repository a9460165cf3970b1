// Package notebook implements the nbformat v4 document model: an ordered
// list of cells with typed outputs, persisted as a single JSON file that is
// rewritten wholesale on every save.
package notebook

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Notebook represents the structure of a Jupyter notebook.
type Notebook struct {
	Cells         []Cell         `json:"cells"`
	Metadata      map[string]any `json:"metadata"`
	NBFormat      int            `json:"nbformat"`
	NBFormatMinor int            `json:"nbformat_minor"`
}

// New creates an empty nbformat v4 notebook.
func New() *Notebook {
	return &Notebook{
		Cells:         []Cell{},
		Metadata:      map[string]any{},
		NBFormat:      4,
		NBFormatMinor: 5,
	}
}

// Load reads and parses a notebook file.
func Load(path string) (*Notebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read notebook file: %w", err)
	}

	var nb Notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return nil, fmt.Errorf("failed to parse notebook JSON: %w", err)
	}

	for i := range nb.Cells {
		nb.Cells[i].normalize()
	}

	return &nb, nil
}

// Save writes the notebook to path, replacing any existing file.
func (nb *Notebook) Save(path string) error {
	for i := range nb.Cells {
		nb.Cells[i].normalize()
	}
	if nb.Metadata == nil {
		nb.Metadata = map[string]any{}
	}

	data, err := json.MarshalIndent(nb, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal notebook: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write notebook file: %w", err)
	}

	return nil
}

// MultilineString decodes the nbformat convention of storing text either as
// a single string or as a list of line fragments. It always marshals back as
// a single string.
type MultilineString string

// UnmarshalJSON accepts both the string and the list-of-strings encoding.
func (m *MultilineString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var lines []string
		if err := json.Unmarshal(data, &lines); err != nil {
			return err
		}
		*m = MultilineString(strings.Join(lines, ""))
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*m = MultilineString(s)
	return nil
}

// MarshalJSON writes the text as a single JSON string.
func (m MultilineString) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(m))
}

func (m MultilineString) String() string {
	return string(m)
}
