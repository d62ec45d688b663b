package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// SchemaLookup is read-only access to the variable catalog. Every component
// except the recode engine receives the schema through this interface; only
// the recode engine holds the mutable *DataMap during a calculation pass.
type SchemaLookup interface {
	// Lookup returns the question for a variable name.
	Lookup(name string) (*Question, bool)
}

// DataMap is the variable catalog: an ordered-insertion mapping from
// variable name to Question. It is the single source of truth for how a
// dataset column must be interpreted.
type DataMap struct {
	names     []string
	questions map[string]*Question
}

// NewDataMap creates an empty DataMap.
func NewDataMap() *DataMap {
	return &DataMap{questions: make(map[string]*Question)}
}

// Add inserts a question, replacing any existing entry with the same name
// while preserving its original position.
func (m *DataMap) Add(q *Question) {
	if _, exists := m.questions[q.Name]; !exists {
		m.names = append(m.names, q.Name)
	}
	m.questions[q.Name] = q
}

// Lookup returns the question for a variable name.
func (m *DataMap) Lookup(name string) (*Question, bool) {
	q, ok := m.questions[name]
	return q, ok
}

// Names returns the variable names in insertion order.
func (m *DataMap) Names() []string {
	names := make([]string, len(m.names))
	copy(names, m.names)
	return names
}

// Len returns the number of questions.
func (m *DataMap) Len() int {
	return len(m.names)
}

// questionJSON is the interchange form of a Question.
type questionJSON struct {
	Kind  string         `json:"kind"`
	Title string         `json:"title"`
	Codes map[string]string `json:"codes,omitempty"`
}

// MarshalJSON serializes the catalog as a JSON object mapping variable name
// to {kind, title, codes}, with kind as its short tag and entries emitted
// in insertion order.
func (m *DataMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range m.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		q := m.questions[name]

		entry := questionJSON{Kind: q.Kind.Tag(), Title: q.Title}
		if len(q.Codes) > 0 {
			entry.Codes = make(map[string]string, len(q.Codes))
			for c, label := range q.Codes {
				entry.Codes[strconv.Itoa(c)] = label
			}
		}

		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(entry)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON deserializes the interchange form, preserving the order of
// entries in the JSON document.
func (m *DataMap) UnmarshalJSON(data []byte) error {
	m.names = nil
	m.questions = make(map[string]*Question)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("datamap: expected JSON object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("datamap: expected string key, got %v", keyTok)
		}

		var entry questionJSON
		if err := dec.Decode(&entry); err != nil {
			return fmt.Errorf("datamap: question %q: %w", name, err)
		}

		q := &Question{
			Name:  name,
			Kind:  ParseKind(entry.Kind),
			Title: entry.Title,
		}
		if len(entry.Codes) > 0 {
			q.Codes = make(map[int]string, len(entry.Codes))
			for codeStr, label := range entry.Codes {
				code, err := strconv.Atoi(codeStr)
				if err != nil {
					return fmt.Errorf("datamap: question %q: invalid code %q", name, codeStr)
				}
				q.Codes[code] = label
			}
		}
		m.Add(q)
	}

	// Consume closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
