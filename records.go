package sieve

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// LoadRecords reads event records from a JSON file. The file may hold
// a single object, an array of objects, or newline-delimited JSON.
func LoadRecords(filename string) ([]any, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	records, err := DecodeRecords(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return records, nil
}

// DecodeRecords decodes a JSON document into a sequence of records.
func DecodeRecords(content []byte) ([]any, error) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return nil, nil
	}

	switch trimmed[0] {
	case '[':
		var records []any
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, err
		}
		return records, nil
	case '{':
		if record, err := decodeSingle(trimmed); err == nil {
			return []any{record}, nil
		}
		return decodeLines(trimmed)
	default:
		return nil, fmt.Errorf("unsupported record document")
	}
}

func decodeSingle(content []byte) (any, error) {
	var record map[string]any
	decoder := json.NewDecoder(bytes.NewReader(content))
	if err := decoder.Decode(&record); err != nil {
		return nil, err
	}
	// trailing content means this is NDJSON, not one object
	if decoder.More() {
		return nil, fmt.Errorf("trailing content")
	}
	return record, nil
}

func decodeLines(content []byte) ([]any, error) {
	var records []any
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var record map[string]any
		if err := json.Unmarshal(text, &record); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
