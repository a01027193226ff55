package datasets

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

func decodeBase64(field string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(field)
	if err != nil {
		return nil, fmt.Errorf("bad base64 string key %q", field)
	}
	if len(b) == 0 {
		return nil, errors.New("empty string key")
	}
	return b, nil
}

func encodeBase64(key []byte) string {
	return base64.StdEncoding.EncodeToString(key)
}

// load initializes the dataset from its load path. A missing file leaves
// the dataset empty; any other failure, including hitting the memcap
// during the initial load, is an error.
func (d *Dataset) load() error {
	if d.loadPath == "" {
		return nil
	}

	f, err := os.Open(d.loadPath)
	if err != nil {
		if os.IsNotExist(err) {
			d.logger.Info("dataset file does not exist yet",
				"dataset", d.name, "path", d.loadPath)
			return nil
		}
		return fmt.Errorf("failed to open dataset file %q: %w", d.loadPath, err)
	}
	defer f.Close()

	elems, memuse, err := d.read(f)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.elems = elems
	d.memuse = memuse
	d.mu.Unlock()
	d.metrics.setSize(d.name, len(elems))

	d.logger.Info("dataset loaded",
		"dataset", d.name, "id", d.id, "path", d.loadPath, "keys", len(elems))
	return nil
}

// Reload re-reads the load file into a fresh table and swaps it in
// atomically. Lookups in flight keep reading the old table; leases held on
// old elements stay valid until released.
func (d *Dataset) Reload() error {
	if d.loadPath == "" {
		return fmt.Errorf("dataset %q has no load path", d.name)
	}

	f, err := os.Open(d.loadPath)
	if err != nil {
		return fmt.Errorf("failed to open dataset file %q: %w", d.loadPath, err)
	}
	defer f.Close()

	elems, memuse, err := d.read(f)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.elems = elems
	d.memuse = memuse
	d.mu.Unlock()
	d.metrics.setSize(d.name, len(elems))

	d.logger.Info("dataset reloaded",
		"dataset", d.name, "path", d.loadPath, "keys", len(elems))
	return nil
}

// read parses the dataset file into a new element table.
func (d *Dataset) read(r io.Reader) (map[string]*element, uint64, error) {
	switch d.format {
	case FormatNDJSON:
		return d.readNDJSON(r)
	case FormatJSON:
		return d.readJSON(r)
	default:
		return d.readCSV(r)
	}
}

// readCSV reads one key per line. Blank lines and '#' comments are skipped.
func (d *Dataset) readCSV(r io.Reader) (map[string]*element, uint64, error) {
	elems := make(map[string]*element, d.hashsize)
	var memuse uint64

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		keyBytes, err := d.parseKeyText(line, true)
		if err != nil {
			return nil, 0, fmt.Errorf("dataset %q line %d: %w", d.name, lineno, err)
		}
		key, err := d.encodeKey(keyBytes)
		if err != nil {
			return nil, 0, fmt.Errorf("dataset %q line %d: %w", d.name, lineno, err)
		}

		if _, ok := elems[key]; ok {
			continue
		}
		size := uint64(len(key)) + elemOverhead
		if d.memcap > 0 && memuse+size > d.memcap {
			return nil, 0, fmt.Errorf("dataset %q: %w (memcap %d)", d.name, ErrMemcapReached, d.memcap)
		}
		elems[key] = &element{}
		memuse += size
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("dataset %q: %w", d.name, err)
	}
	return elems, memuse, nil
}

// readNDJSON reads one JSON record per line, extracting the key at the
// configured value_key path and storing the rest of the record as the
// enrichment value.
func (d *Dataset) readNDJSON(r io.Reader) (map[string]*element, uint64, error) {
	elems := make(map[string]*element, d.hashsize)
	var memuse uint64

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var record map[string]any
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return nil, 0, fmt.Errorf("dataset %q line %d: %w", d.name, lineno, err)
		}
		if err := d.addRecord(elems, &memuse, record); err != nil {
			return nil, 0, fmt.Errorf("dataset %q line %d: %w", d.name, lineno, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("dataset %q: %w", d.name, err)
	}
	return elems, memuse, nil
}

// readJSON reads a single JSON document whose records live in the array at
// the configured array_key path, or at the top level when array_key is
// empty.
func (d *Dataset) readJSON(r io.Reader) (map[string]*element, uint64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("dataset %q: %w", d.name, err)
	}

	var records []any
	if d.arrayKey == "" {
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, 0, fmt.Errorf("dataset %q: top-level array expected: %w", d.name, err)
		}
	} else {
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, 0, fmt.Errorf("dataset %q: %w", d.name, err)
		}
		v, ok := jsonPathLookup(doc, d.arrayKey)
		if !ok {
			return nil, 0, fmt.Errorf("dataset %q: array_key %q not found", d.name, d.arrayKey)
		}
		records, ok = v.([]any)
		if !ok {
			return nil, 0, fmt.Errorf("dataset %q: array_key %q is not an array", d.name, d.arrayKey)
		}
	}

	elems := make(map[string]*element, d.hashsize)
	var memuse uint64
	for i, rec := range records {
		record, ok := rec.(map[string]any)
		if !ok {
			return nil, 0, fmt.Errorf("dataset %q record %d: object expected", d.name, i)
		}
		if err := d.addRecord(elems, &memuse, record); err != nil {
			return nil, 0, fmt.Errorf("dataset %q record %d: %w", d.name, i, err)
		}
	}
	return elems, memuse, nil
}

// addRecord extracts the key from a JSON record and stores the record as
// the element value.
func (d *Dataset) addRecord(elems map[string]*element, memuse *uint64, record map[string]any) error {
	v, ok := jsonPathLookup(record, d.valueKey)
	if !ok {
		return fmt.Errorf("value_key %q not found", d.valueKey)
	}
	field, ok := v.(string)
	if !ok {
		return fmt.Errorf("value_key %q is not a string", d.valueKey)
	}

	keyBytes, err := d.parseKeyText(field, false)
	if err != nil {
		return err
	}
	key, err := d.encodeKey(keyBytes)
	if err != nil {
		return err
	}

	if d.removeKey {
		jsonPathRemove(record, d.valueKey)
	}
	value, err := json.Marshal(record)
	if err != nil {
		return err
	}

	if _, ok := elems[key]; ok {
		return nil
	}
	size := uint64(len(key)) + uint64(len(value)) + elemOverhead
	if d.memcap > 0 && *memuse+size > d.memcap {
		return fmt.Errorf("%w (memcap %d)", ErrMemcapReached, d.memcap)
	}
	elems[key] = &element{value: value}
	*memuse += size
	return nil
}

// jsonPathLookup resolves a dotted path (e.g. "threat.name") in a decoded
// JSON object. A key containing a literal dot is tried before descending.
func jsonPathLookup(obj map[string]any, path string) (any, bool) {
	if v, ok := obj[path]; ok {
		return v, true
	}
	head, rest, found := strings.Cut(path, ".")
	if !found {
		return nil, false
	}
	child, ok := obj[head].(map[string]any)
	if !ok {
		return nil, false
	}
	return jsonPathLookup(child, rest)
}

// jsonPathRemove deletes the value at a dotted path from a decoded JSON
// object, mirroring jsonPathLookup's resolution.
func jsonPathRemove(obj map[string]any, path string) {
	if _, ok := obj[path]; ok {
		delete(obj, path)
		return
	}
	head, rest, found := strings.Cut(path, ".")
	if !found {
		return
	}
	if child, ok := obj[head].(map[string]any); ok {
		jsonPathRemove(child, rest)
	}
}
