package datasets

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"sync"

	"github.com/google/uuid"
)

// ErrMemcapReached is returned by Add when inserting a key would push the
// dataset past its configured memory cap.
var ErrMemcapReached = errors.New("dataset memcap reached")

// elemOverhead approximates the per-element bookkeeping cost counted
// against the memcap, on top of the key and value bytes themselves.
const elemOverhead = 48

// element is a single dataset entry. The mutex guards the JSON value for
// the duration of a lookup lease; plain sets never lock it.
type element struct {
	mu    sync.Mutex
	value []byte
}

// Dataset is a named, typed set of keys, safe for concurrent use.
// Instances are obtained from a Registry and live for the process lifetime.
type Dataset struct {
	id        uuid.UUID
	name      string
	typ       Type
	format    Format
	loadPath  string
	savePath  string
	memcap    uint64
	hashsize  uint32
	valueKey  string
	arrayKey  string
	removeKey bool

	logger  *slog.Logger
	metrics *Metrics

	mu     sync.RWMutex
	elems  map[string]*element
	memuse uint64
}

// Name returns the dataset name.
func (d *Dataset) Name() string { return d.name }

// ID returns the unique instance ID assigned at creation, used to
// disambiguate same-named sets across reloads in logs.
func (d *Dataset) ID() uuid.UUID { return d.id }

// Type returns the key type.
func (d *Dataset) Type() Type { return d.typ }

// Format returns the file format.
func (d *Dataset) Format() Format { return d.format }

// LoadPath returns the resolved load file path, if any.
func (d *Dataset) LoadPath() string { return d.loadPath }

// SavePath returns the resolved save file path, if any.
func (d *Dataset) SavePath() string { return d.savePath }

// Len returns the number of keys currently in the set.
func (d *Dataset) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.elems)
}

// MemUse returns the approximate memory currently accounted to the set.
func (d *Dataset) MemUse() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.memuse
}

// encodeKey normalizes raw buffer bytes into the internal map key for the
// dataset's type. Fixed-width types reject data of the wrong size.
func (d *Dataset) encodeKey(data []byte) (string, error) {
	switch d.typ {
	case TypeMD5:
		if len(data) != 16 {
			return "", fmt.Errorf("md5 key must be 16 bytes, got %d", len(data))
		}
	case TypeSHA256:
		if len(data) != 32 {
			return "", fmt.Errorf("sha256 key must be 32 bytes, got %d", len(data))
		}
	case TypeIPv4:
		if len(data) != 4 {
			return "", fmt.Errorf("ipv4 key must be 4 bytes, got %d", len(data))
		}
	case TypeIPv6:
		switch len(data) {
		case 16:
		case 4:
			// v4-mapped form, so "ip" sets match both families
			mapped := netip.AddrFrom4([4]byte(data)).As16()
			return string(mapped[:]), nil
		default:
			return "", fmt.Errorf("ip key must be 4 or 16 bytes, got %d", len(data))
		}
	case TypeString:
		if len(data) == 0 {
			return "", errors.New("empty string key")
		}
	default:
		return "", fmt.Errorf("dataset %q has no type", d.name)
	}
	return string(data), nil
}

// Lookup reports whether the key formed from data is present in the set.
func (d *Dataset) Lookup(data []byte) (bool, error) {
	key, err := d.encodeKey(data)
	if err != nil {
		d.metrics.observeLookup(d.name, "error")
		return false, err
	}

	d.mu.RLock()
	_, ok := d.elems[key]
	d.mu.RUnlock()

	if ok {
		d.metrics.observeLookup(d.name, "hit")
	} else {
		d.metrics.observeLookup(d.name, "miss")
	}
	return ok, nil
}

// Add inserts the key formed from data. It returns true if the key was
// inserted and false with a nil error if it was already present. Inserting
// past the memcap fails with ErrMemcapReached.
func (d *Dataset) Add(data []byte) (bool, error) {
	key, err := d.encodeKey(data)
	if err != nil {
		d.metrics.observeInsert(d.name, "error")
		return false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.addLocked(key, nil)
}

// addLocked inserts an already-encoded key. Caller holds d.mu.
func (d *Dataset) addLocked(key string, value []byte) (bool, error) {
	if _, ok := d.elems[key]; ok {
		d.metrics.observeInsert(d.name, "exists")
		return false, nil
	}

	size := uint64(len(key)) + uint64(len(value)) + elemOverhead
	if d.memcap > 0 && d.memuse+size > d.memcap {
		d.metrics.observeMemcapRejection(d.name)
		return false, ErrMemcapReached
	}

	d.elems[key] = &element{value: value}
	d.memuse += size
	d.metrics.observeInsert(d.name, "added")
	d.metrics.setSize(d.name, len(d.elems))
	return true, nil
}

// Remove deletes the key formed from data. It returns true if the key was
// present and removed, false with a nil error if it was not present.
func (d *Dataset) Remove(data []byte) (bool, error) {
	key, err := d.encodeKey(data)
	if err != nil {
		return false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	el, ok := d.elems[key]
	if !ok {
		return false, nil
	}
	delete(d.elems, key)
	d.memuse -= uint64(len(key)) + uint64(len(el.value)) + elemOverhead
	d.metrics.observeRemove(d.name)
	d.metrics.setSize(d.name, len(d.elems))
	return true, nil
}

// parseKeyText converts the textual form of a key, as found in CSV files
// and JSON records, into raw key bytes for the dataset's type.
func (d *Dataset) parseKeyText(field string, base64Strings bool) ([]byte, error) {
	switch d.typ {
	case TypeMD5:
		b, err := hex.DecodeString(field)
		if err != nil || len(b) != 16 {
			return nil, fmt.Errorf("bad md5 %q", field)
		}
		return b, nil
	case TypeSHA256:
		b, err := hex.DecodeString(field)
		if err != nil || len(b) != 32 {
			return nil, fmt.Errorf("bad sha256 %q", field)
		}
		return b, nil
	case TypeIPv4:
		addr, err := netip.ParseAddr(field)
		if err != nil || !addr.Is4() {
			return nil, fmt.Errorf("bad ipv4 address %q", field)
		}
		a4 := addr.As4()
		return a4[:], nil
	case TypeIPv6:
		addr, err := netip.ParseAddr(field)
		if err != nil {
			return nil, fmt.Errorf("bad ip address %q", field)
		}
		a16 := addr.As16()
		return a16[:], nil
	case TypeString:
		if base64Strings {
			return decodeBase64(field)
		}
		if field == "" {
			return nil, errors.New("empty string key")
		}
		return []byte(field), nil
	default:
		return nil, fmt.Errorf("dataset %q has no type", d.name)
	}
}

// formatKeyText is the inverse of parseKeyText for persisting keys.
func (d *Dataset) formatKeyText(key string) string {
	switch d.typ {
	case TypeMD5, TypeSHA256:
		return hex.EncodeToString([]byte(key))
	case TypeIPv4:
		return netip.AddrFrom4([4]byte([]byte(key))).String()
	case TypeIPv6:
		addr := netip.AddrFrom16([16]byte([]byte(key)))
		return addr.Unmap().String()
	default:
		return encodeBase64([]byte(key))
	}
}
