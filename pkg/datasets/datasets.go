package datasets

import "fmt"

// Type identifies the key type stored in a dataset.
type Type uint8

const (
	// TypeUnset means no type has been declared yet.
	TypeUnset Type = iota
	// TypeString holds variable-length byte strings.
	TypeString
	// TypeMD5 holds 16-byte MD5 digests.
	TypeMD5
	// TypeSHA256 holds 32-byte SHA256 digests.
	TypeSHA256
	// TypeIPv4 holds 4-byte IPv4 addresses.
	TypeIPv4
	// TypeIPv6 holds 16-byte IPv6 addresses; IPv4 keys are accepted and
	// stored in their v4-mapped form.
	TypeIPv6
)

// String returns the textual name of the type as used in rules.
func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeMD5:
		return "md5"
	case TypeSHA256:
		return "sha256"
	case TypeIPv4:
		return "ipv4"
	case TypeIPv6:
		return "ip"
	default:
		return "unset"
	}
}

// ParseType maps a rule-text type name to a Type. The name "ip" is an alias
// for IPv6, which also accepts IPv4 keys in v4-mapped form.
func ParseType(s string) (Type, error) {
	switch s {
	case "md5":
		return TypeMD5, nil
	case "sha256":
		return TypeSHA256, nil
	case "string":
		return TypeString, nil
	case "ipv4":
		return TypeIPv4, nil
	case "ipv6", "ip":
		return TypeIPv6, nil
	default:
		return TypeUnset, fmt.Errorf("bad dataset type %q", s)
	}
}

// Format identifies the on-disk file format of a dataset.
type Format uint8

const (
	// FormatCSV is the default plain format: one key per line.
	FormatCSV Format = iota
	// FormatJSON is a single JSON document with records under array_key.
	FormatJSON
	// FormatNDJSON is newline-delimited JSON, one record per line.
	FormatNDJSON
)

// String returns the textual name of the format as used in rules.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatNDJSON:
		return "ndjson"
	default:
		return "csv"
	}
}

// IsJSON reports whether the format carries a JSON value per key.
func (f Format) IsJSON() bool {
	return f == FormatJSON || f == FormatNDJSON
}

// ParseFormat maps a rule-text format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "ndjson":
		return FormatNDJSON, nil
	default:
		return FormatCSV, fmt.Errorf("unknown dataset format %q", s)
	}
}

// MaxNameLen is the maximum length of a dataset name.
const MaxNameLen = 63

// Options describes a dataset requested by a rule or by configuration.
// The zero value of optional fields means "use the registry default".
type Options struct {
	// Name is the dataset name. Required, no whitespace.
	Name string

	// Type is the key type. Required when the dataset does not exist yet.
	Type Type

	// Format selects the file format; CSV when unset.
	Format Format

	// LoadPath is the file the dataset is initialized from. Optional; a
	// missing file leaves the dataset empty.
	LoadPath string

	// SavePath is the file the dataset is persisted to. Optional; only
	// valid for CSV.
	SavePath string

	// Memcap bounds the memory the dataset may consume. 0 uses the
	// registry default.
	Memcap uint64

	// Hashsize hints the initial hash table size. 0 uses the registry
	// default.
	Hashsize uint32

	// ValueKey is the JSON path the key is extracted from (JSON formats).
	ValueKey string

	// ArrayKey is the JSON path of the record array (json format only).
	ArrayKey string

	// RemoveKey drops the value_key field from the stored JSON value.
	RemoveKey bool
}
