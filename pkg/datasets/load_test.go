package datasets

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoad_CSV_MD5(t *testing.T) {
	path := writeFile(t, "hashes.lst", strings.Join([]string{
		"# known bad hashes",
		"d41d8cd98f00b204e9800998ecf8427e",
		"",
		"9e107d9d372bb6826bd81d3542a419d6",
	}, "\n"))

	ds := newTestSet(t, Options{Name: "malicious_md5", Type: TypeMD5, LoadPath: path})

	if ds.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", ds.Len())
	}

	key, _ := hex.DecodeString("d41d8cd98f00b204e9800998ecf8427e")
	present, err := ds.Lookup(key)
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	if !present {
		t.Error("Lookup() = false for loaded hash, want true")
	}
}

func TestLoad_CSV_StringBase64(t *testing.T) {
	raw := "evil-user-agent"
	path := writeFile(t, "agents.lst", base64.StdEncoding.EncodeToString([]byte(raw))+"\n")

	ds := newTestSet(t, Options{Name: "agents", Type: TypeString, LoadPath: path})

	present, err := ds.Lookup([]byte(raw))
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	if !present {
		t.Error("Lookup() = false for loaded string key, want true")
	}
}

func TestLoad_CSV_IPs(t *testing.T) {
	path := writeFile(t, "ips.lst", "192.0.2.1\n2001:db8::1\n")

	ds := newTestSet(t, Options{Name: "tracked", Type: TypeIPv6, LoadPath: path})

	if present, _ := ds.Lookup([]byte{192, 0, 2, 1}); !present {
		t.Error("Lookup() of 192.0.2.1 = false, want true")
	}
	v6 := append([]byte{0x20, 0x01, 0x0d, 0xb8}, bytes.Repeat([]byte{0}, 11)...)
	v6 = append(v6, 1)
	if present, _ := ds.Lookup(v6); !present {
		t.Error("Lookup() of 2001:db8::1 = false, want true")
	}
}

func TestLoad_CSV_BadLine(t *testing.T) {
	path := writeFile(t, "bad.lst", "not-hex-at-all\n")

	reg := newTestRegistry(t)
	_, err := reg.GetOrCreate(Options{Name: "bad", Type: TypeMD5, LoadPath: path})
	if err == nil {
		t.Fatal("GetOrCreate() succeeded with malformed file, want error")
	}
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.lst")

	ds := newTestSet(t, Options{Name: "absent", Type: TypeString, LoadPath: path})
	if ds.Len() != 0 {
		t.Errorf("Len() = %d, want 0", ds.Len())
	}
}

func TestLoad_MemcapOnInitialLoad(t *testing.T) {
	var lines []string
	for i := 0; i < 100; i++ {
		lines = append(lines, base64.StdEncoding.EncodeToString([]byte(strings.Repeat("x", 20)+string(rune('a'+i)))))
	}
	path := writeFile(t, "big.lst", strings.Join(lines, "\n"))

	reg := newTestRegistry(t)
	_, err := reg.GetOrCreate(Options{Name: "big", Type: TypeString, LoadPath: path, Memcap: 300})
	if err == nil {
		t.Fatal("GetOrCreate() succeeded past memcap, want error")
	}
}

func TestLoad_NDJSON(t *testing.T) {
	path := writeFile(t, "rep.ndjson", strings.Join([]string{
		`{"ip":"192.0.2.7","score":5,"source":"feed-a"}`,
		`{"ip":"192.0.2.8","score":2,"source":"feed-b"}`,
	}, "\n"))

	ds := newTestSet(t, Options{
		Name: "ip_rep", Type: TypeIPv4, Format: FormatNDJSON,
		LoadPath: path, ValueKey: "ip",
	})

	r := ds.LookupJSON([]byte{192, 0, 2, 7})
	defer r.Release()
	if !r.Found {
		t.Fatal("LookupJSON() not found, want found")
	}
	if !strings.Contains(string(r.Value), `"score":5`) {
		t.Errorf("Value = %s, want to contain \"score\":5", r.Value)
	}
	if !strings.Contains(string(r.Value), `"ip"`) {
		t.Errorf("Value = %s, want ip field kept without remove_key", r.Value)
	}
}

func TestLoad_NDJSON_RemoveKey(t *testing.T) {
	path := writeFile(t, "rep.ndjson", `{"ip":"192.0.2.7","score":5}`+"\n")

	ds := newTestSet(t, Options{
		Name: "ip_rep_rm", Type: TypeIPv4, Format: FormatNDJSON,
		LoadPath: path, ValueKey: "ip", RemoveKey: true,
	})

	r := ds.LookupJSON([]byte{192, 0, 2, 7})
	defer r.Release()
	if !r.Found {
		t.Fatal("LookupJSON() not found, want found")
	}
	if strings.Contains(string(r.Value), `"ip"`) {
		t.Errorf("Value = %s, want ip field removed", r.Value)
	}
}

func TestLoad_NDJSON_DottedValueKey(t *testing.T) {
	path := writeFile(t, "rep.ndjson", `{"threat":{"hash":"d41d8cd98f00b204e9800998ecf8427e"},"level":9}`+"\n")

	ds := newTestSet(t, Options{
		Name: "threats", Type: TypeMD5, Format: FormatNDJSON,
		LoadPath: path, ValueKey: "threat.hash",
	})

	key, _ := hex.DecodeString("d41d8cd98f00b204e9800998ecf8427e")
	r := ds.LookupJSON(key)
	defer r.Release()
	if !r.Found {
		t.Fatal("LookupJSON() not found for dotted value_key, want found")
	}
}

func TestLoad_JSON_ArrayKey(t *testing.T) {
	path := writeFile(t, "feed.json",
		`{"version":1,"data":{"entries":[{"host":"a.example","rank":1},{"host":"b.example","rank":2}]}}`)

	ds := newTestSet(t, Options{
		Name: "hosts", Type: TypeString, Format: FormatJSON,
		LoadPath: path, ValueKey: "host", ArrayKey: "data.entries",
	})

	if ds.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", ds.Len())
	}
	r := ds.LookupJSON([]byte("a.example"))
	defer r.Release()
	if !r.Found {
		t.Fatal("LookupJSON() not found, want found")
	}
	if !strings.Contains(string(r.Value), `"rank":1`) {
		t.Errorf("Value = %s, want to contain \"rank\":1", r.Value)
	}
}

func TestLoad_JSON_TopLevelArray(t *testing.T) {
	path := writeFile(t, "feed.json", `[{"host":"c.example"}]`)

	ds := newTestSet(t, Options{
		Name: "hosts_flat", Type: TypeString, Format: FormatJSON,
		LoadPath: path, ValueKey: "host",
	})

	if ds.Len() != 1 {
		t.Errorf("Len() = %d, want 1", ds.Len())
	}
}

func TestLoad_JSON_MissingValueKey(t *testing.T) {
	path := writeFile(t, "feed.ndjson", `{"address":"192.0.2.1"}`+"\n")

	reg := newTestRegistry(t)
	_, err := reg.GetOrCreate(Options{
		Name: "nokey", Type: TypeIPv4, Format: FormatNDJSON,
		LoadPath: path, ValueKey: "ip",
	})
	if err == nil {
		t.Fatal("GetOrCreate() succeeded with missing value_key field, want error")
	}
}

func TestReload_SwapsContents(t *testing.T) {
	path := writeFile(t, "live.lst", base64.StdEncoding.EncodeToString([]byte("first"))+"\n")

	ds := newTestSet(t, Options{Name: "live", Type: TypeString, LoadPath: path})
	if present, _ := ds.Lookup([]byte("first")); !present {
		t.Fatal("Lookup(first) = false before reload, want true")
	}

	if err := os.WriteFile(path, []byte(base64.StdEncoding.EncodeToString([]byte("second"))+"\n"), 0o600); err != nil {
		t.Fatalf("failed to rewrite file: %v", err)
	}
	if err := ds.Reload(); err != nil {
		t.Fatalf("Reload() failed: %v", err)
	}

	if present, _ := ds.Lookup([]byte("first")); present {
		t.Error("Lookup(first) = true after reload, want false")
	}
	if present, _ := ds.Lookup([]byte("second")); !present {
		t.Error("Lookup(second) = false after reload, want true")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	savePath := filepath.Join(dir, "state.lst")

	ds := newTestSet(t, Options{Name: "state", Type: TypeIPv4, LoadPath: savePath, SavePath: savePath})
	if _, err := ds.Add([]byte{192, 0, 2, 1}); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if _, err := ds.Add([]byte{192, 0, 2, 2}); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if err := ds.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	// A fresh registry loading the same file sees the persisted keys.
	reg := newTestRegistry(t)
	ds2, err := reg.GetOrCreate(Options{Name: "state", Type: TypeIPv4, LoadPath: savePath})
	if err != nil {
		t.Fatalf("GetOrCreate() failed: %v", err)
	}
	if ds2.Len() != 2 {
		t.Errorf("Len() = %d after round trip, want 2", ds2.Len())
	}
	if present, _ := ds2.Lookup([]byte{192, 0, 2, 2}); !present {
		t.Error("Lookup() = false after round trip, want true")
	}
}
