package dataset

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"veles-ids/veles/pkg/detect"
)

func writeRuleData(t *testing.T, e *detect.EngineCtx, name, content string) {
	t.Helper()
	ruleDir := t.TempDir()
	e.RuleFile = filepath.Join(ruleDir, "test.rules")
	if err := os.WriteFile(filepath.Join(ruleDir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestMatch_EmptyBufferNeverMatches(t *testing.T) {
	e := newTestEngine(t)
	tctx := detect.NewThreadCtx()

	for _, raw := range []string{
		"isset, empty, type string",
		"isnotset, empty, type string",
		"set, empty, type string",
	} {
		mc := setupContext(t, e, newTestSignature(1), raw)
		if Match(tctx, mc, nil) {
			t.Errorf("Match(%q) with nil buffer = true, want false", raw)
		}
		if Match(tctx, mc, []byte{}) {
			t.Errorf("Match(%q) with empty buffer = true, want false", raw)
		}
	}
}

func TestMatch_MD5IsSet(t *testing.T) {
	// Scenario: "isset, malicious_md5, type md5" with the hash on file.
	e := newTestEngine(t)
	writeRuleData(t, e, "hashes.lst", "d41d8cd98f00b204e9800998ecf8427e\n")

	mc := setupContext(t, e, newTestSignature(1),
		"isset, malicious_md5, type md5, load hashes.lst")

	tctx := detect.NewThreadCtx()
	buf, _ := hex.DecodeString("d41d8cd98f00b204e9800998ecf8427e")

	if !Match(tctx, mc, buf) {
		t.Error("Match() = false for loaded hash, want true")
	}
	if len(tctx.JSONContent()) != 0 {
		t.Errorf("plain format produced %d enrichment fragments, want 0", len(tctx.JSONContent()))
	}

	other, _ := hex.DecodeString("9e107d9d372bb6826bd81d3542a419d6")
	if Match(tctx, mc, other) {
		t.Error("Match() = true for absent hash, want false")
	}
}

func TestMatch_SetAlgebra(t *testing.T) {
	e := newTestEngine(t)
	setCtx := setupContext(t, e, newTestSignature(1), "set, tracked, type string")
	unsetCtx := setupContext(t, e, newTestSignature(2), "unset, tracked, type string")
	issetCtx := setupContext(t, e, newTestSignature(3), "isset, tracked, type string")
	isnotsetCtx := setupContext(t, e, newTestSignature(4), "isnotset, tracked, type string")

	tctx := detect.NewThreadCtx()
	key := []byte("observed")

	if Match(tctx, issetCtx, key) {
		t.Error("isset matched before set")
	}
	if !Match(tctx, isnotsetCtx, key) {
		t.Error("isnotset did not match before set")
	}

	if !Match(tctx, setCtx, key) {
		t.Error("set did not match on first insert")
	}
	if !Match(tctx, issetCtx, key) {
		t.Error("isset did not match after set")
	}
	if Match(tctx, isnotsetCtx, key) {
		t.Error("isnotset matched after set")
	}

	// Inserting an already-present key still counts as success.
	if !Match(tctx, setCtx, key) {
		t.Error("set did not match on repeated insert")
	}

	if !Match(tctx, unsetCtx, key) {
		t.Error("unset did not match for present key")
	}
	if Match(tctx, issetCtx, key) {
		t.Error("isset matched after unset")
	}
	if !Match(tctx, isnotsetCtx, key) {
		t.Error("isnotset did not match after unset")
	}

	// Removing an absent key is not a match.
	if Match(tctx, unsetCtx, key) {
		t.Error("unset matched for absent key")
	}
}

func TestMatch_StatefulWatchlistAcrossEvaluations(t *testing.T) {
	// Scenario: "set, seen_ips, type ip, state tracked.lst" applied twice
	// with the same address matches both times.
	e := newTestEngine(t)
	mc := setupContext(t, e, newTestSignature(1), "set, seen_ips, type ip, state tracked.lst")

	tctx := detect.NewThreadCtx()
	ip := []byte{192, 0, 2, 1}

	if !Match(tctx, mc, ip) {
		t.Error("first evaluation = false, want true")
	}
	if !Match(tctx, mc, ip) {
		t.Error("second evaluation = false, want true")
	}

	want := filepath.Join(e.Config.Datasets.DataDir, "tracked.lst")
	if mc.Set().SavePath() != want || mc.Set().LoadPath() != want {
		t.Errorf("state paths = (%q, %q), want both %q",
			mc.Set().LoadPath(), mc.Set().SavePath(), want)
	}
}

func TestMatch_JSONEnrichment(t *testing.T) {
	// Scenario: a found JSON element renders "<context_key>":<value> into
	// the per-thread buffer.
	e := newTestEngine(t)
	writeRuleData(t, e, "rep.ndjson", `{"val":"198.51.100.9","score":5}`+"\n")

	mc := setupContext(t, e, newTestSignature(7),
		"isset, ctx, type string, format ndjson, load rep.ndjson, value_key val, context_key ip_rep, remove_key")

	tctx := detect.NewThreadCtx()
	if !Match(tctx, mc, []byte("198.51.100.9")) {
		t.Fatal("Match() = false for loaded key, want true")
	}

	got := tctx.JSONContent()
	if len(got) != 1 {
		t.Fatalf("len(JSONContent()) = %d, want 1", len(got))
	}
	if got[0].SignatureID != 7 {
		t.Errorf("SignatureID = %d, want 7", got[0].SignatureID)
	}
	if got[0].Fragment != `"ip_rep":{"score":5}` {
		t.Errorf("Fragment = %s, want %s", got[0].Fragment, `"ip_rep":{"score":5}`)
	}
}

func TestMatch_JSONIsSetWithoutEnrichmentStillMatches(t *testing.T) {
	e := newTestEngine(t)
	writeRuleData(t, e, "rep.ndjson", `{"val":"key-only"}`+"\n")

	mc := setupContext(t, e, newTestSignature(1),
		"isset, lean, type string, format ndjson, load rep.ndjson, value_key val, context_key c, remove_key")

	tctx := detect.NewThreadCtx()
	if !Match(tctx, mc, []byte("key-only")) {
		t.Error("Match() = false, want true")
	}
	// remove_key stripped the only field; the empty object is all that is
	// left to render, and the match stands either way.
	if got := tctx.JSONContent(); len(got) != 1 || got[0].Fragment != `"c":{}` {
		t.Errorf("JSONContent() = %v, want single fragment %s", got, `"c":{}`)
	}
}

func TestMatch_JSONFragmentOverBudgetDropsEnrichmentOnly(t *testing.T) {
	e := newTestEngine(t)
	long := strings.Repeat("x", detect.JSONContentItemLen+10)
	writeRuleData(t, e, "rep.ndjson", `{"val":"big","blob":"`+long+`"}`+"\n")

	mc := setupContext(t, e, newTestSignature(1),
		"isset, big, type string, format ndjson, load rep.ndjson, value_key val, context_key c")

	tctx := detect.NewThreadCtx()
	if !Match(tctx, mc, []byte("big")) {
		t.Error("Match() = false with oversized value, want true")
	}
	if len(tctx.JSONContent()) != 0 {
		t.Errorf("oversized fragment was appended, want dropped")
	}
}

func TestMatch_JSONBufferFullDropsEnrichmentOnly(t *testing.T) {
	e := newTestEngine(t)
	writeRuleData(t, e, "rep.ndjson", `{"val":"key","score":1}`+"\n")

	mc := setupContext(t, e, newTestSignature(1),
		"isset, full, type string, format ndjson, load rep.ndjson, value_key val, context_key c")

	tctx := detect.NewThreadCtxWithCapacity(0)
	if !Match(tctx, mc, []byte("key")) {
		t.Error("Match() = false with full enrichment buffer, want true")
	}
	if len(tctx.JSONContent()) != 0 {
		t.Errorf("fragment appended past capacity")
	}

	// The lease was released on the capacity-skip branch: the element can
	// be looked up again without deadlock.
	if !Match(tctx, mc, []byte("key")) {
		t.Error("second Match() = false, want true")
	}
}

func TestMatch_JSONIsNotSet(t *testing.T) {
	e := newTestEngine(t)
	writeRuleData(t, e, "rep.ndjson", `{"val":"present","score":1}`+"\n")

	mc := setupContext(t, e, newTestSignature(1),
		"isnotset, neg, type string, format ndjson, load rep.ndjson, value_key val, context_key c")

	tctx := detect.NewThreadCtx()
	if Match(tctx, mc, []byte("present")) {
		t.Error("isnotset matched a present key")
	}
	if !Match(tctx, mc, []byte("absent")) {
		t.Error("isnotset did not match an absent key")
	}
	if len(tctx.JSONContent()) != 0 {
		t.Errorf("isnotset produced enrichment, want none")
	}

	// The found path released its lease: the element stays lookupable.
	if Match(tctx, mc, []byte("present")) {
		t.Error("isnotset matched a present key on second evaluation")
	}
}

func TestMatch_IsNotSetTreatsLookupErrorAsAbsent(t *testing.T) {
	e := newTestEngine(t)
	issetCtx := setupContext(t, e, newTestSignature(1), "isset, sized, type md5")
	isnotsetCtx := setupContext(t, e, newTestSignature(2), "isnotset, sized, type md5")

	tctx := detect.NewThreadCtx()
	// 5 bytes can never be an md5 key: lookup errors out.
	odd := []byte{1, 2, 3, 4, 5}

	if Match(tctx, issetCtx, odd) {
		t.Error("isset matched on lookup error")
	}
	if !Match(tctx, isnotsetCtx, odd) {
		t.Error("isnotset did not match on lookup error")
	}
}
