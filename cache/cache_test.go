package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// entryPath resolves the on-disk location of a key the same way the local
// store does, so tests can backdate timestamps directly.
func entryPath(t *testing.T, root, key string) string {
	t.Helper()

	rel, ok := ValidateKey(key)
	if !ok {
		t.Fatalf("ValidateKey(%q) rejected", key)
	}
	return filepath.Join(root, filepath.FromSlash(rel))
}

func TestCache_RoundTrip(t *testing.T) {
	c := New(t.TempDir(), 0, 0)
	if !c.Enabled() {
		t.Fatal("Expected cache to initialize")
	}
	defer c.Close(t.Context())

	if !c.Write(t.Context(), "themes/my-theme.zip", []byte("payload")) {
		t.Fatal("Write failed")
	}

	data, ok := c.Read(t.Context(), "themes/my-theme.zip", 0)
	if !ok {
		t.Fatal("Read missed a fresh entry")
	}
	if !bytes.Equal(data, []byte("payload")) {
		t.Errorf("Read returned %q", data)
	}

	if !c.Remove(t.Context(), "themes/my-theme.zip") {
		t.Fatal("Remove failed")
	}
	if _, ok := c.Read(t.Context(), "themes/my-theme.zip", 0); ok {
		t.Error("Read hit after Remove")
	}
}

func TestCache_Disabled(t *testing.T) {
	// A plain file as root makes MkdirAll fail, degrading the cache.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	c := New(blocker, 0, 0)
	if c.Enabled() {
		t.Fatal("Expected cache to degrade to a no-op")
	}

	if c.Write(t.Context(), "key", []byte("x")) {
		t.Error("Disabled cache must not accept writes")
	}
	if _, ok := c.Read(t.Context(), "key", 0); ok {
		t.Error("Disabled cache must not answer reads")
	}
	if _, ok := c.Has(t.Context(), "key", 0); ok {
		t.Error("Disabled cache must not report entries")
	}
	if c.Clean(t.Context()) {
		t.Error("Disabled cache must not clean")
	}
	if err := c.Close(t.Context()); err != nil {
		t.Errorf("Close on a disabled cache must be a no-op, got %v", err)
	}
}

func TestCache_InvalidKey(t *testing.T) {
	c := New(t.TempDir(), 0, 0)
	defer c.Close(t.Context())

	if c.Write(t.Context(), "///", []byte("x")) {
		t.Error("Unmappable key must be rejected")
	}
	if _, ok := c.Has(t.Context(), "", 0); ok {
		t.Error("Empty key must be rejected")
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	root := t.TempDir()
	c := New(root, time.Hour, 0)
	defer c.Close(t.Context())

	c.Write(t.Context(), "stale", []byte("old"))
	c.Write(t.Context(), "fresh", []byte("new"))

	// Backdate one entry past the TTL.
	past := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(entryPath(t, root, "stale"), past, past); err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Has(t.Context(), "fresh", 0); !ok {
		t.Error("Fresh entry must hit")
	}
	if _, ok := c.Has(t.Context(), "stale", 0); ok {
		t.Error("Stale entry must miss")
	}

	// The stale miss under the default TTL deletes the file eagerly.
	if _, err := os.Stat(entryPath(t, root, "stale")); !os.IsNotExist(err) {
		t.Error("Stale entry must be removed on miss")
	}
}

func TestCache_TightenedOverrideKeepsEntry(t *testing.T) {
	root := t.TempDir()
	c := New(root, time.Hour, 0)
	defer c.Close(t.Context())

	c.Write(t.Context(), "entry", []byte("x"))

	past := time.Now().Add(-30 * time.Minute)
	if err := os.Chtimes(entryPath(t, root, "entry"), past, past); err != nil {
		t.Fatal(err)
	}

	// Stale by the tightened override, still fresh by the default TTL.
	if _, ok := c.Has(t.Context(), "entry", time.Minute); ok {
		t.Error("Entry must miss under the tightened override")
	}
	if _, err := os.Stat(entryPath(t, root, "entry")); err != nil {
		t.Error("Tightened-override miss must leave the entry in place")
	}

	if _, ok := c.Has(t.Context(), "entry", 0); !ok {
		t.Error("Entry must still hit under the default TTL")
	}
}

func TestCache_CleanTTLSweep(t *testing.T) {
	root := t.TempDir()
	c := New(root, time.Hour, 0)
	defer c.Close(t.Context())

	c.Write(t.Context(), "stale", []byte("old"))
	c.Write(t.Context(), "fresh", []byte("new"))

	past := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(entryPath(t, root, "stale"), past, past); err != nil {
		t.Fatal(err)
	}

	if !c.Clean(t.Context()) {
		t.Fatal("Clean failed")
	}

	if _, err := os.Stat(entryPath(t, root, "stale")); !os.IsNotExist(err) {
		t.Error("Clean must delete expired entries")
	}
	if _, err := os.Stat(entryPath(t, root, "fresh")); err != nil {
		t.Error("Clean must keep fresh entries")
	}

	// A second run over the already-clean root is a no-op.
	if !c.Clean(t.Context()) {
		t.Error("Clean must be idempotent")
	}
}

func TestCache_CleanSizeEviction(t *testing.T) {
	root := t.TempDir()
	c := New(root, 0, 1000)
	defer c.Close(t.Context())

	payload := bytes.Repeat([]byte("x"), 400)
	now := time.Now()

	for i, key := range []string{"oldest", "middle", "newest"} {
		c.Write(t.Context(), key, payload)

		// Spread the access times one minute apart, oldest first.
		atime := now.Add(time.Duration(i-2) * time.Minute)
		if err := os.Chtimes(entryPath(t, root, key), atime, atime); err != nil {
			t.Fatal(err)
		}
	}

	if !c.Clean(t.Context()) {
		t.Fatal("Clean failed")
	}

	// Two entries fit the budget; the least recently accessed goes.
	if _, err := os.Stat(entryPath(t, root, "oldest")); !os.IsNotExist(err) {
		t.Error("Least recently accessed entry must be evicted")
	}
	for _, key := range []string{"middle", "newest"} {
		if _, err := os.Stat(entryPath(t, root, key)); err != nil {
			t.Errorf("Entry %q must survive eviction: %v", key, err)
		}
	}
}

func TestCache_DataRoundTrip(t *testing.T) {
	c := New(t.TempDir(), 0, 0)
	defer c.Close(t.Context())

	type record struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	if !c.PutData(t.Context(), "records/sample", record{Name: "site1", Count: 3}) {
		t.Fatal("PutData failed")
	}

	var got record
	if !c.GetData(t.Context(), "records/sample", &got, 0) {
		t.Fatal("GetData missed")
	}
	if got.Name != "site1" || got.Count != 3 {
		t.Errorf("GetData returned %+v", got)
	}

	var other record
	if c.GetData(t.Context(), "records/absent", &other, 0) {
		t.Error("GetData must miss an absent entry")
	}
}

func TestCache_ImportExport(t *testing.T) {
	work := t.TempDir()
	c := New(t.TempDir(), 0, 0)
	defer c.Close(t.Context())

	source := filepath.Join(work, "source.txt")
	if err := os.WriteFile(source, []byte("content"), 0644); err != nil {
		t.Fatal(err)
	}

	if !c.Import(t.Context(), "files/source.txt", source) {
		t.Fatal("Import failed")
	}

	dest := filepath.Join(work, "nested", "dir", "dest.txt")
	if !c.Export(t.Context(), "files/source.txt", dest) {
		t.Fatal("Export failed")
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte("content")) {
		t.Errorf("Export wrote %q", data)
	}

	if c.Import(t.Context(), "files/missing", filepath.Join(work, "missing")) {
		t.Error("Import of a missing source must fail")
	}
	if c.Export(t.Context(), "files/missing", dest) {
		t.Error("Export of a missing entry must fail")
	}
}

func TestCache_Entries(t *testing.T) {
	c := New(t.TempDir(), 0, 0)
	defer c.Close(t.Context())

	c.Write(t.Context(), "a", []byte("12"))
	c.Write(t.Context(), "sub/b", []byte("3456"))

	entries, ok := c.Entries(t.Context())
	if !ok {
		t.Fatal("Entries failed")
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}

	var total int64
	keys := make(map[string]bool)
	for _, entry := range entries {
		total += entry.Size
		keys[entry.Key] = true
	}
	if total != 6 {
		t.Errorf("Expected total size 6, got %d", total)
	}
	if !keys["a"] || !keys["sub/b"] {
		t.Errorf("Unexpected keys %v", keys)
	}
}
