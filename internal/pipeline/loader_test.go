package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/theirongolddev/ocstats/internal/model"
	"github.com/theirongolddev/ocstats/internal/store"
)

func writeFile(t testing.TB, dataDir, session, name, body string) string {
	t.Helper()
	dir := filepath.Join(dataDir, "message", session)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func assistantJSON(id, session string, created int64, cost float64, input int64) string {
	return fmt.Sprintf(`{"id":%q,"sessionID":%q,"role":"assistant","time":{"created":%d},`+
		`"providerID":"openai","modelID":"gpt-5","cost":%v,`+
		`"tokens":{"input":%d,"output":0,"reasoning":0,"cache":{"read":0,"write":0}}}`,
		id, session, created, cost, input)
}

// seedDataDir lays out a small data dir:
//
//	ses_a/1.json  valid msg_1
//	ses_a/2.json  valid msg_2
//	ses_a/3.json  user message (skipped)
//	ses_b/1.json  duplicate of msg_1
//	ses_b/2.json  broken JSON
//	ses_b/3.txt   ignored
func seedDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "ses_a", "1.json", assistantJSON("msg_1", "ses_a", 1000, 1.25, 10))
	writeFile(t, dir, "ses_a", "2.json", assistantJSON("msg_2", "ses_a", 2000, 2.75, 20))
	writeFile(t, dir, "ses_a", "3.json", `{"id":"msg_3","sessionID":"ses_a","role":"user","time":{"created":3000}}`)
	writeFile(t, dir, "ses_b", "1.json", assistantJSON("msg_1", "ses_b", 9000, 100, 999))
	writeFile(t, dir, "ses_b", "2.json", `{"id":`)
	writeFile(t, dir, "ses_b", "3.txt", "not a message")
	return dir
}

// counters returns r without its Unreadable list, for direct comparison.
func counters(r LoadResult) LoadResult {
	r.Unreadable = nil
	return r
}

func unreadablePaths(r LoadResult) []string {
	paths := make([]string, len(r.Unreadable))
	for i, fe := range r.Unreadable {
		paths[i] = fe.Path
	}
	return paths
}

type visited struct {
	ids  []string
	cost float64
}

func (v *visited) visit(msg model.Message) {
	v.ids = append(v.ids, msg.ID)
	v.cost += msg.Cost
}

func TestLoad_CountsAndDedup(t *testing.T) {
	dir := seedDataDir(t)

	var v visited
	var mu sync.Mutex
	var lastProgress, progressTotal int
	result, err := Load(context.Background(), dir, v.visit, func(cur, total int) {
		mu.Lock()
		defer mu.Unlock()
		lastProgress = max(lastProgress, cur)
		progressTotal = total
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := LoadResult{
		TotalFiles:   5,
		Messages:     2,
		Skipped:      1,
		Duplicates:   1,
		FileErrors:   1,
		SessionCount: 2,
	}
	if got := counters(*result); !reflect.DeepEqual(got, want) {
		t.Errorf("result = %+v, want %+v", got, want)
	}
	broken := filepath.Join(dir, "message", "ses_b", "2.json")
	if got := unreadablePaths(*result); !reflect.DeepEqual(got, []string{broken}) {
		t.Errorf("unreadable = %v, want [%s]", got, broken)
	}
	if result.Unreadable[0].Err == nil {
		t.Error("unreadable entry has no error")
	}
	if !reflect.DeepEqual(v.ids, []string{"msg_1", "msg_2"}) {
		t.Errorf("visited = %v, want [msg_1 msg_2]", v.ids)
	}
	// The first-seen msg_1 (ses_a) wins over the ses_b duplicate.
	if v.cost != 4 {
		t.Errorf("visited cost = %v, want 4", v.cost)
	}
	if lastProgress != 5 || progressTotal != 5 {
		t.Errorf("progress = %d/%d, want 5/5", lastProgress, progressTotal)
	}
}

func TestLoad_MissingDataDir(t *testing.T) {
	result, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope"), nil, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if result.TotalFiles != 0 || result.Messages != 0 {
		t.Errorf("result = %+v, want empty", *result)
	}
}

func TestLoad_ManyBatchesKeepFileOrder(t *testing.T) {
	dir := t.TempDir()
	const n = BatchSize*2 + 7
	var want []string
	for i := range n {
		id := fmt.Sprintf("msg_%04d", i)
		writeFile(t, dir, "ses", id+".json", assistantJSON(id, "ses", int64(i), 0, 1))
		want = append(want, id)
	}

	var v visited
	result, err := Load(context.Background(), dir, v.visit, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if result.Messages != n {
		t.Errorf("Messages = %d, want %d", result.Messages, n)
	}
	if !reflect.DeepEqual(v.ids, want) {
		t.Error("visit order does not match file order")
	}
}

func TestLoad_CancelledContext(t *testing.T) {
	dir := seedDataDir(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, dir, nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestLoad_MessagePathIsFile(t *testing.T) {
	dir := t.TempDir()
	// A file where the message directory should be is treated as no data.
	if err := os.WriteFile(filepath.Join(dir, "message"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	result, err := Load(context.Background(), dir, nil, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if result.TotalFiles != 0 {
		t.Errorf("TotalFiles = %d, want 0", result.TotalFiles)
	}
}

func TestLoad_UnreadableSessionDirFails(t *testing.T) {
	dir := seedDataDir(t)
	sesDir := filepath.Join(dir, "message", "ses_b")
	if err := os.Chmod(sesDir, 0); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(sesDir, 0o750) })
	if _, err := os.ReadDir(sesDir); err == nil {
		t.Skip("directory permissions are not enforced for this user")
	}

	_, err := Load(context.Background(), dir, nil, nil)
	if !errors.Is(err, ErrDataLoad) {
		t.Fatalf("Load err = %v, want ErrDataLoad", err)
	}

	_, err = LoadWithCache(context.Background(), dir, openCache(t), nil, nil)
	if !errors.Is(err, ErrDataLoad) {
		t.Fatalf("LoadWithCache err = %v, want ErrDataLoad", err)
	}
}

func openCache(t *testing.T) *store.Cache {
	t.Helper()
	c, err := store.Open(filepath.Join(t.TempDir(), "messages.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestLoadWithCache_MatchesLoad(t *testing.T) {
	dir := seedDataDir(t)
	cache := openCache(t)

	var plain visited
	want, err := Load(context.Background(), dir, plain.visit, nil)
	if err != nil {
		t.Fatal(err)
	}

	for run := 1; run <= 2; run++ {
		var v visited
		got, err := LoadWithCache(context.Background(), dir, cache, v.visit, nil)
		if err != nil {
			t.Fatalf("run %d: LoadWithCache: %v", run, err)
		}
		if !reflect.DeepEqual(counters(got.LoadResult), counters(*want)) {
			t.Errorf("run %d: result = %+v, want %+v", run, got.LoadResult, *want)
		}
		if !reflect.DeepEqual(unreadablePaths(got.LoadResult), unreadablePaths(*want)) {
			t.Errorf("run %d: unreadable = %v, want %v", run, unreadablePaths(got.LoadResult), unreadablePaths(*want))
		}
		if !reflect.DeepEqual(v.ids, plain.ids) || v.cost != plain.cost {
			t.Errorf("run %d: visited %v (cost %v), want %v (cost %v)", run, v.ids, v.cost, plain.ids, plain.cost)
		}

		switch run {
		case 1:
			if got.CacheHits != 0 || got.Reparsed != 5 {
				t.Errorf("cold run: hits=%d reparsed=%d, want 0/5", got.CacheHits, got.Reparsed)
			}
		case 2:
			// The broken file is never cached, so it is parsed every time.
			if got.CacheHits != 4 || got.Reparsed != 1 {
				t.Errorf("warm run: hits=%d reparsed=%d, want 4/1", got.CacheHits, got.Reparsed)
			}
		}
	}
}

func TestLoadWithCache_ReparsesChangedAndPrunesDeleted(t *testing.T) {
	dir := seedDataDir(t)
	cache := openCache(t)
	ctx := context.Background()

	if _, err := LoadWithCache(ctx, dir, cache, nil, nil); err != nil {
		t.Fatal(err)
	}

	// Rewrite msg_2 with a different size and drop the user message file.
	writeFile(t, dir, "ses_a", "2.json", assistantJSON("msg_2", "ses_a", 2000, 10.5, 12345))
	if err := os.Remove(filepath.Join(dir, "message", "ses_a", "3.json")); err != nil {
		t.Fatal(err)
	}

	var v visited
	got, err := LoadWithCache(ctx, dir, cache, v.visit, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Pruned != 1 {
		t.Errorf("Pruned = %d, want 1", got.Pruned)
	}
	if got.Reparsed != 2 {
		t.Errorf("Reparsed = %d, want 2 (changed + broken)", got.Reparsed)
	}
	if got.TotalFiles != 4 || got.Skipped != 0 {
		t.Errorf("TotalFiles=%d Skipped=%d, want 4/0", got.TotalFiles, got.Skipped)
	}
	if v.cost != 1.25+10.5 {
		t.Errorf("visited cost = %v, want %v", v.cost, 1.25+10.5)
	}

	tracked, err := cache.GetTrackedFiles()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tracked[filepath.Join(dir, "message", "ses_a", "3.json")]; ok {
		t.Error("deleted file still tracked")
	}
}

func TestLoadWithCache_FeedsAccumulator(t *testing.T) {
	dir := seedDataDir(t)
	cache := openCache(t)

	acc, err := NewOverallAccumulator(model.FilterOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := LoadWithCache(context.Background(), dir, cache, acc.Consume, nil); err != nil {
		t.Fatal(err)
	}

	got := acc.Result()
	if got.TotalRequests != 2 || got.TotalCost != 4 || got.InputTokens != 30 {
		t.Errorf("Result() = %+v, want 2 requests, cost 4, 30 input tokens", got)
	}
}
