package instance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/FranksOps/seedwatch/internal/stats"
	"github.com/FranksOps/seedwatch/internal/storage"
)

const stockMemberPage = `<html><body>
<a href="userdetails.php?id=9527"><b>frank</b></a>
<font class="color_uploaded">Upload</font> 2 TiB
<font class="color_downloaded">Download</font> 512 GiB
<img class="arrowup"> 42
<img class="arrowdown"> 0
</body></html>`

func waitForLatest(t *testing.T, inst *Instance) *stats.Record {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		if rec := inst.Latest(); rec != nil {
			return rec
		}
		select {
		case <-deadline:
			t.Fatal("immediate refresh never completed")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRegistryCreateRefreshesImmediately(t *testing.T) {
	store := &memStore{}
	src := &pageSource{pages: map[string]string{"https://chdbits.co/": stockMemberPage}}
	reg := NewRegistry(src, store, nil)
	defer reg.Close()

	inst, err := reg.Create(context.Background(), SiteConfig{Site: "CHDBits", Cookie: "pass=abc"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	rec := waitForLatest(t, inst)
	if rec.Username != "frank" {
		t.Errorf("Username = %q, want frank", rec.Username)
	}
	if rec.Upload <= 0 {
		t.Errorf("Upload = %d, want positive", rec.Upload)
	}
	if store.count() != 1 {
		t.Errorf("store holds %d snapshots, want 1", store.count())
	}

	got, ok := reg.Get("CHDBits")
	if !ok || got != inst {
		t.Error("Get did not return the created instance")
	}
	if sites := reg.Sites(); len(sites) != 1 || sites[0] != "CHDBits" {
		t.Errorf("Sites = %v", sites)
	}
}

func TestRegistryCreateUnknownSite(t *testing.T) {
	reg := NewRegistry(&nullSource{}, &memStore{}, nil)
	defer reg.Close()

	_, err := reg.Create(context.Background(), SiteConfig{Site: "NoSuchSite"})
	if !errors.Is(err, ErrNoAdapter) {
		t.Fatalf("err = %v, want ErrNoAdapter", err)
	}
}

func TestRegistryCreateInvalidSchedule(t *testing.T) {
	reg := NewRegistry(&nullSource{}, &memStore{}, nil)
	defer reg.Close()

	_, err := reg.Create(context.Background(), SiteConfig{Site: "CHDBits", Schedule: "not a cron line"})
	if err == nil {
		t.Fatal("Create should reject an unparseable schedule")
	}
	if _, ok := reg.Get("CHDBits"); ok {
		t.Error("failed creation left an instance behind")
	}
}

func TestRegistryFailedReplacementKeepsPrior(t *testing.T) {
	src := &pageSource{pages: map[string]string{"https://chdbits.co/": stockMemberPage}}
	reg := NewRegistry(src, &memStore{}, nil)
	defer reg.Close()

	first, err := reg.Create(context.Background(), SiteConfig{Site: "CHDBits", Cookie: "old"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := reg.Create(context.Background(), SiteConfig{Site: "CHDBits", Cookie: "new", Schedule: "not a cron line"}); err == nil {
		t.Fatal("Create should reject an unparseable schedule")
	}

	got, ok := reg.Get("CHDBits")
	if !ok || got != first {
		t.Error("failed replacement evicted the running instance")
	}
	if entries := reg.cron.Entries(); len(entries) != 1 {
		t.Errorf("scheduler holds %d entries, want the prior one intact", len(entries))
	}
	if err := reg.Destroy("CHDBits"); err != nil {
		t.Errorf("Destroy after failed replacement: %v", err)
	}
	if entries := reg.cron.Entries(); len(entries) != 0 {
		t.Errorf("scheduler holds %d entries after Destroy, want 0", len(entries))
	}
}

func TestRegistrySeedsLatestFromStore(t *testing.T) {
	store := &memStore{}
	seeded := &storage.Snapshot{
		ID:    "prior",
		Site:  "CHDBits",
		Stats: stats.Record{Username: "frank", Upload: 99, UpdateTime: 1700000000},
	}
	if err := store.Append(context.Background(), seeded); err != nil {
		t.Fatalf("Append: %v", err)
	}

	// The source fails, so the seeded record is all the instance has.
	reg := NewRegistry(&nullSource{}, store, nil)
	defer reg.Close()

	inst, err := reg.Create(context.Background(), SiteConfig{Site: "CHDBits"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	rec := inst.Latest()
	if rec == nil || rec.Upload != 99 {
		t.Fatalf("latest = %+v, want seeded record", rec)
	}
}

func TestRegistryDestroy(t *testing.T) {
	src := &pageSource{pages: map[string]string{"https://chdbits.co/": stockMemberPage}}
	reg := NewRegistry(src, &memStore{}, nil)
	defer reg.Close()

	if _, err := reg.Create(context.Background(), SiteConfig{Site: "CHDBits"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := reg.Destroy("CHDBits"); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if _, ok := reg.Get("CHDBits"); ok {
		t.Error("instance still present after Destroy")
	}
	if err := reg.Destroy("CHDBits"); !errors.Is(err, ErrUnknownSite) {
		t.Errorf("second Destroy err = %v, want ErrUnknownSite", err)
	}
}

func TestRegistryCreateReplacesPrior(t *testing.T) {
	src := &pageSource{pages: map[string]string{"https://chdbits.co/": stockMemberPage}}
	reg := NewRegistry(src, &memStore{}, nil)
	defer reg.Close()

	first, err := reg.Create(context.Background(), SiteConfig{Site: "CHDBits", Cookie: "old"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := reg.Create(context.Background(), SiteConfig{Site: "CHDBits", Cookie: "new"})
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if first == second {
		t.Fatal("Create did not build a fresh instance")
	}

	got, ok := reg.Get("CHDBits")
	if !ok || got != second {
		t.Error("registry still serves the replaced instance")
	}
	if sites := reg.Sites(); len(sites) != 1 {
		t.Errorf("Sites = %v, want exactly one entry", sites)
	}
}

func TestRegistrySearchAll(t *testing.T) {
	src := &pageSource{pages: map[string]string{"https://chdbits.co/": stockMemberPage}}
	reg := NewRegistry(src, &memStore{}, nil)
	defer reg.Close()

	// CHDBits has no search adapter: the fleet search still answers for
	// it with an empty listing.
	if _, err := reg.Create(context.Background(), SiteConfig{Site: "CHDBits"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	results := reg.SearchAll(context.Background(), "anything")
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Site != "CHDBits" || len(results[0].Torrents) != 0 {
		t.Errorf("result = %+v", results[0])
	}
}
