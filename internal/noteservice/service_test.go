package noteservice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/starford/donno/internal/apperr"
	"github.com/starford/donno/internal/index"
	"github.com/starford/donno/internal/models"
	"github.com/starford/donno/internal/parser"
	"github.com/starford/donno/internal/query"
	"github.com/starford/donno/internal/storage"
	"github.com/starford/donno/internal/testutil"
)

func testService(t *testing.T, opts ...Option) (*Service, string) {
	t.Helper()
	dir, store := testutil.TestRepo(t)
	cache := testutil.TestCache(t)
	return NewService(store, cache, opts...), dir
}

func fixedClock(t *testing.T, s string) func() time.Time {
	ts := testutil.Stamp(t, s)
	return func() time.Time { return ts }
}

// seed writes four notes and one malformed file.
func seed(t *testing.T, dir string) {
	t.Helper()
	testutil.WriteNote(t, dir, "a.md", models.Note{
		Title: "Powershell Profile", Tags: []string{"ps1", "shell"}, Notebook: "/Tech/Public",
		Created: testutil.Stamp(t, "2021-06-01 00:00:00"), Updated: testutil.Stamp(t, "2022-01-10 00:00:00"),
		Body: "Set-Alias ll Get-ChildItem\n",
	})
	testutil.WriteNote(t, dir, "b.md", models.Note{
		Title: "Bash profile", Tags: []string{"sh"}, Notebook: "/Tech/Public",
		Created: testutil.Stamp(t, "2020-01-01 00:00:00"), Updated: testutil.Stamp(t, "2022-03-01 00:00:00"),
		Body: "alias ll='ls -l'\n",
	})
	testutil.WriteNote(t, dir, "c.md", models.Note{
		Title: "Groceries", Tags: []string{}, Notebook: "/Misc",
		Created: testutil.Stamp(t, "2022-01-10 00:00:00"), Updated: testutil.Stamp(t, "2022-01-10 00:00:00"),
		Body: "milk, powershell-shaped cookies",
	})
	testutil.WriteNote(t, dir, "d.md", models.Note{
		Title: "PS modules", Tags: []string{"ps1x", "ps1"}, Notebook: "/Tech/Private",
		Created: testutil.Stamp(t, "2021-01-01 00:00:00"), Updated: testutil.Stamp(t, "2021-12-31 23:59:59"),
		Body: "Install-Module via powershell gallery",
	})
	if err := os.WriteFile(filepath.Join(dir, "broken.md"), []byte("Title: only a title\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func titles(notes []models.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.Title
	}
	return out
}

func TestLoad_SortedAndSkipsMalformed(t *testing.T) {
	svc, dir := testService(t)
	seed(t, dir)

	res, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// a.md and c.md share Updated; file name order breaks the tie.
	want := []string{"Bash profile", "Powershell Profile", "Groceries", "PS modules"}
	if got := titles(res.Notes); !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	if len(res.Failed) != 1 || filepath.Base(res.Failed[0].Path) != "broken.md" {
		t.Fatalf("failed = %+v", res.Failed)
	}
	if !errors.Is(res.Failed[0].Err, parser.ErrDecode) {
		t.Errorf("failure err = %v, want ErrDecode", res.Failed[0].Err)
	}
	if res.Notes[0].Path != filepath.Join(dir, "b.md") {
		t.Errorf("path = %q", res.Notes[0].Path)
	}
}

func TestLoad_Idempotent(t *testing.T) {
	svc, dir := testService(t)
	seed(t, dir)

	first, err := svc.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.Notes, second.Notes) || first.Fingerprint != second.Fingerprint {
		t.Error("two loads of an unchanged directory differ")
	}
}

// staleListing reports checksums that do not match the files on disk.
type staleListing struct {
	*storage.FS
}

func (s staleListing) List() ([]models.FileInfo, error) {
	files, err := s.FS.List()
	for i := range files {
		files[i].Checksum = "stale"
	}
	return files, err
}

func TestLoad_FingerprintFromDecodedBytes(t *testing.T) {
	dir, store := testutil.TestRepo(t)
	seed(t, dir)
	svc := NewService(staleListing{store}, testutil.TestCache(t))

	res, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want, err := index.FingerprintStore(store)
	if err != nil {
		t.Fatal(err)
	}
	if res.Fingerprint != want {
		t.Errorf("fingerprint = %s, want digest of file contents %s", res.Fingerprint, want)
	}
}

func TestLoad_MissingDirectory(t *testing.T) {
	svc, dir := testService(t)
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Load(context.Background()); err == nil {
		t.Error("expected error listing a removed directory")
	}
}

func TestList_LimitAndIndex(t *testing.T) {
	svc, dir := testService(t)
	seed(t, dir)
	ctx := context.Background()

	res, err := svc.List(ctx, 3)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(res.Notes) != 3 || len(res.Listing.Entries) != 3 {
		t.Fatalf("got %d notes / %d entries", len(res.Notes), len(res.Listing.Entries))
	}

	n, err := svc.Resolve(ctx, 2)
	if err != nil {
		t.Fatalf("Resolve(2): %v", err)
	}
	if n.Title != "Powershell Profile" {
		t.Errorf("Resolve(2) = %q", n.Title)
	}
	if _, err := svc.Resolve(ctx, 4); !errors.Is(err, index.ErrIndexOutOfRange) {
		t.Errorf("Resolve(4) err = %v, want ErrIndexOutOfRange", err)
	}

	all, err := svc.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all.Notes) != 4 {
		t.Errorf("List(0) = %d notes, want 4", len(all.Notes))
	}
}

func TestSearch_And(t *testing.T) {
	svc, dir := testService(t)
	seed(t, dir)
	ctx := context.Background()

	res, err := svc.Search(ctx, []string{"powershell", "ta:ps1:w"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []string{"Powershell Profile", "PS modules"}
	if got := titles(res.Notes); !reflect.DeepEqual(got, want) {
		t.Errorf("matches = %v, want %v", got, want)
	}
	if len(res.Failed) != 1 {
		t.Errorf("failed = %d, want 1", len(res.Failed))
	}

	p, err := svc.ResolvePath(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(p) != "d.md" {
		t.Errorf("ResolvePath(2) = %q, want d.md", p)
	}
}

func TestSearch_TimeTerms(t *testing.T) {
	svc, dir := testService(t)
	seed(t, dir)

	res, err := svc.Search(context.Background(), []string{"cr:2021:B", "up:2022-01-10 00:00:01:b"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []string{"Powershell Profile", "Groceries", "PS modules"}
	if got := titles(res.Notes); !reflect.DeepEqual(got, want) {
		t.Errorf("matches = %v, want %v", got, want)
	}
}

func TestSearch_BadPatternKeepsOldIndex(t *testing.T) {
	svc, dir := testService(t)
	seed(t, dir)
	ctx := context.Background()

	if _, err := svc.List(ctx, 0); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Search(ctx, []string{"powershell", "ti:x:B"})
	if !errors.Is(err, query.ErrFieldFlagMismatch) {
		t.Fatalf("err = %v, want ErrFieldFlagMismatch", err)
	}
	n, err := svc.Resolve(ctx, 4)
	if err != nil || n.Title != "PS modules" {
		t.Errorf("previous listing should survive a failed search: %v, %v", n, err)
	}
}

func TestResolve_NoListing(t *testing.T) {
	svc, _ := testService(t)
	if _, err := svc.Resolve(context.Background(), 1); !errors.Is(err, index.ErrStaleIndex) {
		t.Errorf("err = %v, want ErrStaleIndex", err)
	}
}

func TestResolve_StrictDetectsChange(t *testing.T) {
	ctx := context.Background()
	svc, dir := testService(t, WithStrictIndex(true))
	seed(t, dir)

	if _, err := svc.List(ctx, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Resolve(ctx, 1); err != nil {
		t.Fatalf("fresh Resolve: %v", err)
	}

	testutil.WriteNote(t, dir, "e.md", models.Note{Title: "new", Notebook: "/Misc"})
	if _, err := svc.Resolve(ctx, 1); !errors.Is(err, index.ErrStaleIndex) {
		t.Errorf("err = %v, want ErrStaleIndex", err)
	}
}

func TestResolve_DeletedFile(t *testing.T) {
	ctx := context.Background()
	svc, dir := testService(t)
	seed(t, dir)

	if _, err := svc.List(ctx, 0); err != nil {
		t.Fatal(err)
	}
	_ = os.Remove(filepath.Join(dir, "b.md"))
	if _, err := svc.Resolve(ctx, 1); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCreate_NamesAndCollision(t *testing.T) {
	ctx := context.Background()
	svc, dir := testService(t, WithClock(fixedClock(t, "2023-04-05 06:07:08")))

	draft := models.Note{Title: "first", Tags: []string{"x"}, Notebook: "/Misc", Body: "hello\n"}
	p1, err := svc.Create(ctx, draft)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	draft.Title = "second"
	p2, err := svc.Create(ctx, draft)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p1 != filepath.Join(dir, "20230405-060708.md") {
		t.Errorf("p1 = %q", p1)
	}
	if p2 != filepath.Join(dir, "20230405-060708-1.md") {
		t.Errorf("p2 = %q", p2)
	}

	n, err := svc.Read(ctx, p1)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	stamp := testutil.Stamp(t, "2023-04-05 06:07:08")
	if n.Title != "first" || !n.Created.Equal(stamp) || !n.Updated.Equal(stamp) || n.Body != "hello\n" {
		t.Errorf("created note = %+v", n)
	}
}

func TestCreate_Invalid(t *testing.T) {
	svc, dir := testService(t)
	_, err := svc.Create(context.Background(), models.Note{Title: "t", Notebook: "/Misc", Tags: []string{"a; b"}})
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("invalid draft left %d files behind", len(entries))
	}
}

func TestTouch_PreservesBody(t *testing.T) {
	ctx := context.Background()
	svc, dir := testService(t, WithClock(fixedClock(t, "2024-02-02 02:02:02")))
	seed(t, dir)
	path := filepath.Join(dir, "a.md")
	before, _ := os.ReadFile(path)

	n, err := svc.Touch(ctx, path, svc.MarkUpdated())
	if err != nil {
		t.Fatalf("Touch: %v", err)
	}
	if !n.Updated.Equal(testutil.Stamp(t, "2024-02-02 02:02:02")) {
		t.Errorf("updated = %v", n.Updated)
	}
	after, _ := os.ReadFile(path)
	want := strings.Replace(string(before), "Updated: 2022-01-10 00:00:00", "Updated: 2024-02-02 02:02:02", 1)
	if string(after) != want {
		t.Errorf("rewritten file:\n%q\nwant\n%q", after, want)
	}
}

func TestTouch_MalformedFile(t *testing.T) {
	svc, dir := testService(t)
	seed(t, dir)
	_, err := svc.Touch(context.Background(), filepath.Join(dir, "broken.md"), svc.MarkUpdated())
	if !errors.Is(err, parser.ErrDecode) {
		t.Errorf("err = %v, want ErrDecode", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, dir := testService(t)
	seed(t, dir)

	if err := svc.Delete(ctx, filepath.Join(dir, "c.md")); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, filepath.Join(dir, "c.md")); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestNotebooks(t *testing.T) {
	svc, dir := testService(t)
	seed(t, dir)

	got, err := svc.Notebooks(context.Background())
	if err != nil {
		t.Fatalf("Notebooks: %v", err)
	}
	want := []NotebookCount{
		{Notebook: "/Misc", Notes: 1},
		{Notebook: "/Tech/Private", Notes: 1},
		{Notebook: "/Tech/Public", Notes: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("notebooks = %+v, want %+v", got, want)
	}
}
