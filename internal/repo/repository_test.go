package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/crudbase/go-crud-backend/internal/domain"
)

// plainNote declares no soft-delete flag; soft deletes must be rejected.
type plainNote struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Body string `json:"body"`
}

func (n plainNote) GetID() uint { return n.ID }

func newTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Author{}, &domain.Tag{}, &domain.Post{}, &plainNote{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedAuthor(t *testing.T, r *Repository[domain.Author], name, email string) *domain.Author {
	t.Helper()
	a, err := r.Create(context.Background(), map[string]any{"name": name, "email": email})
	if err != nil {
		t.Fatalf("seed author %s: %v", email, err)
	}
	return a
}

func TestCreate_FromMap(t *testing.T) {
	r := New[domain.Author](newTestDB(t, "repo_create"))
	ctx := context.Background()

	a, err := r.Create(ctx, map[string]any{
		"id":      999, // never writable
		"name":    "Ada",
		"email":   "ada@example.com",
		"bogus":   "dropped silently",
		"website": "https://ada.example.com",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.ID == 0 || a.ID == 999 {
		t.Fatalf("ID = %d, want generated key", a.ID)
	}
	if a.CreatedAt.IsZero() {
		t.Fatalf("CreatedAt not set")
	}
	if a.UpdatedAt != nil {
		t.Fatalf("UpdatedAt must stay nil until first update, got %v", a.UpdatedAt)
	}
	if a.Website == nil || *a.Website != "https://ada.example.com" {
		t.Fatalf("Website = %v", a.Website)
	}
}

func TestCreate_DuplicateEmailIsConflict(t *testing.T) {
	r := New[domain.Author](newTestDB(t, "repo_conflict"))
	ctx := context.Background()

	seedAuthor(t, r, "Ada", "dup@example.com")
	_, err := r.Create(ctx, map[string]any{"name": "Imposter", "email": "dup@example.com"})
	if err == nil {
		t.Fatalf("expected conflict")
	}
	if !IsConflict(err) {
		t.Fatalf("err = %v, want KindConflict", err)
	}
}

func TestCreateMany_Atomic(t *testing.T) {
	r := New[domain.Author](newTestDB(t, "repo_bulk"))
	ctx := context.Background()

	_, err := r.CreateMany(ctx, []map[string]any{
		{"name": "One", "email": "one@example.com"},
		{"name": "Two", "email": "one@example.com"}, // duplicate, forces rollback
	})
	if !IsConflict(err) {
		t.Fatalf("err = %v, want conflict", err)
	}

	n, err := r.Count(ctx, true, nil)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Fatalf("batch must roll back entirely, found %d rows", n)
	}

	got, err := r.CreateMany(ctx, []map[string]any{
		{"name": "One", "email": "one@example.com"},
		{"name": "Two", "email": "two@example.com"},
	})
	if err != nil {
		t.Fatalf("CreateMany: %v", err)
	}
	if len(got) != 2 || got[0].ID == 0 || got[1].ID == 0 {
		t.Fatalf("unexpected batch result: %+v", got)
	}
}

func TestGet_SoftDeleteVisibility(t *testing.T) {
	r := New[domain.Author](newTestDB(t, "repo_visibility"))
	ctx := context.Background()

	a := seedAuthor(t, r, "Ada", "ada@example.com")

	if found, err := r.SoftDelete(ctx, a.ID); err != nil || !found {
		t.Fatalf("SoftDelete = %v, %v", found, err)
	}

	if _, err := r.Get(ctx, a.ID, false, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after soft delete: err = %v, want ErrNotFound", err)
	}
	got, err := r.Get(ctx, a.ID, true, nil)
	if err != nil {
		t.Fatalf("Get include_deleted: %v", err)
	}
	if !got.IsDeleted {
		t.Fatalf("flag not persisted: %+v", got)
	}

	// Counts follow the same filter.
	if n, _ := r.Count(ctx, false, nil); n != 0 {
		t.Fatalf("visible count = %d", n)
	}
	if n, _ := r.Count(ctx, true, nil); n != 1 {
		t.Fatalf("total count = %d", n)
	}
}

func TestSoftDeleteRestore_Lifecycle(t *testing.T) {
	r := New[domain.Author](newTestDB(t, "repo_lifecycle"))
	ctx := context.Background()

	a := seedAuthor(t, r, "Ada", "ada@example.com")

	// Missing ids report false without error.
	if found, err := r.SoftDelete(ctx, 4242); err != nil || found {
		t.Fatalf("SoftDelete missing = %v, %v", found, err)
	}
	if found, err := r.Restore(ctx, 4242); err != nil || found {
		t.Fatalf("Restore missing = %v, %v", found, err)
	}

	// Restoring a never-deleted row succeeds and keeps it visible.
	if found, err := r.Restore(ctx, a.ID); err != nil || !found {
		t.Fatalf("Restore visible = %v, %v", found, err)
	}
	if _, err := r.Get(ctx, a.ID, false, nil); err != nil {
		t.Fatalf("row vanished after no-op restore: %v", err)
	}

	// Full cycle.
	if _, err := r.SoftDelete(ctx, a.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if found, err := r.Restore(ctx, a.ID); err != nil || !found {
		t.Fatalf("Restore = %v, %v", found, err)
	}
	got, err := r.Get(ctx, a.ID, false, nil)
	if err != nil || got.IsDeleted {
		t.Fatalf("restore did not clear flag: %+v, %v", got, err)
	}
}

func TestSoftDelete_RequiresFlag(t *testing.T) {
	r := New[plainNote](newTestDB(t, "repo_noflag"))

	_, err := r.SoftDelete(context.Background(), 1)
	if !IsKind(err, KindConfig) {
		t.Fatalf("err = %v, want KindConfig", err)
	}
	_, err = r.Restore(context.Background(), 1)
	if !IsKind(err, KindConfig) {
		t.Fatalf("restore err = %v, want KindConfig", err)
	}
}

func TestForceDelete_IgnoresSoftState(t *testing.T) {
	r := New[domain.Author](newTestDB(t, "repo_force"))
	ctx := context.Background()

	a := seedAuthor(t, r, "Ada", "ada@example.com")
	if _, err := r.SoftDelete(ctx, a.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	found, err := r.ForceDelete(ctx, a.ID)
	if err != nil || !found {
		t.Fatalf("ForceDelete = %v, %v", found, err)
	}
	if _, err := r.Get(ctx, a.ID, true, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("row still present: %v", err)
	}
	if found, _ := r.ForceDelete(ctx, a.ID); found {
		t.Fatalf("second ForceDelete must report false")
	}
}

func TestForceDeleteMany(t *testing.T) {
	r := New[domain.Author](newTestDB(t, "repo_forcemany"))
	ctx := context.Background()

	a := seedAuthor(t, r, "A", "a@example.com")
	b := seedAuthor(t, r, "B", "b@example.com")
	seedAuthor(t, r, "C", "c@example.com")

	n, err := r.ForceDeleteMany(ctx, []uint{a.ID, b.ID, 9999})
	if err != nil {
		t.Fatalf("ForceDeleteMany: %v", err)
	}
	if n != 2 {
		t.Fatalf("affected = %d, want 2 (missing ids skipped)", n)
	}
	if total, _ := r.Count(ctx, true, nil); total != 1 {
		t.Fatalf("remaining = %d", total)
	}

	if n, err := r.ForceDeleteMany(ctx, nil); err != nil || n != 0 {
		t.Fatalf("empty batch = %d, %v", n, err)
	}
}

func TestUpdate_PartialSemantics(t *testing.T) {
	r := New[domain.Author](newTestDB(t, "repo_update"))
	ctx := context.Background()

	a := seedAuthor(t, r, "Ada", "ada@example.com")

	// Empty payloads and payloads of only unknown keys never reach storage.
	if _, err := r.Update(ctx, a.ID, map[string]any{}); !IsKind(err, KindValidation) {
		t.Fatalf("empty update err = %v, want KindValidation", err)
	}
	if _, err := r.Update(ctx, a.ID, map[string]any{"bogus": 1}); !IsKind(err, KindValidation) {
		t.Fatalf("unknown-only update err = %v, want KindValidation", err)
	}

	got, err := r.Update(ctx, a.ID, map[string]any{"id": 777, "name": "Ada Lovelace"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.ID != a.ID {
		t.Fatalf("primary key changed: %d", got.ID)
	}
	if got.Name != "Ada Lovelace" {
		t.Fatalf("Name = %q", got.Name)
	}
	if got.Email != "ada@example.com" {
		t.Fatalf("untouched column changed: %q", got.Email)
	}
	if got.UpdatedAt == nil {
		t.Fatalf("UpdatedAt must be set by the first update")
	}

	if _, err := r.Update(ctx, 9999, map[string]any{"name": "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing id err = %v", err)
	}
}

func TestUpdate_ReachesSoftDeletedRows(t *testing.T) {
	r := New[domain.Author](newTestDB(t, "repo_update_hidden"))
	ctx := context.Background()

	a := seedAuthor(t, r, "Ada", "ada@example.com")
	if _, err := r.SoftDelete(ctx, a.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	got, err := r.Update(ctx, a.ID, map[string]any{"name": "Hidden Edit"})
	if err != nil {
		t.Fatalf("Update on hidden row: %v", err)
	}
	if got.Name != "Hidden Edit" || !got.IsDeleted {
		t.Fatalf("unexpected row: %+v", got)
	}
}

func TestList_ClampsAndPageMath(t *testing.T) {
	r := New[domain.Author](newTestDB(t, "repo_list"))
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		seedAuthor(t, r, fmt.Sprintf("A%02d", i), fmt.Sprintf("a%02d@example.com", i))
	}

	// Out-of-range inputs fall back to page 1, per_page 10.
	pg, err := r.List(ctx, 0, 101, false, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if pg.Page != 1 || pg.PerPage != 10 {
		t.Fatalf("clamp = page %d per_page %d", pg.Page, pg.PerPage)
	}
	if pg.Total != 25 || pg.Pages != 3 {
		t.Fatalf("total %d pages %d, want 25/3", pg.Total, pg.Pages)
	}
	if len(pg.Items) != 10 {
		t.Fatalf("items = %d", len(pg.Items))
	}

	last, err := r.List(ctx, 3, 10, false, nil)
	if err != nil {
		t.Fatalf("List last: %v", err)
	}
	if len(last.Items) != 5 {
		t.Fatalf("last page items = %d, want 5", len(last.Items))
	}

	negative, err := r.List(ctx, -3, -1, false, nil)
	if err != nil {
		t.Fatalf("List negative: %v", err)
	}
	if negative.Page != 1 || negative.PerPage != 10 {
		t.Fatalf("negative clamp = %d/%d", negative.Page, negative.PerPage)
	}
}

func TestList_FiltersOnDeclaredColumnsOnly(t *testing.T) {
	db := newTestDB(t, "repo_filters")
	authors := New[domain.Author](db)
	posts := New[domain.Post](db)
	ctx := context.Background()

	ada := seedAuthor(t, authors, "Ada", "ada@example.com")
	alan := seedAuthor(t, authors, "Alan", "alan@example.com")

	for i, aid := range []uint{ada.ID, ada.ID, alan.ID} {
		_, err := posts.Create(ctx, map[string]any{
			"title":     fmt.Sprintf("post %d", i),
			"content":   "body",
			"author_id": aid,
		})
		if err != nil {
			t.Fatalf("seed post: %v", err)
		}
	}

	pg, err := posts.List(ctx, 1, 10, false, map[string]any{"author_id": ada.ID})
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if pg.Total != 2 {
		t.Fatalf("filtered total = %d, want 2", pg.Total)
	}

	// Unknown filter keys are dropped, not applied.
	all, err := posts.List(ctx, 1, 10, false, map[string]any{"no_such_column": "x"})
	if err != nil {
		t.Fatalf("List with unknown filter: %v", err)
	}
	if all.Total != 3 {
		t.Fatalf("unknown filter total = %d, want 3", all.Total)
	}
}

func TestGetMany_SkipLimit(t *testing.T) {
	r := New[domain.Author](newTestDB(t, "repo_getmany"))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		seedAuthor(t, r, fmt.Sprintf("A%d", i), fmt.Sprintf("gm%d@example.com", i))
	}

	items, err := r.GetMany(ctx, 2, 2, false, nil)
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d", len(items))
	}
	if items[0].ID >= items[1].ID {
		t.Fatalf("ordering not stable: %d, %d", items[0].ID, items[1].ID)
	}

	// Negative skip and absurd limits are normalized.
	if items, err = r.GetMany(ctx, -1, 100000, false, nil); err != nil || len(items) != 5 {
		t.Fatalf("normalized GetMany = %d items, %v", len(items), err)
	}
}

func TestGetOneAndExists(t *testing.T) {
	r := New[domain.Author](newTestDB(t, "repo_getone"))
	ctx := context.Background()

	a := seedAuthor(t, r, "Ada", "ada@example.com")

	got, err := r.GetOne(ctx, false, map[string]any{"email": "ada@example.com"})
	if err != nil || got.ID != a.ID {
		t.Fatalf("GetOne = %+v, %v", got, err)
	}
	if _, err := r.GetOne(ctx, false, map[string]any{"email": "nobody@example.com"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetOne missing err = %v", err)
	}

	if ok, _ := r.Exists(ctx, a.ID, false); !ok {
		t.Fatalf("Exists = false for live row")
	}
	if _, err := r.SoftDelete(ctx, a.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if ok, _ := r.Exists(ctx, a.ID, false); ok {
		t.Fatalf("Exists must follow the soft-delete filter")
	}
	if ok, _ := r.Exists(ctx, a.ID, true); !ok {
		t.Fatalf("Exists include_deleted = false")
	}
}

func TestSearch(t *testing.T) {
	db := newTestDB(t, "repo_search")
	ctx := context.Background()

	unconfigured := New[domain.Author](db)
	if _, err := unconfigured.Search(ctx, "ada", 1, 10, false); !IsKind(err, KindConfig) {
		t.Fatalf("unconfigured search err = %v, want KindConfig", err)
	}

	r := New[domain.Author](db, WithSearchFields[domain.Author]("name", "email"))
	seedAuthor(t, r, "Ada Lovelace", "ada@example.com")
	seedAuthor(t, r, "Alan Turing", "alan@example.com")
	seedAuthor(t, r, "Grace Hopper", "grace@lovelace.org")

	pg, err := r.Search(ctx, "lovelace", 1, 10, false)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	// Matches the name of one row and the email domain of another.
	if pg.Total != 2 {
		t.Fatalf("total = %d, want 2", pg.Total)
	}

	none, err := r.Search(ctx, "zzz", 1, 10, false)
	if err != nil || none.Total != 0 {
		t.Fatalf("no-match search = %+v, %v", none, err)
	}
}

func TestWithSearchFields_DropsUnknownColumns(t *testing.T) {
	r := New[domain.Author](newTestDB(t, "repo_searchcols"),
		WithSearchFields[domain.Author]("name", "no_such_column"))
	if len(r.searchFields) != 1 || r.searchFields[0] != "name" {
		t.Fatalf("searchFields = %v", r.searchFields)
	}
}
