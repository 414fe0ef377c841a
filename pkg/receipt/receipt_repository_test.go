package receipt

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"receipt-tracker/entities"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// A pooled connection would get its own empty in-memory database.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&entities.Receipt{}, &entities.ReceiptItem{}); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

func seedReceipt(t *testing.T, repo ReceiptRepository, store string, total string, date time.Time, itemNames ...string) *entities.Receipt {
	t.Helper()

	items := make([]*entities.ReceiptItem, 0, len(itemNames))
	for _, name := range itemNames {
		items = append(items, &entities.ReceiptItem{
			Name:       name,
			Quantity:   1,
			UnitPrice:  "1.00",
			TotalPrice: "1.00",
		})
	}
	created, err := repo.CreateReceipt(context.Background(), &entities.Receipt{
		StoreName:   store,
		TotalAmount: total,
		ReceiptDate: date,
	}, items)
	if err != nil {
		t.Fatalf("seed receipt for %q: %v", store, err)
	}
	return created
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var count int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&count).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return count
}

func TestCreateReceiptPersistsAggregate(t *testing.T) {
	db := newTestDB(t)
	repo := NewReceiptRepository(db)
	ctx := context.Background()

	created, err := repo.CreateReceipt(ctx, &entities.Receipt{
		StoreName:   "Target",
		TotalAmount: "27.48",
		ReceiptDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}, []*entities.ReceiptItem{
		{Name: "Milk", Quantity: 2, UnitPrice: "3.49", TotalPrice: "6.98"},
		{Name: "Bread", Quantity: 1, UnitPrice: "20.50", TotalPrice: "20.50"},
	})
	if err != nil {
		t.Fatalf("CreateReceipt: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected store-assigned id")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatalf("expected server-assigned timestamps")
	}
	if len(created.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(created.Items))
	}
	if created.Items[0].Name != "Milk" || created.Items[1].Name != "Bread" {
		t.Fatalf("items out of insertion order: %q, %q", created.Items[0].Name, created.Items[1].Name)
	}
	for _, item := range created.Items {
		if item.ReceiptID != created.ID {
			t.Fatalf("item %d not tagged with receipt id", item.ID)
		}
	}

	fetched, err := repo.GetReceiptByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetReceiptByID: %v", err)
	}
	if fetched == nil {
		t.Fatalf("expected receipt after create")
	}
	if fetched.StoreName != "Target" || len(fetched.Items) != 2 {
		t.Fatalf("unexpected aggregate: %+v", fetched)
	}
}

func TestCreateReceiptRollsBackOnItemFailure(t *testing.T) {
	db := newTestDB(t)
	repo := NewReceiptRepository(db)
	ctx := context.Background()

	// Quantity 0 violates the store-side check constraint, failing the item
	// insert after the header insert succeeded.
	_, err := repo.CreateReceipt(ctx, &entities.Receipt{
		StoreName:   "Target",
		TotalAmount: "5.00",
		ReceiptDate: time.Now(),
	}, []*entities.ReceiptItem{
		{Name: "Milk", Quantity: 0, UnitPrice: "5.00", TotalPrice: "5.00"},
	})
	if err == nil {
		t.Fatalf("expected item insert failure")
	}

	if got := countRows(t, db, &entities.Receipt{}, ""); got != 0 {
		t.Fatalf("expected 0 header rows after rollback, got %d", got)
	}
	if got := countRows(t, db, &entities.ReceiptItem{}, ""); got != 0 {
		t.Fatalf("expected 0 item rows after rollback, got %d", got)
	}
}

func TestGetReceiptByIDAbsent(t *testing.T) {
	db := newTestDB(t)
	repo := NewReceiptRepository(db)

	receipt, err := repo.GetReceiptByID(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetReceiptByID: %v", err)
	}
	if receipt != nil {
		t.Fatalf("expected nil for absent receipt, got %+v", receipt)
	}
}

func TestGetReceiptsOrdersByDateDescending(t *testing.T) {
	db := newTestDB(t)
	repo := NewReceiptRepository(db)

	seedReceipt(t, repo, "First", "10.00", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "A")
	seedReceipt(t, repo, "Last", "10.00", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), "B")
	seedReceipt(t, repo, "Middle", "10.00", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), "C")

	receipts, err := repo.GetReceipts(context.Background())
	if err != nil {
		t.Fatalf("GetReceipts: %v", err)
	}
	if len(receipts) != 3 {
		t.Fatalf("expected 3 receipts, got %d", len(receipts))
	}
	var stores []string
	for _, r := range receipts {
		stores = append(stores, r.StoreName)
	}
	if stores[0] != "Last" || stores[1] != "Middle" || stores[2] != "First" {
		t.Fatalf("wrong order: %v", stores)
	}
	for _, r := range receipts {
		if len(r.Items) != 1 {
			t.Fatalf("expected items preloaded for %q", r.StoreName)
		}
	}
}

func TestUpdateReceiptNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewReceiptRepository(db)

	_, err := repo.UpdateReceipt(context.Background(), 99, map[string]interface{}{"store_name": "X"}, nil, false)
	if err != gorm.ErrRecordNotFound {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if got := countRows(t, db, &entities.Receipt{}, ""); got != 0 {
		t.Fatalf("not-found update must not create rows, got %d", got)
	}
}

func TestUpdateReceiptReplacesItemsWholesale(t *testing.T) {
	db := newTestDB(t)
	repo := NewReceiptRepository(db)
	ctx := context.Background()

	created := seedReceipt(t, repo, "Target", "10.00", time.Now(), "Milk", "Bread")
	oldIDs := map[uint]bool{}
	for _, item := range created.Items {
		oldIDs[item.ID] = true
	}

	updated, err := repo.UpdateReceipt(ctx, created.ID, nil, []*entities.ReceiptItem{
		{Name: "Eggs", Quantity: 12, UnitPrice: "0.25", TotalPrice: "3.00"},
	}, true)
	if err != nil {
		t.Fatalf("UpdateReceipt: %v", err)
	}
	if len(updated.Items) != 1 {
		t.Fatalf("expected exactly 1 item after replacement, got %d", len(updated.Items))
	}
	if updated.Items[0].Name != "Eggs" {
		t.Fatalf("unexpected item %q", updated.Items[0].Name)
	}
	if oldIDs[updated.Items[0].ID] {
		t.Fatalf("replacement must assign new item identities")
	}

	// An empty (but present) list clears the item set.
	updated, err = repo.UpdateReceipt(ctx, created.ID, nil, nil, true)
	if err != nil {
		t.Fatalf("UpdateReceipt with empty items: %v", err)
	}
	if len(updated.Items) != 0 {
		t.Fatalf("expected 0 items, got %d", len(updated.Items))
	}
	if got := countRows(t, db, &entities.ReceiptItem{}, "receipt_id = ?", created.ID); got != 0 {
		t.Fatalf("expected 0 item rows, got %d", got)
	}
}

func TestUpdateReceiptLeavesItemsWhenAbsent(t *testing.T) {
	db := newTestDB(t)
	repo := NewReceiptRepository(db)
	ctx := context.Background()

	created := seedReceipt(t, repo, "Target", "10.00", time.Now(), "Milk", "Bread")

	updated, err := repo.UpdateReceipt(ctx, created.ID, map[string]interface{}{"store_name": "Walmart"}, nil, false)
	if err != nil {
		t.Fatalf("UpdateReceipt: %v", err)
	}
	if updated.StoreName != "Walmart" {
		t.Fatalf("header not updated: %q", updated.StoreName)
	}
	if len(updated.Items) != 2 {
		t.Fatalf("items must be untouched when absent, got %d", len(updated.Items))
	}
}

func TestUpdateReceiptAlwaysRefreshesUpdatedAt(t *testing.T) {
	db := newTestDB(t)
	repo := NewReceiptRepository(db)
	ctx := context.Background()

	created := seedReceipt(t, repo, "Target", "10.00", time.Now(), "Milk")
	before := created.UpdatedAt

	time.Sleep(10 * time.Millisecond)

	updated, err := repo.UpdateReceipt(ctx, created.ID, nil, nil, false)
	if err != nil {
		t.Fatalf("UpdateReceipt: %v", err)
	}
	if !updated.UpdatedAt.After(before) {
		t.Fatalf("updated_at not refreshed: before=%v after=%v", before, updated.UpdatedAt)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at must be immutable")
	}
}

func TestDeleteReceiptCascadesToOwnItemsOnly(t *testing.T) {
	db := newTestDB(t)
	repo := NewReceiptRepository(db)
	ctx := context.Background()

	doomed := seedReceipt(t, repo, "Target", "10.00", time.Now(), "Milk", "Bread", "Eggs")
	kept := seedReceipt(t, repo, "Walmart", "20.00", time.Now(), "Cable")

	if err := repo.DeleteReceipt(ctx, doomed.ID); err != nil {
		t.Fatalf("DeleteReceipt: %v", err)
	}

	if got := countRows(t, db, &entities.ReceiptItem{}, "receipt_id = ?", doomed.ID); got != 0 {
		t.Fatalf("expected cascade to remove items, %d left", got)
	}
	if got := countRows(t, db, &entities.ReceiptItem{}, "receipt_id = ?", kept.ID); got != 1 {
		t.Fatalf("delete must not touch other receipts' items, got %d", got)
	}

	// Second delete of the same id observes the row gone.
	if err := repo.DeleteReceipt(ctx, doomed.ID); err != gorm.ErrRecordNotFound {
		t.Fatalf("expected ErrRecordNotFound on repeat delete, got %v", err)
	}
}

func TestSearchReceiptsComposition(t *testing.T) {
	db := newTestDB(t)
	repo := NewReceiptRepository(db)
	ctx := context.Background()

	a := seedReceipt(t, repo, "Target", "50.00", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), "Milk")
	b := seedReceipt(t, repo, "Walmart", "150.00", time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), "Cable")

	// Free-text query matches item names.
	results, err := repo.SearchReceipts(ctx, SearchFilter{Query: "milk"})
	if err != nil {
		t.Fatalf("SearchReceipts: %v", err)
	}
	if len(results) != 1 || results[0].ID != a.ID {
		t.Fatalf("query=milk: expected only receipt %d, got %+v", a.ID, results)
	}

	// Free-text query also matches store names.
	results, err = repo.SearchReceipts(ctx, SearchFilter{Query: "targ"})
	if err != nil {
		t.Fatalf("SearchReceipts: %v", err)
	}
	if len(results) != 1 || results[0].ID != a.ID {
		t.Fatalf("query=targ: expected only receipt %d", a.ID)
	}

	// Store-name filter is case-insensitive.
	results, err = repo.SearchReceipts(ctx, SearchFilter{StoreName: "WALMART"})
	if err != nil {
		t.Fatalf("SearchReceipts: %v", err)
	}
	if len(results) != 1 || results[0].ID != b.ID {
		t.Fatalf("store_name=WALMART: expected only receipt %d", b.ID)
	}

	// Inclusive amount bounds.
	results, err = repo.SearchReceipts(ctx, SearchFilter{MinAmount: "50.00", MaxAmount: "100.00"})
	if err != nil {
		t.Fatalf("SearchReceipts: %v", err)
	}
	if len(results) != 1 || results[0].ID != a.ID {
		t.Fatalf("amount bounds: expected only receipt %d", a.ID)
	}

	// Date bounds AND free-text query.
	from := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	results, err = repo.SearchReceipts(ctx, SearchFilter{Query: "cable", DateFrom: &from})
	if err != nil {
		t.Fatalf("SearchReceipts: %v", err)
	}
	if len(results) != 1 || results[0].ID != b.ID {
		t.Fatalf("query+date_from: expected only receipt %d", b.ID)
	}

	// No filters returns everything, newest first.
	results, err = repo.SearchReceipts(ctx, SearchFilter{})
	if err != nil {
		t.Fatalf("SearchReceipts: %v", err)
	}
	if len(results) != 2 || results[0].ID != b.ID || results[1].ID != a.ID {
		t.Fatalf("empty filter: expected [%d %d]", b.ID, a.ID)
	}

	// Nothing matching is an empty result, not an error.
	results, err = repo.SearchReceipts(ctx, SearchFilter{Query: "caviar"})
	if err != nil {
		t.Fatalf("SearchReceipts: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty result, got %d", len(results))
	}
}

func TestSearchReceiptsDeduplicatesAndAttachesFullItemSet(t *testing.T) {
	db := newTestDB(t)
	repo := NewReceiptRepository(db)
	ctx := context.Background()

	created := seedReceipt(t, repo, "Costco", "30.00", time.Now(), "Milk", "Milkshake", "Bread")

	results, err := repo.SearchReceipts(ctx, SearchFilter{Query: "milk"})
	if err != nil {
		t.Fatalf("SearchReceipts: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("header with several matching items must appear once, got %d", len(results))
	}
	if results[0].ID != created.ID {
		t.Fatalf("unexpected receipt %d", results[0].ID)
	}
	// The full item set is attached, not just the matching items.
	if len(results[0].Items) != 3 {
		t.Fatalf("expected full item set of 3, got %d", len(results[0].Items))
	}
}
