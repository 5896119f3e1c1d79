//go:build !integration

package boltstore

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	bolt "github.com/boltdb/bolt"

	"telegram-vpn-shop/internal/domain"
	"telegram-vpn-shop/internal/domain/model"
)

func newTestDB(t *testing.T) *bolt.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "shop.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestRepo(t *testing.T) *IntentRepo {
	t.Helper()
	repo, err := NewIntentRepo(newTestDB(t))
	if err != nil {
		t.Fatalf("NewIntentRepo failed: %v", err)
	}
	return repo
}

func TestIntentRepo_SaveFindTake(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	intent := &model.PaymentIntent{
		ID:        "pay-1",
		ProductID: "product_b",
		UserID:    42,
		ChatID:    42,
		Status:    model.IntentStatusPending,
		CreatedAt: time.Now(),
	}
	if err := repo.Save(ctx, intent); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	found, err := repo.Find(ctx, "pay-1")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if found.ProductID != "product_b" || found.UserID != 42 {
		t.Errorf("round-tripped intent mismatch: %+v", found)
	}

	taken, err := repo.Take(ctx, "pay-1")
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	if taken.ID != "pay-1" {
		t.Errorf("expected pay-1, got %s", taken.ID)
	}

	if _, err := repo.Take(ctx, "pay-1"); !errors.Is(err, domain.ErrIntentNotFound) {
		t.Errorf("second take: expected ErrIntentNotFound, got %v", err)
	}
	if _, err := repo.Find(ctx, "pay-1"); !errors.Is(err, domain.ErrIntentNotFound) {
		t.Errorf("find after take: expected ErrIntentNotFound, got %v", err)
	}
}

func TestIntentRepo_ConcurrentTake(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	if err := repo.Save(ctx, &model.PaymentIntent{ID: "pay-1", Status: model.IntentStatusPending, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Take(ctx, "pay-1"); err == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("expected exactly one successful take, got %d", wins)
	}
}

func TestIntentRepo_DeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	if err := repo.Save(ctx, &model.PaymentIntent{ID: "del-1", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := repo.Delete(ctx, "del-1"); err != nil {
		t.Fatalf("first delete failed: %v", err)
	}
	if err := repo.Delete(ctx, "del-1"); err != nil {
		t.Fatalf("second delete should still succeed: %v", err)
	}
}
