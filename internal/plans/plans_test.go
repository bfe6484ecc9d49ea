package plans

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestTableCeilings(t *testing.T) {
	table := NewTable(5, 25)

	free, ok := table.Ceiling(TierFree)
	if !ok || free != 5 {
		t.Fatalf("free ceiling: ok=%t got=%d", ok, free)
	}
	pro, ok := table.Ceiling(TierPro)
	if !ok || pro != 25 {
		t.Fatalf("pro ceiling: ok=%t got=%d", ok, pro)
	}
	if _, ok := table.Ceiling("Enterprise"); ok {
		t.Fatal("unknown tier must not resolve")
	}
}

func TestMemoryResolverDefaultsToFree(t *testing.T) {
	resolver := NewMemoryResolver()

	sub, err := resolver.Resolve(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if sub.Plan != TierFree || sub.IsSubscribed {
		t.Fatalf("expected Free/unsubscribed, got %+v", sub)
	}

	resolver.Set("user-1", Subscription{Plan: TierPro, IsSubscribed: true})
	sub, err = resolver.Resolve(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("resolve after set: %v", err)
	}
	if sub.Plan != TierPro || !sub.IsSubscribed {
		t.Fatalf("expected Pro/subscribed, got %+v", sub)
	}
}

func TestPGResolverNoRowDefaultsToFree(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	resolver := &PGResolver{DB: db}

	cols := []string{"plan", "is_subscribed", "current_period_end"}
	mock.ExpectQuery("SELECT plan, is_subscribed").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(cols))

	sub, err := resolver.Resolve(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if sub.Plan != TierFree || sub.IsSubscribed {
		t.Fatalf("expected Free/unsubscribed, got %+v", sub)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGResolverActiveSubscription(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	resolver := &PGResolver{DB: db}

	cols := []string{"plan", "is_subscribed", "current_period_end"}
	mock.ExpectQuery("SELECT plan, is_subscribed").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(TierPro, true, time.Now().UTC().Add(24*time.Hour)))

	sub, err := resolver.Resolve(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if sub.Plan != TierPro || !sub.IsSubscribed {
		t.Fatalf("expected Pro/subscribed, got %+v", sub)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGResolverLapsedPeriodCountsAsUnsubscribed(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	resolver := &PGResolver{DB: db}

	cols := []string{"plan", "is_subscribed", "current_period_end"}
	mock.ExpectQuery("SELECT plan, is_subscribed").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(TierPro, true, time.Now().UTC().Add(-time.Hour)))

	sub, err := resolver.Resolve(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if sub.IsSubscribed {
		t.Fatalf("expected lapsed subscription to be unsubscribed, got %+v", sub)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
