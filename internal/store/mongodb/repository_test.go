package mongodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"financas/internal/core"
	"financas/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mock for DataStore interface.
type mockDataStore struct {
	findFunc func(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

func (m *mockDataStore) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	return m.findFunc(ctx, filter, opts...)
}

// Mock for CollectionProvider interface.
type mockCollectionProvider struct {
	collectionFunc func(name string) DataStore
}

func (m *mockCollectionProvider) Collection(name string) DataStore {
	return m.collectionFunc(name)
}

func cursorOf(t *testing.T, docs ...interface{}) *mongo.Cursor {
	t.Helper()
	cur, err := mongo.NewCursorFromDocuments(docs, nil, nil)
	if err != nil {
		t.Fatalf("cursor: %v", err)
	}
	return cur
}

func TestListTransactionsDecodesAndFilters(t *testing.T) {
	var gotFilter bson.M
	ds := &mockDataStore{findFunc: func(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
		gotFilter = filter.(bson.M)
		return cursorOf(t,
			transactionDoc{ID: 1, Quando: "2024-03-02", Valor: 0.1, Tipo: "despesa", CategoryID: "c1", UserID: "u1", CreatedAt: time.Unix(0, 0).UTC()},
			transactionDoc{ID: 2, Quando: "2024-03-09", Valor: 1500, Tipo: "receita", CategoryID: "c1", UserID: "u1", Estabelecimento: " Empresa "},
		), nil
	}}
	provider := &mockCollectionProvider{collectionFunc: func(name string) DataStore {
		if name != TransactionsCollection {
			t.Errorf("expected collection %s, got %s", TransactionsCollection, name)
		}
		return ds
	}}

	start := core.NewDate(2024, 3, 1)
	txs, err := NewRepository(provider).ListTransactions(context.Background(), "u1", store.Query{Start: &start, Kind: core.Expense})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if gotFilter["userid"] != "u1" || gotFilter["tipo"] != "despesa" {
		t.Fatalf("unexpected filter %v", gotFilter)
	}
	rng, ok := gotFilter["quando"].(bson.M)
	if !ok || rng["$gte"] != "2024-03-01" || rng["$lte"] != nil {
		t.Fatalf("unexpected date range %v", gotFilter["quando"])
	}
	if len(txs) != 2 || txs[0].ID != 2 || txs[0].Establishment != "Empresa" {
		t.Fatalf("unexpected transactions %+v", txs)
	}
	if txs[1].Amount.Cents() != 10 {
		t.Fatalf("expected 10 cents, got %d", txs[1].Amount.Cents())
	}
}

func TestListTransactionsRejectsUnknownKind(t *testing.T) {
	ds := &mockDataStore{findFunc: func(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
		return cursorOf(t, transactionDoc{ID: 1, Tipo: "transferencia"}), nil
	}}
	repo := NewRepository(&mockCollectionProvider{collectionFunc: func(string) DataStore { return ds }})
	if _, err := repo.ListTransactions(context.Background(), "u1", store.Query{}); !errors.Is(err, core.ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestListTransactionsFindError(t *testing.T) {
	expected := errors.New("boom")
	ds := &mockDataStore{findFunc: func(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
		return nil, expected
	}}
	repo := NewRepository(&mockCollectionProvider{collectionFunc: func(string) DataStore { return ds }})
	if _, err := repo.ListTransactions(context.Background(), "u1", store.Query{}); !errors.Is(err, expected) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestListCategories(t *testing.T) {
	ds := &mockDataStore{findFunc: func(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
		return cursorOf(t, categoryDoc{ID: "c1", Nome: "Lazer", Tags: "cinema, viagem", UserID: "u1"}), nil
	}}
	repo := NewRepository(&mockCollectionProvider{collectionFunc: func(name string) DataStore {
		if name != CategoriesCollection {
			t.Errorf("unexpected collection %s", name)
		}
		return ds
	}})
	cats, err := repo.ListCategories(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cats) != 1 || cats[0].Name != "Lazer" || len(cats[0].Tags) != 2 {
		t.Fatalf("unexpected categories %+v", cats)
	}
}
