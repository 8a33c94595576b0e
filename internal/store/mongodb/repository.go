package mongodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"financas/internal/core"
	"financas/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	TransactionsCollection = "transacoes"
	CategoriesCollection   = "categorias"
)

var (
	_ store.TransactionReader = (*Repository)(nil)
	_ store.CategoryReader    = (*Repository)(nil)
)

// transactionDoc mirrors the documents written by the finance app.
type transactionDoc struct {
	ID              int64     `bson:"id"`
	CreatedAt       time.Time `bson:"created_at"`
	Quando          string    `bson:"quando,omitempty"`
	Estabelecimento string    `bson:"estabelecimento,omitempty"`
	Valor           float64   `bson:"valor"`
	Detalhes        string    `bson:"detalhes,omitempty"`
	Tipo            string    `bson:"tipo"`
	CategoryID      string    `bson:"category_id"`
	UserID          string    `bson:"userid"`
}

type categoryDoc struct {
	ID     string `bson:"id"`
	Nome   string `bson:"nome"`
	Tags   string `bson:"tags,omitempty"`
	UserID string `bson:"userid"`
}

// Repository reads transactions and categories from MongoDB.
type Repository struct {
	provider CollectionProvider
}

func NewRepository(provider CollectionProvider) *Repository {
	return &Repository{provider: provider}
}

func (r *Repository) ListTransactions(ctx context.Context, userID string, q store.Query) ([]core.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "quando", Value: -1}, {Key: "id", Value: -1}})
	cur, err := r.provider.Collection(TransactionsCollection).Find(ctx, transactionFilter(userID, q), opts)
	if err != nil {
		return nil, fmt.Errorf("find transactions: %w", err)
	}
	var docs []transactionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}

	out := make([]core.Transaction, 0, len(docs))
	for _, d := range docs {
		t, err := d.toCore()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	store.SortNewestFirst(out)
	return out, nil
}

func (r *Repository) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "nome", Value: 1}})
	cur, err := r.provider.Collection(CategoriesCollection).Find(ctx, bson.M{"userid": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	var docs []categoryDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	out := make([]core.Category, 0, len(docs))
	for _, d := range docs {
		out = append(out, core.Category{ID: d.ID, Name: d.Nome, Tags: core.ParseTags(d.Tags), UserID: d.UserID})
	}
	return out, nil
}

// transactionFilter relies on ISO dates comparing lexically.
func transactionFilter(userID string, q store.Query) bson.M {
	filter := bson.M{"userid": userID}
	if q.Bounded() {
		rng := bson.M{}
		if q.Start != nil {
			rng["$gte"] = q.Start.ISO()
		}
		if q.End != nil {
			rng["$lte"] = q.End.ISO()
		}
		filter["quando"] = rng
	}
	if q.Kind != "" {
		filter["tipo"] = string(q.Kind)
	}
	if q.CategoryID != "" {
		filter["category_id"] = q.CategoryID
	}
	return filter
}

func (d transactionDoc) toCore() (core.Transaction, error) {
	date, err := core.ParseOptionalDate(d.Quando)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d date %q: %w", d.ID, d.Quando, err)
	}
	kind, err := core.ParseKind(d.Tipo)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", d.ID, err)
	}
	return core.Transaction{
		ID:            d.ID,
		CreatedAt:     d.CreatedAt,
		Date:          date,
		Establishment: strings.TrimSpace(d.Estabelecimento),
		Amount:        core.MoneyFromFloat(d.Valor).Abs(),
		Details:       d.Detalhes,
		Kind:          kind,
		CategoryID:    d.CategoryID,
		UserID:        d.UserID,
	}, nil
}
