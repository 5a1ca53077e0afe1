package store

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	perrors "github.com/abgdnv/productdesk/internal/errors"
	"github.com/abgdnv/productdesk/internal/store/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ProductStoreSuite runs the store against a fresh SQLite file per test.
type ProductStoreSuite struct {
	suite.Suite
	path   string
	store  *SQLiteStore
	logger *slog.Logger
	ctx    context.Context
}

func (s *ProductStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SetupTest gives every test its own file with the schema in place.
func (s *ProductStoreSuite) SetupTest() {
	s.path = filepath.Join(s.T().TempDir(), "products.db")
	s.store = NewSQLiteStore(s.path, s.logger)
	require.NoError(s.T(), s.store.EnsureSchema(s.ctx))
}

func TestProductStore(t *testing.T) {
	suite.Run(t, new(ProductStoreSuite))
}

// createTestProduct is a helper function to create a product for testing purposes.
func (s *ProductStoreSuite) createTestProduct(name string, price float64) *db.Product {
	s.T().Helper()
	product, err := s.store.Insert(s.ctx, name, price)
	require.NoError(s.T(), err, "createTestProduct helper failed to create product")
	return product
}

func (s *ProductStoreSuite) listAll() []db.Product {
	s.T().Helper()
	products, err := s.store.ListAll(s.ctx)
	require.NoError(s.T(), err)
	return products
}

func (s *ProductStoreSuite) TestListAll_Empty() {
	products := s.listAll()
	require.NotNil(s.T(), products, "empty table should yield an empty, non-nil slice")
	require.Empty(s.T(), products)
}

func (s *ProductStoreSuite) TestInsert_RoundTrip() {
	before := s.listAll()

	created := s.createTestProduct("Widget", 9.99)

	require.NotZero(s.T(), created.ID, "Insert should return the generated id")
	require.Equal(s.T(), "Widget", created.Name)
	require.Equal(s.T(), 9.99, created.Price)

	after := s.listAll()
	require.Len(s.T(), after, len(before)+1)
	matches := 0
	for _, p := range after {
		if p.Name == "Widget" && p.Price == 9.99 {
			matches++
			assert.Equal(s.T(), created.ID, p.ID)
		}
	}
	require.Equal(s.T(), 1, matches, "exactly one row should match the inserted product")
}

func (s *ProductStoreSuite) TestInsert_NegativeAndZeroPrice() {
	s.createTestProduct("Refund", -5.25)
	s.createTestProduct("Freebie", 0)

	products := s.listAll()
	require.Len(s.T(), products, 2)
	assert.Equal(s.T(), -5.25, products[0].Price)
	assert.Equal(s.T(), 0.0, products[1].Price)
}

func (s *ProductStoreSuite) TestListAll_OrderedByID() {
	a := s.createTestProduct("A", 1)
	b := s.createTestProduct("B", 2)
	c := s.createTestProduct("C", 3)

	products := s.listAll()

	require.Equal(s.T(), []db.Product{*a, *b, *c}, products)
}

func (s *ProductStoreSuite) TestListAll_IsSnapshot() {
	s.createTestProduct("A", 1)
	snapshot := s.listAll()

	s.createTestProduct("B", 2)

	require.Len(s.T(), snapshot, 1, "earlier snapshot must not change")
	require.Len(s.T(), s.listAll(), 2)
}

func (s *ProductStoreSuite) TestUpdate_TargetsOneRow() {
	widget := s.createTestProduct("Widget", 9.99)
	other := s.createTestProduct("Other", 1)

	err := s.store.Update(s.ctx, widget.ID, "Gadget", 12.5)
	require.NoError(s.T(), err)

	products := s.listAll()
	require.Equal(s.T(), []db.Product{
		{ID: widget.ID, Name: "Gadget", Price: 12.5},
		*other,
	}, products)
}

func (s *ProductStoreSuite) TestDelete_RemovesExactlyOneRow() {
	a := s.createTestProduct("A", 1.0)
	b := s.createTestProduct("B", 2.0)

	err := s.store.Delete(s.ctx, a.ID)
	require.NoError(s.T(), err)

	require.Equal(s.T(), []db.Product{*b}, s.listAll())
}

func (s *ProductStoreSuite) TestMissingID_IsNoOp() {
	s.createTestProduct("A", 1.0)
	before := s.listAll()

	require.NoError(s.T(), s.store.Update(s.ctx, 999, "X", 1.0))
	require.NoError(s.T(), s.store.Delete(s.ctx, 999))

	require.Equal(s.T(), before, s.listAll())
}

func (s *ProductStoreSuite) TestIDs_NeverReused() {
	s.createTestProduct("A", 1)
	b := s.createTestProduct("B", 2)
	require.NoError(s.T(), s.store.Delete(s.ctx, b.ID))

	c := s.createTestProduct("C", 3)

	require.Greater(s.T(), c.ID, b.ID, "a deleted id must not be handed out again")
}

func (s *ProductStoreSuite) TestValidation_PrecedesStorage() {
	s.createTestProduct("A", 1)
	before := s.listAll()

	testCases := []struct {
		name  string
		call  func() error
		field string
	}{
		{
			name: "insert empty name",
			call: func() error {
				_, err := s.store.Insert(s.ctx, "", 1.0)
				return err
			},
			field: "name",
		},
		{
			name: "insert NaN price",
			call: func() error {
				_, err := s.store.Insert(s.ctx, "Name", math.NaN())
				return err
			},
			field: "price",
		},
		{
			name:  "update infinite price",
			call:  func() error { return s.store.Update(s.ctx, 1, "Name", math.Inf(1)) },
			field: "price",
		},
		{
			name:  "update empty name",
			call:  func() error { return s.store.Update(s.ctx, 1, "", 2) },
			field: "name",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := tc.call()
			require.ErrorIs(s.T(), err, perrors.ErrValidation)
			var vErr *perrors.ValidationError
			require.ErrorAs(s.T(), err, &vErr)
			require.Equal(s.T(), tc.field, vErr.Field)
		})
	}

	require.Equal(s.T(), before, s.listAll(), "no row may be written or changed")
}

func (s *ProductStoreSuite) TestValidation_DoesNotTouchFile() {
	// A path inside a missing directory fails on any storage access.
	unreachable := NewSQLiteStore(filepath.Join(s.T().TempDir(), "missing", "products.db"), s.logger)

	_, err := unreachable.Insert(s.ctx, "", 1)
	require.ErrorIs(s.T(), err, perrors.ErrValidation)

	_, err = unreachable.Insert(s.ctx, "Name", 1)
	require.ErrorIs(s.T(), err, perrors.ErrStorage)
}

func (s *ProductStoreSuite) TestEnsureSchema_Idempotent() {
	created := s.createTestProduct("Keep me", 4.5)

	require.NoError(s.T(), s.store.EnsureSchema(s.ctx))
	require.NoError(s.T(), s.store.EnsureSchema(s.ctx))

	require.Equal(s.T(), []db.Product{*created}, s.listAll())
	require.Equal(s.T(), 1, countTables(s.T(), s.path, "products"))
}

func (s *ProductStoreSuite) TestEnsureSchema_AdoptsExistingTable() {
	// A file created by an older build: table present, no migration bookkeeping.
	path := filepath.Join(s.T().TempDir(), "legacy.db")
	raw, err := sql.Open(driverName, path)
	require.NoError(s.T(), err)
	_, err = raw.Exec(`CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL, price REAL NOT NULL)`)
	require.NoError(s.T(), err)
	_, err = raw.Exec(`INSERT INTO products (name, price) VALUES ('Legacy', 3.25)`)
	require.NoError(s.T(), err)
	require.NoError(s.T(), raw.Close())

	legacy := NewSQLiteStore(path, s.logger)
	require.NoError(s.T(), legacy.EnsureSchema(s.ctx))

	products, err := legacy.ListAll(s.ctx)
	require.NoError(s.T(), err)
	require.Equal(s.T(), []db.Product{{ID: 1, Name: "Legacy", Price: 3.25}}, products)
}

func (s *ProductStoreSuite) TestWithoutSchema_EveryCallFails() {
	bare := NewSQLiteStore(filepath.Join(s.T().TempDir(), "bare.db"), s.logger)

	_, err := bare.ListAll(s.ctx)
	require.ErrorIs(s.T(), err, perrors.ErrStorage)
	_, err = bare.Insert(s.ctx, "A", 1)
	require.ErrorIs(s.T(), err, perrors.ErrStorage)
	require.ErrorIs(s.T(), bare.Update(s.ctx, 1, "A", 1), perrors.ErrStorage)
	require.ErrorIs(s.T(), bare.Delete(s.ctx, 1), perrors.ErrStorage)

	var sErr *perrors.StorageError
	require.ErrorAs(s.T(), bare.Delete(s.ctx, 1), &sErr)
	require.Equal(s.T(), "delete", sErr.Op)
}

func (s *ProductStoreSuite) TestEnsureSchema_UnreachablePath() {
	broken := NewSQLiteStore(filepath.Join(s.T().TempDir(), "missing", "products.db"), s.logger)

	err := broken.EnsureSchema(s.ctx)

	require.ErrorIs(s.T(), err, perrors.ErrStorage)
}

func (s *ProductStoreSuite) TestNoHandleKeptBetweenCalls() {
	s.createTestProduct("A", 1)

	// The file can be replaced between calls; the next call sees the new file.
	require.NoError(s.T(), os.Remove(s.path))
	require.NoError(s.T(), s.store.EnsureSchema(s.ctx))

	require.Empty(s.T(), s.listAll())
}

func TestNewSQLiteStore_BusyTimeout(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s := NewSQLiteStore("catalog.db", logger, WithBusyTimeout(250))

	assert.Equal(t, "catalog.db", s.Path())
	assert.Equal(t, "catalog.db?_pragma=busy_timeout(250)", s.dsn)
}

func countTables(t *testing.T, path, name string) int {
	t.Helper()
	raw, err := sql.Open(driverName, path)
	require.NoError(t, err)
	defer raw.Close()
	var n int
	err = raw.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	require.NoError(t, err)
	return n
}
