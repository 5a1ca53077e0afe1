package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"math"

	perrors "github.com/abgdnv/productdesk/internal/errors"
	"github.com/abgdnv/productdesk/internal/store/db"
	plog "github.com/abgdnv/productdesk/pkg/logger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	driverName         = "sqlite"
	defaultBusyTimeout = 5000
)

var tracer = otel.Tracer("github.com/abgdnv/productdesk/internal/store")

// SQLiteStore implements ProductStore on a SQLite file.
// It holds only the path: every operation opens its own handle and closes it before returning.
type SQLiteStore struct {
	path   string
	dsn    string
	logger *slog.Logger
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithBusyTimeout sets how long, in milliseconds, a call waits on a locked file.
func WithBusyTimeout(ms int) Option {
	return func(s *SQLiteStore) {
		s.dsn = buildDSN(s.path, ms)
	}
}

// NewSQLiteStore creates a store for the file at path. Nothing is opened yet.
func NewSQLiteStore(path string, logger *slog.Logger, opts ...Option) *SQLiteStore {
	s := &SQLiteStore{
		path:   path,
		dsn:    buildDSN(path, defaultBusyTimeout),
		logger: plog.Component(logger, "store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func buildDSN(path string, busyTimeout int) string {
	return fmt.Sprintf("%s?_pragma=busy_timeout(%d)", path, busyTimeout)
}

// Path returns the backing file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// EnsureSchema applies the embedded migrations. The only statement is a
// CREATE TABLE IF NOT EXISTS, so a file created by an older build is adopted as is.
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	return s.withHandle(ctx, "ensure schema", func(ctx context.Context, handle *sql.DB) error {
		src, err := iofs.New(migrationsFS, "migrations")
		if err != nil {
			return fmt.Errorf("failed to open embedded migrations: %w", err)
		}
		driver, err := sqlite.WithInstance(handle, &sqlite.Config{})
		if err != nil {
			_ = src.Close()
			return fmt.Errorf("failed to create migrate driver: %w", err)
		}
		m, err := migrate.NewWithInstance("iofs", src, driverName, driver)
		if err != nil {
			_ = src.Close()
			return fmt.Errorf("failed to create migrate instance: %w", err)
		}
		defer func() {
			_, _ = m.Close()
		}()

		err = m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			s.logger.DebugContext(ctx, "Schema already up to date", "path", s.path)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		s.logger.InfoContext(ctx, "Schema created", "path", s.path)
		return nil
	})
}

// ListAll reads every product ordered by id.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]db.Product, error) {
	var products []db.Product
	err := s.withHandle(ctx, "list", func(ctx context.Context, handle *sql.DB) error {
		var err error
		products, err = db.New(handle).ListAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "Listed products", "count", len(products))
	return products, nil
}

// Insert validates the input, then adds one row and returns it with the generated id.
func (s *SQLiteStore) Insert(ctx context.Context, name string, price float64) (*db.Product, error) {
	if err := validate(name, price); err != nil {
		return nil, err
	}
	var created db.Product
	err := s.withHandle(ctx, "insert", func(ctx context.Context, handle *sql.DB) error {
		var err error
		created, err = db.New(handle).Create(ctx, db.CreateParams{Name: name, Price: price})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "Inserted product", "ID", created.ID)
	return &created, nil
}

// Update validates the input, then rewrites name and price of row id.
// Zero affected rows is not an error.
func (s *SQLiteStore) Update(ctx context.Context, id int64, name string, price float64) error {
	if err := validate(name, price); err != nil {
		return err
	}
	return s.withHandle(ctx, "update", func(ctx context.Context, handle *sql.DB) error {
		count, err := db.New(handle).Update(ctx, db.UpdateParams{ID: id, Name: name, Price: price})
		if err != nil {
			return err
		}
		s.logAffected(ctx, "update", id, count)
		return nil
	})
}

// Delete removes row id. Zero affected rows is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	return s.withHandle(ctx, "delete", func(ctx context.Context, handle *sql.DB) error {
		count, err := db.New(handle).Delete(ctx, id)
		if err != nil {
			return err
		}
		s.logAffected(ctx, "delete", id, count)
		return nil
	})
}

func (s *SQLiteStore) logAffected(ctx context.Context, op string, id, count int64) {
	if count == 0 {
		s.logger.DebugContext(ctx, "No product with this ID, nothing changed", "op", op, "ID", id)
		return
	}
	s.logger.DebugContext(ctx, "Product changed", "op", op, "ID", id)
}

// withHandle opens the file, runs fn and closes the handle on every path.
// Any failure comes back as a StorageError for op.
func (s *SQLiteStore) withHandle(ctx context.Context, op string, fn func(context.Context, *sql.DB) error) (err error) {
	ctx, span := tracer.Start(ctx, "store."+op, trace.WithAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.file", s.path),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.logger.ErrorContext(ctx, "Storage operation failed", "op", op, "error", err)
		}
		span.End()
	}()

	handle, err := sql.Open(driverName, s.dsn)
	if err != nil {
		return perrors.Storage(op, err)
	}
	// one connection per call
	handle.SetMaxOpenConns(1)
	defer func() {
		if cerr := handle.Close(); cerr != nil && err == nil {
			err = perrors.Storage(op, cerr)
		}
	}()

	return perrors.Storage(op, fn(ctx, handle))
}

func validate(name string, price float64) error {
	if name == "" {
		return perrors.Invalid("name", "must not be empty")
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return perrors.Invalid("price", "must be a finite number")
	}
	return nil
}
