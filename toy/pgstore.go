package toy

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var sortColumns = map[string]string{
	SortByName:      "lower(name)",
	SortByPrice:     "price",
	SortByCreatedAt: "created_at",
}

const toyColumns = "id, name, price, labels, created_at"

type toyRow struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	Price     float64        `db:"price"`
	Labels    pq.StringArray `db:"labels"`
	CreatedAt int64          `db:"created_at"`
}

func (r toyRow) toy() Toy {
	labels := []string(r.Labels)
	if labels == nil {
		labels = []string{}
	}
	return Toy{ID: r.ID, Name: r.Name, Price: Price(r.Price), Labels: labels, CreatedAt: r.CreatedAt}
}

// PostgresStore keeps toys in a PostgreSQL table.
type PostgresStore struct {
	db       *sqlx.DB
	pageSize int
	now      func() time.Time
}

// NewPostgresStore connects to dsn and brings the schema up to date.
func NewPostgresStore(ctx context.Context, dsn string, pageSize int) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres store needs a DSN (store.dsn or DATABASE_URL)")
	}
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connect to postgres")
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	if err := migrateUp(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &PostgresStore{db: db, pageSize: pageSize, now: time.Now}, nil
}

// migrateUp applies the embedded migrations on a single pooled connection,
// which goes back to the pool afterwards.
func migrateUp(ctx context.Context, db *sqlx.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return errors.Wrap(err, "open migrations")
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return errors.Wrap(err, "acquire connection")
	}
	defer conn.Close()

	driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{})
	if err != nil {
		return errors.Wrap(err, "create postgres migration driver")
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return errors.Wrap(err, "create migrator")
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "run migrations")
	}
	return nil
}

// buildQuery renders the SELECT for a toy query with positional args.
func buildQuery(f FilterBy, s SortBy, pageIdx string, pageSize int) (string, []any, error) {
	if err := s.Validate(); err != nil {
		return "", nil, err
	}
	idx, paged, err := ParsePageIdx(pageIdx)
	if err != nil {
		return "", nil, err
	}

	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Txt != "" {
		where = append(where, "name ~* "+arg(f.Txt))
	}
	if f.MinPrice > 0 {
		where = append(where, "price >= "+arg(f.MinPrice))
	}
	if f.MaxPrice > 0 {
		where = append(where, "price <= "+arg(f.MaxPrice))
	}
	if len(f.Labels) > 0 {
		where = append(where, "labels @> "+arg(pq.Array(f.Labels)))
	}

	var b strings.Builder
	b.WriteString("SELECT " + toyColumns + " FROM toys")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY ")
	if col, ok := sortColumns[s.Type]; ok {
		dir := "ASC"
		if s.Descending() {
			dir = "DESC"
		}
		fmt.Fprintf(&b, "%s %s, ", col, dir)
	}
	b.WriteString("created_at, id")
	if paged {
		b.WriteString(" LIMIT " + arg(pageSize) + " OFFSET " + arg(pageOffset(idx, pageSize)))
	}
	return b.String(), args, nil
}

func (s *PostgresStore) Query(ctx context.Context, filterBy FilterBy, sortBy SortBy, pageIdx string) ([]Toy, error) {
	query, args, err := buildQuery(filterBy, sortBy, pageIdx, s.pageSize)
	if err != nil {
		return nil, err
	}
	var rows []toyRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "query toys")
	}
	toys := make([]Toy, 0, len(rows))
	for _, r := range rows {
		toys = append(toys, r.toy())
	}
	return toys, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Toy, error) {
	var r toyRow
	err := s.db.GetContext(ctx, &r, "SELECT "+toyColumns+" FROM toys WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return Toy{}, errors.Wrapf(ErrNotFound, "id %s", id)
	}
	if err != nil {
		return Toy{}, errors.Wrapf(err, "get toy %s", id)
	}
	return r.toy(), nil
}

func (s *PostgresStore) Save(ctx context.Context, t Toy) (Toy, error) {
	labels := pq.StringArray(t.Labels)
	if labels == nil {
		labels = pq.StringArray{}
	}

	var r toyRow
	if t.ID == "" {
		err := s.db.GetContext(ctx, &r,
			"INSERT INTO toys (id, name, price, labels, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING "+toyColumns,
			uuid.New().String(), t.Name, float64(t.Price), labels, s.now().UnixMilli())
		if err != nil {
			return Toy{}, errors.Wrap(err, "insert toy")
		}
		return r.toy(), nil
	}

	err := s.db.GetContext(ctx, &r,
		"UPDATE toys SET name = $1, price = $2, labels = $3 WHERE id = $4 RETURNING "+toyColumns,
		t.Name, float64(t.Price), labels, t.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return Toy{}, errors.Wrapf(ErrNotFound, "id %s", t.ID)
	}
	if err != nil {
		return Toy{}, errors.Wrapf(err, "update toy %s", t.ID)
	}
	return r.toy(), nil
}

func (s *PostgresStore) Remove(ctx context.Context, id string) (string, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM toys WHERE id = $1", id)
	if err != nil {
		return "", errors.Wrapf(err, "delete toy %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return "", errors.Wrapf(ErrNotFound, "id %s", id)
	}
	return RemovedMsg, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
