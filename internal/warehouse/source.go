package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	go_ora "github.com/sijms/go-ora/v2"
	_ "modernc.org/sqlite"

	"cnpjscan/internal/company"
	"cnpjscan/internal/config"
	"cnpjscan/internal/services"
)

const defaultQueryTimeout = 5 * time.Minute

// Source reads the canonical work set from the client warehouse.
type Source struct {
	db      *sql.DB
	driver  string
	query   string
	timeout time.Duration
}

// Open connects to the warehouse described by cfg and verifies the
// connection.
func Open(ctx context.Context, cfg config.Database) (*Source, error) {
	dsn, err := DataSourceName(cfg)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "warehouse", "open", cfg.Driver, err)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, services.Wrap(services.ErrExternalTool, "warehouse", "connect", cfg.Driver, err)
	}

	return &Source{db: db, driver: cfg.Driver, query: cfg.Query, timeout: timeout}, nil
}

// DataSourceName returns the connection string for cfg. An explicit DSN wins;
// otherwise the Oracle URL is assembled from its parts.
func DataSourceName(cfg config.Database) (string, error) {
	if dsn := strings.TrimSpace(cfg.DSN); dsn != "" {
		return dsn, nil
	}
	switch cfg.Driver {
	case "oracle":
		if cfg.Host == "" || cfg.ServiceName == "" {
			return "", services.Wrap(services.ErrConfiguration, "warehouse", "dsn", "oracle host and service name are required", nil)
		}
		return go_ora.BuildUrl(cfg.Host, cfg.Port, cfg.ServiceName, cfg.Username, cfg.Password, nil), nil
	case "sqlite":
		return "", services.Wrap(services.ErrConfiguration, "warehouse", "dsn", "sqlite requires database.dsn", nil)
	default:
		return "", services.Wrap(services.ErrConfiguration, "warehouse", "dsn", fmt.Sprintf("unsupported driver %q", cfg.Driver), nil)
	}
}

// Close releases the connection pool.
func (s *Source) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ActiveClients runs the work-set query. The first column is the client id
// and the second the tax id; further columns are ignored. Tax ids are
// stripped to alphanumerics and rows without one are skipped.
func (s *Source) ActiveClients(ctx context.Context) ([]company.WorkItem, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("warehouse: source is not open")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, s.query)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "warehouse", "query", s.driver, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	if len(columns) < 2 {
		return nil, services.Wrap(services.ErrValidation, "warehouse", "query", fmt.Sprintf("expected client id and tax id columns, got %d column(s)", len(columns)), nil)
	}

	var items []company.WorkItem
	for rows.Next() {
		var clientID, taxID sql.NullString
		dest := make([]any, len(columns))
		dest[0], dest[1] = &clientID, &taxID
		for i := 2; i < len(dest); i++ {
			dest[i] = new(any)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan work item: %w", err)
		}
		cleaned := company.CleanTaxID(taxID.String)
		if cleaned == "" {
			continue
		}
		items = append(items, company.WorkItem{
			ClientID: strings.TrimSpace(clientID.String),
			TaxID:    cleaned,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "warehouse", "query", "iterate rows", err)
	}
	return items, nil
}
