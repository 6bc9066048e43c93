// Package service runs the import, categorization and forecasting pipeline
// over the SQLite store.
package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/bankmint/internal/auditlog"
	"github.com/cleared-dev/bankmint/internal/categorize"
	"github.com/cleared-dev/bankmint/internal/category"
	"github.com/cleared-dev/bankmint/internal/config"
	"github.com/cleared-dev/bankmint/internal/dedup"
	"github.com/cleared-dev/bankmint/internal/logger"
	"github.com/cleared-dev/bankmint/internal/model"
	"github.com/cleared-dev/bankmint/internal/store"
)

// Options wires a Service. Nil fields get defaults.
type Options struct {
	Config  *config.Config
	Catalog *category.Catalog
	Audit   *auditlog.Log // nil disables the audit log
	Logger  *zerolog.Logger
	Now     func() time.Time
}

// Service is safe for concurrent use.
type Service struct {
	store    *store.Store
	cfg      *config.Config
	catalog  *category.Catalog
	audit    *auditlog.Log
	log      zerolog.Logger
	dedup    *dedup.Deduplicator
	compiler *categorize.Compiler
	now      func() time.Time
}

// New creates a Service over st.
func New(st *store.Store, opts Options) *Service {
	if opts.Config == nil {
		opts.Config = config.Default("")
	}
	if opts.Catalog == nil {
		opts.Catalog = category.NewCatalog(category.Defaults())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	return &Service{
		store:    st,
		cfg:      opts.Config,
		catalog:  opts.Catalog,
		audit:    opts.Audit,
		log:      log,
		dedup:    dedup.New(st),
		compiler: categorize.NewCompiler(),
		now:      opts.Now,
	}
}

// Catalog returns the category catalog in use.
func (s *Service) Catalog() *category.Catalog {
	return s.catalog
}

// engine builds a categorization engine over the stored rules. Compiled
// patterns are reused across calls through the service's compiler.
func (s *Service) engine(ctx context.Context) (*categorize.Engine, error) {
	rules, err := s.store.ListRules(ctx)
	if err != nil {
		return nil, err
	}
	return categorize.NewEngine(rules, categorize.Options{
		ReviewThreshold: s.cfg.Thresholds.ReviewFlag,
		Compiler:        s.compiler,
	})
}

// opLog is the logger for one operation. A logger attached to ctx takes
// precedence over Options.Logger.
func (s *Service) opLog(ctx context.Context, op string, fields map[string]any) zerolog.Logger {
	l := logger.FromContextOr(ctx, s.log).With().Str("component", "service").Str("op", op).Logger()
	if len(fields) > 0 {
		l = logger.WithFields(l, fields)
	}
	return l
}

// record appends an audit entry. Audit failures are logged, not returned;
// the operation they describe has already committed.
func (s *Service) record(e auditlog.Entry) {
	if s.audit == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now()
	}
	if err := s.audit.Append(e); err != nil {
		s.log.Error().Str("component", "service").Err(err).Str("action", e.Action).Msg("audit log append failed")
	}
}

func (s *Service) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func accountOrDefault(id string) string {
	if id == "" {
		return model.DefaultAccountID
	}
	return id
}
