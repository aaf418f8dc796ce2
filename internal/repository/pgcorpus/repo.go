package pgcorpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/pgvector/pgvector-go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kailas-cloud/schemematch/internal/domain"
	"github.com/kailas-cloud/schemematch/internal/domain/profile"
	"github.com/kailas-cloud/schemematch/internal/domain/scheme"
	"github.com/kailas-cloud/schemematch/internal/domain/search/filter"
	"github.com/kailas-cloud/schemematch/internal/domain/search/result"
)

// textSearchConfig is the Postgres text search configuration. 'simple' leaves
// transliterated scheme names ("kisan", "yojana") unstemmed.
const textSearchConfig = "'simple'"

// documentVector weights the scheme name above tags, and tags above body text.
const documentVector = `setweight(to_tsvector(` + textSearchConfig + `, coalesce(name, '')), 'A') || ` +
	`setweight(to_tsvector(` + textSearchConfig + `, replace(coalesce(tags, ''), ',', ' ')), 'B') || ` +
	`to_tsvector(` + textSearchConfig + `, coalesce(details, '') || ' ' || ` +
	`coalesce(benefits, '') || ' ' || coalesce(eligibility, ''))`

// Open connects to Postgres via gorm.
func Open(dsn string, cfg *gorm.Config) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("dsn is required")
	}
	if cfg == nil {
		cfg = &gorm.Config{}
	}
	db, err := gorm.Open(postgres.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// Repo is the Postgres scheme corpus and profile store.
type Repo struct {
	db         *gorm.DB
	dimensions int
}

// New creates a Postgres corpus repository.
func New(db *gorm.DB, dimensions int) *Repo {
	return &Repo{db: db, dimensions: dimensions}
}

// Dimensions returns the stored vector dimension.
func (r *Repo) Dimensions() int {
	return r.dimensions
}

// Ping checks database connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (r *Repo) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.Close() //nolint:wrapcheck // pass-through
}

// EnsureIndex verifies the corpus tables exist. Schema migrations are managed outside the service.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	m := r.db.WithContext(ctx).Migrator()
	for _, model := range []any{&schemeRow{}, &profileRow{}} {
		if !m.HasTable(model) {
			return fmt.Errorf("table for %T is missing", model)
		}
	}
	return nil
}

// Upsert inserts or replaces a scheme. Used by seeding and tests.
func (r *Repo) Upsert(ctx context.Context, s *scheme.Scheme) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	if s.HasEmbedding() && r.dimensions > 0 && len(s.Embedding) != r.dimensions {
		return fmt.Errorf("%w: embedding has %d dimensions, corpus expects %d",
			domain.ErrInvalidRequest, len(s.Embedding), r.dimensions)
	}
	row := toRow(s)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert scheme %s: %w", s.ID, err)
	}
	return nil
}

// Get returns a scheme by ID.
func (r *Repo) Get(ctx context.Context, id string) (scheme.Scheme, error) {
	var row schemeRow
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return scheme.Scheme{}, domain.ErrSchemeNotFound
		}
		return scheme.Scheme{}, fmt.Errorf("get scheme %s: %w", id, err)
	}
	return row.toScheme(), nil
}

// Delete removes a scheme row. Deleting a missing scheme is not an error.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.deleteQuery(r.db.WithContext(ctx), id).Error; err != nil {
		return fmt.Errorf("delete scheme %s: %w", id, err)
	}
	return nil
}

// FindByVector ranks schemes by cosine similarity (1 - cosine distance).
// Rows without an embedding are never candidates.
func (r *Repo) FindByVector(
	ctx context.Context, vector []float32, f filter.Filter, limit int,
) ([]result.Hit, error) {
	var rows []scoredRow
	if err := r.vectorQuery(r.db.WithContext(ctx), vector, f, limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return toHits(rows), nil
}

// FindByLexical ranks schemes by ts_rank over the weighted document vector. Keywords are OR-ed.
func (r *Repo) FindByLexical(
	ctx context.Context, keywords []string, f filter.Filter, limit int,
) ([]result.Hit, error) {
	tsq := tsQuery(keywords)
	if tsq == "" {
		return nil, nil
	}
	var rows []scoredRow
	if err := r.lexicalQuery(r.db.WithContext(ctx), tsq, f, limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}
	return toHits(rows), nil
}

// GetProfile returns a stored user profile.
func (r *Repo) GetProfile(ctx context.Context, userID string) (profile.UserProfile, error) {
	var row profileRow
	err := r.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return profile.UserProfile{}, domain.ErrProfileNotFound
		}
		return profile.UserProfile{}, fmt.Errorf("get profile %s: %w", userID, err)
	}
	var p profile.UserProfile
	if err := json.Unmarshal(row.Profile, &p); err != nil {
		return profile.UserProfile{}, fmt.Errorf("decode profile %s: %w", userID, err)
	}
	return p, nil
}

// PutProfile stores a user profile, replacing any previous one.
func (r *Repo) PutProfile(ctx context.Context, userID string, p *profile.UserProfile) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	row := profileRow{UserID: userID, Profile: data}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("put profile %s: %w", userID, err)
	}
	return nil
}

// ProfileStore adapts the profile methods to the Get contract used by the orchestrator.
func (r *Repo) ProfileStore() *ProfileStore {
	return &ProfileStore{repo: r}
}

// ProfileStore exposes Postgres-backed profiles under the generic Get name.
type ProfileStore struct {
	repo *Repo
}

// Get returns a stored user profile.
func (p *ProfileStore) Get(ctx context.Context, userID string) (profile.UserProfile, error) {
	return p.repo.GetProfile(ctx, userID)
}

// Put stores a user profile.
func (p *ProfileStore) Put(ctx context.Context, userID string, prof *profile.UserProfile) error {
	return p.repo.PutProfile(ctx, userID, prof)
}

// Ping checks database connectivity.
func (p *ProfileStore) Ping(ctx context.Context) error {
	return p.repo.Ping(ctx)
}

func (r *Repo) deleteQuery(tx *gorm.DB, id string) *gorm.DB {
	return tx.Where("id = ?", id).Delete(&schemeRow{})
}

func (r *Repo) vectorQuery(tx *gorm.DB, vector []float32, f filter.Filter, limit int) *gorm.DB {
	vec := pgvector.NewVector(vector)
	q := tx.Model(&schemeRow{}).
		Select("*, 1 - (embedding <=> ?) AS score", vec).
		Where("embedding IS NOT NULL")
	return applyFilter(q, f).
		Order(clause.Expr{SQL: "embedding <=> ?", Vars: []any{vec}}).
		Order("id").
		Limit(limit)
}

func (r *Repo) lexicalQuery(tx *gorm.DB, tsq string, f filter.Filter, limit int) *gorm.DB {
	q := tx.Model(&schemeRow{}).
		Select("*, ts_rank("+documentVector+", to_tsquery("+textSearchConfig+", ?)) AS score", tsq).
		Where(documentVector+" @@ to_tsquery("+textSearchConfig+", ?)", tsq)
	return applyFilter(q, f).
		Order("score DESC").
		Order("id").
		Limit(limit)
}

// applyFilter adds the filter as SQL predicates. A state filter keeps nationwide schemes.
func applyFilter(q *gorm.DB, f filter.Filter) *gorm.DB {
	if f.Level != "" {
		q = q.Where("level = ?", string(f.Level))
	}
	if f.State != "" {
		q = q.Where("(state = '' OR lower(state) = lower(?))", f.State)
	}
	if len(f.Categories) > 0 {
		cats := make([]string, 0, len(f.Categories))
		for _, c := range f.Categories {
			cats = append(cats, strings.ToLower(strings.TrimSpace(c)))
		}
		q = q.Where("string_to_array(lower(category), ',') && string_to_array(?, ',')", strings.Join(cats, ","))
	}
	return q
}

// tsQuery builds an OR tsquery from keywords, keeping only letters and digits.
func tsQuery(keywords []string) string {
	terms := make([]string, 0, len(keywords))
	seen := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		clean := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return unicode.ToLower(r)
			}
			return -1
		}, k)
		if clean == "" || seen[clean] {
			continue
		}
		seen[clean] = true
		terms = append(terms, clean)
	}
	return strings.Join(terms, " | ")
}

func toHits(rows []scoredRow) []result.Hit {
	if len(rows) == 0 {
		return nil
	}
	hits := make([]result.Hit, 0, len(rows))
	for i := range rows {
		hits = append(hits, result.Hit{Scheme: rows[i].toScheme(), Score: rows[i].Score})
	}
	return hits
}
