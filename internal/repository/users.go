package repository

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/userapi/internal/cache"
	"github.com/vyrodovalexey/userapi/internal/config"
	"github.com/vyrodovalexey/userapi/internal/observability"
	"github.com/vyrodovalexey/userapi/internal/user"
)

const repositoryTracerName = "github.com/vyrodovalexey/userapi/internal/repository"

// UserStore is the persistent store behind the repository.
type UserStore interface {
	// ScanAll returns every user ordered by id.
	ScanAll(ctx context.Context) ([]user.User, error)

	// GetByID returns the user with id, or nil when there is none.
	GetByID(ctx context.Context, id int64) (*user.User, error)

	// Insert stores u and returns the assigned id.
	Insert(ctx context.Context, u *user.User) (int64, error)

	// UpdateFields writes changes to the row with id and returns the
	// number of rows affected.
	UpdateFields(ctx context.Context, id int64, changes []user.Change) (int64, error)

	// DeleteByID removes the row with id and reports whether it existed.
	DeleteByID(ctx context.Context, id int64) (bool, error)
}

// Users is a cache-aside repository for users. Reads go to the cache
// first and populate it on a miss; writes go to the store and then
// invalidate the affected keys.
type Users struct {
	store     UserStore
	cache     cache.Store
	keyPrefix string
	ttl       time.Duration
	logger    observability.Logger
}

// Option configures a Users repository.
type Option func(*Users)

// WithKeyPrefix sets the collection key. Entity keys are
// "<prefix>:<id>".
func WithKeyPrefix(prefix string) Option {
	return func(r *Users) {
		r.keyPrefix = prefix
	}
}

// WithTTL sets how long populated entries live in the cache.
func WithTTL(ttl time.Duration) Option {
	return func(r *Users) {
		r.ttl = ttl
	}
}

// WithLogger sets the repository logger.
func WithLogger(logger observability.Logger) Option {
	return func(r *Users) {
		r.logger = logger
	}
}

// NewUsers creates a Users repository.
func NewUsers(store UserStore, c cache.Store, opts ...Option) *Users {
	r := &Users{
		store:     store,
		cache:     c,
		keyPrefix: config.DefaultCacheKeyPrefix,
		ttl:       config.DefaultCacheTTL,
		logger:    observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cache == nil {
		r.cache = cache.NewDisabledStore()
	}
	return r
}

// CollectionKey returns the cache key of the full listing.
func (r *Users) CollectionKey() string {
	return r.keyPrefix
}

// EntityKey returns the cache key of the user with id.
func (r *Users) EntityKey(id int64) string {
	return r.keyPrefix + ":" + strconv.FormatInt(id, 10)
}

func (r *Users) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(repositoryTracerName).Start(ctx, "repository.users."+op,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return observability.ContextWithSpan(ctx, span), span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// ListAll returns every user. An empty result is not cached.
func (r *Users) ListAll(ctx context.Context) (users []user.User, err error) {
	ctx, span := r.startSpan(ctx, "ListAll")
	defer func() { endSpan(span, err) }()

	key := r.CollectionKey()
	if data, ok := r.cache.Get(ctx, key); ok {
		var cached []user.User
		if decodeErr := json.Unmarshal(data, &cached); decodeErr == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return cached, nil
		}
		r.logger.WithContext(ctx).Warn("ignoring undecodable cache entry", observability.String("key", key))
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	users, err = r.store.ScanAll(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []user.User{}
	}

	if len(users) > 0 {
		r.populate(ctx, key, users)
	}
	return users, nil
}

// FindByID returns the user with id or user.ErrNotFound. Absence is
// not cached.
func (r *Users) FindByID(ctx context.Context, id int64) (u *user.User, err error) {
	ctx, span := r.startSpan(ctx, "FindByID", attribute.Int64("user.id", id))
	defer func() { endSpan(span, err) }()

	key := r.EntityKey(id)
	if data, ok := r.cache.Get(ctx, key); ok {
		var cached user.User
		if decodeErr := json.Unmarshal(data, &cached); decodeErr == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return &cached, nil
		}
		r.logger.WithContext(ctx).Warn("ignoring undecodable cache entry", observability.String("key", key))
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	u, err = r.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, user.ErrNotFound
	}

	r.populate(ctx, key, u)
	return u, nil
}

// Save inserts u, sets its id and invalidates the collection key.
func (r *Users) Save(ctx context.Context, u *user.User) (_ *user.User, err error) {
	ctx, span := r.startSpan(ctx, "Save")
	defer func() { endSpan(span, err) }()

	id, err := r.store.Insert(ctx, u)
	if err != nil {
		return nil, err
	}
	u.ID = id
	span.SetAttributes(attribute.Int64("user.id", id))

	r.cache.Delete(ctx, r.CollectionKey())
	return u, nil
}

// Update applies the mutable fields of changes to u and its row. When
// changes holds no mutable field nothing is written and u is returned
// as is. After a write the entity key and then the collection key are
// invalidated. A row that vanished before the write yields
// user.ErrNotFound.
func (r *Users) Update(ctx context.Context, u *user.User, changes map[string]any) (_ *user.User, err error) {
	ctx, span := r.startSpan(ctx, "Update", attribute.Int64("user.id", u.ID))
	defer func() { endSpan(span, err) }()

	updated := *u
	applied := updated.Apply(changes)
	span.SetAttributes(attribute.Int("user.changed_fields", len(applied)))
	if len(applied) == 0 {
		return u, nil
	}

	affected, err := r.store.UpdateFields(ctx, u.ID, applied)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		r.cache.DeleteMany(ctx, r.EntityKey(u.ID), r.CollectionKey())
		return nil, user.ErrNotFound
	}
	*u = updated

	r.cache.Delete(ctx, r.EntityKey(u.ID))
	r.cache.Delete(ctx, r.CollectionKey())
	return u, nil
}

// Delete removes the user with id and reports whether a row was
// removed. The entity and collection keys are invalidated together
// once the statement has completed, whether or not a row matched.
func (r *Users) Delete(ctx context.Context, id int64) (deleted bool, err error) {
	ctx, span := r.startSpan(ctx, "Delete", attribute.Int64("user.id", id))
	defer func() { endSpan(span, err) }()

	deleted, err = r.store.DeleteByID(ctx, id)
	if err != nil {
		return false, err
	}
	span.SetAttributes(attribute.Bool("user.deleted", deleted))

	r.cache.DeleteMany(ctx, r.EntityKey(id), r.CollectionKey())
	return deleted, nil
}

func (r *Users) populate(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		r.logger.WithContext(ctx).Warn("failed to encode cache entry",
			observability.String("key", key),
			observability.Error(err),
		)
		return
	}
	r.cache.Set(ctx, key, data, r.ttl)
}
