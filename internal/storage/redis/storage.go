package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/talentboard/profiledir/internal/model"
	"github.com/talentboard/profiledir/internal/storage"
)

// ErrUpdateConflict is returned when a record keeps changing under a read-modify-write
var ErrUpdateConflict = errors.New("redis: concurrent update conflict")

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.MaxUpdateRetries <= 0 {
		cfg.MaxUpdateRetries = DefaultConfig().MaxUpdateRetries
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ping checks the connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, 0).Err()
}

// getter is satisfied by both *redis.Client and *redis.Tx
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getJSON[T any](ctx context.Context, client getter, key string, notFound error) (*T, error) {
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound
		}
		return nil, err
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// updateJSON applies mutate to the record at key inside a WATCH transaction,
// retrying when another writer touches the key first.
func updateJSON[T any](ctx context.Context, s *Storage, key string, notFound error, mutate func(*T)) (*T, error) {
	var result *T
	txf := func(tx *redis.Tx) error {
		v, err := getJSON[T](ctx, tx, key, notFound)
		if err != nil {
			return err
		}
		mutate(v)

		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err == nil {
			result = v
		}
		return err
	}

	for i := 0; i < s.cfg.MaxUpdateRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUpdateConflict, key)
}

// Account operations

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	return s.set(ctx, accountKey(account.ID), account)
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	return getJSON[model.Account](ctx, s.client, accountKey(id), model.ErrAccountNotFound)
}

func (s *Storage) UpdateAccount(ctx context.Context, id model.AccountID, update *model.AccountUpdate) (*model.Account, error) {
	return updateJSON(ctx, s, accountKey(id), model.ErrAccountNotFound, func(a *model.Account) {
		a.Apply(update)
	})
}

// Credentials operations

func (s *Storage) SaveCredentials(ctx context.Context, creds *model.Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}

	// The email index is claimed first; an index owned by another account wins
	claimed, err := s.client.SetNX(ctx, emailIndexKey(creds.Email), string(creds.AccountID), 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		owner, err := s.client.Get(ctx, emailIndexKey(creds.Email)).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if owner != string(creds.AccountID) {
			return model.ErrEmailTaken
		}
	}
	return s.client.Set(ctx, credentialsKey(creds.AccountID), data, 0).Err()
}

func (s *Storage) GetCredentialsByEmail(ctx context.Context, email string) (*model.Credentials, error) {
	// Look up account ID from email index
	id, err := s.client.Get(ctx, emailIndexKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}

	return getJSON[model.Credentials](ctx, s.client, credentialsKey(model.AccountID(id)), model.ErrAccountNotFound)
}

// Player profile operations

func (s *Storage) SavePlayerProfile(ctx context.Context, profile *model.PlayerProfile) error {
	return s.set(ctx, playerKey(profile.AccountID), profile)
}

func (s *Storage) GetPlayerProfile(ctx context.Context, id model.AccountID) (*model.PlayerProfile, error) {
	return getJSON[model.PlayerProfile](ctx, s.client, playerKey(id), model.ErrProfileNotFound)
}

func (s *Storage) UpdatePlayerProfile(ctx context.Context, id model.AccountID, update *model.PlayerUpdate) (*model.PlayerProfile, error) {
	return updateJSON(ctx, s, playerKey(id), model.ErrProfileNotFound, func(p *model.PlayerProfile) {
		p.Apply(update)
	})
}

// Recruiter profile operations

func (s *Storage) SaveRecruiterProfile(ctx context.Context, profile *model.RecruiterProfile) error {
	return s.set(ctx, recruiterKey(profile.AccountID), profile)
}

func (s *Storage) GetRecruiterProfile(ctx context.Context, id model.AccountID) (*model.RecruiterProfile, error) {
	return getJSON[model.RecruiterProfile](ctx, s.client, recruiterKey(id), model.ErrProfileNotFound)
}

func (s *Storage) UpdateRecruiterProfile(ctx context.Context, id model.AccountID, update *model.RecruiterUpdate) (*model.RecruiterProfile, error) {
	return updateJSON(ctx, s, recruiterKey(id), model.ErrProfileNotFound, func(p *model.RecruiterProfile) {
		p.Apply(update)
	})
}

// Club directory operations

// The directory is stored as one JSON list so its order survives; order is the final match tie-break.
func (s *Storage) SaveClubs(ctx context.Context, clubs []model.Club) error {
	if clubs == nil {
		clubs = []model.Club{}
	}
	return s.set(ctx, clubsKey(), clubs)
}

func (s *Storage) GetClubs(ctx context.Context) ([]model.Club, error) {
	clubs, err := getJSON[[]model.Club](ctx, s.client, clubsKey(), model.ErrDirectoryUnavailable)
	if err != nil {
		return nil, err
	}
	return *clubs, nil
}
