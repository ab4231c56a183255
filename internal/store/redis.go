package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/shubham-shewale/trade-sim/pkg/models"
)

const (
	userKeyPrefix      = "user:"
	googleIndexPrefix  = "user:google:"
	usersSetKey        = "users"
	ordersKeyPrefix    = "orders:"
	positionsKeyPrefix = "positions:"
	ohlcKeyPrefix      = "ohlc:"
)

// Compile-time checks
var (
	_ UserStore  = (*RedisStore)(nil)
	_ TradeStore = (*RedisStore)(nil)
	_ BarStore   = (*RedisStore)(nil)
)

// RedisStore keeps every document as a JSON value under a prefixed key.
// Users live at user:{id} with a google-id index, orders are a per-user
// list (newest first), positions a per-user hash keyed by symbol, and OHLC
// bars a per-symbol hash keyed by date.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

// --- users ---

func (r *RedisStore) UpsertUserByGoogleID(ctx context.Context, googleID, email, name, avatar string) (*models.User, error) {
	id, err := r.client.Get(ctx, googleIndexPrefix+googleID).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("lookup google index: %w", err)
	}

	if err == nil {
		user, err := r.GetUser(ctx, id)
		if err != nil {
			return nil, err
		}
		user.Email = email
		user.Name = name
		user.Avatar = avatar
		if err := r.saveUser(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}

	user := &models.User{
		ID:        uuid.NewString(),
		GoogleID:  googleID,
		Email:     email,
		Name:      name,
		Avatar:    avatar,
		Cash:      models.StartingCash,
		Watchlist: []string{},
		CreatedAt: time.Now().UTC(),
	}

	pipe := r.client.Pipeline()
	payload, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}
	pipe.Set(ctx, userKeyPrefix+user.ID, payload, 0)
	pipe.Set(ctx, googleIndexPrefix+googleID, user.ID, 0)
	pipe.SAdd(ctx, usersSetKey, user.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (r *RedisStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	payload, err := r.client.Get(ctx, userKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("user %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(payload), &user); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", id, err)
	}
	return &user, nil
}

func (r *RedisStore) ListUsers(ctx context.Context) ([]models.User, error) {
	ids, err := r.client.SMembers(ctx, usersSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = userKeyPrefix + id
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget users: %w", err)
	}

	users := make([]models.User, 0, len(values))
	for _, val := range values {
		payload, ok := val.(string)
		if !ok || payload == "" {
			continue
		}
		var user models.User
		if err := json.Unmarshal([]byte(payload), &user); err != nil {
			continue // a corrupt document must not hide the rest
		}
		users = append(users, user)
	}
	return users, nil
}

func (r *RedisStore) UpdateUserCash(ctx context.Context, id string, cash float64) error {
	user, err := r.GetUser(ctx, id)
	if err != nil {
		return err
	}
	user.Cash = cash
	return r.saveUser(ctx, user)
}

// AddToWatchlist appends a ticker with set semantics and returns the
// updated list.
func (r *RedisStore) AddToWatchlist(ctx context.Context, id, ticker string) ([]string, error) {
	user, err := r.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, existing := range user.Watchlist {
		if existing == ticker {
			return user.Watchlist, nil
		}
	}
	user.Watchlist = append(user.Watchlist, ticker)
	if err := r.saveUser(ctx, user); err != nil {
		return nil, err
	}
	return user.Watchlist, nil
}

func (r *RedisStore) RemoveFromWatchlist(ctx context.Context, id, ticker string) ([]string, error) {
	user, err := r.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	kept := user.Watchlist[:0]
	for _, existing := range user.Watchlist {
		if existing != ticker {
			kept = append(kept, existing)
		}
	}
	user.Watchlist = kept
	if err := r.saveUser(ctx, user); err != nil {
		return nil, err
	}
	return user.Watchlist, nil
}

func (r *RedisStore) saveUser(ctx context.Context, user *models.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, userKeyPrefix+user.ID, payload, 0).Err(); err != nil {
		return fmt.Errorf("save user %s: %w", user.ID, err)
	}
	return nil
}

// --- orders ---

func (r *RedisStore) AppendOrder(ctx context.Context, order models.Order) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return err
	}
	// LPUSH keeps newest-first ordering for ListOrders.
	if err := r.client.LPush(ctx, ordersKeyPrefix+order.UserID, payload).Err(); err != nil {
		return fmt.Errorf("append order: %w", err)
	}
	return nil
}

func (r *RedisStore) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	values, err := r.client.LRange(ctx, ordersKeyPrefix+userID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	orders := make([]models.Order, 0, len(values))
	for _, payload := range values {
		var order models.Order
		if err := json.Unmarshal([]byte(payload), &order); err != nil {
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// --- positions ---

func (r *RedisStore) GetPosition(ctx context.Context, userID, symbol string) (*models.Position, error) {
	payload, err := r.client.HGet(ctx, positionsKeyPrefix+userID, symbol).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get position: %w", err)
	}

	var pos models.Position
	if err := json.Unmarshal([]byte(payload), &pos); err != nil {
		return nil, fmt.Errorf("decode position %s/%s: %w", userID, symbol, err)
	}
	return &pos, nil
}

func (r *RedisStore) UpsertPosition(ctx context.Context, pos models.Position) error {
	payload, err := json.Marshal(pos)
	if err != nil {
		return err
	}
	if err := r.client.HSet(ctx, positionsKeyPrefix+pos.UserID, pos.Symbol, payload).Err(); err != nil {
		return fmt.Errorf("upsert position: %w", err)
	}
	return nil
}

func (r *RedisStore) DeletePosition(ctx context.Context, userID, symbol string) error {
	if err := r.client.HDel(ctx, positionsKeyPrefix+userID, symbol).Err(); err != nil {
		return fmt.Errorf("delete position: %w", err)
	}
	return nil
}

func (r *RedisStore) ListPositions(ctx context.Context, userID string) ([]models.Position, error) {
	values, err := r.client.HGetAll(ctx, positionsKeyPrefix+userID).Result()
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}

	positions := make([]models.Position, 0, len(values))
	for _, payload := range values {
		var pos models.Position
		if err := json.Unmarshal([]byte(payload), &pos); err != nil {
			continue
		}
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].Symbol < positions[j].Symbol })
	return positions, nil
}

func (r *RedisStore) AllPositions(ctx context.Context) ([]models.Position, error) {
	ids, err := r.client.SMembers(ctx, usersSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	var all []models.Position
	for _, id := range ids {
		positions, err := r.ListPositions(ctx, id)
		if err != nil {
			return nil, err
		}
		all = append(all, positions...)
	}
	return all, nil
}

// --- ohlc ---

func (r *RedisStore) UpsertBars(ctx context.Context, bars []models.OHLCBar) error {
	if len(bars) == 0 {
		return nil
	}

	pipe := r.client.Pipeline()
	for _, bar := range bars {
		payload, err := json.Marshal(bar)
		if err != nil {
			return err
		}
		pipe.HSet(ctx, ohlcKeyPrefix+bar.Symbol, bar.Date, payload)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("upsert bars: %w", err)
	}
	return nil
}

func (r *RedisStore) GetBars(ctx context.Context, symbol string, since time.Time) ([]models.OHLCBar, error) {
	values, err := r.client.HGetAll(ctx, ohlcKeyPrefix+symbol).Result()
	if err != nil {
		return nil, fmt.Errorf("get bars: %w", err)
	}

	cutoff := since.Format("2006-01-02")
	bars := make([]models.OHLCBar, 0, len(values))
	for date, payload := range values {
		if date < cutoff {
			continue
		}
		var bar models.OHLCBar
		if err := json.Unmarshal([]byte(payload), &bar); err != nil {
			continue
		}
		bars = append(bars, bar)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date < bars[j].Date })
	return bars, nil
}
