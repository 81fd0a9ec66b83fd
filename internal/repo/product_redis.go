package repo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rogerio-castellano/eshop/internal/models"
	"github.com/rogerio-castellano/eshop/internal/redissvc"
)

// RedisProductRepository stores each product as a hash and keeps insertion
// order in a list of ids.
type RedisProductRepository struct {
	svc *redissvc.RedisService
}

func NewRedisProductRepository(svc *redissvc.RedisService) *RedisProductRepository {
	return &RedisProductRepository{svc: svc}
}

func (r *RedisProductRepository) indexKey() string {
	return r.svc.Key("products")
}

func (r *RedisProductRepository) productKey(id string) string {
	return r.svc.Key("product", id)
}

func (r *RedisProductRepository) Create(ctx context.Context, p models.Product) (models.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	_, err := r.svc.Rdb().TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.productKey(p.ID), toHash(p))
		pipe.RPush(ctx, r.indexKey(), p.ID)
		return nil
	})
	if err != nil {
		return models.Product{}, fmt.Errorf("store product: %w", err)
	}
	return p, nil
}

func (r *RedisProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	ids, err := r.svc.Rdb().LRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		p, err := r.GetByID(ctx, id)
		if errors.Is(err, ErrProductNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (r *RedisProductRepository) GetByID(ctx context.Context, id string) (models.Product, error) {
	fields, err := r.svc.Rdb().HGetAll(ctx, r.productKey(id)).Result()
	if err != nil {
		return models.Product{}, err
	}
	if len(fields) == 0 {
		return models.Product{}, ErrProductNotFound
	}
	return fromHash(id, fields)
}

func (r *RedisProductRepository) Update(ctx context.Context, p models.Product) (models.Product, error) {
	existing, err := r.GetByID(ctx, p.ID)
	if err != nil {
		return models.Product{}, err
	}
	p.CreatedAt = existing.CreatedAt

	if err := r.svc.Rdb().HSet(ctx, r.productKey(p.ID), toHash(p)).Err(); err != nil {
		return models.Product{}, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

func (r *RedisProductRepository) Delete(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := r.svc.Rdb().TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, r.productKey(id))
		pipe.LRem(ctx, r.indexKey(), 0, id)
		return nil
	})
	if err != nil {
		return err
	}
	if del.Val() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *RedisProductRepository) Filter(ctx context.Context, pf ProductFilter) ([]models.Product, int, error) {
	all, err := r.GetAll(ctx)
	if err != nil {
		return nil, 0, err
	}

	filtered := []models.Product{}
	for _, p := range all {
		if matchesFilter(p, pf) {
			filtered = append(filtered, p)
		}
	}
	return paginate(filtered, pf), len(filtered), nil
}

func toHash(p models.Product) map[string]any {
	return map[string]any{
		"name":       p.Name,
		"quantity":   p.Quantity,
		"created_at": p.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at": p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func fromHash(id string, fields map[string]string) (models.Product, error) {
	qty, err := strconv.Atoi(fields["quantity"])
	if err != nil {
		return models.Product{}, fmt.Errorf("product %s: bad quantity %q: %w", id, fields["quantity"], err)
	}
	p := models.Product{ID: id, Name: fields["name"], Quantity: qty}
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, fields["created_at"])
	p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, fields["updated_at"])
	return p, nil
}
