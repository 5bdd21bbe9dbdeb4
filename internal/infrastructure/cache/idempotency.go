// Package cache guarda respuestas de operaciones no idempotentes (emisión, pagos)
// en Redis para que un reintento con la misma Idempotency-Key no las repita.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ticashop/backoffice-api/internal/application/ports"
)

const (
	keyPrefix     = "idem:"
	pendingMarker = "pending"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// New crea el cliente Redis y verifica la conexión.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	return client, nil
}

// IdempotencyStore reserva claves con SETNX y guarda la respuesta final con TTL.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore construye el store; ttl <= 0 usa 24 horas.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Begin intenta reservar la clave.
// Retorna la respuesta guardada si ya existe, ports.ErrIdempotencyInFlight si está reservada y
// (nil, nil) cuando la reserva queda a nombre del llamador.
func (s *IdempotencyStore) Begin(ctx context.Context, key string) (*ports.StoredResponse, error) {
	k := keyPrefix + key
	ok, err := s.client.SetNX(ctx, k, pendingMarker, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("cache: reservar clave: %w", err)
	}
	if ok {
		return nil, nil
	}

	raw, err := s.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		// expiró entre SETNX y GET; se reintenta una vez
		ok, err = s.client.SetNX(ctx, k, pendingMarker, s.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("cache: reservar clave: %w", err)
		}
		if ok {
			return nil, nil
		}
		return nil, ports.ErrIdempotencyInFlight
	}
	if err != nil {
		return nil, fmt.Errorf("cache: leer clave: %w", err)
	}
	if string(raw) == pendingMarker {
		return nil, ports.ErrIdempotencyInFlight
	}
	var resp ports.StoredResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("cache: decodificar respuesta: %w", err)
	}
	return &resp, nil
}

// Complete reemplaza la reserva por la respuesta final.
func (s *IdempotencyStore) Complete(ctx context.Context, key string, resp ports.StoredResponse) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("cache: codificar respuesta: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("cache: guardar respuesta: %w", err)
	}
	return nil
}

// Release libera la reserva para que un reintento vuelva a ejecutar la operación.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("cache: liberar clave: %w", err)
	}
	return nil
}
