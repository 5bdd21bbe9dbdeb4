package ports

import (
	"context"
	"errors"
)

// ErrIdempotencyInFlight otra petición con la misma clave aún no termina.
var ErrIdempotencyInFlight = errors.New("petición con la misma Idempotency-Key en curso")

// StoredResponse respuesta guardada para repetir ante un reintento.
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyStore reserva claves y guarda la respuesta de la primera ejecución.
// Begin retorna (nil, nil) cuando la reserva queda a nombre del llamador.
type IdempotencyStore interface {
	Begin(ctx context.Context, key string) (*StoredResponse, error)
	Complete(ctx context.Context, key string, resp StoredResponse) error
	Release(ctx context.Context, key string) error
}
