package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ticashop/backoffice-api/internal/application/dto"
	"github.com/ticashop/backoffice-api/internal/application/ports"
	"github.com/ticashop/backoffice-api/pkg/logger"
)

// HeaderIdempotencyKey cabecera que identifica un intento de emisión o pago.
const (
	HeaderIdempotencyKey = "Idempotency-Key"
	headerReplayed       = "Idempotent-Replayed"
)

// Idempotency repite la respuesta de la primera ejecución cuando llega otra
// petición con la misma Idempotency-Key del mismo usuario. Va después de AuthMiddleware.
//
// Comportamiento:
//   - sin cabecera o sin store: la petición pasa tal cual.
//   - 409 IDEMPOTENCY_IN_FLIGHT si la primera ejecución aún no termina.
//   - solo las respuestas 2xx se guardan; el resto libera la clave.
//   - si el store falla se registra y la petición sigue sin protección.
func Idempotency(store ports.IdempotencyStore, log *logger.Logger) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx) error {
		header := c.Get(HeaderIdempotencyKey)
		if header == "" || store == nil {
			return c.Next()
		}
		key := GetUserID(c) + ":" + c.Method() + ":" + c.Path() + ":" + header
		ctx := c.UserContext()

		stored, err := store.Begin(ctx, key)
		switch {
		case errors.Is(err, ports.ErrIdempotencyInFlight):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Code:    "IDEMPOTENCY_IN_FLIGHT",
				Message: err.Error(),
			})
		case err != nil:
			log.Recoverable("idempotency_store", err).Str("path", c.Path()).Msg("continuando sin idempotencia")
			return c.Next()
		case stored != nil:
			c.Set(headerReplayed, "true")
			if stored.ContentType != "" {
				c.Set(fiber.HeaderContentType, stored.ContentType)
			}
			return c.Status(stored.Status).Send(stored.Body)
		}

		if err := c.Next(); err != nil {
			if rerr := store.Release(ctx, key); rerr != nil {
				log.Recoverable("idempotency_store", rerr).Msg("no se pudo liberar la clave")
			}
			return err
		}
		status := c.Response().StatusCode()
		if status < 200 || status >= 300 {
			if rerr := store.Release(ctx, key); rerr != nil {
				log.Recoverable("idempotency_store", rerr).Msg("no se pudo liberar la clave")
			}
			return nil
		}
		resp := ports.StoredResponse{
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
		}
		if err := store.Complete(ctx, key, resp); err != nil {
			log.Recoverable("idempotency_store", err).Msg("no se pudo guardar la respuesta")
		}
		return nil
	}
}
