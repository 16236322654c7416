package gamestate

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

// The engine tick must be updated in the same atomic transaction as all the state changes
// associated with that tick. This means the manager here must also implement the TickStorage interface.
var _ TickStorage = &EntityCommandBuffer{}

// GetTickNumber returns the last tick that was successfully completed. A missing value is treated
// as tick 0.
func (m *EntityCommandBuffer) GetTickNumber(ctx context.Context) (uint64, error) {
	curr, err := m.dbStorage.GetUInt64(ctx, storageCurrentTickKey())
	if err != nil {
		if eris.Is(eris.Cause(err), redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return curr, nil
}

// FinalizeTick combines all pending state changes into a single multi/exec redis transaction and commits them
// to the DB.
func (m *EntityCommandBuffer) FinalizeTick(ctx context.Context) error {
	ctx, span := otel.Tracer("tick").Start(ctx, "tick.span.finalize")
	defer span.End()

	pipe, err := m.makePipeOfRedisCommands(ctx)
	if err != nil {
		span.SetStatus(codes.Error, eris.ToString(err, true))
		span.RecordError(err)
		return err
	}
	if err = pipe.Incr(ctx, storageCurrentTickKey()); err != nil {
		span.SetStatus(codes.Error, eris.ToString(err, true))
		span.RecordError(err)
		return err
	}
	if err = pipe.EndTransaction(ctx); err != nil {
		span.SetStatus(codes.Error, eris.ToString(err, true))
		span.RecordError(err)
		return err
	}

	m.pendingArchIDs = nil
	return m.DiscardPending()
}
