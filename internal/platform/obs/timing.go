package obs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// Time logs the duration of an operation, tagged with the request id
// when one is in the context. Use with a named error return:
//
//	defer obs.Time(ctx, "lotes.ReemplazarMiembros")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID, _ := ctx.Value(RequestIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start)

		evt := log.Debug()
		if errp != nil && *errp != nil {
			evt = log.Warn().Err(*errp)
		}
		evt.Str("req_id", reqID).Str("op", name).Int64("dur_ms", dur.Milliseconds()).Msg("op terminada")
	}
}
