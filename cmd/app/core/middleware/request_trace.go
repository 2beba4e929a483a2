package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"revcert/cmd/app/types"
)

func RequestTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.NewUUID()
		if err != nil {
			err := types.InternalError(err).Render(w, r)
			if err != nil {
				slog.Error("Failed rendering internal error response due to failed UUID generation",
					slog.String("error", err.Error()),
				)
			}
			return
		}

		start := time.Now()
		ctx := types.WithRequestID(r.Context(), id.String())
		next.ServeHTTP(w, r.WithContext(ctx))
		slog.Info("request handled",
			slog.String("requestID", id.String()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration", time.Since(start)),
		)
	})
}
