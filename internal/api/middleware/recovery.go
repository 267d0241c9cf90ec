package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/ranktracker/internal/api/apierr"
	httpmw "github.com/mcoot/ranktracker/internal/middleware"
)

// Recovery converts handler panics into the API's INTERNAL_ERROR envelope.
// metrics may be nil.
func Recovery(logger *slog.Logger, metrics *httpmw.Metrics) func(http.Handler) http.Handler {
	return httpmw.Recovery(logger, metrics, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
