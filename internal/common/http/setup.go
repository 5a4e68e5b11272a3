package http

import (
	"net/http"

	"github.com/talkroom-app/backend/internal/common/constants"
	"github.com/talkroom-app/backend/internal/common/httpmetrics"
	"github.com/talkroom-app/backend/internal/common/logger"
)

// BuildBaseHandler wraps a handler in the standard middleware chain:
// security headers, panic recovery, trace ids, body size cap, metrics.
func BuildBaseHandler(log *logger.Logger, handler http.Handler) http.Handler {
	collector := httpmetrics.New()
	recovery := RecoveryMiddleware(log)
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)

	return SecurityHeadersMiddleware(recovery(TraceIDMiddleware(maxRequestSize(collector.Wrap(handler)))))
}
