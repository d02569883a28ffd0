package handler

import (
	"net/http"
	"sync"

	"papertrade-backend/bootstrap"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog/log"
)

var (
	once    sync.Once
	serve   http.HandlerFunc
	initErr error
)

// Handler is the serverless entry point; the platform rewrites every path here. The app is built
// on the first request so a cold start with a bad config reports 503 instead of crashing.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		app, err := bootstrap.New()
		if err != nil {
			initErr = err
			log.Error().Err(err).Msg("app create failed")
			return
		}
		serve = adaptor.FiberApp(app)
	})
	if initErr != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"error","error":{"message":"Service Unavailable","statusCode":503,"details":{}}}`))
		return
	}
	r.RequestURI = r.URL.String()
	serve(w, r)
}
