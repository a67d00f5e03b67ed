package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/syncflow/syncflow/internal/common/logtrace"
	"github.com/syncflow/syncflow/internal/common/middleware"
	"github.com/syncflow/syncflow/internal/govsrv/apis"
	"github.com/syncflow/syncflow/internal/govsrv/config"
)

type GovServer struct {
	Router *chi.Mux
}

func CreateNewServer() (*GovServer, error) {
	s := &GovServer{}
	s.Router = chi.NewRouter()
	return s, nil
}

// MountHandlers installs the middleware chain and the governance routes.
func (s *GovServer) MountHandlers(api *apis.API) {
	s.Router.Use(middleware.RequestLogger)
	s.Router.Use(middleware.PanicHandler)
	if config.Config().HandleCORS {
		s.Router.Use(s.HandleCORS)
	}
	api.Router(s.Router)
	if logtrace.IsTraceEnabled() {
		fmt.Println("Routes in governance router")
		walkFunc := func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
			fmt.Printf("%s %s\n", method, route)
			return nil
		}
		if err := chi.Walk(s.Router, walkFunc); err != nil {
			log.Error().Err(err).Msg("Error walking router")
		}
	}
}

func (s *GovServer) HandleCORS(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"}, //TODO: Change this to specific origin
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "Content-Length", "Accept-Encoding"},
		ExposedHeaders:   []string{"Link", "Location", "X-Syncflow-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	})(next)
}
