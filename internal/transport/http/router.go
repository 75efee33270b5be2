package http

import (
	"context"
	"net/http"

	"github.com/Vansh545/bright-wellbeing-sub001/internal/application/consult"
	"github.com/Vansh545/bright-wellbeing-sub001/internal/application/otp"
	"github.com/Vansh545/bright-wellbeing-sub001/internal/config"
	"github.com/Vansh545/bright-wellbeing-sub001/internal/transport/http/handler"
	appmiddleware "github.com/Vansh545/bright-wellbeing-sub001/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	VerificationRepo VerificationRepository
	UserRepo         UserRepository
	Mailer           Mailer
	AI               Completer
	Logger           *zerolog.Logger
}

// NewRouter builds and returns the application router. Background work
// owned by the router stops when ctx is cancelled.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.RequestLogger(deps.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:     cfg.AllowedOrigins,
		AllowedMethods:     appmiddleware.CORSMethods,
		AllowedHeaders:     appmiddleware.CORSHeaders,
		AllowCredentials:   false,
		MaxAge:             300,
		OptionsPassthrough: true,
	}))
	r.Use(appmiddleware.Preflight(cfg.AllowedOrigins))

	// 5 requests/second, burst of 10, per client IP on public write routes.
	publicRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)
	go func() {
		<-ctx.Done()
		publicRL.Stop()
	}()

	otpSvc := otp.NewService(otp.ServiceDeps{
		VerificationRepo: deps.VerificationRepo,
		UserRepo:         deps.UserRepo,
		Mailer:           deps.Mailer,
		Policy:           cfg.OTP,
		Logger:           deps.Logger,
	})
	consultSvc := consult.NewService(deps.AI, deps.Logger)

	healthH := handler.NewHealthHandler()
	otpH := handler.NewOTPHandler(otpSvc, deps.Logger)
	resetH := handler.NewPasswordResetHandler(otpSvc, deps.Logger)
	consultH := handler.NewConsultHandler(consultSvc, deps.Logger)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)

		r.Group(func(r chi.Router) {
			r.Use(publicRL.Limit)

			r.Post("/otp/send", otpH.Send)
			r.Post("/otp/verify", otpH.Verify)
			r.Post("/password-reset/request", resetH.Request)
			r.Post("/password-reset/confirm", resetH.Confirm)
			r.Post("/ai/consult", consultH.Consult)
			r.Post("/ai/chat", consultH.Chat)
		})
	})

	return r
}
