package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"ideavault/internal/domain"
	"ideavault/internal/engine"
	"ideavault/internal/planner"
	"ideavault/internal/repo"
)

const planFailureMessage = "Failed to generate plan from external API"

// Planner produces implementation plans for the plan endpoint.
type Planner interface {
	Plan(ctx context.Context, req planner.Request) (string, error)
}

// Config for the HTTP API handler.
type Config struct {
	Engine     engine.Engine
	Planner    Planner
	BasePath   string
	CORSOrigin string
	Auth       AuthConfig
	Logger     zerolog.Logger
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"not_found"`
	Message string         `json:"message" example:"not found"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

// apiError models the error envelope.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns an HTTP handler exposing the IdeaVault API.
func New(cfg Config) (http.Handler, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/api"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimRight(basePath, "/")
	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "validation") {
			// Schema/request validation errors are plain bad requests.
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			msgs := make([]string, 0, len(errs))
			for _, e := range errs {
				msgs = append(msgs, e.Error())
			}
			details = map[string]any{"errors": msgs}
		}
		return newAPIError(status, "", msg, details)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(requestLogger(cfg.Logger))
	router.Use(corsMiddleware(cfg.CORSOrigin))
	router.Use(newAuthMiddleware(basePath, cfg.Auth, cfg.Logger))

	hcfg := huma.DefaultConfig("IdeaVault API", "1.0.0")
	hcfg.OpenAPIPath = basePath + "/openapi"
	hcfg.DocsPath = basePath + "/docs"
	hcfg.SchemasPath = basePath + "/schemas"
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerHealth(group)
	registerIdeas(group, cfg.Engine)
	registerPlan(group, cfg.Planner, cfg.Logger)

	return router, nil
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	var ve engine.ValidationError
	switch {
	case errors.As(err, &ve):
		return newAPIError(http.StatusBadRequest, "bad_request", ve.Error(), nil)
	case errors.Is(err, repo.ErrNotFound):
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, repo.ErrConflict):
		return newAPIError(http.StatusConflict, "conflict", err.Error(), nil)
	default:
		return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": err.Error()})
	}
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			evt := log.Info()
			if status >= http.StatusInternalServerError {
				evt = log.Error()
			}
			evt.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}

func corsMiddleware(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if origin == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerIdeas(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-ideas",
		Method:      http.MethodGet,
		Path:        "/ideas",
		Summary:     "List ideas",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []domain.Idea `json:"body"`
	}, error) {
		items, err := e.ListIdeas(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.Idea `json:"body"`
		}{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-idea",
		Method:        http.MethodPost,
		Path:          "/ideas",
		Summary:       "Create idea",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		Body IdeaRequest `json:"body"`
	}) (*struct {
		Body domain.Idea `json:"body"`
	}, error) {
		idea, err := input.Body.toDomain()
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", err.Error(), map[string]any{"field": "tags"})
		}
		created, err := e.CreateIdea(ctx, idea, actorIDFromContext(ctx))
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Idea `json:"body"`
		}{Body: created}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-idea",
		Method:      http.MethodGet,
		Path:        "/ideas/{id}",
		Summary:     "Get idea",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body domain.Idea `json:"body"`
	}, error) {
		idea, err := e.GetIdea(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Idea `json:"body"`
		}{Body: idea}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-idea",
		Method:      http.MethodPut,
		Path:        "/ideas/{id}",
		Summary:     "Update idea",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string      `path:"id"`
		Body IdeaRequest `json:"body"`
	}) (*struct {
		Body domain.Idea `json:"body"`
	}, error) {
		patch, err := input.Body.toDomain()
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", err.Error(), map[string]any{"field": "tags"})
		}
		updated, err := e.UpdateIdea(ctx, input.ID, patch, actorIDFromContext(ctx))
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Idea `json:"body"`
		}{Body: updated}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-idea",
		Method:        http.MethodDelete,
		Path:          "/ideas/{id}",
		Summary:       "Delete idea",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if err := e.DeleteIdea(ctx, input.ID, actorIDFromContext(ctx)); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "idea-activity",
		Method:      http.MethodGet,
		Path:        "/ideas/{id}/activity",
		Summary:     "Idea activity log",
	}, func(ctx context.Context, input *struct {
		ID    string `path:"id"`
		Limit int    `query:"limit" default:"100" minimum:"0" maximum:"1000"`
	}) (*struct {
		Body ActivityResponse `json:"body"`
	}, error) {
		items, err := e.Activity(ctx, input.ID, input.Limit)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ActivityResponse `json:"body"`
		}{Body: ActivityResponse{Items: items}}, nil
	})
}

type planOutput struct {
	Status      int
	ContentType string `header:"Content-Type"`
	Body        []byte
}

func registerPlan(api huma.API, p Planner, log zerolog.Logger) {
	huma.Register(api, huma.Operation{
		OperationID: "generate-plan",
		Method:      http.MethodGet,
		Path:        "/plan",
		Summary:     "Generate an implementation plan for an idea",
	}, func(ctx context.Context, input *struct {
		Domain               string `query:"Domain" doc:"Idea category; may be empty"`
		BriefIdeaDescription string `query:"BriefIdeaDescription" required:"true"`
		KeyFocusAreas        string `query:"KeyFocusAreas" required:"true"`
		TargetAudienceUsers  string `query:"TargetAudienceUsers" required:"true"`
	}) (*planOutput, error) {
		failed := &planOutput{
			Status:      http.StatusInternalServerError,
			ContentType: "text/plain; charset=utf-8",
			Body:        []byte(planFailureMessage),
		}
		if p == nil {
			log.Error().Msg("plan requested but no planner is configured")
			return failed, nil
		}
		text, err := p.Plan(ctx, planner.Request{
			Domain:               input.Domain,
			BriefIdeaDescription: input.BriefIdeaDescription,
			KeyFocusAreas:        input.KeyFocusAreas,
			TargetAudienceUsers:  input.TargetAudienceUsers,
		})
		if err != nil {
			log.Error().Err(err).Str("domain", input.Domain).Msg("plan generation failed")
			return failed, nil
		}
		return &planOutput{
			Status:      http.StatusOK,
			ContentType: "text/plain; charset=utf-8",
			Body:        []byte(text),
		}, nil
	})
}
