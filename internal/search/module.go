// Package search composes the validation pipeline, result assembler and HTTP
// handler into one mountable module.
package search

import (
	"opsdesk_backend/internal/events"
	apphttp "opsdesk_backend/internal/http"
	"opsdesk_backend/internal/search/assembler"
	"opsdesk_backend/internal/search/handler"
	"opsdesk_backend/internal/search/heuristic"
	"opsdesk_backend/internal/search/logic"
	"opsdesk_backend/internal/search/pipeline"
	"opsdesk_backend/internal/search/ports"
	"opsdesk_backend/internal/search/service"
	"opsdesk_backend/internal/search/syntax"
	"opsdesk_backend/internal/search/typo"
	"opsdesk_backend/platform/cache"
	"opsdesk_backend/platform/config"
	"opsdesk_backend/platform/logger"
	"opsdesk_backend/platform/validator"
)

// Deps are the collaborators the module needs from the composition root.
type Deps struct {
	Users    ports.UserDirectory
	Patterns ports.PatternStore
	Catalog  ports.ModelCatalog
	Quotes   ports.QuoteHistory
	Audit    ports.AuditLog
	Cache    cache.Store
	Bus      events.Bus
	Config   config.SearchConfig
	Val      *validator.Validator
	Log      *logger.Logger
}

type Module struct {
	handler *handler.Handler
	service *service.Service
}

func NewModule(deps Deps) *Module {
	syntaxStage := syntax.New()
	logicStage := logic.New(deps.Users, deps.Patterns, deps.Log)
	heuristicStage := heuristic.New(deps.Log)
	corrector := typo.New(deps.Patterns, deps.Bus, deps.Log)

	validation := pipeline.New(syntaxStage, logicStage, heuristicStage, corrector, deps.Patterns, deps.Bus, deps.Log)

	results := assembler.New(deps.Cache, deps.Catalog, deps.Quotes, assembler.Config{
		LookupTimeout: deps.Config.GetLookupTimeout(),
		PriceTTL:      deps.Config.GetPriceResponseTTL(),
		ReferenceTTL:  deps.Config.GetReferenceTTL(),
	}, deps.Log)

	svc := service.New(validation, corrector, results, deps.Users, deps.Patterns, deps.Audit)
	h := handler.New(svc, deps.Val)

	return &Module{handler: h, service: svc}
}

// Service exposes the search service for adapters in other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) Name() string {
	return "search"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/search")
	m.handler.RegisterRoutes(group)
}

var _ apphttp.Module = (*Module)(nil)
