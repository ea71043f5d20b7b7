package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/analysis"
	v1 "github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/api/v1"
	"github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/api/ws"
	"github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/store/postgres"
)

func registerAPIRoutes(r chi.Router, store *postgres.Store, runner *analysis.Runner) {
	apiConfig := huma.DefaultConfig("Investment Analysis API", "1.0.0")
	apiConfig.Servers = []*huma.Server{
		{URL: "/api/v1"},
	}
	api := humachi.New(r, apiConfig)

	v1.RegisterOpportunityRoutes(api, store, runner)
	v1.RegisterDocumentRoutes(api, store, runner)
	v1.RegisterJobRoutes(api, store, runner)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/jobs/{jobID}", hub.ServeJob)
}
