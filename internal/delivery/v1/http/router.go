package http

import (
	_ "github.com/DRSN-tech/taxonomy-backend/docs" // описание API для swagger
	"github.com/DRSN-tech/taxonomy-backend/internal/usecase"
	"github.com/DRSN-tech/taxonomy-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(taxonomyUC usecase.TaxonomyUC) {
	r.router.Use(middleware.RequestID, middleware.Recoverer)

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		handler := NewTaxonomyHandler(taxonomyUC, r.logger)
		registerCategoryRoutes(v1, handler)
	})
}

func registerCategoryRoutes(router chi.Router, h *TaxonomyHandler) {
	router.Route("/categories", func(c chi.Router) {
		c.Get("/", h.listCategories)
		c.Post("/", h.createCategory)

		c.Route("/{categoryID}", func(cat chi.Router) {
			cat.Get("/", h.getCategory)
			cat.Patch("/", h.updateCategory)
			cat.Delete("/", h.deleteCategory)

			registerNodeRoutes(cat, h)
			registerLegacyRoutes(cat, h)
		})
	})
}

func registerNodeRoutes(router chi.Router, h *TaxonomyHandler) {
	// POST /nodes добавляет узел верхнего уровня, хвост пути задаёт предков
	router.Post("/nodes", h.addNode)
	router.Post("/nodes/*", h.addNode)
	router.Patch("/nodes/*", h.updateNode)
	router.Delete("/nodes/*", h.deleteNode)
}

func registerLegacyRoutes(router chi.Router, h *TaxonomyHandler) {
	router.Route("/subcategories", func(sub chi.Router) {
		sub.Post("/", h.addSubcategory)

		sub.Route("/{subID}", func(s chi.Router) {
			s.Patch("/", h.updateSubcategory)
			s.Delete("/", h.deleteSubcategory)

			s.Post("/secondary", h.addSecondary)
			s.Patch("/secondary/{secID}", h.updateSecondary)
			s.Delete("/secondary/{secID}", h.deleteSecondary)
		})
	})
}
