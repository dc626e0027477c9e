package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"dealcore/internal/clients"
	"dealcore/internal/clock"
	"dealcore/internal/config"
	"dealcore/internal/repos"
	"dealcore/internal/services"
)

// External holds the collaborators outside this service. Nil fields are
// built from config, so tests pass fakes and main passes nothing.
type External struct {
	Profiles  services.ProfileService
	Notifier  services.Notifier
	Analytics services.Analytics
	Clock     clock.Clock
}

type Deps struct {
	Store     *repos.Store
	Index     *services.IndexSync
	Deals     *services.DealService
	Approval  *services.ApprovalService
	DOTD      *services.DealsOfTheDayService
	Reconcile *services.ReconcileService
	Admins    map[string]bool

	DealHandler          *DealHandler
	CatalogHandler       *CatalogHandler
	MappingHandler       *MappingHandler
	RequestHandler       *RequestHandler
	DealsOfTheDayHandler *DealsOfTheDayHandler
	AdminHandler         *AdminHandler
	ReportHandler        *ReportHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, ext External) *Deps {
	if ext.Profiles == nil {
		ext.Profiles = clients.NewProfileClient(cfg.ProfileServiceURL, cfg.HTTPClientTimeout)
	}
	if ext.Notifier == nil {
		ext.Notifier = clients.NewNotificationClient(cfg.NotificationServiceURL, cfg.HTTPClientTimeout)
	}
	if ext.Analytics == nil {
		ext.Analytics = clients.NewAnalyticsClient(cfg.AnalyticsServiceURL, cfg.HTTPClientTimeout)
	}
	if ext.Clock == nil {
		ext.Clock = clock.RealClock{}
	}
	loc := cfg.Location()
	store := repos.NewStore(db)

	idx := services.NewIndexSync(store, ext.Clock)
	codes := services.NewDealCodeService(ext.Clock, loc, cfg.DealCodeTemplate)
	dealSvc := services.NewDealService(store, ext.Profiles, codes, idx, ext.Clock)
	approvalSvc := services.NewApprovalService(store, ext.Profiles, ext.Notifier, idx, ext.Clock)
	dotdSvc := services.NewDealsOfTheDayService(store, ext.Clock, loc, cfg.DealsOfTheDayLimit)
	reconcileSvc := services.NewReconcileService(store, ext.Profiles, idx, cfg.ReconcilePageSize)
	summarySvc := services.NewSummaryService(store, ext.Profiles, ext.Clock, loc)
	admins := make(map[string]bool, len(cfg.AdminUserIDs))
	for _, id := range cfg.AdminUserIDs {
		admins[id] = true
	}

	return &Deps{
		Store:     store,
		Index:     idx,
		Deals:     dealSvc,
		Approval:  approvalSvc,
		DOTD:      dotdSvc,
		Reconcile: reconcileSvc,
		Admins:    admins,

		DealHandler: &DealHandler{Deals: dealSvc, Approval: approvalSvc},
		CatalogHandler: &CatalogHandler{
			Categories: services.NewCategoryService(store, ext.Clock),
			Brands:     services.NewBrandService(store, ext.Clock),
			OfferTypes: services.NewOfferTypeService(store, ext.Clock),
		},
		MappingHandler: &MappingHandler{Mappings: services.NewMappingService(store, ext.Profiles, idx, ext.Clock)},
		RequestHandler: &RequestHandler{
			Cards: services.NewCreditCardService(store, ext.Profiles, ext.Clock),
			Deals: services.NewDealRequestService(store, ext.Profiles, idx, ext.Clock),
		},
		DealsOfTheDayHandler: &DealsOfTheDayHandler{DOTD: dotdSvc},
		AdminHandler:         &AdminHandler{DOTD: dotdSvc, Reconcile: reconcileSvc},
		ReportHandler: &ReportHandler{
			Summary: summarySvc,
			Reports: services.NewReportService(store, ext.Analytics, ext.Clock, loc),
		},
	}
}

// Routes registers the JSON API on api. writeLimit, when set, runs before
// every state-changing route.
func (d *Deps) Routes(api fiber.Router, writeLimit fiber.Handler) {
	write := func(needToken bool) []fiber.Handler {
		hs := []fiber.Handler{}
		if writeLimit != nil {
			hs = append(hs, writeLimit)
		}
		return append(hs, RequireCaller(needToken, d.Admins))
	}
	with := func(hs []fiber.Handler, h fiber.Handler) []fiber.Handler { return append(hs, h) }
	admin := func(needToken bool, h fiber.Handler) []fiber.Handler {
		return append(write(needToken), RequireAdmin(), h)
	}

	// Deals
	api.Post("/deals", with(write(true), d.DealHandler.Create)...)
	api.Get("/deals/search", d.DealHandler.Search)
	api.Get("/deals/mine", d.DealHandler.Mine)
	api.Get("/deals/:id", d.DealHandler.Get)
	api.Put("/deals/:id", with(write(false), d.DealHandler.Update)...)
	api.Delete("/deals/:id", with(write(false), d.DealHandler.Delete)...)
	api.Post("/deals/:id/approval", admin(true, d.DealHandler.Decide)...)

	api.Get("/deals-of-the-day", d.DealsOfTheDayHandler.Search)

	// Catalog
	api.Get("/categories", d.CatalogHandler.ListCategories)
	api.Get("/categories/popular", d.CatalogHandler.Popular)
	api.Get("/categories/:id", d.CatalogHandler.GetCategory)
	api.Post("/categories", with(write(false), d.CatalogHandler.CreateCategory)...)
	api.Put("/categories/:id", with(write(false), d.CatalogHandler.UpdateCategory)...)
	api.Delete("/categories/:id", with(write(false), d.CatalogHandler.DeleteCategory)...)
	api.Get("/brands", d.CatalogHandler.ListBrands)
	api.Get("/brands/:id", d.CatalogHandler.GetBrand)
	api.Post("/brands", with(write(false), d.CatalogHandler.CreateBrand)...)
	api.Put("/brands/:id", with(write(false), d.CatalogHandler.UpdateBrand)...)
	api.Delete("/brands/:id", with(write(false), d.CatalogHandler.DeleteBrand)...)
	api.Get("/offer-types", d.CatalogHandler.ListOfferTypes)
	api.Post("/offer-types", with(write(false), d.CatalogHandler.CreateOfferType)...)

	// Merchant mappings
	api.Get("/merchant-mappings/search", d.MappingHandler.Search)
	api.Get("/merchant-mappings/:merchantId", d.MappingHandler.Get)
	api.Post("/merchant-mappings", with(write(true), d.MappingHandler.Create)...)
	api.Put("/merchant-mappings/:merchantId", with(write(true), d.MappingHandler.Update)...)
	api.Delete("/merchant-mappings/:merchantId", with(write(false), d.MappingHandler.Delete)...)
	api.Get("/banks", d.MappingHandler.Banks)

	// Requests
	api.Get("/credit-card-requests/search", d.RequestHandler.SearchCards)
	api.Get("/credit-card-requests/combined", d.RequestHandler.CombinedCards)
	api.Get("/credit-card-requests/:id", d.RequestHandler.GetCard)
	api.Post("/credit-card-requests", with(write(true), d.RequestHandler.CreateCard)...)
	api.Get("/deal-requests/search", d.RequestHandler.SearchDealRequests)
	api.Get("/deal-requests/combined", d.RequestHandler.CombinedDealRequests)
	api.Get("/deal-requests/:id", d.RequestHandler.GetDealRequest)
	api.Post("/deal-requests", with(write(true), d.RequestHandler.CreateDealRequest)...)
	api.Delete("/deal-requests/:id", with(write(false), d.RequestHandler.DeleteDealRequest)...)

	// Summary and reports
	api.Get("/summary/today", d.ReportHandler.Today)
	api.Get("/reports/top-deals", d.ReportHandler.TopDeals)
	api.Get("/reports/top-categories", d.ReportHandler.TopCategories)

	// Admin job triggers
	api.Post("/admin/jobs/deals-of-the-day", admin(false, d.AdminHandler.RefreshDealsOfTheDay)...)
	api.Post("/admin/jobs/reconcile", admin(false, d.AdminHandler.RunReconcile)...)
}
