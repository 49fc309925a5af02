package app

import (
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/domeo/doors/internal/adapters/httpserver"
	"github.com/domeo/doors/internal/adapters/repo/postgres"
	"github.com/domeo/doors/internal/domain"
	"github.com/domeo/doors/internal/usecase"
)

type App struct {
	DB          *gorm.DB
	QuoteUC     *usecase.QuoteUC
	CatalogUC   *usecase.CatalogUC
	ExportUC    *usecase.ExportUC
	ImportUC    *usecase.ImportUC
	Customers   domain.CustomerRepo
	OAuthConfig *oauth2.Config
}

func NewApp(db *gorm.DB) (*App, error) {
	quoteRepo := postgres.NewQuoteRepo(db)
	catalogRepo := postgres.NewCatalogRepo(db)
	custRepo := postgres.NewCustomerRepo(db)

	var oauthCfg *oauth2.Config
	googleID := os.Getenv("GOOGLE_CLIENT_ID")
	googleSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if googleID != "" && googleSecret != "" {
		oauthCfg = &oauth2.Config{
			ClientID:     googleID,
			ClientSecret: googleSecret,
			RedirectURL:  baseURL + "/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}

	return &App{
		DB:          db,
		QuoteUC:     &usecase.QuoteUC{Quotes: quoteRepo},
		CatalogUC:   &usecase.CatalogUC{Catalog: catalogRepo},
		ExportUC:    usecase.NewExportUC(quoteRepo, catalogRepo),
		ImportUC:    &usecase.ImportUC{Catalog: catalogRepo},
		Customers:   custRepo,
		OAuthConfig: oauthCfg,
	}, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.QuoteUC, a.CatalogUC, a.ExportUC, a.ImportUC, a.Customers, a.OAuthConfig)
}

func (a *App) Migrate() error {
	if err := a.DB.AutoMigrate(
		&domain.DoorProduct{}, &domain.HardwareKit{}, &domain.Handle{},
		&domain.Quote{}, &domain.Customer{},
	); err != nil {
		return err
	}

	// Конфигурация двери должна быть уникальной в каталоге.
	_ = a.DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS door_products_uq ON door_products (model, finish, color, type, width_mm, height_mm)").Error

	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_door_products_style ON door_products (style)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_quotes_status ON quotes (status)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_quotes_customer_id ON quotes (customer_id)").Error

	return nil
}
