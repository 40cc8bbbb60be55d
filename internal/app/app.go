package app

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/phenrril/headstock/internal/adapters/httpserver"
	"github.com/phenrril/headstock/internal/adapters/rates/nbu"
	"github.com/phenrril/headstock/internal/adapters/repo/gormrepo"
	"github.com/phenrril/headstock/internal/adapters/scraper"
	"github.com/phenrril/headstock/internal/adapters/storage/cloudinary"
	"github.com/phenrril/headstock/internal/adapters/storage/localfs"
	"github.com/phenrril/headstock/internal/config"
	"github.com/phenrril/headstock/internal/domain"
	"github.com/phenrril/headstock/internal/usecase"
)

type App struct {
	DB          *gorm.DB
	Config      config.Config
	ProductUC   *usecase.ProductUC
	LedgerUC    *usecase.LedgerUC
	DashboardUC *usecase.DashboardUC
	Storage     domain.ImageStorage
	// UploadsDir is set when images are kept on local disk.
	UploadsDir string
}

func NewApp(db *gorm.DB, cfg config.Config) (*App, error) {
	prodRepo := gormrepo.NewProductRepo(db)
	ledgerRepo := gormrepo.NewLedgerRepo(db)
	rates := nbu.New(nbu.Config{
		URL:      cfg.RateURL,
		Currency: cfg.RateCurrency,
		Timeout:  cfg.RateTimeout,
		CacheTTL: cfg.RateCacheTTL,
	})

	app := &App{DB: db, Config: cfg}
	cc := cloudinary.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryFolder,
	}
	if cc.Configured() {
		app.Storage = cloudinary.New(cc)
		log.Info().Str("cloud", cc.CloudName).Msg("images stored on cloudinary")
	} else {
		fs, err := localfs.New(cfg.StorageDir, cfg.PublicBaseURL)
		if err != nil {
			return nil, err
		}
		app.Storage = fs
		app.UploadsDir = fs.Dir()
		log.Info().Str("dir", fs.Dir()).Msg("images stored on local disk")
	}

	app.ProductUC = &usecase.ProductUC{
		Products:          prodRepo,
		Ledger:            ledgerRepo,
		Rates:             rates,
		Listings:          scraper.NewListingScraper(cfg.ListingTimeout),
		ShippingRatePerKg: cfg.ShippingRatePerKg,
	}
	app.LedgerUC = &usecase.LedgerUC{Products: prodRepo, Ledger: ledgerRepo}
	app.DashboardUC = &usecase.DashboardUC{Products: prodRepo, Rates: rates}
	return app, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(httpserver.Deps{
		Products:   a.ProductUC,
		Ledger:     a.LedgerUC,
		Dashboard:  a.DashboardUC,
		Storage:    a.Storage,
		UploadsDir: a.UploadsDir,
		Env: httpserver.HealthEnv{
			HasDatabaseURL:         a.Config.HasDatabaseURL(),
			HasCloudinaryCloudName: a.Config.CloudinaryCloudName != "",
			HasCloudinaryAPIKey:    a.Config.CloudinaryAPIKey != "",
			HasCloudinaryAPISecret: a.Config.CloudinaryAPISecret != "",
		},
	})
}

func (a *App) Migrate() error {
	if err := a.DB.AutoMigrate(&domain.Product{}, &domain.Income{}, &domain.Expense{}); err != nil {
		return err
	}

	// rows written before archive and images were mandatory
	_ = a.DB.Exec("UPDATE products SET archive = false WHERE archive IS NULL").Error
	_ = a.DB.Exec("UPDATE products SET images = '[]' WHERE images IS NULL OR images = ''").Error

	if a.DB.Dialector.Name() == "postgres" {
		_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)").Error
		_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_incomes_product_created ON incomes(product_id, created_at DESC)").Error
		_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_expenses_product_created ON expenses(product_id, created_at DESC)").Error
	}
	return nil
}
