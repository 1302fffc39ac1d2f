package config

import (
	"log"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Postgres    Postgres
	Redis       Redis
	API         API
	Cache       Cache
	Jobs        Jobs
	Ledger      Ledger
	Generator   Generator
	Evaluation  Evaluation
	GoogleDrive GoogleDrive
	Telegram    Telegram
}

type Postgres struct {
	Host            string `env:"PG_HOST"`
	Port            int    `env:"PG_PORT" envDefault:"5432"`
	DbName          string `env:"PG_DB_NAME"`
	Password        string `env:"PG_PASSWORD"`
	User            string `env:"PG_USER"`
	MaxOpenConns    int    `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
	ConnMaxLifetime int    `env:"PG_CONN_MAX_LIFETIME" envDefault:"300"`
	MaxIdleConns    int    `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxIdleTime int    `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"60"`
	MigrationDir    string `env:"PG_MIGRATION_DIR" envDefault:"migrations"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type API struct {
	Debug    bool          `env:"API_DEBUG" envDefault:"false"`
	Timeout  time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	QuoteApi QuoteApi
}

type QuoteApi struct {
	Url               string  `env:"QUOTE_API_URL" envDefault:"https://eodhd.com/api"`
	Token             string  `env:"QUOTE_API_TOKEN"`
	Exchange          string  `env:"QUOTE_API_EXCHANGE" envDefault:"US"`
	RequestsPerSecond float64 `env:"QUOTE_API_RPS" envDefault:"5"`
}

type Cache struct {
	QuotesExpiration       time.Duration `env:"CACHE_QUOTES_EXPIRATION" envDefault:"15m"`
	FundamentalsExpiration time.Duration `env:"CACHE_FUNDAMENTALS_EXPIRATION" envDefault:"24h"`
}

type Jobs struct {
	RefreshPricesCrontab string        `env:"REFRESH_PRICES_JOB_CRONTAB" envDefault:"0 22 * * 1-5"`
	SyncAssetsInterval   time.Duration `env:"SYNC_ASSETS_JOB_INTERVAL" envDefault:"1h"`
}

type Ledger struct {
	DefaultFirmID     int64           `env:"LEDGER_DEFAULT_FIRM_ID" envDefault:"1"`
	Currency          string          `env:"LEDGER_CURRENCY" envDefault:"EUR"`
	FeePolicy         string          `env:"LEDGER_FEE_POLICY" envDefault:"record"`
	ManagementFeeRate decimal.Decimal `env:"LEDGER_MANAGEMENT_FEE_RATE" envDefault:"0.02"`
	SellTolerance     decimal.Decimal `env:"LEDGER_SELL_TOLERANCE" envDefault:"0.000001"`
}

type Generator struct {
	SnapshotFile string `env:"GENERATOR_SNAPSHOT_FILE" envDefault:"data/enriched_tickers.csv"`
	Workers      int    `env:"GENERATOR_WORKERS" envDefault:"15"`
	Seed         uint64 `env:"GENERATOR_SEED" envDefault:"0"`
}

type Evaluation struct {
	InitialValue           decimal.Decimal `env:"EVALUATION_INITIAL_VALUE" envDefault:"100000"`
	Years                  int             `env:"EVALUATION_YEARS" envDefault:"5"`
	ForeignWithholdingRate decimal.Decimal `env:"EVALUATION_FOREIGN_WITHHOLDING_RATE" envDefault:"0.15"`
	DividendGrowthRate     decimal.Decimal `env:"EVALUATION_DIVIDEND_GROWTH_RATE" envDefault:"0.02"`
	AssetGrowthRate        decimal.Decimal `env:"EVALUATION_ASSET_GROWTH_RATE" envDefault:"0.07"`
	UseHistoricalGrowth    bool            `env:"EVALUATION_USE_HISTORICAL_GROWTH" envDefault:"true"`
	CorporateTaxRate       decimal.Decimal `env:"TAX_CORPORATE_RATE" envDefault:"0.20"`
}

type GoogleDrive struct {
	CredentialsFile string        `env:"GOOGLE_DRIVE_CREDENTIALS_FILE" envDefault:""`
	FolderID        string        `env:"GOOGLE_DRIVE_FOLDER_ID" envDefault:""`
	FileTTL         time.Duration `env:"GOOGLE_DRIVE_FILE_TTL" envDefault:"720h"`
}

type Telegram struct {
	Token  string `env:"TELEGRAM_TOKEN" envDefault:""`
	ChatID int64  `env:"TELEGRAM_CHAT_ID" envDefault:"0"`
}

const redacted = "[REDACTED]"

// plainConfig drops the LogValuer method so the redacted copy logs as a struct.
type plainConfig Config

// LogValue hides credentials when the config is logged.
func (c Config) LogValue() slog.Value {
	if c.Postgres.Password != "" {
		c.Postgres.Password = redacted
	}
	if c.Redis.Password != "" {
		c.Redis.Password = redacted
	}
	if c.API.QuoteApi.Token != "" {
		c.API.QuoteApi.Token = redacted
	}
	if c.Telegram.Token != "" {
		c.Telegram.Token = redacted
	}
	return slog.AnyValue(plainConfig(c))
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}
