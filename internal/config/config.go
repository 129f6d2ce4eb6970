package config

import (
	"net"
	"os"
	"strconv"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"

	"github.com/poofware/logistics-gateway/internal/constants"
	"github.com/poofware/logistics-gateway/internal/utils"
)

// Credential store backends.
const (
	CredentialStoreRedis    = "redis"
	CredentialStorePostgres = "postgres"
)

// Config holds all application configuration, including secrets, flags, etc.
type Config struct {
	OrganizationName string
	AppName          string
	AppPort          string
	AppUrl           string
	Env              string

	RedisAddr     string
	RedisUsername string
	RedisPassword string
	RedisDB       int

	QueueNamespace  string
	CredentialStore string
	DBUrl           string

	JWTSecret          []byte
	AccessTokenExpiry  time.Duration
	StatePollMarkerTTL time.Duration
	MaxLoginAttempts   int
	LoginAttemptWindow time.Duration
	QueueMonitorSpec   string
	RequestTimeout     time.Duration
	DemoPartnerSecret  string

	// TrustedProxies may set X-Forwarded-For. Empty means the peer address
	// is always the client.
	TrustedProxies []*net.IPNet

	// Static flags fetched once from LaunchDarkly
	LDFlag_ShortTokenTTL    bool
	LDFlag_CORSHighSecurity bool
	LDFlag_StatePollDedupe  bool
	LDFlag_SeedDemoPartner  bool
}

const (
	OrganizationName    = "Poof"
	LDConnectionTimeout = 5 * time.Second
)

// Global compile-time overrides, set with -ldflags.
var (
	AppName             string
	LDServerContextKey  string
	LDServerContextKind string
)

// LoadConfig reads the environment, fetches feature flags from LaunchDarkly
// when an SDK key is present, and returns a *Config.
func LoadConfig() *Config {
	//----------------------------------------------------------------------
	// Check for required ldflags.
	//----------------------------------------------------------------------
	if AppName == "" {
		utils.Logger.Fatal("AppName was not overridden with ldflags at build time (or is empty)")
	}

	utils.Logger.Info("Loading config for app: ", AppName)

	//----------------------------------------------------------------------
	// Load environment variables.
	//----------------------------------------------------------------------
	env := os.Getenv("ENV")
	if env == "" {
		utils.Logger.Fatal("ENV env var is missing")
	}
	appUrl := os.Getenv("APP_URL_FROM_ANYWHERE")
	if appUrl == "" {
		utils.Logger.Fatal("APP_URL_FROM_ANYWHERE env var is missing")
	}
	appPort := os.Getenv("APP_PORT")
	if appPort == "" {
		utils.Logger.Fatal("APP_PORT env var is missing")
	}
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		utils.Logger.Fatal("REDIS_ADDR env var is missing")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if len(jwtSecret) < 32 {
		utils.Logger.Fatal("JWT_SECRET env var is missing or shorter than 32 bytes")
	}

	redisDB := 0
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			utils.Logger.WithError(err).Fatal("REDIS_DB must be an integer")
		}
		redisDB = n
	}

	credentialStore := os.Getenv("CREDENTIAL_STORE")
	if credentialStore == "" {
		credentialStore = CredentialStoreRedis
	}
	dbUrl := os.Getenv("DB_URL")
	switch credentialStore {
	case CredentialStoreRedis:
	case CredentialStorePostgres:
		if dbUrl == "" {
			utils.Logger.Fatal("DB_URL env var is required when CREDENTIAL_STORE=postgres")
		}
	default:
		utils.Logger.Fatalf("Unknown CREDENTIAL_STORE %q", credentialStore)
	}

	queueNamespace := os.Getenv("QUEUE_NAMESPACE")
	if queueNamespace == "" {
		queueNamespace = constants.DefaultQueueNamespace
	}
	queueMonitorSpec := os.Getenv("QUEUE_MONITOR_SPEC")
	if queueMonitorSpec == "" {
		queueMonitorSpec = constants.DefaultQueueMonitorSpec
	}

	trustedProxies, err := utils.ParseTrustedProxies(os.Getenv("TRUSTED_PROXIES"))
	if err != nil {
		utils.Logger.WithError(err).Fatal("TRUSTED_PROXIES is malformed")
	}

	utils.Logger.Debugf("App can be accessed at: %s", appUrl)

	//----------------------------------------------------------------------
	// Feature flags.
	//----------------------------------------------------------------------
	flags := loadFlags(os.Getenv("LD_SDK_KEY"))

	accessTokenExpiry := constants.DefaultAccessTokenExpiry
	if flags.shortTokenTTL {
		accessTokenExpiry = constants.TestShortTokenExpiry
	}

	return &Config{
		OrganizationName:        OrganizationName,
		AppName:                 AppName,
		AppPort:                 appPort,
		AppUrl:                  appUrl,
		Env:                     env,
		RedisAddr:               redisAddr,
		RedisUsername:           os.Getenv("REDIS_USER"),
		RedisPassword:           os.Getenv("REDIS_PASSWORD"),
		RedisDB:                 redisDB,
		QueueNamespace:          queueNamespace,
		CredentialStore:         credentialStore,
		DBUrl:                   dbUrl,
		JWTSecret:               []byte(jwtSecret),
		AccessTokenExpiry:       accessTokenExpiry,
		StatePollMarkerTTL:      constants.DefaultStatePollMarkerTTL,
		MaxLoginAttempts:        constants.DefaultMaxLoginAttempts,
		LoginAttemptWindow:      constants.DefaultLoginAttemptWindow,
		QueueMonitorSpec:        queueMonitorSpec,
		RequestTimeout:          constants.DefaultRequestTimeout,
		DemoPartnerSecret:       os.Getenv("DEMO_PARTNER_SECRET"),
		TrustedProxies:          trustedProxies,
		LDFlag_ShortTokenTTL:    flags.shortTokenTTL,
		LDFlag_CORSHighSecurity: flags.corsHighSecurity,
		LDFlag_StatePollDedupe:  flags.statePollDedupe,
		LDFlag_SeedDemoPartner:  flags.seedDemoPartner,
	}
}

type staticFlags struct {
	shortTokenTTL    bool
	corsHighSecurity bool
	statePollDedupe  bool
	seedDemoPartner  bool
}

// loadFlags snapshots the static flags once at startup. Without an SDK key
// every flag keeps its default, which is the production-safe value except
// for cors_high_security.
func loadFlags(sdkKey string) staticFlags {
	if sdkKey == "" {
		utils.Logger.Info("LD_SDK_KEY not set; using default feature flags")
		return staticFlags{corsHighSecurity: true}
	}
	if LDServerContextKey == "" {
		utils.Logger.Fatal("LDServerContextKey was not overridden with ldflags at build time (or is empty)")
	}
	if LDServerContextKind == "" {
		utils.Logger.Fatal("LDServerContextKind was not overridden with ldflags at build time (or is empty)")
	}

	ldClient, err := ld.MakeClient(sdkKey, LDConnectionTimeout)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to create LaunchDarkly client")
	}
	if !ldClient.Initialized() {
		ldClient.Close()
		utils.Logger.Fatal("LaunchDarkly client failed to initialize")
	}
	defer ldClient.Close()

	context := ldcontext.NewWithKind(ldcontext.Kind(LDServerContextKind), LDServerContextKey)

	boolFlag := func(name string, def bool) bool {
		v, err := ldClient.BoolVariation(name, context, def)
		if err != nil {
			ldClient.Close()
			utils.Logger.WithError(err).Fatalf("Error retrieving %s flag", name)
		}
		utils.Logger.Debugf("%s flag: %t", name, v)
		return v
	}

	return staticFlags{
		shortTokenTTL:    boolFlag("short_token_ttl", false),
		corsHighSecurity: boolFlag("cors_high_security", true),
		statePollDedupe:  boolFlag("state_poll_dedupe", false),
		seedDemoPartner:  boolFlag("seed_demo_partner", false),
	}
}

// Close cleans up any resources used by Config.
func (c *Config) Close() {
}
