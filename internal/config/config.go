package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	UpstreamTheNewsAPI = "thenewsapi"
	UpstreamFeeds      = "feeds"
)

// CategoryFeeds lists the feed URLs backing one category when the feed
// upstream is selected
type CategoryFeeds struct {
	URLs []string
}

// SecurityConfig represents security configuration
type SecurityConfig struct {
	EnableRateLimit       bool
	RateLimitPerSecond    float64
	RateLimitBurst        int
	EnableCORS            bool
	AllowedOrigins        []string
	EnableSecurityHeaders bool
	MaxRequestSize        int64
	EnableRequestID       bool
}

type Config struct {
	Port             int
	Upstream         string
	NewsAPIToken     string
	NewsAPIURL       string
	UpstreamTimeout  time.Duration
	Feeds            map[string]CategoryFeeds
	FeedCacheTTL     time.Duration
	FeedPollInterval time.Duration
	LogLevel         string
	EnableSPA        bool
	StaticDir        string
	EnableSwagger    bool
	Security         SecurityConfig
}

// HasToken reports whether the news API credential is configured.
func (c *Config) HasToken() bool {
	return c.NewsAPIToken != ""
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Variables already set are left untouched and missing files
// are ignored.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			log.Printf("Warning: failed to load %s: %v", f, err)
		}
	}
}

func Load() *Config {
	port := getEnvAsInt("PORT", 5177)
	upstream := strings.ToLower(getEnv("NEWS_UPSTREAM", UpstreamTheNewsAPI))
	token := strings.TrimSpace(os.Getenv("THENEWSAPI_TOKEN"))
	apiURL := getEnv("THENEWSAPI_URL", "https://api.thenewsapi.com/v1/news/all")
	timeout := getEnvAsDuration("UPSTREAM_TIMEOUT", 10*time.Second)
	feedCacheTTL := getEnvAsDuration("FEED_CACHE_TTL", 15*time.Minute)
	feedPollInterval := getEnvAsDuration("FEED_POLL_INTERVAL", 10*time.Minute)
	logLevel := getEnv("LOG_LEVEL", "info")
	enableSPA := getEnvAsBool("ENABLE_SPA", false)
	staticDir := getEnv("STATIC_DIR", "./web/dist")
	enableSwagger := getEnvAsBool("ENABLE_SWAGGER", true)

	security := loadSecurityConfig()

	feeds := loadFeedsFromEnv()
	if len(feeds) == 0 {
		feeds = getDefaultFeeds()
	}

	if upstream == UpstreamTheNewsAPI && token == "" {
		log.Printf("WARNING: THENEWSAPI_TOKEN is not set, news queries will fail")
	}

	return &Config{
		Port:             port,
		Upstream:         upstream,
		NewsAPIToken:     token,
		NewsAPIURL:       apiURL,
		UpstreamTimeout:  timeout,
		Feeds:            feeds,
		FeedCacheTTL:     feedCacheTTL,
		FeedPollInterval: feedPollInterval,
		LogLevel:         logLevel,
		EnableSPA:        enableSPA,
		StaticDir:        staticDir,
		EnableSwagger:    enableSwagger,
		Security:         security,
	}
}

func loadSecurityConfig() SecurityConfig {
	return SecurityConfig{
		EnableRateLimit:       getEnvAsBool("ENABLE_RATE_LIMIT", true),
		RateLimitPerSecond:    getEnvAsFloat("RATE_LIMIT_PER_SECOND", 10.0),
		RateLimitBurst:        getEnvAsInt("RATE_LIMIT_BURST", 20),
		EnableCORS:            getEnvAsBool("ENABLE_CORS", true),
		AllowedOrigins:        getEnvAsStringSlice("ALLOWED_ORIGINS", []string{"*"}),
		EnableSecurityHeaders: getEnvAsBool("ENABLE_SECURITY_HEADERS", true),
		MaxRequestSize:        getEnvAsInt64("MAX_REQUEST_SIZE", 1<<20),
		EnableRequestID:       getEnvAsBool("ENABLE_REQUEST_ID", true),
	}
}

func loadFeedsFromEnv() map[string]CategoryFeeds {
	feeds := make(map[string]CategoryFeeds)

	// FEED_CATEGORY_<NAME>=url1,url2
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, "FEED_CATEGORY_") {
			continue
		}
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}

		category := strings.ToLower(strings.TrimPrefix(parts[0], "FEED_CATEGORY_"))
		urls := parseURLList(parts[1])
		if category == "" || len(urls) == 0 {
			continue
		}
		feeds[category] = CategoryFeeds{URLs: urls}
	}

	return feeds
}

func parseURLList(value string) []string {
	var urls []string
	for _, u := range strings.Split(value, ",") {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

func getDefaultFeeds() map[string]CategoryFeeds {
	return map[string]CategoryFeeds{
		"tech": {URLs: []string{
			"https://feeds.arstechnica.com/arstechnica/index",
			"https://techcrunch.com/feed/",
		}},
		"general": {URLs: []string{"https://feeds.npr.org/1001/rss.xml"}},
		"science": {URLs: []string{"https://www.sciencedaily.com/rss/all.xml"}},
		"business": {URLs: []string{"https://feeds.npr.org/1006/rss.xml"}},
		"health": {URLs: []string{"https://feeds.npr.org/1128/rss.xml"}},
	}
}

func getEnv(key string, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if floatVal, err := strconv.ParseFloat(val, 64); err == nil {
			return floatVal
		}
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.ParseInt(val, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsStringSlice(key string, defaultVal []string) []string {
	if val := os.Getenv(key); val != "" {
		origins := strings.Split(val, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		return origins
	}
	return defaultVal
}
