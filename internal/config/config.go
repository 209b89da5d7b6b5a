package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"alert-notifier/internal/models"
)

// DefaultUserAgent is sent by both platform clients unless overridden.
const DefaultUserAgent = "Acronis Infobip Integration Examples"

// Config holds application configuration loaded from environment.
type Config struct {
	Acronis struct {
		BaseURL      string
		ClientID     string
		ClientSecret string
	}
	Infobip struct {
		BaseURL string
		APIKey  string
	}
	Senders struct {
		SMSFrom      string
		WhatsAppFrom string
		ViberFrom    string
	}
	Notify struct {
		Recipients []string
		Channel    string
	}
	Scenarios struct {
		ViberSMSPath    string
		WhatsAppSMSPath string
		// Templates are nil when their file does not exist.
		ViberSMS    *models.Scenario
		WhatsAppSMS *models.Scenario
		// RegisterCreated makes a scenario created during a run usable in
		// that same run.
		RegisterCreated bool
	}
	HTTP struct {
		UserAgent string
	}
	Logging struct {
		Dir   string
		Level string
	}
}

// Load reads environment variables, applies defaults, loads scenario
// templates and returns a Config.
func Load() (Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	// Load .env if present
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load %s file: %w", envFile, err)
	}

	var cfg Config

	// Backup platform
	cfg.Acronis.BaseURL = withTrailingSlash(os.Getenv("ACRONIS_BASE_URL"))
	cfg.Acronis.ClientID = os.Getenv("ACRONIS_CLIENT_ID")
	cfg.Acronis.ClientSecret = os.Getenv("ACRONIS_CLIENT_SECRET")

	// Communications platform
	cfg.Infobip.BaseURL = withTrailingSlash(os.Getenv("INFOBIP_BASE_URL"))
	cfg.Infobip.APIKey = os.Getenv("INFOBIP_API_KEY")

	cfg.Senders.SMSFrom = os.Getenv("SMS_FROM_NUMBER")
	cfg.Senders.WhatsAppFrom = os.Getenv("WHATSAPP_FROM_NUMBER")
	cfg.Senders.ViberFrom = os.Getenv("VIBER_FROM_ACCOUNT")

	cfg.Notify.Recipients = splitList(os.Getenv("TO_NOTIFY"))
	cfg.Notify.Channel = os.Getenv("NOTIFY_CHANNEL")

	cfg.Scenarios.ViberSMSPath = os.Getenv("SCENARIO_VIBER_SMS_PATH")
	cfg.Scenarios.WhatsAppSMSPath = os.Getenv("SCENARIO_WHATSAPP_SMS_PATH")
	cfg.Scenarios.RegisterCreated = true
	if v := os.Getenv("OMNI_REGISTER_CREATED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid OMNI_REGISTER_CREATED %q: %w", v, err)
		}
		cfg.Scenarios.RegisterCreated = b
	}

	cfg.HTTP.UserAgent = os.Getenv("USER_AGENT")
	cfg.Logging.Dir = os.Getenv("LOG_DIR")
	cfg.Logging.Level = os.Getenv("LOG_LEVEL")

	// Validate required settings
	missing := []string{}
	if cfg.Acronis.BaseURL == "" {
		missing = append(missing, "ACRONIS_BASE_URL")
	}
	if cfg.Acronis.ClientID == "" {
		missing = append(missing, "ACRONIS_CLIENT_ID")
	}
	if cfg.Acronis.ClientSecret == "" {
		missing = append(missing, "ACRONIS_CLIENT_SECRET")
	}
	if cfg.Infobip.BaseURL == "" {
		missing = append(missing, "INFOBIP_BASE_URL")
	}
	if cfg.Infobip.APIKey == "" {
		missing = append(missing, "INFOBIP_API_KEY")
	}
	if len(cfg.Notify.Recipients) == 0 {
		missing = append(missing, "TO_NOTIFY")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configurations: %v", missing)
	}

	// Apply defaults
	if cfg.Scenarios.ViberSMSPath == "" {
		cfg.Scenarios.ViberSMSPath = "scenarios/viber-sms.json"
	}
	if cfg.Scenarios.WhatsAppSMSPath == "" {
		cfg.Scenarios.WhatsAppSMSPath = "scenarios/whatsapp-sms.json"
	}
	if cfg.HTTP.UserAgent == "" {
		cfg.HTTP.UserAgent = DefaultUserAgent
	}
	if cfg.Logging.Dir == "" {
		cfg.Logging.Dir = "logs"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	var err error
	if cfg.Scenarios.ViberSMS, err = loadScenario(cfg.Scenarios.ViberSMSPath); err != nil {
		return Config{}, err
	}
	if cfg.Scenarios.WhatsAppSMS, err = loadScenario(cfg.Scenarios.WhatsAppSMSPath); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// loadScenario returns nil without error when path does not exist.
func loadScenario(path string) (*models.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read scenario template %s: %w", path, err)
	}
	var s models.Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario template %s: %w", path, err)
	}
	return &s, nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func withTrailingSlash(u string) string {
	if u == "" || strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}
