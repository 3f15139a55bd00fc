package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Config is loaded once at startup and handed to each component; nothing
// reads the environment after that.
type Config struct {
	HTTPPort string
	DBString string

	ToyyibBaseURL      string
	ToyyibSecretKey    string
	ToyyibCategoryCode string
	ToyyibReturnURL    string
	ToyyibCallbackURL  string

	EasyParcelBaseURL string
	EasyParcelAPIKey  string
	SenderName        string
	SenderPhone       string
	SenderAddress     string
	PickupPostcode    string

	KafkaBrokers string
	KafkaTopic   string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		HTTPPort: os.Getenv("HTTP_PORT"),
		DBString: os.Getenv("DB_STRING"),

		ToyyibBaseURL:      os.Getenv("TOYYIBPAY_BASE_URL"),
		ToyyibSecretKey:    os.Getenv("TOYYIBPAY_SECRET_KEY"),
		ToyyibCategoryCode: os.Getenv("TOYYIBPAY_CATEGORY_CODE"),
		ToyyibReturnURL:    os.Getenv("TOYYIBPAY_RETURN_URL"),
		ToyyibCallbackURL:  os.Getenv("TOYYIBPAY_CALLBACK_URL"),

		EasyParcelBaseURL: os.Getenv("EASYPARCEL_BASE_URL"),
		EasyParcelAPIKey:  os.Getenv("EASYPARCEL_API_KEY"),
		SenderName:        os.Getenv("SENDER_NAME"),
		SenderPhone:       os.Getenv("SENDER_PHONE"),
		SenderAddress:     os.Getenv("SENDER_ADDRESS"),
		PickupPostcode:    os.Getenv("PICKUP_POSTCODE"),

		KafkaBrokers: os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:   os.Getenv("KAFKA_TOPIC"),
	}

	if cfg.HTTPPort == "" {
		cfg.HTTPPort = "8080"
	}
	if cfg.ToyyibBaseURL == "" {
		cfg.ToyyibBaseURL = "https://toyyibpay.com"
	}
	if cfg.EasyParcelBaseURL == "" {
		cfg.EasyParcelBaseURL = "https://apiv2.easyparcel.my"
	}
	if cfg.PickupPostcode == "" {
		cfg.PickupPostcode = "43000"
	}
	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = "checkout-events"
	}

	// Provider credentials have no sane default; refuse to start without
	// them rather than failing on the first request.
	missing := requiredKeys(map[string]string{
		"TOYYIBPAY_SECRET_KEY":    cfg.ToyyibSecretKey,
		"TOYYIBPAY_CATEGORY_CODE": cfg.ToyyibCategoryCode,
		"TOYYIBPAY_RETURN_URL":    cfg.ToyyibReturnURL,
		"TOYYIBPAY_CALLBACK_URL":  cfg.ToyyibCallbackURL,
		"EASYPARCEL_API_KEY":      cfg.EasyParcelAPIKey,
		"SENDER_NAME":             cfg.SenderName,
		"SENDER_PHONE":            cfg.SenderPhone,
		"SENDER_ADDRESS":          cfg.SenderAddress,
		"DB_STRING":               cfg.DBString,
	})
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

func requiredKeys(keys map[string]string) []string {
	var missing []string
	for k, v := range keys {
		if v == "" {
			missing = append(missing, k)
		}
	}
	sort.Strings(missing)
	return missing
}
