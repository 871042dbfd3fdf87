package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig is the typed view of the environment.
type AppConfig struct {
	Port           string
	DatabaseURL    string
	ShopLocation   *time.Location
	SlotPolicy     string // exact or overlap
	SlotWindow     string // fixed or schedule
	SlotStep       time.Duration
	BookingTimeout time.Duration
	CORSOrigins    []string

	SMSProvider    string // vatan, twilio or log
	VatanURL       string
	VatanToken     string
	VatanRegID     string
	TwilioSID      string
	TwilioToken    string
	TwilioFrom     string
	TwilioWhatsApp string

	AMQPURL      string
	ReminderCron string
	ExpiryCron   string
}

func Load() AppConfig {
	cfg := AppConfig{
		Port:           getenv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DB_URL"),
		ShopLocation:   loadLocation(getenv("SHOP_TIMEZONE", "Europe/Istanbul")),
		SlotPolicy:     strings.ToLower(getenv("SLOT_POLICY", "overlap")),
		SlotWindow:     strings.ToLower(getenv("SLOT_WINDOW", "fixed")),
		SlotStep:       time.Duration(atoi(getenv("SLOT_STEP_MINUTES", "30"), 30)) * time.Minute,
		BookingTimeout: parseDur(getenv("BOOKING_TIMEOUT", "10s"), 10*time.Second),
		CORSOrigins:    splitList(getenv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),

		SMSProvider:    strings.ToLower(getenv("SMS_PROVIDER", "log")),
		VatanURL:       getenv("VATAN_API_URL", "https://api.toplusms.app/bulk/wp/nton"),
		VatanToken:     os.Getenv("VATAN_TOKEN"),
		VatanRegID:     os.Getenv("VATAN_REG_ID"),
		TwilioSID:      os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioToken:    os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFrom:     os.Getenv("TWILIO_PHONE_NUMBER"),
		TwilioWhatsApp: os.Getenv("TWILIO_WHATSAPP_NUMBER"),

		AMQPURL:      getenv("RABBITMQ_URL", os.Getenv("AMQP_URL")),
		ReminderCron: getenv("REMINDER_CRON", "0 9 * * *"),
		ExpiryCron:   getenv("EXPIRY_CRON", "*/15 * * * *"),
	}

	if os.Getenv("JWT_SECRET") == "" {
		log.Println("WARNING: JWT_SECRET not set - logins will fail")
	}
	if cfg.SMSProvider == "vatan" && cfg.VatanToken == "" {
		log.Println("WARNING: VATAN_TOKEN not set - SMS delivery will fail")
	}
	return cfg
}

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("Unknown SHOP_TIMEZONE %q, falling back to UTC+3: %v", name, err)
		return time.FixedZone("+03", 3*60*60)
	}
	return loc
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil || i <= 0 {
		return def
	}
	return i
}

func parseDur(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
