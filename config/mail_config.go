package config

// MailConfig holds SMTP settings for price alerts
type MailConfig struct {
	SMTPHost  string
	SMTPPort  int
	SMTPUser  string
	SMTPPass  string
	FromEmail string
}

// LoadMailConfig loads SMTP configuration from environment variables
func LoadMailConfig() *MailConfig {
	return &MailConfig{
		SMTPHost:  getEnv("SMTP_HOST", ""),
		SMTPPort:  getEnvInt("SMTP_PORT", 587),
		SMTPUser:  getEnv("SMTP_USER", ""),
		SMTPPass:  getEnv("SMTP_PASSWORD", ""),
		FromEmail: getEnv("SMTP_FROM", ""),
	}
}

// IsValid checks if the mail configuration can send messages
func (c *MailConfig) IsValid() bool {
	return c.SMTPHost != "" && c.FromEmail != ""
}

// RedisConfig holds the optional Redis connection used for cross-process locks
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoadRedisConfig loads Redis configuration from environment variables
func LoadRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}
}

// Enabled reports whether a Redis address was configured
func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}
