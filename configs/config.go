package config

import "os"

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
}

type Config struct {
	PostgresURI          string
	RedisURI             string
	ServiceRoleSecret    string
	SecretKey            string
	CookieName           string
	FrontendURL          string
	GraphAPIBaseURL      string
	LinkedinAPIBaseURL   string
	NotifyTimeZone       string
	R2                   R2
	LinkedinClientID     string
	LinkedinClientSecret string
	FacebookClientID     string
	FacebookClientSecret string
}

func LoadConfig() *Config {
	return &Config{
		PostgresURI:        getEnv("POSTGRES_URI", ""),
		RedisURI:           getEnv("REDIS_URI", ""),
		ServiceRoleSecret:  getEnv("SERVICE_ROLE_SECRET", ""),
		SecretKey:          getEnv("SECRET_KEY", ""),
		CookieName:         getEnv("COOKIE_NAME", "ribotflow_session"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:5173"),
		GraphAPIBaseURL:    getEnv("GRAPH_API_BASE_URL", "https://graph.facebook.com/v19.0"),
		LinkedinAPIBaseURL: getEnv("LINKEDIN_API_BASE_URL", "https://api.linkedin.com/v2"),
		NotifyTimeZone:     getEnv("NOTIFY_TIMEZONE", "Europe/Madrid"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
		},
		LinkedinClientID:     getEnv("LINKEDIN_CLIENT_ID", ""),
		LinkedinClientSecret: getEnv("LINKEDIN_CLIENT_SECRET", ""),
		FacebookClientID:     getEnv("FACEBOOK_CLIENT_ID", ""),
		FacebookClientSecret: getEnv("FACEBOOK_CLIENT_SECRET", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
