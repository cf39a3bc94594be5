package util

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

type Config struct {
	Port              string `validate:"required,number"`
	TokenSymmetricKey string `validate:"required,len=32"`
	CORSOrigins       []string
}

func LoadConfig() (*Config, error) {
	godotenv.Load()

	config := &Config{
		Port:              os.Getenv("PORT"),
		TokenSymmetricKey: os.Getenv("TOKEN_SYMMETRIC_KEY"),
		CORSOrigins: lo.FilterMap(strings.Split(os.Getenv("CORS_ORIGINS"), ","), func(origin string, _ int) (string, bool) {
			trimmed := strings.TrimSpace(origin)
			return trimmed, trimmed != ""
		}),
	}

	if err := Validate.Struct(config); err != nil {
		return nil, err
	}

	return config, nil
}
