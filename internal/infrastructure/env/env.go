package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"swagflow/internal/application/port/output"

	"github.com/joho/godotenv"
)

var _ output.ConfigPort = (*EnvService)(nil)

// EnvService exposes process environment after merging .env files: .env is
// loaded first without overriding the real environment, then
// .env.$APP_ENV overrides it when present.
type EnvService struct {
	AppEnv string
	Loaded []string
}

func NewEnvService(dir string) (*EnvService, error) {
	svc := &EnvService{AppEnv: os.Getenv("APP_ENV")}

	base := filepath.Join(dir, ".env")
	if err := godotenv.Load(base); err == nil {
		svc.Loaded = append(svc.Loaded, base)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", base, err)
	}

	if svc.AppEnv != "" {
		envFile := filepath.Join(dir, ".env."+svc.AppEnv)
		if err := godotenv.Overload(envFile); err == nil {
			svc.Loaded = append(svc.Loaded, envFile)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	return svc, nil
}

func (e *EnvService) Get(key string) string {
	return os.Getenv(key)
}

func (e *EnvService) GetBool(key string, defaultValue bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (e *EnvService) GetInt(key string, defaultValue int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}
