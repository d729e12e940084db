package app

import (
	"os"
	"strings"

	"github.com/studyowl/tutor-backend/internal/platform/envutil"
	"github.com/studyowl/tutor-backend/internal/platform/logger"
	"github.com/studyowl/tutor-backend/internal/tutor/dispatch"
	"github.com/studyowl/tutor-backend/internal/tutor/provider"
)

type Config struct {
	Port             string
	ModelsConfigPath string
	ProviderKeys     dispatch.ProviderKeys
}

// LoadConfig reads the process environment once; nothing else in the pipeline
// touches os.Getenv for secrets.
func LoadConfig(log *logger.Logger) Config {
	keys := dispatch.ProviderKeys{}
	for _, name := range provider.AllNames() {
		keys[name] = strings.TrimSpace(os.Getenv(name.EnvVar()))
	}
	log.Info("provider keys loaded", "configured", keys.Configured())

	return Config{
		Port:             envutil.Get("PORT", "8080"),
		ModelsConfigPath: envutil.Get("MODELS_CONFIG_PATH", ""),
		ProviderKeys:     keys,
	}
}
