package config

type MapsConfig struct {
	GoogleAPIKey string `yaml:"google_api_key"`
	Enabled      bool   `yaml:"enabled"`
}

func loadMapsConfig() *MapsConfig {
	key := getEnv("GOOGLE_MAPS_API_KEY", "")
	return &MapsConfig{
		GoogleAPIKey: key,
		Enabled:      getEnvAsBool("MAPS_ENABLED", key != ""),
	}
}
