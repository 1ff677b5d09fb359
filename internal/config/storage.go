package config

type StorageConfig struct {
	ImagePath string `yaml:"image_path"`
	BaseURL   string `yaml:"base_url"`
}

func loadStorageConfig() *StorageConfig {
	return &StorageConfig{
		ImagePath: getEnv("STORAGE_IMAGE_PATH", "./client/assets/images"),
		BaseURL:   getEnv("STORAGE_BASE_URL", "/assets/images"),
	}
}
