// Package config provides configuration management for the inventory import service.
//
// It uses Viper for environment variables and godotenv for an optional .env file.
// Defaults come from the 'default' struct tags of each section.
//
// # Configuration Structure
//
//   - Server: HTTP port and API key
//   - Database: driver and connection details for the inventory tables
//   - Storage: S3/MinIO credentials, bucket and error report prefix
//   - Log: logging level and format
//   - Import: pause polling interval, error preview size, upload cap
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Import.PollIntervalMs)
package config
