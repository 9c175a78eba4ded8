package config

import "errors"

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed into the config struct
	ErrParsingConfig = errors.New("config.parse_failed")

	// ErrInvalidConfigType is returned when the target is not a struct
	ErrInvalidConfigType = errors.New("config.invalid_type")

	// ErrConfigNotLoaded is returned when a config type could not be read back from the cache
	ErrConfigNotLoaded = errors.New("config.not_loaded")

	// ErrNilPointer is returned when a nil pointer is provided to Load
	ErrNilPointer = errors.New("config.nil_pointer")

	// ErrLoadingEnvFile is returned when a .env file cannot be read
	ErrLoadingEnvFile = errors.New("config.env_file")
)
