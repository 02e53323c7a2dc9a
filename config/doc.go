// Package config loads service configuration with viper.
//
// Values are read from a YAML file, then a .env file (godotenv), then the
// environment. With WithEnvPrefix("MEETINGMIND") the variable
// MEETINGMIND_ANALYSIS_MAX_ATTEMPTS sets analysis.max_attempts; WithEnvAlias
// binds well-known names such as GEMINI_API_KEY to a key.
package config
