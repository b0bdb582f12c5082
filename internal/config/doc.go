// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// Variables may also come from a .env file loaded with LoadEnvFile; values
// already present in the environment take precedence.
package config
