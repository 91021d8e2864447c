// Package config loads env-tagged configuration structs.
//
// A .env file in the working directory is read once per process through
// godotenv, then each struct is parsed with caarlos0/env. Parsed values are
// cached per type so components can call Load independently without
// re-reading the environment.
//
//	var cfg mongo.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
package config
