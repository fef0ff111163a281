package db

import "github.com/smallbiznis/taxbridge/internal/config"

func testConfig(kind string) config.Config {
	return config.Config{
		DBType:    kind,
		DBHost:    "localhost",
		DBPort:    "5432",
		DBName:    "taxbridge",
		DBUser:    "taxbridge",
		DBSSLMode: "disable",
	}
}
