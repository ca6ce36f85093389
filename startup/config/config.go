package config

import "os"

type Config struct {
	Port            string
	InventoryDBHost string
	InventoryDBPort string
	JaegerAddress   string
}

func NewConfig() *Config {
	return &Config{
		Port:            os.Getenv("BOOKING_SERVICE_PORT"),
		InventoryDBHost: os.Getenv("INVENTORY_DB_HOST"),
		InventoryDBPort: os.Getenv("INVENTORY_DB_PORT"),
		JaegerAddress:   os.Getenv("JAEGER_ADDRESS"),
	}
}
