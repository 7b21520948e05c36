package config

// Features groups the runtime switches that change request routing rather
// than wiring.
type Features struct {
	MaintenanceEnabled bool
	// DevSecret, DevUser and DevPass let testers through the maintenance gate.
	DevSecret string
	DevUser   string
	DevPass   string
}

func loadFeatures(getenv func(string) string) Features {
	return Features{
		MaintenanceEnabled: getenv("MAINTENANCE") == "true",
		DevSecret:          getenv("DEV_SECRET"),
		DevUser:            getenv("DEV_USER"),
		DevPass:            getenv("DEV_PASS"),
	}
}
