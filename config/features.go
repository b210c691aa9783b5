package config

import "github.com/spf13/viper"

type Features struct {
	RegistrationEnabled bool
	PaymentsEnabled     bool
	MetricsEnabled      bool
}

func loadFeatures(v *viper.Viper) Features {
	return Features{
		RegistrationEnabled: v.GetBool("features.registration"),
		PaymentsEnabled:     v.GetBool("features.payments"),
		MetricsEnabled:      v.GetBool("features.metrics"),
	}
}
