package bootstrap

import "github.com/kbukum/meetingmind/config"

// Config is the constraint for application configuration types. A pointer
// to any struct embedding config.ServiceConfig gets GetServiceConfig by
// promotion and only adds ApplyDefaults and Validate.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
