package cmd

import (
	"time"

	"github.com/isometry/gh-autoflow-app/internal/helpers"
)

var svcEnvMapString = map[*string]boundEnvVar[string]{
	&cfg.Service.Addr: {
		Name:        "service-host-addr",
		Description: "The address to serve the service on (default all interfaces in dual-stack mode)",
		Short:       helpers.Ptr("H"),
	},
	&cfg.Service.Port: {
		Name:        "service-host-port",
		Description: "The port to serve the service on",
		Short:       helpers.Ptr("p"),
		Env:         helpers.Ptr("WEBHOOK_PORT"),
	},
}

var svcEnvMapInt64 = map[*int64]boundEnvVar[int64]{
	&cfg.Service.BodyLimit: {
		Name:        "service-body-limit",
		Description: "The maximum accepted webhook payload size in bytes",
	},
}

var svcEnvMapDuration = map[*time.Duration]boundEnvVar[time.Duration]{
	&cfg.Service.Timeout: {
		Name:        "service-io-timeout",
		Description: "The timeout for reading requests",
		Short:       helpers.Ptr("t"),
	},
}
