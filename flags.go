package main

import (
	"time"

	"github.com/urfave/cli/v2"
)

var FlagLogLevel = &cli.StringFlag{
	Name:     "log-level",
	EnvVars:  []string{"LOG_LEVEL"},
	Value:    "info",
	Required: false,
}

var FlagLogWriter = &cli.StringFlag{
	Name:     "log-writer",
	Usage:    "one of: [console, json]",
	EnvVars:  []string{"LOG_WRITER"},
	Value:    "console",
	Required: false,
}

var FlagTuyaClientID = &cli.StringFlag{
	Name:     "tuya-client-id",
	Usage:    "tuya cloud client id",
	EnvVars:  []string{"TUYA_CLIENT_ID"},
	Required: true,
}

var FlagTuyaClientSecret = &cli.StringFlag{
	Name:     "tuya-client-secret",
	Usage:    "tuya cloud client secret",
	EnvVars:  []string{"TUYA_CLIENT_SECRET"},
	Required: true,
}

var FlagTuyaAPIEndpoint = &cli.StringFlag{
	Name:     "tuya-api-endpoint",
	Usage:    "tuya openapi base url",
	EnvVars:  []string{"TUYA_API_ENDPOINT"},
	Value:    "https://openapi.tuyaeu.com",
	Required: false,
}

var FlagTuyaDeviceIDs = &cli.StringFlag{
	Name:     "tuya-device-ids",
	Usage:    "comma separated device id allow-list",
	EnvVars:  []string{"TUYA_DEVICE_IDS"},
	Required: true,
}

var FlagCacheTTL = &cli.DurationFlag{
	Name:     "cache-ttl",
	Usage:    "device snapshot cache ttl",
	EnvVars:  []string{"CACHE_TTL"},
	Value:    60 * time.Second,
	Required: false,
}

var FlagTokenSafetyMargin = &cli.DurationFlag{
	Name:     "token-safety-margin",
	Usage:    "subtracted from the upstream token lifetime, minimum 60s",
	EnvVars:  []string{"TOKEN_SAFETY_MARGIN"},
	Value:    60 * time.Second,
	Required: false,
}

var FlagListenAddr = &cli.StringFlag{
	Name:     "listen-addr",
	EnvVars:  []string{"LISTEN_ADDR"},
	Value:    ":8080",
	Required: false,
}

var FlagAPIToken = &cli.StringFlag{
	Name:     "api-token",
	Usage:    "bearer token required on inbound calls; empty disables auth",
	EnvVars:  []string{"API_TOKEN"},
	Required: false,
}

var FlagEnvironment = &cli.StringFlag{
	Name:     "environment",
	Usage:    "one of: [production, development]",
	EnvVars:  []string{"ENVIRONMENT"},
	Value:    "production",
	Required: false,
}

var FlagRedisURL = &cli.StringFlag{
	Name:     "redis-url",
	Usage:    "redis://host:port; empty uses the in-memory snapshot cache",
	EnvVars:  []string{"REDIS_URL"},
	Required: false,
}

var FlagPollInterval = &cli.DurationFlag{
	Name:     "poll-interval",
	Usage:    "change detection poll interval; 0 disables polling",
	EnvVars:  []string{"POLL_INTERVAL"},
	Value:    60 * time.Second,
	Required: false,
}

var FlagMQTTUrl = &cli.StringFlag{
	Name:     "mqtt-url",
	Usage:    "tcp://broker:port; empty disables change publishing",
	EnvVars:  []string{"MQTT_URL"},
	Required: false,
}

var FlagMQTTClientID = &cli.StringFlag{
	Name:     "mqtt-client-id",
	EnvVars:  []string{"MQTT_CLIENT_ID"},
	Value:    "tuya-device-gateway",
	Required: false,
}

var FlagMQTTUsername = &cli.StringFlag{
	Name:     "mqtt-username",
	EnvVars:  []string{"MQTT_USERNAME"},
	Required: false,
}

var FlagMQTTPassword = &cli.StringFlag{
	Name:     "mqtt-password",
	EnvVars:  []string{"MQTT_PASSWORD"},
	Required: false,
}

var FlagMQTTTopic = &cli.StringFlag{
	Name:     "mqtt-topic",
	EnvVars:  []string{"MQTT_TOPIC"},
	Value:    "tuya-devices/changes",
	Required: false,
}
