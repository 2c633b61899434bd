package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"tuya-device-gateway/adapters"
	"tuya-device-gateway/application"

	"github.com/gomodule/redigo/redis"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

var Flags = []cli.Flag{
	FlagLogLevel,
	FlagLogWriter,
	FlagTuyaClientID,
	FlagTuyaClientSecret,
	FlagTuyaAPIEndpoint,
	FlagTuyaDeviceIDs,
	FlagCacheTTL,
	FlagTokenSafetyMargin,
	FlagListenAddr,
	FlagAPIToken,
	FlagEnvironment,
	FlagRedisURL,
	FlagPollInterval,
	FlagMQTTUrl,
	FlagMQTTClientID,
	FlagMQTTUsername,
	FlagMQTTPassword,
	FlagMQTTTopic,
}

func main() {
	var logger zerolog.Logger

	app := cli.App{
		Name:    "tuya-device-gateway",
		Version: "v0.1.0",
		Flags:   Flags,
		Before: func(ctx *cli.Context) error {
			var logWriter io.Writer
			if ctx.String(FlagLogWriter.Name) == "console" {
				logWriter = zerolog.ConsoleWriter{
					Out:        os.Stderr,
					TimeFormat: time.RFC3339Nano,
				}
			} else if ctx.String(FlagLogWriter.Name) == "json" {
				logWriter = os.Stderr
			}

			logger = zerolog.New(logWriter).With().Timestamp().
				Str("service", "tuya-device-gateway").
				Str("module", "main").
				Logger()

			level, err := zerolog.ParseLevel(ctx.String(FlagLogLevel.Name))
			if err != nil {
				return err
			}

			zerolog.SetGlobalLevel(level)

			return nil
		},
		Action: func(ctx *cli.Context) error {
			logger.Info().Msg("service starting...")

			appCtx, cancel := context.WithCancel(logger.WithContext(context.Background()))
			go func() {
				c := make(chan os.Signal, 1)
				signal.Notify(c, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

				<-c

				logger.Warn().Msg("interrupt signal received")
				cancel()
			}()

			signer, err := adapters.NewTuyaSigner(adapters.TuyaSignerParams{
				ClientID:     ctx.String(FlagTuyaClientID.Name),
				ClientSecret: ctx.String(FlagTuyaClientSecret.Name),
			})
			if err != nil {
				return err
			}

			tuyaClient, err := adapters.NewTuyaClient(adapters.TuyaClientParams{
				Endpoint: ctx.String(FlagTuyaAPIEndpoint.Name),
				Signer:   signer,
				Log:      logger.With().Str("module", "tuya-client").Logger(),
			})
			if err != nil {
				return err
			}

			tokens, err := application.NewTokenSource(application.TokenSourceParams{
				Client:       tuyaClient,
				SafetyMargin: ctx.Duration(FlagTokenSafetyMargin.Name),
				Log:          logger.With().Str("module", "token-source").Logger(),
			})
			if err != nil {
				return err
			}

			cache, err := newSnapshotCache(ctx, logger)
			if err != nil {
				return err
			}

			deviceIDs := splitDeviceIDs(ctx.String(FlagTuyaDeviceIDs.Name))
			deviceService, err := application.NewDeviceService(application.DeviceServiceParams{
				Client:           tuyaClient,
				Tokens:           tokens,
				Cache:            cache,
				AllowedDeviceIDs: deviceIDs,
				Log:              logger.With().Str("module", "device-service").Logger(),
			})
			if err != nil {
				return err
			}

			authorizer, err := newAuthorizer(ctx, logger)
			if err != nil {
				return err
			}

			handler, err := adapters.NewDeviceHandler(adapters.DeviceHandlerParams{
				Devices:     deviceService,
				Authorizer:  authorizer,
				Development: ctx.String(FlagEnvironment.Name) == "development",
				Log:         logger.With().Str("module", "http").Logger(),
			})
			if err != nil {
				return err
			}

			poller, err := newPoller(ctx, logger, deviceService)
			if err != nil {
				return err
			}

			service, err := application.NewGatewayService(application.GatewayServiceParams{
				ListenAddr: ctx.String(FlagListenAddr.Name),
				Handler:    handler.Router(),
				Poller:     poller,
				Log:        logger.With().Str("module", "service").Logger(),
			})
			if err != nil {
				return err
			}

			logger.Info().
				Int("devices", len(deviceIDs)).
				Msg("service started")

			if err := service.Run(appCtx); err != nil {
				return err
			}

			logger.Info().Msg("service terminating...")
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Err(err).Msg("service terminated")
	}
}

func newSnapshotCache(ctx *cli.Context, logger zerolog.Logger) (application.SnapshotCache, error) {
	redisURL := ctx.String(FlagRedisURL.Name)
	if redisURL == "" {
		return application.NewMemorySnapshotCache(application.MemorySnapshotCacheParams{
			TTL: ctx.Duration(FlagCacheTTL.Name),
		}), nil
	}

	pool := &redis.Pool{
		MaxIdle:     3,
		IdleTimeout: 240 * time.Second,
		DialContext: func(ctx context.Context) (redis.Conn, error) {
			return redis.DialURLContext(ctx, redisURL)
		},
	}

	return adapters.NewRedisSnapshotCache(adapters.RedisSnapshotCacheParams{
		Pool: pool,
		TTL:  ctx.Duration(FlagCacheTTL.Name),
		Log:  logger.With().Str("module", "redis-cache").Logger(),
	})
}

func newAuthorizer(ctx *cli.Context, logger zerolog.Logger) (adapters.Authorizer, error) {
	apiToken := ctx.String(FlagAPIToken.Name)
	if apiToken == "" {
		logger.Warn().Msg("no api token configured, inbound auth disabled")
		return adapters.AllowAllAuthorizer{}, nil
	}

	return adapters.NewStaticTokenAuthorizer(apiToken)
}

func newPoller(ctx *cli.Context, logger zerolog.Logger, devices *application.DeviceService) (*application.DevicePoller, error) {
	interval := ctx.Duration(FlagPollInterval.Name)
	if interval == 0 {
		return nil, nil
	}

	var mqttClient application.MQTTClient
	if ctx.String(FlagMQTTUrl.Name) != "" {
		client := adapters.NewMQTTClient(adapters.MQTTClientParams{
			ClientID: ctx.String(FlagMQTTClientID.Name),
			Username: ctx.String(FlagMQTTUsername.Name),
			Password: ctx.String(FlagMQTTPassword.Name),
			MQTTUrl:  ctx.String(FlagMQTTUrl.Name),
			Log:      logger.With().Str("module", "mqtt-client").Logger(),
		})

		if err := client.Connect(); err != nil {
			return nil, err
		}
		mqttClient = client
	}

	return application.NewDevicePoller(application.DevicePollerParams{
		Devices:    devices,
		MQTTClient: mqttClient,
		MQTTTopic:  ctx.String(FlagMQTTTopic.Name),
		Interval:   interval,
		Log:        logger.With().Str("module", "poller").Logger(),
	})
}

func splitDeviceIDs(csv string) []string {
	var ids []string
	for _, id := range strings.Split(csv, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
