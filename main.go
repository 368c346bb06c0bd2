package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/anicoll/okte-integration/cmd"
)

func main() {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "name",
			EnvVars: []string{"NAME"},
			Value:   "OKTE DAM",
		},
		&cli.StringFlag{
			Name:    "okte-url",
			EnvVars: []string{"OKTE_URL"},
			Value:   "",
		},
		&cli.StringFlag{
			Name:    "okte-range",
			EnvVars: []string{"OKTE_RANGE"},
			Value:   "today_tomorrow",
		},
		&cli.StringFlag{
			Name:    "poll-schedule",
			EnvVars: []string{"POLL_SCHEDULE"},
			Value:   "@every 30m",
		},
		&cli.StringFlag{
			Name:    "mqtt-host",
			EnvVars: []string{"MQTT_HOST"},
			Value:   "",
		},
		&cli.StringFlag{
			Name:    "mqtt-user",
			EnvVars: []string{"MQTT_USER"},
			Value:   "",
		},
		&cli.StringFlag{
			Name:    "mqtt-pass",
			EnvVars: []string{"MQTT_PASS"},
			Value:   "",
		},
		&cli.StringFlag{
			Name:    "http-addr",
			EnvVars: []string{"HTTP_ADDR"},
			Value:   "0.0.0.0:8000",
		},
		&cli.StringFlag{
			Name:    "log-level",
			EnvVars: []string{"LOG_LEVEL"},
			Value:   "INFO",
		},
	}

	app := &cli.App{
		Name:   "okte-dam",
		Usage:  "publishes OKTE day-ahead market prices",
		Action: cmd.RunCommand,
		Flags:  flags,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "poll OKTE and publish prices",
				Action: cmd.RunCommand,
				Flags:  flags,
			},
			{
				Name:   "validate",
				Usage:  "check that the OKTE API is reachable",
				Action: cmd.ValidateCommand,
				Flags:  flags,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
