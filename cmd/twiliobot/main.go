// Command twiliobot runs a minimal webhook server around the Twilio channel
// drivers. It answers every inbound SMS or voice digit press by echoing the
// content back, which is enough to verify an end-to-end Twilio setup.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gobotkit/twilio"
	"github.com/gobotkit/twilio/internal/server"
	"github.com/gobotkit/twilio/message"
)

var (
	logger     *slog.Logger
	configPath string
	addr       string
	path       string
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:   "twiliobot",
		Short: "Webhook server for the Twilio channel drivers",
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.json (default: env vars only)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server with an echo responder",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVar(&path, "path", "/twilio", "webhook path")

	root.AddCommand(serveCmd)
	root.AddCommand(driversCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func driversCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drivers",
		Short: "List registered channel drivers",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range twilio.RegisteredNames() {
				fmt.Println(name)
			}
		},
	}
}

func loadConfig() (twilio.Config, error) {
	if configPath != "" {
		return twilio.LoadConfig(configPath)
	}
	// No file: configuration comes entirely from TWILIO_ environment
	// variables.
	cfg, err := twilio.LoadConfigFromReader(strings.NewReader("{}"))
	if err != nil {
		return twilio.Config{}, err
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(server.Config{
		Addr:   addr,
		Path:   path,
		Twilio: cfg,
		Logger: logger,
		OnEvent: func(ctx context.Context, drv twilio.Driver, ev *message.Event) {
			logger.Info("incoming call", "from", ev.Payload["From"], "to", ev.Payload["To"])
		},
	}, echo)
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}

// echo replies with the received content. Voice callers who have not pressed
// anything yet get a prompt instead.
func echo(ctx context.Context, drv twilio.Driver, msg *message.Incoming) (any, *twilio.SendOptions) {
	if drv.Name() == twilio.DriverNameVoice && msg.Text == "" {
		q := message.NewQuestion("Press a digit and I will read it back").
			AddButton(message.Button{Text: "One", Value: "1"}).
			AddButton(message.Button{Text: "Two", Value: "2"})
		return q, nil
	}
	return "You said: " + msg.Text, nil
}
