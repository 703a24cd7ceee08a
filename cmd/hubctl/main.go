// Command hubctl drives the gateway management operations from a shell.
// It reads the same environment as the server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"

	"github.com/ricirt/hubgateway/internal/config"
	"github.com/ricirt/hubgateway/internal/domain"
	"github.com/ricirt/hubgateway/internal/gateway"
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			printUsage(os.Stderr)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "hubctl: %v\n", err)
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: hubctl <command> [flags]

Commands:
  status                                   provider health
  channels                                 channels configured at the provider
  subscriptions                            list webhook subscriptions
  subscribe -url U [-channel C] [-events E1,E2]
  unsubscribe -id ID
  send-text -channel C -from F -to T -body B
  templates                                WhatsApp message templates
  bot-info                                 Telegram bot identity
  set-webhook -channel whatsapp|telegram -url U [-verify-token V]
`)
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		printUsage(out)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := zap.NewNop()
	if cfg.LogLevel == "debug" {
		logger, _ = zap.NewDevelopment()
	}
	client, err := gateway.New(cfg.GatewayConfig(cfg.APIToken), gateway.WithLogger(logger))
	if err != nil {
		return err
	}

	switch cmd {
	case "status":
		return writeJSON(out, client.GetStatus(ctx))
	case "channels":
		return result(out)(client.GetChannels(ctx))
	case "subscriptions":
		return result(out)(client.GetSubscriptions(ctx))
	case "subscribe":
		return subscribeCmd(ctx, client, args, out)
	case "unsubscribe":
		return unsubscribeCmd(ctx, client, args, out)
	case "send-text":
		return sendTextCmd(ctx, client, args, out)
	case "templates":
		return result(out)(client.WhatsApp().ListTemplates(ctx))
	case "bot-info":
		return result(out)(client.Telegram().GetBotInfo(ctx))
	case "set-webhook":
		return setWebhookCmd(ctx, client, args, out)
	}
	return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
}

func subscribeCmd(ctx context.Context, c *gateway.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("subscribe", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	url := fs.String("url", "", "webhook target URL")
	ch := fs.String("channel", string(domain.ChannelWhatsApp), "channel to subscribe")
	events := fs.String("events", "", "comma-separated event kinds (default: all)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%v: %w", err, errUsage)
	}

	req := domain.SubscriptionRequest{URL: *url, Channel: domain.Channel(*ch)}
	for _, e := range strings.Split(*events, ",") {
		if e = strings.TrimSpace(e); e != "" {
			req.Events = append(req.Events, domain.EventKind(e))
		}
	}
	return result(out)(c.CreateSubscription(ctx, req))
}

func unsubscribeCmd(ctx context.Context, c *gateway.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("unsubscribe", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	id := fs.String("id", "", "subscription id")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%v: %w", err, errUsage)
	}
	if err := c.DeleteSubscription(ctx, *id); err != nil {
		return err
	}
	return writeJSON(out, domain.OK(*id))
}

func sendTextCmd(ctx context.Context, c *gateway.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("send-text", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	ch := fs.String("channel", string(domain.ChannelWhatsApp), "channel to send through")
	from := fs.String("from", "", "sender id")
	to := fs.String("to", "", "recipient id")
	body := fs.String("body", "", "message text")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%v: %w", err, errUsage)
	}

	adapter, err := c.SetChannel(*ch)
	if err != nil {
		return err
	}
	return result(out)(adapter.SendMessage(ctx, *from, *to, domain.NewText(*body)))
}

func setWebhookCmd(ctx context.Context, c *gateway.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("set-webhook", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	ch := fs.String("channel", "", "whatsapp or telegram")
	url := fs.String("url", "", "public webhook URL")
	verify := fs.String("verify-token", "", "WhatsApp verification token")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%v: %w", err, errUsage)
	}

	switch domain.Channel(*ch) {
	case domain.ChannelWhatsApp:
		return result(out)(c.WhatsApp().SetWebhook(ctx, *url, *verify))
	case domain.ChannelTelegram:
		return result(out)(c.Telegram().SetWebhook(ctx, *url))
	}
	return fmt.Errorf("set-webhook supports whatsapp and telegram, got %q: %w", *ch, errUsage)
}

// result adapts a (value, error) pair into printed JSON.
func result(out io.Writer) func(any, error) error {
	return func(v any, err error) error {
		if err != nil {
			return err
		}
		return writeJSON(out, v)
	}
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
