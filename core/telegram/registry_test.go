package telegram

import (
	"context"
	"testing"
	"time"

	coreconfig "github.com/villagegaming/storebot/core/config"
	"github.com/villagegaming/storebot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

func TestRegistryCommands(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "Главное меню"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.RegisterCommand("/admins", commands.Command{Handler: noop, Description: "Админы", AdminOnly: true, Hidden: true}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "dup"}); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := reg.RegisterCommand("help", commands.Command{Handler: noop, Description: "x"}); err == nil {
		t.Fatal("expected slash error")
	}

	visible := reg.ListCommands(true)
	if len(visible) != 1 || visible[0].Text != "/start" {
		t.Fatalf("visible commands = %+v", visible)
	}
	if all := reg.ListCommands(false); len(all) != 2 {
		t.Fatalf("all commands = %+v", all)
	}
	if key, _, ok := reg.LookupCommand("start"); !ok || key != "/start" {
		t.Fatalf("LookupCommand = %q, %v", key, ok)
	}
}

func TestRegistryAliases(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterCommand("/catalog", commands.Command{Handler: noop, Description: "Каталог", Aliases: []string{"games", "/Shop", "catalog"}}); err != nil {
		t.Fatalf("register: %v", err)
	}
	for _, name := range []string{"/games", "shop", "/SHOP@village_store_bot"} {
		if key, _, ok := reg.LookupCommand(name); !ok || key != "/catalog" {
			t.Fatalf("LookupCommand(%q) = %q, %v", name, key, ok)
		}
	}
	if err := reg.RegisterCommand("/games", commands.Command{Handler: noop, Description: "x"}); err == nil {
		t.Fatal("expected alias collision")
	}
	if err := reg.RegisterCommand("/help", commands.Command{Handler: noop, Description: "x", Aliases: []string{"shop"}}); err == nil {
		t.Fatal("expected alias collision")
	}
	entries := reg.Commands()
	if len(entries) != 1 || len(entries[0].Aliases) != 2 {
		t.Fatalf("Commands = %+v", entries)
	}
}

func TestRegistryRejectsInvalidCommands(t *testing.T) {
	reg := NewRegistry()
	cases := map[string]commands.Command{
		"/nohandler": {Description: "x"},
		"/nodesc":    {Handler: noop},
		"/bad-name":  {Handler: noop, Description: "x"},
		"/":          {Handler: noop, Description: "x"},
	}
	for name, cmd := range cases {
		if err := reg.RegisterCommand(name, cmd); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if got := reg.Commands(); len(got) != 0 {
		t.Fatalf("Commands = %+v", got)
	}
}

func TestRegistryCallbacks(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterCallback("game", noop); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.RegisterCallback("game", noop); err == nil {
		t.Fatal("expected duplicate error")
	}
	if _, ok := reg.GetCallback("game"); !ok {
		t.Fatal("callback not found")
	}
	if _, ok := reg.GetCallback("order"); ok {
		t.Fatal("unexpected callback")
	}
	if err := reg.RegisterCallback("", noop); err == nil {
		t.Fatal("expected empty key error")
	}
	if reg.CallbackNotFound() == nil {
		t.Fatal("missing default callback fallback")
	}
	if got := reg.ListCallbacks(); len(got) != 1 || got[0] != "game" {
		t.Fatalf("ListCallbacks = %v", got)
	}
}

func TestNewPoller(t *testing.T) {
	cfg := &coreconfig.Config{
		Telegram: coreconfig.TelegramConfig{RunMode: coreconfig.RunModeWebhook},
		Webhook:  coreconfig.WebhookConfig{Listen: "0.0.0.0", Port: 8443, URL: "https://store.example/hook"},
	}
	wh, ok := NewPoller(cfg).(*tele.Webhook)
	if !ok || wh.Listen != "0.0.0.0:8443" || wh.Endpoint.PublicURL != "https://store.example/hook" {
		t.Fatalf("unexpected webhook: %+v", wh)
	}

	lp, ok := NewPoller(&coreconfig.Config{}).(*tele.LongPoller)
	if !ok || lp.Timeout != defaultLongPoll {
		t.Fatalf("unexpected long poller: %+v", lp)
	}
	cfg = &coreconfig.Config{Telegram: coreconfig.TelegramConfig{LongPollTimeoutSeconds: 25}}
	if got := longPollTimeout(cfg); got != 25*time.Second {
		t.Fatalf("longPollTimeout = %v", got)
	}
}

func TestPollerAttrs(t *testing.T) {
	attrs := pollerAttrs(&tele.LongPoller{Timeout: 30 * time.Second})
	if len(attrs) != 2 || attrs[0].Value.String() != "longpoll" || attrs[1].Value.Int64() != 30 {
		t.Fatalf("pollerAttrs = %v", attrs)
	}
}

func TestRunTelegramNeedsConfig(t *testing.T) {
	if err := RunTelegram(context.Background(), RunOptions{}); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestDefaultMiddlewares(t *testing.T) {
	names := func(chain []Middleware) []string {
		var out []string
		for _, mw := range chain {
			out = append(out, mw.Name)
		}
		return out
	}
	if got := names(DefaultMiddlewares(nil, nil)); len(got) != 3 || got[1] != "logger" {
		t.Fatalf("chain without config = %v", got)
	}
	cfg := &coreconfig.Config{RateLimit: coreconfig.RateLimitConfig{IntervalMS: 500, Burst: 3}}
	if got := names(DefaultMiddlewares(cfg, noop)); len(got) != 4 || got[1] != "rate_limit" {
		t.Fatalf("chain with rate limit = %v", got)
	}
}
