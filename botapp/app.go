// Package botapp wires the promo bot together: the command surface, the
// intake flow, the payment webhook sidecar, and the announcement poster.
package botapp

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	appconfig "github.com/tokenvestors/promobot/config"
	"github.com/tokenvestors/promobot/core/bootstrap"
	"github.com/tokenvestors/promobot/core/cmd"
	coretelegram "github.com/tokenvestors/promobot/core/telegram"
	tghelpers "github.com/tokenvestors/promobot/core/telegram/helpers"
	"github.com/tokenvestors/promobot/core/telegram/router"
	"github.com/tokenvestors/promobot/core/telegram/state"
	"github.com/tokenvestors/promobot/payments/coinbase"
	"github.com/tokenvestors/promobot/promo/service"
	promostore "github.com/tokenvestors/promobot/promo/store"
	"github.com/tokenvestors/promobot/webserver"
)

// App carries the assembled bot.
type App struct {
	cfg      *appconfig.Config
	db       *sqlx.DB
	sessions state.Manager
	svc      *service.Service
	poster   *ChannelPoster
	web      *webserver.Server
}

// Bootstrap initializes infrastructure (logger, database, migrations) and
// assembles the application.
func Bootstrap(carrier cmd.ConfigCarrier) (cmd.TelegramApp, error) {
	cfg, ok := carrier.(*appconfig.Config)
	if !ok {
		return nil, fmt.Errorf("botapp: unexpected config type %T", carrier)
	}

	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	poster := NewChannelPoster(cfg.Posting.Channel, cfg.Posting.AltGroupID)
	issuer := coinbase.NewClient(cfg.Payments.APIKey, cfg.Payments.PublicBaseURL)
	store := promostore.New(res.DB)
	prices := service.NewPriceBoard(cfg.Pricing.DefaultUSD)
	svc := service.New(store, issuer, prices, poster)

	return &App{
		cfg:      cfg,
		db:       res.DB,
		sessions: state.NewMemoryManager(),
		svc:      svc,
		poster:   poster,
		web:      webserver.New(cfg.Payments.WebhookSecret, svc),
	}, nil
}

// TelegramRunOptions builds the bot runtime configuration: registry,
// middleware chain, and routes.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	a.registerCommands(reg)
	a.registerCallbacks(reg)
	a.registerFlowHandlers()

	coreCfg := a.cfg.CoreConfig()

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminIDs: coreCfg.Telegram.AdminIDs,
		OnAdminReject: func(c tele.Context) error {
			return tghelpers.SendText(c, "This command is for admins only.")
		},
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(a.sessions, reg, router.TextOptions{
		UnknownText: func(c tele.Context) error {
			return tghelpers.SendText(c, "Use /submit to promote your token, or /help for details.")
		},
	})...)

	return coretelegram.RunOptions{
		Config:      coreCfg,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(coreCfg, nil),
		Routes:      routes,
		OnStart: func(_ context.Context, rt coretelegram.Runtime) error {
			a.poster.Bind(rt.Bot)
			return nil
		},
	}, nil
}

// HTTPServer exposes the payment webhook sidecar to the shared runner.
func (a *App) HTTPServer() (cmd.HTTPServer, string) {
	return a.web, a.cfg.Payments.Listen
}
