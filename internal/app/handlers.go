package app

import (
	tele "gopkg.in/telebot.v4"

	coretelegram "github.com/villagegaming/storebot/core/telegram"
	"github.com/villagegaming/storebot/core/telegram/callbacks"
	"github.com/villagegaming/storebot/core/telegram/commands"
	tghelpers "github.com/villagegaming/storebot/core/telegram/helpers"
	tgrouter "github.com/villagegaming/storebot/core/telegram/router"
	"github.com/villagegaming/storebot/internal/router"
)

type commandSpec struct {
	name        string
	description string
	adminOnly   bool
	hidden      bool
}

var commandSpecs = []commandSpec{
	{name: "start", description: "Главное меню"},
	{name: "catalog", description: "Каталог игр"},
	{name: "help", description: "Помощь"},
	{name: "id", description: "Мой Telegram ID"},
	{name: "admin", description: "Админ-панель"},
	{name: "addadmin", description: "Добавить админа", hidden: true},
	{name: "admins", description: "Список админов", adminOnly: true, hidden: true},
}

var callbackKeys = []router.TokenKind{
	router.TokenCatalog,
	router.TokenHelp,
	router.TokenBackToMenu,
	router.TokenAdminPanel,
	router.TokenGame,
	router.TokenOrder,
}

func (a *App) register() error {
	for _, spec := range commandSpecs {
		err := a.registry.RegisterCommand("/"+spec.name, commands.Command{
			Handler:     a.onCommand(spec.name),
			Description: spec.description,
			AdminOnly:   spec.adminOnly,
			Hidden:      spec.hidden,
		})
		if err != nil {
			return err
		}
	}
	for _, key := range callbackKeys {
		if err := a.registry.RegisterCallback(string(key), a.onCallback); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) routes(fb fallbacks) []coretelegram.Route {
	routes := tgrouter.CommandRoutes(a.registry, tgrouter.CommandRouteOptions{
		Admins: a.gate,
		// The router renders the denial screen for non-admins.
		OnAdminReject: a.onCommand("admins"),
	})
	text, cb := tgrouter.FallbackOptions(fb, router.KindKey)
	routes = append(routes, tgrouter.CallbackRoute(a.registry, cb))
	routes = append(routes, tgrouter.TextRoutes(a.registry, text)...)
	return routes
}

func (a *App) onCommand(name string) tele.HandlerFunc {
	return func(c tele.Context) error {
		return a.dispatch(c, router.Command(userOf(c), name, c.Args()...))
	}
}

func (a *App) onCallback(c tele.Context) error {
	return a.dispatch(c, router.Callback(userOf(c), callbacks.Data(c)))
}

func (a *App) dispatch(c tele.Context, ev router.Event) error {
	ctx := tghelpers.BuildContext(c)
	return render(c, a.router.Handle(ctx, ev))
}

func userOf(c tele.Context) router.User {
	u := c.Sender()
	if u == nil {
		return router.User{}
	}
	return router.User{ID: u.ID, FirstName: u.FirstName}
}
