package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/villagegaming/storebot/core/config"
	"github.com/villagegaming/storebot/internal/config"
	"github.com/villagegaming/storebot/internal/screen"
)

const adminID int64 = 6153426860

type sent struct {
	text   string
	markup *tele.ReplyMarkup
	edit   bool
}

// fakeContext implements the parts of tele.Context the handlers touch.
type fakeContext struct {
	tele.Context
	user  *tele.User
	cb    *tele.Callback
	text  string
	args  []string
	store map[string]any
	out   []sent
}

func newFakeContext(userID int64) *fakeContext {
	return &fakeContext{user: &tele.User{ID: userID, FirstName: "Tester"}, store: map[string]any{}}
}

func (f *fakeContext) Sender() *tele.User                      { return f.user }
func (f *fakeContext) Chat() *tele.Chat                        { return &tele.Chat{ID: f.user.ID} }
func (f *fakeContext) Callback() *tele.Callback                { return f.cb }
func (f *fakeContext) Text() string                            { return f.text }
func (f *fakeContext) Args() []string                          { return f.args }
func (f *fakeContext) Update() tele.Update                     { return tele.Update{ID: 1, Callback: f.cb} }
func (f *fakeContext) Get(key string) any                      { return f.store[key] }
func (f *fakeContext) Set(key string, v any)                   { f.store[key] = v }
func (f *fakeContext) Respond(...*tele.CallbackResponse) error { return nil }

func (f *fakeContext) Send(what any, opts ...any) error {
	f.out = append(f.out, capture(what, opts, false))
	return nil
}

func (f *fakeContext) EditOrSend(what any, opts ...any) error {
	f.out = append(f.out, capture(what, opts, true))
	return nil
}

func capture(what any, opts []any, edit bool) sent {
	s := sent{text: what.(string), edit: edit}
	for _, o := range opts {
		if so, ok := o.(*tele.SendOptions); ok {
			s.markup = so.ReplyMarkup
		}
	}
	return s
}

func newTestApp(t *testing.T, body string) *App {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		Config:  coreconfig.Config{Telegram: coreconfig.TelegramConfig{Token: "t", AdminIDs: []int64{adminID}}},
		Catalog: config.CatalogConfig{Source: config.SourceHTTP, BaseURL: srv.URL, TimeoutMS: 2000},
		WebApp:  config.WebAppConfig{URL: "https://villagebot1.vercel.app"},
	}
	a, err := New(cfg, nil)
	require.NoError(t, err)
	return a
}

func TestNewRegistersRoutes(t *testing.T) {
	a := newTestApp(t, `[]`)
	for _, name := range []string{"/start", "/catalog", "/help", "/id", "/admin", "/addadmin", "/admins"} {
		_, _, ok := a.registry.LookupCommand(name)
		assert.True(t, ok, name)
	}
	assert.Equal(t, []string{"admin_panel", "back_to_menu", "catalog", "game", "help", "order"}, a.registry.ListCallbacks())

	visible := a.registry.ListCommands(true)
	for _, cmd := range visible {
		assert.NotEqual(t, "/admins", cmd.Text)
	}

	opts, err := a.TelegramRunOptions()
	require.NoError(t, err)
	assert.NotEmpty(t, opts.Routes)
	assert.NotEmpty(t, opts.Middlewares)
}

func TestNewPostgresNeedsDB(t *testing.T) {
	_, err := New(&config.Config{Catalog: config.CatalogConfig{Source: config.SourcePostgres}}, nil)
	assert.Error(t, err)
}

func TestCommandSendsNewMessage(t *testing.T) {
	a := newTestApp(t, `[{"id":1,"title":"Hades","price":499}]`)
	c := newFakeContext(42)
	require.NoError(t, a.onCommand("catalog")(c))
	require.Len(t, c.out, 1)
	assert.False(t, c.out[0].edit)
	require.NotNil(t, c.out[0].markup)
	assert.Equal(t, "game_1", c.out[0].markup.InlineKeyboard[0][0].Data)
}

func TestCallbackEditsMessage(t *testing.T) {
	a := newTestApp(t, `[{"id":1,"title":"Hades","price":499}]`)
	c := newFakeContext(42)
	c.cb = &tele.Callback{Data: "game_1"}
	require.NoError(t, a.onCallback(c))
	require.Len(t, c.out, 1)
	assert.True(t, c.out[0].edit)
	assert.Contains(t, c.out[0].text, "Hades")
}

func TestUnknownCommandRendersError(t *testing.T) {
	a := newTestApp(t, `[]`)
	c := newFakeContext(42)
	c.text = "/buy now"
	require.NoError(t, fallbacks{app: a}.UnknownCommand()(c))
	require.Len(t, c.out, 1)
	assert.Contains(t, c.out[0].text, "/start")
}

func TestAdminRejectShowsID(t *testing.T) {
	a := newTestApp(t, `[]`)
	c := newFakeContext(777)
	require.NoError(t, a.onCommand("admins")(c))
	require.Len(t, c.out, 1)
	assert.True(t, strings.Contains(c.out[0].text, "777"))
}

func TestMarkup(t *testing.T) {
	s := screen.Builder{WebAppURL: "https://villagebot1.vercel.app"}.MainMenu("A", true)
	rm := Markup(s)
	require.NotNil(t, rm)
	require.Len(t, rm.InlineKeyboard, 4)
	assert.Equal(t, "catalog", rm.InlineKeyboard[0][0].Data)
	require.NotNil(t, rm.InlineKeyboard[1][0].WebApp)
	assert.Equal(t, "https://villagebot1.vercel.app/?admin=true", rm.InlineKeyboard[1][0].WebApp.URL)

	assert.Nil(t, Markup(screen.Builder{}.AccessDenied(1)))
}
