package screen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/villagegaming/storebot/internal/catalog"
)

const webApp = "https://villagebot1.vercel.app"

func ptr[T any](v T) *T { return &v }

func TestMainMenuRows(t *testing.T) {
	b := Builder{WebAppURL: webApp}

	user := b.MainMenu("Alice", false)
	require.Len(t, user.Rows, 3)
	assert.Equal(t, TokenCatalog, user.Rows[0][0].Token)
	assert.Equal(t, TokenHelp, user.Rows[1][0].Token)
	require.True(t, user.Rows[2][0].IsLink())
	assert.Equal(t, webApp, user.Rows[2][0].Link.Href())
	assert.Contains(t, user.Text, "Alice")
	assert.False(t, user.Terminal)

	admin := b.MainMenu("Alice", true)
	require.Len(t, admin.Rows, 4)
	require.True(t, admin.Rows[1][0].IsLink())
	assert.Equal(t, webApp+"/?admin=true", admin.Rows[1][0].Link.Href())
	assert.Equal(t, TokenHelp, admin.Rows[2][0].Token)
}

func TestMainMenuWithoutWebApp(t *testing.T) {
	s := Builder{}.MainMenu("", true)
	assert.Equal(t, []string{TokenCatalog, TokenAdminPanel, TokenHelp}, s.Tokens())
	for _, row := range s.Rows {
		assert.False(t, row[0].IsLink())
	}
	assert.Contains(t, s.Text, "друг")

	guest := Builder{}.MainMenu("", false)
	assert.Equal(t, []string{TokenCatalog, TokenHelp}, guest.Tokens())
}

func TestItemLabelTrimsCutTitle(t *testing.T) {
	it := catalog.Item{ID: 1, Title: "Grand Theft Auto: San Andreas Definitive Edition", Price: 999}
	assert.Equal(t, "Grand Theft Auto: San Andreas — 999 ₽", ItemLabel(it))
	assert.Equal(t, "Hades — 499 ₽", ItemLabel(catalog.Item{Title: "  Hades  ", Price: 499}))
}

func TestMainMenuEscapesName(t *testing.T) {
	s := Builder{}.MainMenu("<script>", false)
	assert.Contains(t, s.Text, "&lt;script&gt;")
	assert.NotContains(t, s.Text, "<script>")
}

func TestWithUserID(t *testing.T) {
	s := WithUserID(Builder{}.MainMenu("Bob", false), 6153426860)
	assert.Contains(t, s.Text, "6153426860")
}

func TestCatalogList(t *testing.T) {
	items := []catalog.Item{
		{ID: 9, Title: "The Legend of Zelda: Tears of the Kingdom", Price: 4999},
		{ID: 3, Title: "Hades", Price: 499.5},
	}
	s := Builder{}.CatalogList(items)
	assert.Equal(t, KindCatalogList, s.Kind)
	require.Len(t, s.Rows, 3)
	assert.Equal(t, "The Legend of Zelda: Tears of — 4999 ₽", s.Rows[0][0].Label)
	assert.Equal(t, "game_9", s.Rows[0][0].Token)
	assert.Equal(t, "Hades — 499.50 ₽", s.Rows[1][0].Label)
	assert.Equal(t, "game_3", s.Rows[1][0].Token)
	assert.Equal(t, TokenBackToMenu, s.Rows[2][0].Token)
}

func TestCatalogListEmpty(t *testing.T) {
	empty := Builder{}.CatalogList(nil)
	assert.Equal(t, KindCatalogUnavailable, empty.Kind)
	assert.True(t, empty.Terminal)
	assert.Equal(t, []string{TokenBackToMenu}, empty.Tokens())
	assert.Equal(t, empty, Builder{}.CatalogList([]catalog.Item{}))
}

func TestItemDetailDiscount(t *testing.T) {
	it := catalog.Item{ID: 42, Title: "Elden Ring", Price: 2999, OriginalPrice: ptr(3999.0),
		Description: ptr("Open <world>"), Platforms: catalog.StringList{"PC", "PS5"}, Categories: catalog.StringList{"RPG"}}
	s := Builder{}.ItemDetail(it)
	assert.Equal(t, KindItemDetail, s.Kind)
	assert.Contains(t, s.Text, "<b>2999 ₽</b> <s>3999 ₽</s> (-25%)")
	assert.Contains(t, s.Text, "Open &lt;world&gt;")
	assert.Contains(t, s.Text, "PC, PS5")
	assert.Contains(t, s.Text, "RPG")
	assert.Equal(t, []string{"order_42", TokenCatalog, TokenBackToMenu}, s.Tokens())
}

func TestItemDetailWithoutDiscount(t *testing.T) {
	for _, orig := range []*float64{nil, ptr(100.0), ptr(50.0)} {
		s := Builder{}.ItemDetail(catalog.Item{ID: 1, Title: "X", Price: 100, OriginalPrice: orig})
		assert.NotContains(t, s.Text, "<s>")
		assert.NotContains(t, s.Text, "%)")
	}
}

func TestItemDetailPlaceholders(t *testing.T) {
	s := Builder{}.ItemDetail(catalog.Item{ID: 1, Title: "X", Price: 1})
	assert.Contains(t, s.Text, "Описание отсутствует")
	assert.Equal(t, 2, strings.Count(s.Text, "не указаны"))
}

func TestOrderConfirmation(t *testing.T) {
	s := Builder{Support: "@village"}.OrderConfirmation(catalog.Item{ID: 42, Title: "Celeste & Co", Price: 100})
	assert.Equal(t, KindOrderConfirmation, s.Kind)
	assert.Contains(t, s.Text, "100")
	assert.Contains(t, s.Text, "Celeste &amp; Co")
	assert.Contains(t, s.Text, "@village")
	assert.True(t, s.HasToken(TokenBackToMenu))
}

func TestHelp(t *testing.T) {
	user := Builder{}.Help(false)
	admin := Builder{}.Help(true)
	assert.NotContains(t, user.Text, "/addadmin")
	assert.Contains(t, admin.Text, "/addadmin")
	assert.Contains(t, user.Text, defaultSupport)
	assert.Equal(t, []string{TokenBackToMenu}, user.Tokens())
}

func TestNotFoundDiffersFromUnavailable(t *testing.T) {
	nf := Builder{}.NotFound()
	assert.Equal(t, KindNotFound, nf.Kind)
	assert.True(t, nf.Terminal)
	assert.Equal(t, []string{TokenCatalog, TokenBackToMenu}, nf.Tokens())
	assert.NotEqual(t, Builder{}.CatalogList(nil).Text, nf.Text)
}

func TestAdminScreens(t *testing.T) {
	b := Builder{WebAppURL: webApp + "/"}
	panel := b.AdminPanel("Root", 1)
	require.True(t, panel.Rows[0][0].IsLink())
	assert.Equal(t, webApp+"/?admin=true", panel.Rows[0][0].Link.Href())
	assert.True(t, panel.HasToken(TokenBackToMenu))

	noLink := Builder{}.AdminPanel("Root", 1)
	assert.Equal(t, []string{TokenBackToMenu}, noLink.Tokens())

	assert.Contains(t, b.AccessDenied(777).Text, "777")
	assert.Contains(t, b.AdminGranted(555).Text, "555")
	assert.Contains(t, b.AlreadyAdmin(555).Text, "555")
	assert.Contains(t, b.AddAdminMalformed("<x>").Text, "&lt;x&gt;")
	assert.Contains(t, b.AddAdminUsage().Text, "/addadmin")

	list := b.AdminList([]int64{1, 2})
	assert.Contains(t, list.Text, "<code>1</code>")
	assert.Contains(t, list.Text, "<code>2</code>")
}

func TestIdentity(t *testing.T) {
	assert.Contains(t, Builder{}.Identity(10, "Ann", true).Text, "Администратор")
	assert.Contains(t, Builder{}.Identity(10, "Ann", false).Text, "Пользователь")
}

func TestErrorScreens(t *testing.T) {
	s := Builder{}.Error("abc-123")
	assert.Equal(t, KindError, s.Kind)
	assert.Contains(t, s.Text, "/start")
	assert.Contains(t, s.Text, "abc-123")
	assert.NotContains(t, Builder{}.Error("").Text, "Код")
	assert.Equal(t, KindError, Builder{}.ErrorMalformed().Kind)
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "3499 ₽", FormatPrice(3499))
	assert.Equal(t, "0 ₽", FormatPrice(0))
	assert.Equal(t, "499.50 ₽", FormatPrice(499.5))
	assert.Equal(t, "10.99 ₽", FormatPrice(10.99))
}

func TestLinkHref(t *testing.T) {
	assert.Equal(t, "https://x.app/?admin=true", Link{URL: "https://x.app", Admin: true}.Href())
	assert.Equal(t, "https://x.app/?v=1&admin=true", Link{URL: "https://x.app/?v=1", Admin: true}.Href())
	assert.Equal(t, "https://x.app", Link{URL: "https://x.app"}.Href())
}
