package screen

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/villagegaming/storebot/core/telegram/format"
	"github.com/villagegaming/storebot/internal/catalog"
)

const (
	maxTitleRunes  = 30
	defaultSupport = "@support"

	labelCatalog    = "🛒 Каталог"
	labelHelp       = "❓ Помощь"
	labelBack       = "🔙 Главное меню"
	labelToCatalog  = "📋 К каталогу"
	labelOrder      = "🛍 Заказать"
	labelOpenStore  = "🎮 Открыть магазин"
	labelAdminPanel = "⚙️ Админ-панель"
	labelOpenAdmin  = "⚙️ Открыть админ-панель"
)

// Builder renders screens. The zero value works without web app links.
type Builder struct {
	// WebAppURL is the store web app. Link actions are omitted when empty.
	WebAppURL string
	// Support is the contact shown in help and order texts.
	Support string
}

func (b Builder) support() string {
	if s := strings.TrimSpace(b.Support); s != "" {
		return s
	}
	return defaultSupport
}

func (b Builder) hasWebApp() bool { return strings.TrimSpace(b.WebAppURL) != "" }

func (b Builder) backRow() []Action { return tokenRow(labelBack, TokenBackToMenu) }

// MainMenu greets the user. Admins get the admin panel as the second row: a
// web app link when one is configured, the AdminPanel screen otherwise.
func (b Builder) MainMenu(name string, isAdmin bool) Screen {
	var sb strings.Builder
	fmt.Fprintf(&sb, "👋 Привет, %s!\n\n", format.EscapeHTML(displayName(name)))
	sb.WriteString("🎮 Добро пожаловать в <b>Village Gaming Store</b>!\n\n")
	sb.WriteString("Выбери, что хочешь сделать:")

	rows := [][]Action{tokenRow(labelCatalog, TokenCatalog)}
	if isAdmin {
		if b.hasWebApp() {
			rows = append(rows, linkRow(labelAdminPanel, b.WebAppURL, true))
		} else {
			rows = append(rows, tokenRow(labelAdminPanel, TokenAdminPanel))
		}
	}
	rows = append(rows, tokenRow(labelHelp, TokenHelp))
	if b.hasWebApp() {
		rows = append(rows, linkRow(labelOpenStore, b.WebAppURL, false))
	}
	return Screen{Kind: KindMainMenu, Text: sb.String(), Rows: rows}
}

// WithUserID appends the user's id to a screen, as /start debug does.
func WithUserID(s Screen, id int64) Screen {
	s.Text += fmt.Sprintf("\n\n📱 <code>Твой Telegram ID: %d</code>\n\nОтправь этот ID владельцу магазина, чтобы получить админ-доступ.", id)
	return s
}

// CatalogList renders one row per item in the given order. An empty list
// renders the catalog-unavailable screen.
func (b Builder) CatalogList(items []catalog.Item) Screen {
	if len(items) == 0 {
		return Screen{
			Kind:     KindCatalogUnavailable,
			Text:     "😔 <b>Каталог временно недоступен</b>\n\nПопробуй зайти позже.",
			Rows:     [][]Action{b.backRow()},
			Terminal: true,
		}
	}
	rows := make([][]Action, 0, len(items)+1)
	for _, it := range items {
		rows = append(rows, tokenRow(ItemLabel(it), GameToken(it.ID)))
	}
	rows = append(rows, b.backRow())
	return Screen{
		Kind: KindCatalogList,
		Text: fmt.Sprintf("🛒 <b>Каталог игр</b>\n\nВ наличии: %d. Выбери игру:", len(items)),
		Rows: rows,
	}
}

// ItemLabel is the button label for an item: truncated title and price.
// Button labels are plain text and are not escaped.
func ItemLabel(it catalog.Item) string {
	title := format.TruncateRunes(strings.TrimSpace(it.Title), maxTitleRunes)
	return strings.TrimRight(title, " ") + " — " + FormatPrice(it.Price)
}

// ItemDetail renders the full item card.
func (b Builder) ItemDetail(it catalog.Item) Screen {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🎮 <b>%s</b>\n\n", format.EscapeHTML(it.Title))
	if it.HasDescription() {
		sb.WriteString(format.EscapeHTML(strings.TrimSpace(format.Deref(it.Description))))
	} else {
		sb.WriteString("<i>Описание отсутствует</i>")
	}
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "🕹 Платформы: %s\n", listOrPlaceholder(it.Platforms))
	fmt.Fprintf(&sb, "🏷 Категории: %s\n\n", listOrPlaceholder(it.Categories))
	sb.WriteString("💰 Цена: ")
	sb.WriteString(PriceHTML(it))

	return Screen{
		Kind: KindItemDetail,
		Text: sb.String(),
		Rows: [][]Action{
			tokenRow(labelOrder, OrderToken(it.ID)),
			tokenRow(labelToCatalog, TokenCatalog),
			b.backRow(),
		},
	}
}

// PriceHTML renders the price, with the struck original and -N% when discounted.
func PriceHTML(it catalog.Item) string {
	price := format.Bold(FormatPrice(it.Price))
	pct, ok := it.Discount()
	if !ok {
		return price
	}
	return fmt.Sprintf("%s %s (-%d%%)", price, format.Strike(FormatPrice(format.Deref(it.OriginalPrice))), pct)
}

// OrderConfirmation acknowledges an order. Nothing is recorded.
func (b Builder) OrderConfirmation(it catalog.Item) Screen {
	text := fmt.Sprintf("✅ <b>Заявка принята!</b>\n\n🎮 %s\n💰 Цена: %s\n\nМенеджер свяжется с тобой в ближайшее время.\nВопросы? Пиши: %s",
		format.EscapeHTML(it.Title),
		format.Bold(FormatPrice(it.Price)),
		format.EscapeHTML(b.support()),
	)
	return Screen{
		Kind: KindOrderConfirmation,
		Text: text,
		Rows: [][]Action{
			tokenRow(labelToCatalog, TokenCatalog),
			b.backRow(),
		},
	}
}

// Help lists the commands. Admin commands are shown to admins only.
func (b Builder) Help(isAdmin bool) Screen {
	var sb strings.Builder
	sb.WriteString("❓ <b>Помощь</b>\n\n")
	sb.WriteString("<b>Команды:</b>\n")
	sb.WriteString("/start — Главное меню\n")
	sb.WriteString("/catalog — Каталог игр\n")
	sb.WriteString("/id — Твой Telegram ID\n")
	sb.WriteString("/help — Помощь\n\n")
	if isAdmin {
		sb.WriteString("<b>Команды админа:</b>\n")
		sb.WriteString("/admin — Доступ к админ-панели\n")
		sb.WriteString("/addadmin [ID] — Добавить нового админа\n")
		sb.WriteString("/admins — Список админов\n\n")
	}
	sb.WriteString("<b>Как купить игру:</b>\n")
	sb.WriteString("1. Открой каталог\n")
	sb.WriteString("2. Выбери игру и нажми \"" + labelOrder + "\"\n")
	sb.WriteString("3. Дождись связи от менеджера\n\n")
	fmt.Fprintf(&sb, "<b>Вопросы?</b>\nПиши: %s", format.EscapeHTML(b.support()))
	return Screen{Kind: KindHelp, Text: sb.String(), Rows: [][]Action{b.backRow()}}
}

// NotFound is shown when a token names an item that is not in the catalog.
func (b Builder) NotFound() Screen {
	return Screen{
		Kind:     KindNotFound,
		Text:     "🔍 <b>Игра не найдена</b>\n\nВозможно, она уже снята с продажи.",
		Rows:     [][]Action{tokenRow(labelToCatalog, TokenCatalog), b.backRow()},
		Terminal: true,
	}
}

// AdminPanel links to the web app's admin mode.
func (b Builder) AdminPanel(name string, id int64) Screen {
	text := fmt.Sprintf("👑 <b>Админ-панель</b>\n\nПривет, %s!\nТвой ID: <code>%d</code>\n\n",
		format.EscapeHTML(displayName(name)), id)
	var rows [][]Action
	if b.hasWebApp() {
		text += "Нажми кнопку ниже для входа в админ-панель:"
		rows = append(rows, linkRow(labelOpenAdmin, b.WebAppURL, true))
	} else {
		text += "Ссылка на веб-приложение не настроена."
	}
	rows = append(rows, b.backRow())
	return Screen{Kind: KindAdminPanel, Text: text, Rows: rows}
}

// AccessDenied shows the requester's id so they can ask for access.
func (b Builder) AccessDenied(id int64) Screen {
	return Screen{
		Kind:     KindAccessDenied,
		Text:     fmt.Sprintf("❌ У тебя нет доступа к админ-панели.\n\n<code>Твой Telegram ID: %d</code>\n\nОтправь этот ID владельцу, чтобы получить доступ.", id),
		Terminal: true,
	}
}

// AddAdminUsage explains /addadmin.
func (b Builder) AddAdminUsage() Screen {
	return Screen{
		Kind:     KindAddAdminUsage,
		Text:     "Использование: <code>/addadmin [Telegram ID]</code>\n\nЧтобы узнать ID, попроси пользователя написать боту /start debug или /id",
		Terminal: true,
	}
}

// AddAdminMalformed rejects a non-numeric /addadmin argument.
func (b Builder) AddAdminMalformed(arg string) Screen {
	return Screen{
		Kind:     KindAddAdminMalformed,
		Text:     fmt.Sprintf("❌ Неверный формат ID: <code>%s</code>\nИспользуй только цифры.", format.EscapeHTML(arg)),
		Terminal: true,
	}
}

// AdminGranted confirms a new admin.
func (b Builder) AdminGranted(id int64) Screen {
	return Screen{
		Kind:     KindAdminGranted,
		Text:     fmt.Sprintf("✅ Админ добавлен!\n\nID: <code>%d</code>\nТеперь этот пользователь может использовать /admin", id),
		Terminal: true,
	}
}

// AlreadyAdmin reports a duplicate grant.
func (b Builder) AlreadyAdmin(id int64) Screen {
	return Screen{
		Kind:     KindAlreadyAdmin,
		Text:     fmt.Sprintf("⚠️ Пользователь <code>%d</code> уже админ.", id),
		Terminal: true,
	}
}

// AdminList shows the current admin set.
func (b Builder) AdminList(ids []int64) Screen {
	var sb strings.Builder
	fmt.Fprintf(&sb, "👑 <b>Админы (%d)</b>\n", len(ids))
	for _, id := range ids {
		fmt.Fprintf(&sb, "\n• <code>%d</code>", id)
	}
	return Screen{Kind: KindAdminList, Text: sb.String(), Terminal: true}
}

// Identity answers /id.
func (b Builder) Identity(id int64, name string, isAdmin bool) Screen {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🆔 <b>Твой Telegram ID:</b> <code>%d</code>\n\n", id)
	fmt.Fprintf(&sb, "👤 Имя: %s\n", format.EscapeHTML(displayName(name)))
	if isAdmin {
		sb.WriteString("👑 Статус: Администратор\n\n✅ У тебя есть доступ к админ-панели!")
	} else {
		sb.WriteString("👤 Статус: Пользователь\n\n❌ У тебя нет доступа к админ-панели.\nОтправь этот ID владельцу для получения доступа.")
	}
	return Screen{Kind: KindIdentity, Text: sb.String(), Terminal: true}
}

// Error is the generic fallback. incident is shown when non-empty.
func (b Builder) Error(incident string) Screen {
	text := "❌ Произошла ошибка. Попробуй позже или напиши /start"
	if incident != "" {
		text += "\n\n<code>Код: " + format.EscapeHTML(incident) + "</code>"
	}
	return Screen{Kind: KindError, Text: text, Rows: [][]Action{b.backRow()}, Terminal: true}
}

// ErrorMalformed is shown for a button whose data cannot be decoded.
func (b Builder) ErrorMalformed() Screen {
	return Screen{
		Kind:     KindError,
		Text:     "❌ Кнопка устарела или повреждена. Открой меню заново: /start",
		Rows:     [][]Action{b.backRow()},
		Terminal: true,
	}
}

// FormatPrice renders 3499 as "3499 ₽" and 499.5 as "499.50 ₽".
func FormatPrice(p float64) string {
	if p == math.Trunc(p) && math.Abs(p) < 1e15 {
		return strconv.FormatFloat(p, 'f', 0, 64) + " ₽"
	}
	return strconv.FormatFloat(p, 'f', 2, 64) + " ₽"
}

func listOrPlaceholder(l catalog.StringList) string {
	if s := format.JoinEscaped(l, ", "); s != "" {
		return s
	}
	return "не указаны"
}

func displayName(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return "друг"
}
