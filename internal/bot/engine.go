// Package bot implements the VResta restaurant assistant: a fixed,
// ordered table of keyword rules evaluated first-match-wins.
package bot

import (
	"strings"
	"unicode"
)

const (
	GreetingReply = "Привет! Я бот, который был создан для ресторана VResta. Если хотите узнать все команды, напиши <b> помощь </b> или <b> команды </b>."
	FarewellReply = "До свидания!"
	HelpReply     = "Список команд: <b> меню </b>, <b> часы работы </b>, <b> адрес </b>, <b> бронь </b>. Чтобы попрощаться, напишите <b> пока </b>."
	MenuReply     = "В меню VResta: паста, стейки, салаты и десерты. Полное меню можно посмотреть у официанта или на нашем сайте."
	HoursReply    = "Мы работаем ежедневно с 10:00 до 23:00."
	AddressReply  = "Ресторан VResta находится по адресу: ул. Центральная, 1."
	BookingReply  = "Чтобы забронировать столик, позвоните нам по телефону +7 (900) 000-00-00."
	ThanksReply   = "Пожалуйста! Обращайтесь, если будут вопросы."
	DefaultReply  = "Извините, я вас не понял. Напишите <b> помощь </b>, чтобы увидеть список команд."
)

// Rule maps a predicate over the normalized input to a reply.
type Rule struct {
	Name  string
	Match func(in Input) bool
	Reply string
}

// Input is the normalized form of a message that rules match against.
type Input struct {
	// Text is lower-cased with runs of non-letters collapsed to single spaces.
	Text  string
	words map[string]struct{}
}

func normalize(text string) Input {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	words := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		words[f] = struct{}{}
	}
	return Input{Text: strings.Join(fields, " "), words: words}
}

// HasWord reports whether w appears as a whole word.
func (in Input) HasWord(w string) bool {
	_, ok := in.words[w]
	return ok
}

// HasPhrase reports whether the space-separated phrase appears on word
// boundaries.
func (in Input) HasPhrase(phrase string) bool {
	return strings.Contains(" "+in.Text+" ", " "+phrase+" ")
}

// Keywords matches when any keyword is present. Keywords containing a space
// are matched as phrases, the rest as whole words.
func Keywords(keywords ...string) func(Input) bool {
	return func(in Input) bool {
		for _, k := range keywords {
			if strings.Contains(k, " ") {
				if in.HasPhrase(k) {
					return true
				}
			} else if in.HasWord(k) {
				return true
			}
		}
		return false
	}
}

// DefaultRules is the VResta rule table, in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "greeting", Match: Keywords("привет", "здравствуй", "здравствуйте", "добрый день", "добрый вечер", "доброе утро", "hello", "hi"), Reply: GreetingReply},
		{Name: "farewell", Match: Keywords("пока", "до свидания", "прощай", "bye", "goodbye"), Reply: FarewellReply},
		{Name: "help", Match: Keywords("помощь", "команды", "help", "commands"), Reply: HelpReply},
		{Name: "menu", Match: Keywords("меню", "menu"), Reply: MenuReply},
		{Name: "hours", Match: Keywords("часы работы", "режим работы", "когда открыты", "hours"), Reply: HoursReply},
		{Name: "address", Match: Keywords("адрес", "где находитесь", "address"), Reply: AddressReply},
		{Name: "booking", Match: Keywords("бронь", "забронировать", "бронирование", "столик", "book"), Reply: BookingReply},
		{Name: "thanks", Match: Keywords("спасибо", "благодарю", "thanks"), Reply: ThanksReply},
	}
}

// Engine answers messages. It holds no per-conversation state and is safe
// for concurrent use.
type Engine struct {
	rules    []Rule
	fallback string
}

// New builds an engine over rules with fallback as the mandatory default.
func New(rules []Rule, fallback string) *Engine {
	r := make([]Rule, len(rules))
	copy(r, rules)
	return &Engine{rules: r, fallback: fallback}
}

// NewDefault returns the VResta engine.
func NewDefault() *Engine {
	return New(DefaultRules(), DefaultReply)
}

// Respond returns the reply of the first matching rule, or the fallback.
func (e *Engine) Respond(text string) string {
	in := normalize(text)
	for _, rule := range e.rules {
		if rule.Match(in) {
			return rule.Reply
		}
	}
	return e.fallback
}
