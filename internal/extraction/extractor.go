// Package extraction pulls structured fields out of classified chat messages.
package extraction

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/Veraticus/dealflow/internal/common"
	"github.com/Veraticus/dealflow/internal/lexicon"
	"github.com/Veraticus/dealflow/internal/model"
	"github.com/Veraticus/dealflow/internal/normalize"
)

// Price bounds of the two-digit quote convention.
const (
	minPrice = 0
	maxPrice = 99
)

const (
	namePart      = `(\p{L}[\p{L}\p{N}]*)`
	honorificPart = `(?:(?:a|anh|em|chi|chị|c)\s+)?`
	boundary      = `(?:^|[^\p{L}\p{N}])`
)

var forPriceRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*for(?:$|[^\p{L}\p{N}])`)

// Keywords lists the confirmation words the extractor keys on. A confirmation
// word that is neither rejecting nor acknowledging confirms the deal.
type Keywords struct {
	Confirm     []string
	Reject      []string
	Acknowledge []string
}

// DefaultKeywords returns the keywords of the universal rule set.
func DefaultKeywords() Keywords {
	return Keywords{
		Confirm:     []string{"done", "ok", "oke", "oki", "not suit", "tks", "thanks"},
		Reject:      []string{"not suit"},
		Acknowledge: []string{"tks", "thanks"},
	}
}

// statusWords maps each confirmation word to the status it implies, in
// confirm-list order followed by any reject or acknowledge words not listed there.
func (k Keywords) statusWords() ([]string, map[string]model.ConfirmStatus) {
	status := make(map[string]model.ConfirmStatus)
	for _, w := range k.Reject {
		status[lexicon.Prepare(strings.TrimSpace(w))] = model.StatusRejected
	}
	for _, w := range k.Acknowledge {
		status[lexicon.Prepare(strings.TrimSpace(w))] = model.StatusAcknowledged
	}

	var words []string
	seen := make(map[string]bool)
	for _, list := range [][]string{k.Confirm, k.Reject, k.Acknowledge} {
		for _, w := range list {
			w = lexicon.Prepare(strings.TrimSpace(w))
			if w == "" || seen[w] {
				continue
			}
			seen[w] = true
			words = append(words, w)
			if _, ok := status[w]; !ok {
				status[w] = model.StatusConfirmed
			}
		}
	}
	return words, status
}

// Extractor turns a classified message into entities. It is safe for
// concurrent use once constructed.
type Extractor struct {
	roster       *normalize.Roster
	bidWords     *lexicon.KeywordSet
	offerWords   *lexicon.KeywordSet
	actionWords  *lexicon.KeywordSet
	volumes      []lexicon.VolumePattern
	targets      []*regexp.Regexp
	counterparty []*regexp.Regexp
	statusSets   []*lexicon.KeywordSet
	statuses     []model.ConfirmStatus
}

// New creates an extractor with the default keywords that validates trader
// names against roster.
func New(roster *normalize.Roster) *Extractor {
	e, err := NewWithKeywords(roster, DefaultKeywords())
	if err != nil {
		panic(err)
	}
	return e
}

// NewWithKeywords creates an extractor whose confirmation status and
// counterparty patterns follow kw.
func NewWithKeywords(roster *normalize.Roster, kw Keywords) (*Extractor, error) {
	e := &Extractor{
		roster:      roster,
		bidWords:    lexicon.MustKeywordSet("bid", "mua"),
		offerWords:  lexicon.MustKeywordSet("ask", "offer", "off", "bán", "có", "còn"),
		actionWords: lexicon.MustKeywordSet("buy", "sell", "khớp"),
		volumes:     lexicon.DefaultVolumePatterns(),
		targets: []*regexp.Regexp{
			regexp.MustCompile(boundary + `buy\s+` + honorificPart + namePart),
			regexp.MustCompile(boundary + `sell\s+` + honorificPart + namePart),
			regexp.MustCompile(boundary + `khớp\s+(?:với\s+)?` + honorificPart + namePart),
			regexp.MustCompile(boundary + `done\s+` + honorificPart + namePart),
			regexp.MustCompile(`\p{L}+\s+` + honorificPart + namePart),
		},
	}

	words, status := kw.statusWords()
	byStatus := make(map[model.ConfirmStatus][]string)
	for _, w := range words {
		parts := strings.Fields(w)
		for i := range parts {
			parts[i] = regexp.QuoteMeta(parts[i])
		}
		re, err := regexp.Compile(boundary + strings.Join(parts, `\s+`) + `\s+` + honorificPart + namePart)
		if err != nil {
			return nil, fmt.Errorf("failed to compile counterparty pattern for %q: %w", w, err)
		}
		e.counterparty = append(e.counterparty, re)
		byStatus[status[w]] = append(byStatus[status[w]], w)
	}

	for _, st := range []model.ConfirmStatus{model.StatusConfirmed, model.StatusRejected, model.StatusAcknowledged} {
		if len(byStatus[st]) == 0 {
			continue
		}
		set, err := lexicon.NewKeywordSet(byStatus[st]...)
		if err != nil {
			return nil, err
		}
		e.statusSets = append(e.statusSets, set)
		e.statuses = append(e.statuses, st)
	}
	return e, nil
}

// Extract returns the entities of msg according to its classification.
// NOISE messages yield empty entities.
func (e *Extractor) Extract(msg model.Message, cls model.Classification) model.Entities {
	text := lexicon.Prepare(msg.Text)

	switch cls.Intent {
	case model.IntentStart:
		return e.start(msg, text)
	case model.IntentReply:
		return model.Entities{Reply: e.reply(text)}
	case model.IntentConfirm:
		return model.Entities{Confirm: e.confirm(text)}
	}
	return model.Entities{}
}

// ExtractAll produces the entities column for a classified table.
func (e *Extractor) ExtractAll(ctx context.Context, msgs []model.Message, classes []model.Classification) ([]model.Entities, error) {
	out := make([]model.Entities, len(msgs))
	for i := range msgs {
		if i%512 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		out[i] = e.Extract(msgs[i], classes[i])
	}
	return out, nil
}

func (e *Extractor) volume(text string) (*float64, lexicon.Volume, bool) {
	vol, ok := lexicon.FindVolume(text, e.volumes)
	if !ok {
		return nil, vol, false
	}
	v := vol.Value
	return &v, vol, true
}

func (e *Extractor) start(msg model.Message, text string) model.Entities {
	numbers := lexicon.Numbers(text)
	volume, vol, hasVolume := e.volume(text)

	start := &model.StartEntities{
		Volume:  volume,
		Side:    e.side(text),
		Numbers: make([]float64, 0, len(numbers)),
	}
	for _, n := range numbers {
		start.Numbers = append(start.Numbers, n.Value)
	}

	remaining := make([]lexicon.Number, 0, len(numbers))
	for _, n := range numbers {
		if hasVolume && n.Start == vol.Token.Start {
			continue
		}
		remaining = append(remaining, n)
	}

	var problems []string
	price, raw := e.price(text, remaining, vol, hasVolume)

	if !hasVolume && len(remaining) == 2 &&
		inPriceRange(remaining[0].Value) && inPriceRange(remaining[1].Value) {
		values := []int{toPrice(remaining[0].Value), toPrice(remaining[1].Value)}
		sort.Ints(values)
		bid, ask := values[0], values[1]
		start.Bid, start.Ask = &bid, &ask

		switch start.Side {
		case model.SideOffer:
			price = &ask
		default:
			price = &bid
		}
		if start.Side == model.SideUnknown {
			problems = append(problems, model.ProblemUnclearSideSpread)
		}
	}

	start.Price = price
	if price == nil {
		switch {
		case raw != nil:
			start.RawPrice = raw
			problems = append(problems, model.ProblemPriceOutOfRange)
			common.LogDebug("Price candidate out of range", common.Fields{
				"trader":    msg.TraderName,
				"clock":     msg.Clock(),
				"raw_price": *raw,
			})
		case hasVolume && len(remaining) > 0:
			problems = append(problems, model.ProblemNoValidPriceVolume)
		}
		problems = append(problems, model.ProblemNoPrice)
	}

	return model.Entities{Start: start, Problems: problems}
}

// price applies the price priority: the number before "for", then the first
// remaining number distinct from the volume, then any remaining number. The
// first out-of-range candidate is returned as raw when nothing qualifies.
func (e *Extractor) price(text string, remaining []lexicon.Number, vol lexicon.Volume, hasVolume bool) (*int, *float64) {
	var raw *float64
	keepRaw := func(v float64) {
		if raw == nil {
			raw = &v
		}
	}

	if m := forPriceRe.FindStringSubmatchIndex(text); m != nil {
		for _, n := range remaining {
			if n.Start != m[2] {
				continue
			}
			if inPriceRange(n.Value) {
				p := toPrice(n.Value)
				return &p, nil
			}
			keepRaw(n.Value)
		}
	}

	for _, n := range remaining {
		if hasVolume && (n.Value == vol.Value || n.Value == vol.Token.Value) {
			continue
		}
		if inPriceRange(n.Value) {
			p := toPrice(n.Value)
			return &p, nil
		}
		keepRaw(n.Value)
	}

	for _, n := range remaining {
		if inPriceRange(n.Value) {
			p := toPrice(n.Value)
			return &p, nil
		}
	}

	return nil, raw
}

func (e *Extractor) side(text string) model.Side {
	switch {
	case e.bidWords.Contains(text):
		return model.SideBid
	case e.offerWords.Contains(text):
		return model.SideOffer
	}
	return model.SideUnknown
}

func (e *Extractor) reply(text string) *model.ReplyEntities {
	reply := &model.ReplyEntities{Action: model.ActionUnknown}
	reply.Volume, _, _ = e.volume(text)

	if word, ok := e.actionWords.First(text); ok {
		switch word {
		case "buy":
			reply.Action = model.ActionBuy
		case "sell":
			reply.Action = model.ActionSell
		default:
			reply.Action = model.ActionMatch
		}
	}

	for _, re := range e.targets {
		if name, ok := e.firstRosterName(re, text); ok {
			reply.TargetTrader = name
			return reply
		}
	}
	if name, ok := e.roster.Find(text); ok {
		reply.TargetTrader = name
	}
	return reply
}

func (e *Extractor) confirm(text string) *model.ConfirmEntities {
	confirm := &model.ConfirmEntities{Status: model.StatusUnknown}
	confirm.Volume, _, _ = e.volume(text)

	for i, set := range e.statusSets {
		if set.Contains(text) {
			confirm.Status = e.statuses[i]
			break
		}
	}

	for _, re := range e.counterparty {
		if name, ok := e.firstRosterName(re, text); ok {
			confirm.Counterparty = name
			break
		}
	}
	return confirm
}

// firstRosterName returns the first capture of re that resolves to a roster name.
func (e *Extractor) firstRosterName(re *regexp.Regexp, text string) (string, bool) {
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if name, ok := e.roster.Lookup(m[1]); ok {
			return name, true
		}
	}
	return "", false
}

func inPriceRange(v float64) bool {
	return v >= minPrice && v <= maxPrice
}

func toPrice(v float64) int {
	return int(math.Floor(v))
}
