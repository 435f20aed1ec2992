package billing

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// productKeys are scanned in order for a product name.
var productKeys = []string{
	"product", "name", "item", "service", "plan", "title", "description",
}

// priceKeys are scanned in order for a parseable amount. A field whose key
// merely contains "price" (e.g. "unit_price_usd") is the final fallback.
var priceKeys = []string{
	"price", "amount", "cost", "rate", "unit_price", "fee", "value",
}

var descriptionKeys = []string{"details", "description", "notes", "comment"}

// Options controls how a batch of raw records is normalized.
type Options struct {
	// Source prefixes generated item IDs, e.g. "csv" yields csv-0, csv-1.
	Source string
	// Confidence is the extraction confidence (0-100) recorded in each
	// item's metadata.
	Confidence float64
	// FallbackLabel names products that no field could name; index+1 is
	// appended. Defaults to "Product".
	FallbackLabel string
}

// Normalizer maps raw extractor records onto canonical billing items.
type Normalizer struct {
	logger *zap.Logger
}

// NewNormalizer returns a Normalizer. A nil logger disables logging.
func NewNormalizer(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger}
}

// NormalizeAll converts records to items in order. Indexes are positional,
// so IDs stay stable across runs over the same input.
func (n *Normalizer) NormalizeAll(records []RawRecord, opts Options) []Item {
	items := make([]Item, 0, len(records))
	for i, rec := range records {
		items = append(items, n.Normalize(rec, i, opts))
	}
	return items
}

// Normalize converts one raw record into a billing item. Every field is
// best-effort: a record with no recognizable product gets a positional
// fallback name, a record with no parseable price gets a zero amount, and
// unit_amount is always recomputed from the price rather than trusted from
// the input.
func (n *Normalizer) Normalize(rec RawRecord, index int, opts Options) Item {
	source := opts.Source
	if source == "" {
		source = "item"
	}
	id := fmt.Sprintf("%s-%d", source, index)

	product, productKey := n.pickProduct(rec, index, opts)
	price, priced := n.pickPrice(rec)
	if !priced {
		price = NewMoney(0, DefaultCurrency)
		n.logger.Debug("no parseable price in record",
			zap.String("id", id),
			zap.Int("line", rec.LineNumber))
	}

	text := combinedText(rec)
	typ, keyword := InferType(text)

	var item Item
	switch typ {
	case TypeMetered:
		item = NewMeteredItem(id, product, price)
	case TypeRecurring:
		item = NewRecurringItem(id, product, price, InferInterval(text))
	default:
		item = NewOneTimeItem(id, product, price)
	}

	item.Description = pickDescription(rec, productKey)
	item.Source = source
	item.LineNumber = rec.LineNumber
	item.OriginalLine = rec.OriginalLine
	item.Metadata[MetaExtractionConfidence] = opts.Confidence
	if keyword != "" {
		item.Metadata[MetaMatchedKeyword] = keyword
	}
	return item
}

func (n *Normalizer) pickProduct(rec RawRecord, index int, opts Options) (name, key string) {
	for _, k := range productKeys {
		if v, ok := rec.Get(k); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), k
		}
	}
	label := opts.FallbackLabel
	if label == "" {
		label = "Product"
	}
	n.logger.Debug("record has no product field, using positional name",
		zap.Int("index", index))
	return fmt.Sprintf("%s %d", label, index+1), ""
}

func (n *Normalizer) pickPrice(rec RawRecord) (Money, bool) {
	for _, k := range priceKeys {
		if v, ok := rec.Get(k); ok {
			if m, parsed := ParsePrice(v); parsed {
				return m, true
			}
		}
	}
	for _, f := range rec.Fields {
		if !strings.Contains(strings.ToLower(f.Key), "price") {
			continue
		}
		if m, parsed := ParsePrice(f.Value); parsed {
			return m, true
		}
	}
	return Money{}, false
}

func pickDescription(rec RawRecord, productKey string) string {
	for _, k := range descriptionKeys {
		if k == productKey {
			continue
		}
		if v, ok := rec.Get(k); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// combinedText joins every key and value in the record so type inference
// sees column names ("per_request_fee") as well as cell contents.
func combinedText(rec RawRecord) string {
	var b strings.Builder
	for _, f := range rec.Fields {
		b.WriteString(f.Key)
		b.WriteByte(' ')
		b.WriteString(f.Value)
		b.WriteByte(' ')
	}
	b.WriteString(rec.OriginalLine)
	return b.String()
}
