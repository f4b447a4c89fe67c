package extract_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinchodeluca/scann-url/internal/extract"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func raws(cands []extract.Candidate) []string {
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.Raw)
	}
	return out
}

func TestSelectorStrategy_SelectorOrderAndSplitPrice(t *testing.T) {
	t.Parallel()

	html := `<html><body>
		<div class="a-price"><span class="a-price-whole">1.299<span class="a-price-decimal">,</span></span><span class="a-price-fraction">00</span></div>
		<div id="priceblock_ourprice"> 1.349,00 € </div>
		<div id="corePrice_feature_div"><span class="a-offscreen">1.199,00 €</span></div>
		<div id="empty_price"><span class="a-offscreen">   </span></div>
	</body></html>`

	s := extract.NewSelectorStrategy(extract.SourcePrimary, extract.DefaultPrimarySelectors, true)
	cands := s.Candidates(mustDoc(t, html), html)

	assert.Equal(t, []string{"1.199,00 €", "1.349,00 €", "1.299,00"}, raws(cands))
	for _, c := range cands {
		assert.Equal(t, extract.SourcePrimary, c.Source)
	}
}

func TestStructuredDataStrategy(t *testing.T) {
	t.Parallel()

	html := `<html><head>
		<script type="application/ld+json">{not json}</script>
		<script type="application/ld+json">
		{"@type":"Product","name":"Drive","offers":{"value":"2","price":"129.99","priceCurrency":"EUR"}}
		</script>
		<script type="application/ld+json">[{"offers":[{"PriceAmount":74.5}]}, {"sku": 7}]</script>
	</head><body></body></html>`

	cands := extract.NewStructuredDataStrategy().Candidates(mustDoc(t, html), html)
	assert.Equal(t, []string{"129.99", "74.5", "2"}, raws(cands))
}

func TestStructuredDataStrategy_PriceKeysBeforeValueKeys(t *testing.T) {
	t.Parallel()

	html := `<script type="application/ld+json">
	{"@type":"Product","offers":{"price":"249.90"},"additionalProperty":[{"name":"Hz","value":"144"}]}
	</script>`

	cands := extract.NewStructuredDataStrategy().Candidates(mustDoc(t, html), html)
	assert.Equal(t, []string{"249.90", "144"}, raws(cands))
}

func TestStructuredDataStrategy_DocumentOrder(t *testing.T) {
	t.Parallel()

	html := `<script type="application/ld+json">
	{"offers":[{"price":"31.00"},{"price":"29.50"}],"aggregate":{"priceAmount":"28.00"}}
	</script>`

	cands := extract.NewStructuredDataStrategy().Candidates(mustDoc(t, html), html)
	assert.Equal(t, []string{"31.00", "29.50", "28.00"}, raws(cands))
}

func TestStructuredDataStrategy_DepthBound(t *testing.T) {
	t.Parallel()

	nested := func(levels int) string {
		return strings.Repeat(`{"a":`, levels) + `{"price":"19.99"}` + strings.Repeat(`}`, levels)
	}

	shallow := `<script type="application/ld+json">` + nested(5) + `</script>`
	deep := `<script type="application/ld+json">` + nested(40) + `</script>`

	s := extract.NewStructuredDataStrategy()
	assert.Equal(t, []string{"19.99"}, raws(s.Candidates(mustDoc(t, shallow), shallow)))
	assert.Empty(t, s.Candidates(mustDoc(t, deep), deep))
}

func TestMetaStrategy(t *testing.T) {
	t.Parallel()

	html := `<html><head>
		<meta property="og:price:amount" content="23.50">
		<meta name="twitter:data1" content="23,50 €">
	</head><body><span itemprop="price" content="24.00">24 €</span></body></html>`

	cands := extract.NewMetaStrategy(extract.DefaultMetaSelectors).Candidates(mustDoc(t, html), html)
	assert.Equal(t, []string{"23.50", "23,50 €", "24.00"}, raws(cands))
}

func TestTextStrategy_FirstMatchingPatternAscending(t *testing.T) {
	t.Parallel()

	raw := `<p>Antes 199,99 € ahora 149,99 €</p><p>Envío EUR 4.99</p>`

	cands := extract.NewTextStrategy(extract.DefaultPatterns).Candidates(nil, raw)
	assert.Equal(t, []string{"149,99", "199,99"}, raws(cands))
}

func TestTextStrategy_FallsThroughPatterns(t *testing.T) {
	t.Parallel()

	raw := `<p>Total: € 12.50</p>`
	cands := extract.NewTextStrategy(extract.DefaultPatterns).Candidates(nil, raw)
	assert.Equal(t, []string{"12.50"}, raws(cands))

	assert.Empty(t, extract.NewTextStrategy(extract.DefaultPatterns).Candidates(nil, "no prices here"))
	assert.Empty(t, extract.NewTextStrategy([]string{"("}).Candidates(nil, "12,00 €"))
}

func TestTextStrategy_NumberBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "ungrouped thousands", raw: `<p>Precio: 1299,99 €</p>`, want: []string{"1299,99"}},
		{name: "five digit amount", raw: `<p>12345,00 €</p>`, want: []string{"12345,00"}},
		{name: "dot grouped thousands", raw: `<p>1.299,99 €</p>`, want: []string{"1.299,99"}},
		{name: "nbsp grouped thousands", raw: "<p>1\u00a0299,99\u00a0€</p>", want: []string{"1\u00a0299,99"}},
		{name: "nbsp entity grouped thousands", raw: `<p>1&nbsp;299,99&nbsp;&euro;</p>`, want: []string{"1&nbsp;299,99"}},
		{name: "count before price", raw: `<p>Pack de 2 129,99 €</p>`, want: []string{"129,99"}},
		{name: "year before price", raw: `<p>Modelo 2024 129,99 €</p>`, want: []string{"129,99"}},
		{name: "prefixed ungrouped amount", raw: `<p>EUR 12345</p>`, want: []string{"12345"}},
		{name: "bare amount after count", raw: `<p>Pack de 2 129€</p>`, want: []string{"129"}},
	}

	s := extract.NewTextStrategy(extract.DefaultPatterns)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, raws(s.Candidates(nil, tt.raw)))
		})
	}
}

type countingStrategy struct {
	name  extract.Source
	raws  []string
	calls int
}

func (s *countingStrategy) Name() extract.Source { return s.name }

func (s *countingStrategy) Candidates(*goquery.Document, string) []extract.Candidate {
	s.calls++
	out := make([]extract.Candidate, 0, len(s.raws))
	for _, r := range s.raws {
		out = append(out, extract.Candidate{Raw: r, Source: s.name})
	}
	return out
}

type panickingStrategy struct{}

func (panickingStrategy) Name() extract.Source { return "broken" }

func (panickingStrategy) Candidates(*goquery.Document, string) []extract.Candidate {
	panic("boom")
}

func TestLocator_IsLazy(t *testing.T) {
	t.Parallel()

	first := &countingStrategy{name: "first", raws: []string{"1", "2"}}
	second := &countingStrategy{name: "second", raws: []string{"3"}}
	loc := extract.NewLocator(first, second)

	for c := range loc.Locate(mustDoc(t, "<html></html>"), "") {
		assert.Equal(t, "1", c.Raw)
		break
	}
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls)

	var all []extract.Candidate
	for c := range loc.Locate(mustDoc(t, "<html></html>"), "") {
		all = append(all, c)
	}
	assert.Equal(t, []string{"1", "2", "3"}, raws(all))
}

func TestLocator_RecoversFromPanickingStrategy(t *testing.T) {
	t.Parallel()

	after := &countingStrategy{name: "after", raws: []string{"9"}}
	loc := extract.NewLocator(panickingStrategy{}, after)

	var all []extract.Candidate
	for c := range loc.Locate(mustDoc(t, "<html></html>"), "") {
		all = append(all, c)
	}
	assert.Equal(t, []string{"9"}, raws(all))
}

func TestLocator_PauseHonorsContext(t *testing.T) {
	t.Parallel()

	first := &countingStrategy{name: "first", raws: []string{"1"}}
	second := &countingStrategy{name: "second", raws: []string{"2"}}
	loc := extract.NewLocator(first, second).WithPause(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var all []extract.Candidate
	for c := range loc.LocateContext(ctx, mustDoc(t, "<html></html>"), "") {
		all = append(all, c)
		cancel()
	}
	assert.Equal(t, []string{"1"}, raws(all))
	assert.Equal(t, 0, second.calls)
}

func TestDefaultLocator_StrategyOrder(t *testing.T) {
	t.Parallel()

	var names []extract.Source
	for _, s := range extract.DefaultLocator(extract.Config{}).Strategies() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []extract.Source{
		extract.SourcePrimary,
		extract.SourceSecondary,
		extract.SourceStructuredData,
		extract.SourceMeta,
		extract.SourceText,
	}, names)
}
