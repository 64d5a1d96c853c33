package xbrl

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ternarybob/scrutor/internal/models"
)

// Options configure one extraction pass.
type Options struct {
	// Source names the document in errors and warnings.
	Source string
	// DomesticCurrency is the currency every monetary fact is normalized to.
	DomesticCurrency string
	// Rates converts foreign-currency facts. Nil disables conversion.
	Rates *RateTable
	// DuplicateTolerance is the relative difference above which two values
	// of the same concept and context are considered conflicting.
	DuplicateTolerance float64
}

// DefaultOptions returns INR normalization with the built-in rate table.
func DefaultOptions() Options {
	return Options{
		DomesticCurrency:   "INR",
		Rates:              DefaultRateTable(),
		DuplicateTolerance: 0.001,
	}
}

type rawMarkup struct {
	Inner string `xml:",innerxml"`
}

func (m *rawMarkup) present() bool {
	return m != nil && strings.TrimSpace(m.Inner) != ""
}

type rawContext struct {
	ID     string `xml:"id,attr"`
	Entity struct {
		Identifier string     `xml:"identifier"`
		Segment    *rawMarkup `xml:"segment"`
	} `xml:"entity"`
	Period struct {
		Instant   string    `xml:"instant"`
		StartDate string    `xml:"startDate"`
		EndDate   string    `xml:"endDate"`
		Forever   *struct{} `xml:"forever"`
	} `xml:"period"`
	Scenario *rawMarkup `xml:"scenario"`
}

type rawMeasures struct {
	Measure []string `xml:"measure"`
}

type rawUnit struct {
	ID      string   `xml:"id,attr"`
	Measure []string `xml:"measure"`
	Divide  *struct {
		Numerator   rawMeasures `xml:"unitNumerator"`
		Denominator rawMeasures `xml:"unitDenominator"`
	} `xml:"divide"`
}

type rawFact struct {
	Text string `xml:",chardata"`
}

// Extract parses an XBRL instance document. HTML input is routed to the
// inline XBRL reader. A document that cannot be read as a filing at all
// yields a *models.ParseError and no partial result.
func Extract(data []byte, opts Options) (*Document, error) {
	if looksLikeHTML(data) {
		return ExtractInline(data, opts)
	}

	doc := &Document{
		Contexts:   make(map[string]Context),
		Units:      make(map[string]Unit),
		Namespaces: make(map[string]string),
	}
	uriPrefix := make(map[string]string)

	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) { return input, nil }

	seenRoot := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &models.ParseError{Source: opts.Source, Err: err}
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		for _, attr := range start.Attr {
			switch {
			case attr.Name.Space == "xmlns":
				doc.Namespaces[attr.Name.Local] = attr.Value
				if _, exists := uriPrefix[attr.Value]; !exists {
					uriPrefix[attr.Value] = attr.Name.Local
				}
			case attr.Name.Space == "" && attr.Name.Local == "xmlns":
				doc.Namespaces[""] = attr.Value
			}
		}

		if !seenRoot {
			if start.Name.Local != "xbrl" {
				return nil, &models.ParseError{Source: opts.Source, Err: fmt.Errorf("root element %q is not an xbrl instance", start.Name.Local)}
			}
			seenRoot = true
			continue
		}

		switch {
		case start.Name.Local == "context" && isInstanceNS(start.Name.Space):
			var rc rawContext
			if err := dec.DecodeElement(&rc, &start); err != nil {
				return nil, &models.ParseError{Source: opts.Source, Err: fmt.Errorf("context: %w", err)}
			}
			ctx, err := buildContext(rc)
			if err != nil {
				return nil, &models.ParseError{Source: opts.Source, Err: err}
			}
			doc.Contexts[ctx.ID] = ctx

		case start.Name.Local == "unit" && isInstanceNS(start.Name.Space):
			var ru rawUnit
			if err := dec.DecodeElement(&ru, &start); err != nil {
				return nil, &models.ParseError{Source: opts.Source, Err: fmt.Errorf("unit: %w", err)}
			}
			doc.Units[ru.ID] = buildUnit(ru)

		case attrValue(start, "contextRef") != "":
			var rf rawFact
			if err := dec.DecodeElement(&rf, &start); err != nil {
				return nil, &models.ParseError{Source: opts.Source, Err: fmt.Errorf("fact %s: %w", start.Name.Local, err)}
			}
			fact := Fact{
				Namespace: start.Name.Space,
				Name:      start.Name.Local,
				Concept:   qualify(uriPrefix[start.Name.Space], start.Name.Local),
				ContextID: attrValue(start, "contextRef"),
				UnitID:    attrValue(start, "unitRef"),
				Text:      strings.TrimSpace(rf.Text),
				Decimals:  parseDecimals(attrValue(start, "decimals")),
			}
			for _, attr := range start.Attr {
				if attr.Name.Local == "nil" && attr.Name.Space == nsXSI {
					fact.Nil = strings.EqualFold(strings.TrimSpace(attr.Value), "true")
				}
			}
			if fact.UnitID != "" && !fact.Nil {
				v, err := ParseNumber(fact.Text)
				if err != nil {
					doc.Warnings = append(doc.Warnings, fmt.Sprintf("%s in %s: %v", fact.Concept, fact.ContextID, err))
				} else {
					fact.Value = v
					fact.Numeric = true
				}
			}
			doc.Facts = append(doc.Facts, fact)
		}
	}

	if !seenRoot {
		return nil, &models.ParseError{Source: opts.Source, Err: errors.New("document has no root element")}
	}

	finish(doc, opts)
	return doc, nil
}

// finish runs the document-level passes shared by XBRL and inline XBRL.
func finish(doc *Document, opts Options) {
	for _, f := range doc.Facts {
		if _, ok := doc.Contexts[f.ContextID]; !ok {
			doc.Warnings = append(doc.Warnings, fmt.Sprintf("%s references undefined context %s", f.Concept, f.ContextID))
		}
	}

	doc.Dialect, doc.DialectKnown = DetectDialect(doc.Namespaces)
	if !doc.DialectKnown {
		doc.Warnings = append(doc.Warnings, "unrecognized taxonomy dialect, using best-effort aliases")
	}

	doc.Metadata = readMetadata(doc.Facts)
	normalizeCurrency(doc, opts)
	checkDuplicates(doc, opts.DuplicateTolerance)
}

func buildContext(rc rawContext) (Context, error) {
	ctx := Context{
		ID:          rc.ID,
		Entity:      strings.TrimSpace(rc.Entity.Identifier),
		Dimensional: rc.Entity.Segment.present() || rc.Scenario.present(),
	}
	if ctx.ID == "" {
		return ctx, errors.New("context without id")
	}

	switch {
	case strings.TrimSpace(rc.Period.Instant) != "":
		t, ok := parseDate(rc.Period.Instant)
		if !ok {
			return ctx, fmt.Errorf("context %s: invalid instant %q", ctx.ID, rc.Period.Instant)
		}
		ctx.Kind = ContextInstant
		ctx.Instant = t
	case strings.TrimSpace(rc.Period.StartDate) != "" || strings.TrimSpace(rc.Period.EndDate) != "":
		start, ok1 := parseDate(rc.Period.StartDate)
		end, ok2 := parseDate(rc.Period.EndDate)
		if !ok1 || !ok2 {
			return ctx, fmt.Errorf("context %s: invalid duration %q..%q", ctx.ID, rc.Period.StartDate, rc.Period.EndDate)
		}
		ctx.Kind = ContextDuration
		ctx.Start = start
		ctx.End = end
	default:
		ctx.Kind = ContextForever
	}
	return ctx, nil
}

func buildUnit(ru rawUnit) Unit {
	u := Unit{ID: ru.ID}
	if len(ru.Measure) > 0 {
		u.Measure = strings.TrimSpace(ru.Measure[0])
	}
	if ru.Divide != nil {
		if len(ru.Divide.Numerator.Measure) > 0 {
			u.Measure = strings.TrimSpace(ru.Divide.Numerator.Measure[0])
		}
		if len(ru.Divide.Denominator.Measure) > 0 {
			u.Denominator = strings.TrimSpace(ru.Divide.Denominator.Measure[0])
		}
	}
	return u
}

func isInstanceNS(space string) bool {
	return space == nsInstance || space == ""
}

func attrValue(el xml.StartElement, local string) string {
	for _, attr := range el.Attr {
		if attr.Name.Local == local {
			return attr.Value
		}
	}
	return ""
}

func qualify(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}

func looksLikeHTML(data []byte) bool {
	head := data
	if len(head) > 4096 {
		head = head[:4096]
	}
	lower := bytes.ToLower(head)
	return bytes.Contains(lower, []byte("<html")) || bytes.Contains(lower, []byte("<!doctype html"))
}
