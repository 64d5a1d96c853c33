package xbrl

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"github.com/ternarybob/scrutor/internal/models"
)

// ExtractInline parses an inline XBRL (HTML) filing into the same Document
// shape as Extract.
func ExtractInline(data []byte, opts Options) (*Document, error) {
	html, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, &models.ParseError{Source: opts.Source, Err: err}
	}

	doc := &Document{
		Contexts:   make(map[string]Context),
		Units:      make(map[string]Unit),
		Namespaces: make(map[string]string),
		Inline:     true,
	}

	html.Find("html").Each(func(_ int, s *goquery.Selection) {
		for _, attr := range s.Nodes[0].Attr {
			if p, ok := strings.CutPrefix(attr.Key, "xmlns:"); ok {
				doc.Namespaces[p] = attr.Val
			}
		}
	})

	var walkErr error
	html.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		switch localName(s) {
		case "context":
			ctx, err := inlineContext(s)
			if err != nil {
				walkErr = err
				return false
			}
			doc.Contexts[ctx.ID] = ctx
		case "unit":
			doc.Units[attr(s, "id")] = inlineUnit(s)
		case "nonfraction":
			fact, err := inlineNumeric(s)
			if err != nil {
				doc.Warnings = append(doc.Warnings, err.Error())
			}
			fact.Namespace = doc.Namespaces[fact.Namespace]
			doc.Facts = append(doc.Facts, fact)
		case "nonnumeric":
			fact := inlineText(s)
			fact.Namespace = doc.Namespaces[fact.Namespace]
			doc.Facts = append(doc.Facts, fact)
		}
		return true
	})
	if walkErr != nil {
		return nil, &models.ParseError{Source: opts.Source, Err: walkErr}
	}
	if len(doc.Facts) == 0 && len(doc.Contexts) == 0 {
		return nil, &models.ParseError{Source: opts.Source, Err: errors.New("no inline XBRL facts or contexts found")}
	}

	finish(doc, opts)
	return doc, nil
}

// localName strips the namespace prefix from a lowercased HTML tag name.
func localName(s *goquery.Selection) string {
	name := goquery.NodeName(s)
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return ""
}

func attr(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)
	return strings.TrimSpace(v)
}

func childText(s *goquery.Selection, local string) (string, bool) {
	var out string
	found := false
	s.Find("*").EachWithBreak(func(_ int, c *goquery.Selection) bool {
		if localName(c) == local {
			out = strings.TrimSpace(c.Text())
			found = true
			return false
		}
		return true
	})
	return out, found
}

func inlineContext(s *goquery.Selection) (Context, error) {
	rc := rawContext{ID: attr(s, "id")}
	rc.Entity.Identifier, _ = childText(s, "identifier")
	rc.Period.Instant, _ = childText(s, "instant")
	rc.Period.StartDate, _ = childText(s, "startdate")
	rc.Period.EndDate, _ = childText(s, "enddate")

	ctx, err := buildContext(rc)
	if err != nil {
		return ctx, err
	}
	s.Find("*").Each(func(_ int, c *goquery.Selection) {
		if n := localName(c); n == "segment" || n == "scenario" {
			if strings.TrimSpace(c.Text()) != "" || c.Children().Length() > 0 {
				ctx.Dimensional = true
			}
		}
	})
	return ctx, nil
}

func inlineUnit(s *goquery.Selection) Unit {
	u := Unit{ID: attr(s, "id")}
	var measures []string
	inDenominator := false
	s.Find("*").Each(func(_ int, c *goquery.Selection) {
		switch localName(c) {
		case "unitdenominator":
			inDenominator = true
		case "measure":
			m := strings.TrimSpace(c.Text())
			if inDenominator {
				u.Denominator = m
			} else {
				measures = append(measures, m)
			}
		}
	})
	if len(measures) > 0 {
		u.Measure = measures[0]
	}
	return u
}

// factBase reads the attributes common to numeric and text facts. Namespace
// holds the concept prefix until the caller resolves it.
func factBase(s *goquery.Selection) Fact {
	concept := attr(s, "name")
	prefix, local, ok := strings.Cut(concept, ":")
	if !ok {
		local, prefix = concept, ""
	}
	return Fact{
		Concept:   concept,
		Name:      local,
		ContextID: attr(s, "contextref"),
		UnitID:    attr(s, "unitref"),
		Text:      strings.TrimSpace(s.Text()),
		Nil:       strings.EqualFold(attr(s, "xsi:nil"), "true"),
		Namespace: prefix,
	}
}

func inlineText(s *goquery.Selection) Fact {
	return factBase(s)
}

// inlineNumeric applies the ix:nonFraction format, scale and sign attributes.
func inlineNumeric(s *goquery.Selection) (Fact, error) {
	f := factBase(s)
	f.Decimals = parseDecimals(attr(s, "decimals"))
	if f.Nil {
		return f, nil
	}

	format := strings.ToLower(attr(s, "format"))
	text := f.Text
	switch {
	case strings.Contains(format, "zero"):
		text = "0"
	case strings.Contains(format, "comma-decimal") || strings.Contains(format, "numcommadecimal"):
		text = strings.ReplaceAll(text, ".", "")
		text = strings.ReplaceAll(text, " ", "")
		text = strings.ReplaceAll(text, ",", ".")
	}

	v, err := ParseNumber(text)
	if err != nil {
		return f, fmt.Errorf("%s in %s: %w", f.Concept, f.ContextID, err)
	}
	if sc := attr(s, "scale"); sc != "" {
		n, err := strconv.Atoi(sc)
		if err != nil {
			return f, fmt.Errorf("%s in %s: invalid scale %q", f.Concept, f.ContextID, sc)
		}
		v = v.Mul(decimal.New(1, int32(n)))
	}
	if attr(s, "sign") == "-" {
		v = v.Neg()
	}
	f.Value = v
	f.Numeric = true
	return f, nil
}
