package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xmlquery"
)

// collector gathers trimmed, non-empty text up to a limit.
type collector struct {
	values []any
	max    int
}

func (c *collector) full() bool { return c.max > 0 && len(c.values) >= c.max }

func (c *collector) add(text string) {
	if text = strings.TrimSpace(text); text != "" && !c.full() {
		c.values = append(c.values, text)
	}
}

func selectCSS(doc, selector string, limit int) ([]any, error) {
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("invalid HTML document: %w", err)
	}
	c := &collector{max: limit}
	d.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		c.add(s.Text())
		return !c.full()
	})
	return c.values, nil
}

// selectXPath evaluates expr with the HTML parser when html is set and the
// XML parser otherwise.
func selectXPath(doc string, html bool, expr string, limit int) ([]any, error) {
	c := &collector{max: limit}
	if html {
		root, err := htmlquery.Parse(strings.NewReader(doc))
		if err != nil {
			return nil, fmt.Errorf("invalid HTML document: %w", err)
		}
		nodes, err := htmlquery.QueryAll(root, expr)
		if err != nil {
			return nil, fmt.Errorf("invalid XPath expression: %w", err)
		}
		for _, n := range nodes {
			c.add(htmlquery.InnerText(n))
		}
		return c.values, nil
	}

	root, err := xmlquery.Parse(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("invalid XML document: %w", err)
	}
	nodes, err := xmlquery.QueryAll(root, expr)
	if err != nil {
		return nil, fmt.Errorf("invalid XPath expression: %w", err)
	}
	for _, n := range nodes {
		c.add(n.InnerText())
	}
	return c.values, nil
}

// matchRegex returns the first capture group of each match, or the whole
// match when the pattern has no groups.
func matchRegex(doc, pattern string, limit int) ([]any, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regular expression: %w", err)
	}
	group := 0
	if re.NumSubexp() > 0 {
		group = 1
	}
	var values []any
	for _, m := range re.FindAllStringSubmatch(doc, -1) {
		if limit > 0 && len(values) >= limit {
			break
		}
		values = append(values, m[group])
	}
	return values, nil
}

// lookupForm returns the values of key in a urlencoded document. Key "*"
// returns a single object of every field; repeated fields become arrays.
func lookupForm(doc, key string, limit int) ([]any, error) {
	fields, err := url.ParseQuery(strings.TrimSpace(doc))
	if err != nil {
		return nil, fmt.Errorf("invalid form document: %w", err)
	}

	if key == "*" {
		all := make(map[string]any, len(fields))
		for k, vs := range fields {
			if len(vs) == 1 {
				all[k] = vs[0]
			} else {
				items := make([]any, len(vs))
				for i, v := range vs {
					items[i] = v
				}
				all[k] = items
			}
		}
		return []any{all}, nil
	}

	var values []any
	for _, v := range fields[key] {
		if limit > 0 && len(values) >= limit {
			break
		}
		values = append(values, v)
	}
	return values, nil
}
