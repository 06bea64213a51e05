package mls

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"wardroster/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const memberListPagePath = "/mls/mbr/records/member-list"

var unitNumberRegex = regexp.MustCompile(`window\.unitNumber\s*=\s*'(.*?)';`)

// findUnitNumber looks for the unit number assignment in the page's inline
// scripts first and falls back to the raw page.
func findUnitNumber(page []byte) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err == nil {
		for _, script := range doc.Find("script").Nodes {
			groups := unitNumberRegex.FindStringSubmatch(htmlutil.GetText(script))
			if len(groups) >= 2 {
				return strings.TrimSpace(groups[1]), true
			}
		}
	}

	groups := unitNumberRegex.FindSubmatch(page)
	if len(groups) < 2 {
		return "", false
	}
	return strings.TrimSpace(string(groups[1])), true
}

// GetUnitNumber reads the unit number of the logged in member off the member
// list page.
func (c *Client) GetUnitNumber(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "client:GetUnitNumber")
	defer span.End()

	res, err := c.get(ctx, memberListPagePath, getOptions{
		query: map[string]string{"lang": "eng"},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch member list page")
		return "", err
	}

	unitNumber, ok := findUnitNumber(res.Body())
	if !ok || unitNumber == "" {
		err := &ParseError{
			What: "unit number",
			Err:  fmt.Errorf("no match for %s", unitNumberRegex.String()),
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to find unit number")
		return "", err
	}

	span.SetAttributes(attribute.String("unit_number", unitNumber))
	return unitNumber, nil
}
