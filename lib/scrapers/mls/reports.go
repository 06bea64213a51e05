package mls

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/codes"
)

const (
	memberListPath             = "/mls/mbr/services/report/member-list"
	membersWithCallingsPath    = "/mls/mbr/services/report/members-with-callings"
	membersWithoutCallingsPath = "/mls/mbr/services/orgs/members-without-callings"
)

// getReport fetches one of the unit reports and returns its body untouched.
func (c *Client) getReport(ctx context.Context, name, endpoint, unitNumber string, acceptJson bool) (json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("client:getReport(%s)", name))
	defer span.End()

	res, err := c.get(ctx, endpoint, getOptions{
		query: map[string]string{
			"lang":       "eng",
			"unitNumber": unitNumber,
		},
		acceptJson: acceptJson,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch report")
		return nil, err
	}

	body := res.Body()
	if !json.Valid(body) {
		err := &ParseError{
			What: name,
			Err:  fmt.Errorf("response is not json: %q", excerpt(body)),
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "report is not json")
		return nil, err
	}
	return json.RawMessage(body), nil
}

func (c *Client) GetMemberList(ctx context.Context, unitNumber string) (json.RawMessage, error) {
	return c.getReport(ctx, "member list", memberListPath, unitNumber, false)
}

func (c *Client) GetMembersWithCallings(ctx context.Context, unitNumber string) (json.RawMessage, error) {
	return c.getReport(ctx, "members with callings", membersWithCallingsPath, unitNumber, true)
}

func (c *Client) GetMembersWithoutCallings(ctx context.Context, unitNumber string) (json.RawMessage, error) {
	return c.getReport(ctx, "members without callings", membersWithoutCallingsPath, unitNumber, true)
}
