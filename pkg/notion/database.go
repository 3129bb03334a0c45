package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-verify/internal/adapter"
)

// StatusQueued marks a lead page waiting for verification.
const StatusQueued = "Queued"

type pageResult struct {
	resp *notionapi.DatabaseQueryResponse
	err  error
}

func nextRequest(base *notionapi.DatabaseQueryRequest, cursor notionapi.Cursor) *notionapi.DatabaseQueryRequest {
	req := &notionapi.DatabaseQueryRequest{StartCursor: cursor}
	if base != nil {
		req.Filter = base.Filter
		req.Sorts = base.Sorts
		req.PageSize = base.PageSize
	}
	return req
}

// QueryAll pages through a database query. While page N is appended the
// request for page N+1 is already in flight.
func QueryAll(ctx context.Context, c Client, dbID string, query *notionapi.DatabaseQueryRequest) ([]notionapi.Page, error) {
	var (
		all     []notionapi.Page
		pending <-chan pageResult
	)

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "notion: query all")
	}

	for {
		var (
			resp *notionapi.DatabaseQueryResponse
			err  error
		)
		if pending != nil {
			r := <-pending
			resp, err = r.resp, r.err
		} else {
			resp, err = c.QueryDatabase(ctx, dbID, nextRequest(query, ""))
		}
		if err != nil {
			return nil, eris.Wrap(err, "notion: query all")
		}

		all = append(all, resp.Results...)
		if !resp.HasMore {
			return all, nil
		}

		ch := make(chan pageResult, 1)
		pending = ch
		req := nextRequest(query, resp.NextCursor)
		go func() {
			r, e := c.QueryDatabase(ctx, dbID, req)
			ch <- pageResult{resp: r, err: e}
		}()
	}
}

// QueryQueuedLeads returns every lead page whose Status is Queued.
func QueryQueuedLeads(ctx context.Context, c Client, dbID string) ([]notionapi.Page, error) {
	pages, err := QueryAll(ctx, c, dbID, &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: adapter.NotionStatus,
			Status:   &notionapi.StatusFilterCondition{Equals: StatusQueued},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "notion: query queued leads")
	}
	return pages, nil
}
