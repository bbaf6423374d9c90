package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// QueryAll fetches every page of a database query, following pagination
// cursors. While one page of results is being consumed the next is
// already being fetched. Rate limiting is enforced by the Client.
func QueryAll(ctx context.Context, c Client, dbID string, filter *notionapi.DatabaseQueryRequest) ([]notionapi.Page, error) {
	var all []notionapi.Page

	req := &notionapi.DatabaseQueryRequest{}
	if filter != nil {
		req.Filter = filter.Filter
		req.Sorts = filter.Sorts
		req.PageSize = filter.PageSize
	}

	type prefetchResult struct {
		resp *notionapi.DatabaseQueryResponse
		err  error
	}
	var prefetchCh <-chan prefetchResult

	for {
		var resp *notionapi.DatabaseQueryResponse
		var err error

		if prefetchCh != nil {
			result := <-prefetchCh
			resp, err = result.resp, result.err
		} else {
			resp, err = c.QueryDatabase(ctx, dbID, req)
		}

		if err != nil {
			return nil, eris.Wrap(err, "notion: query all page")
		}

		all = append(all, resp.Results...)

		if !resp.HasMore {
			break
		}

		nextReq := &notionapi.DatabaseQueryRequest{
			StartCursor: resp.NextCursor,
		}
		if filter != nil {
			nextReq.Filter = filter.Filter
			nextReq.Sorts = filter.Sorts
			nextReq.PageSize = filter.PageSize
		}

		ch := make(chan prefetchResult, 1)
		prefetchCh = ch
		go func() {
			r, e := c.QueryDatabase(ctx, dbID, nextReq)
			ch <- prefetchResult{resp: r, err: e}
		}()
	}

	return all, nil
}

// QueryNewLeads fetches all pages with Status = "New" from the given database.
func QueryNewLeads(ctx context.Context, c Client, dbID string) ([]notionapi.Page, error) {
	filter := &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: "Status",
			Status: &notionapi.StatusFilterCondition{
				Equals: "New",
			},
		},
	}
	pages, err := QueryAll(ctx, c, dbID, filter)
	if err != nil {
		return nil, eris.Wrap(err, "notion: query new leads")
	}
	return pages, nil
}
