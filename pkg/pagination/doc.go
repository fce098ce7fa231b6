// Package pagination drains offset/limit paginated endpoints.
//
// A collection is fetched sequentially: skip starts at 0 and advances by the
// batch size after every full page. The drain stops at the first empty page
// (not included) or the first short page (included).
//
// Example usage:
//
//	polls, err := pagination.Drain[client.Poll](ctx, apiClient, 10)
//
// Any type implementing PageFetcher can be drained, and PageFetcherFunc
// adapts a plain function:
//
//	fetch := pagination.PageFetcherFunc[string](func(ctx context.Context, skip, limit int) ([]string, error) {
//		return source[skip:min(skip+limit, len(source))], nil
//	})
//	all, err := pagination.NewDrainer[string](fetch, pagination.DefaultConfig()).DrainAll(ctx)
//
// The drainer:
//   - Issues exactly one request at a time
//   - Never retries; the first error aborts and is returned unchanged
//   - Logs each page at debug and a summary at info
package pagination
