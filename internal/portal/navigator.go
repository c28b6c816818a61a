package portal

import (
	"context"
	"net/http"
)

// PageLoader is a Navigator that loads the target page over a Transport,
// as a browser does when it follows a link. Sharing the controllers'
// Transport keeps the stream session cookie in play.
type PageLoader struct {
	Transport Transport

	// OnLoad, when set, receives every loaded page whatever its status.
	OnLoad func(path string, page *Response)
}

// Navigate loads path. It fails only when the page could not be fetched.
func (l *PageLoader) Navigate(ctx context.Context, path string) error {
	resp, err := l.Transport.Do(ctx, Request{Method: http.MethodGet, Path: path})
	if err != nil {
		return err
	}
	if l.OnLoad != nil {
		l.OnLoad(path, resp)
	}
	return nil
}
