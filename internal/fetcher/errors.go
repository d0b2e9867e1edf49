package fetcher

import "fmt"

// FetchError reports a failed page retrieval: network error, timeout, or
// a non-success status. Challenge names the anti-bot shield when one was
// recognized in the response, which usually means the refresh failed for
// reasons a fresh cookie will not fix.
type FetchError struct {
	URL        string
	StatusCode int
	Challenge  string
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Challenge != "":
		return fmt.Sprintf("fetch %s: blocked by %s challenge (status %d)", e.URL, e.Challenge, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }
