package swap

import "fmt"

// FetchError reports that the price feed could not be loaded: either the
// transport failed or the response status was not a success. A FetchError is
// terminal for that load attempt; callers surface the message, they do not
// retry on their own.
type FetchError struct {
	// StatusText the transport's status text, kept verbatim
	StatusText string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch prices: %v", e.StatusText)
}
