package musiclink

// Detector runs a URL through the registered matchers in order.
type Detector struct {
	matchers []Matcher
}

// NewDetector creates a detector with the Spotify and YouTube matchers.
func NewDetector() *Detector {
	return &Detector{
		matchers: []Matcher{
			NewSpotifyMatcher(),
			NewYouTubeMatcher(),
		},
	}
}

var defaultDetector = NewDetector()

// Detect classifies rawURL with the default detector.
func Detect(rawURL string) (Link, bool) {
	return defaultDetector.Detect(rawURL)
}

// ProviderOf returns the provider of rawURL with the default detector.
func ProviderOf(rawURL string) (Provider, bool) {
	return defaultDetector.ProviderOf(rawURL)
}

// Detect returns the link for the first matcher that accepts the URL.
// It never fails: unknown providers and URLs without an id yield ok == false.
func (d *Detector) Detect(rawURL string) (Link, bool) {
	for _, matcher := range d.matchers {
		if matcher.CanMatch(rawURL) {
			return matcher.Match(rawURL)
		}
	}
	return Link{}, false
}

// ProviderOf reports which provider a URL belongs to, whether or not an id can be extracted.
func (d *Detector) ProviderOf(rawURL string) (Provider, bool) {
	for _, matcher := range d.matchers {
		if !matcher.CanMatch(rawURL) {
			continue
		}
		switch matcher.(type) {
		case *SpotifyMatcher:
			return ProviderSpotify, true
		case *YouTubeMatcher:
			return ProviderYouTube, true
		}
	}
	return "", false
}
