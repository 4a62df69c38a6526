package transit

import (
	"testing"

	"mrx/internal/config"
	"mrx/internal/transit/gtfsrt"
	"mrx/internal/transit/trias"
)

func TestNew(t *testing.T) {
	src, loc := New(config.TransitConfig{Source: "trias", Endpoint: "http://trias", AccessToken: "k", Results: 5})
	if _, ok := src.(*trias.Client); !ok || loc == nil {
		t.Errorf("trias: source %T locator %v", src, loc)
	}

	src, loc = New(config.TransitConfig{Source: "gtfsrt", FeedURL: "http://feed"})
	if _, ok := src.(*gtfsrt.Client); !ok || loc != nil {
		t.Errorf("gtfsrt: source %T locator %v", src, loc)
	}
}
