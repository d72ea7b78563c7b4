package homepage

import (
	"errors"
	"testing"
)

func TestMapBookmarks(t *testing.T) {
	config := BookmarksConfig{
		{
			"Developer": []map[string][]BookmarkEntry{
				{"Github": {{Abbr: "GH", Href: "https://github.com/"}}},
				{"No link": {{Abbr: "NL"}}},
				{"Empty": {}},
			},
		},
	}

	inputs, err := MapBookmarks(config)
	if err != nil {
		t.Fatalf("MapBookmarks() error = %v", err)
	}

	if len(inputs) != 1 {
		t.Fatalf("MapBookmarks() returned %d inputs, want 1", len(inputs))
	}
	if inputs[0].Title == nil || *inputs[0].Title != "Github" {
		t.Errorf("title = %v, want Github", inputs[0].Title)
	}
}

func TestMapBookmarksAbbrFallback(t *testing.T) {
	config := BookmarksConfig{
		{"Dev": []map[string][]BookmarkEntry{{" ": {{Abbr: "GH", Href: "https://github.com/"}}}}},
	}

	inputs, err := MapBookmarks(config)
	if err != nil {
		t.Fatalf("MapBookmarks() error = %v", err)
	}
	if *inputs[0].Title != "GH" {
		t.Errorf("title = %q, want GH", *inputs[0].Title)
	}
}

func TestMapBookmarksEmptyConfig(t *testing.T) {
	inputs, err := MapBookmarks(BookmarksConfig{})

	if !errors.Is(err, ErrNoEntries) {
		t.Errorf("MapBookmarks() with empty config error = %v, want ErrNoEntries", err)
	}
	if inputs != nil {
		t.Errorf("MapBookmarks() with empty config should return nil, got %d", len(inputs))
	}
}

func TestMapServicesMultipleGroups(t *testing.T) {
	config := ServicesConfig{
		{
			"Group1": []map[string]ServiceProps{
				{"Service1": {Href: "https://service1.example.com"}},
			},
		},
		{
			"Group2": []map[string]ServiceProps{
				{"Service2": {Href: "https://service2.example.com"}},
				{"Widget only": {Icon: "x.svg"}},
			},
		},
	}

	inputs, err := MapServices(config)
	if err != nil {
		t.Fatalf("MapServices() error = %v", err)
	}

	if len(inputs) != 2 {
		t.Fatalf("MapServices() returned %d inputs, want 2", len(inputs))
	}
	if inputs[1].URL != "https://service2.example.com" {
		t.Errorf("second url = %s", inputs[1].URL)
	}
}

func TestMapServicesKeepsMalformedForPipeline(t *testing.T) {
	config := ServicesConfig{
		{"Test": []map[string]ServiceProps{{"Invalid Service": {Href: "not-a-valid-url"}}}},
	}

	inputs, err := MapServices(config)
	if err != nil {
		t.Fatalf("MapServices() error = %v", err)
	}
	if len(inputs) != 1 {
		t.Errorf("MapServices() returned %d inputs, want 1", len(inputs))
	}
}
