package homepage

import (
	"errors"
	"sort"
	"strings"

	"github.com/MrSnakeDoc/linkstash/internal/domain"
)

// ErrNoEntries is returned when a file holds no entry with an href.
var ErrNoEntries = errors.New("no entries with an href found")

// MapBookmarks converts BookmarksConfig to link candidates.
// The bookmark name becomes the title; abbr is used when the name is blank.
func MapBookmarks(config BookmarksConfig) ([]domain.LinkInput, error) {
	var inputs []domain.LinkInput

	for _, category := range config {
		for _, categoryName := range sortedKeys(category) {
			for _, bookmarkMap := range category[categoryName] {
				for _, bookmarkName := range sortedKeys(bookmarkMap) {
					entryList := bookmarkMap[bookmarkName]
					// Each bookmark has a list with a single entry
					if len(entryList) == 0 {
						continue
					}
					entry := entryList[0]

					href := strings.TrimSpace(entry.Href)
					if href == "" {
						continue
					}

					title := bookmarkName
					if strings.TrimSpace(title) == "" {
						title = entry.Abbr
					}
					inputs = append(inputs, domain.LinkInput{URL: href, Title: titlePtr(title)})
				}
			}
		}
	}

	if len(inputs) == 0 {
		return nil, ErrNoEntries
	}
	return inputs, nil
}

// MapServices converts ServicesConfig to link candidates titled by service name.
// URL validation is left to the import pipeline.
func MapServices(config ServicesConfig) ([]domain.LinkInput, error) {
	var inputs []domain.LinkInput

	for _, groupMap := range config {
		for _, groupName := range sortedKeys(groupMap) {
			for _, serviceMap := range groupMap[groupName] {
				for _, serviceName := range sortedKeys(serviceMap) {
					props := serviceMap[serviceName]

					href := strings.TrimSpace(props.Href)
					if href == "" {
						continue
					}
					inputs = append(inputs, domain.LinkInput{URL: href, Title: titlePtr(serviceName)})
				}
			}
		}
	}

	if len(inputs) == 0 {
		return nil, ErrNoEntries
	}
	return inputs, nil
}

func titlePtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// sortedKeys gives map iteration a stable order. Homepage maps hold a single
// key in practice.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
