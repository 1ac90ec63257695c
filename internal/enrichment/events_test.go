package enrichment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestSearchEvents(t *testing.T) {
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"_embedded": {
				"events": [{
					"id": "evt-1",
					"name": "Open Air Concert",
					"url": "https://example.com/evt-1",
					"images": [{"ratio": "16_9", "url": "https://example.com/img.jpg", "width": 640, "height": 360}],
					"dates": {"start": {"dateTime": "2025-08-02T19:00:00Z"}},
					"priceRanges": [{"type": "standard", "currency": "EUR", "min": 25, "max": 60}],
					"classifications": [{"segment": {"name": "Music"}}],
					"_embedded": {
						"venues": [{
							"name": "Stadspark",
							"address": {"line1": "Parkweg 1"},
							"city": {"name": "Antwerp"}
						}]
					}
				}]
			}
		}`))
	}))
	defer server.Close()

	client := NewEventsClient("test-key", WithEventsBaseURL(server.URL))
	events, err := client.Search(context.Background(), EventQuery{
		City: "Antwerp", Date: "2025-08-02", EventType: "music",
	})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}

	event := events[0]
	if event.ID != "evt-1" || event.Name != "Open Air Concert" {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.Venue != "Stadspark" || event.Location != "Parkweg 1" || event.City != "Antwerp" {
		t.Fatalf("venue fields were not flattened: %+v", event)
	}
	if len(event.PriceRanges) != 1 || event.PriceRanges[0].Min != 25 {
		t.Fatalf("unexpected price ranges: %+v", event.PriceRanges)
	}

	if gotQuery.Get("city") != "Antwerp" {
		t.Fatalf("expected city filter, got %q", gotQuery.Get("city"))
	}
	if gotQuery.Get("classificationName") != "music" {
		t.Fatalf("expected classification filter, got %q", gotQuery.Get("classificationName"))
	}
	if gotQuery.Get("startDateTime") != "2025-08-02T00:00:00Z" || gotQuery.Get("endDateTime") != "2025-08-02T23:59:59Z" {
		t.Fatalf("expected the date to expand to a day window, got %q / %q",
			gotQuery.Get("startDateTime"), gotQuery.Get("endDateTime"))
	}
}

func TestSearchEventsEmptyAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewEventsClient("test-key", WithEventsBaseURL(server.URL))
	events, err := client.Search(context.Background(), EventQuery{City: "Nowhere"})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if events == nil || len(events) != 0 {
		t.Fatalf("expected an empty slice, got %v", events)
	}
}

func TestSearchEventsRejectsBadDate(t *testing.T) {
	client := NewEventsClient("test-key")
	if _, err := client.Search(context.Background(), EventQuery{Date: "02-08-2025"}); err == nil {
		t.Fatal("expected error for a date that is not YYYY-MM-DD")
	}
}
