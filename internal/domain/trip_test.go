package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestCostUnmarshal(t *testing.T) {
	cases := []struct {
		name string
		json string
		want float64
	}{
		{"number", `{"cost": 120.5}`, 120.5},
		{"numeric string", `{"cost": "99.90"}`, 99.9},
		{"garbage string", `{"cost": "abc"}`, 0},
		{"null", `{"cost": null}`, 0},
		{"absent", `{}`, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var payload struct {
				Cost Cost `json:"cost"`
			}
			if err := json.Unmarshal([]byte(tc.json), &payload); err != nil {
				t.Fatalf("unmarshal returned error: %v", err)
			}
			if got := payload.Cost.Amount(); got != tc.want {
				t.Fatalf("Amount() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseInformationType(t *testing.T) {
	got, err := ParseInformationType(" Flight ")
	if err != nil {
		t.Fatalf("expected flight to parse, got %v", err)
	}
	if got != InfoFlight {
		t.Fatalf("expected %q, got %q", InfoFlight, got)
	}

	if _, err := ParseInformationType("submarine"); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestDecodeInformationData(t *testing.T) {
	data, err := DecodeInformationData(InfoFlight, json.RawMessage(`{"airline":"KLM","cost":"120"}`))
	if err != nil {
		t.Fatalf("decode returned error: %v", err)
	}
	flight, ok := data.(FlightDetails)
	if !ok {
		t.Fatalf("expected FlightDetails, got %T", data)
	}
	if flight.Airline != "KLM" {
		t.Fatalf("expected airline KLM, got %q", flight.Airline)
	}
	if flight.CostAmount() != 120 {
		t.Fatalf("expected cost 120, got %v", flight.CostAmount())
	}
}

func TestDecodeInformationDataEmptyPayload(t *testing.T) {
	data, err := DecodeInformationData(InfoNote, nil)
	if err != nil {
		t.Fatalf("decode returned error: %v", err)
	}
	if _, ok := data.(NoteDetails); !ok {
		t.Fatalf("expected NoteDetails, got %T", data)
	}
}

func TestInformationJSONRoundTrip(t *testing.T) {
	item := Information{
		ID:   uuid.New(),
		Type: InfoAccommodation,
		Data: AccommodationDetails{Name: "Hotel Bristol", Cost: "85"},
	}

	encoded, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("marshal returned error: %v", err)
	}

	var decoded Information
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("unmarshal returned error: %v", err)
	}
	if decoded.ID != item.ID || decoded.Type != item.Type {
		t.Fatalf("identity did not survive round trip: %+v", decoded)
	}
	hotel, ok := decoded.Data.(AccommodationDetails)
	if !ok {
		t.Fatalf("expected AccommodationDetails, got %T", decoded.Data)
	}
	if hotel.Name != "Hotel Bristol" || hotel.CostAmount() != 85 {
		t.Fatalf("payload did not survive round trip: %+v", hotel)
	}
}

func TestTripTotalCost(t *testing.T) {
	trip := Trip{Information: InformationList{
		{ID: uuid.New(), Type: InfoFlight, Data: FlightDetails{Cost: "150"}},
		{ID: uuid.New(), Type: InfoActivity, Data: ActivityDetails{Cost: "abc"}},
		{ID: uuid.New(), Type: InfoRestaurant, Data: RestaurantDetails{Cost: "25.50"}},
		{ID: uuid.New(), Type: InfoNote, Data: NoteDetails{Text: "pack sunscreen"}},
	}}

	if got := trip.TotalCost(); got != 175.50 {
		t.Fatalf("TotalCost() = %v, want 175.50", got)
	}
	// Recomputing must not drift.
	if got := trip.TotalCost(); got != 175.50 {
		t.Fatalf("second TotalCost() = %v, want 175.50", got)
	}
}

func TestTripRemoveItem(t *testing.T) {
	first := Information{ID: uuid.New(), Type: InfoNote, Data: NoteDetails{Text: "a"}}
	second := Information{ID: uuid.New(), Type: InfoNote, Data: NoteDetails{Text: "b"}}
	trip := Trip{Information: InformationList{first, second}}

	if !trip.RemoveItem(first.ID) {
		t.Fatalf("expected removal of an existing item to report true")
	}
	if len(trip.Information) != 1 || trip.Information[0].ID != second.ID {
		t.Fatalf("expected only the second item to remain, got %+v", trip.Information)
	}
	if trip.RemoveItem(first.ID) {
		t.Fatalf("expected removal of a missing item to report false")
	}
}

func TestInformationListScan(t *testing.T) {
	raw := `[{"id":"` + uuid.New().String() + `","type":"train","data":{"operator":"SNCF","cost":30}}]`

	var list InformationList
	if err := list.Scan([]byte(raw)); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one item, got %d", len(list))
	}
	train, ok := list[0].Data.(TrainDetails)
	if !ok {
		t.Fatalf("expected TrainDetails, got %T", list[0].Data)
	}
	if train.Operator != "SNCF" || train.CostAmount() != 30 {
		t.Fatalf("unexpected decoded payload: %+v", train)
	}

	var empty InformationList
	if err := empty.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) returned error: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty list for NULL column")
	}
}
