package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultTripBudget = 1000

type InformationType string

const (
	InfoActivity      InformationType = "activity"
	InfoAccommodation InformationType = "accommodation"
	InfoFlight        InformationType = "flight"
	InfoTrain         InformationType = "train"
	InfoFerry         InformationType = "ferry"
	InfoEvent         InformationType = "event"
	InfoRestaurant    InformationType = "restaurant"
	InfoNote          InformationType = "note"
)

func ParseInformationType(raw string) (InformationType, error) {
	t := InformationType(strings.ToLower(strings.TrimSpace(raw)))
	switch t {
	case InfoActivity, InfoAccommodation, InfoFlight, InfoTrain, InfoFerry,
		InfoEvent, InfoRestaurant, InfoNote:
		return t, nil
	default:
		return "", fmt.Errorf("invalid information type %q", raw)
	}
}

// Cost is a tolerant money field: clients send either a JSON number or a
// string, and unparseable values count as zero in totals.
type Cost string

func (c *Cost) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*c = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*c = Cost(str)
		return nil
	}
	*c = Cost(s)
	return nil
}

func (c Cost) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(c))
}

// Amount parses the cost, returning 0 for absent or unparseable values.
func (c Cost) Amount() float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(c)), 64)
	if err != nil {
		return 0
	}
	return f
}

// InformationData is the tagged-union payload of an Information item, one
// variant per known type plus a generic catch-all for anything else.
type InformationData interface {
	infoData()
	CostAmount() float64
}

type FlightDetails struct {
	Airline          string `json:"airline,omitempty"`
	FlightNumber     string `json:"flightNumber,omitempty"`
	DepartureAirport string `json:"departureAirport,omitempty"`
	ArrivalAirport   string `json:"arrivalAirport,omitempty"`
	Date             string `json:"date,omitempty"`
	DepartureTime    string `json:"departureTime,omitempty"`
	ArrivalTime      string `json:"arrivalTime,omitempty"`
	Cost             Cost   `json:"cost,omitempty"`
	Notes            string `json:"notes,omitempty"`
}

type TrainDetails struct {
	Operator         string `json:"operator,omitempty"`
	DepartureStation string `json:"departureStation,omitempty"`
	ArrivalStation   string `json:"arrivalStation,omitempty"`
	Date             string `json:"date,omitempty"`
	DepartureTime    string `json:"departureTime,omitempty"`
	ArrivalTime      string `json:"arrivalTime,omitempty"`
	Cost             Cost   `json:"cost,omitempty"`
	Notes            string `json:"notes,omitempty"`
}

type FerryDetails struct {
	Operator      string `json:"operator,omitempty"`
	DeparturePort string `json:"departurePort,omitempty"`
	ArrivalPort   string `json:"arrivalPort,omitempty"`
	Date          string `json:"date,omitempty"`
	DepartureTime string `json:"departureTime,omitempty"`
	ArrivalTime   string `json:"arrivalTime,omitempty"`
	Cost          Cost   `json:"cost,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

type AccommodationDetails struct {
	Name     string `json:"name,omitempty"`
	Address  string `json:"address,omitempty"`
	CheckIn  string `json:"checkIn,omitempty"`
	CheckOut string `json:"checkOut,omitempty"`
	Cost     Cost   `json:"cost,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

type ActivityDetails struct {
	Name     string `json:"name,omitempty"`
	Location string `json:"location,omitempty"`
	Date     string `json:"date,omitempty"`
	Time     string `json:"time,omitempty"`
	Cost     Cost   `json:"cost,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

type EventDetails struct {
	Name  string `json:"name,omitempty"`
	Venue string `json:"venue,omitempty"`
	Date  string `json:"date,omitempty"`
	Time  string `json:"time,omitempty"`
	Cost  Cost   `json:"cost,omitempty"`
	Notes string `json:"notes,omitempty"`
}

type RestaurantDetails struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
	Date    string `json:"date,omitempty"`
	Time    string `json:"time,omitempty"`
	Cost    Cost   `json:"cost,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

type NoteDetails struct {
	Text string `json:"text,omitempty"`
}

// GenericDetails keeps payloads of types this version does not know about.
type GenericDetails map[string]any

func (FlightDetails) infoData()        {}
func (TrainDetails) infoData()         {}
func (FerryDetails) infoData()         {}
func (AccommodationDetails) infoData() {}
func (ActivityDetails) infoData()      {}
func (EventDetails) infoData()         {}
func (RestaurantDetails) infoData()    {}
func (NoteDetails) infoData()          {}
func (GenericDetails) infoData()       {}

func (d FlightDetails) CostAmount() float64        { return d.Cost.Amount() }
func (d TrainDetails) CostAmount() float64         { return d.Cost.Amount() }
func (d FerryDetails) CostAmount() float64         { return d.Cost.Amount() }
func (d AccommodationDetails) CostAmount() float64 { return d.Cost.Amount() }
func (d ActivityDetails) CostAmount() float64      { return d.Cost.Amount() }
func (d EventDetails) CostAmount() float64         { return d.Cost.Amount() }
func (d RestaurantDetails) CostAmount() float64    { return d.Cost.Amount() }
func (NoteDetails) CostAmount() float64            { return 0 }

func (d GenericDetails) CostAmount() float64 {
	raw, ok := d["cost"]
	if !ok {
		return 0
	}
	switch v := raw.(type) {
	case float64:
		return v
	case string:
		return Cost(v).Amount()
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// DecodeInformationData decodes a raw JSON payload into the variant matching
// the given type. Unknown types fall back to GenericDetails.
func DecodeInformationData(t InformationType, raw json.RawMessage) (InformationData, error) {
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}

	var target any
	switch t {
	case InfoFlight:
		target = &FlightDetails{}
	case InfoTrain:
		target = &TrainDetails{}
	case InfoFerry:
		target = &FerryDetails{}
	case InfoAccommodation:
		target = &AccommodationDetails{}
	case InfoActivity:
		target = &ActivityDetails{}
	case InfoEvent:
		target = &EventDetails{}
	case InfoRestaurant:
		target = &RestaurantDetails{}
	case InfoNote:
		target = &NoteDetails{}
	default:
		target = &GenericDetails{}
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decode %s data: %w", t, err)
	}

	switch v := target.(type) {
	case *FlightDetails:
		return *v, nil
	case *TrainDetails:
		return *v, nil
	case *FerryDetails:
		return *v, nil
	case *AccommodationDetails:
		return *v, nil
	case *ActivityDetails:
		return *v, nil
	case *EventDetails:
		return *v, nil
	case *RestaurantDetails:
		return *v, nil
	case *NoteDetails:
		return *v, nil
	default:
		return *target.(*GenericDetails), nil
	}
}

// Information is an embedded item of a Trip.
type Information struct {
	ID   uuid.UUID
	Type InformationType
	Data InformationData
}

type informationJSON struct {
	ID   uuid.UUID       `json:"id"`
	Type InformationType `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (i Information) MarshalJSON() ([]byte, error) {
	data := i.Data
	if data == nil {
		data = GenericDetails{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(informationJSON{ID: i.ID, Type: i.Type, Data: raw})
}

func (i *Information) UnmarshalJSON(b []byte) error {
	var wire informationJSON
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	data, err := DecodeInformationData(wire.Type, wire.Data)
	if err != nil {
		return err
	}
	i.ID = wire.ID
	i.Type = wire.Type
	i.Data = data
	return nil
}

// InformationList stores a trip's items as a JSONB column, written together
// with the rest of the aggregate row.
type InformationList []Information

func (l InformationList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]Information(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *InformationList) Scan(value any) error {
	if l == nil {
		return fmt.Errorf("domain.InformationList: Scan on nil pointer")
	}
	b, err := jsonColumnBytes(value, "domain.InformationList")
	if err != nil {
		return err
	}
	if b == nil {
		*l = InformationList{}
		return nil
	}
	var items []Information
	if err := json.Unmarshal(b, &items); err != nil {
		return fmt.Errorf("domain.InformationList: %w", err)
	}
	*l = items
	return nil
}

type Trip struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	UserID      uuid.UUID       `db:"user_id" json:"user"`
	Name        string          `db:"name" json:"trip_name"`
	Destination string          `db:"destination" json:"destination"`
	StartDate   time.Time       `db:"start_date" json:"start_date"`
	EndDate     time.Time       `db:"end_date" json:"end_date"`
	PhotoURL    string          `db:"photo_url" json:"photo_url"`
	Budget      float64         `db:"budget" json:"budget"`
	Information InformationList `db:"information" json:"information"`
}

// Item returns the embedded information item with the given id, or nil.
func (t *Trip) Item(id uuid.UUID) *Information {
	for i := range t.Information {
		if t.Information[i].ID == id {
			return &t.Information[i]
		}
	}
	return nil
}

// RemoveItem drops the item with the given id and reports whether it was
// present.
func (t *Trip) RemoveItem(id uuid.UUID) bool {
	for i := range t.Information {
		if t.Information[i].ID == id {
			t.Information = append(t.Information[:i], t.Information[i+1:]...)
			return true
		}
	}
	return false
}

// TotalCost sums the cost of every information item. It is recomputed on
// every call and never persisted, so it always reflects the current items.
func (t *Trip) TotalCost() float64 {
	var total float64
	for _, item := range t.Information {
		if item.Data != nil {
			total += item.Data.CostAmount()
		}
	}
	return total
}
