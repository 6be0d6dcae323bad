package liberty

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/etnz/billsync"
	"github.com/shopspring/decimal"
)

// envelope is the payload of the usage API.
//
//	{
//	  "Result": {
//	    "electricUsages": [
//	      {
//	        "accountNumber": "200008980241",
//	        "meterNumber": "L123456",
//	        "readingDate": "2025-03-13T00:00:00Z",
//	        "readingFrom": "2025-02-11T00:00:00Z",
//	        "readingTo": "2025-03-13T00:00:00Z",
//	        "usageValue": 500,
//	        "usageCost": 75.0,
//	        "uom": "KWH"
//	      }
//	    ]
//	  }
//	}
type envelope struct {
	Result *struct {
		ElectricUsages []usage `json:"electricUsages"`
	} `json:"Result"`
}

type usage struct {
	AccountNumber flexString      `json:"accountNumber"`
	MeterNumber   flexString      `json:"meterNumber"`
	ReadingDate   string          `json:"readingDate"`
	ReadingFrom   string          `json:"readingFrom"`
	ReadingTo     string          `json:"readingTo"`
	UsageValue    decimal.Decimal `json:"usageValue"`
	UsageCost     decimal.Decimal `json:"usageCost"`
	UOM           string          `json:"uom"`
}

// flexString is a string that the API sometimes sends as a number.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("want a string or a number, got %s", data)
	}
	*s = flexString(num.String())
	return nil
}

// decodeReading extracts the first usage record of a usage API payload.
func decodeReading(data []byte) (billsync.Reading, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return billsync.Reading{}, fmt.Errorf("%w: could not decode usage json: %v", billsync.ErrNoData, err)
	}
	if env.Result == nil || len(env.Result.ElectricUsages) == 0 {
		return billsync.Reading{}, fmt.Errorf("%w: empty usage list", billsync.ErrNoData)
	}

	u := env.Result.ElectricUsages[0]
	r := billsync.Reading{
		AccountNumber: string(u.AccountNumber),
		MeterNumber:   string(u.MeterNumber),
		Usage:         u.UsageValue,
		Cost:          u.UsageCost,
		UnitOfMeasure: u.UOM,
	}
	var err error
	if r.ReadingDate, err = parseTimestamp(u.ReadingDate); err != nil {
		return billsync.Reading{}, fmt.Errorf("%w: invalid readingDate: %v", billsync.ErrNoData, err)
	}
	// the billing period is informational, it may be missing
	if u.ReadingFrom != "" {
		if r.ReadingFrom, err = parseTimestamp(u.ReadingFrom); err != nil {
			return billsync.Reading{}, fmt.Errorf("%w: invalid readingFrom: %v", billsync.ErrNoData, err)
		}
	}
	if u.ReadingTo != "" {
		if r.ReadingTo, err = parseTimestamp(u.ReadingTo); err != nil {
			return billsync.Reading{}, fmt.Errorf("%w: invalid readingTo: %v", billsync.ErrNoData, err)
		}
	}
	return r, nil
}

var timestampFormats = []string{
	"2006-01-02T15:04:05", // also reads fractional seconds
	"2006-01-02T15:04",
	time.RFC3339Nano,
	"2006-01-02",
}

// parseTimestamp parses an ISO-8601 timestamp. A trailing "Z" is dropped
// first, so the API timestamps are read as local wall clock values in UTC.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "Z")
	var err error
	for _, format := range timestampFormats {
		var t time.Time
		if t, err = time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
}
