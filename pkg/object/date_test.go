package object

import "testing"

func TestEncodeDateGolden(t *testing.T) {
	tests := []struct {
		name string
		in   Date
		want string
	}{
		{
			name: "utc",
			in:   Date{Seconds: 1500000000, Offset: 0},
			want: "2017-07-14T02:40:00+00:00",
		},
		{
			name: "west of utc inverts to minus",
			in:   Date{Seconds: 1500000000, Offset: 300},
			want: "2017-07-13T21:40:00-05:00",
		},
		{
			name: "east of utc inverts to plus",
			in:   Date{Seconds: 1500000000, Offset: -330},
			want: "2017-07-14T08:10:00+05:30",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := EncodeDate(tc.in); got != tc.want {
				t.Errorf("EncodeDate = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDateRoundTrip(t *testing.T) {
	for _, offset := range []int{-720, -30, 0, 30, 720} {
		d := Date{Seconds: 1413574058, Offset: offset}
		parsed, err := ParseDate(EncodeDate(d))
		if err != nil {
			t.Fatalf("offset %d: %v", offset, err)
		}
		if parsed != d {
			t.Errorf("offset %d: round trip %+v != %+v", offset, parsed, d)
		}
	}
}

func TestParseDateZuluDefaultsOffset(t *testing.T) {
	parsed, err := ParseDate("2017-07-14T02:40:00Z")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if parsed != (Date{Seconds: 1500000000, Offset: 0}) {
		t.Errorf("got %+v", parsed)
	}
}

func TestParseDateMissingZoneDefaultsOffset(t *testing.T) {
	parsed, err := ParseDate("2017-07-14T02:40:00")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if parsed != (Date{Seconds: 1500000000, Offset: 0}) {
		t.Errorf("got %+v", parsed)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	if _, err := ParseDate("not a date"); err == nil {
		t.Error("expected error")
	}
}
