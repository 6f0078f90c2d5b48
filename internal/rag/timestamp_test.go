package rag

import "testing"

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{5, "0:05"},
		{59, "0:59"},
		{125, "2:05"},
		{600, "10:00"},
		{3599, "59:59"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
		{36000, "10:00:00"},
		{-5, "0:00"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.seconds); got != tt.want {
			t.Errorf("FormatTimestamp(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		token  string
		want   int
		wantOK bool
	}{
		{"2:05", 125, true},
		{"02:05", 125, true},
		{"12:34", 754, true},
		{"1:02:05", 3725, true},
		{"01:02:05", 3725, true},
		{"0:07.5", 7, true},
		{" 3:10 ", 190, true},
		{"99:99:99", 0, false},
		{"1:60:00", 0, false},
		{"1:75", 0, false},
		{"1:5", 0, false},
		{"123:45", 0, false},
		{"125", 0, false},
		{"", 0, false},
		{"abc", 0, false},
		{"1:02:03:04", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseTimestamp(tt.token)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseTimestamp(%q) = (%d, %v), want (%d, %v)", tt.token, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseTimestamp_RoundTrip(t *testing.T) {
	for _, seconds := range []int{0, 1, 65, 125, 3599, 3600, 3725, 86399} {
		got, ok := ParseTimestamp(FormatTimestamp(seconds))
		if !ok || got != seconds {
			t.Errorf("ParseTimestamp(FormatTimestamp(%d)) = (%d, %v)", seconds, got, ok)
		}
	}
}

func TestWatchLink(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		id      string
		seconds int
		want    string
	}{
		{
			name:    "default base",
			id:      "dQw4w9WgXcQ",
			seconds: 125,
			want:    "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=125s",
		},
		{
			name:    "custom base",
			base:    "https://youtu.be/watch",
			id:      "abc",
			seconds: 0,
			want:    "https://youtu.be/watch?v=abc&t=0s",
		},
		{
			name:    "escaped id",
			base:    DefaultWatchURLBase,
			id:      "a&b",
			seconds: 3,
			want:    "https://www.youtube.com/watch?v=a%26b&t=3s",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WatchLink(tt.base, tt.id, tt.seconds); got != tt.want {
				t.Errorf("WatchLink() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFloorSeconds(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{12.99, 12},
		{-3, 0},
	}
	for _, tt := range tests {
		if got := floorSeconds(tt.in); got != tt.want {
			t.Errorf("floorSeconds(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
