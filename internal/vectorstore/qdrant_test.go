package vectorstore

import (
	"context"
	"testing"

	"github.com/qdrant/go-client/qdrant"
)

func TestGRPCAddress(t *testing.T) {
	tests := []struct {
		name     string
		urlStr   string
		wantErr  bool
		wantHost string
		wantPort int
	}{
		{
			name:     "default HTTP port",
			urlStr:   "http://localhost:6333",
			wantHost: "localhost",
			wantPort: 6334,
		},
		{
			name:     "custom port",
			urlStr:   "http://qdrant:9000",
			wantHost: "qdrant",
			wantPort: 9001,
		},
		{
			name:     "no port",
			urlStr:   "http://localhost",
			wantHost: "localhost",
			wantPort: 6334,
		},
		{
			name:     "no hostname",
			urlStr:   "http://:6333",
			wantHost: "localhost",
			wantPort: 6334,
		},
		{
			name:    "invalid URL",
			urlStr:  "://invalid",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port, err := grpcAddress(tt.urlStr)
			if tt.wantErr {
				if err == nil {
					t.Error("grpcAddress() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("grpcAddress() error = %v", err)
			}
			if host != tt.wantHost {
				t.Errorf("host = %v, want %v", host, tt.wantHost)
			}
			if port != tt.wantPort {
				t.Errorf("port = %v, want %v", port, tt.wantPort)
			}
		})
	}
}

func TestNewQdrantStore_InvalidURL(t *testing.T) {
	if _, err := NewQdrantStore("://invalid"); err == nil {
		t.Error("NewQdrantStore() with invalid URL should return error")
	}
}

func TestQdrantStore_Search_InvalidK(t *testing.T) {
	store := &QdrantStore{}

	for _, k := range []int{0, -1} {
		if _, err := store.Search(context.Background(), "youtube-transcripts", []float32{1, 2}, k, nil); err == nil {
			t.Errorf("Search() with k=%d should return error", k)
		}
	}
}

func TestBuildFilter(t *testing.T) {
	t.Run("no filters", func(t *testing.T) {
		filter, err := buildFilter(nil)
		if err != nil {
			t.Fatalf("buildFilter() error = %v", err)
		}
		if filter != nil {
			t.Errorf("buildFilter(nil) = %v, want nil", filter)
		}
	})

	t.Run("video scope", func(t *testing.T) {
		filter, err := buildFilter(map[string]any{"video_id": []string{"abc", "def"}})
		if err != nil {
			t.Fatalf("buildFilter() error = %v", err)
		}
		if len(filter.Must) != 1 {
			t.Fatalf("len(Must) = %d, want 1", len(filter.Must))
		}
		field := filter.Must[0].GetField()
		if field.GetKey() != "video_id" {
			t.Errorf("key = %q, want video_id", field.GetKey())
		}
		got := field.GetMatch().GetKeywords().GetStrings()
		if len(got) != 2 || got[0] != "abc" || got[1] != "def" {
			t.Errorf("keywords = %v, want [abc def]", got)
		}
	})

	t.Run("single video", func(t *testing.T) {
		filter, err := buildFilter(map[string]any{"video_id": "abc"})
		if err != nil {
			t.Fatalf("buildFilter() error = %v", err)
		}
		if got := filter.Must[0].GetField().GetMatch().GetKeyword(); got != "abc" {
			t.Errorf("keyword = %q, want abc", got)
		}
	})

	t.Run("keys in sorted order", func(t *testing.T) {
		filter, err := buildFilter(map[string]any{"video_id": "abc", "lang": "en", "chunk_index": 3})
		if err != nil {
			t.Fatalf("buildFilter() error = %v", err)
		}
		want := []string{"chunk_index", "lang", "video_id"}
		for i, cond := range filter.Must {
			if cond.GetField().GetKey() != want[i] {
				t.Errorf("Must[%d] key = %q, want %q", i, cond.GetField().GetKey(), want[i])
			}
		}
	})

	t.Run("empty list rejected", func(t *testing.T) {
		if _, err := buildFilter(map[string]any{"video_id": []string{}}); err == nil {
			t.Error("buildFilter() expected error for empty value list")
		}
	})

	t.Run("unsupported type rejected", func(t *testing.T) {
		if _, err := buildFilter(map[string]any{"video_id": 1.5}); err == nil {
			t.Error("buildFilter() expected error for float value")
		}
	})
}

func TestPointIDString(t *testing.T) {
	tests := []struct {
		name string
		id   *qdrant.PointId
		want string
	}{
		{name: "nil", id: nil, want: ""},
		{name: "uuid", id: qdrant.NewIDUUID("5c56c793-69f3-4fbf-87e6-c4bf54c28c26"), want: "5c56c793-69f3-4fbf-87e6-c4bf54c28c26"},
		{name: "numeric", id: qdrant.NewIDNum(42), want: "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pointIDString(tt.id); got != tt.want {
				t.Errorf("pointIDString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConvertPayloadToMap(t *testing.T) {
	if got := convertPayloadToMap(nil); got == nil || len(got) != 0 {
		t.Errorf("convertPayloadToMap(nil) = %v, want empty map", got)
	}

	payload := qdrant.NewValueMap(map[string]any{
		"video_id":   "abc",
		"start_time": 12.5,
		"end_time":   int64(30),
		"text":       "hello",
	})
	got := convertPayloadToMap(payload)
	if got["video_id"] != "abc" {
		t.Errorf("video_id = %v, want abc", got["video_id"])
	}
	if got["start_time"] != 12.5 {
		t.Errorf("start_time = %v, want 12.5", got["start_time"])
	}
	if got["end_time"] != int64(30) {
		t.Errorf("end_time = %v (%T), want int64 30", got["end_time"], got["end_time"])
	}
	if got["text"] != "hello" {
		t.Errorf("text = %v, want hello", got["text"])
	}
}
