package presence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateURLs(t *testing.T) {
	tests := []struct {
		name    string
		apiBase string
		token   string
		want    []string
		wantErr bool
	}{
		{
			name:    "bare origin yields a single candidate",
			apiBase: "http://localhost:8000",
			token:   "tok",
			want:    []string{"ws://localhost:8000/ws/presence?token=tok"},
		},
		{
			name:    "path prefix adds a prefixed fallback",
			apiBase: "http://host/api",
			token:   "tok",
			want: []string{
				"ws://host/ws/presence?token=tok",
				"ws://host/api/ws/presence?token=tok",
			},
		},
		{
			name:    "https maps to wss",
			apiBase: "https://chat.example.com/api",
			token:   "tok",
			want: []string{
				"wss://chat.example.com/ws/presence?token=tok",
				"wss://chat.example.com/api/ws/presence?token=tok",
			},
		},
		{
			name:    "trailing slash is not a prefix",
			apiBase: "http://host/",
			token:   "tok",
			want:    []string{"ws://host/ws/presence?token=tok"},
		},
		{
			name:    "token is escaped",
			apiBase: "http://host",
			token:   "a b&c",
			want:    []string{"ws://host/ws/presence?token=a+b%26c"},
		},
		{
			name:    "missing host fails",
			apiBase: "/just/a/path",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CandidateURLs(tt.apiBase, tt.token)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
