package imagegen

import "testing"

func TestIsLocalEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		want     bool
	}{
		{"http://localhost:7860", true},
		{"http://127.0.0.1:8080", true},
		{"http://192.168.1.100:5000", true},
		{"http://10.0.0.1:8000", true},
		{"http://0.0.0.0:7860", true},
		{"https://api.openai.com/v1", false},
		{"https://sd.example.com", false},
		{"https://10x.example.com", false},
		{"", false},
		{"not a url", false},
	}
	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			if got := IsLocalEndpoint(tt.endpoint); got != tt.want {
				t.Errorf("IsLocalEndpoint(%q) = %v, want %v", tt.endpoint, got, tt.want)
			}
		})
	}
}
