package util

import "testing"

func TestResolveURLPath(t *testing.T) {
	tests := []struct {
		name      string
		baseURL   string
		pathOrURL string
		expected  string
	}{
		{
			name:      "base without trailing slash, root with leading slash",
			baseURL:   "http://localhost:8000",
			pathOrURL: "/modelstatus/v0/model_run",
			expected:  "http://localhost:8000/modelstatus/v0/model_run",
		},
		{
			name:      "base with path prefix and trailing slash",
			baseURL:   "http://status.local/api/",
			pathOrURL: "/productstatus/v0/model_run",
			expected:  "http://status.local/api/productstatus/v0/model_run",
		},
		{
			name:      "root without leading slash",
			baseURL:   "http://localhost:8000",
			pathOrURL: "modelstatus/v0/model_run",
			expected:  "http://localhost:8000/modelstatus/v0/model_run",
		},
		{
			name:      "empty base",
			baseURL:   "",
			pathOrURL: "/modelstatus/v0/model_run",
			expected:  "/modelstatus/v0/model_run",
		},
		{
			name:      "empty root",
			baseURL:   "http://localhost:8000",
			pathOrURL: "",
			expected:  "http://localhost:8000",
		},
		{
			name:      "absolute root overrides base",
			baseURL:   "http://localhost:8000",
			pathOrURL: "https://productstatus.example.com/productstatus/v0/model_run",
			expected:  "https://productstatus.example.com/productstatus/v0/model_run",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveURLPath(tt.baseURL, tt.pathOrURL)
			if got != tt.expected {
				t.Errorf("ResolveURLPath(%q, %q) = %q, want %q", tt.baseURL, tt.pathOrURL, got, tt.expected)
			}
		})
	}
}

func TestResourceItemURL(t *testing.T) {
	tests := []struct {
		name       string
		collection string
		id         string
		expected   string
	}{
		{"numeric id", "http://localhost:8000/modelstatus/v0/model_run", "42", "http://localhost:8000/modelstatus/v0/model_run/42"},
		{"trailing slash on collection", "http://localhost:8000/modelstatus/v0/model_run/", "42", "http://localhost:8000/modelstatus/v0/model_run/42"},
		{"uuid id", "http://h/productstatus/v0/model_run", "0e1f4b6a-5b0c-4f3c-9d1a-3a7f7f0d2c11", "http://h/productstatus/v0/model_run/0e1f4b6a-5b0c-4f3c-9d1a-3a7f7f0d2c11"},
		{"slash is escaped", "http://h/modelstatus/v0/model_run", "../admin", "http://h/modelstatus/v0/model_run/..%2Fadmin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResourceItemURL(tt.collection, tt.id); got != tt.expected {
				t.Errorf("ResourceItemURL(%q, %q) = %q, want %q", tt.collection, tt.id, got, tt.expected)
			}
		})
	}
}
