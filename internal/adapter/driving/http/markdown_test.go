package httphandler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommentHTML(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		contains []string
		excludes []string
	}{
		{name: "empty", text: ""},
		{
			name:     "emphasis",
			text:     "looks **good**",
			contains: []string{"<strong>good</strong>"},
		},
		{
			name:     "newline is a line break",
			text:     "first\nsecond",
			contains: []string{"first<br", "second"},
		},
		{
			name:     "script stripped",
			text:     "hi <script>alert(1)</script>",
			contains: []string{"hi"},
			excludes: []string{"<script", "alert(1)"},
		},
		{
			name:     "bare url linked",
			text:     "see https://example.com/docs",
			contains: []string{`href="https://example.com/docs"`, `rel="nofollow`, `target="_blank"`},
		},
		{
			name:     "gfm table",
			text:     "| a | b |\n|---|---|\n| 1 | 2 |",
			contains: []string{"<table>", "<td>1</td>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := commentHTML(tt.text)
			if tt.text == "" {
				assert.Empty(t, got)
				return
			}
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, bad := range tt.excludes {
				assert.NotContains(t, got, bad)
			}
		})
	}
}
