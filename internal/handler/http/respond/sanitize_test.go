package respond

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want string
	}{
		{name: "nil", in: nil, want: ""},
		{
			name: "query parameter",
			in:   errors.New(`Get "https://content.guardianapis.com/search?api-key=abc123&q=go": timeout`),
			want: `Get "https://content.guardianapis.com/search?api-key=****&q=go": timeout`,
		},
		{
			name: "camel case parameter",
			in:   errors.New("url /everything?apiKey=xyz failed"),
			want: "url /everything?apiKey=**** failed",
		},
		{
			name: "header",
			in:   errors.New("request header X-Api-Key: deadbeef rejected"),
			want: "request header X-Api-Key: **** rejected",
		},
		{
			name: "dsn password",
			in:   errors.New("connect postgres://news:s3cret@db:5432/newshub: refused"),
			want: "connect postgres://news:****@db:5432/newshub: refused",
		},
		{name: "nothing to mask", in: errors.New("plain failure"), want: "plain failure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeError(tt.in))
		})
	}
}
