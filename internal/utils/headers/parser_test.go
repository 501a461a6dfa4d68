package headers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaders(t *testing.T) {
	in := []string{"user-agent: Bot", "Accept: text/html", "X-Consent:granted:all", "Accept: */*"}
	out, err := ParseHeaders(in)
	require.NoError(t, err)

	expected := map[string]string{"User-Agent": "Bot", "Accept": "*/*", "X-Consent": "granted:all"}
	assert.Equal(t, expected, out)
}

func TestParseHeaders_Malformed(t *testing.T) {
	for _, bad := range []string{"BadHeader", ": value", "Bad Name: x"} {
		_, err := ParseHeaders([]string{bad})
		assert.Error(t, err, bad)
	}
}
