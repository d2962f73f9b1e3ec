package browser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCookies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	body := `[
		{"name":"sid","value":"abc","domain":".wanted.co.kr","path":"/","expires":1893456000,"httpOnly":true,"secure":true,"sameSite":"Lax"},
		{"name":"","value":"skip","domain":".wanted.co.kr"},
		{"name":"pref","value":"1","domain":"www.saramin.co.kr","sameSite":"no_restriction"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cookies, err := LoadCookies(path)
	require.NoError(t, err)
	require.Len(t, cookies, 2)

	assert.Equal(t, "sid", cookies[0].Name)
	assert.Equal(t, ".wanted.co.kr", *cookies[0].Domain)
	assert.True(t, *cookies[0].HttpOnly)
	assert.Equal(t, playwright.SameSiteAttributeLax, cookies[0].SameSite)
	assert.Equal(t, "/", *cookies[1].Path)
	assert.Nil(t, cookies[1].Expires)
	assert.Equal(t, playwright.SameSiteAttributeNone, cookies[1].SameSite)
}

func TestLoadCookies_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))

	_, err := LoadCookies(path)
	assert.Error(t, err)
}
