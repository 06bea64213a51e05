package htmlutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestGetText(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(
		`<html><body><p>Hello <b>there</b></p><script>window.x = '1';</script></body></html>`,
	))
	require.NoError(t, err)
	require.Equal(t, "Hello therewindow.x = '1';", GetText(doc))
	require.Equal(t, "", GetText(nil))
}
