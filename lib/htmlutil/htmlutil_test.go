package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestTrimmedTexts(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<table><tr>
			<td>  1.23 </td>
			<td><span>+0.01</span></td>
			<td><a href="#">4<b>20</b></a>
			</td>
			<td></td>
			<td>&nbsp;7&nbsp;</td>
		</tr></table>`))
	require.NoError(t, err)

	texts := TrimmedTexts(doc.Find("td"))
	require.Equal(t, []string{"1.23", "+0.01", "420", "", "7"}, texts)
}

func TestGetTextNil(t *testing.T) {
	require.Equal(t, "", GetText(nil))
}
