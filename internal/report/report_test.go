package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"wardroster/internal/resources"
	"wardroster/lib/cachedir"
	"wardroster/lib/scrapers/mls"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string {
	return &s
}

var callings = []mls.Calling{
	{Id: 1, Name: "Doe, Jane", Position: "Primary President", Organization: "Primary"},
	{Id: 2, Name: "Roe, Rick", Position: "Bishop", Organization: "Bishopric"},
	{Id: 3, Name: "Poe, Ann", Position: "Teacher", Organization: "Primary", SubOrgType: strp("CTR 7")},
	{Id: 1, Name: "Doe, Jane", Position: "Pianist", Organization: "Music"},
	{Id: 4, Name: "Loe, Sam", Position: "Teacher", Organization: "Primary", SubOrgType: strp("CTR 7")},
	{Id: 5, Name: "Moe, Kim", Position: "Specialist", Organization: "Stake Callings"},
}

func TestGroupCallings(t *testing.T) {
	groups := GroupCallings(callings)

	expected := []Group{
		{Heading: "Bishopric", SubGroups: []SubGroup{
			{Key: "Bishopric", Callings: []mls.Calling{callings[1]}},
		}},
		{Heading: "Primary", SubGroups: []SubGroup{
			{Key: "Primary", Callings: []mls.Calling{callings[0]}},
			{Key: "CTR 7", Callings: []mls.Calling{callings[2], callings[4]}},
		}},
		{Heading: "Music", SubGroups: []SubGroup{
			{Key: "Music", Callings: []mls.Calling{callings[3]}},
		}},
		{Heading: "Stake Callings", SubGroups: []SubGroup{
			{Key: "Stake Callings", Callings: []mls.Calling{callings[5]}},
		}},
	}
	require.Empty(t, cmp.Diff(expected, groups))
}

func TestCountCallings(t *testing.T) {
	require.Equal(t, map[int64]int{1: 2, 2: 1, 3: 1, 4: 1, 5: 1}, CountCallings(callings))
}

func TestWithoutCalling(t *testing.T) {
	members := []mls.Member{
		{Id: 10, Name: "Zed, Al", Age: 50},
		{Id: 11, Name: "Kid, Tim", Age: 11},
		{Id: 12, Name: "Teen, Jo", Age: 12},
		{Id: 1, Name: "Doe, Jane", Age: 40},
	}
	out := WithoutCalling(members, CountCallings(callings))
	require.Equal(t, []mls.Member{members[2], members[0]}, out)
}

func TestBuild(t *testing.T) {
	store := cachedir.NewRawStore(t.TempDir())

	_, err := Build(store)
	require.ErrorIs(t, err, resources.ErrMissingDependency)

	require.NoError(t, store.Write(resources.MembersWithCallings, callings))
	require.NoError(t, store.Write(resources.MemberList, []mls.Member{
		{Id: 1, Name: "Doe, Jane", Age: 40},
		{Id: 20, Name: "Free, Bo", Age: 33},
		{Id: 21, Name: "Tiny, Lu", Age: 3},
	}))

	data, err := Build(store)
	require.NoError(t, err)
	require.Len(t, data.Groups, 4)
	require.Equal(t, 2, data.CallingCounts[1])
	require.Equal(t, []mls.Member{{Id: 20, Name: "Free, Bo", Age: 33}}, data.NoCalling)

	// the dedicated report wins over the member list
	require.NoError(t, store.Write(resources.MembersWithoutCallings, []mls.Member{
		{Id: 30, Name: "Only, One", Age: 15},
	}))
	data, err = Build(store)
	require.NoError(t, err)
	require.Equal(t, []mls.Member{{Id: 30, Name: "Only, One", Age: 15}}, data.NoCalling)
}

func TestRender(t *testing.T) {
	data := Data{
		Groups:        GroupCallings(callings),
		CallingCounts: CountCallings(callings),
		NoCalling:     []mls.Member{{Id: 20, Name: "Free, Bo", Age: 33}},
	}

	var out strings.Builder
	err := Render(&out, "Test Ward", data, func(id int64) string {
		if id == 2 {
			return "photos/solo-2-large.jpg"
		}
		return ""
	})
	require.NoError(t, err)

	html := out.String()
	require.Contains(t, html, "<title>Test Ward</title>")
	require.Contains(t, html, "<h3>CTR 7</h3>")
	require.NotContains(t, html, "<h3>Primary</h3>")
	require.Contains(t, html, `<img src="photos/solo-2-large.jpg"`)
	require.Contains(t, html, `class="multiple">Doe, Jane`)
	require.Contains(t, html, "Free, Bo")
	require.Less(t, strings.Index(html, "Bishopric"), strings.Index(html, "CTR 7"))
}

func TestWriteFileWithCachedPhotos(t *testing.T) {
	root := t.TempDir()
	photos := cachedir.NewPhotoStore(filepath.Join(root, "cache"))
	require.NoError(t, photos.Write(2, "large", []byte("jpeg")))

	outDir := filepath.Join(root, "out")
	data := Data{
		Groups:        GroupCallings(callings),
		CallingCounts: CountCallings(callings),
	}
	path, err := WriteFile(outDir, "Ward", data, CachedPhotos(outDir, photos, "large"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(outDir, "index.html"), path)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), `src="../cache/photos/solo-2-large.jpg"`)
	require.Equal(t, 1, strings.Count(string(contents), "<img"))
}
