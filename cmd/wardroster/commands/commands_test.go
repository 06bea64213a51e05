package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"wardroster/internal/config"
	"wardroster/internal/resources"
	"wardroster/lib/cachedir"
	"wardroster/lib/scrapers/mls"
	"wardroster/lib/scrapers/mls/mlstest"

	"github.com/stretchr/testify/require"
)

var jpeg = []byte{0xff, 0xd8, 0xff, 0xe0, 'j', 'p', 'e', 'g'}

type fakePrompter struct {
	username string
	password string
	asked    int
}

func (p *fakePrompter) Prompt(label string) (string, error) {
	p.asked++
	return p.username, nil
}

func (p *fakePrompter) PromptSecret(label string) (string, error) {
	p.asked++
	return p.password, nil
}

type fixture struct {
	server   *mlstest.Server
	prompter *fakePrompter
	config   string
	cacheDir string
	outDir   string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	t.Setenv(config.EnvUsername, "")
	t.Setenv(config.EnvPassword, "")

	server := mlstest.NewServer()
	t.Cleanup(server.Close)
	server.MemberList = []map[string]any{
		{"id": 1, "name": "Doe, Jane", "age": 40},
		{"id": 2, "name": "Roe, Richard", "age": 35},
		{"id": 3, "name": "Poe, Penny", "age": 8},
	}
	server.MembersWithCallings = []map[string]any{
		{"id": 1, "name": "Doe, Jane", "position": "Relief Society President", "organization": "Relief Society"},
	}
	server.MembersWithoutCallings = []map[string]any{
		{"id": 2, "name": "Roe, Richard", "age": 35},
		{"id": 3, "name": "Poe, Penny", "age": 8},
	}
	server.Photos[1] = mlstest.Photo{ContentType: "image/jpeg", Data: jpeg}

	dir := t.TempDir()
	f := fixture{
		server:   server,
		prompter: &fakePrompter{username: server.Username, password: server.Password},
		config:   filepath.Join(dir, "wardroster.json5"),
		cacheDir: filepath.Join(dir, "cache"),
		outDir:   filepath.Join(dir, "out"),
	}

	contents, err := json.Marshal(map[string]any{
		"cache_dir":                 f.cacheDir,
		"output_dir":                f.outDir,
		"title":                     "Test Ward",
		"ident_url":                 server.URL,
		"base_url":                  server.URL,
		"disable_cloudflare_bypass": true,
		"batch_delay_ms":            -1,
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(f.config, contents, 0o644))

	promptOverride = f.prompter
	t.Cleanup(func() { promptOverride = nil })
	return f
}

func (f fixture) execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--config", f.config))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRunEndToEnd(t *testing.T) {
	f := newFixture(t)

	out, err := f.execute(t, "run")
	require.NoError(t, err)
	require.Contains(t, out, "fetched unit_number")
	require.Contains(t, out, "1 written, 2 without photo")

	photos := cachedir.NewPhotoStore(f.cacheDir)
	exists, err := photos.Exists(1, "large")
	require.NoError(t, err)
	require.True(t, exists)

	page, err := os.ReadFile(filepath.Join(f.outDir, "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(page), "<title>Test Ward</title>")
	require.Contains(t, string(page), "Relief Society President")
	require.Contains(t, string(page), "Roe, Richard")
	require.NotContains(t, string(page), "Poe, Penny")
	require.Contains(t, string(page), `src="../cache/photos/solo-1-large.jpg"`)

	require.Equal(t, 1, f.server.LoginPosts())
	require.Equal(t, 2, f.prompter.asked)
}

func TestRefreshDoesNotLoginWhenCached(t *testing.T) {
	f := newFixture(t)

	_, err := f.execute(t, "refresh")
	require.NoError(t, err)
	require.Equal(t, 1, f.server.LoginPosts())

	f.prompter.asked = 0
	out, err := f.execute(t, "refresh")
	require.NoError(t, err)
	require.Contains(t, out, "cached  members_with_callings")
	require.Equal(t, 1, f.server.LoginPosts())
	require.Equal(t, 0, f.prompter.asked)
}

func TestRefreshDumpHttp(t *testing.T) {
	f := newFixture(t)
	dump := filepath.Join(t.TempDir(), "dump")

	_, err := f.execute(t, "refresh", "--dump-http", dump)
	require.NoError(t, err)

	entries, err := os.ReadDir(dump)
	require.NoError(t, err)
	// login page, login form, member list page and the three reports
	require.Len(t, entries, 6)

	var login string
	for _, e := range entries {
		contents, err := os.ReadFile(filepath.Join(dump, e.Name()))
		require.NoError(t, err)
		require.NotContains(t, string(contents), "IDToken2="+f.server.Password)
		if strings.Contains(string(contents), "IDToken2=") {
			login = string(contents)
		}
	}
	require.Contains(t, login, "POST "+f.server.URL+"/sso/UI/Login")
	require.Contains(t, login, "IDToken2=<redacted>")
	require.Contains(t, login, "IDToken1="+f.server.Username)
}

func TestRefreshForce(t *testing.T) {
	f := newFixture(t)

	_, err := f.execute(t, "refresh")
	require.NoError(t, err)

	f.server.MembersWithCallings = []map[string]any{
		{"id": 2, "name": "Roe, Richard", "position": "Bishop", "organization": "Bishopric"},
	}
	out, err := f.execute(t, "refresh", "--force", resources.MembersWithCallings)
	require.NoError(t, err)
	require.Contains(t, out, "fetched members_with_callings")
	require.Contains(t, out, "cached  member_list")
	require.Equal(t, 2, f.server.Requests("/mls/mbr/services/report/members-with-callings"))
	require.Equal(t, 1, f.server.Requests("/mls/mbr/services/report/member-list"))

	_, err = f.execute(t, "refresh", "--force", "everything")
	require.ErrorContains(t, err, `unknown resource "everything"`)
}

func TestPhotosWithoutMemberList(t *testing.T) {
	f := newFixture(t)

	_, err := f.execute(t, "photos")
	require.ErrorIs(t, err, resources.ErrMissingDependency)
	require.Equal(t, 0, f.server.LoginPosts())
}

func TestPhotosRejectsUnknownSize(t *testing.T) {
	f := newFixture(t)

	_, err := f.execute(t, "photos", "--size", "huge")
	require.ErrorContains(t, err, `photo size "huge"`)
}

func TestReportRejectsUnknownSize(t *testing.T) {
	f := newFixture(t)

	_, err := f.execute(t, "refresh")
	require.NoError(t, err)

	_, err = f.execute(t, "report", "--size", "huge")
	require.ErrorContains(t, err, `photo size "huge"`)
	_, err = os.Stat(filepath.Join(f.outDir, "index.html"))
	require.True(t, os.IsNotExist(err))
}

func TestWrongPassword(t *testing.T) {
	f := newFixture(t)
	f.prompter.password = "wrong"

	_, err := f.execute(t, "refresh")
	var authErr *mls.AuthenticationError
	require.True(t, errors.As(err, &authErr))

	entries, err := cachedir.NewRawStore(f.cacheDir).List()
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestStatus(t *testing.T) {
	f := newFixture(t)

	out, err := f.execute(t, "status")
	require.NoError(t, err)
	require.Contains(t, out, "missing")

	_, err = f.execute(t, "run", "--skip-photos")
	require.NoError(t, err)

	out, err = f.execute(t, "status")
	require.NoError(t, err)
	require.NotContains(t, out, "missing")
	require.Contains(t, out, "members_without_callings")
	require.Contains(t, out, "thumbnail")
}
