// Copyright © 2024 The GHLS authors

package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/ghls/entity"
	"github.com/luthersystems/ghls/ghlstest"
	"github.com/luthersystems/ghls/session"
)

// setConfig overrides a viper key for the duration of the test.
func setConfig(t *testing.T, key string, value any) {
	t.Helper()
	viper.Set(key, value)
	t.Cleanup(func() { viper.Set(key, nil) })
}

func testProvider() *ghlstest.Provider {
	return &ghlstest.Provider{
		Issues: [][]*entity.Issue{{
			{Number: 42, State: entity.StateOpen, Title: "Add integration test for cron job",
				URL: "https://github.com/entur/helm-charts/issues/42"},
			{Number: 7, State: entity.StateClosed, Title: "Bump chart version",
				URL: "https://github.com/entur/helm-charts/pull/7"},
		}},
		Members:   [][]*entity.Member{{{Login: "alice"}, {Login: "bob"}}},
		WikiPages: []*entity.WikiPage{{Title: "Setup", RelativeURI: "/entur/helm-charts/wiki/Setup"}},
		Users:     []*entity.Member{{Login: "octocat"}},
	}
}

func runCache(t *testing.T, p *ghlstest.Provider, args ...string) (string, string, error) {
	t.Helper()
	setConfig(t, "owner", "entur")
	setConfig(t, "repo", "helm-charts")
	cmd := CacheCommand(WithProvider(p))
	var stdout, stderr bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestLSPCommand_DefaultFlags(t *testing.T) {
	cmd := LSPCommand()
	assert.Equal(t, "lsp [flags]", cmd.Use)
	for _, name := range []string{"stdio", "port"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	for _, name := range []string{
		"config", "verbose", "log-file", "token", "owner", "repo", "host",
		"api-url", "per-page", "local-timeout", "remote-timeout",
	} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "missing flag: %s", name)
	}
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "lsp")
	assert.Contains(t, names, "cache")
}

func TestCacheCommand_Issues(t *testing.T) {
	stdout, stderr, err := runCache(t, testProvider(), "issue", "cron")
	require.NoError(t, err)
	assert.Equal(t, "#42 [Open] Add integration test for cron job\n", stdout)
	assert.Contains(t, stderr, "loaded 2 issue")
}

func TestCacheCommand_Detail(t *testing.T) {
	stdout, _, err := runCache(t, testProvider(), "wiki", "set", "--detail")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Setup\n")
	assert.Contains(t, stdout, "    [Setup](https://github.com/entur/helm-charts/wiki/Setup)\n")
}

func TestCacheCommand_AllMembers(t *testing.T) {
	stdout, _, err := runCache(t, testProvider(), "member")
	require.NoError(t, err)
	assert.Contains(t, stdout, "alice\n")
	assert.Contains(t, stdout, "bob\n")
}

func TestCacheCommand_UserSearch(t *testing.T) {
	p := testProvider()
	stdout, _, err := runCache(t, p, "user", "octo")
	require.NoError(t, err)
	assert.Equal(t, "octocat\n", stdout)
	assert.Equal(t, 1, p.Calls(ghlstest.OpSearchUsers))
}

func TestCacheCommand_ReportsLoadErrors(t *testing.T) {
	p := testProvider()
	p.Fail(ghlstest.OpMembers, 0, errors.New("forbidden"))
	stdout, stderr, err := runCache(t, p, "member")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "member: ")
	assert.Contains(t, stderr, "forbidden")
}

func TestCacheCommand_Trace(t *testing.T) {
	_, stderr, err := runCache(t, testProvider(), "issue", "--trace")
	require.NoError(t, err)
	for _, name := range []string{"load issue", "load member", "load repository", "load wiki"} {
		assert.Contains(t, stderr, name)
	}
}

func TestCacheCommand_BadArgs(t *testing.T) {
	_, _, err := runCache(t, testProvider(), "label")
	assert.ErrorContains(t, err, `unknown kind "label"`)

	_, _, err = runCache(t, testProvider())
	assert.Error(t, err)
}

func TestNewSession_FromConfig(t *testing.T) {
	setConfig(t, "owner", "entur")
	setConfig(t, "repo", "helm-charts")
	setConfig(t, "host", "https://ghe.example.com/")
	setConfig(t, "local-timeout", "50ms")
	setConfig(t, "remote-timeout", "2s")

	cfg := newConfig([]Option{WithProvider(testProvider())})
	sess, err := cfg.newSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "entur", sess.Owner)
	assert.Equal(t, "helm-charts", sess.Repo)
	assert.Equal(t, "https://ghe.example.com", sess.Renderer.Host)
	assert.Equal(t, 50*time.Millisecond, sess.LocalBudget)
	assert.Equal(t, 2*time.Second, sess.RemoteBudget)
}

func TestNewSession_DiscoversRepository(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	_, err = repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{"git@github.com:entur/helm-charts.git"},
	})
	require.NoError(t, err)

	setConfig(t, "owner", "")
	setConfig(t, "repo", "")
	cfg := newConfig([]Option{WithProvider(testProvider()), WithDir(dir)})
	sess, err := cfg.newSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "entur", sess.Owner)
	assert.Equal(t, "helm-charts", sess.Repo)
	assert.Equal(t, session.DefaultRemoteBudget, sess.RemoteBudget)
}

func TestNewSession_UsesConfiguredToken(t *testing.T) {
	setConfig(t, "owner", "entur")
	setConfig(t, "repo", "helm-charts")
	setConfig(t, "token", "s3cret")

	cfg := newConfig(nil)
	sess, err := cfg.newSession(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, sess.Provider)
}
