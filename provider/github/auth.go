// Copyright © 2024 The GHLS authors

package github

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"

	git "github.com/go-git/go-git/v5"
)

var (
	// ErrNoToken is returned when no access token could be found.
	ErrNoToken = errors.New("no GitHub token found")
	// ErrNoRepository is returned when the owner and name of the current
	// repository could not be determined.
	ErrNoRepository = errors.New("no GitHub repository found")
)

// runCommand executes an external command and returns its trimmed stdout.
// Overridable for testing.
var runCommand = func(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// ResolveToken returns configured if set, then $GITHUB_TOKEN, then the
// token of the GitHub CLI ("gh auth token").
func ResolveToken(ctx context.Context, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if tok := os.Getenv("GITHUB_TOKEN"); tok != "" {
		return tok, nil
	}
	tok, err := runCommand(ctx, "gh", "auth", "token")
	if err != nil {
		return "", fmt.Errorf("%w: gh auth token: %v", ErrNoToken, err)
	}
	if tok == "" {
		return "", ErrNoToken
	}
	return tok, nil
}

// DiscoverRepository determines the owner and name of the repository that
// contains dir: first from its "origin" remote, then from the GitHub CLI.
func DiscoverRepository(ctx context.Context, dir string) (owner, name string, err error) {
	owner, name, err = originRepository(dir)
	if err == nil {
		return owner, name, nil
	}
	log.Debugf("origin remote lookup failed: %s", err)
	out, cliErr := runCommand(ctx, "gh", "repo", "view", "--json", "name,owner", "--jq", ".owner.login,.name")
	if cliErr != nil {
		return "", "", fmt.Errorf("%w: %v; gh repo view: %v", ErrNoRepository, err, cliErr)
	}
	owner, name, ok := strings.Cut(out, "\n")
	if !ok || owner == "" || name == "" {
		return "", "", fmt.Errorf("%w: unexpected gh output %q", ErrNoRepository, out)
	}
	return strings.TrimSpace(owner), strings.TrimSpace(name), nil
}

func originRepository(dir string) (string, string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", "", err
	}
	remote, err := repo.Remote("origin")
	if err != nil {
		return "", "", err
	}
	for _, u := range remote.Config().URLs {
		if owner, name, ok := ParseRemoteURL(u); ok {
			return owner, name, nil
		}
	}
	return "", "", fmt.Errorf("%w: origin has no recognizable URL", ErrNoRepository)
}

// ParseRemoteURL extracts owner and repository name from a git remote URL
// in https, ssh or scp-like form.
func ParseRemoteURL(raw string) (owner, name string, ok bool) {
	raw = strings.TrimSpace(raw)
	var path string
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && u.Host != "" {
		path = u.Path
	} else if _, rest, found := strings.Cut(raw, ":"); found && !strings.Contains(raw, "://") {
		// scp-like: git@github.com:owner/repo.git
		path = rest
	} else {
		return "", "", false
	}
	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	parts := strings.Split(path, "/")
	if len(parts) < 2 {
		return "", "", false
	}
	owner, name = parts[len(parts)-2], parts[len(parts)-1]
	if owner == "" || name == "" {
		return "", "", false
	}
	return owner, name, true
}
