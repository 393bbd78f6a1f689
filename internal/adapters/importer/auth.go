package importer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// Auth holds the credentials available to the git importer, one per
// transport family. Either may be nil.
type Auth struct {
	SSH  transport.AuthMethod
	HTTP transport.AuthMethod
}

// DetectAuth looks for an SSH key in ~/.ssh and an access token in
// GITHUB_TOKEN, GITLAB_TOKEN or GIT_TOKEN.
func DetectAuth() Auth {
	return Auth{SSH: sshAuth(), HTTP: httpAuth()}
}

// For returns the credentials matching the URL's transport. Public
// repositories work with nil.
func (a Auth) For(url string) transport.AuthMethod {
	ep, err := transport.NewEndpoint(url)
	if err != nil {
		return nil
	}
	switch ep.Protocol {
	case "ssh":
		return a.SSH
	case "http", "https":
		return a.HTTP
	default:
		return nil
	}
}

func sshAuth() transport.AuthMethod {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	for _, name := range []string{"id_ed25519", "id_rsa", "id_ecdsa"} {
		keyPath := filepath.Join(home, ".ssh", name)
		if _, err := os.Stat(keyPath); err != nil {
			continue
		}
		if auth, err := ssh.NewPublicKeysFromFile("git", keyPath, ""); err == nil {
			return auth
		}
	}
	return nil
}

func httpAuth() transport.AuthMethod {
	tokens := []struct{ env, user string }{
		{"GITHUB_TOKEN", "x-access-token"},
		{"GITLAB_TOKEN", "gitlab-ci-token"},
		{"GIT_TOKEN", "git"},
	}
	for _, tok := range tokens {
		if value := strings.TrimSpace(os.Getenv(tok.env)); value != "" {
			return &http.BasicAuth{Username: tok.user, Password: value}
		}
	}
	return nil
}
