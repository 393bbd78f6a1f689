package importer

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/melih/patchwork-docker/internal/core/domain"
	"github.com/sirupsen/logrus"
)

// GitImporter clones a git repository, optionally at the branch, tag or
// commit named by the origin's fragment, e.g.
// https://example.com/repo.git#branch_tag_or_commit.
type GitImporter struct {
	tempRoot string
	auth     Auth
}

func NewGitImporter(tempRoot string, auth Auth) *GitImporter {
	return &GitImporter{tempRoot: tempRoot, auth: auth}
}

// Load clones the repository into destination and checks out the fragment.
func (i *GitImporter) Load(ctx context.Context, origin, destination string) (string, error) {
	url, ref := domain.SplitFragment(origin)

	dest, owned, err := destinationDir(i.tempRoot, destination)
	if err != nil {
		return "", err
	}
	fail := func(err error) (string, error) {
		if owned {
			os.RemoveAll(dest)
		}
		return "", err
	}

	log := logrus.WithFields(logrus.Fields{"origin": url, "ref": ref, "context": dest})
	log.Info("cloning repository")

	progress := logrus.StandardLogger().WriterLevel(logrus.DebugLevel)
	defer progress.Close()

	repo, err := git.PlainCloneContext(ctx, dest, false, &git.CloneOptions{
		URL:      url,
		Auth:     i.auth.For(url),
		Tags:     git.AllTags,
		Progress: progress,
	})
	if err != nil {
		return fail(fmt.Errorf("%w: cloning %s: %v", domain.ErrImport, url, err))
	}

	if ref != "" {
		if err := checkoutRef(repo, ref); err != nil {
			return fail(err)
		}
		log.Debug("checked out ref")
	}
	return dest, nil
}

// Checks out the local branch named ref, creating it first when missing. A
// new branch starts at origin/<ref> if that remote branch exists, otherwise at
// whatever commit ref resolves to (tag or hash).
func checkoutRef(repo *git.Repository, ref string) error {
	branch := plumbing.NewBranchReferenceName(ref)

	if _, err := repo.Reference(branch, true); err != nil {
		if !errors.Is(err, plumbing.ErrReferenceNotFound) {
			return fmt.Errorf("%w: %s: %v", domain.ErrResolution, ref, err)
		}
		start, err := startPoint(repo, ref)
		if err != nil {
			return err
		}
		if err := repo.Storer.SetReference(plumbing.NewHashReference(branch, start)); err != nil {
			return fmt.Errorf("%w: creating branch %s: %v", domain.ErrImport, ref, err)
		}
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("%w: failed to get worktree: %v", domain.ErrImport, err)
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Branch: branch}); err != nil {
		return fmt.Errorf("%w: checking out %s: %v", domain.ErrImport, ref, err)
	}
	return nil
}

func startPoint(repo *git.Repository, ref string) (plumbing.Hash, error) {
	remote, err := repo.Reference(plumbing.NewRemoteReferenceName(git.DefaultRemoteName, ref), true)
	if err == nil {
		return remote.Hash(), nil
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: %q matches no branch, tag or commit: %v", domain.ErrResolution, ref, err)
	}
	return *hash, nil
}
