package util

import (
	git "github.com/go-git/go-git/v5"
)

// HeadShortSHA resolves the short commit SHA of HEAD for the repository
// containing dir. It walks up to find the enclosing .git, the same way the
// git CLI does. Returns "" when dir is not inside a repository or HEAD is
// unborn; callers treat the SHA as optional metadata.
func HeadShortSHA(dir string) string {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	return head.Hash().String()[:8]
}
