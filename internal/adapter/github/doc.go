// Package github integrates with the GitHub Pull Request API: fetching the
// unified diff for a pull request and posting accepted feedback back as
// line-anchored review comments.
package github
