package domain

import "go.trai.ch/zerr"

var (
	// ErrMalformedSpecifier is returned when a dependency specifier does not match the git URL grammar.
	ErrMalformedSpecifier = zerr.New("malformed specifier")

	// ErrUnsupportedSpecifier is returned when a non-git specifier is used and no registry resolver is configured.
	ErrUnsupportedSpecifier = zerr.New("unsupported specifier")

	// ErrRefNotFound is returned when neither a ref nor a commit in the repository matches the requested ref.
	ErrRefNotFound = zerr.New("ref not found")

	// ErrAmbiguousRef is returned when an abbreviated commit prefix matches more than one commit.
	ErrAmbiguousRef = zerr.New("ambiguous ref")

	// ErrFetchFailed is returned when a remote cannot be reached after retries.
	ErrFetchFailed = zerr.New("fetch failed")

	// ErrCommitNotFound is returned when a resolved commit cannot be checked out from the mirror.
	ErrCommitNotFound = zerr.New("commit not found")

	// ErrInstallFailed is returned when placing a package into the install tree fails.
	ErrInstallFailed = zerr.New("install failed")

	// ErrInstallAborted is returned when an install stops because a sibling dependency failed.
	ErrInstallAborted = zerr.New("install aborted")

	// ErrInvalidPackageName is returned when a package name cannot be used as a directory name.
	ErrInvalidPackageName = zerr.New("invalid package name")
)

var (
	// ErrUnknownTransport is returned when settings name a git transport that does not exist.
	ErrUnknownTransport = zerr.New("unknown git transport")

	// ErrManifestNotFound is returned when no manifest file exists in a directory.
	ErrManifestNotFound = zerr.New("manifest not found")

	// ErrManifestReadFailed is returned when the manifest file cannot be read.
	ErrManifestReadFailed = zerr.New("failed to read manifest")

	// ErrManifestParseFailed is returned when the manifest file cannot be decoded.
	ErrManifestParseFailed = zerr.New("failed to parse manifest")

	// ErrManifestWriteFailed is returned when the manifest file cannot be written.
	ErrManifestWriteFailed = zerr.New("failed to write manifest")

	// ErrLockfileReadFailed is returned when the lockfile exists but cannot be read or decoded.
	ErrLockfileReadFailed = zerr.New("failed to read lockfile")

	// ErrLockfileWriteFailed is returned when the lockfile cannot be written.
	ErrLockfileWriteFailed = zerr.New("failed to write lockfile")

	// ErrRecordReadFailed is returned when an installed package record cannot be read.
	ErrRecordReadFailed = zerr.New("failed to read installed record")

	// ErrRecordWriteFailed is returned when an installed package record cannot be written.
	ErrRecordWriteFailed = zerr.New("failed to write installed record")
)
