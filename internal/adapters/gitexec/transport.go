// Package gitexec implements the git transport by running the git binary.
package gitexec

import (
	"archive/tar"
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"go.trai.ch/twig/internal/core/domain"
	"go.trai.ch/twig/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.GitTransport = (*Transport)(nil)

// gitEnv keeps git non-interactive and its output parseable.
var gitEnv = map[string]string{
	"GIT_TERMINAL_PROMPT": "0",
	"LC_ALL":              "C",
}

// Transport implements ports.GitTransport using os/exec.
type Transport struct {
	logger ports.Logger
	git    string
	env    []string
}

// NewTransport creates a Transport, locating git on the PATH.
func NewTransport(logger ports.Logger) (*Transport, error) {
	env := resolveEnvironment(os.Environ(), gitEnv)
	git, err := lookPath("git", env)
	if err != nil {
		return nil, zerr.Wrap(err, "git executable not found on PATH")
	}
	return &Transport{logger: logger, git: git, env: env}, nil
}

// ListRefs runs git ls-remote.
func (t *Transport) ListRefs(ctx context.Context, url string) ([]domain.RemoteRef, error) {
	out, err := t.output(ctx, "", "ls-remote", url)
	if err != nil {
		return nil, zerr.With(err, "url", url)
	}

	var refs []domain.RemoteRef
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		commit, name, ok := strings.Cut(scanner.Text(), "\t")
		if !ok || !domain.IsFullCommit(commit) {
			continue
		}
		refs = append(refs, domain.RemoteRef{Name: name, Commit: commit})
	}
	return refs, nil
}

// SyncMirror clones url as a mirror into dir, or fetches into an existing mirror.
func (t *Transport) SyncMirror(ctx context.Context, url, dir string) error {
	if _, err := os.Stat(filepath.Join(dir, "HEAD")); err == nil {
		_, err := t.output(ctx, dir, "fetch", "--prune", "--force", "--tags", "origin", "+refs/*:refs/*")
		return err
	}

	if err := os.RemoveAll(dir); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove incomplete mirror"), "path", dir)
	}
	_, err := t.output(ctx, "", "clone", "--mirror", "--quiet", "--", url, dir)
	return err
}

// Commits runs git rev-list --all against the mirror.
func (t *Transport) Commits(ctx context.Context, dir string) ([]string, error) {
	out, err := t.output(ctx, dir, "rev-list", "--all")
	if err != nil {
		return nil, err
	}
	return strings.Fields(string(out)), nil
}

// Checkout streams git archive of commit into dest.
func (t *Transport) Checkout(ctx context.Context, dir, commit, dest string) error {
	if _, err := t.output(ctx, dir, "cat-file", "-e", commit+"^{commit}"); err != nil {
		return zerr.With(zerr.Wrap(err, "object not found"), "commit", commit)
	}

	cmd := t.command(ctx, dir, "archive", "--format=tar", commit)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return zerr.Wrap(err, "failed to open git archive output")
	}
	stderr := &logWriter{logger: t.logger}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return zerr.Wrap(err, "failed to start git archive")
	}

	extractErr := extract(tar.NewReader(stdout), dest)
	if extractErr != nil {
		_, _ = io.Copy(io.Discard, stdout)
	}
	if err := cmd.Wait(); err != nil {
		return commandError(err, stderr, "archive")
	}
	return extractErr
}

func (t *Transport) command(ctx context.Context, dir string, args ...string) *exec.Cmd {
	if dir != "" {
		args = append([]string{"--git-dir", dir}, args...)
	}
	cmd := exec.CommandContext(ctx, t.git, args...) //nolint:gosec // Arguments are built by the transport
	cmd.Env = t.env
	return cmd
}

func (t *Transport) output(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := t.command(ctx, dir, args...)
	var stdout bytes.Buffer
	stderr := &logWriter{logger: t.logger}
	cmd.Stdout = &stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return nil, commandError(err, stderr, args[0])
	}
	return stdout.Bytes(), nil
}

func commandError(err error, stderr *logWriter, op string) error {
	var exitCode int
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	} else {
		exitCode = -1 // Unknown or signal
	}

	err = zerr.With(zerr.Wrap(err, "git "+op+" failed"), "exit_code", exitCode)
	if tail := stderr.tail(); tail != "" {
		err = zerr.With(err, "stderr", tail)
	}
	return err
}

// extract writes the regular files, directories and symlinks of an archive below dest.
func extract(tr *tar.Reader, dest string) error {
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return zerr.Wrap(err, "failed to read archive")
		}

		name := filepath.FromSlash(strings.TrimSuffix(hdr.Name, "/"))
		if name == "" || !filepath.IsLocal(name) {
			continue
		}
		p := filepath.Join(dest, name)

		switch hdr.Typeflag {
		case tar.TypeDir:
			err = os.MkdirAll(p, domain.DirPerm)
		case tar.TypeReg:
			err = writeFile(p, tr, hdr.FileInfo().Mode())
		case tar.TypeSymlink:
			if err = os.MkdirAll(filepath.Dir(p), domain.DirPerm); err == nil {
				err = os.Symlink(hdr.Linkname, p)
			}
		default:
			continue
		}
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to extract archive entry"), "path", p)
		}
	}
}

func writeFile(p string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(p), domain.DirPerm); err != nil {
		return err
	}

	perm := os.FileMode(domain.FilePerm)
	if mode&0o111 != 0 {
		perm = 0o755
	}

	f, err := os.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm) //nolint:gosec // Path is checked to stay below dest
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil { //nolint:gosec // Archive comes from a local mirror
		_ = f.Close()
		return err
	}
	return f.Close()
}

// logWriter forwards git's stderr to the debug log and keeps the last lines for error reports.
type logWriter struct {
	logger ports.Logger

	mu    sync.Mutex
	buf   []byte
	lines []string
}

const tailLines = 5

func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.emit(string(w.buf[:i]))
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

func (w *logWriter) emit(line string) {
	line = strings.TrimRight(line, "\r")
	if line == "" {
		return
	}
	w.logger.Debug("git: " + line)
	w.lines = append(w.lines, line)
	if len(w.lines) > tailLines {
		w.lines = w.lines[len(w.lines)-tailLines:]
	}
}

func (w *logWriter) tail() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.buf) > 0 {
		w.emit(string(w.buf))
		w.buf = nil
	}
	return strings.Join(w.lines, "\n")
}

// resolveEnvironment overlays overrides on the system environment.
func resolveEnvironment(sysEnv []string, overrides map[string]string) []string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if ok {
			envMap[k] = v
		}
	}

	for k, v := range overrides {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	return result
}

// lookPath searches for an executable in the directories named by the PATH environment variable.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := filepath.Join(dir, file)
		if err := findExecutable(path); err == nil {
			return path, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
