// Package shell implements a line oriented command loop over a provider, one
// command per host file system operation.
package shell

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/brettbedarf/memfs"
	"github.com/brettbedarf/memfs/internal/util"
	"github.com/brettbedarf/memfs/provider"
)

// ErrExit is returned by Exec for the exit command
var ErrExit = errors.New("exit")

// Shell executes commands against the providers of a registry. Bare paths
// resolve against the default provider.
type Shell struct {
	reg  *provider.Registry
	def  *provider.Provider
	out  io.Writer
	outM sync.Mutex // Serializes writes from commands and watchers

	mu       sync.Mutex // Protects watchers
	watchers map[string]*provider.Watcher
	wg       sync.WaitGroup
}

func New(reg *provider.Registry, def *provider.Provider, out io.Writer) *Shell {
	return &Shell{
		reg:      reg,
		def:      def,
		out:      out,
		watchers: map[string]*provider.Watcher{},
	}
}

type command struct {
	usage string
	help  string
	run   func(s *Shell, args string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"stat":    {"stat <uri>", "show the metadata of a file or directory", (*Shell).stat},
		"ls":      {"ls [uri]", "list a directory", (*Shell).ls},
		"cat":     {"cat <uri>", "print the content of a file", (*Shell).cat},
		"mkdir":   {"mkdir <uri>", "create a directory", (*Shell).mkdir},
		"write":   {"write <uri> [content]", "create or replace a file", (*Shell).write},
		"mv":      {"mv [-o] <src> <dst>", "rename; -o replaces an existing target", (*Shell).mv},
		"cp":      {"cp [-o] <src> <dst>", "copy; -o replaces an existing target", (*Shell).cp},
		"rm":      {"rm [-r] <uri>", "delete; -r removes non-empty directories", (*Shell).rm},
		"tree":    {"tree [uri]", "print a directory tree", (*Shell).tree},
		"watch":   {"watch [-r] <uri>", "report changes; -r includes the whole subtree", (*Shell).watch},
		"unwatch": {"unwatch <id>", "stop a watcher", (*Shell).unwatch},
		"help":    {"help", "show this help", (*Shell).help},
		"exit":    {"exit", "leave the shell", func(*Shell, string) error { return ErrExit }},
	}
}

// Run reads commands from in until EOF, exit or ctx is cancelled. Command
// errors are printed and do not stop the loop.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	defer s.Close()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			err := s.Exec(line)
			if errors.Is(err, ErrExit) {
				return nil
			}
			if err != nil {
				s.printf("error: %v\n", err)
			}
		}
	}
}

// Exec runs a single command line. Blank lines and lines starting with '#' are ignored.
func (s *Shell) Exec(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	name, args, _ := strings.Cut(line, " ")
	if name == "quit" {
		name = "exit"
	}
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q (try help)", name)
	}

	logger := util.GetLogger("Shell")
	logger.Trace().Str("cmd", name).Str("args", args).Msg("Exec called")
	return cmd.run(s, strings.TrimSpace(args))
}

// Close disposes every watcher and waits for their output to drain
func (s *Shell) Close() {
	s.mu.Lock()
	for id, w := range s.watchers {
		w.Dispose()
		delete(s.watchers, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Shell) printf(format string, a ...any) {
	s.outM.Lock()
	defer s.outM.Unlock()
	fmt.Fprintf(s.out, format, a...)
}

// resolve accepts `scheme:/path` for any registered provider or a bare path for the default one
func (s *Shell) resolve(arg string) (*provider.Provider, provider.URI, error) {
	if arg == "" {
		return nil, provider.URI{}, errors.New("missing uri")
	}
	if strings.HasPrefix(arg, "/") {
		uri, err := provider.ParseURI(s.def.Scheme() + ":" + arg)
		return s.def, uri, err
	}
	return s.reg.Resolve(arg)
}

// flags splits leading single letter flags (e.g. -r) from the positional args
func flags(args string) (set []string, rest []string) {
	fields := strings.Fields(args)
	for len(fields) > 0 && len(fields[0]) == 2 && fields[0][0] == '-' {
		set = append(set, fields[0][1:])
		fields = fields[1:]
	}
	return set, fields
}

// resolvePair resolves <src> <dst>; the source picks the provider
func (s *Shell) resolvePair(rest []string) (*provider.Provider, provider.URI, provider.URI, error) {
	if len(rest) != 2 {
		return nil, provider.URI{}, provider.URI{}, errors.New("expected <src> <dst>")
	}
	p, src, err := s.resolve(rest[0])
	if err != nil {
		return nil, provider.URI{}, provider.URI{}, err
	}
	_, dst, err := s.resolve(rest[1])
	if err != nil {
		return nil, provider.URI{}, provider.URI{}, err
	}
	return p, src, dst, nil
}

// statJSON is the stat output shape: the host field names in lower camel case
type statJSON struct {
	Type  provider.FileType `json:"type"`
	Ctime int64             `json:"ctime"`
	Mtime int64             `json:"mtime"`
	Size  int64             `json:"size"`
}

func (s *Shell) stat(args string) error {
	p, uri, err := s.resolve(args)
	if err != nil {
		return err
	}
	st, err := p.Stat(uri)
	if err != nil {
		return err
	}
	out, err := json.Marshal(statJSON(st))
	if err != nil {
		return err
	}
	s.printf("File stat for '%s': %s\n", uri, out)
	return nil
}

func (s *Shell) ls(args string) error {
	if args == "" {
		args = "/"
	}
	p, uri, err := s.resolve(args)
	if err != nil {
		return err
	}
	entries, err := p.ReadDirectory(uri)
	if err != nil {
		return err
	}
	for _, e := range entries {
		s.printf("%s: %s\n", e.Type, e.Name)
	}
	return nil
}

func (s *Shell) cat(args string) error {
	p, uri, err := s.resolve(args)
	if err != nil {
		return err
	}
	data, err := p.ReadFile(uri)
	if err != nil {
		return err
	}
	s.printf("File: '%s', content: '%s'\n", uri, data)
	return nil
}

func (s *Shell) mkdir(args string) error {
	p, uri, err := s.resolve(args)
	if err != nil {
		return err
	}
	if err := p.CreateDirectory(uri); err != nil {
		return err
	}
	s.printf("Directory '%s' created\n", uri)
	return nil
}

// write keeps the content verbatim, including inner spacing
func (s *Shell) write(args string) error {
	target, content, _ := strings.Cut(args, " ")
	p, uri, err := s.resolve(target)
	if err != nil {
		return err
	}
	if err := p.WriteFile(uri, []byte(content), memfs.WriteOptions{Create: true, Overwrite: true}); err != nil {
		return err
	}
	s.printf("Content '%s' written to '%s'\n", content, uri)
	return nil
}

func (s *Shell) mv(args string) error {
	set, rest := flags(args)
	p, src, dst, err := s.resolvePair(rest)
	if err != nil {
		return err
	}
	if err := p.Rename(src, dst, memfs.RenameOptions{Overwrite: slices.Contains(set, "o")}); err != nil {
		return err
	}
	s.printf("Renamed from '%s' to '%s'\n", src, dst)
	return nil
}

func (s *Shell) cp(args string) error {
	set, rest := flags(args)
	p, src, dst, err := s.resolvePair(rest)
	if err != nil {
		return err
	}
	if err := p.Copy(src, dst, memfs.CopyOptions{Overwrite: slices.Contains(set, "o")}); err != nil {
		return err
	}
	s.printf("'%s' copied to '%s'\n", src, dst)
	return nil
}

func (s *Shell) rm(args string) error {
	set, rest := flags(args)
	if len(rest) != 1 {
		return errors.New("expected <uri>")
	}
	p, uri, err := s.resolve(rest[0])
	if err != nil {
		return err
	}
	if err := p.Delete(uri, memfs.DeleteOptions{Recursive: slices.Contains(set, "r")}); err != nil {
		return err
	}
	s.printf("File '%s' deleted\n", uri)
	return nil
}

func (s *Shell) tree(args string) error {
	if args == "" {
		args = "/"
	}
	p, uri, err := s.resolve(args)
	if err != nil {
		return err
	}
	rendered, err := RenderTree(p, uri)
	if err != nil {
		return err
	}
	s.printf("%s\n", rendered)
	return nil
}

func (s *Shell) watch(args string) error {
	set, rest := flags(args)
	if len(rest) != 1 {
		return errors.New("expected <uri>")
	}
	p, uri, err := s.resolve(rest[0])
	if err != nil {
		return err
	}
	w, err := p.Watch(uri, provider.WatchOptions{Recursive: slices.Contains(set, "r")})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.watchers[w.ID()] = w
	s.mu.Unlock()

	s.wg.Go(func() {
		for ev := range w.All() {
			s.printf("[%s] %s %s\n", w.ID(), ev.Type, ev.URI)
		}
	})
	s.printf("Watching '%s' as %s\n", uri, w.ID())
	return nil
}

func (s *Shell) unwatch(args string) error {
	s.mu.Lock()
	w, ok := s.watchers[args]
	delete(s.watchers, args)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("no watcher %q", args)
	}
	w.Dispose()
	s.printf("Watcher %s disposed\n", args)
	return nil
}

func (s *Shell) help(string) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)

	s.outM.Lock()
	defer s.outM.Unlock()
	fmt.Fprintf(s.out, "Paths are %s:/a/b or bare /a/b.\n", s.def.Scheme())
	for _, name := range names {
		fmt.Fprintf(s.out, "  %-24s %s\n", commands[name].usage, commands[name].help)
	}
	return nil
}
