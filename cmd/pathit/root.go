package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pathit/internal/collect"
	"pathit/internal/config"
	"pathit/internal/diff"
	"pathit/internal/digest"
	"pathit/internal/pathiter"
	"pathit/internal/report"
	"pathit/internal/snapshot"
)

// maxPatchBytes caps old+new size per patch.
const maxPatchBytes = 2_000_000

// flags holds raw command-line values. Only flags the user set override the
// config file and environment.
type flags struct {
	configPath string
	verbose    bool
	algo       string
	sorted     bool
	follow     bool
	noFollow   bool
	exclude    []string
	ignoreFile string

	hash    bool
	dir     string
	file    string
	collect string
	patch   bool
	jsonOut bool
	summary bool
}

func newRootCommand(a *app) *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "pathit [flags] [PATH]",
		Short: "List a directory tree and compare it with another tree or a saved listing",
		Long: `pathit walks PATH (default: the current directory) and prints every entry
as a normalized relative path, directories ending in '/'. With --hash each line
carries a content digest.

With --dir or --file the walk is compared instead and each difference is
printed as '+ path' (only in PATH), '- path' (only in the comparison source) or
'x path' (content differs, --hash only). --file - reads the listing from
standard input.`,
		Args:          maxOnePath,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.setVerbose(f.verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRoot(cmd, f, args)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	pf := cmd.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "YAML config file (default ./"+config.DefaultFile+" if present)")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging on stderr")
	pf.StringVar(&f.algo, "algo", string(digest.SHA256), "digest algorithm: sha256 or sha3-256")
	pf.BoolVar(&f.sorted, "sorted", false, "visit directory entries in name order")
	pf.BoolVar(&f.follow, "follow-symlinks", true, "descend into symlinked directories")
	pf.BoolVar(&f.noFollow, "no-follow-symlinks", false, "list symlinked directories without descending")
	pf.StringArrayVar(&f.exclude, "exclude", nil, "skip entries with this base name (repeatable)")
	pf.StringVar(&f.ignoreFile, "ignore-file", "", "skip entries matching gitignore-style patterns in this file")

	fl := cmd.Flags()
	fl.BoolVar(&f.hash, "hash", false, "include content digests")
	fl.StringVarP(&f.dir, "dir", "d", "", "compare with this directory")
	fl.StringVarP(&f.file, "file", "f", "", "compare with this listing ('-' for stdin)")
	fl.StringVarP(&f.collect, "collect", "c", "", "copy new and changed entries into this directory or .zip")
	fl.BoolVar(&f.patch, "patch", false, "print unified diffs for changed files (needs --dir and --hash)")
	fl.BoolVar(&f.jsonOut, "json", false, "print differences as JSON")
	fl.BoolVar(&f.summary, "summary", false, "print difference counts on stderr")

	cmd.AddCommand(newSnapshotCommand(a, f))
	return cmd
}

func maxOnePath(_ *cobra.Command, args []string) error {
	if len(args) > 1 {
		return usagef("accepts at most one PATH, received %d", len(args))
	}
	return nil
}

func rootArg(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return "."
}

// settings merges defaults, the config file, PATHIT_* variables and the
// flags that were set, in that order.
func (a *app) settings(cmd *cobra.Command, f *flags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}
	if cfg.Source != "" {
		a.log.Debug("config loaded", "file", cfg.Source)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}

	changed := cmd.Flags().Changed
	if changed("hash") {
		cfg.Hash = f.hash
	}
	if changed("algo") {
		cfg.Algorithm = f.algo
	}
	if changed("sorted") {
		cfg.Sorted = f.sorted
	}
	if changed("follow-symlinks") {
		cfg.FollowSymlinks = f.follow
	}
	if changed("no-follow-symlinks") {
		cfg.FollowSymlinks = !f.noFollow
	}
	if changed("exclude") {
		cfg.Exclude = f.exclude
	}
	if changed("ignore-file") {
		cfg.IgnoreFile = f.ignoreFile
	}
	if changed("json") {
		cfg.JSON = f.jsonOut
	}
	if err := cfg.Validate(); err != nil {
		return cfg, usageError{err}
	}
	return cfg, nil
}

func walkOptions(cfg config.Config) ([]pathiter.Option, error) {
	opts := []pathiter.Option{pathiter.WithExclude(cfg.Exclude...)}
	if cfg.Sorted {
		opts = append(opts, pathiter.WithSortedEntries())
	}
	if !cfg.FollowSymlinks {
		opts = append(opts, pathiter.WithoutFollowSymlinks())
	}
	if cfg.IgnoreFile != "" {
		m, err := pathiter.LoadIgnoreFile(cfg.IgnoreFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pathiter.WithIgnore(m))
	}
	return opts, nil
}

func newHasher(cfg config.Config) (*digest.Hasher, error) {
	alg, err := digest.ParseAlgorithm(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	var opts []digest.HasherOption
	if cfg.BufferSize > 0 {
		opts = append(opts, digest.WithBufferSize(cfg.BufferSize))
	}
	return digest.NewHasher(alg, opts...), nil
}

func (a *app) runRoot(cmd *cobra.Command, f *flags, args []string) error {
	if f.dir != "" && f.file != "" {
		return usagef("--dir and --file are mutually exclusive")
	}
	compare := f.dir != "" || f.file != ""
	if !compare && (f.collect != "" || f.patch || f.summary) {
		return usagef("--collect/--patch/--summary require --dir or --file")
	}

	cfg, err := a.settings(cmd, f)
	if err != nil {
		return err
	}
	if f.patch && (f.dir == "" || !cfg.Hash) {
		return usagef("--patch requires --dir and --hash")
	}

	root := rootArg(args)
	walk, err := walkOptions(cfg)
	if err != nil {
		return err
	}
	var h *digest.Hasher
	if cfg.Hash {
		if h, err = newHasher(cfg); err != nil {
			return err
		}
	}

	a.log.Debug("walking", "root", root, "hash", cfg.Hash, "algorithm", cfg.Algorithm, "sorted", cfg.Sorted)
	left, err := snapshot.Collect(root, h, walk...)
	if err != nil {
		return err
	}
	if !compare {
		_, err := left.WriteTo(a.stdout)
		return err
	}

	right, err := a.comparison(f, left.Mode(), h, walk)
	if err != nil {
		return err
	}
	if a.log.Enabled(cmd.Context(), slog.LevelDebug) {
		lf, rf := left.Fingerprint(), right.Fingerprint()
		a.log.Debug("snapshots", "left", lf, "left_entries", left.Len(), "right", rf, "right_entries", right.Len())
		if lf == rf {
			a.log.Debug("snapshots share a fingerprint", "fingerprint", lf)
		}
	}

	mode := left.Mode()
	changes, err := snapshot.Diff(left, right)
	if err != nil {
		return err
	}

	var patches map[string]string
	if f.patch {
		if patches, err = buildPatches(root, f.dir, changes); err != nil {
			return err
		}
	}

	if cfg.JSON {
		err = report.JSON(a.stdout, mode, changes)
	} else {
		err = report.Lines(a.stdout, changes)
		for _, c := range changes {
			if p, ok := patches[c.Path]; ok && err == nil {
				_, err = fmt.Fprint(a.stdout, p)
			}
		}
	}
	if err != nil {
		return err
	}
	if f.summary {
		if err := report.Summary(a.stderr, changes); err != nil {
			return err
		}
	}

	if f.collect != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return err
		}
		res, err := collect.Run(f.collect, abs, changes, collect.Options{Patches: patches})
		if err != nil {
			return err
		}
		a.log.Info("collected", "dest", res.Dest, "files", res.Files, "dirs", res.Dirs, "zip", res.Zip)
	}
	return nil
}

// comparison builds the right-hand snapshot from --dir or --file.
func (a *app) comparison(f *flags, mode snapshot.Mode, h *digest.Hasher, walk []pathiter.Option) (*snapshot.Snapshot, error) {
	switch {
	case f.dir != "":
		a.log.Debug("walking comparison", "dir", f.dir)
		return snapshot.Collect(f.dir, h, walk...)
	case f.file == snapshot.StdinName:
		a.log.Debug("reading listing", "file", "<stdin>")
		return snapshot.Read(a.stdin, mode)
	default:
		a.log.Debug("reading listing", "file", f.file)
		return snapshot.ReadFile(f.file, mode)
	}
}

// buildPatches diffs every changed file, old side from the comparison
// directory and new side from PATH.
func buildPatches(newRoot, oldRoot string, changes snapshot.Changes) (map[string]string, error) {
	opt := diff.Options{MaxBytes: maxPatchBytes}
	out := map[string]string{}
	for _, c := range changes {
		if strings.HasSuffix(c.Path, "/") {
			continue
		}
		newPath := filepath.Join(newRoot, filepath.FromSlash(c.Path))
		oldPath := filepath.Join(oldRoot, filepath.FromSlash(c.Path))
		switch c.Kind {
		case snapshot.New:
			oldPath = ""
		case snapshot.Absence:
			newPath = ""
		}
		p, err := diff.Files(c.Path, oldPath, newPath, opt)
		if err != nil {
			return nil, err
		}
		if p != "" {
			out[c.Path] = p
		}
	}
	return out, nil
}
