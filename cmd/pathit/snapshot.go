package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"pathit/internal/digest"
	"pathit/internal/snapshot"
)

// listingName is the default output of the snapshot command for t.
func listingName(t time.Time) string {
	return t.Format("20060102") + ".txt"
}

func newSnapshotCommand(a *app, f *flags) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "snapshot [--output FILE] [PATH]",
		Short: "Write a hashed listing of PATH to a dated file",
		Long: `snapshot hashes every entry under PATH (default: the current directory) and
writes the listing to FILE, by default YYYYMMDD.txt in the working directory.
The output file and the running executable are left out of the listing. Each
path is echoed to stdout as it is recorded.`,
		Args: maxOnePath,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.settings(cmd, f)
			if err != nil {
				return err
			}
			if output == "" {
				output = listingName(time.Now())
			}
			walk, err := walkOptions(cfg)
			if err != nil {
				return err
			}
			h, err := newHasher(cfg)
			if err != nil {
				return err
			}

			skip := map[string]struct{}{}
			if abs, err := filepath.Abs(output); err == nil {
				skip[abs] = struct{}{}
			}
			if exe, err := os.Executable(); err == nil {
				skip[exe] = struct{}{}
				if resolved, err := filepath.EvalSymlinks(exe); err == nil {
					skip[resolved] = struct{}{}
				}
			}

			c := snapshot.Collector{
				Hasher: h,
				Walk:   walk,
				Skip: func(abs string) bool {
					_, ok := skip[abs]
					return ok
				},
				OnEntry: func(p string, _ digest.Digest) {
					fmt.Fprintln(a.stdout, p)
				},
			}
			root := rootArg(args)
			a.log.Debug("snapshot", "root", root, "output", output, "algorithm", h.Algorithm())
			s, err := c.Collect(root)
			if err != nil {
				return err
			}
			if err := s.Save(output); err != nil {
				return err
			}
			a.log.Info("snapshot written", "file", output, "entries", s.Len(), "fingerprint", s.Fingerprint())
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "listing file (default YYYYMMDD.txt)")
	return cmd
}
