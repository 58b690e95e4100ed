package main

import (
	"asm14"
	"asm14/assembler"
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang/glog"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

type options struct {
	outDir       string
	wordBits     uint
	codeStart    uint32
	jobs         int
	keepExpanded bool
	dump         bool
}

var opts options

var rootCmd = &cobra.Command{
	Use:   "asm14 [flags] file...",
	Short: "Two-pass macro assembler for the 14-bit teaching machine",
	Long: `asm14 translates assembly source files into object, entry and
external listings. Each argument names a source file with or without its
.as suffix. For prog.as the outputs are prog.am (macro-expanded source),
prog.ob (object image), prog.ent (entry symbols) and prog.ext (external
references); .ent and .ext are only written when non-empty. Nothing but
diagnostics is produced for a file that fails to assemble.
`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		arch := asm14.DefaultArch()
		arch.WordBits = opts.wordBits
		arch.CodeStart = asm14.MachineAddress(opts.codeStart)
		if err := arch.Validate(); err != nil {
			return err
		}
		return run(arch, args)
	},
}

func init() {
	flags := rootCmd.Flags()
	def := asm14.DefaultArch()
	flags.StringVarP(&opts.outDir, "out-dir", "o", "", "directory for output files (default: next to the source)")
	flags.UintVar(&opts.wordBits, "word-bits", def.WordBits, "machine word width in bits")
	flags.Uint32Var(&opts.codeStart, "code-start", def.CodeStart, "address of the first instruction")
	flags.IntVarP(&opts.jobs, "jobs", "j", 4, "files assembled in parallel")
	flags.BoolVar(&opts.keepExpanded, "keep-expanded", true, "write the macro-expanded .am file")
	flags.BoolVar(&opts.dump, "dump", false, "pretty-print each assembly result to stderr")
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
}

// stderrMu keeps the diagnostics of one file together.
var stderrMu sync.Mutex

func run(arch asm14.Arch, args []string) error {
	color := term.IsTerminal(int(os.Stderr.Fd()))
	var failed sync.Map

	var g errgroup.Group
	g.SetLimit(max(opts.jobs, 1))
	for _, arg := range args {
		arg := arg // per-iteration copy; go directive is below 1.22
		g.Go(func() error {
			ok, err := assembleFile(arch, arg, color)
			if err != nil {
				return err
			}
			if !ok {
				failed.Store(arg, true)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	n := 0
	failed.Range(func(_, _ any) bool { n++; return true })
	if n > 0 {
		return fmt.Errorf("%d of %d files failed to assemble", n, len(args))
	}
	return nil
}

func assembleFile(arch asm14.Arch, arg string, color bool) (bool, error) {
	base := strings.TrimSuffix(arg, ".as")
	srcPath := base + ".as"
	data, err := os.ReadFile(srcPath)
	if err != nil {
		glog.Errorf("reading %s: %v", srcPath, err)
		return false, err
	}

	info := assembler.MakeAssembler(arch)
	res := info.Assemble(srcPath, assembler.SplitLines(string(data)))
	glog.V(1).Infof("%s: %d lines expanded, %d code words, %d data words, %d diagnostics",
		srcPath, len(res.Expanded), res.Code.Len(), res.Data.Len(), res.Diagnostics.Len())

	var report bytes.Buffer
	if opts.dump {
		pp.Fprintln(&report, res)
	}
	printDiagnostics(&report, srcPath, &res.Notices, color)
	printDiagnostics(&report, srcPath, &res.Diagnostics, color)
	if report.Len() > 0 {
		stderrMu.Lock()
		os.Stderr.Write(report.Bytes())
		stderrMu.Unlock()
	}

	out := base
	if opts.outDir != "" {
		out = filepath.Join(opts.outDir, filepath.Base(base))
	}
	if opts.keepExpanded && res.Expanded != nil {
		if err := writeFile(out+".am", func(w io.Writer) error {
			return assembler.WriteExpanded(w, res.Expanded)
		}); err != nil {
			return false, err
		}
	}
	if !res.OK {
		glog.Infof("%s: assembly failed", srcPath)
		return false, nil
	}

	if err := writeFile(out+".ob", func(w io.Writer) error {
		return assembler.WriteObject(w, res, arch)
	}); err != nil {
		return false, err
	}
	if len(res.Entries) > 0 {
		if err := writeFile(out+".ent", func(w io.Writer) error {
			return assembler.WriteEntries(w, res.Entries)
		}); err != nil {
			return false, err
		}
	}
	if len(res.Externals) > 0 {
		if err := writeFile(out+".ext", func(w io.Writer) error {
			return assembler.WriteExternals(w, res.Externals)
		}); err != nil {
			return false, err
		}
	}
	glog.Infof("%s: assembled %d code and %d data words", srcPath, res.Code.Len(), res.Data.Len())
	return true, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		glog.Errorf("creating %s: %v", path, err)
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		glog.Errorf("writing %s: %v", path, err)
		return err
	}
	return f.Close()
}

const (
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

func printDiagnostics(w io.Writer, path string, list *asm14.DebugList, color bool) {
	for _, d := range list.All() {
		sev := d.Severity.String()
		if color {
			if d.Severity == asm14.SeverityError {
				sev = ansiRed + sev + ansiReset
			} else {
				sev = ansiYellow + sev + ansiReset
			}
		}
		if d.Column > 0 {
			fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", path, d.Line, d.Column, sev, d.Message)
		} else {
			fmt.Fprintf(w, "%s:%d: %s: %s\n", path, d.Line, sev, d.Message)
		}
	}
}

func main() {
	defer glog.Flush()
	if err := rootCmd.Execute(); err != nil {
		glog.Flush()
		os.Exit(1)
	}
}
