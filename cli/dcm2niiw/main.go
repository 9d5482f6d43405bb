package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/fepegar/dcm2niiw/dcm2niix"
	"github.com/fepegar/dcm2niiw/internal/config"
)

// exitError carries a specific process exit code out of run.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func main() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	err := run(context.Background(), os.Stdout, os.Args[1:])
	if err == nil {
		return
	}
	var xe *exitError
	if errors.As(err, &xe) {
		if xe.msg != "" {
			fmt.Fprintln(os.Stderr, xe.msg)
		}
		os.Exit(xe.code)
	}
	// Converter failures are already logged with their stderr; just mirror
	// the child's exit code.
	var re *dcm2niix.RunError
	if errors.As(err, &re) {
		os.Exit(re.ExitCode)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "%s", `dcm2niiw - dcm2niix with friendlier defaults (compressed output, overwrite
on collision, recursive search). Unknown flags pass through to dcm2niix and
beat the wrapper's defaults.

Usage:
  dcm2niiw [options] <in_folder> [dcm2niix pass-through flags]

Options:
  --compress | --no-compress     gzip outputs (-z, default on)
  --compression-level N          gzip level 1..9 (default 6)
  -a, --adjacent                 assume images of a series share a folder
  -c, --comment TEXT             store TEXT in the NIfTI aux_file (max 24 chars)
  -d, --depth N                  sub-folder search depth 0..9 (default 5)
  -e, --export-format FMT        NIfTI, NRRD, MGH, JSON/JNIfTI or BJNIfTI
  -f, --filename-format TMPL     output filename template (default %f_%p_%t_%s)
  -i, --ignore                   skip derived, localizer and 2D images
  -o, --out-folder DIR           output directory (default: input folder)
  --out-file PATH                write the single output to PATH
  -w, --write-behavior MODE      skip, overwrite (default) or suffix
  -v, --verbose                  increase converter verbosity (repeatable)
  --log LEVEL                    wrapper log level (default debug)
  --dry-run                      print the resolved command without running it
  -h, --help                     show this banner and the dcm2niix help
`)
}

// invocation is the parsed command line before it is handed to the library.
type invocation struct {
	inDir    string
	opts     []dcm2niix.Option
	help     bool
	dryRun   bool
	logLevel string
}

func parseArgs(args []string) (*invocation, error) {
	inv := &invocation{}
	verbose := 0
	var extra []string
	value := func(i int, name string) (string, error) {
		if i+1 >= len(args) {
			return "", &exitError{code: 2, msg: name + " requires a value"}
		}
		return args[i+1], nil
	}
	intValue := func(i int, name string) (int, error) {
		v, err := value(i, name)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, &exitError{code: 2, msg: name + " requires an integer, got " + v}
		}
		return n, nil
	}
	for i := 0; i < len(args); i++ {
		switch a := args[i]; a {
		case "-h", "--help", "help":
			inv.help = true
		case "--compress":
			inv.opts = append(inv.opts, dcm2niix.WithCompress(true))
		case "--no-compress":
			inv.opts = append(inv.opts, dcm2niix.WithCompress(false))
		case "--compression-level":
			n, err := intValue(i, a)
			if err != nil {
				return nil, err
			}
			inv.opts = append(inv.opts, dcm2niix.WithCompressionLevel(n))
			i++
		case "-a", "--adjacent":
			inv.opts = append(inv.opts, dcm2niix.WithAdjacent(true))
		case "--no-adjacent":
			inv.opts = append(inv.opts, dcm2niix.WithAdjacent(false))
		case "-c", "--comment":
			v, err := value(i, a)
			if err != nil {
				return nil, err
			}
			inv.opts = append(inv.opts, dcm2niix.WithComment(v))
			i++
		case "-d", "--depth":
			n, err := intValue(i, a)
			if err != nil {
				return nil, err
			}
			inv.opts = append(inv.opts, dcm2niix.WithDepth(n))
			i++
		case "-e", "--export-format":
			v, err := value(i, a)
			if err != nil {
				return nil, err
			}
			f, err := dcm2niix.ParseFormat(v)
			if err != nil {
				return nil, &exitError{code: 2, msg: err.Error()}
			}
			inv.opts = append(inv.opts, dcm2niix.WithExportFormat(f))
			i++
		case "-f", "--filename-format":
			v, err := value(i, a)
			if err != nil {
				return nil, err
			}
			inv.opts = append(inv.opts, dcm2niix.WithFilenameFormat(v))
			i++
		case "-i", "--ignore":
			inv.opts = append(inv.opts, dcm2niix.WithIgnoreDerived(true))
		case "--no-ignore":
			inv.opts = append(inv.opts, dcm2niix.WithIgnoreDerived(false))
		case "-o", "--out-folder":
			v, err := value(i, a)
			if err != nil {
				return nil, err
			}
			inv.opts = append(inv.opts, dcm2niix.WithOutDir(v))
			i++
		case "--out-file":
			v, err := value(i, a)
			if err != nil {
				return nil, err
			}
			inv.opts = append(inv.opts, dcm2niix.WithOutFile(v))
			i++
		case "-w", "--write-behavior":
			v, err := value(i, a)
			if err != nil {
				return nil, err
			}
			w, err := dcm2niix.ParseWriteBehavior(v)
			if err != nil {
				return nil, &exitError{code: 2, msg: err.Error()}
			}
			inv.opts = append(inv.opts, dcm2niix.WithWriteBehavior(w))
			i++
		case "-v", "--verbose":
			verbose++
		case "--log":
			v, err := value(i, a)
			if err != nil {
				return nil, err
			}
			inv.logLevel = v
			i++
		case "--dry-run":
			inv.dryRun = true
		default:
			if inv.inDir == "" && !strings.HasPrefix(a, "-") {
				inv.inDir = a
				continue
			}
			extra = append(extra, a)
		}
	}
	if verbose > 0 {
		inv.opts = append(inv.opts, dcm2niix.WithVerbosity(verbose))
	}
	if len(extra) > 0 {
		inv.opts = append(inv.opts, dcm2niix.WithArgs(extra...))
	}
	return inv, nil
}

// optionsFromConfig turns the config file into library options. They are
// applied before the flag-derived ones, so explicit flags win.
func optionsFromConfig(cfg config.Config) ([]dcm2niix.Option, error) {
	var opts []dcm2niix.Option
	if cfg.Binary != "" {
		opts = append(opts, dcm2niix.WithBinary(cfg.Binary))
	}
	d := cfg.Defaults
	if d.Compress != nil {
		opts = append(opts, dcm2niix.WithCompress(*d.Compress))
	}
	if d.CompressionLevel != nil {
		opts = append(opts, dcm2niix.WithCompressionLevel(*d.CompressionLevel))
	}
	if d.Depth != nil {
		opts = append(opts, dcm2niix.WithDepth(*d.Depth))
	}
	if d.ExportFormat != nil {
		f, err := dcm2niix.ParseFormat(*d.ExportFormat)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		opts = append(opts, dcm2niix.WithExportFormat(f))
	}
	if d.FilenameFormat != nil {
		opts = append(opts, dcm2niix.WithFilenameFormat(*d.FilenameFormat))
	}
	if d.WriteBehavior != nil {
		w, err := dcm2niix.ParseWriteBehavior(*d.WriteBehavior)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		opts = append(opts, dcm2niix.WithWriteBehavior(w))
	}
	return opts, nil
}

func run(ctx context.Context, out io.Writer, args []string) error {
	cfg, err := config.Read()
	if err != nil {
		return err
	}
	inv, err := parseArgs(args)
	if err != nil {
		return err
	}
	level := inv.logLevel
	if level == "" {
		level = cfg.LogLevel
	}
	if level == "" {
		level = "debug"
	}
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return &exitError{code: 2, msg: "invalid log level: " + level}
	}
	log.SetLevel(lvl)

	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return err
	}
	opts = append(opts, inv.opts...)

	if inv.help {
		usage(out)
		text, err := dcm2niix.Help(ctx, opts...)
		if err != nil {
			return err
		}
		fmt.Fprint(out, text)
		return nil
	}
	if inv.inDir == "" {
		usage(os.Stderr)
		return &exitError{code: 2, msg: "missing input folder"}
	}
	if inv.dryRun {
		bin, cmdArgs, err := dcm2niix.Command(inv.inDir, opts...)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "+ "+bin+" "+strings.Join(cmdArgs, " "))
		return nil
	}
	_, err = dcm2niix.Convert(ctx, inv.inDir, opts...)
	return err
}
