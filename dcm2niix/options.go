package dcm2niix

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Format selects the converter's output file format (-e).
type Format string

const (
	FormatNIfTI     Format = "NIfTI"
	FormatNRRD      Format = "NRRD"
	FormatMGH       Format = "MGH"
	FormatJSONNIfTI Format = "JSON/JNIfTI"
	FormatBJNIfTI   Format = "BJNIfTI"
)

// code returns the single-letter value dcm2niix expects after -e.
func (f Format) code() (string, error) {
	switch f {
	case FormatNIfTI:
		return "n", nil
	case FormatNRRD:
		return "y", nil
	case FormatMGH:
		return "m", nil
	case FormatJSONNIfTI:
		return "j", nil
	case FormatBJNIfTI:
		return "b", nil
	}
	return "", fmt.Errorf("unknown export format %q", string(f))
}

// ParseFormat maps a user-facing name to a Format, case-insensitively.
func ParseFormat(s string) (Format, error) {
	for _, f := range []Format{FormatNIfTI, FormatNRRD, FormatMGH, FormatJSONNIfTI, FormatBJNIfTI} {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// WriteBehavior controls what the converter does when an output file already
// exists (-w).
type WriteBehavior string

const (
	WriteSkip      WriteBehavior = "skip"
	WriteOverwrite WriteBehavior = "overwrite"
	WriteSuffix    WriteBehavior = "suffix"
)

func (w WriteBehavior) code() (string, error) {
	switch w {
	case WriteSkip:
		return "0", nil
	case WriteOverwrite:
		return "1", nil
	case WriteSuffix:
		return "2", nil
	}
	return "", fmt.Errorf("unknown write behavior %q", string(w))
}

// ParseWriteBehavior maps a user-facing name to a WriteBehavior.
func ParseWriteBehavior(s string) (WriteBehavior, error) {
	for _, w := range []WriteBehavior{WriteSkip, WriteOverwrite, WriteSuffix} {
		if strings.EqualFold(s, string(w)) {
			return w, nil
		}
	}
	return "", fmt.Errorf("unknown write behavior %q", s)
}

// MaxCommentLength is the NIfTI aux_file size limit for -c comments.
const MaxCommentLength = 24

// maxVerbosity is the highest -v level dcm2niix distinguishes; anything
// above is capped rather than rejected.
const maxVerbosity = 2

// Options collects everything that influences the assembled dcm2niix
// command line. The zero value is not useful; start from NewOptions and
// adjust through Option setters.
type Options struct {
	// Binary is an explicit path to the converter executable. When empty,
	// Locate falls back to $DCM2NIIX and then to a PATH lookup.
	Binary string

	Compress         bool
	CompressionLevel int `validate:"min=1,max=9"`
	Adjacent         bool
	Comment          string `validate:"max=24"`
	// CommentSet distinguishes -c "" (anonymize the aux_file field) from no
	// -c at all.
	CommentSet     bool
	Depth          int `validate:"min=0,max=9"`
	ExportFormat   Format
	FilenameFormat string
	Ignore         bool
	OutDir         string
	// OutFile enables single-file mode: the conversion runs with depth 0
	// into a private staging directory and the lone output is moved here.
	OutFile       string
	Verbosity     int
	WriteBehavior WriteBehavior
	// Extra holds pass-through arguments handed to the converter verbatim,
	// after the input path, in their original order.
	Extra []string
}

// NewOptions returns the wrapper defaults. Compression, overwrite-on-
// collision, search depth, and the filename template deliberately differ
// from the dcm2niix built-ins.
func NewOptions() Options {
	return Options{
		Compress:         true,
		CompressionLevel: 6,
		Depth:            5,
		ExportFormat:     FormatNIfTI,
		FilenameFormat:   "%f_%p_%t_%s",
		WriteBehavior:    WriteOverwrite,
	}
}

// Option adjusts Options before a conversion.
type Option func(*Options)

// WithBinary sets an explicit path to the converter executable.
func WithBinary(path string) Option {
	return func(o *Options) { o.Binary = path }
}

// WithCompress toggles gzip compression of the output (-z).
func WithCompress(on bool) Option {
	return func(o *Options) { o.Compress = on }
}

// WithCompressionLevel sets the gzip level, 1 fastest to 9 smallest.
func WithCompressionLevel(level int) Option {
	return func(o *Options) { o.CompressionLevel = level }
}

// WithAdjacent asserts images from the same series always share a folder,
// which lets the converter take a faster path (-a).
func WithAdjacent(on bool) Option {
	return func(o *Options) { o.Adjacent = on }
}

// WithComment stores text in the NIfTI aux_file field (-c). An empty
// comment anonymizes the field.
func WithComment(text string) Option {
	return func(o *Options) {
		o.Comment = text
		o.CommentSet = true
	}
}

// WithDepth sets how many sub-folder levels below the input are searched (-d).
func WithDepth(depth int) Option {
	return func(o *Options) { o.Depth = depth }
}

// WithExportFormat selects the output file format (-e).
func WithExportFormat(f Format) Option {
	return func(o *Options) { o.ExportFormat = f }
}

// WithFilenameFormat sets the output filename template (-f).
func WithFilenameFormat(tmpl string) Option {
	return func(o *Options) { o.FilenameFormat = tmpl }
}

// WithIgnoreDerived skips derived, localizer and 2D images (-i).
func WithIgnoreDerived(on bool) Option {
	return func(o *Options) { o.Ignore = on }
}

// WithOutDir writes outputs to dir instead of the input folder (-o). The
// directory is created if missing.
func WithOutDir(dir string) Option {
	return func(o *Options) { o.OutDir = dir }
}

// WithOutFile enables single-file mode targeting path.
func WithOutFile(path string) Option {
	return func(o *Options) { o.OutFile = path }
}

// WithVerbosity sets the converter's verbosity (-v); values above 2 are
// capped.
func WithVerbosity(level int) Option {
	return func(o *Options) { o.Verbosity = level }
}

// WithWriteBehavior selects the collision policy for existing outputs (-w).
func WithWriteBehavior(w WriteBehavior) Option {
	return func(o *Options) { o.WriteBehavior = w }
}

// WithArgs appends pass-through arguments forwarded to the converter
// unchanged.
func WithArgs(args ...string) Option {
	return func(o *Options) { o.Extra = append(o.Extra, args...) }
}

var validate = validator.New()

// Validate rejects option values the converter itself would choke on.
func (o *Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	if _, err := o.ExportFormat.code(); err != nil {
		return err
	}
	if _, err := o.WriteBehavior.code(); err != nil {
		return err
	}
	return nil
}
