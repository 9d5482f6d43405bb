package dcm2niix

import "strconv"

// levelKey is the collision slot shared by the -1..-9 compression level
// flags, which are mutually exclusive on the dcm2niix command line.
const levelKey = "-#"

// flagKey normalizes an argument to the collision slot it occupies, or
// reports that it is not a flag.
func flagKey(arg string) (string, bool) {
	if len(arg) < 2 || arg[0] != '-' {
		return "", false
	}
	if len(arg) == 2 && arg[1] >= '1' && arg[1] <= '9' {
		return levelKey, true
	}
	return arg, true
}

// Args assembles the final dcm2niix argument list for inDir: the wrapper's
// fixed flags first, then the input path, then pass-through arguments in
// their original order. A pass-through flag that restates one of the fixed
// flags wins: the built-in pair is dropped so the flag appears exactly once.
func (o *Options) Args(inDir string) []string {
	taken := make(map[string]bool, len(o.Extra))
	for _, a := range o.Extra {
		if key, ok := flagKey(a); ok {
			taken[key] = true
		}
	}
	args := make([]string, 0, 20+len(o.Extra))
	add := func(flag string, values ...string) {
		if taken[flag] {
			return
		}
		args = append(args, flag)
		args = append(args, values...)
	}
	verbosity := o.Verbosity
	if verbosity > maxVerbosity {
		verbosity = maxVerbosity
	}
	if verbosity < 0 {
		verbosity = 0
	}
	// Enum codes are checked by Validate before assembly.
	exportCode, _ := o.ExportFormat.code()
	writeCode, _ := o.WriteBehavior.code()
	add("-a", yn(o.Adjacent))
	add("-d", strconv.Itoa(o.Depth))
	add("-e", exportCode)
	add("-f", o.FilenameFormat)
	add("-i", yn(o.Ignore))
	add("-v", strconv.Itoa(verbosity))
	add("-z", yn(o.Compress))
	add("-w", writeCode)
	if o.Compress && !taken[levelKey] {
		args = append(args, "-"+strconv.Itoa(o.CompressionLevel))
	}
	if o.CommentSet {
		add("-c", o.Comment)
	}
	if o.OutDir != "" {
		add("-o", o.OutDir)
	}
	args = append(args, inDir)
	args = append(args, o.Extra...)
	return args
}

func yn(on bool) string {
	if on {
		return "y"
	}
	return "n"
}
