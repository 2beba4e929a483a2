package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
)

// ErrUsage is returned when the command line is empty and usage was printed.
var ErrUsage = errors.New("usage requested")

// Parse reads command-line arguments (without the program name) and returns a
// validated Config. Flags may appear before, between or after the two
// positional arguments. Values from -config are overridden by explicit flags
// and positionals.
func Parse(args []string, stderr io.Writer) (*Config, error) {
	fs := flag.NewFlagSet("revcert", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "Path to a JSON or YAML config file")
	deleteTex := fs.Bool("delete-tex", false, "Delete intermediate .tex files after rendering")
	fs.BoolVar(deleteTex, "d", false, "Shorthand for --delete-tex")
	outputDir := fs.String("output-dir", "", "Directory for generated files (default: .)")
	rendererBin := fs.String("renderer", "", "LaTeX engine executable (default: pdflatex)")
	passes := fs.Int("passes", 0, "Renderer passes per certificate (default: 2)")
	credentialsPath := fs.String("credentials", "", "Path to service account JSON (Drive upload or Sheets input)")
	driveFolder := fs.String("drive-folder", "", "Google Drive folder ID to upload rendered PDFs to")
	watch := fs.Bool("watch", false, "Regenerate whenever the reviewer table or template changes")
	logFormat := fs.String("log-format", "", "Log format: text or json (default: text)")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error (default: info)")
	printTemplate := fs.Bool("print-template", false, "Print the built-in certificate template and exit")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage:\n\n")
		fmt.Fprintf(stderr, "\trevcert [flags] <reviewer_table> <template>\n\n")
		fmt.Fprintf(stderr, "<reviewer_table> is a CSV file with Name and Number columns,\n")
		fmt.Fprintf(stderr, "or sheets:<spreadsheet-id>[#<range>] for a Google Sheet.\n\n")
		fmt.Fprintf(stderr, "Flags:\n\n")

		flags := []struct {
			name string
			typ  string
			desc string
		}{
			{"-d, --delete-tex", "", "Delete intermediate .tex files after rendering"},
			{"--output-dir", "<string>", "Directory for generated files (default: .)"},
			{"--renderer", "<string>", "LaTeX engine executable (default: pdflatex)"},
			{"--passes", "<int>", "Renderer passes per certificate (default: 2)"},
			{"--credentials", "<string>", "Path to service account JSON (Drive upload or Sheets input)"},
			{"--drive-folder", "<string>", "Google Drive folder ID to upload rendered PDFs to"},
			{"--watch", "", "Regenerate whenever the reviewer table or template changes"},
			{"--config", "<string>", "Path to a JSON or YAML config file"},
			{"--log-format", "<string>", "Log format: text or json (default: text)"},
			{"--log-level", "<string>", "Log level: debug, info, warn, error (default: info)"},
			{"--print-template", "", "Print the built-in certificate template and exit"},
		}

		for _, f := range flags {
			if f.typ != "" {
				fmt.Fprintf(stderr, "\t%-28s %s\n", f.name+" "+f.typ, f.desc)
			} else {
				fmt.Fprintf(stderr, "\t%-28s %s\n", f.name, f.desc)
			}
		}

		fmt.Fprintf(stderr, "\nUse \"revcert --help\" to display this message.\n\n")
	}

	positional, err := parseInterleaved(fs, args)
	if err != nil {
		return nil, err
	}

	if *printTemplate {
		return &Config{PrintTemplate: true}, nil
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	// A config file with nothing layered on top is used as written.
	if *configPath != "" && len(positional) == 0 && len(set) == 1 {
		return LoadFile(*configPath)
	}

	cfg := &Config{}
	if *configPath != "" {
		cfg, err = decodeFile(*configPath)
		if err != nil {
			return nil, err
		}
	}

	if set["delete-tex"] || set["d"] {
		cfg.DeleteTex = *deleteTex
	}
	if set["output-dir"] {
		cfg.OutputDir = *outputDir
	}
	if set["renderer"] {
		cfg.Renderer = *rendererBin
	}
	if set["passes"] {
		if *passes <= 0 {
			return nil, errors.New("--passes must be greater than 0")
		}
		cfg.RenderPasses = *passes
	}
	if set["credentials"] {
		cfg.CredentialsPath = *credentialsPath
	}
	if set["drive-folder"] {
		cfg.DriveFolderID = *driveFolder
	}
	if set["watch"] {
		cfg.Watch = *watch
	}
	if set["log-format"] {
		cfg.LogFormat = *logFormat
	}
	if set["log-level"] {
		cfg.LogLevel = *logLevel
	}

	switch len(positional) {
	case 0:
		// If nothing at all is configured, show usage
		if *configPath == "" {
			fs.Usage()
			return nil, ErrUsage
		}
	case 2:
		cfg.ReviewerTable = positional[0]
		cfg.TemplatePath = positional[1]
	default:
		return nil, fmt.Errorf("expected <reviewer_table> and <template>, got %d positional arguments", len(positional))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseInterleaved parses flags anywhere in args, returning the positionals
// in order. The standard flag package stops at the first non-flag argument.
func parseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		if len(args) > len(rest) && args[len(args)-len(rest)-1] == "--" {
			return append(positional, rest...), nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}
