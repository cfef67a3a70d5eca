package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/alairjunior/l5x2c/codegen"
	"github.com/alairjunior/l5x2c/config"
	"github.com/alairjunior/l5x2c/l5x"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"     // Version number (set by git tag at build time)
	Commit  = "unknown" // Git commit hash
	Date    = "unknown" // Build date
)

func main() {
	// Command-line flags
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		verboseMode = flag.Bool("verbose", false, "Verbose output")
		configFile  = flag.String("config", "", "Configuration file (default: platform config dir)")
		stackSize   = flag.Int("ss", 1000, "Stack size for the generated stack machine")
		scanTime    = flag.Int("st", 100, "Scan time of the generated PLC model, in milliseconds")
		listMode    = flag.String("list", "", "List the selected constructs and exit (tags, programs, routines, rungs)")
		programName = flag.String("p", "", "Define the working program (used with -list)")
		routineName = flag.String("r", "", "Define the working routine (used with -list)")
	)

	flag.Parse()

	// Show version
	if *showVersion {
		fmt.Printf("l5x2c %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	// Show help
	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	if flag.NArg() == 0 {
		printHelp()
		os.Exit(0)
	}

	// Load configuration; explicit flags override it below
	var cfg *config.Config
	var err error
	if *configFile != "" {
		cfg, err = config.LoadFrom(*configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	setFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	if setFlags["ss"] {
		cfg.Translation.StackSize = *stackSize
	}
	if setFlags["st"] {
		cfg.Translation.ScanTime = *scanTime
	}

	inputFile := flag.Arg(0)
	if _, err := os.Stat(inputFile); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: File not found: %s\n", inputFile)
		os.Exit(1)
	}

	if *verboseMode {
		fmt.Printf("Loading and parsing L5X file: %s\n", inputFile)
	}

	reader := &l5x.Reader{}
	project, err := reader.ParseFile(inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing L5X file: %v\n", err)
		os.Exit(1)
	}

	if cfg.Warnings.SkippedTags {
		for _, warning := range reader.Warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
		}
	}

	// Listing mode prints constructs instead of translating
	if *listMode != "" {
		if err := listConstructs(project, *listMode, *programName, *routineName); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if flag.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Error: no output file given")
		printHelp()
		os.Exit(1)
	}
	outputFile := flag.Arg(1)

	if *verboseMode {
		fmt.Printf("Translating %d program(s), stack size %d, scan time %d ms\n",
			len(project.Programs), cfg.Translation.StackSize, cfg.Translation.ScanTime)
	}

	out, err := os.Create(outputFile) // #nosec G304 -- user-specified output path
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
		os.Exit(1)
	}

	generator := codegen.NewGenerator(cfg.Translation.StackSize, cfg.Translation.ScanTime)
	generator.RungComments = cfg.Output.RungComments
	generator.EmitScanLoop = cfg.Output.EmitScanLoop

	translateErr := generator.Translate(project, out)
	if closeErr := out.Close(); translateErr == nil {
		translateErr = closeErr
	}
	if translateErr != nil {
		fmt.Fprintf(os.Stderr, "Error translating %s: %v\n", inputFile, translateErr)
		os.Exit(1)
	}

	if cfg.Warnings.UnsupportedInstructions {
		for _, warning := range generator.Warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
		}
	}

	if *verboseMode {
		fmt.Printf("Wrote %s\n", outputFile)
	}
}

// listConstructs prints the selected constructs one per line, matching the
// inspection modes of the classic tool.
func listConstructs(project *l5x.Project, construct, programName, routineName string) error {
	switch construct {
	case "programs":
		for _, program := range project.Programs {
			fmt.Println(program.Name)
		}
		return nil

	case "routines":
		if programName == "" {
			return fmt.Errorf("define the working program to list the routines")
		}
		for _, program := range project.Programs {
			if program.Name != programName {
				continue
			}
			for _, routine := range program.Routines {
				fmt.Println(routine.Name)
			}
		}
		return nil

	case "rungs":
		if programName == "" {
			return fmt.Errorf("define the working program to list the rungs")
		}
		if routineName == "" {
			return fmt.Errorf("define the working routine to list the rungs")
		}
		for _, program := range project.Programs {
			if program.Name != programName {
				continue
			}
			for _, routine := range program.Routines {
				if routine.Name != routineName {
					continue
				}
				for _, rung := range routine.Rungs {
					fmt.Println(rung.Logic)
				}
			}
		}
		return nil

	case "tags":
		for _, tag := range project.ControllerTags {
			fmt.Printf("%s (%s)\n", tag.Name, tag.Type)
		}
		for _, program := range project.Programs {
			for _, tag := range program.Tags {
				fmt.Printf("%s/%s (%s)\n", program.Name, tag.Name, tag.Type)
			}
		}
		return nil
	}
	return fmt.Errorf("unknown construct %q (want tags, programs, routines, or rungs)", construct)
}

func printHelp() {
	fmt.Printf(`l5x2c %s - converts a Rockwell L5X file into a C program

Usage: l5x2c [options] INPUT OUTPUT
       l5x2c -list CONSTRUCT [-p PROGRAM] [-r ROUTINE] INPUT

Options:
  -help              Show this help message
  -version           Show version information
  -ss N              Stack size for the generated stack machine (default: 1000)
  -st N              Scan time of the PLC model in milliseconds (default: 100)
  -config FILE       Configuration file (default: platform config dir)
  -list CONSTRUCT    List constructs and exit: tags, programs, routines, rungs
  -p PROGRAM         Working program for -list routines / -list rungs
  -r ROUTINE         Working routine for -list rungs
  -verbose           Enable verbose output

Examples:
  # Translate a project
  l5x2c project.L5X project.c

  # Translate with a larger evaluation stack and a 50 ms scan
  l5x2c -ss 5000 -st 50 project.L5X project.c

  # Inspect the project
  l5x2c -list programs project.L5X
  l5x2c -list routines -p MainProgram project.L5X
  l5x2c -list rungs -p MainProgram -r MainRoutine project.L5X

Syntax errors in individual rungs do not fail the run: the offending rung
is emitted as a "// Syntax Error" marker and translation continues.
`, Version)
}
