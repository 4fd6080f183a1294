// Inspection tool for BP files
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-bp/bp"
)

func main() {
	configPath := flag.String("config", "", "YAML reader config")
	varName := flag.String("var", "", "partitioned variable to read")
	rank := flag.Int("rank", 0, "writer rank whose block to read")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: bpinspect [-config cfg.yaml] [-var NAME -rank R] <file.bp>")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := bp.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = bp.LoadConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			os.Exit(1)
		}
	}
	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	filename := flag.Arg(0)
	err = bp.Session(filename, nil, func(f *bp.File) error {
		if *varName != "" {
			return readBlock(f, *varName, *rank)
		}
		describe(f)
		return nil
	}, cfg.Options(logger)...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(cfg bp.Config) (*zap.Logger, error) {
	lvl, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.OutputPaths = []string{"stderr"}
	return zcfg.Build()
}

func describe(f *bp.File) {
	fmt.Printf("=== Analyzing %s ===\n\n", f.Path())
	fmt.Printf("Version: %d\n", f.Version())
	fmt.Printf("Writers: %d\n", f.Writers())
	fmt.Printf("Kernels: %v\n\n", f.Kernels())

	for _, name := range f.Variables() {
		v, err := f.Variable(name)
		if err != nil {
			fmt.Printf("%q: ERROR %v\n", name, err)
			continue
		}
		if v.IsLocal() {
			fmt.Printf("Variable %q: %s, local\n", name, v.Type())
		} else {
			fmt.Printf("Variable %q: %s, global dim %d\n", name, v.Type(), v.Dim())
		}
		for _, b := range v.Blocks() {
			fmt.Printf("  writer %d: [%d, +%d)\n", b.Writer, b.Start, b.Count)
		}
	}
}

func readBlock(f *bp.File, name string, rank int) error {
	offset, length, err := bp.Extent(f, name, rank)
	if err != nil {
		return err
	}
	fmt.Printf("%s rank %d: offset %d, local_dim %d\n", name, rank, offset, length)

	v, err := f.Variable(name + "/array")
	if err != nil {
		return err
	}
	var values any
	switch strings.TrimSuffix(v.Type(), "be") {
	case "int8":
		values, err = bp.Read[int8](f, name, rank)
	case "int16":
		values, err = bp.Read[int16](f, name, rank)
	case "int32":
		values, err = bp.Read[int32](f, name, rank)
	case "int64":
		values, err = bp.Read[int64](f, name, rank)
	case "uint8":
		values, err = bp.Read[uint8](f, name, rank)
	case "uint16":
		values, err = bp.Read[uint16](f, name, rank)
	case "uint32":
		values, err = bp.Read[uint32](f, name, rank)
	case "uint64":
		values, err = bp.Read[uint64](f, name, rank)
	case "float32":
		values, err = bp.Read[float32](f, name, rank)
	case "float64":
		values, err = bp.Read[float64](f, name, rank)
	default:
		return fmt.Errorf("%s: unsupported element type %s", name, v.Type())
	}
	if err != nil {
		return err
	}
	fmt.Printf("%v\n", values)
	return nil
}
