package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/classload"
	"github.com/wippyai/classload/classfile"
	"github.com/wippyai/classload/classpath"
	"github.com/wippyai/classload/errors"
	"github.com/wippyai/classload/loader"
	"github.com/wippyai/classload/registry"
)

// source is a class path the CLI can both enumerate and read.
type source interface {
	classload.Fetcher
	classpath.Lister
}

func main() {
	var (
		jarFile     = flag.String("jar", "", "Path to a jar or zip archive")
		dir         = flag.String("dir", "", "Path to a directory of class files")
		className   = flag.String("class", "", "Component path to inspect (e.g. com/acme/Main.class)")
		deps        = flag.Bool("deps", false, "Print dependency sets")
		order       = flag.Bool("order", false, "Load into a fresh table and print the definition order")
		plain       = flag.Bool("plain", false, "Load without scanning dependencies first")
		configFile  = flag.String("config", "", "YAML configuration file")
		verbose     = flag.Bool("v", false, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if (*jarFile == "") == (*dir == "") {
		fmt.Fprintln(os.Stderr, "Usage: classdeps -jar <app.jar> | -dir <classes> [-class path] [-deps] [-order] [-plain]")
		fmt.Fprintln(os.Stderr, "       classdeps -jar <app.jar> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		log, err := zap.NewDevelopment()
		if err == nil {
			loader.SetLogger(log)
			registry.SetLogger(log)
			defer log.Sync()
		}
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *plain {
		cfg.Mode = loader.ModePlain.String()
	}

	src, closeSrc, err := openSource(*jarFile, *dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeSrc()

	name := *jarFile
	if name == "" {
		name = *dir
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(name, src, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if !*deps && !*order {
		*deps = true
	}
	if err := run(context.Background(), os.Stdout, src, cfg, *className, *deps, *order); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func openSource(jarFile, dir string) (source, func(), error) {
	if jarFile != "" {
		a, err := classpath.OpenArchive(jarFile)
		if err != nil {
			return nil, nil, err
		}
		return a, func() { a.Close() }, nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, nil, errors.NotFound(dir, err)
	}
	if !info.IsDir() {
		return nil, nil, errors.InvalidInput(errors.PhaseConfig, "%s is not a directory", dir)
	}
	return classpath.Dir(dir), func() {}, nil
}

func run(ctx context.Context, w io.Writer, src source, cfg Config, className string, deps, order bool) error {
	paths, err := selectPaths(src, className)
	if err != nil {
		return err
	}

	if deps {
		if err := printDependencies(ctx, w, src, cfg, paths); err != nil {
			return err
		}
	}
	if order {
		if deps {
			fmt.Fprintln(w)
		}
		names, err := loadOrder(ctx, src, cfg, paths)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Definition order (%d):\n", len(names))
		for i, n := range names {
			fmt.Fprintf(w, "  %4d  %s\n", i+1, n)
		}
	}
	return nil
}

func selectPaths(src source, className string) ([]string, error) {
	if className != "" {
		return []string{classpath.NameToPath(className)}, nil
	}
	all, err := src.Paths()
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(all))
	for _, p := range all {
		if classpath.IsComponentPath(p) {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

func printDependencies(ctx context.Context, w io.Writer, src source, cfg Config, paths []string) error {
	if len(paths) == 1 {
		data, err := src.Fetch(ctx, paths[0])
		if err != nil {
			return err
		}
		set, err := classfile.Scan(data)
		if err != nil {
			return errors.WithPath(err, paths[0])
		}
		printSet(w, paths[0], set.Without(classpath.PathToName(paths[0])).Names(), cfg)
		return nil
	}

	idx, err := classpath.BuildIndex(ctx, src, paths, cfg.Workers)
	if err != nil {
		return err
	}
	for _, p := range idx.Paths() {
		d, _ := idx.Dependencies(p)
		printSet(w, p, d, cfg)
	}
	return nil
}

func printSet(w io.Writer, path string, names []string, cfg Config) {
	fmt.Fprintf(w, "%s:\n", classpath.PathToName(path))
	for _, n := range names {
		mark := " "
		if cfg.excluded(n) {
			mark = "-"
		}
		fmt.Fprintf(w, "  %s %s\n", mark, n)
	}
}

// loadOrder loads paths into a fresh table and returns the names in the
// order the table accepted them.
func loadOrder(ctx context.Context, src source, cfg Config, paths []string) ([]string, error) {
	tbl := registry.NewTable(registry.WithPlatform(cfg.excluded))
	l, err := loader.New(src, tbl, cfg.loaderOptions()...)
	if err != nil {
		return nil, err
	}
	if _, err := l.LoadAll(ctx, paths); err != nil {
		return tbl.Names(), err
	}
	return tbl.Names(), nil
}
