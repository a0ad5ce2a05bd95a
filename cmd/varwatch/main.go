// Package main is a demonstration driver for the varwatch inspection
// tree: it builds a scripted value tree, expands and pages nodes the way
// a watch view would, and prints the notifications the controller
// raises.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/dshills/varwatch/internal/config"
	"github.com/dshills/varwatch/internal/inspect"
	"github.com/dshills/varwatch/internal/logging"
	"github.com/dshills/varwatch/internal/session"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to a TOML config file")
	logLevel := flag.String("log-level", "", "log level (debug, info, warn, error)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("varwatch %s (%s)\n", version, commit)
		return 0
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		cfg = loaded
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	logger := logging.New(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	// A paused session so live queries are meaningful.
	sess := session.New()
	sess.Connect()
	sess.Pause()

	ctrl := inspect.NewTreeController(
		inspect.WithPageSize(cfg.PageSize),
		inspect.WithMaxLoadBatch(cfg.MaxLoadBatch),
		inspect.WithLogger(logger),
		inspect.WithSessionFactory(func() inspect.DebugSession { return sess }),
	)

	ctrl.Subscribe(inspect.Handlers{
		OnChildrenLoaded: func(n *inspect.Node) {
			fmt.Printf("children loaded: %q (%d children)\n", n.Path(), n.ChildCount())
		},
		OnNodeExpanded: func(n *inspect.Node) {
			fmt.Printf("node expanded:   %q\n", n.Path())
		},
		OnEvaluationCompleted: func(n *inspect.Node) {
			fmt.Printf("evaluated:       %q = %s\n", n.Path(), n.DisplayValue())
		},
		OnLoadFailed: func(n *inspect.Node, err error) {
			fmt.Printf("load failed:     %q: %v\n", n.Path(), err)
		},
	})

	if !ctrl.CanQueryDebugger() {
		fmt.Fprintln(os.Stderr, "Error: debugger not paused")
		return 1
	}

	ctx := context.Background()

	// Scripted locals: a struct, a large slice, and a slow evaluation.
	point := inspect.NewStaticValue("pt", "main.Point{...}", inspect.FlagHasChildren)
	point.SetTypeName("main.Point")
	point.AddChildren(
		newPrimitive("X", "3"),
		newPrimitive("Y", "7"),
	)

	items := inspect.NewStaticValue("items", fmt.Sprintf("[]int (len %d)", 45),
		inspect.FlagHasChildren|inspect.FlagEnumerable)
	items.SetTypeName("[]int")
	for i := range 45 {
		items.AddChildren(newPrimitive(fmt.Sprintf("[%d]", i), fmt.Sprintf("%d", i*i)))
	}

	pending := inspect.NewStaticValue("result", "<evaluating>", inspect.FlagEvaluating)

	ctrl.AddValues(slices.Values([]inspect.Value{point, items, pending}))

	root := ctrl.Root()
	for _, node := range root.Children() {
		ctrl.ExpandNode(ctx, node)
	}

	// Page the enumerable until the backend is exhausted.
	itemsNode := root.Children()[1]
	for !itemsNode.ChildrenFullyLoaded() {
		loaded, err := ctrl.FetchChildren(ctx, itemsNode, cfg.PageSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: paging %s: %v\n", itemsNode.Path(), err)
			return 1
		}
		fmt.Printf("paged in:        %q +%d (total %d)\n", itemsNode.Path(), loaded, itemsNode.ChildCount())
	}

	// The backend finishes the slow evaluation.
	pending.Complete("42")

	fmt.Println()
	printTree(root, 0)
	return 0
}

func newPrimitive(name, display string) *inspect.StaticValue {
	return inspect.NewStaticValue(name, display, inspect.FlagPrimitive)
}

func printTree(node *inspect.Node, depth int) {
	if node.Kind() != inspect.KindRoot {
		indent := strings.Repeat("  ", depth-1)
		if node.DisplayValue() != "" {
			fmt.Printf("%s%s = %s\n", indent, node.Name(), node.DisplayValue())
		} else {
			fmt.Printf("%s%s\n", indent, node.Name())
		}
	}
	for _, child := range node.Children() {
		printTree(child, depth+1)
	}
}
