/*
protoparse reads one or more .proto files, parses each with the proto3
parser, and reports the result. With -descriptor, it also prints each
file's translated FileDescriptorProto in text format.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"google.golang.org/protobuf/encoding/prototext"

	"github.com/protolang-go/protoparse/batch"
	"github.com/protolang-go/protoparse/descriptor"
)

var (
	helpShort      = flag.Bool("h", false, "Show usage text (same as --help).")
	helpLong       = flag.Bool("help", false, "Show usage text (same as -h).")
	concurrency    = flag.Int("concurrency", 0, "Maximum number of files to parse at once. Defaults to the number of CPUs.")
	descriptorOnly = flag.Bool("descriptor", false, "Print each file's translated FileDescriptorProto in text format.")
	verbose        = flag.Bool("v", false, "Enable debug logging.")
)

func main() {
	flag.Usage = usage
	flag.Parse()
	if *helpShort || *helpLong || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	paths := flag.Args()
	files, err := batch.ParseFiles(context.Background(), paths, *concurrency)
	if err != nil {
		fatalf("%v", err)
	}

	for i, path := range paths {
		f := files[i]
		fmt.Printf("%s: syntax=%s package=%q messages=%d enums=%d services=%d\n",
			path, f.Syntax, f.Package, len(f.Messages), len(f.Enums), len(f.Services))

		if *descriptorOnly {
			fdp, err := descriptor.FromFile(f, path)
			if err != nil {
				fatalf("%s: generating descriptor: %v", path, err)
			}
			text, err := prototext.MarshalOptions{Multiline: true}.Marshal(fdp)
			if err != nil {
				fatalf("%s: marshaling descriptor: %v", path, err)
			}
			os.Stdout.Write(text)
		}
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage:  %s [options] <foo.proto> ...\n", os.Args[0])
	flag.PrintDefaults()
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
