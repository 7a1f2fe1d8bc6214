// Command vjson is a small tape-consuming tool: it validates, minifies
// or pretty-prints JSON documents and splits concatenated document
// streams.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	vjson "github.com/vectorparse/vjson"
)

var (
	log     = logrus.New()
	verbose bool
)

func main() {
	root := &cobra.Command{
		Use:          "vjson",
		Short:        "validate, minify and pretty-print JSON using the tape parser",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log parse diagnostics")

	root.AddCommand(validateCmd(), minifyCmd(), prettyCmd(), streamCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(os.Stdin)
	}
	return vjson.LoadFile(args[0])
}

func parseInput(args []string) (*vjson.Tape, error) {
	data, err := readInput(args)
	if err != nil {
		return nil, err
	}
	p, err := vjson.NewParser(len(data)+1, vjson.DefaultMaxDepth)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"bytes":  len(data),
		"kernel": p.Implementation(),
	}).Debug("parsing")
	return p.Parse(data)
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "check that the input is a single well-formed JSON document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := parseInput(args); err != nil {
				return fmt.Errorf("invalid: %w", err)
			}
			fmt.Println("valid")
			return nil
		},
	}
}

func minifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "minify [file]",
		Short: "parse the input and write it back without whitespace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tape, err := parseInput(args)
			if err != nil {
				return err
			}
			out, err := vjson.Minify(tape)
			if err != nil {
				return err
			}
			_, err = fmt.Println(string(out))
			return err
		},
	}
}

func prettyCmd() *cobra.Command {
	var indent string
	cmd := &cobra.Command{
		Use:   "pretty [file]",
		Short: "parse the input and re-indent it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tape, err := parseInput(args)
			if err != nil {
				return err
			}
			min, err := vjson.Minify(tape)
			if err != nil {
				return err
			}
			opts := *pretty.DefaultOptions
			opts.Indent = indent
			os.Stdout.Write(pretty.PrettyOptions(min, &opts))
			return nil
		},
	}
	cmd.Flags().StringVar(&indent, "indent", "  ", "indent string")
	return cmd
}

func streamCmd() *cobra.Command {
	var batch int
	cmd := &cobra.Command{
		Use:   "stream [file]",
		Short: "split concatenated documents and emit one minified document per line",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args)
			if err != nil {
				return err
			}
			p, err := vjson.NewParser(len(data)+1, vjson.DefaultMaxDepth)
			if err != nil {
				return err
			}
			s, err := p.ParseMany(data, batch)
			if err != nil {
				return err
			}
			count := 0
			for {
				tape, err := s.Next()
				if err == io.EOF {
					break
				}
				if err != nil {
					return fmt.Errorf("document %d: %w", count+1, err)
				}
				out, err := vjson.Minify(tape)
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				count++
			}
			log.WithField("documents", count).Debug("stream complete")
			return nil
		},
	}
	cmd.Flags().IntVar(&batch, "batch", 0, "stage 1 batch size in bytes (0 = default)")
	return cmd
}
