package resolve

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/krau/sankaku-dl/config"
	"github.com/krau/sankaku-dl/core"
	"github.com/krau/sankaku-dl/parsers"
	"github.com/krau/sankaku-dl/pkg/sink"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [url...]",
	Short: "Resolve post URLs into direct download records",
	Example: `  sankaku-dl resolve https://sankaku.app/posts/abc123
  sankaku-dl resolve -i urls.txt --format yaml --shape messages
  cat urls.txt | sankaku-dl resolve -i -`,
	RunE: Resolve,
}

func Register(root *cobra.Command) {
	resolveCmd.Flags().StringP("input", "i", "", "read URLs from this file, one per line; - reads stdin")
	resolveCmd.Flags().String("shape", "", "output shape: item, combined, messages")
	resolveCmd.Flags().StringP("format", "f", "", "output format: json, yaml, text (text on a terminal, json otherwise)")
	resolveCmd.Flags().Bool("no-progress", false, "disable progress bar")
	root.AddCommand(resolveCmd)
}

func Resolve(cmd *cobra.Command, args []string) error {
	input, err := cmd.Flags().GetString("input")
	if err != nil {
		return err
	}
	shapeFlag, err := cmd.Flags().GetString("shape")
	if err != nil {
		return err
	}
	formatFlag, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	noProgress, err := cmd.Flags().GetBool("no-progress")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	logger := log.FromContext(ctx)
	cfg := config.C()

	urls := append([]string(nil), args...)
	if input != "" {
		fromInput, err := readInput(input, cmd.InOrStdin())
		if err != nil {
			return err
		}
		urls = append(urls, fromInput...)
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs given, pass them as arguments or with --input")
	}

	shape, err := sink.ParseShape(firstNonEmpty(shapeFlag, cfg.Output.Shape))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	format, err := ParseFormat(firstNonEmpty(formatFlag, cfg.Output.Format), isTerminal(out))
	if err != nil {
		return err
	}

	opts := core.Options{
		Workers: cfg.Workers,
		Retry:   cfg.Retry,
		Resolve: parsers.ResolveWithContext,
	}
	var prog *ResolveProgress
	if !noProgress && isTerminal(cmd.ErrOrStderr()) && len(urls) > 1 {
		prog = NewResolveProgress(ctx, len(urls))
		prog.Start()
		opts.OnResult = func(r core.Result) {
			prog.Advance(r.OK())
		}
	}
	results := core.ResolveAll(ctx, urls, opts)
	if prog != nil {
		prog.Done()
		prog.Wait()
	}

	if err := Render(out, format, shape, results); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	logger.Info("Resolve finished", "total", len(results), "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d URLs failed", failed, len(results))
	}
	return nil
}

// readInput reads one URL per line. Blank lines and lines starting with # are skipped.
func readInput(path string, stdin io.Reader) ([]string, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	var urls []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return urls, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
