// Package respfmt prints an executed response to the terminal.
package respfmt

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/alecthomas/chroma/quick"
	"github.com/muesli/termenv"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/unkn0wn-root/rhc/internal/httpclient"
)

const DefaultStyle = "monokai"

type Options struct {
	OnlyBody bool
	Verbose  bool
	// Profile decides whether and how JSON is highlighted. Ascii disables
	// color.
	Profile termenv.Profile
	Style   string
}

// DetectProfile reports the color support of w, honouring NO_COLOR and
// CLICOLOR_FORCE.
func DetectProfile(w io.Writer) termenv.Profile {
	return termenv.NewOutput(w).EnvColorProfile()
}

// Write prints the status line (plus headers when verbose) followed by the
// body. JSON bodies are pretty printed.
func Write(w io.Writer, resp *httpclient.Response, opts Options) error {
	if resp == nil {
		return nil
	}
	if !opts.OnlyBody {
		if err := writeHead(w, resp, opts.Verbose); err != nil {
			return err
		}
	}
	if len(resp.Body) == 0 {
		return nil
	}

	body := resp.Body
	isJSON := looksJSON(resp)
	if isJSON {
		body = pretty.Pretty(body)
	}
	if isJSON && opts.Profile != termenv.Ascii {
		style := opts.Style
		if strings.TrimSpace(style) == "" {
			style = DefaultStyle
		}
		var buf bytes.Buffer
		if err := quick.Highlight(&buf, string(body), "json", formatterFor(opts.Profile), style); err == nil {
			body = buf.Bytes()
		}
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	if !bytes.HasSuffix(body, []byte("\n")) {
		_, err := io.WriteString(w, "\n")
		return err
	}
	return nil
}

func writeHead(w io.Writer, resp *httpclient.Response, verbose bool) error {
	status := resp.Status
	if status == "" {
		status = fmt.Sprintf("%d", resp.StatusCode)
	}
	if !verbose {
		_, err := fmt.Fprintln(w, status)
		return err
	}

	if _, err := fmt.Fprintf(w, "%s %s\n", resp.RequestMethod, resp.EffectiveURL); err != nil {
		return err
	}
	proto := resp.Proto
	if proto == "" {
		proto = "HTTP/1.1"
	}
	if _, err := fmt.Fprintf(w, "%s %s (%s)\n", proto, status, resp.Duration.Round(time.Millisecond)); err != nil {
		return err
	}
	names := make([]string, 0, len(resp.Headers))
	for name := range resp.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, v := range resp.Headers[name] {
			if _, err := fmt.Fprintf(w, "%s: %s\n", name, v); err != nil {
				return err
			}
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func looksJSON(resp *httpclient.Response) bool {
	ct := strings.ToLower(resp.Headers.Get("Content-Type"))
	if strings.Contains(ct, "json") {
		return gjson.ValidBytes(resp.Body)
	}
	trimmed := bytes.TrimSpace(resp.Body)
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return false
	}
	return gjson.ValidBytes(trimmed)
}

func formatterFor(p termenv.Profile) string {
	switch p {
	case termenv.TrueColor:
		return "terminal16m"
	case termenv.ANSI256:
		return "terminal256"
	default:
		return "terminal"
	}
}
